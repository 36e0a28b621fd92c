package orgsignal

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/soundprediction/orgsignal/pkg/nlp"
	"github.com/spf13/cobra"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List annotation backends and their curated models",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if err := checkFormat(format); err != nil {
			return err
		}
		capability, _ := cmd.Flags().GetString("capability")

		ids := providerIDs(nlp.TaskCapability(capability))
		if format == formatTable {
			renderProviders(cmd.OutOrStdout(), ids)
			return nil
		}

		type entry struct {
			nlp.Provider
			Models []nlp.Model `json:"models,omitempty"`
		}
		out := make([]entry, 0, len(ids))
		for _, id := range ids {
			p, _ := nlp.GetProvider(id)
			out = append(out, entry{Provider: p, Models: nlp.GetModelsByProvider(id)})
		}
		return writeJSON(cmd.OutOrStdout(), out)
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
	providersCmd.Flags().String("capability", "", "only backends supporting this task (tokenization, ner, dependency_parsing)")
	providersCmd.Flags().StringP("format", "f", formatTable, "output format (json, table)")
}

// providerIDs returns every built-in backend, or only those supporting
// capability when it is set, in ID order.
func providerIDs(capability nlp.TaskCapability) []nlp.ProviderID {
	if capability != "" {
		return nlp.GetProvidersByCapability(capability)
	}
	ids := make([]nlp.ProviderID, 0, len(nlp.BuiltInProviders))
	for id := range nlp.BuiltInProviders {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func renderProviders(w io.Writer, ids []nlp.ProviderID) {
	rows := make([][]string, 0, len(ids))
	var models [][]string
	for _, id := range ids {
		p, _ := nlp.GetProvider(id)
		caps := make([]string, len(p.Capabilities))
		for i, c := range p.Capabilities {
			caps[i] = string(c)
		}
		cgo := ""
		if p.RequiresCGO {
			cgo = "yes"
		}
		rows = append(rows, []string{string(p.ID), p.Description, strings.Join(caps, ", "), cgo})
		for _, m := range nlp.GetModelsByProvider(id) {
			models = append(models, []string{m.ID, string(m.ProviderID), m.Description})
		}
	}
	renderTable(w, "Providers", []string{"ID", "Description", "Capabilities", "cgo"}, rows)
	renderTable(w, "Models", []string{"Model", "Provider", "Description"}, models)
}

// noteCapabilities warns when the configured backend cannot feed the
// dependency relationship pass, and resolves curated model names.
func noteCapabilities(a *app) {
	id := nlp.ProviderID(a.cfg.NLP.Provider)
	p, ok := nlp.GetProvider(id)
	if !ok {
		return
	}
	if !slices.Contains(p.Capabilities, nlp.TaskDependencyParsing) {
		a.logger.Debug("Backend has no dependency parser; dependency relationships are skipped", "backend", p.Name)
	}
	if model := a.cfg.NLP.Model; model != "" && p.IsLocal {
		if m, ok := nlp.GetModel(model); ok {
			a.logger.Debug("Using curated model", "model", m.Name, "backend", p.Name)
		} else {
			a.logger.Debug(fmt.Sprintf("Model %q is not in the curated list; loading as given", model), "backend", p.Name)
		}
	}
}
