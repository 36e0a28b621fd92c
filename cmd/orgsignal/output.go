package orgsignal

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/soundprediction/orgsignal"
	"github.com/soundprediction/orgsignal/pkg/categorizer"
	"github.com/soundprediction/orgsignal/pkg/types"
)

const (
	formatJSON  = "json"
	formatTable = "table"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	borderStyle = mutedStyle
)

func checkFormat(format string) error {
	if format != formatJSON && format != formatTable {
		return fmt.Errorf("unknown output format %q (json, table)", format)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderTable(w io.Writer, title string, headers []string, rows [][]string) {
	fmt.Fprintln(w, titleStyle.Render(title))
	if len(rows) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  none"))
		return
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}

func score(f float64) string { return strconv.FormatFloat(f, 'f', 2, 64) }

func renderResult(w io.Writer, r *orgsignal.Result) {
	if r.DocumentID != "" {
		fmt.Fprintln(w, titleStyle.Render("Document "+r.DocumentID))
	}
	if !r.InputValidation.IsValid {
		for _, e := range r.InputValidation.Errors {
			fmt.Fprintln(w, "rejected:", e)
		}
		return
	}

	ex := r.Extraction
	orgs := make([][]string, 0, len(ex.Organizations))
	for _, o := range ex.Organizations {
		orgs = append(orgs, []string{o.Name, string(o.Category), score(o.Confidence)})
	}
	renderTable(w, "Organizations", []string{"Name", "Sector", "Confidence"}, orgs)

	locs := make([][]string, 0, len(ex.Locations))
	for _, l := range ex.Locations {
		locs = append(locs, []string{l.Name, string(l.Type), score(l.Confidence)})
	}
	renderTable(w, "Locations", []string{"Name", "Type", "Confidence"}, locs)

	persons := make([][]string, 0, len(ex.Persons))
	for _, p := range ex.Persons {
		persons = append(persons, []string{p.Name, p.Role, p.Organization, score(p.Confidence)})
	}
	renderTable(w, "Persons", []string{"Name", "Role", "Organization", "Confidence"}, persons)

	rels := make([][]string, 0, len(ex.Relationships))
	for _, rel := range ex.Relationships {
		rels = append(rels, []string{rel.Source.Name, string(rel.RelationType), rel.Target.Name, string(rel.Method), score(rel.Confidence)})
	}
	renderTable(w, "Relationships", []string{"Source", "Relation", "Target", "Method", "Confidence"}, rels)

	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("quality %s, overall confidence %s, model %s",
		score(r.Validation.QualityScore), score(ex.ConfidenceScores.Overall), ex.ProcessingMetadata.ModelUsed)))
	for _, issue := range r.Validation.Issues {
		fmt.Fprintln(w, "issue:", issue)
	}
}

func renderCategorizations(w io.Writer, names []string, results []types.CategorizationResult) {
	rows := make([][]string, len(results))
	for i, r := range results {
		rows[i] = []string{names[i], string(r.Category), score(r.Confidence), string(r.Method), r.Reasoning}
	}
	renderTable(w, "Categorizations", []string{"Organization", "Sector", "Confidence", "Method", "Reasoning"}, rows)
}

func renderStatistics(w io.Writer, stats categorizer.Statistics) {
	rows := make([][]string, 0, len(stats.CategoryDistribution))
	for _, cat := range sortedKeys(stats.CategoryDistribution) {
		rows = append(rows, []string{cat, strconv.Itoa(stats.CategoryDistribution[cat])})
	}
	renderTable(w, "Sectors", []string{"Sector", "Organizations"}, rows)
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%d organizations, average confidence %s",
		stats.TotalOrganizations, score(stats.AverageConfidence))))
}

func renderOverrides(w io.Writer, overrides map[string]types.ManualOverride) {
	rows := make([][]string, 0, len(overrides))
	for _, name := range sortedKeys(overrides) {
		o := overrides[name]
		rows = append(rows, []string{name, string(o.Category), o.Reason, o.AddedTimestamp})
	}
	renderTable(w, "Manual overrides", []string{"Organization", "Sector", "Reason", "Added"}, rows)
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
