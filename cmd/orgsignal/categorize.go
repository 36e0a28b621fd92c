package orgsignal

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/kaptinlin/jsonrepair"
	"github.com/soundprediction/orgsignal/pkg/categorizer"
	"github.com/soundprediction/orgsignal/pkg/types"
	"github.com/spf13/cobra"
)

var categorizeCmd = &cobra.Command{
	Use:   "categorize [NAME...]",
	Short: "Classify organization names into industry sectors",
	Long: `Classify each NAME into an industry sector using known company
names, weighted keywords and phrase patterns. Manual overrides from
categorization.overrides_path take precedence.

With --batch, read a JSON array of records carrying "name" and optional
"context" fields ("-" for standard input) and print the enriched records
together with sector statistics.`,
	RunE: runCategorize,
}

func init() {
	rootCmd.AddCommand(categorizeCmd)

	categorizeCmd.Flags().String("context", "", "surrounding text used for keyword and pattern matching")
	categorizeCmd.Flags().Float64("threshold", 0, "minimum fused confidence (default categorization.threshold)")
	categorizeCmd.Flags().String("batch", "", "JSON file of organization records")
	categorizeCmd.Flags().StringP("format", "f", formatJSON, "output format (json, table)")
}

func runCategorize(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if err := checkFormat(format); err != nil {
		return err
	}
	batch, _ := cmd.Flags().GetString("batch")
	if batch == "" && len(args) == 0 {
		return fmt.Errorf("requires at least one NAME or --batch")
	}

	a, err := newBaseApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	c, err := categorizer.NewFromConfig(a.cfg.Categorization, a.metrics, a.logger)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if batch != "" {
		records, err := readRecords(cmd.InOrStdin(), batch)
		if err != nil {
			return err
		}
		enriched := c.CategorizeBatch(records)
		stats := c.CategoryStatistics(enriched)
		if format == formatTable {
			names := make([]string, len(enriched))
			results := make([]types.CategorizationResult, len(enriched))
			for i, rec := range enriched {
				names[i], _ = rec[categorizer.FieldName].(string)
				results[i] = recordResult(rec)
			}
			renderCategorizations(out, names, results)
			renderStatistics(out, stats)
			return nil
		}
		return writeJSON(out, map[string]any{
			"organizations": enriched,
			"statistics":    stats,
		})
	}

	context, _ := cmd.Flags().GetString("context")
	results := make([]types.CategorizationResult, len(args))
	for i, name := range args {
		if cmd.Flags().Changed("threshold") {
			threshold, _ := cmd.Flags().GetFloat64("threshold")
			results[i] = c.CategorizeWithThreshold(name, context, threshold)
		} else {
			results[i] = c.Categorize(name, context)
		}
	}

	if format == formatTable {
		renderCategorizations(out, args, results)
		return nil
	}
	if len(results) == 1 {
		return writeJSON(out, results[0])
	}
	byName := make(map[string]types.CategorizationResult, len(args))
	for i, name := range args {
		byName[name] = results[i]
	}
	return writeJSON(out, byName)
}

// readRecords decodes a JSON array of records, repairing near-JSON such as
// trailing commas or single quotes.
func readRecords(stdin io.Reader, path string) ([]map[string]any, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		repaired, rerr := jsonrepair.JSONRepair(string(data))
		if rerr != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if err := json.Unmarshal([]byte(repaired), &records); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	return records, nil
}

// recordResult reads back the fields CategorizeBatch added to rec.
func recordResult(rec map[string]any) types.CategorizationResult {
	category, _ := rec[categorizer.FieldCategory].(string)
	method, _ := rec[categorizer.FieldCategoryMethod].(string)
	confidence, _ := rec[categorizer.FieldCategoryConfidence].(float64)
	reasoning, _ := rec[categorizer.FieldCategoryReasoning].(string)
	return types.CategorizationResult{
		Category:   types.Sector(category),
		Confidence: confidence,
		Method:     types.Method(method),
		Reasoning:  reasoning,
	}
}
