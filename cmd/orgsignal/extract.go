package orgsignal

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/soundprediction/orgsignal"
	"github.com/soundprediction/orgsignal/pkg/preprocess"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract [FILE...]",
	Short: "Extract organizations, locations, persons and relationships",
	Long: `Run the full pipeline (input validation, preprocessing, entity and
relationship extraction, sector classification) over each FILE, or over
standard input when no FILE is given or FILE is "-".

Files ending in .html or .htm are cleaned as HTML unless --source-type is set.`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().String("source-type", "", "input type (text, html); default detects from the file extension")
	extractCmd.Flags().StringP("format", "f", formatJSON, "output format (json, table)")
	extractCmd.Flags().Int("concurrency", 0, "documents processed in parallel (default ORGSIGNAL_CONCURRENCY or CPU count)")
	addNLPFlags(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if err := checkFormat(format); err != nil {
		return err
	}
	sourceType, _ := cmd.Flags().GetString("source-type")

	docs, err := readDocuments(cmd.InOrStdin(), args, sourceType)
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	results, err := extractDocuments(ctx, a.pipeline, docs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == formatTable {
		for _, r := range results {
			renderResult(out, r)
		}
		return nil
	}
	if len(results) == 1 {
		return writeJSON(out, results[0])
	}
	return writeJSON(out, results)
}

func extractDocuments(ctx context.Context, p *orgsignal.Pipeline, docs []orgsignal.Document) ([]*orgsignal.Result, error) {
	if len(docs) == 1 {
		r := p.Process(ctx, docs[0].Text, docs[0].SourceType)
		r.DocumentID = docs[0].ID
		return []*orgsignal.Result{r}, nil
	}

	results, errs := p.ProcessBatch(ctx, docs)
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", docs[i].ID, err)
		}
	}
	return results, nil
}

// readDocuments loads one document per argument, or stdin.
func readDocuments(stdin io.Reader, args []string, sourceType string) ([]orgsignal.Document, error) {
	if len(args) == 0 {
		args = []string{"-"}
	}
	docs := make([]orgsignal.Document, 0, len(args))
	for _, arg := range args {
		var (
			data []byte
			err  error
		)
		if arg == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(arg)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", arg, err)
		}
		docs = append(docs, orgsignal.Document{
			ID:         arg,
			Text:       string(data),
			SourceType: detectSourceType(arg, sourceType),
		})
	}
	return docs, nil
}

func detectSourceType(path, explicit string) string {
	if explicit != "" {
		return explicit
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return preprocess.SourceHTML
	}
	return preprocess.SourceText
}
