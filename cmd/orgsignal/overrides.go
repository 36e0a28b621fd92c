package orgsignal

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/gofrs/flock"
	"github.com/soundprediction/orgsignal/pkg/categorizer"
	"github.com/soundprediction/orgsignal/pkg/config"
	"github.com/soundprediction/orgsignal/pkg/metrics"
	"github.com/soundprediction/orgsignal/pkg/types"
	"github.com/spf13/cobra"
)

var overridesCmd = &cobra.Command{
	Use:   "overrides",
	Short: "Manage manual sector overrides",
	Long: `Manage the manual override file that pins organizations to a sector.

The file defaults to categorization.overrides_path. Commands take a lock
next to it (FILE.lock) so concurrent edits do not clobber each other; a
server started with --watch-overrides picks up the changes.`,
}

var overridesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List manual overrides",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if err := checkFormat(format); err != nil {
			return err
		}
		s, err := openOverridesFor(cmd, false)
		if err != nil {
			return err
		}
		defer s.close()

		if format == formatTable {
			renderOverrides(cmd.OutOrStdout(), s.cat.Overrides())
			return nil
		}
		return writeJSON(cmd.OutOrStdout(), s.cat.Overrides())
	},
}

var overridesAddCmd = &cobra.Command{
	Use:   "add NAME CATEGORY",
	Short: "Pin an organization to a sector",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reason, _ := cmd.Flags().GetString("reason")
		subcategories, _ := cmd.Flags().GetStringSlice("subcategory")

		s, err := openOverridesFor(cmd, true)
		if err != nil {
			return err
		}
		defer s.close()

		if err := s.add(args[0], types.Sector(args[1]), reason, subcategories); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", args[0], args[1])
		return nil
	},
}

var overridesRemoveCmd = &cobra.Command{
	Use:   "remove NAME",
	Short: "Remove the override for an organization",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openOverridesFor(cmd, true)
		if err != nil {
			return err
		}
		defer s.close()
		return s.remove(args[0])
	},
}

var overridesExportCmd = &cobra.Command{
	Use:   "export [DEST]",
	Short: "Write the overrides as JSON to DEST or standard output",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openOverridesFor(cmd, false)
		if err != nil {
			return err
		}
		defer s.close()

		data, err := s.cat.MarshalOverrides()
		if err != nil {
			return err
		}
		if len(args) == 0 || args[0] == "-" {
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		}
		return os.WriteFile(args[0], data, 0o644)
	},
}

var overridesImportCmd = &cobra.Command{
	Use:   "import SRC",
	Short: "Merge overrides from a JSON file (or - for standard input)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)
		if args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}

		s, err := openOverridesFor(cmd, true)
		if err != nil {
			return err
		}
		defer s.close()

		imported, err := s.merge(data)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d overrides (%d total)\n", imported, len(s.cat.OverrideNames()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(overridesCmd)
	overridesCmd.AddCommand(overridesListCmd, overridesAddCmd, overridesRemoveCmd, overridesExportCmd, overridesImportCmd)

	overridesCmd.PersistentFlags().String("file", "", "override file (default categorization.overrides_path)")
	overridesListCmd.Flags().StringP("format", "f", formatTable, "output format (json, table)")
	overridesAddCmd.Flags().String("reason", "", "why the organization belongs to CATEGORY")
	overridesAddCmd.Flags().StringSlice("subcategory", nil, "subcategory (repeatable)")
}

// overrideStore is an override file loaded into a categorizer while its
// lock is held.
type overrideStore struct {
	path string
	lock *flock.Flock
	cat  *categorizer.Categorizer

	// release runs after the lock is dropped
	release func() error
}

func openOverridesFor(cmd *cobra.Command, exclusive bool) (*overrideStore, error) {
	a, err := newBaseApp(cmd)
	if err != nil {
		return nil, err
	}
	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		path = a.cfg.Categorization.OverridesPath
	}
	if path == "" {
		a.close()
		return nil, errors.New("no override file: set --file or categorization.overrides_path")
	}
	s, err := openOverrides(a.cfg.Categorization, path, exclusive, a.metrics, a.logger)
	if err != nil {
		a.close()
		return nil, err
	}
	s.release = a.close
	return s, nil
}

// openOverrides locks path and loads it, if it exists, into a categorizer
// built from cfg so the configured sector table decides which categories
// are valid. Readers take a shared lock, writers an exclusive one.
func openOverrides(cfg config.CategorizationConfig, path string, exclusive bool, reg *metrics.Registry, logger *slog.Logger) (*overrideStore, error) {
	lock := flock.New(path + ".lock")
	var (
		locked bool
		err    error
	)
	if exclusive {
		locked, err = lock.TryLock()
	} else {
		locked, err = lock.TryRLock()
	}
	if err != nil {
		return nil, fmt.Errorf("acquiring override lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("override file %s is locked by another process", path)
	}

	cfg.OverridesPath = ""
	cat, err := categorizer.NewFromConfig(cfg, reg, logger)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}

	if _, err := os.Stat(path); err == nil {
		if !cat.ImportOverrides(path) {
			_ = lock.Unlock()
			return nil, fmt.Errorf("failed to load overrides from %s", path)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		_ = lock.Unlock()
		return nil, err
	}
	return &overrideStore{path: path, lock: lock, cat: cat}, nil
}

func (s *overrideStore) add(name string, category types.Sector, reason string, subcategories []string) error {
	if !s.cat.AddManualOverride(name, category, reason, subcategories...) {
		return fmt.Errorf("invalid category %q (valid: %v)", category, s.cat.Table().Categories())
	}
	return s.save()
}

func (s *overrideStore) remove(name string) error {
	if !s.cat.RemoveManualOverride(name) {
		return fmt.Errorf("no override for %q", name)
	}
	return s.save()
}

func (s *overrideStore) merge(data []byte) (int, error) {
	imported, err := s.cat.ImportOverridesJSON(data)
	if err != nil {
		return 0, err
	}
	return imported, s.save()
}

func (s *overrideStore) save() error {
	if !s.cat.ExportOverrides(s.path) {
		return fmt.Errorf("failed to write overrides to %s", s.path)
	}
	return nil
}

func (s *overrideStore) close() error {
	err := s.lock.Unlock()
	if s.release != nil {
		err = errors.Join(err, s.release())
	}
	return err
}
