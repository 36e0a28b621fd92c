package categorizer

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/kaptinlin/jsonrepair"
	"github.com/soundprediction/orgsignal/pkg/types"
)

func overrideKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// AddManualOverride pins name to category. It returns false, leaving the
// registry untouched, when category is not a known sector, other or
// unknown. An existing override for the same name is replaced.
func (c *Categorizer) AddManualOverride(name string, category types.Sector, reason string, subcategories ...string) bool {
	if !c.table.IsValidCategory(category) {
		c.logger.Warn("Rejected manual override", "organization", name, "category", category)
		return false
	}
	if subcategories == nil {
		subcategories = []string{}
	}
	c.overrides[overrideKey(name)] = types.ManualOverride{
		Category:       category,
		Reason:         reason,
		Subcategories:  subcategories,
		AddedTimestamp: c.now().Format(time.RFC3339),
	}
	c.overridesChanged()
	return true
}

// RemoveManualOverride deletes the override for name, reporting whether one
// existed.
func (c *Categorizer) RemoveManualOverride(name string) bool {
	key := overrideKey(name)
	if _, ok := c.overrides[key]; !ok {
		return false
	}
	delete(c.overrides, key)
	c.overridesChanged()
	return true
}

// Override returns the override registered for name.
func (c *Categorizer) Override(name string) (types.ManualOverride, bool) {
	o, ok := c.overrides[overrideKey(name)]
	return o, ok
}

// Overrides returns a copy of the registry keyed by normalized name.
func (c *Categorizer) Overrides() map[string]types.ManualOverride {
	out := make(map[string]types.ManualOverride, len(c.overrides))
	for k, v := range c.overrides {
		out[k] = v
	}
	return out
}

// OverrideNames returns the registered keys in sorted order.
func (c *Categorizer) OverrideNames() []string {
	names := make([]string, 0, len(c.overrides))
	for k := range c.overrides {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// MarshalOverrides renders the registry as the indented JSON object written
// by ExportOverrides.
func (c *Categorizer) MarshalOverrides() ([]byte, error) {
	return json.MarshalIndent(c.overrides, "", "  ")
}

// ExportOverrides writes the registry to path as an indented JSON object.
// Failures are logged and reported as false.
func (c *Categorizer) ExportOverrides(path string) bool {
	data, err := c.MarshalOverrides()
	if err != nil {
		c.logger.Error("Error exporting overrides", "path", path, "error", err)
		return false
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		c.logger.Error("Error exporting overrides", "path", path, "error", err)
		return false
	}
	c.logger.Info("Exported manual overrides", "path", path, "count", len(c.overrides))
	return true
}

// ImportOverrides merges the overrides stored at path into the registry.
// Entries with an invalid category are skipped and logged. Slightly
// malformed JSON is repaired before giving up. Read and parse failures are
// logged and reported as false.
func (c *Categorizer) ImportOverrides(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		c.logger.Error("Error importing overrides", "path", path, "error", err)
		return false
	}
	imported, err := c.ImportOverridesJSON(data)
	if err != nil {
		c.logger.Error("Error importing overrides", "path", path, "error", err)
		return false
	}
	c.logger.Info("Imported manual overrides", "path", path, "imported", imported, "total", len(c.overrides))
	return true
}

// ImportOverridesJSON merges a JSON object of overrides keyed by
// organization name and returns how many entries were kept.
func (c *Categorizer) ImportOverridesJSON(data []byte) (int, error) {
	overrides, err := decodeOverrides(data)
	if err != nil {
		repaired, rerr := jsonrepair.JSONRepair(string(data))
		if rerr != nil {
			return 0, fmt.Errorf("failed to parse overrides: %w", err)
		}
		if overrides, err = decodeOverrides([]byte(repaired)); err != nil {
			return 0, fmt.Errorf("failed to parse overrides: %w", err)
		}
		c.logger.Warn("Repaired malformed overrides document")
	}
	return c.mergeOverrides(overrides), nil
}

func decodeOverrides(data []byte) (map[string]types.ManualOverride, error) {
	var overrides map[string]types.ManualOverride
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, err
	}
	return overrides, nil
}

// mergeOverrides adds valid entries, normalizing keys, and returns how many
// were kept.
func (c *Categorizer) mergeOverrides(overrides map[string]types.ManualOverride) int {
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	kept := 0
	for _, name := range names {
		o := overrides[name]
		if !c.table.IsValidCategory(o.Category) {
			c.logger.Warn("Invalid category for override, skipping", "organization", name, "category", o.Category)
			continue
		}
		if o.Subcategories == nil {
			o.Subcategories = []string{}
		}
		c.overrides[overrideKey(name)] = o
		kept++
	}
	if len(overrides) > 0 {
		c.overridesChanged()
	}
	return kept
}

func (c *Categorizer) overridesChanged() {
	if c.metrics != nil {
		c.metrics.SetOverrides(len(c.overrides))
	}
}
