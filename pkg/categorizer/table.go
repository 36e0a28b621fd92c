package categorizer

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"

	"github.com/soundprediction/orgsignal/pkg/types"
	"gopkg.in/yaml.v3"
)

//go:embed sectors.yaml
var defaultTableYAML []byte

// SectorKeywords holds the vocabulary of one sector.
type SectorKeywords struct {
	Name      types.Sector `yaml:"name" json:"name"`
	Primary   []string     `yaml:"primary" json:"primary"`
	Secondary []string     `yaml:"secondary" json:"secondary"`
	Companies []string     `yaml:"companies" json:"companies"`
}

// PatternRule maps a regular expression to a sector.
type PatternRule struct {
	Pattern    string       `yaml:"pattern" json:"pattern"`
	Category   types.Sector `yaml:"category" json:"category"`
	Confidence float64      `yaml:"confidence" json:"confidence"`

	re *regexp.Regexp
}

// KeywordScoring holds the keyword matcher constants. A sector scores
// PrimaryWeight per primary hit plus SecondaryWeight per secondary hit and
// confidence is min(MaxConfidence, BaseConfidence + ConfidenceStep*score).
type KeywordScoring struct {
	PrimaryWeight     int     `yaml:"primary_weight" json:"primary_weight"`
	SecondaryWeight   int     `yaml:"secondary_weight" json:"secondary_weight"`
	BaseConfidence    float64 `yaml:"base_confidence" json:"base_confidence"`
	ConfidenceStep    float64 `yaml:"confidence_step" json:"confidence_step"`
	MaxConfidence     float64 `yaml:"max_confidence" json:"max_confidence"`
	ReasoningKeywords int     `yaml:"reasoning_keywords" json:"reasoning_keywords"`
}

// Table is the immutable classification data used by a Categorizer.
type Table struct {
	Sectors                []SectorKeywords          `yaml:"sectors"`
	Patterns               []PatternRule             `yaml:"patterns"`
	Conflicts              map[types.Sector][]string `yaml:"conflicts"`
	MethodWeights          map[types.Method]float64  `yaml:"method_weights"`
	DefaultMethodWeight    float64                   `yaml:"default_method_weight"`
	CompanyMatchConfidence float64                   `yaml:"company_match_confidence"`
	KeywordScoring         KeywordScoring            `yaml:"keyword_scoring"`
	LowConfidenceWarning   float64                   `yaml:"low_confidence_warning"`

	valid map[types.Sector]bool
}

// tableFile is the on-disk overlay format. Listed sectors replace the
// embedded sector of the same name or are appended; other fields replace
// the embedded values when present. Overrides seed the registry.
type tableFile struct {
	Sectors                []SectorKeywords                `yaml:"sectors"`
	Patterns               []PatternRule                   `yaml:"patterns"`
	Conflicts              map[types.Sector][]string       `yaml:"conflicts"`
	MethodWeights          map[types.Method]float64        `yaml:"method_weights"`
	DefaultMethodWeight    *float64                        `yaml:"default_method_weight"`
	CompanyMatchConfidence *float64                        `yaml:"company_match_confidence"`
	KeywordScoring         *KeywordScoring                 `yaml:"keyword_scoring"`
	LowConfidenceWarning   *float64                        `yaml:"low_confidence_warning"`
	ManualOverrides        map[string]types.ManualOverride `yaml:"manual_overrides"`
}

// DefaultTable returns a fresh copy of the embedded table.
func DefaultTable() *Table {
	t, err := parseTable(defaultTableYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded sector table: %v", err))
	}
	return t
}

func parseTable(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse sector table: %w", err)
	}
	if err := t.compile(); err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadTable overlays the YAML (or JSON) file at path onto the embedded table
// and returns the result together with any overrides the file declares.
func LoadTable(path string) (*Table, map[string]types.ManualOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sector table %s: %w", path, err)
	}

	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, nil, fmt.Errorf("failed to parse sector table %s: %w", path, err)
	}

	t := DefaultTable()
	for _, s := range f.Sectors {
		replaced := false
		for i := range t.Sectors {
			if t.Sectors[i].Name == s.Name {
				t.Sectors[i] = s
				replaced = true
				break
			}
		}
		if !replaced {
			t.Sectors = append(t.Sectors, s)
		}
	}
	if f.Patterns != nil {
		t.Patterns = f.Patterns
	}
	if f.Conflicts != nil {
		t.Conflicts = f.Conflicts
	}
	for m, w := range f.MethodWeights {
		t.MethodWeights[m] = w
	}
	if f.DefaultMethodWeight != nil {
		t.DefaultMethodWeight = *f.DefaultMethodWeight
	}
	if f.CompanyMatchConfidence != nil {
		t.CompanyMatchConfidence = *f.CompanyMatchConfidence
	}
	if f.KeywordScoring != nil {
		t.KeywordScoring = *f.KeywordScoring
	}
	if f.LowConfidenceWarning != nil {
		t.LowConfidenceWarning = *f.LowConfidenceWarning
	}

	if err := t.compile(); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, f.ManualOverrides, nil
}

func (t *Table) compile() error {
	if len(t.Sectors) == 0 {
		return fmt.Errorf("sector table has no sectors")
	}
	t.valid = map[types.Sector]bool{types.SectorOther: true, types.SectorUnknown: true}
	for _, s := range t.Sectors {
		if s.Name == "" {
			return fmt.Errorf("sector with empty name")
		}
		t.valid[s.Name] = true
	}
	for i := range t.Patterns {
		p := &t.Patterns[i]
		re, err := regexp.Compile("(?i)" + p.Pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern %q: %w", p.Pattern, err)
		}
		if !t.valid[p.Category] {
			return fmt.Errorf("pattern %q: %w: %s", p.Pattern, types.ErrInvalidCategory, p.Category)
		}
		p.re = re
	}
	if t.MethodWeights == nil {
		t.MethodWeights = map[types.Method]float64{}
	}
	return nil
}

// IsValidCategory reports whether category is a table sector, other or
// unknown.
func (t *Table) IsValidCategory(category types.Sector) bool {
	return t.valid[category]
}

// Categories lists the valid categories in table order followed by other and
// unknown.
func (t *Table) Categories() []types.Sector {
	out := make([]types.Sector, 0, len(t.Sectors)+2)
	for _, s := range t.Sectors {
		out = append(out, s.Name)
	}
	return append(out, types.SectorOther, types.SectorUnknown)
}

func (t *Table) methodWeight(m types.Method) float64 {
	if w, ok := t.MethodWeights[m]; ok {
		return w
	}
	return t.DefaultMethodWeight
}
