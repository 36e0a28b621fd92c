package types

import "errors"

// Validation errors
var (
	ErrEmptyName       = errors.New("name cannot be empty")
	ErrInvalidSpan     = errors.New("span end must not precede start")
	ErrInvalidCategory = errors.New("invalid category")
)

// Sector is an organization category.
type Sector string

const (
	SectorMilitary           Sector = "military"
	SectorTechnology         Sector = "technology"
	SectorFinance            Sector = "finance"
	SectorEnergy             Sector = "energy"
	SectorTelecommunications Sector = "telecommunications"
	SectorPharmaceutical     Sector = "pharmaceutical"
	SectorMedia              Sector = "media"
	SectorRetail             Sector = "retail"
	SectorAutomotive         Sector = "automotive"
	SectorOther              Sector = "other"
	// SectorUnknown is accepted for manual overrides only.
	SectorUnknown Sector = "unknown"
)

// Sectors lists the classifiable sectors in table order.
var Sectors = []Sector{
	SectorMilitary,
	SectorTechnology,
	SectorFinance,
	SectorEnergy,
	SectorTelecommunications,
	SectorPharmaceutical,
	SectorMedia,
	SectorRetail,
	SectorAutomotive,
}

func (s Sector) String() string { return string(s) }

// Method tags how a categorization was reached.
type Method string

const (
	MethodManualOverride   Method = "manual_override"
	MethodCompanyNameMatch Method = "company_name_match"
	MethodKeywordAnalysis  Method = "keyword_analysis"
	MethodPatternMatching  Method = "pattern_matching"
	MethodCombined         Method = "combined"
	MethodThresholdFilter  Method = "threshold_filter"
	MethodDefault          Method = "default"
)

func (m Method) String() string { return string(m) }

// CategorizationValidation reports problems with a categorization result.
type CategorizationValidation struct {
	IsValid  bool     `json:"is_valid"`
	Issues   []string `json:"issues"`
	Warnings []string `json:"warnings"`
}

// CategorizationResult is the sector decision for one organization.
type CategorizationResult struct {
	Category            Sector                   `json:"category"`
	Confidence          float64                  `json:"confidence"`
	Method              Method                   `json:"method"`
	Reasoning           string                   `json:"reasoning"`
	Subcategories       []string                 `json:"subcategories,omitempty"`
	ContributingMethods []Method                 `json:"contributing_methods,omitempty"`
	Validation          CategorizationValidation `json:"validation"`
}

// ManualOverride is a human supplied categorization that wins over every
// automated method.
type ManualOverride struct {
	Category       Sector   `json:"category" yaml:"category"`
	Reason         string   `json:"reason" yaml:"reason"`
	Subcategories  []string `json:"subcategories" yaml:"subcategories"`
	AddedTimestamp string   `json:"added_timestamp" yaml:"added_timestamp"`
}
