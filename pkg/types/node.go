package types

// EntityType identifies which entity list an entity belongs to.
type EntityType string

const (
	EntityTypeOrganization EntityType = "organization"
	EntityTypeLocation     EntityType = "location"
	EntityTypePerson       EntityType = "person"
)

// LocationType is the geographic classification of a location.
type LocationType string

const (
	LocationTypeCountry  LocationType = "country"
	LocationTypeCity     LocationType = "city"
	LocationTypeLocation LocationType = "location"
)

// Span is a byte range [Start, End) in the analysed text.
type Span struct {
	Start int `json:"start_char"`
	End   int `json:"end_char"`
}

// Len returns the span width in bytes.
func (s Span) Len() int { return s.End - s.Start }

// Contains reports whether pos falls inside the span.
func (s Span) Contains(pos int) bool { return s.Start <= pos && pos < s.End }

// Validate checks that the span is well formed.
func (s Span) Validate() error {
	if s.Start < 0 || s.End < s.Start {
		return ErrInvalidSpan
	}
	return nil
}

// Organization is an extracted organization with its sector.
type Organization struct {
	Name       string  `json:"name"`
	Category   Sector  `json:"category"`
	Confidence float64 `json:"confidence"`
	Context    string  `json:"context"`
	Span
	Label string `json:"label"`
}

// Ref returns the lightweight reference used by relationships.
func (o Organization) Ref() EntityRef {
	category := string(o.Category)
	if category == "" {
		category = string(SectorOther)
	}
	return EntityRef{Name: o.Name, Type: EntityTypeOrganization, Category: category}
}

// Location is an extracted geographic entity.
type Location struct {
	Name       string       `json:"name"`
	Type       LocationType `json:"type"`
	Confidence float64      `json:"confidence"`
	Context    string       `json:"context"`
	Span
	Label string `json:"label"`
}

// Ref returns the lightweight reference used by relationships.
func (l Location) Ref() EntityRef {
	category := string(l.Type)
	if category == "" {
		category = string(LocationTypeLocation)
	}
	return EntityRef{Name: l.Name, Type: EntityTypeLocation, Category: category}
}

// Person is an extracted person. Role and Organization are empty when
// nothing was identified.
type Person struct {
	Name         string  `json:"name"`
	Role         string  `json:"role,omitempty"`
	Organization string  `json:"organization,omitempty"`
	Confidence   float64 `json:"confidence"`
	Context      string  `json:"context"`
	Span
	Label string `json:"label"`
}

// Ref returns the lightweight reference used by relationships.
func (p Person) Ref() EntityRef {
	category := p.Role
	if category == "" {
		category = string(EntityTypePerson)
	}
	return EntityRef{Name: p.Name, Type: EntityTypePerson, Category: category}
}

// Validate checks if the Organization has the required fields set.
func (o *Organization) Validate() error {
	if o.Name == "" {
		return ErrEmptyName
	}
	return o.Span.Validate()
}
