package types

import "strings"

// Relation types produced by the pattern and proximity passes. The
// dependency pass uses the raw dependency label (nsubj, dobj, pobj, compound).
const (
	RelationSubsidiaryOf  = "subsidiary_of"
	RelationOwns          = "owns"
	RelationLeads         = "leads"
	RelationEmployedBy    = "employed_by"
	RelationLocatedIn     = "located_in"
	RelationOperatesIn    = "operates_in"
	RelationSuppliesTo    = "supplies_to"
	RelationPartnersWith  = "partners_with"
	RelationMentionedWith = "mentioned_with"
)

// RelationMethod records which extraction pass found a relationship.
type RelationMethod string

const (
	RelationMethodDependency RelationMethod = "dependency"
	RelationMethodPattern    RelationMethod = "pattern"
	RelationMethodProximity  RelationMethod = "proximity"
)

// EntityRef is a detached reference to an entity.
type EntityRef struct {
	Name     string     `json:"name"`
	Type     EntityType `json:"type"`
	Category string     `json:"category"`
}

// Relationship links two entities found in the same document.
type Relationship struct {
	Source       EntityRef      `json:"source"`
	Target       EntityRef      `json:"target"`
	RelationType string         `json:"relation_type"`
	Context      string         `json:"context"`
	Confidence   float64        `json:"confidence"`
	Method       RelationMethod `json:"method"`
	SourceSpan   Span           `json:"source_span"`
	TargetSpan   Span           `json:"target_span"`
}

// RelationshipKey is the uniqueness key for relationships.
type RelationshipKey struct {
	Source       string
	Target       string
	RelationType string
}

// Key returns the case-insensitive uniqueness key of the relationship.
func (r Relationship) Key() RelationshipKey {
	return RelationshipKey{
		Source:       strings.ToLower(r.Source.Name),
		Target:       strings.ToLower(r.Target.Name),
		RelationType: r.RelationType,
	}
}
