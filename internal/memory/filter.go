package memory

import "slices"

// Metadata field names shared by the filter and the vector index payload.
const (
	FieldUserID      = "user_id"
	FieldPrivacy     = "privacy_level"
	FieldTags        = "tags"
	FieldCategory    = "category"
	FieldMemoryType  = "memory_type"
	FieldImportance  = "importance"
	FieldContentHash = "content_hash"
)

// Predicate is a metadata filter the vector index evaluates natively.
type Predicate interface {
	predicate()
}

// And matches when every child matches.
type And []Predicate

// Or matches when any child matches.
type Or []Predicate

// Eq matches a field equal to Value. On list fields, any element may match.
type Eq struct {
	Field string
	Value string
}

// In matches a field whose value is one of Values. On list fields,
// it matches when the lists intersect.
type In struct {
	Field  string
	Values []string
}

// Gte is an inclusive integer lower bound.
type Gte struct {
	Field string
	Value int
}

func (And) predicate() {}
func (Or) predicate()  {}
func (Eq) predicate()  {}
func (In) predicate()  {}
func (Gte) predicate() {}

// SearchOptions narrows and sizes a memory search.
type SearchOptions struct {
	TopK           int          `json:"top_k,omitempty"`
	IncludePrivate bool         `json:"include_private,omitempty"`
	PrivateTags    []string     `json:"private_tags,omitempty"`
	Categories     []string     `json:"categories,omitempty"`
	MemoryTypes    []MemoryType `json:"memory_types,omitempty"`
	MinImportance  *int         `json:"min_importance,omitempty"`
}

// visibleByDefault are the tiers every search may see.
var visibleByDefault = []string{string(PrivacyPublic), string(PrivacyContextual)}

// BuildFilter assembles the pre-filter for a search. The user clause is
// always present and vault memories are never reachable through it.
func BuildFilter(userID string, opts SearchOptions) Predicate {
	filter := And{
		Eq{Field: FieldUserID, Value: userID},
		privacyClause(opts),
	}
	if len(opts.Categories) > 0 {
		filter = append(filter, In{Field: FieldCategory, Values: opts.Categories})
	}
	if len(opts.MemoryTypes) > 0 {
		types := make([]string, len(opts.MemoryTypes))
		for i, t := range opts.MemoryTypes {
			types[i] = string(t)
		}
		filter = append(filter, In{Field: FieldMemoryType, Values: types})
	}
	if opts.MinImportance != nil {
		filter = append(filter, Gte{Field: FieldImportance, Value: *opts.MinImportance})
	}
	return filter
}

func privacyClause(opts SearchOptions) Predicate {
	if !opts.IncludePrivate {
		return In{Field: FieldPrivacy, Values: visibleByDefault}
	}
	if len(opts.PrivateTags) == 0 {
		return In{Field: FieldPrivacy, Values: append(append([]string{}, visibleByDefault...), string(PrivacyPrivate))}
	}
	return Or{
		In{Field: FieldPrivacy, Values: visibleByDefault},
		And{
			Eq{Field: FieldPrivacy, Value: string(PrivacyPrivate)},
			In{Field: FieldTags, Values: opts.PrivateTags},
		},
	}
}

// Allows evaluates p against m, matching the index's semantics. It is used to
// re-check index results.
func Allows(p Predicate, m Metadata) bool {
	switch p := p.(type) {
	case nil:
		return true
	case And:
		for _, c := range p {
			if !Allows(c, m) {
				return false
			}
		}
		return true
	case Or:
		for _, c := range p {
			if Allows(c, m) {
				return true
			}
		}
		return false
	case Eq:
		return slices.Contains(fieldValues(m, p.Field), p.Value)
	case In:
		for _, v := range fieldValues(m, p.Field) {
			if slices.Contains(p.Values, v) {
				return true
			}
		}
		return false
	case Gte:
		return p.Field == FieldImportance && m.Importance >= p.Value
	}
	return false
}

func fieldValues(m Metadata, field string) []string {
	switch field {
	case FieldUserID:
		return []string{m.UserID}
	case FieldPrivacy:
		return []string{string(m.PrivacyLevel)}
	case FieldTags:
		return m.Tags
	case FieldCategory:
		if m.Category == "" {
			return nil
		}
		return []string{m.Category}
	case FieldMemoryType:
		return []string{string(m.MemoryType)}
	case FieldContentHash:
		return []string{m.ContentHash}
	}
	return nil
}
