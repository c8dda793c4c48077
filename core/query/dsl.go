// Package query defines the model for GraphQL-style operations (queries,
// mutations and subscriptions), the fluent builders that populate it and the
// assembler that renders it into operation text.
package query

// SortDirection specifies the direction for sorting.
type SortDirection string

// Supported sort directions.
const (
	SortDirectionAsc  SortDirection = "ASC"
	SortDirectionDesc SortDirection = "DESC"
)

// LogicalOperator is the boolean type of an Operator group.
type LogicalOperator string

// Supported logical operators.
const (
	LogicalOperatorOr  LogicalOperator = "or"
	LogicalOperatorAnd LogicalOperator = "and"
)

// ListMatchType is the quantifier applied to a to-many relationship.
type ListMatchType string

// Supported list quantifiers.
const (
	ListMatchSome ListMatchType = "some"
	ListMatchAny  ListMatchType = "any"
	ListMatchAll  ListMatchType = "all"
	ListMatchNone ListMatchType = "none"
)

// MatchType is the comparison applied by a filter condition.
type MatchType string

// Equality and membership matches.
const (
	MatchEquals    MatchType = "eq"
	MatchNotEquals MatchType = "neq"
	MatchIn        MatchType = "in"
	MatchNotIn     MatchType = "nin"
)

// String matches.
const (
	MatchContains      MatchType = "contains"
	MatchNotContains   MatchType = "ncontains"
	MatchStartsWith    MatchType = "startsWith"
	MatchNotStartsWith MatchType = "nstartsWith"
	MatchEndsWith      MatchType = "endsWith"
	MatchNotEndsWith   MatchType = "nendsWith"
)

// Numeric matches.
const (
	MatchGreaterThan            MatchType = "gt"
	MatchNotGreaterThan         MatchType = "ngt"
	MatchGreaterThanOrEquals    MatchType = "gte"
	MatchNotGreaterThanOrEquals MatchType = "ngte"
	MatchLessThan               MatchType = "lt"
	MatchNotLessThan            MatchType = "nlt"
	MatchLessThanOrEquals       MatchType = "lte"
	MatchNotLessThanOrEquals    MatchType = "nlte"
)

// matchTypes is the closed set of match operators.
var matchTypes = map[MatchType]struct{}{
	MatchEquals:                 {},
	MatchNotEquals:              {},
	MatchIn:                     {},
	MatchNotIn:                  {},
	MatchContains:               {},
	MatchNotContains:            {},
	MatchStartsWith:             {},
	MatchNotStartsWith:          {},
	MatchEndsWith:               {},
	MatchNotEndsWith:            {},
	MatchGreaterThan:            {},
	MatchNotGreaterThan:         {},
	MatchGreaterThanOrEquals:    {},
	MatchNotGreaterThanOrEquals: {},
	MatchLessThan:               {},
	MatchNotLessThan:            {},
	MatchLessThanOrEquals:       {},
	MatchNotLessThanOrEquals:    {},
}

// IsStandard checks if a match type is one of the known operators. Unknown
// match types are still rendered as given.
func (m MatchType) IsStandard() bool {
	_, ok := matchTypes[m]
	return ok
}

// IsList reports whether the match compares against a list of values.
func (m MatchType) IsList() bool {
	return m == MatchIn || m == MatchNotIn
}

// GetStandardMatchTypes returns the set of known match operators.
func GetStandardMatchTypes() map[MatchType]struct{} {
	return matchTypes
}

// IsValid reports whether the quantifier is one of some, any, all or none.
func (l ListMatchType) IsValid() bool {
	switch l {
	case ListMatchSome, ListMatchAny, ListMatchAll, ListMatchNone:
		return true
	}
	return false
}

// IsValid reports whether the operator is and/or.
func (o LogicalOperator) IsValid() bool {
	return o == LogicalOperatorAnd || o == LogicalOperatorOr
}

// IsValid reports whether the direction is ASC or DESC.
func (d SortDirection) IsValid() bool {
	return d == SortDirectionAsc || d == SortDirectionDesc
}

// QueryParameter is a named argument value. It is used for operation
// arguments, pagination (skip, take) and legacy flat sort entries.
type QueryParameter struct {
	Field string
	Value any
}

// NewQueryParameter creates a QueryParameter.
func NewQueryParameter(field string, value any) QueryParameter {
	return QueryParameter{Field: field, Value: value}
}
