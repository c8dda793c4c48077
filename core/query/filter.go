package query

// FilterNode is a member of a Filter's fields or of an Operator's filters:
// *FilterField, *FilterListField or *ComplexFilterField.
type FilterNode interface {
	filterNode()
}

// ConditionNode is a member of a ComplexFilterField's filters: *FilterField or
// *FilterListField.
type ConditionNode interface {
	FilterNode
	conditionNode()
}

// FilterField is a single condition. A dotted Field ("client.name") is
// expanded into nested objects when rendered.
type FilterField struct {
	Field string
	Match MatchType
	Value any
}

// NewFilterField creates a FilterField.
func NewFilterField(field string, match MatchType, value any) *FilterField {
	return &FilterField{Field: field, Match: match, Value: value}
}

// FilterListField matches a to-many field with a quantifier such that the
// inner condition holds.
type FilterListField struct {
	ListField   string
	Match       ListMatchType
	FilterField *FilterField
}

// NewFilterListField creates a FilterListField.
func NewFilterListField(listField string, match ListMatchType, field *FilterField) *FilterListField {
	return &FilterListField{ListField: listField, Match: match, FilterField: field}
}

// ComplexFilterField scopes conditions to a nested entity. ListMatchType is
// empty unless the relationship is list quantified.
type ComplexFilterField struct {
	Name            string
	Filters         []ConditionNode
	ComplexChildren []*ComplexFilterField
	ListMatchType   ListMatchType
	Operators       []*Operator
}

// NewComplexFilterField creates a ComplexFilterField. An empty listMatchType
// leaves the field unquantified.
func NewComplexFilterField(name string, listMatchType ListMatchType) *ComplexFilterField {
	return &ComplexFilterField{Name: name, ListMatchType: listMatchType}
}

// Operator is an and/or group with leaf filters and nested child groups.
type Operator struct {
	Type     LogicalOperator
	Filters  []FilterNode
	Children []*Operator
}

// NewOperator creates an Operator holding the given conditions.
func NewOperator(opType LogicalOperator, filters ...*FilterField) *Operator {
	op := &Operator{Type: opType}
	for _, f := range filters {
		op.Filters = append(op.Filters, f)
	}
	return op
}

// Filter is the condition tree rendered as the where argument.
type Filter struct {
	Fields    []FilterNode
	Operators []*Operator
}

// NewFilter creates an empty Filter.
func NewFilter() *Filter {
	return &Filter{}
}

// IsEmpty reports whether the filter has neither fields nor operators.
func (f *Filter) IsEmpty() bool {
	return f == nil || (len(f.Fields) == 0 && len(f.Operators) == 0)
}

// operator returns the top-level operator of the given type.
func (f *Filter) operator(opType LogicalOperator) *Operator {
	for _, op := range f.Operators {
		if op.Type == opType {
			return op
		}
	}
	return nil
}

func (*FilterField) filterNode()        {}
func (*FilterField) conditionNode()     {}
func (*FilterListField) filterNode()    {}
func (*FilterListField) conditionNode() {}
func (*ComplexFilterField) filterNode() {}
