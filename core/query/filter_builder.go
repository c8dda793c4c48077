package query

// FilterBuilder builds the where clause of an operation.
type FilterBuilder struct {
	filter *Filter
}

func newFilterBuilder(op *Operation) *FilterBuilder {
	op.Filter = NewFilter()
	return &FilterBuilder{filter: op.Filter}
}

// AddOperator adds a top-level and/or group. A filter holds at most one
// top-level group per type: when one already exists its builder is returned
// and the given filters are dropped.
func (fb *FilterBuilder) AddOperator(opType LogicalOperator, filters ...*FilterField) *OperatorBuilder {
	if existing := fb.filter.operator(opType); existing != nil {
		return &OperatorBuilder{operator: existing}
	}
	op := NewOperator(opType, filters...)
	fb.filter.Operators = append(fb.filter.Operators, op)
	return &OperatorBuilder{operator: op}
}

// AddCondition adds a field condition.
func (fb *FilterBuilder) AddCondition(field string, match MatchType, value any) *FilterBuilder {
	fb.filter.Fields = append(fb.filter.Fields, NewFilterField(field, match, value))
	return fb
}

// AddListCondition adds a quantified condition over a list field.
func (fb *FilterBuilder) AddListCondition(listField string, match ListMatchType, field *FilterField) *FilterBuilder {
	fb.filter.Fields = append(fb.filter.Fields, NewFilterListField(listField, match, field))
	return fb
}

// AddEntity starts conditions scoped to a nested entity, quantified with
// some. Use AddEntityList for another quantifier.
func (fb *FilterBuilder) AddEntity(name string) *ComplexFieldBuilder {
	field := NewComplexFilterField(name, ListMatchSome)
	fb.filter.Fields = append(fb.filter.Fields, field)
	return &ComplexFieldBuilder{field: field}
}

// AddEntityList starts conditions scoped to a to-many relationship.
func (fb *FilterBuilder) AddEntityList(name string, match ListMatchType) *ComplexFieldBuilder {
	field := NewComplexFilterField(name, match)
	fb.filter.Fields = append(fb.filter.Fields, field)
	return &ComplexFieldBuilder{field: field}
}

// Filter returns the filter being built.
func (fb *FilterBuilder) Filter() *Filter {
	return fb.filter
}

// OperatorBuilder extends an and/or group.
type OperatorBuilder struct {
	operator *Operator
}

// AddOperatorChild adds a nested group and returns its builder.
func (ob *OperatorBuilder) AddOperatorChild(opType LogicalOperator, filters ...*FilterField) *OperatorBuilder {
	child := NewOperator(opType, filters...)
	ob.operator.Children = append(ob.operator.Children, child)
	return &OperatorBuilder{operator: child}
}

// AddCondition adds a field condition to the group.
func (ob *OperatorBuilder) AddCondition(field string, match MatchType, value any) *OperatorBuilder {
	ob.operator.Filters = append(ob.operator.Filters, NewFilterField(field, match, value))
	return ob
}

// AddListCondition adds a quantified list condition to the group.
func (ob *OperatorBuilder) AddListCondition(listField string, match ListMatchType, field *FilterField) *OperatorBuilder {
	ob.operator.Filters = append(ob.operator.Filters, NewFilterListField(listField, match, field))
	return ob
}

// AddEntity adds entity scoped conditions to the group, quantified with some.
func (ob *OperatorBuilder) AddEntity(name string) *ComplexFieldBuilder {
	field := NewComplexFilterField(name, ListMatchSome)
	ob.operator.Filters = append(ob.operator.Filters, field)
	return &ComplexFieldBuilder{field: field}
}

// AddEntityList adds list quantified entity conditions to the group.
func (ob *OperatorBuilder) AddEntityList(name string, match ListMatchType) *ComplexFieldBuilder {
	field := NewComplexFilterField(name, match)
	ob.operator.Filters = append(ob.operator.Filters, field)
	return &ComplexFieldBuilder{field: field}
}

// Operator returns the group being built.
func (ob *OperatorBuilder) Operator() *Operator {
	return ob.operator
}

// ComplexFieldBuilder extends conditions scoped to a nested entity.
type ComplexFieldBuilder struct {
	field *ComplexFilterField
}

// AddEntity adds a nested entity scope quantified with some.
func (cb *ComplexFieldBuilder) AddEntity(name string) *ComplexFieldBuilder {
	child := NewComplexFilterField(name, ListMatchSome)
	cb.field.ComplexChildren = append(cb.field.ComplexChildren, child)
	return &ComplexFieldBuilder{field: child}
}

// AddEntityList adds a nested list quantified scope.
func (cb *ComplexFieldBuilder) AddEntityList(name string, match ListMatchType) *ComplexFieldBuilder {
	child := NewComplexFilterField(name, match)
	cb.field.ComplexChildren = append(cb.field.ComplexChildren, child)
	return &ComplexFieldBuilder{field: child}
}

// AddCondition adds a field condition inside the scope.
func (cb *ComplexFieldBuilder) AddCondition(field string, match MatchType, value any) *ComplexFieldBuilder {
	cb.field.Filters = append(cb.field.Filters, NewFilterField(field, match, value))
	return cb
}

// AddConditionWithList adds a quantified list condition inside the scope.
func (cb *ComplexFieldBuilder) AddConditionWithList(listField string, match ListMatchType, field *FilterField) *ComplexFieldBuilder {
	cb.field.Filters = append(cb.field.Filters, NewFilterListField(listField, match, field))
	return cb
}

// AddOperator adds an and/or group inside the scope. Unlike the top-level
// filter, groups of the same type are not merged here.
func (cb *ComplexFieldBuilder) AddOperator(opType LogicalOperator, filters ...*FilterField) *OperatorBuilder {
	op := NewOperator(opType, filters...)
	cb.field.Operators = append(cb.field.Operators, op)
	return &OperatorBuilder{operator: op}
}

// Field returns the complex field being built.
func (cb *ComplexFieldBuilder) Field() *ComplexFilterField {
	return cb.field
}
