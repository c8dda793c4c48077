package query

// SortBuilder builds the sort tree of an operation. Adding an entry whose
// root matches an existing entry's root replaces that entry, and the new one
// goes last.
type SortBuilder struct {
	sort *Sort
}

func newSortBuilder(op *Operation) *SortBuilder {
	op.SortByBuilder = NewSort()
	return &SortBuilder{sort: op.SortByBuilder}
}

// AddOrder sorts by a field. A dotted field ("client.name") replaces any
// entry rooted at "client".
func (sb *SortBuilder) AddOrder(field string, direction SortDirection) *SortBuilder {
	sb.sort.Add(NewSortField(field, direction))
	return sb
}

// AddEntity starts a nested sort through an entity and returns its builder.
// Besides same-root entries it replaces entries whose name starts with the
// entity name.
func (sb *SortBuilder) AddEntity(name string) *ComplexSortBuilder {
	field := NewComplexSortField(name)
	sb.sort.AddEntity(field)
	return &ComplexSortBuilder{field: field}
}

// Sort returns the sort tree being built.
func (sb *SortBuilder) Sort() *Sort {
	return sb.sort
}

// ComplexSortBuilder extends a nested sort entity.
type ComplexSortBuilder struct {
	field *ComplexSortField
}

// AddOrder sorts the entity by one of its fields.
func (cb *ComplexSortBuilder) AddOrder(field string, direction SortDirection) *ComplexSortBuilder {
	cb.field.addField(NewSortField(field, direction))
	return cb
}

// AddEntity starts a deeper nested sort and returns its builder.
func (cb *ComplexSortBuilder) AddEntity(name string) *ComplexSortBuilder {
	child := NewComplexSortField(name)
	cb.field.addChild(child)
	return &ComplexSortBuilder{field: child}
}

// Field returns the complex sort field being built.
func (cb *ComplexSortBuilder) Field() *ComplexSortField {
	return cb.field
}
