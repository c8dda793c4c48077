package query

// ColumnBuilder extends a single column with nested selections.
type ColumnBuilder struct {
	column *Column
}

// AddColumn adds a child column.
func (cb *ColumnBuilder) AddColumn(name string) *ColumnBuilder {
	cb.column.Children = append(cb.column.Children, NewColumn(name))
	return cb
}

// AddEntity adds a child column with its own children and returns its
// builder. An existing child of the same name is reused, the same as on the
// operation builders, so repeated calls merge into one selection instead of
// emitting the entity twice.
func (cb *ColumnBuilder) AddEntity(name string) *ColumnBuilder {
	if existing := cb.column.child(name); existing != nil {
		return &ColumnBuilder{column: existing}
	}
	child := NewColumn(name)
	cb.column.Children = append(cb.column.Children, child)
	return &ColumnBuilder{column: child}
}

// Column returns the column being built.
func (cb *ColumnBuilder) Column() *Column {
	return cb.column
}
