package query

// Column is a requested field of the selection set. Children hold the nested
// selection under the field.
type Column struct {
	Name     string
	Children []*Column
}

// NewColumn creates a Column without children.
func NewColumn(name string) *Column {
	return &Column{Name: name}
}

// child returns the first direct child with the given name.
func (c *Column) child(name string) *Column {
	for _, ch := range c.Children {
		if ch.Name == name {
			return ch
		}
	}
	return nil
}
