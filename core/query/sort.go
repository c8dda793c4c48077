package query

import "strings"

// SortNode is a member of a sort tree: *SortField or *ComplexSortField.
type SortNode interface {
	// RootName is the leading path segment used for collision detection.
	RootName() string
	sortNode()
}

// SortField orders by a single field. A dotted Name expands into nested
// objects when rendered.
type SortField struct {
	Name  string
	Order SortDirection
}

// NewSortField creates a SortField.
func NewSortField(name string, order SortDirection) *SortField {
	return &SortField{Name: name, Order: order}
}

// RootName returns the first segment of the field path.
func (s *SortField) RootName() string { return rootSegment(s.Name) }

// ComplexSortField orders through a nested entity.
type ComplexSortField struct {
	Name            string
	Fields          []*SortField
	ComplexChildren []*ComplexSortField
}

// NewComplexSortField creates an empty ComplexSortField.
func NewComplexSortField(name string) *ComplexSortField {
	return &ComplexSortField{Name: name}
}

// RootName returns the first segment of the entity name.
func (c *ComplexSortField) RootName() string { return rootSegment(c.Name) }

func (*SortField) sortNode()        {}
func (*ComplexSortField) sortNode() {}

// Sort is the ordered sort tree. It holds at most one entry per root name.
type Sort struct {
	Fields []SortNode
}

// NewSort creates an empty Sort.
func NewSort() *Sort {
	return &Sort{}
}

// IsEmpty reports whether no sort entries exist.
func (s *Sort) IsEmpty() bool {
	return s == nil || len(s.Fields) == 0
}

// Add appends node after removing any entry that shares its root.
func (s *Sort) Add(node SortNode) {
	s.Fields = removeSortRoot(s.Fields, node.RootName())
	s.Fields = append(s.Fields, node)
}

// addField adds a sort field inside a complex node, replacing entries of the
// same root among both its fields and its complex children.
func (c *ComplexSortField) addField(field *SortField) {
	c.dropRoot(field.RootName())
	c.Fields = append(c.Fields, field)
}

// AddEntity appends an entity node after removing every entry that shares
// its root or whose name starts with the entity name, so "order" replaces
// "orderRequest.dateRequest".
func (s *Sort) AddEntity(node *ComplexSortField) {
	s.Fields = removeSortNodes(s.Fields, entityCollides(node.Name))
	s.Fields = append(s.Fields, node)
}

// addChild adds a nested complex node, replacing entries by the same rule as
// Sort.AddEntity.
func (c *ComplexSortField) addChild(child *ComplexSortField) {
	c.drop(entityCollides(child.Name))
	c.ComplexChildren = append(c.ComplexChildren, child)
}

func (c *ComplexSortField) dropRoot(root string) {
	c.drop(sameRoot(root))
}

func (c *ComplexSortField) drop(collides func(name string) bool) {
	fields := c.Fields[:0]
	for _, f := range c.Fields {
		if !collides(f.Name) {
			fields = append(fields, f)
		}
	}
	c.Fields = fields

	children := c.ComplexChildren[:0]
	for _, ch := range c.ComplexChildren {
		if !collides(ch.Name) {
			children = append(children, ch)
		}
	}
	c.ComplexChildren = children
}

func sameRoot(root string) func(name string) bool {
	return func(name string) bool { return rootSegment(name) == root }
}

func entityCollides(entity string) func(name string) bool {
	root := rootSegment(entity)
	return func(name string) bool {
		return rootSegment(name) == root || strings.HasPrefix(name, entity)
	}
}

func removeSortRoot(nodes []SortNode, root string) []SortNode {
	return removeSortNodes(nodes, sameRoot(root))
}

func removeSortNodes(nodes []SortNode, collides func(name string) bool) []SortNode {
	kept := nodes[:0]
	for _, n := range nodes {
		if !collides(sortNodeName(n)) {
			kept = append(kept, n)
		}
	}
	return kept
}

func sortNodeName(n SortNode) string {
	switch v := n.(type) {
	case *SortField:
		return v.Name
	case *ComplexSortField:
		return v.Name
	}
	return n.RootName()
}

func rootSegment(path string) string {
	root, _, _ := strings.Cut(path, ".")
	return root
}
