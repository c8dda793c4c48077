package query

// OperationKind distinguishes queries, mutations and subscriptions.
type OperationKind string

// Supported operation kinds.
const (
	OperationQuery        OperationKind = "query"
	OperationMutation     OperationKind = "mutation"
	OperationSubscription OperationKind = "subscription"
)

// IsValid reports whether the kind is query, mutation or subscription.
func (k OperationKind) IsValid() bool {
	switch k {
	case OperationQuery, OperationMutation, OperationSubscription:
		return true
	}
	return false
}

// Operation is the in-memory representation of a query, mutation or
// subscription. It owns its column, filter and sort trees.
type Operation struct {
	Kind       OperationKind
	QueryName  string
	Parameters []QueryParameter
	Pagination []QueryParameter

	// Sort is the flat sort list.
	//
	// Deprecated: use SortByBuilder. Sort is only rendered while
	// SortByBuilder is empty.
	Sort          []QueryParameter
	SortByBuilder *Sort
	Filter        *Filter
	Columns       []*Column

	IsCollection bool
	WithCount    bool

	// Queries are sibling operations rendered in the same document.
	Queries    []*Operation
	IsSubQuery bool

	// TopicName is always injected as the first subscription argument.
	TopicName string
}

// NewOperation creates an empty operation of the given kind.
func NewOperation(kind OperationKind, name string) *Operation {
	return &Operation{
		Kind:          kind,
		QueryName:     name,
		SortByBuilder: NewSort(),
		Filter:        NewFilter(),
	}
}

// NewQuery creates an empty query.
func NewQuery(name string) *Operation {
	return NewOperation(OperationQuery, name)
}

// NewMutation creates an empty mutation.
func NewMutation(name string) *Operation {
	return NewOperation(OperationMutation, name)
}

// NewSubscription creates an empty subscription on the given topic.
func NewSubscription(name, topic string) *Operation {
	op := NewOperation(OperationSubscription, name)
	op.TopicName = topic
	return op
}

// String renders the operation text. It does not modify the operation.
func (o *Operation) String() string {
	return defaultAssembler.Assemble(o)
}

// Render is an alias for String.
func (o *Operation) Render() string {
	return o.String()
}

// column returns the top-level column with the given name.
func (o *Operation) column(name string) *Column {
	for _, c := range o.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}
