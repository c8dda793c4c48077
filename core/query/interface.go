package query

// Renderer is implemented by anything that renders operation text:
// operations and all three operation builders.
type Renderer interface {
	// String renders the operation text. Repeated calls on unchanged state
	// return identical text.
	String() string
}

var (
	_ Renderer = (*Operation)(nil)
	_ Renderer = (*QueryBuilder)(nil)
	_ Renderer = (*MutationBuilder)(nil)
	_ Renderer = (*SubscriptionBuilder)(nil)
)
