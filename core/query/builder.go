package query

import (
	"fmt"
	"strings"

	"github.com/asaidimu/go-gqlbuilder/utils"
)

// QueryBuilder provides a fluent API for assembling a query Operation,
// including its selection, arguments, pagination, sorting and filtering.
type QueryBuilder struct {
	query *Operation
}

// NewQueryBuilder creates a query builder. Collection queries wrap their
// selection in items and optionally request totalCount.
func NewQueryBuilder(name string, isCollection, withCount bool, parameters ...QueryParameter) *QueryBuilder {
	q := NewQuery(name)
	q.IsCollection = isCollection
	q.WithCount = withCount
	q.Parameters = append(q.Parameters, parameters...)
	return &QueryBuilder{query: q}
}

// AddColumn adds a column to the selection.
func (qb *QueryBuilder) AddColumn(name string) *QueryBuilder {
	qb.query.Columns = append(qb.query.Columns, NewColumn(name))
	return qb
}

// AddEntity adds a column with nested children and returns its builder. An
// existing top-level column of the same name is reused.
func (qb *QueryBuilder) AddEntity(name string) *ColumnBuilder {
	return addEntity(qb.query, name)
}

// AddNavigation adds columns from a comma separated list of dotted paths,
// e.g. "id,client.name,client.address.street".
func (qb *QueryBuilder) AddNavigation(paths string) *QueryBuilder {
	addNavigation(qb.query, paths)
	return qb
}

// AddPagination sets the skip and take arguments, replacing earlier values.
func (qb *QueryBuilder) AddPagination(skip, take int) *QueryBuilder {
	qb.query.Pagination = []QueryParameter{
		NewQueryParameter("skip", skip),
		NewQueryParameter("take", take),
	}
	return qb
}

// AddSort appends an entry to the flat sort list.
//
// Deprecated: use CreateSort. The flat list is ignored once the sort tree
// has entries.
func (qb *QueryBuilder) AddSort(field string, direction SortDirection) *QueryBuilder {
	qb.query.Sort = append(qb.query.Sort, NewQueryParameter(field, direction))
	return qb
}

// CreateSort starts a new sort tree for the query, replacing any previous one.
func (qb *QueryBuilder) CreateSort() *SortBuilder {
	return newSortBuilder(qb.query)
}

// AddParameter adds an argument to the query.
func (qb *QueryBuilder) AddParameter(field string, value any) *QueryBuilder {
	qb.query.Parameters = append(qb.query.Parameters, NewQueryParameter(field, value))
	return qb
}

// AddParameters adds several arguments in order.
func (qb *QueryBuilder) AddParameters(params ...QueryParameter) *QueryBuilder {
	qb.query.Parameters = append(qb.query.Parameters, params...)
	return qb
}

// AddParameterStruct adds one argument per exported field of record, in
// sorted key order, using the field's json name.
func (qb *QueryBuilder) AddParameterStruct(record any) (*QueryBuilder, error) {
	params, err := structParameters(record)
	if err != nil {
		return qb, err
	}
	return qb.AddParameters(params...), nil
}

// AddQuery attaches another query to be rendered in the same document. The
// attached query is marked as a sub-query and is owned by this one from now on.
func (qb *QueryBuilder) AddQuery(other *QueryBuilder) *QueryBuilder {
	if other == nil {
		return qb
	}
	sub := other.GetQuery()
	sub.IsSubQuery = true
	qb.query.Queries = append(qb.query.Queries, sub)
	return qb
}

// CreateFilter starts a new filter for the query, replacing any previous one.
func (qb *QueryBuilder) CreateFilter() *FilterBuilder {
	return newFilterBuilder(qb.query)
}

// HasSort reports whether the query has sort entries in either the sort tree
// or the flat list.
func (qb *QueryBuilder) HasSort() bool {
	return len(qb.query.Sort) > 0 || !qb.query.SortByBuilder.IsEmpty()
}

// GetQuery returns the query being built.
func (qb *QueryBuilder) GetQuery() *Operation {
	return qb.query
}

// String renders the query.
func (qb *QueryBuilder) String() string {
	return qb.query.String()
}

// MutationBuilder provides a fluent API for assembling a mutation.
type MutationBuilder struct {
	mutation *Operation
}

// NewMutationBuilder creates a mutation builder.
func NewMutationBuilder(name string) *MutationBuilder {
	return &MutationBuilder{mutation: NewMutation(name)}
}

// AddParameter adds an argument to the mutation.
func (mb *MutationBuilder) AddParameter(field string, value any) *MutationBuilder {
	mb.mutation.Parameters = append(mb.mutation.Parameters, NewQueryParameter(field, value))
	return mb
}

// AddParameters adds several arguments in order.
func (mb *MutationBuilder) AddParameters(params ...QueryParameter) *MutationBuilder {
	mb.mutation.Parameters = append(mb.mutation.Parameters, params...)
	return mb
}

// AddParameterStruct adds one argument per exported field of record.
func (mb *MutationBuilder) AddParameterStruct(record any) (*MutationBuilder, error) {
	params, err := structParameters(record)
	if err != nil {
		return mb, err
	}
	return mb.AddParameters(params...), nil
}

// AddColumn adds a column to the mutation's selection.
func (mb *MutationBuilder) AddColumn(name string) *MutationBuilder {
	mb.mutation.Columns = append(mb.mutation.Columns, NewColumn(name))
	return mb
}

// AddEntity adds a nested selection and returns its builder.
func (mb *MutationBuilder) AddEntity(name string) *ColumnBuilder {
	return addEntity(mb.mutation, name)
}

// AddNavigation adds columns from a comma separated list of dotted paths.
func (mb *MutationBuilder) AddNavigation(paths string) *MutationBuilder {
	addNavigation(mb.mutation, paths)
	return mb
}

// GetMutation returns the mutation being built.
func (mb *MutationBuilder) GetMutation() *Operation {
	return mb.mutation
}

// String renders the mutation.
func (mb *MutationBuilder) String() string {
	return mb.mutation.String()
}

// SubscriptionBuilder provides a fluent API for assembling a subscription.
type SubscriptionBuilder struct {
	subscription *Operation
}

// NewSubscriptionBuilder creates a subscription builder for the given topic.
func NewSubscriptionBuilder(name, topic string) *SubscriptionBuilder {
	return &SubscriptionBuilder{subscription: NewSubscription(name, topic)}
}

// AddColumn adds a column to the subscription's selection.
func (sb *SubscriptionBuilder) AddColumn(name string) *SubscriptionBuilder {
	sb.subscription.Columns = append(sb.subscription.Columns, NewColumn(name))
	return sb
}

// AddEntity adds a nested selection and returns its builder.
func (sb *SubscriptionBuilder) AddEntity(name string) *ColumnBuilder {
	return addEntity(sb.subscription, name)
}

// AddNavigation adds columns from a comma separated list of dotted paths.
func (sb *SubscriptionBuilder) AddNavigation(paths string) *SubscriptionBuilder {
	addNavigation(sb.subscription, paths)
	return sb
}

// AddParameter adds an argument after the topic.
func (sb *SubscriptionBuilder) AddParameter(field string, value any) *SubscriptionBuilder {
	sb.subscription.Parameters = append(sb.subscription.Parameters, NewQueryParameter(field, value))
	return sb
}

// CreateFilter starts a new filter for the subscription.
func (sb *SubscriptionBuilder) CreateFilter() *FilterBuilder {
	return newFilterBuilder(sb.subscription)
}

// GetSubscription returns the subscription being built.
func (sb *SubscriptionBuilder) GetSubscription() *Operation {
	return sb.subscription
}

// String renders the subscription.
func (sb *SubscriptionBuilder) String() string {
	return sb.subscription.String()
}

func addEntity(op *Operation, name string) *ColumnBuilder {
	if existing := op.column(name); existing != nil {
		return &ColumnBuilder{column: existing}
	}
	column := NewColumn(name)
	op.Columns = append(op.Columns, column)
	return &ColumnBuilder{column: column}
}

func addNavigation(op *Operation, paths string) {
	for _, path := range strings.Split(paths, ",") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}

		names := strings.Split(path, ".")
		if len(names) == 1 {
			op.Columns = append(op.Columns, NewColumn(names[0]))
			continue
		}

		entity := addEntity(op, names[0])
		for _, name := range names[1 : len(names)-1] {
			entity = entity.AddEntity(name)
		}
		entity.AddColumn(names[len(names)-1])
	}
}

func structParameters(record any) ([]QueryParameter, error) {
	fields, err := utils.StructToMap(record)
	if err != nil {
		return nil, fmt.Errorf("failed to convert parameters: %w", err)
	}
	params := make([]QueryParameter, 0, len(fields))
	for _, key := range utils.SortedKeys(fields) {
		params = append(params, NewQueryParameter(key, fields[key]))
	}
	return params, nil
}
