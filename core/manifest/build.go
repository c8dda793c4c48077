package manifest

import (
	"fmt"
	"strings"

	"github.com/asaidimu/go-gqlbuilder/core/query"
)

// Build drives the builders described by the manifest and returns the
// resulting operation.
func (m *Manifest) Build() (*query.Operation, error) {
	kind, err := m.OperationKind()
	if err != nil {
		return nil, err
	}
	if m.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalid)
	}

	switch kind {
	case query.OperationMutation:
		mb, err := m.buildMutation()
		if err != nil {
			return nil, err
		}
		return mb.GetMutation(), nil
	case query.OperationSubscription:
		sb, err := m.buildSubscription()
		if err != nil {
			return nil, err
		}
		return sb.GetSubscription(), nil
	}

	qb, err := m.buildQuery()
	if err != nil {
		return nil, err
	}
	return qb.GetQuery(), nil
}

func (m *Manifest) buildQuery() (*query.QueryBuilder, error) {
	qb := query.NewQueryBuilder(m.Name, m.Collection, m.Count, m.parameters()...)
	for _, column := range m.Columns {
		qb.AddNavigation(column)
	}
	if m.Pagination != nil {
		qb.AddPagination(m.Pagination.Skip, m.Pagination.Take)
	}

	for _, o := range m.Order {
		direction, err := parseDirection(o.Direction)
		if err != nil {
			return nil, fmt.Errorf("%s: order %q: %w", m.Name, o.Field, err)
		}
		qb.AddSort(o.Field, direction)
	}
	if len(m.Sort) > 0 {
		if err := applySort(qb.CreateSort(), m.Sort); err != nil {
			return nil, fmt.Errorf("%s: %w", m.Name, err)
		}
	}
	if m.Filter != nil {
		if err := applyFilter(qb.CreateFilter(), m.Filter); err != nil {
			return nil, fmt.Errorf("%s: %w", m.Name, err)
		}
	}

	for _, sub := range m.Queries {
		if sub == nil {
			continue
		}
		if sub.Kind != "" && sub.Kind != string(query.OperationQuery) {
			return nil, fmt.Errorf("%w: nested %s %q must be a query", ErrUnsupported, sub.Kind, sub.Name)
		}
		if sub.Name == "" {
			return nil, fmt.Errorf("%w: nested query name is required", ErrInvalid)
		}
		subBuilder, err := sub.buildQuery()
		if err != nil {
			return nil, err
		}
		qb.AddQuery(subBuilder)
	}
	return qb, nil
}

func (m *Manifest) buildMutation() (*query.MutationBuilder, error) {
	if err := m.reject("mutation", m.Collection || m.Count, "collection"); err != nil {
		return nil, err
	}
	if err := m.rejectQueryOnly("mutation"); err != nil {
		return nil, err
	}
	if err := m.reject("mutation", m.Filter != nil, "filter"); err != nil {
		return nil, err
	}
	if err := m.reject("mutation", m.Topic != "", "topic"); err != nil {
		return nil, err
	}

	mb := query.NewMutationBuilder(m.Name).AddParameters(m.parameters()...)
	for _, column := range m.Columns {
		mb.AddNavigation(column)
	}
	return mb, nil
}

func (m *Manifest) buildSubscription() (*query.SubscriptionBuilder, error) {
	if m.Topic == "" {
		return nil, fmt.Errorf("%w: subscription %q needs a topic", ErrInvalid, m.Name)
	}
	if err := m.reject("subscription", m.Collection || m.Count, "collection"); err != nil {
		return nil, err
	}
	if err := m.rejectQueryOnly("subscription"); err != nil {
		return nil, err
	}

	sb := query.NewSubscriptionBuilder(m.Name, m.Topic)
	for _, p := range m.parameters() {
		sb.AddParameter(p.Field, p.Value)
	}
	for _, column := range m.Columns {
		sb.AddNavigation(column)
	}
	if m.Filter != nil {
		if err := applyFilter(sb.CreateFilter(), m.Filter); err != nil {
			return nil, fmt.Errorf("%s: %w", m.Name, err)
		}
	}
	return sb, nil
}

func (m *Manifest) rejectQueryOnly(kind string) error {
	if err := m.reject(kind, m.Pagination != nil, "pagination"); err != nil {
		return err
	}
	if err := m.reject(kind, len(m.Sort) > 0 || len(m.Order) > 0, "sort"); err != nil {
		return err
	}
	return m.reject(kind, len(m.Queries) > 0, "queries")
}

func (m *Manifest) reject(kind string, present bool, key string) error {
	if present {
		return fmt.Errorf("%w: %s %q cannot have %s", ErrUnsupported, kind, m.Name, key)
	}
	return nil
}

func (m *Manifest) parameters() []query.QueryParameter {
	params := make([]query.QueryParameter, 0, len(m.Parameters))
	for _, p := range m.Parameters {
		params = append(params, query.NewQueryParameter(p.Name, p.Value.V))
	}
	return params
}

// applySort adds the entries in order, so later entries replace earlier ones
// that share a root.
func applySort(sb *query.SortBuilder, specs []SortSpec) error {
	for _, spec := range specs {
		switch {
		case spec.Entity != "":
			if err := applyComplexSort(sb.AddEntity(spec.Entity), spec.Sort); err != nil {
				return fmt.Errorf("sort %q: %w", spec.Entity, err)
			}
		case spec.Field != "":
			direction, err := parseDirection(spec.Direction)
			if err != nil {
				return fmt.Errorf("sort %q: %w", spec.Field, err)
			}
			sb.AddOrder(spec.Field, direction)
		default:
			return fmt.Errorf("%w: sort entry needs a field or an entity", ErrInvalid)
		}
	}
	return nil
}

func applyComplexSort(cb *query.ComplexSortBuilder, specs []SortSpec) error {
	for _, spec := range specs {
		switch {
		case spec.Entity != "":
			if err := applyComplexSort(cb.AddEntity(spec.Entity), spec.Sort); err != nil {
				return fmt.Errorf("%q: %w", spec.Entity, err)
			}
		case spec.Field != "":
			direction, err := parseDirection(spec.Direction)
			if err != nil {
				return fmt.Errorf("%q: %w", spec.Field, err)
			}
			cb.AddOrder(spec.Field, direction)
		default:
			return fmt.Errorf("%w: sort entry needs a field or an entity", ErrInvalid)
		}
	}
	return nil
}

// scope is the part of the filter builders shared by the top-level filter,
// operator groups and entity scopes. Each builder is adapted to it below.
type scope interface {
	condition(field string, match query.MatchType, value any)
	list(field string, lmt query.ListMatchType, condition *query.FilterField)
	entity(name string, lmt query.ListMatchType) *query.ComplexFieldBuilder
	operator(opType query.LogicalOperator) *query.OperatorBuilder
}

type filterScope struct{ b *query.FilterBuilder }

func (s filterScope) condition(field string, match query.MatchType, value any) {
	s.b.AddCondition(field, match, value)
}

func (s filterScope) list(field string, lmt query.ListMatchType, c *query.FilterField) {
	s.b.AddListCondition(field, lmt, c)
}

func (s filterScope) entity(name string, lmt query.ListMatchType) *query.ComplexFieldBuilder {
	if lmt == "" {
		return s.b.AddEntity(name)
	}
	return s.b.AddEntityList(name, lmt)
}

func (s filterScope) operator(opType query.LogicalOperator) *query.OperatorBuilder {
	return s.b.AddOperator(opType)
}

type operatorScope struct{ b *query.OperatorBuilder }

func (s operatorScope) condition(field string, match query.MatchType, value any) {
	s.b.AddCondition(field, match, value)
}

func (s operatorScope) list(field string, lmt query.ListMatchType, c *query.FilterField) {
	s.b.AddListCondition(field, lmt, c)
}

func (s operatorScope) entity(name string, lmt query.ListMatchType) *query.ComplexFieldBuilder {
	if lmt == "" {
		return s.b.AddEntity(name)
	}
	return s.b.AddEntityList(name, lmt)
}

func (s operatorScope) operator(opType query.LogicalOperator) *query.OperatorBuilder {
	return s.b.AddOperatorChild(opType)
}

type entityScope struct{ b *query.ComplexFieldBuilder }

func (s entityScope) condition(field string, match query.MatchType, value any) {
	s.b.AddCondition(field, match, value)
}

func (s entityScope) list(field string, lmt query.ListMatchType, c *query.FilterField) {
	s.b.AddConditionWithList(field, lmt, c)
}

func (s entityScope) entity(name string, lmt query.ListMatchType) *query.ComplexFieldBuilder {
	if lmt == "" {
		return s.b.AddEntity(name)
	}
	return s.b.AddEntityList(name, lmt)
}

func (s entityScope) operator(opType query.LogicalOperator) *query.OperatorBuilder {
	return s.b.AddOperator(opType)
}

func applyFilter(fb *query.FilterBuilder, spec *FilterSpec) error {
	return applyScope(filterScope{fb}, spec.Conditions, spec.Lists, spec.Entities, spec.Operators)
}

// applyScope adds conditions first, then lists, entities and operators.
// Conditions of a repeated top-level operator type are merged into the
// existing group.
func applyScope(s scope, conditions []ConditionSpec, lists []ListSpec, entities []EntitySpec, operators []OperatorSpec) error {
	for _, c := range conditions {
		field, err := c.filterField()
		if err != nil {
			return err
		}
		s.condition(field.Field, field.Match, field.Value)
	}

	for _, l := range lists {
		lmt, err := parseQuantifier(l.Quantifier)
		if err != nil {
			return fmt.Errorf("list %q: %w", l.Field, err)
		}
		field, err := l.Condition.filterField()
		if err != nil {
			return fmt.Errorf("list %q: %w", l.Field, err)
		}
		s.list(l.Field, lmt, field)
	}

	for _, e := range entities {
		if e.Name == "" {
			return fmt.Errorf("%w: entity name is required", ErrInvalid)
		}
		var lmt query.ListMatchType
		if e.Quantifier != "" {
			var err error
			if lmt, err = parseQuantifier(e.Quantifier); err != nil {
				return fmt.Errorf("entity %q: %w", e.Name, err)
			}
		}
		if err := applyScope(entityScope{s.entity(e.Name, lmt)}, e.Conditions, e.Lists, e.Entities, e.Operators); err != nil {
			return fmt.Errorf("entity %q: %w", e.Name, err)
		}
	}

	for _, o := range operators {
		opType := query.LogicalOperator(strings.ToLower(o.Type))
		if !opType.IsValid() {
			return fmt.Errorf("%w: %q", ErrUnknownOperator, o.Type)
		}
		if err := applyScope(operatorScope{s.operator(opType)}, o.Conditions, o.Lists, o.Entities, o.Operators); err != nil {
			return fmt.Errorf("%s: %w", opType, err)
		}
	}
	return nil
}

func (c ConditionSpec) filterField() (*query.FilterField, error) {
	if c.Field == "" {
		return nil, fmt.Errorf("%w: condition field is required", ErrInvalid)
	}
	match := query.MatchType(c.Match)
	if !match.IsStandard() {
		return nil, fmt.Errorf("condition %q: %w: %q", c.Field, ErrUnknownMatch, c.Match)
	}
	return query.NewFilterField(c.Field, match, c.Value.V), nil
}

func parseDirection(s string) (query.SortDirection, error) {
	if s == "" {
		return query.SortDirectionAsc, nil
	}
	direction := query.SortDirection(strings.ToUpper(s))
	if !direction.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownDirection, s)
	}
	return direction, nil
}

func parseQuantifier(s string) (query.ListMatchType, error) {
	lmt := query.ListMatchType(strings.ToLower(s))
	if !lmt.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownQuantifier, s)
	}
	return lmt, nil
}
