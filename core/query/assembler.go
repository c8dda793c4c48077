package query

import (
	"strings"

	"go.uber.org/zap"
)

// Assembler renders an Operation into operation text. It never modifies the
// operation, so the same state always yields the same text.
type Assembler struct {
	logger *zap.Logger
}

var defaultAssembler = NewAssembler(nil)

// NewAssembler creates an Assembler. A nil logger disables logging.
func NewAssembler(logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{logger: logger}
}

// Assemble renders the operation. A nil operation renders as an empty string.
func (a *Assembler) Assemble(op *Operation) string {
	if op == nil {
		return ""
	}

	var text string
	switch op.Kind {
	case OperationMutation:
		text = a.assembleEnvelope("mutation", op)
	case OperationSubscription:
		text = a.assembleEnvelope("subscription", op)
	default:
		text = a.assembleQuery(op, op.IsSubQuery)
	}

	a.logger.Debug("Assembled operation",
		zap.String("kind", string(op.Kind)),
		zap.String("name", op.QueryName),
		zap.Int("siblings", len(op.Queries)),
		zap.Int("length", len(text)))
	return text
}

// assembleQuery renders name(args) { body } followed by the sibling
// operations. Unless sub is set the result is wrapped in the document braces.
func (a *Assembler) assembleQuery(op *Operation, sub bool) string {
	var sb strings.Builder
	sb.WriteString(op.QueryName)
	sb.WriteString(a.assembleArguments(op))
	sb.WriteString(" ")
	sb.WriteString(braces(a.assembleQueryBody(op)))

	for _, sibling := range op.Queries {
		if sibling == nil {
			continue
		}
		sb.WriteString(", ")
		sb.WriteString(a.assembleQuery(sibling, true))
	}

	if sub {
		return sb.String()
	}
	return braces(sb.String())
}

func (a *Assembler) assembleQueryBody(op *Operation) string {
	columns := a.assembleColumns(op.Columns)
	if !op.IsCollection {
		return columns
	}

	body := "items" + braces(columns)
	if op.WithCount {
		body += ", totalCount"
	}
	return body
}

// assembleEnvelope renders mutations and subscriptions, which select columns
// directly and carry their own keyword envelope.
func (a *Assembler) assembleEnvelope(keyword string, op *Operation) string {
	inner := op.QueryName + a.assembleArguments(op) + " " + braces(a.assembleColumns(op.Columns))
	return keyword + " " + braces(inner)
}

// assembleArguments builds the parenthesized argument clause: topic (for
// subscriptions), parameters, pagination, sort and filter.
func (a *Assembler) assembleArguments(op *Operation) string {
	var sections []string
	if op.Kind == OperationSubscription {
		sections = append(sections, `topic: "`+op.TopicName+`"`)
	}
	sections = append(sections,
		a.assembleParameters(op.Parameters),
		a.assemblePagination(op.Pagination),
		a.assembleSort(op),
		a.assembleWhere(op.Filter),
	)

	args := joinNonEmpty(sections, ", ")
	if args == "" {
		return ""
	}
	return "(" + args + ")"
}

func (a *Assembler) assembleColumns(columns []*Column) string {
	var sb strings.Builder
	for i, column := range columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(column.Name)
		if len(column.Children) > 0 {
			sb.WriteString(" ")
			sb.WriteString(braces(a.assembleColumns(column.Children)))
		}
	}
	return sb.String()
}

func (a *Assembler) assembleParameters(params []QueryParameter) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, p.Field+": "+FormatParameter(p.Value))
	}
	return strings.Join(parts, ", ")
}

func (a *Assembler) assemblePagination(params []QueryParameter) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, p.Field+": "+stringify(p.Value))
	}
	return strings.Join(parts, ", ")
}

// assembleSort renders the order argument. A non-empty sort tree wins over
// the legacy flat list; the two are never merged.
func (a *Assembler) assembleSort(op *Operation) string {
	if !op.SortByBuilder.IsEmpty() {
		parts := make([]string, 0, len(op.SortByBuilder.Fields))
		for _, node := range op.SortByBuilder.Fields {
			parts = append(parts, a.assembleSortNode(node))
		}
		return "order: [" + braces(joinNonEmpty(parts, ", ")) + "]"
	}

	if len(op.Sort) == 0 {
		return ""
	}
	parts := make([]string, 0, len(op.Sort))
	for _, p := range op.Sort {
		parts = append(parts, expandPath(p.Field, stringify(p.Value)))
	}
	return "order: [" + braces(strings.Join(parts, ", ")) + "]"
}

func (a *Assembler) assembleSortNode(node SortNode) string {
	switch n := node.(type) {
	case *SortField:
		return expandPath(n.Name, string(n.Order))
	case *ComplexSortField:
		return a.assembleComplexSort(n)
	}
	return ""
}

func (a *Assembler) assembleComplexSort(field *ComplexSortField) string {
	fields := make([]string, 0, len(field.Fields))
	for _, f := range field.Fields {
		fields = append(fields, expandPath(f.Name, string(f.Order)))
	}
	children := make([]string, 0, len(field.ComplexChildren))
	for _, ch := range field.ComplexChildren {
		children = append(children, a.assembleComplexSort(ch))
	}

	inner := joinNonEmpty([]string{strings.Join(fields, ", "), strings.Join(children, ", ")}, ", ")
	return field.Name + ": " + braces(inner)
}

// assembleWhere renders the where argument, or nothing for an empty filter.
func (a *Assembler) assembleWhere(filter *Filter) string {
	if filter.IsEmpty() {
		return ""
	}

	fields := make([]string, 0, len(filter.Fields))
	for _, f := range filter.Fields {
		fields = append(fields, a.assembleFilterNode(f))
	}

	inner := joinNonEmpty([]string{strings.Join(fields, ", "), a.assembleOperators(filter.Operators)}, ", ")
	return "where: " + braces(inner)
}

func (a *Assembler) assembleFilterNode(node FilterNode) string {
	switch n := node.(type) {
	case *FilterField:
		return a.assembleFilterField(n)
	case *FilterListField:
		return a.assembleFilterListField(n)
	case *ComplexFilterField:
		return a.assembleComplexFilter(n)
	}
	return ""
}

// assembleFilterField renders field: { match: value }, expanding a dotted
// field into one nested object per segment.
func (a *Assembler) assembleFilterField(field *FilterField) string {
	if field == nil {
		return ""
	}
	condition := string(field.Match) + ": " + FormatValue(field.Value, field.Match.IsList())
	return expandPath(field.Field, braces(condition))
}

// assembleFilterListField renders listField: { quantifier: { field: { match:
// value } } }. The inner field name is written as given, without path
// expansion.
func (a *Assembler) assembleFilterListField(field *FilterListField) string {
	inner := ""
	if f := field.FilterField; f != nil {
		condition := string(f.Match) + ": " + FormatValue(f.Value, f.Match.IsList())
		inner = f.Field + ": " + braces(condition)
	}
	return field.ListField + ": " + braces(string(field.Match)+": "+braces(inner))
}

// assembleComplexFilter renders operators, complex children and conditions
// in that fixed order, optionally wrapped in the list quantifier.
func (a *Assembler) assembleComplexFilter(field *ComplexFilterField) string {
	children := make([]string, 0, len(field.ComplexChildren))
	for _, ch := range field.ComplexChildren {
		children = append(children, a.assembleComplexFilter(ch))
	}
	conditions := make([]string, 0, len(field.Filters))
	for _, f := range field.Filters {
		conditions = append(conditions, a.assembleFilterNode(f))
	}

	inner := joinNonEmpty([]string{
		a.assembleOperators(field.Operators),
		strings.Join(children, ", "),
		strings.Join(conditions, ", "),
	}, ", ")

	if field.ListMatchType != "" {
		inner = string(field.ListMatchType) + ": " + braces(inner)
	}
	return field.Name + ": " + braces(inner)
}

func (a *Assembler) assembleOperators(operators []*Operator) string {
	parts := make([]string, 0, len(operators))
	for _, op := range operators {
		parts = append(parts, a.assembleOperator(op))
	}
	return strings.Join(parts, ", ")
}

// assembleOperator renders type: [...] with child groups first, each wrapped
// as {type: [...]}, then the direct filters, each wrapped in braces.
func (a *Assembler) assembleOperator(op *Operator) string {
	children := make([]string, 0, len(op.Children))
	for _, child := range op.Children {
		children = append(children, "{"+a.assembleOperator(child)+"}")
	}
	filters := make([]string, 0, len(op.Filters))
	for _, f := range op.Filters {
		filters = append(filters, "{"+a.assembleFilterNode(f)+"}")
	}

	members := joinNonEmpty([]string{strings.Join(children, ", "), strings.Join(filters, ", ")}, ", ")
	return string(op.Type) + ": [" + members + "]"
}

// expandPath renders a.b.c with the given leaf as a: { b: { c: leaf } }.
func expandPath(path, leaf string) string {
	segments := strings.Split(path, ".")
	last := len(segments) - 1

	var sb strings.Builder
	for _, seg := range segments[:last] {
		sb.WriteString(seg)
		sb.WriteString(": { ")
	}
	sb.WriteString(segments[last])
	sb.WriteString(": ")
	sb.WriteString(leaf)
	sb.WriteString(strings.Repeat(" }", last))
	return sb.String()
}

func braces(s string) string {
	if s == "" {
		return "{}"
	}
	return "{ " + s + " }"
}

func joinNonEmpty(parts []string, sep string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
