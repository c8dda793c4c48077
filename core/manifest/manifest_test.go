package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/asaidimu/go-gqlbuilder/core/document"
	"github.com/asaidimu/go-gqlbuilder/core/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func build(t *testing.T, text string) *query.Operation {
	t.Helper()
	m, err := Load(strings.NewReader(text))
	require.NoError(t, err)
	op, err := m.Build()
	require.NoError(t, err)
	return op
}

func TestBuild_Query(t *testing.T) {
	op := build(t, `
name: orders
collection: true
count: true
parameters:
  - name: status
    value: !enum OPEN
  - name: region
    value: eu
pagination: {skip: 0, take: 10}
columns: [id, client.name]
sort:
  - field: createdAt
    direction: desc
filter:
  conditions:
    - {field: total, match: gte, value: 100}
`)

	assert.Equal(t,
		`{ orders(status: OPEN, region: "eu", skip: 0, take: 10, order: [{ createdAt: DESC }], where: { total: { gte: 100 } }) { items{ id, client { name } }, totalCount } }`,
		op.String())
	assert.NoError(t, document.Validate(op.String()))
}

func TestBuild_FilterTree(t *testing.T) {
	op := build(t, `
name: users
columns: [id]
filter:
  conditions:
    - {field: client.name, match: contains, value: jo}
  lists:
    - field: tags
      quantifier: some
      condition: {field: name, match: eq, value: go}
  entities:
    - name: orders
      quantifier: any
      conditions:
        - {field: total, match: gt, value: 5}
  operators:
    - type: or
      operators:
        - type: and
          conditions:
            - {field: id, match: eq, value: 1}
    - type: or
      conditions:
        - {field: id, match: eq, value: 2}
`)

	assert.Equal(t,
		`{ users(where: { client: { name: { contains: "jo" } }, tags: { some: { name: { eq: "go" } } }, orders: { any: { total: { gt: 5 } } }, or: [{and: [{id: { eq: 1 }}]}, {id: { eq: 2 }}] }) { id } }`,
		op.String())
	assert.NoError(t, document.Validate(op.String()))
}

func TestBuild_EntityScopes(t *testing.T) {
	op := build(t, `
name: users
columns: [id]
filter:
  entities:
    - name: client
      conditions:
        - {field: active, match: eq, value: true}
      lists:
        - field: labels
          quantifier: none
          condition: {field: name, match: eq, value: x}
      entities:
        - name: address
          conditions:
            - {field: city, match: in, value: [Lisbon, Porto]}
      operators:
        - type: AND
          conditions:
            - {field: age, match: lt, value: 65}
`)

	assert.Equal(t,
		`{ users(where: { client: { some: { and: [{age: { lt: 65 }}], address: { some: { city: { in: ["Lisbon,Porto"] } } }, active: { eq: true }, labels: { none: { name: { eq: "x" } } } } } }) { id } }`,
		op.String())
}

func TestBuild_SortTree(t *testing.T) {
	op := build(t, `
name: orders
columns: [id]
sort:
  - field: orderRequest.dateRequest
  - field: name
    direction: ASC
  - entity: orderRequest
    sort:
      - field: price
        direction: DESC
      - entity: supplier
        sort:
          - field: code
order:
  - {field: id, direction: DESC}
`)

	assert.Equal(t,
		`{ orders(order: [{ name: ASC, orderRequest: { price: DESC, supplier: { code: ASC } } }]) { id } }`,
		op.String())
	assert.Len(t, op.Sort, 1, "legacy order is kept but not rendered")
}

func TestBuild_LegacyOrder(t *testing.T) {
	op := build(t, `
name: orders
columns: [id]
order:
  - {field: client.name, direction: asc}
`)
	assert.Equal(t, `{ orders(order: [{ client: { name: ASC } }]) { id } }`, op.String())
}

func TestBuild_NestedQueries(t *testing.T) {
	op := build(t, `
name: users
columns: [id]
queries:
  - name: roles
    columns: [name]
  - name: tags
    collection: true
    columns: [label]
`)
	assert.Equal(t, `{ users { id }, roles { name }, tags { items{ label } } }`, op.String())
	require.Len(t, op.Queries, 2)
	assert.True(t, op.Queries[0].IsSubQuery)
}

func TestBuild_Mutation(t *testing.T) {
	op := build(t, `
kind: mutation
name: createUser
parameters:
  - name: input
    value:
      name: ana
      role: !enum ADMIN
      tags: [a, b]
columns: [id, profile.bio]
`)
	assert.Equal(t,
		`mutation { createUser(input: {name: "ana", role: ADMIN, tags: ["a", "b"]}) { id, profile { bio } } }`,
		op.String())
	assert.NoError(t, document.Validate(op.String()))
}

func TestBuild_Subscription(t *testing.T) {
	op := build(t, `
kind: subscription
name: onChangeOrder
topic: orders_changed
parameters:
  - {name: unit, value: 3}
columns: [id]
filter:
  conditions:
    - {field: status, match: eq, value: !enum OPEN}
`)
	assert.Equal(t,
		`subscription { onChangeOrder(topic: "orders_changed", unit: 3, where: { status: { eq: OPEN } }) { id } }`,
		op.String())
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		target error
	}{
		{"unknown kind", "kind: fragment\nname: x", ErrUnknownKind},
		{"missing name", "columns: [id]", ErrInvalid},
		{"unknown match", "name: x\nfilter:\n  conditions:\n    - {field: a, match: like, value: 1}", ErrUnknownMatch},
		{"missing condition field", "name: x\nfilter:\n  conditions:\n    - {match: eq, value: 1}", ErrInvalid},
		{"unknown quantifier", "name: x\nfilter:\n  lists:\n    - field: t\n      quantifier: every\n      condition: {field: a, match: eq, value: 1}", ErrUnknownQuantifier},
		{"unknown entity quantifier", "name: x\nfilter:\n  entities:\n    - {name: c, quantifier: most}", ErrUnknownQuantifier},
		{"unknown direction", "name: x\nsort:\n  - {field: a, direction: up}", ErrUnknownDirection},
		{"unknown legacy direction", "name: x\norder:\n  - {field: a, direction: up}", ErrUnknownDirection},
		{"empty sort entry", "name: x\nsort:\n  - {direction: ASC}", ErrInvalid},
		{"unknown operator", "name: x\nfilter:\n  operators:\n    - {type: xor}", ErrUnknownOperator},
		{"mutation with filter", "kind: mutation\nname: x\nfilter:\n  conditions: []", ErrUnsupported},
		{"mutation with pagination", "kind: mutation\nname: x\npagination: {skip: 0, take: 1}", ErrUnsupported},
		{"subscription without topic", "kind: subscription\nname: x", ErrInvalid},
		{"subscription with sort", "kind: subscription\nname: x\ntopic: t\nsort:\n  - {field: a}", ErrUnsupported},
		{"nested mutation", "name: x\nqueries:\n  - {kind: mutation, name: y}", ErrUnsupported},
		{"nested without name", "name: x\nqueries:\n  - {columns: [id]}", ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Load(strings.NewReader(tt.yaml))
			require.NoError(t, err)
			_, err = m.Build()
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = Load(strings.NewReader("name: x\nunknown: 1"))
	assert.Error(t, err)

	_, err = Load(strings.NewReader("name: [unclosed"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: users\ncolumns: [id]\n"), 0o644))

	m, err := LoadFile(path)
	require.NoError(t, err)
	op, err := m.Build()
	require.NoError(t, err)
	assert.Equal(t, `{ users { id } }`, op.String())

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestValue(t *testing.T) {
	var holder struct {
		Values []Value `yaml:"values"`
	}
	err := yaml.Unmarshal([]byte(`
values:
  - plain
  - !enum ACTIVE
  - 42
  - 1.5
  - true
  - null
  - [!enum A, b]
  - {k: !enum V}
  - &anchor shared
  - *anchor
`), &holder)
	require.NoError(t, err)

	got := make([]any, 0, len(holder.Values))
	for _, v := range holder.Values {
		got = append(got, v.V)
	}
	assert.Equal(t, []any{
		"plain",
		query.Enum("ACTIVE"),
		42,
		1.5,
		true,
		nil,
		[]any{query.Enum("A"), "b"},
		map[string]any{"k": query.Enum("V")},
		"shared",
		"shared",
	}, got)

	out, err := yaml.Marshal(Value{V: []any{query.Enum("A"), "b"}})
	require.NoError(t, err)
	assert.Contains(t, string(out), "!enum A")
}
