// Package manifest describes operations declaratively in YAML and builds
// them with the query builders.
//
//	kind: query
//	name: orders
//	collection: true
//	count: true
//	parameters:
//	  - name: status
//	    value: !enum OPEN
//	pagination: {skip: 0, take: 10}
//	columns: [id, client.name]
//	sort:
//	  - field: createdAt
//	    direction: DESC
//	filter:
//	  conditions:
//	    - {field: total, match: gte, value: 100}
package manifest

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/asaidimu/go-gqlbuilder/core/query"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownKind       = errors.New("unknown operation kind")
	ErrUnknownMatch      = errors.New("unknown match type")
	ErrUnknownQuantifier = errors.New("unknown list quantifier")
	ErrUnknownDirection  = errors.New("unknown sort direction")
	ErrUnknownOperator   = errors.New("unknown logical operator")
	ErrUnsupported       = errors.New("unsupported for operation kind")
	ErrInvalid           = errors.New("invalid manifest")
)

// Manifest describes one operation and the sibling queries rendered with it.
type Manifest struct {
	Kind       string      `yaml:"kind"`
	Name       string      `yaml:"name"`
	Collection bool        `yaml:"collection"`
	Count      bool        `yaml:"count"`
	Topic      string      `yaml:"topic"`
	Parameters []Parameter `yaml:"parameters"`
	Pagination *Pagination `yaml:"pagination"`
	Columns    []string    `yaml:"columns"`
	Sort       []SortSpec  `yaml:"sort"`
	Order      []OrderSpec `yaml:"order"`
	Filter     *FilterSpec `yaml:"filter"`
	Queries    []*Manifest `yaml:"queries"`
}

// Parameter is one operation argument. Order is kept as written.
type Parameter struct {
	Name  string `yaml:"name"`
	Value Value  `yaml:"value"`
}

// Pagination maps to the skip and take arguments.
type Pagination struct {
	Skip int `yaml:"skip"`
	Take int `yaml:"take"`
}

// SortSpec is a sort tree entry: either a field with a direction or an
// entity with nested entries.
type SortSpec struct {
	Field     string     `yaml:"field"`
	Direction string     `yaml:"direction"`
	Entity    string     `yaml:"entity"`
	Sort      []SortSpec `yaml:"sort"`
}

// OrderSpec is a legacy flat sort entry.
type OrderSpec struct {
	Field     string `yaml:"field"`
	Direction string `yaml:"direction"`
}

// FilterSpec is the where clause.
type FilterSpec struct {
	Conditions []ConditionSpec `yaml:"conditions"`
	Lists      []ListSpec      `yaml:"lists"`
	Entities   []EntitySpec    `yaml:"entities"`
	Operators  []OperatorSpec  `yaml:"operators"`
}

// ConditionSpec is a single field comparison.
type ConditionSpec struct {
	Field string `yaml:"field"`
	Match string `yaml:"match"`
	Value Value  `yaml:"value"`
}

// ListSpec is a quantified condition over a list field.
type ListSpec struct {
	Field      string        `yaml:"field"`
	Quantifier string        `yaml:"quantifier"`
	Condition  ConditionSpec `yaml:"condition"`
}

// EntitySpec scopes conditions to a nested entity. The quantifier defaults
// to some.
type EntitySpec struct {
	Name       string          `yaml:"name"`
	Quantifier string          `yaml:"quantifier"`
	Conditions []ConditionSpec `yaml:"conditions"`
	Lists      []ListSpec      `yaml:"lists"`
	Entities   []EntitySpec    `yaml:"entities"`
	Operators  []OperatorSpec  `yaml:"operators"`
}

// OperatorSpec is an and/or group. Operators nested in it become child
// groups.
type OperatorSpec struct {
	Type       string          `yaml:"type"`
	Conditions []ConditionSpec `yaml:"conditions"`
	Lists      []ListSpec      `yaml:"lists"`
	Entities   []EntitySpec    `yaml:"entities"`
	Operators  []OperatorSpec  `yaml:"operators"`
}

// Load decodes a manifest. Unknown keys are rejected.
func Load(r io.Reader) (*Manifest, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var m Manifest
	if err := decoder.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: manifest is empty", ErrInvalid)
		}
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}

// LoadFile reads and decodes the manifest at path.
func LoadFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	defer f.Close()

	m, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// OperationKind returns the manifest kind, defaulting to query.
func (m *Manifest) OperationKind() (query.OperationKind, error) {
	if m.Kind == "" {
		return query.OperationQuery, nil
	}
	kind := query.OperationKind(m.Kind)
	if !kind.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, m.Kind)
	}
	return kind, nil
}
