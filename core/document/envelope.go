package document

import (
	"encoding/json"
	"fmt"
)

// persistedQueryVersion is the automatic persisted query protocol version.
const persistedQueryVersion = 1

// Envelope is the JSON body of a GraphQL request over HTTP.
type Envelope struct {
	Query         string         `json:"query,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
	Extensions    *Extensions    `json:"extensions,omitempty"`
}

// Extensions carries protocol extensions of a request.
type Extensions struct {
	PersistedQuery *PersistedQuery `json:"persistedQuery,omitempty"`
}

// PersistedQuery identifies a document by hash instead of by text.
type PersistedQuery struct {
	Version    int    `json:"version"`
	SHA256Hash string `json:"sha256Hash"`
}

type envelopeOptions struct {
	operationName string
	variables     map[string]any
	persisted     bool
	hashOnly      bool
}

// EnvelopeOption configures NewEnvelope.
type EnvelopeOption func(*envelopeOptions)

// WithOperationName sets the operationName field.
func WithOperationName(name string) EnvelopeOption {
	return func(o *envelopeOptions) { o.operationName = name }
}

// WithVariables sets the variables object.
func WithVariables(vars map[string]any) EnvelopeOption {
	return func(o *envelopeOptions) { o.variables = vars }
}

// WithPersistedQuery adds the persistedQuery extension computed from the
// rendered text.
func WithPersistedQuery() EnvelopeOption {
	return func(o *envelopeOptions) { o.persisted = true }
}

// WithHashOnly adds the persistedQuery extension and leaves the query text
// out, as sent on the first attempt of an automatic persisted query.
func WithHashOnly() EnvelopeOption {
	return func(o *envelopeOptions) {
		o.persisted = true
		o.hashOnly = true
	}
}

// NewEnvelope renders op and wraps it in a request body. Building the body
// does not send it anywhere.
func NewEnvelope(op fmt.Stringer, opts ...EnvelopeOption) Envelope {
	var o envelopeOptions
	for _, opt := range opts {
		opt(&o)
	}

	text := ""
	if op != nil {
		text = op.String()
	}

	env := Envelope{
		Query:         text,
		OperationName: o.operationName,
		Variables:     o.variables,
	}
	if o.persisted {
		env.Extensions = &Extensions{PersistedQuery: &PersistedQuery{
			Version:    persistedQueryVersion,
			SHA256Hash: Hash(text),
		}}
	}
	if o.hashOnly {
		env.Query = ""
	}
	return env
}

// JSON encodes the envelope.
func (e Envelope) JSON() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request envelope: %w", err)
	}
	return data, nil
}
