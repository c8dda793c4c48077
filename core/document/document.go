// Package document inspects rendered operation text with the graphql-go
// language tools: syntax validation, pretty printing, structural analysis and
// the hashes and request bodies used to ship operations to a server.
package document

import (
	"errors"
	"fmt"
	"strings"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
	"github.com/graphql-go/graphql/language/printer"
	"github.com/graphql-go/graphql/language/source"
)

var (
	// ErrEmptyDocument is returned for blank operation text.
	ErrEmptyDocument = errors.New("document is empty")
	// ErrNoOperation is returned when a document holds no operation definition.
	ErrNoOperation = errors.New("document does not include an operation")
)

// Parse parses operation text into a GraphQL AST.
func Parse(text string) (*ast.Document, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}

	doc, err := parser.Parse(parser.ParseParams{
		Source: source.NewSource(&source.Source{
			Body: []byte(text),
			Name: "graphql",
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return doc, nil
}

// Validate reports whether text is a syntactically valid executable document
// with at least one operation. It does not check against a schema.
func Validate(text string) error {
	doc, err := Parse(text)
	if err != nil {
		return err
	}
	if len(operations(doc)) == 0 {
		return ErrNoOperation
	}
	return nil
}

// Pretty reprints text in the canonical multi-line GraphQL layout.
func Pretty(text string) (string, error) {
	doc, err := Parse(text)
	if err != nil {
		return "", err
	}

	printed, ok := printer.Print(doc).(string)
	if !ok {
		return "", fmt.Errorf("unexpected printer output for document")
	}
	return strings.TrimSpace(printed), nil
}

func operations(doc *ast.Document) []*ast.OperationDefinition {
	if doc == nil {
		return nil
	}
	ops := make([]*ast.OperationDefinition, 0, len(doc.Definitions))
	for _, def := range doc.Definitions {
		if op, ok := def.(*ast.OperationDefinition); ok && op != nil {
			ops = append(ops, op)
		}
	}
	return ops
}
