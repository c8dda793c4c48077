package document

import (
	"github.com/graphql-go/graphql/language/ast"
)

const anonymousOperationName = "<anonymous>"

// Analysis holds structural facts about the first operation of a document.
type Analysis struct {
	OperationType  string
	OperationName  string
	OperationCount int
	RootFields     []string
	FieldCount     int
	SelectionDepth int
	ArgumentCount  int
	Hash           string
}

// Analyze parses text and measures its first operation: the root fields it
// selects, the total number of fields, the deepest selection level and the
// number of arguments passed anywhere in it.
func Analyze(text string) (*Analysis, error) {
	doc, err := Parse(text)
	if err != nil {
		return nil, err
	}

	ops := operations(doc)
	if len(ops) == 0 {
		return nil, ErrNoOperation
	}
	op := ops[0]

	analysis := &Analysis{
		OperationType:  string(op.Operation),
		OperationName:  operationName(op),
		OperationCount: len(ops),
		Hash:           Hash(text),
	}
	if op.SelectionSet != nil {
		for _, selection := range op.SelectionSet.Selections {
			if field, ok := selection.(*ast.Field); ok && field.Name != nil {
				analysis.RootFields = append(analysis.RootFields, field.Name.Value)
			}
		}
	}
	analysis.FieldCount, analysis.SelectionDepth, analysis.ArgumentCount = measure(op.SelectionSet, 1)
	return analysis, nil
}

func operationName(op *ast.OperationDefinition) string {
	if op == nil || op.Name == nil || op.Name.Value == "" {
		return anonymousOperationName
	}
	return op.Name.Value
}

// measure walks a selection set. Inline fragments count at the depth of
// their parent.
func measure(selectionSet *ast.SelectionSet, depth int) (fields, maxDepth, args int) {
	if selectionSet == nil {
		return 0, depth - 1, 0
	}

	maxDepth = depth
	for _, selection := range selectionSet.Selections {
		switch sel := selection.(type) {
		case *ast.Field:
			fields++
			args += len(sel.Arguments)
			if sel.SelectionSet != nil {
				f, d, a := measure(sel.SelectionSet, depth+1)
				fields += f
				args += a
				if d > maxDepth {
					maxDepth = d
				}
			}
		case *ast.InlineFragment:
			f, d, a := measure(sel.SelectionSet, depth)
			fields += f
			args += a
			if d > maxDepth {
				maxDepth = d
			}
		}
	}
	return fields, maxDepth, args
}
