package sqlite

import (
	"fmt"
	"strings"

	"github.com/asaidimu/go-gqlbuilder/core/persisted"
)

// recordColumns is the column order used by every SELECT and INSERT.
var recordColumns = []string{"id", "hash", "name", "kind", "document", "created_at"}

func selectColumns() string {
	quoted := make([]string, 0, len(recordColumns))
	for _, c := range recordColumns {
		quoted = append(quoted, quoteIdentifier(c))
	}
	return strings.Join(quoted, ", ")
}

// GenerateInsertSQL returns the INSERT statement for one record and its
// parameters.
func (r *Repository) GenerateInsertSQL(record *persisted.Record) (string, []any) {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(recordColumns)), ", ")
	sqlQuery := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s);", r.tableName(), selectColumns(), placeholders)
	params := []any{
		record.ID,
		record.Hash,
		record.Name,
		string(record.Kind),
		record.Document,
		record.CreatedAt.UnixNano(),
	}
	return sqlQuery, params
}

// GenerateSelectSQL returns a SELECT over the records table with the given
// equality conditions, ordered by creation time.
func (r *Repository) GenerateSelectSQL(conditions map[string]any, descending bool, limit, offset int) (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(selectColumns())
	sb.WriteString(" FROM ")
	sb.WriteString(r.tableName())

	var params []any
	if where := buildWhereClause(conditions, &params); where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}

	sb.WriteString(" ORDER BY ")
	sb.WriteString(quoteIdentifier("created_at"))
	if descending {
		sb.WriteString(" DESC")
	} else {
		sb.WriteString(" ASC")
	}

	if limit > 0 {
		sb.WriteString(" LIMIT ?")
		params = append(params, limit)
		if offset > 0 {
			sb.WriteString(" OFFSET ?")
			params = append(params, offset)
		}
	} else if offset > 0 {
		// SQLite only accepts OFFSET after a LIMIT; -1 means no limit.
		sb.WriteString(" LIMIT -1 OFFSET ?")
		params = append(params, offset)
	}
	sb.WriteString(";")
	return sb.String(), params
}

// GenerateDeleteSQL returns the DELETE statement for one hash.
func (r *Repository) GenerateDeleteSQL(hash string) (string, []any) {
	return fmt.Sprintf("DELETE FROM %s WHERE %s = ?;", r.tableName(), quoteIdentifier("hash")), []any{hash}
}

// buildWhereClause joins equality conditions with AND in column order.
func buildWhereClause(conditions map[string]any, params *[]any) string {
	var parts []string
	for _, column := range recordColumns {
		value, ok := conditions[column]
		if !ok {
			continue
		}
		parts = append(parts, quoteIdentifier(column)+" = ?")
		*params = append(*params, value)
	}
	return strings.Join(parts, " AND ")
}

func listConditions(opts persisted.ListOptions) map[string]any {
	conditions := map[string]any{}
	if opts.Kind != "" {
		conditions["kind"] = string(opts.Kind)
	}
	if opts.Name != "" {
		conditions["name"] = opts.Name
	}
	return conditions
}
