package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Options configures the table a Repository stores records in.
type Options struct {
	TablePrefix   string // Prepended to TableName.
	TableName     string
	IfNotExists   bool // Tolerate an existing table.
	CreateIndexes bool // Create the name and created_at indexes.
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() *Options {
	return &Options{
		TableName:     "persisted_operations",
		IfNotExists:   true,
		CreateIndexes: true,
	}
}

// quoteIdentifier quotes a table, index or column name for SQLite.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (r *Repository) rawTableName() string {
	return r.options.TablePrefix + r.options.TableName
}

func (r *Repository) tableName() string {
	return quoteIdentifier(r.rawTableName())
}

// CreateTableSQL returns the DDL for the records table followed by its
// indexes.
func (r *Repository) CreateTableSQL() []string {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	if r.options.IfNotExists {
		sb.WriteString("IF NOT EXISTS ")
	}
	sb.WriteString(r.tableName())
	sb.WriteString(" (")
	sb.WriteString(strings.Join([]string{
		`"id" TEXT PRIMARY KEY`,
		`"hash" TEXT NOT NULL UNIQUE`,
		`"name" TEXT NOT NULL`,
		`"kind" TEXT NOT NULL`,
		`"document" TEXT NOT NULL`,
		`"created_at" INTEGER NOT NULL`,
	}, ", "))
	sb.WriteString(");")

	statements := []string{sb.String()}
	if r.options.CreateIndexes {
		statements = append(statements,
			r.createIndexSQL("name", "created_at"),
			r.createIndexSQL("kind"),
		)
	}
	return statements
}

func (r *Repository) createIndexSQL(fields ...string) string {
	indexName := fmt.Sprintf("idx_%s_%s", r.rawTableName(), strings.Join(fields, "_"))

	quoted := make([]string, 0, len(fields))
	for _, field := range fields {
		quoted = append(quoted, quoteIdentifier(field))
	}
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s);",
		quoteIdentifier(indexName), r.tableName(), strings.Join(quoted, ", "))
}

// EnsureSchema creates the records table and its indexes when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	exists, err := r.TableExists(ctx)
	if err != nil {
		return fmt.Errorf("error looking up table %s: %w", r.rawTableName(), err)
	}
	if exists {
		return nil
	}

	for _, stmt := range r.CreateTableSQL() {
		r.logger.Debug("Executing SQL DDL", zap.String("sql", stmt))
		if _, err := r.runner().ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute SQL statement '%s': %w", stmt, err)
		}
	}
	return nil
}

// TableExists reports whether the records table exists.
func (r *Repository) TableExists(ctx context.Context) (bool, error) {
	query := "SELECT name FROM sqlite_master WHERE type='table' AND name = ?;"

	var name string
	err := r.runner().QueryRowContext(ctx, query, r.rawTableName()).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// DropTable drops the records table.
func (r *Repository) DropTable(ctx context.Context) error {
	stmt := fmt.Sprintf("DROP TABLE IF EXISTS %s;", r.tableName())
	if _, err := r.runner().ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", r.rawTableName(), err)
	}
	return nil
}
