// Package sqlite stores persisted operations in a SQLite database through
// database/sql and the mattn/go-sqlite3 driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/asaidimu/go-gqlbuilder/core/persisted"
	"github.com/asaidimu/go-gqlbuilder/core/query"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// DriverName is the database/sql driver registered by go-sqlite3.
const DriverName = "sqlite3"

// dbRunner abstracts the methods shared by *sql.DB and *sql.Tx so the same
// code runs inside and outside a transaction.
type dbRunner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repository implements persisted.Repository on SQLite. It can operate in
// both transactional and non-transactional modes.
type Repository struct {
	db      *sql.DB
	tx      *sql.Tx
	logger  *zap.Logger
	options *Options
}

var _ persisted.Repository = (*Repository)(nil)

// Open opens a SQLite database. Use ":memory:" for a private in-memory
// database.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", dsn, err)
	}
	if dsn == ":memory:" {
		// every new connection would see its own empty database
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// NewRepository creates a repository over db. Nil logger and options fall
// back to a no-op logger and DefaultOptions.
func NewRepository(db *sql.DB, logger *zap.Logger, options *Options) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if options == nil {
		options = DefaultOptions()
	}
	return &Repository{db: db, logger: logger, options: options}
}

func (r *Repository) runner() dbRunner {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Insert stores a record. A second record with the same hash violates the
// table's unique constraint.
func (r *Repository) Insert(ctx context.Context, record *persisted.Record) error {
	if record == nil {
		return fmt.Errorf("record cannot be nil")
	}
	sqlQuery, params := r.GenerateInsertSQL(record)
	r.logger.Debug("Executing SQL INSERT", zap.String("sql", sqlQuery), zap.String("hash", record.Hash))

	if _, err := r.runner().ExecContext(ctx, sqlQuery, params...); err != nil {
		r.logger.Error("Failed to execute INSERT query", zap.Error(err), zap.String("sql", sqlQuery))
		return fmt.Errorf("failed to execute INSERT query: %w", err)
	}
	return nil
}

// FindByHash returns the record with the given hash.
func (r *Repository) FindByHash(ctx context.Context, hash string) (*persisted.Record, error) {
	return r.findOne(ctx, map[string]any{"hash": hash})
}

// FindByName returns the most recent record with the given name.
func (r *Repository) FindByName(ctx context.Context, name string) (*persisted.Record, error) {
	return r.findOne(ctx, map[string]any{"name": name})
}

func (r *Repository) findOne(ctx context.Context, conditions map[string]any) (*persisted.Record, error) {
	records, err := r.selectRecords(ctx, conditions, true, 1, 0)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, persisted.ErrNotFound
	}
	return records[0], nil
}

// List returns records matching opts, oldest first.
func (r *Repository) List(ctx context.Context, opts persisted.ListOptions) ([]*persisted.Record, error) {
	return r.selectRecords(ctx, listConditions(opts), false, opts.Limit, opts.Offset)
}

func (r *Repository) selectRecords(ctx context.Context, conditions map[string]any, descending bool, limit, offset int) ([]*persisted.Record, error) {
	sqlQuery, params := r.GenerateSelectSQL(conditions, descending, limit, offset)
	r.logger.Debug("Executing SQL SELECT", zap.String("sql", sqlQuery), zap.Any("params", params))

	rows, err := r.runner().QueryContext(ctx, sqlQuery, params...)
	if err != nil {
		r.logger.Error("Failed to execute SELECT query", zap.Error(err), zap.String("sql", sqlQuery))
		return nil, fmt.Errorf("failed to execute SELECT query: %w", err)
	}
	defer rows.Close()
	return readRecords(rows)
}

// Delete removes the record with the given hash.
func (r *Repository) Delete(ctx context.Context, hash string) error {
	sqlQuery, params := r.GenerateDeleteSQL(hash)
	r.logger.Debug("Executing SQL DELETE", zap.String("sql", sqlQuery), zap.String("hash", hash))

	result, err := r.runner().ExecContext(ctx, sqlQuery, params...)
	if err != nil {
		r.logger.Error("Failed to execute DELETE query", zap.Error(err), zap.String("sql", sqlQuery))
		return fmt.Errorf("failed to execute DELETE query: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return persisted.ErrNotFound
	}
	return nil
}

// readRecords scans every row into a Record.
func readRecords(rows *sql.Rows) ([]*persisted.Record, error) {
	records := []*persisted.Record{}
	for rows.Next() {
		var (
			record    persisted.Record
			kind      string
			createdAt int64
		)
		if err := rows.Scan(&record.ID, &record.Hash, &record.Name, &kind, &record.Document, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		record.Kind = query.OperationKind(kind)
		record.CreatedAt = time.Unix(0, createdAt).UTC()
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after scanning rows: %w", err)
	}
	return records, nil
}

// StartTransaction begins a transaction and returns a repository scoped to
// it.
func (r *Repository) StartTransaction(ctx context.Context) (*Repository, error) {
	if r.tx != nil {
		return nil, fmt.Errorf("cannot start a new transaction from an existing transactional repository")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	r.logger.Debug("Transaction initiated, returning new transactional repository")
	return &Repository{db: r.db, tx: tx, logger: r.logger, options: r.options}, nil
}

// Commit commits the current transaction.
func (r *Repository) Commit() error {
	if r.tx == nil {
		return fmt.Errorf("commit not applicable: not in a transactional context")
	}
	r.logger.Debug("Committing transaction")
	return r.tx.Commit()
}

// Rollback rolls back the current transaction.
func (r *Repository) Rollback() error {
	if r.tx == nil {
		return fmt.Errorf("rollback not applicable: not in a transactional context")
	}
	r.logger.Debug("Rolling back transaction")
	return r.tx.Rollback()
}

// WithTransaction runs fn on a transactional repository, committing when fn
// succeeds and rolling back otherwise.
func (r *Repository) WithTransaction(ctx context.Context, fn func(tx *Repository) error) error {
	tx, err := r.StartTransaction(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback failed: %w", rbErr))
		}
		return err
	}
	return tx.Commit()
}
