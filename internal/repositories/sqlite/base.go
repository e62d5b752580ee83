package sqlite

import (
	"context"
	"database/sql"
	"time"

	"butchery-pos-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// baseRepository provides query execution and logging shared by the local
// store's repositories.
type baseRepository struct {
	db     *sql.DB
	table  string
	logger *logrus.Logger
}

func newBaseRepository(db *sql.DB, table string, logger *logrus.Logger) baseRepository {
	if logger == nil {
		logger = logrus.New()
	}
	return baseRepository{
		db:     db,
		table:  table,
		logger: logger,
	}
}

// logQuery logs a query with its execution time
func (r *baseRepository) logQuery(operation string, query string, args []interface{}, duration time.Duration, err error) {
	fields := logrus.Fields{
		"operation": operation,
		"table":     r.table,
		"query":     query,
		"args":      args,
		"duration":  duration,
	}

	if err != nil {
		fields["error"] = err.Error()
		r.logger.WithFields(fields).Error("Query failed")
	} else {
		r.logger.WithFields(fields).Debug("Query executed")
	}
}

// executeQuery executes a query and logs the result
func (r *baseRepository) executeQuery(ctx context.Context, operation, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := r.db.QueryContext(ctx, query, args...)
	duration := time.Since(start)

	r.logQuery(operation, query, args, duration, err)

	if err != nil {
		return nil, repositories.NewRepositoryError(operation, r.table, "", err)
	}

	return rows, nil
}

// executeQueryRow executes a single-row query and logs the result
func (r *baseRepository) executeQueryRow(ctx context.Context, operation, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := r.db.QueryRowContext(ctx, query, args...)
	duration := time.Since(start)

	r.logQuery(operation, query, args, duration, nil)

	return row
}

// executeExec executes a non-query statement and logs the result
func (r *baseRepository) executeExec(ctx context.Context, operation, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	result, err := r.db.ExecContext(ctx, query, args...)
	duration := time.Since(start)

	r.logQuery(operation, query, args, duration, err)

	if err != nil {
		return nil, repositories.NewRepositoryError(operation, r.table, "", err)
	}

	return result, nil
}

// withTransaction executes fn within a transaction, rolling back on error
func (r *baseRepository) withTransaction(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return repositories.TransactionError("begin", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			r.logger.WithError(rollbackErr).Error("Failed to rollback transaction after error")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return repositories.TransactionError(op, err)
	}

	return nil
}
