package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLExecutor is satisfied by both *sql.DB and *sql.Tx, so repository
// methods that must run inside a caller's transaction can accept either.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

var (
	ErrPlayerNotFound   = errors.New("player not found")
	ErrMatchNotFound    = errors.New("match record not found")
	ErrSheetRowNotFound = errors.New("sheet row not found")
	ErrSettingNotFound  = errors.New("setting not found")

	// ErrSchemaMismatch means a required storage table or column is
	// missing; see CheckSchema.
	ErrSchemaMismatch = errors.New("storage schema mismatch")
)

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}
