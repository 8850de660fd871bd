package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"matchdesk/models"
)

// SheetRepository stores the in-progress sheet: one row per seated
// table. Rows keep their table number when cleared so the number can be
// reused (continuous variant); the Swiss variant wipes the whole sheet
// at every round boundary instead.
type SheetRepository interface {
	Append(ctx context.Context, exec SQLExecutor, entry *models.SheetEntry) error
	List(ctx context.Context) ([]*models.SheetEntry, error)
	// FindByPlayer returns the occupied row seating the given player,
	// or ErrSheetRowNotFound.
	FindByPlayer(ctx context.Context, playerID string) (*models.SheetEntry, error)
	// ClearPlayers empties the player and result fields of a table's
	// row, retaining the table number as a free slot.
	ClearPlayers(ctx context.Context, exec SQLExecutor, tableNumber int) error
	SetResult(ctx context.Context, exec SQLExecutor, tableNumber int, result string) error
	DeleteAll(ctx context.Context, exec SQLExecutor) error
}

type postgresSheetRepository struct {
	db *sql.DB
}

func NewPostgresSheetRepository(db *sql.DB) SheetRepository {
	return &postgresSheetRepository{db: db}
}

func (r *postgresSheetRepository) Append(ctx context.Context, exec SQLExecutor, entry *models.SheetEntry) error {
	// A cleared row may already hold this table number; take it over.
	query := `
		INSERT INTO round_sheet (table_number, player1_id, player2_id, result)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (table_number)
		DO UPDATE SET player1_id = EXCLUDED.player1_id,
		              player2_id = EXCLUDED.player2_id,
		              result = EXCLUDED.result`

	_, err := exec.ExecContext(ctx, query, entry.TableNumber, entry.Player1ID, entry.Player2ID, entry.Result)
	if err != nil {
		return fmt.Errorf("failed to append sheet row for table %d: %w", entry.TableNumber, err)
	}
	return nil
}

func (r *postgresSheetRepository) List(ctx context.Context) ([]*models.SheetEntry, error) {
	query := `SELECT table_number, player1_id, player2_id, result FROM round_sheet ORDER BY table_number ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query round sheet: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.SheetEntry, 0)
	for rows.Next() {
		var e models.SheetEntry
		if scanErr := rows.Scan(&e.TableNumber, &e.Player1ID, &e.Player2ID, &e.Result); scanErr != nil {
			return nil, fmt.Errorf("failed to scan sheet row: %w", scanErr)
		}
		entries = append(entries, &e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during sheet rows iteration: %w", err)
	}
	return entries, nil
}

func (r *postgresSheetRepository) FindByPlayer(ctx context.Context, playerID string) (*models.SheetEntry, error) {
	query := `
		SELECT table_number, player1_id, player2_id, result
		FROM round_sheet
		WHERE player1_id = $1 OR player2_id = $1
		LIMIT 1`

	e := &models.SheetEntry{}
	err := r.db.QueryRowContext(ctx, query, playerID).Scan(&e.TableNumber, &e.Player1ID, &e.Player2ID, &e.Result)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSheetRowNotFound
		}
		return nil, fmt.Errorf("failed to scan sheet row for player %s: %w", playerID, err)
	}
	return e, nil
}

func (r *postgresSheetRepository) ClearPlayers(ctx context.Context, exec SQLExecutor, tableNumber int) error {
	query := `UPDATE round_sheet SET player1_id = '', player2_id = '', result = '' WHERE table_number = $1`

	result, err := exec.ExecContext(ctx, query, tableNumber)
	if err != nil {
		return fmt.Errorf("failed to clear sheet row for table %d: %w", tableNumber, err)
	}
	return checkAffectedRows(result, ErrSheetRowNotFound)
}

func (r *postgresSheetRepository) SetResult(ctx context.Context, exec SQLExecutor, tableNumber int, result string) error {
	query := `UPDATE round_sheet SET result = $1 WHERE table_number = $2`

	res, err := exec.ExecContext(ctx, query, result, tableNumber)
	if err != nil {
		return fmt.Errorf("failed to set result for table %d: %w", tableNumber, err)
	}
	return checkAffectedRows(res, ErrSheetRowNotFound)
}

func (r *postgresSheetRepository) DeleteAll(ctx context.Context, exec SQLExecutor) error {
	if _, err := exec.ExecContext(ctx, `DELETE FROM round_sheet`); err != nil {
		return fmt.Errorf("failed to clear round sheet: %w", err)
	}
	return nil
}
