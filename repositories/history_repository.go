package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"matchdesk/models"
)

type HistoryRepository interface {
	Append(ctx context.Context, exec SQLExecutor, record *models.HistoryRecord) error
	GetByID(ctx context.Context, id string) (*models.HistoryRecord, error)
	List(ctx context.Context) ([]*models.HistoryRecord, error)
	// ApplyCorrection rewrites the participants, winner and result
	// label of an existing record, keeping the convention that player1
	// is the winner. Used only by match correction.
	ApplyCorrection(ctx context.Context, exec SQLExecutor, id string, player1ID, player2ID string, winnerID *string, result string) error
	MaxIDNumber(ctx context.Context) (int, error)
}

type postgresHistoryRepository struct {
	db *sql.DB
}

func NewPostgresHistoryRepository(db *sql.DB) HistoryRepository {
	return &postgresHistoryRepository{db: db}
}

const historyColumns = `id, round, played_at, table_number, player1_id, player2_id, winner_id, result`

func (r *postgresHistoryRepository) Append(ctx context.Context, exec SQLExecutor, record *models.HistoryRecord) error {
	query := `
		INSERT INTO match_history
			(id, round, played_at, table_number, player1_id, player2_id, winner_id, result)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := exec.ExecContext(ctx, query,
		record.ID,
		record.Round,
		record.PlayedAt,
		record.TableNumber,
		record.Player1ID,
		record.Player2ID,
		record.WinnerID,
		record.Result,
	)
	if err != nil {
		return fmt.Errorf("failed to append history record %s: %w", record.ID, err)
	}
	return nil
}

func (r *postgresHistoryRepository) GetByID(ctx context.Context, id string) (*models.HistoryRecord, error) {
	query := `SELECT ` + historyColumns + ` FROM match_history WHERE id = $1`

	rec := &models.HistoryRecord{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID,
		&rec.Round,
		&rec.PlayedAt,
		&rec.TableNumber,
		&rec.Player1ID,
		&rec.Player2ID,
		&rec.WinnerID,
		&rec.Result,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan history record %s: %w", id, err)
	}
	return rec, nil
}

func (r *postgresHistoryRepository) List(ctx context.Context) ([]*models.HistoryRecord, error) {
	query := `SELECT ` + historyColumns + ` FROM match_history ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query match history: %w", err)
	}
	defer rows.Close()

	records := make([]*models.HistoryRecord, 0)
	for rows.Next() {
		var rec models.HistoryRecord
		if scanErr := rows.Scan(
			&rec.ID,
			&rec.Round,
			&rec.PlayedAt,
			&rec.TableNumber,
			&rec.Player1ID,
			&rec.Player2ID,
			&rec.WinnerID,
			&rec.Result,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", scanErr)
		}
		records = append(records, &rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during history rows iteration: %w", err)
	}
	return records, nil
}

func (r *postgresHistoryRepository) ApplyCorrection(ctx context.Context, exec SQLExecutor, id string, player1ID, player2ID string, winnerID *string, result string) error {
	query := `
		UPDATE match_history
		SET player1_id = $1, player2_id = $2, winner_id = $3, result = $4
		WHERE id = $5`

	res, err := exec.ExecContext(ctx, query, player1ID, player2ID, winnerID, result, id)
	if err != nil {
		return fmt.Errorf("failed to correct history record %s: %w", id, err)
	}
	return checkAffectedRows(res, ErrMatchNotFound)
}

func (r *postgresHistoryRepository) MaxIDNumber(ctx context.Context) (int, error) {
	query := `SELECT COALESCE(MAX(CAST(SUBSTRING(id FROM 2) AS INTEGER)), 0) FROM match_history`

	var maxNum int
	if err := r.db.QueryRowContext(ctx, query).Scan(&maxNum); err != nil {
		return 0, fmt.Errorf("failed to query max match id: %w", err)
	}
	return maxNum, nil
}
