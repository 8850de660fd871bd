package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"matchdesk/models"
)

type PlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, player *models.Player) error
	GetByID(ctx context.Context, id string) (*models.Player, error)
	List(ctx context.Context) ([]*models.Player, error)
	ListByStatus(ctx context.Context, status models.PlayerStatus) ([]*models.Player, error)
	Update(ctx context.Context, exec SQLExecutor, player *models.Player) error
	// MaxIDNumber returns the highest numeric id suffix ever assigned,
	// or 0 with no players. The sequence continues past drops.
	MaxIDNumber(ctx context.Context) (int, error)
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

const playerColumns = `id, name, wins, losses, matches_played, points, opp_win_rate, status, last_match_at, created_at`

func (r *postgresPlayerRepository) Create(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	query := `
		INSERT INTO players
			(id, name, wins, losses, matches_played, points, opp_win_rate, status, last_match_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`

	err := exec.QueryRowContext(ctx, query,
		player.ID,
		player.Name,
		player.Wins,
		player.Losses,
		player.MatchesPlayed,
		player.Points,
		player.OppWinRate,
		player.Status,
		player.LastMatchAt,
	).Scan(&player.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert player %s: %w", player.ID, err)
	}
	return nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id string) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`

	player := &models.Player{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&player.ID,
		&player.Name,
		&player.Wins,
		&player.Losses,
		&player.MatchesPlayed,
		&player.Points,
		&player.OppWinRate,
		&player.Status,
		&player.LastMatchAt,
		&player.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player %s: %w", id, err)
	}
	return player, nil
}

func (r *postgresPlayerRepository) List(ctx context.Context) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY id ASC`
	return r.queryPlayers(ctx, query)
}

func (r *postgresPlayerRepository) ListByStatus(ctx context.Context, status models.PlayerStatus) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE status = $1 ORDER BY id ASC`
	return r.queryPlayers(ctx, query, status)
}

func (r *postgresPlayerRepository) queryPlayers(ctx context.Context, query string, args ...interface{}) ([]*models.Player, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		var p models.Player
		if scanErr := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Wins,
			&p.Losses,
			&p.MatchesPlayed,
			&p.Points,
			&p.OppWinRate,
			&p.Status,
			&p.LastMatchAt,
			&p.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", scanErr)
		}
		players = append(players, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during player rows iteration: %w", err)
	}
	return players, nil
}

func (r *postgresPlayerRepository) Update(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	query := `
		UPDATE players
		SET name = $1, wins = $2, losses = $3, matches_played = $4,
		    points = $5, opp_win_rate = $6, status = $7, last_match_at = $8
		WHERE id = $9`

	result, err := exec.ExecContext(ctx, query,
		player.Name,
		player.Wins,
		player.Losses,
		player.MatchesPlayed,
		player.Points,
		player.OppWinRate,
		player.Status,
		player.LastMatchAt,
		player.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update player %s: %w", player.ID, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) MaxIDNumber(ctx context.Context) (int, error) {
	// Ids are P-prefixed with a numeric tail; strip the prefix in SQL so
	// the max survives deletions-by-marking and zero padding overflow.
	query := `SELECT COALESCE(MAX(CAST(SUBSTRING(id FROM 2) AS INTEGER)), 0) FROM players`

	var maxNum int
	if err := r.db.QueryRowContext(ctx, query).Scan(&maxNum); err != nil {
		return 0, fmt.Errorf("failed to query max player id: %w", err)
	}
	return maxNum, nil
}
