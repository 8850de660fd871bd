package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"matchdesk/models"
)

// SettingsRepository is a small persisted key/value store for the
// runtime-mutable tournament state.
type SettingsRepository interface {
	Load(ctx context.Context) (*models.Settings, error)
	SetMaxTables(ctx context.Context, exec SQLExecutor, n int) error
	SetCurrentRound(ctx context.Context, exec SQLExecutor, round int) error
	SetStatus(ctx context.Context, exec SQLExecutor, status models.TournamentStatus) error
}

type postgresSettingsRepository struct {
	db *sql.DB
}

func NewPostgresSettingsRepository(db *sql.DB) SettingsRepository {
	return &postgresSettingsRepository{db: db}
}

// Load reads all known keys, falling back to defaults for keys never
// written.
func (r *postgresSettingsRepository) Load(ctx context.Context) (*models.Settings, error) {
	settings := &models.Settings{
		MaxTables:    models.DefaultMaxTables,
		CurrentRound: 0,
		Status:       models.TournamentInProgress,
	}

	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM tournament_settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if scanErr := rows.Scan(&key, &value); scanErr != nil {
			return nil, fmt.Errorf("failed to scan settings row: %w", scanErr)
		}
		switch key {
		case models.SettingMaxTables:
			n, convErr := strconv.Atoi(value)
			if convErr != nil {
				return nil, fmt.Errorf("invalid %s value %q: %w", key, value, convErr)
			}
			settings.MaxTables = n
		case models.SettingCurrentRound:
			n, convErr := strconv.Atoi(value)
			if convErr != nil {
				return nil, fmt.Errorf("invalid %s value %q: %w", key, value, convErr)
			}
			settings.CurrentRound = n
		case models.SettingTournamentStatus:
			settings.Status = models.TournamentStatus(value)
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during settings rows iteration: %w", err)
	}
	return settings, nil
}

func (r *postgresSettingsRepository) SetMaxTables(ctx context.Context, exec SQLExecutor, n int) error {
	return r.set(ctx, exec, models.SettingMaxTables, strconv.Itoa(n))
}

func (r *postgresSettingsRepository) SetCurrentRound(ctx context.Context, exec SQLExecutor, round int) error {
	return r.set(ctx, exec, models.SettingCurrentRound, strconv.Itoa(round))
}

func (r *postgresSettingsRepository) SetStatus(ctx context.Context, exec SQLExecutor, status models.TournamentStatus) error {
	return r.set(ctx, exec, models.SettingTournamentStatus, string(status))
}

func (r *postgresSettingsRepository) set(ctx context.Context, exec SQLExecutor, key, value string) error {
	query := `
		INSERT INTO tournament_settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`

	if _, err := exec.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to persist setting %s: %w", key, err)
	}
	return nil
}
