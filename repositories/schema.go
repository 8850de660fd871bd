package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// Zero-row probes naming every column the repositories read. A missing
// table or column fails fast at startup instead of mid-operation.
var schemaProbes = []string{
	`SELECT id, name, wins, losses, matches_played, points, opp_win_rate, status, last_match_at, created_at
	 FROM players LIMIT 0`,
	`SELECT id, round, played_at, table_number, player1_id, player2_id, winner_id, result
	 FROM match_history LIMIT 0`,
	`SELECT table_number, player1_id, player2_id, result
	 FROM round_sheet LIMIT 0`,
	`SELECT key, value
	 FROM tournament_settings LIMIT 0`,
}

// CheckSchema verifies that every required table and column exists,
// wrapping undefined-table/undefined-column failures in
// ErrSchemaMismatch. Schema provisioning itself is out of scope here;
// this only guards against running on the wrong database.
func CheckSchema(ctx context.Context, db *sql.DB) error {
	for _, probe := range schemaProbes {
		rows, err := db.QueryContext(ctx, probe)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok {
				// "42P01": undefined_table, "42703": undefined_column
				switch pqErr.Code {
				case "42P01", "42703":
					return fmt.Errorf("%w: %s", ErrSchemaMismatch, pqErr.Message)
				}
			}
			return fmt.Errorf("schema probe failed: %w", err)
		}
		rows.Close()
	}
	return nil
}
