package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GameRow is the header of a saved game.
type GameRow struct {
	ID       uuid.UUID
	Turn     int
	Checksum string
	Counters map[string]int64
	SavedAt  time.Time
}

// GameRepository управляет заголовками сохранённых игр.
type GameRepository struct {
	db *pgxpool.Pool
}

// NewGameRepository создаёт новый GameRepository.
func NewGameRepository(db *pgxpool.Pool) *GameRepository {
	return &GameRepository{db: db}
}

// Load returns the header of game id, or ErrGameNotFound.
func (r *GameRepository) Load(ctx context.Context, id uuid.UUID) (*GameRow, error) {
	query := `
		SELECT game_id, turn, spec_checksum, counters, saved_at
		FROM games
		WHERE game_id = $1
	`
	var row GameRow
	err := r.db.QueryRow(ctx, query, id).Scan(&row.ID, &row.Turn, &row.Checksum, &row.Counters, &row.SavedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("game %s: %w", id, ErrGameNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying game %s: %w", id, err)
	}
	return &row, nil
}

// List returns every saved game header, most recent first.
func (r *GameRepository) List(ctx context.Context) ([]GameRow, error) {
	query := `
		SELECT game_id, turn, spec_checksum, counters, saved_at
		FROM games
		ORDER BY saved_at DESC, game_id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying games: %w", err)
	}
	defer rows.Close()

	var out []GameRow
	for rows.Next() {
		var row GameRow
		if err := rows.Scan(&row.ID, &row.Turn, &row.Checksum, &row.Counters, &row.SavedAt); err != nil {
			return nil, fmt.Errorf("scanning game row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating game rows: %w", err)
	}
	return out, nil
}

// SaveTx inserts or replaces the header of row.ID within a transaction.
func (r *GameRepository) SaveTx(ctx context.Context, tx pgx.Tx, row *GameRow) error {
	query := `
		INSERT INTO games (game_id, turn, spec_checksum, counters, saved_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (game_id) DO UPDATE
		SET turn = EXCLUDED.turn,
		    spec_checksum = EXCLUDED.spec_checksum,
		    counters = EXCLUDED.counters,
		    saved_at = EXCLUDED.saved_at
	`
	if _, err := tx.Exec(ctx, query, row.ID, row.Turn, row.Checksum, row.Counters, row.SavedAt); err != nil {
		return fmt.Errorf("saving game %s: %w", row.ID, err)
	}
	return nil
}

// Delete removes game id and its objects. Deleting a missing game
// returns ErrGameNotFound.
func (r *GameRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM games WHERE game_id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting game %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("game %s: %w", id, ErrGameNotFound)
	}
	return nil
}
