package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"gopkg.in/yaml.v3"

	"github.com/oss-qm/freecol-sub000/internal/codec"
	"github.com/oss-qm/freecol-sub000/internal/ident"
)

// ObjectRepository управляет записями объектов сохранённой игры.
// Each row holds one codec record as YAML.
type ObjectRepository struct {
	db *pgxpool.Pool
}

// NewObjectRepository создаёт новый ObjectRepository.
func NewObjectRepository(db *pgxpool.Pool) *ObjectRepository {
	return &ObjectRepository{db: db}
}

// LoadAll returns the records of game id in saved order.
func (r *ObjectRepository) LoadAll(ctx context.Context, gameID uuid.UUID) ([]*codec.ObjectRecord, error) {
	query := `
		SELECT object_id, record
		FROM game_objects
		WHERE game_id = $1
		ORDER BY position
	`
	rows, err := r.db.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("querying objects of game %s: %w", gameID, err)
	}
	defer rows.Close()

	var out []*codec.ObjectRecord
	for rows.Next() {
		var objectID, data string
		if err := rows.Scan(&objectID, &data); err != nil {
			return nil, fmt.Errorf("scanning object row: %w", err)
		}
		var rec codec.ObjectRecord
		if err := yaml.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("decoding object %s: %w", objectID, err)
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating object rows: %w", err)
	}
	return out, nil
}

// SaveAllTx replaces every record of game id within a transaction.
func (r *ObjectRepository) SaveAllTx(ctx context.Context, tx pgx.Tx, gameID uuid.UUID, records []*codec.ObjectRecord) error {
	if _, err := tx.Exec(ctx, `DELETE FROM game_objects WHERE game_id = $1`, gameID); err != nil {
		return fmt.Errorf("deleting old objects of game %s: %w", gameID, err)
	}
	if len(records) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(records))
	for i, rec := range records {
		data, err := yaml.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encoding object %s: %w", rec.ID, err)
		}
		rows = append(rows, []any{gameID, rec.ID.String(), rec.ID.Kind, i, string(data)})
	}

	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"game_objects"},
		[]string{"game_id", "object_id", "kind", "position", "record"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("inserting objects of game %s: %w", gameID, err)
	}

	slog.Debug("saved game objects",
		"game", gameID,
		"count", len(records))
	return nil
}

// UpdateFields merges the fields of a partial record into the stored
// record of the same object.
func (r *ObjectRepository) UpdateFields(ctx context.Context, gameID uuid.UUID, partial *codec.ObjectRecord) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction for object %s: %w", partial.ID, err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("rollback failed", "object", partial.ID, "error", err)
		}
	}()

	rec, err := r.loadTx(ctx, tx, gameID, partial.ID)
	if err != nil {
		return err
	}
	if rec.Fields == nil {
		rec.Fields = make(map[string]string, len(partial.Fields))
	}
	maps.Copy(rec.Fields, partial.Fields)

	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding object %s: %w", rec.ID, err)
	}
	_, err = tx.Exec(ctx,
		`UPDATE game_objects SET record = $3 WHERE game_id = $1 AND object_id = $2`,
		gameID, partial.ID.String(), string(data))
	if err != nil {
		return fmt.Errorf("updating object %s: %w", partial.ID, err)
	}
	return tx.Commit(ctx)
}

func (r *ObjectRepository) loadTx(ctx context.Context, tx pgx.Tx, gameID uuid.UUID, id ident.ID) (*codec.ObjectRecord, error) {
	var data string
	err := tx.QueryRow(ctx,
		`SELECT record FROM game_objects WHERE game_id = $1 AND object_id = $2 FOR UPDATE`,
		gameID, id.String()).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("object %s of game %s: %w", id, gameID, codec.ErrUnknownObject)
	}
	if err != nil {
		return nil, fmt.Errorf("querying object %s: %w", id, err)
	}
	var rec codec.ObjectRecord
	if err := yaml.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("decoding object %s: %w", id, err)
	}
	return &rec, nil
}
