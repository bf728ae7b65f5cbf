package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oss-qm/freecol-sub000/internal/codec"
	"github.com/oss-qm/freecol-sub000/internal/spec"
	"github.com/oss-qm/freecol-sub000/internal/world"
)

// GamePersistenceService сохраняет и загружает игры целиком.
type GamePersistenceService struct {
	pool    *pgxpool.Pool
	games   *GameRepository
	objects *ObjectRepository
}

// NewGamePersistenceService создаёт новый сервис.
func NewGamePersistenceService(pool *pgxpool.Pool) *GamePersistenceService {
	return &GamePersistenceService{
		pool:    pool,
		games:   NewGameRepository(pool),
		objects: NewObjectRepository(pool),
	}
}

// Games returns the header repository.
func (s *GamePersistenceService) Games() *GameRepository { return s.games }

// Objects returns the object record repository.
func (s *GamePersistenceService) Objects() *ObjectRepository { return s.objects }

// SaveGame saves the header and every object of g in a single
// transaction: either all of it is stored or none.
func (s *GamePersistenceService) SaveGame(ctx context.Context, g *world.Game) error {
	doc := codec.Snapshot(g)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction for game %s: %w", doc.Game, err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("rollback failed", "game", doc.Game, "error", err)
		}
	}()

	row := &GameRow{
		ID:       doc.Game,
		Turn:     doc.Turn,
		Checksum: doc.Checksum,
		Counters: doc.Counters,
		SavedAt:  time.Now().UTC(),
	}
	if row.Counters == nil {
		row.Counters = map[string]int64{}
	}
	if err := s.games.SaveTx(ctx, tx, row); err != nil {
		return err
	}
	if err := s.objects.SaveAllTx(ctx, tx, doc.Game, doc.Objects); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit game %s: %w", doc.Game, err)
	}

	slog.Info("game saved",
		"game", doc.Game,
		"turn", doc.Turn,
		"objects", len(doc.Objects))
	return nil
}

// LoadGame restores game id against sp.
func (s *GamePersistenceService) LoadGame(ctx context.Context, id uuid.UUID, sp *spec.Specification, opts world.RegistryOptions) (*world.Game, error) {
	row, err := s.games.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	records, err := s.objects.LoadAll(ctx, id)
	if err != nil {
		return nil, err
	}
	doc := &codec.Document{
		Game:     row.ID,
		Turn:     row.Turn,
		Checksum: row.Checksum,
		Counters: row.Counters,
		Objects:  records,
	}
	g, err := codec.Restore(doc, sp, opts)
	if err != nil {
		return nil, fmt.Errorf("restoring game %s: %w", id, err)
	}
	return g, nil
}

// DeleteGame removes game id.
func (s *GamePersistenceService) DeleteGame(ctx context.Context, id uuid.UUID) error {
	return s.games.Delete(ctx, id)
}
