package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oss-qm/freecol-sub000/internal/codec"
	"github.com/oss-qm/freecol-sub000/internal/config"
	"github.com/oss-qm/freecol-sub000/internal/model"
	"github.com/oss-qm/freecol-sub000/internal/world"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("warn"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("loud"))
}

func TestLoadSpecification(t *testing.T) {
	ctx := context.Background()

	t.Run("embedded", func(t *testing.T) {
		sp, err := loadSpecification(ctx, config.DefaultRulesd())
		require.NoError(t, err)
		assert.NotEmpty(t, sp.UnitTypes())
	})

	t.Run("files and patch", func(t *testing.T) {
		dir := t.TempDir()
		base := filepath.Join(dir, "base.yaml")
		patch := filepath.Join(dir, "patch.yaml")
		require.NoError(t, os.WriteFile(base, []byte("unit-types:\n  - id: test.unit.scout\n    movement: 4\n"), 0o600))
		require.NoError(t, os.WriteFile(patch, []byte("unit-types:\n  - id: test.unit.scout\n    preserve: true\n    movement: 12\n"), 0o600))

		cfg := config.DefaultRulesd()
		cfg.SpecPaths = []string{base}
		cfg.PatchPaths = []string{patch}
		sp, err := loadSpecification(ctx, cfg)
		require.NoError(t, err)
		ut, ok := sp.UnitType("test.unit.scout")
		require.True(t, ok)
		assert.Equal(t, 12, ut.Movement)
	})

	t.Run("unknown rule set", func(t *testing.T) {
		cfg := config.DefaultRulesd()
		cfg.RuleSet = "nonexistent"
		_, err := loadSpecification(ctx, cfg)
		assert.Error(t, err)
	})
}

func TestOpenGame_FileAndExport(t *testing.T) {
	ctx := context.Background()
	sp, err := loadSpecification(ctx, config.DefaultRulesd())
	require.NoError(t, err)

	g := world.NewGame(sp, world.Options{})
	p, err := g.AddPlayer("Stuyvesant", sp.NationTypes()[0].ID)
	require.NoError(t, err)
	g.AddSettlement(p, "Nieuw Amsterdam", model.Tile{X: 1, Y: 2})

	path := filepath.Join(t.TempDir(), "game.yaml")
	require.NoError(t, saveGame(ctx, g, path, nil))

	restored, err := openGame(ctx, options{gameFile: path}, sp, world.RegistryOptions{}, nil)
	require.NoError(t, err)
	assert.Equal(t, g.ID(), restored.ID())
	assert.Equal(t, 2, restored.Registry().Len())

	_, err = openGame(ctx, options{gameID: "not-a-uuid"}, sp, world.RegistryOptions{}, nil)
	assert.Error(t, err, "loading from the database needs persistence")
}

func TestMaintain_StopsOnCancel(t *testing.T) {
	sp, err := loadSpecification(context.Background(), config.DefaultRulesd())
	require.NoError(t, err)
	g := world.NewGame(sp, world.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		maintain(ctx, g, time.Millisecond, nil)
		close(done)
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("maintenance loop did not stop")
	}

	_, err = codec.Encode(g)
	require.NoError(t, err)
}
