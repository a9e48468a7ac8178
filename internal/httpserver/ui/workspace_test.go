package ui

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"finitefield.org/bangalore-local/internal/catalog"
	"finitefield.org/bangalore-local/internal/directory"
	"finitefield.org/bangalore-local/internal/mapview"
)

func TestWorkspaceStoreSweepsIdleSessions(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	store := newWorkspaceStore(workspaceConfig{
		catalog: catalog.NewStaticService(nil),
		logger:  zap.NewNop(),
	}, 10*time.Minute, func() time.Time { return now })
	t.Cleanup(store.close)

	first := store.get("a")
	require.Same(t, first, store.get("a"), "same session reuses its workspace")
	require.NoError(t, first.directory.Init(context.Background(), url.Values{}))

	now = now.Add(5 * time.Minute)
	store.get("b")
	require.Equal(t, 2, store.len())

	now = now.Add(6 * time.Minute)
	store.get("b")
	require.Equal(t, 1, store.len(), "session a idled past the ttl")
	require.ErrorIs(t, first.directory.Init(context.Background(), url.Values{}), directory.ErrClosed)

	now = now.Add(11 * time.Minute)
	require.Equal(t, 1, store.sweep())
	require.Zero(t, store.len())
}

func TestWorkspaceResetMapStartsFresh(t *testing.T) {
	t.Parallel()

	cfg := workspaceConfig{catalog: catalog.NewStaticService(nil), logger: zap.NewNop()}
	ws := newWorkspace(cfg, time.Now())
	t.Cleanup(ws.close)

	require.NoError(t, ws.maps.Ready(context.Background()))
	require.Positive(t, ws.scene.MarkerCount())

	ws.resetMap(cfg)
	require.Zero(t, ws.scene.MarkerCount())
	require.Empty(t, ws.scene.Drain())
	require.ErrorIs(t, ws.maps.SelectEntry("1"), mapview.ErrNotReady)
}
