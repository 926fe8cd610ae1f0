package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jwebster45206/dungeon-engine/internal/game"
	"github.com/jwebster45206/dungeon-engine/pkg/actor"
	"github.com/jwebster45206/dungeon-engine/pkg/dice"
	"github.com/jwebster45206/dungeon-engine/pkg/storage"
	"github.com/jwebster45206/dungeon-engine/pkg/world"
	"github.com/stretchr/testify/require"
)

const testWorldFile = "../../data/world.yaml"

type testAPI struct {
	mux    *http.ServeMux
	store  *storage.MockStorage
	player int
}

// newTestAPI wires every handler over a seeded mock store with one
// registered player. All dice rolls are 6.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	w, err := world.Load(testWorldFile)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := storage.NewMockStorage()
	roller := dice.NewSequenceRoller(6)
	svc := game.NewService(store, w, logger, game.WithRoller(roller), game.WithLockTTL(time.Second))
	require.NoError(t, svc.Seed(context.Background()))

	p, err := store.CreatePlayer(context.Background(), actor.NewPlayerSpec("Ada"))
	require.NoError(t, err)

	mux := http.NewServeMux()
	NewPlayerHandler(logger, store).Register(mux)
	NewWorldHandler(logger, store, svc).Register(mux)
	NewProgressHandler(logger, store).Register(mux)
	NewDiceHandler(logger, roller).Register(mux)
	NewGameHandler(logger, svc).Register(mux)
	return &testAPI{mux: mux, store: store, player: p.ID}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	a.mux.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), "body: %s", rr.Body.String())
	return v
}
