package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	gosync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"tripkeeper/internal/app/client/config"
	"tripkeeper/internal/domain/sync"
	"tripkeeper/internal/domain/trip"
)

func newTestApp(t *testing.T, serverAddr string) *App {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		Env:               "local",
		ServerAddress:     serverAddr,
		ConfigDir:         dir,
		TokenPath:         filepath.Join(dir, "session.json"),
		DataPath:          filepath.Join(dir, "tripkeeper.db"),
		SyncInterval:      5 * time.Second,
		PendingEscalation: time.Hour,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	app, err := New(cfg, log)
	require.NoError(t, err)
	require.NoError(t, app.session.Set(Session{
		OwnerID:      "owner-1",
		Login:        "pat",
		AccessToken:  "token-1",
		RefreshToken: "refresh-1",
		RefreshedAt:  time.Now(),
	}))
	return app
}

func TestApp_ShutdownWaitsForImmediatePush(t *testing.T) {
	// A mutation starts an out-of-band push in the background. Shutdown must
	// wait for it, so the one-shot CLI process delivers the change before it
	// exits and closes the database.
	var mu gosync.Mutex
	var pushed []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			mu.Lock()
			pushed = append(pushed, r.URL.Path)
			mu.Unlock()
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"record": map[string]any{}})
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	app := newTestApp(t, strings.TrimPrefix(srv.URL, "http://"))

	now := time.Now()
	id, err := app.SaveTrip(context.Background(), "", trip.Trip{
		StartedAt:  now,
		EndedAt:    now.Add(30 * time.Minute),
		DistanceKm: 12.5,
		Purpose:    trip.PurposeBusiness,
		Source:     trip.SourceManual,
	})
	require.NoError(t, err)

	app.Shutdown()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, pushed, 1)
	assert.Equal(t, "/api/v1/records/trip/"+id, pushed[0])

	// The database is closed only after the push finished.
	_, err = app.ListTrips(context.Background())
	assert.True(t, sync.IsStorage(err))
}

func TestApp_ShutdownWithoutRunIsSafe(t *testing.T) {
	app := newTestApp(t, "127.0.0.1:1")
	app.Shutdown()

	_, err := app.ListTrips(context.Background())
	assert.True(t, sync.IsStorage(err))
}
