package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"massage-board-backend/config"
	"massage-board-backend/internal/board"
	"massage-board-backend/internal/db"
	"massage-board-backend/internal/events"
	"massage-board-backend/internal/mw"
	"massage-board-backend/internal/notification"
	"massage-board-backend/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// cdt keeps tests independent of the tz database.
var cdt = time.FixedZone("CDT", -5*3600)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

type recordingDispatcher struct {
	mu   sync.Mutex
	jobs []notification.Job
}

func (d *recordingDispatcher) Dispatch(job notification.Job) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.jobs = append(d.jobs, job)
}

type testEnv struct {
	router   *gin.Engine
	store    store.Store
	handler  *Handler
	events   *recordingPublisher
	notifier *recordingDispatcher
}

func testLayout() board.Layout {
	cfg := config.Default().Board
	cfg.Location = cdt
	return board.NewLayout(cfg)
}

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{
		RateLimitPerSec: 1000,
		RateLimitBurst:  1000,
		CacheTTL:        time.Minute,
	}
}

func newSQLiteStore(t *testing.T) store.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gormDB, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:api_%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gormDB))
	return store.NewGormStore(gormDB)
}

func newTestEnvWithStore(t *testing.T, s store.Store) *testEnv {
	t.Helper()
	env := &testEnv{
		store:    s,
		events:   &recordingPublisher{},
		notifier: &recordingDispatcher{},
	}
	env.handler = NewHandler(s, testLayout(), nil).
		WithEvents(env.events).
		WithNotifier(env.notifier)
	env.handler.now = func() time.Time { return time.Date(2025, 6, 12, 10, 30, 0, 0, cdt) }
	env.router = NewRouter(env.handler, testServerConfig(), mw.NewMemoryCache(time.Minute))
	return env
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	s := newSQLiteStore(t)
	require.NoError(t, s.EnsureWorkers(context.Background(), config.DefaultWorkers))
	return newTestEnvWithStore(t, s)
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func swedish() map[string]any {
	return map[string]any{
		"massageType": "Swedish",
		"phone":       "555-0100",
		"start":       "2025-06-12T10:00",
		"end":         "2025-06-12T11:00",
		"customer":    "Alice",
		"status":      "booked",
		"preference":  "female",
	}
}
