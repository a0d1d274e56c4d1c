package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/comitanigiacomo/kanso-streak-engine/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/live"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/services"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/workers"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type testAPI struct {
	router    *gin.Engine
	store     *repository.InMemoryStore
	clock     fixedClock
	dashboard *services.DashboardService
	habits    *services.HabitService
	trackings *services.TrackingService
	stats     *services.StatsService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewInMemoryStore()
	clock := fixedClock{now: time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)}
	changes := live.NewBroadcaster()

	queue := workers.NewWriteQueue("test", 10, nil, nil)
	queue.Start(context.Background())
	t.Cleanup(queue.Close)

	habits := services.NewHabitService(store, queue, clock, changes, nil)
	trackings := services.NewTrackingService(store, queue, changes, nil)
	dashboard := services.NewDashboardService(habits, trackings, clock, nil, nil)
	stats := services.NewStatsService(store, clock, changes)

	router := gin.New()
	api := router.Group("/api/v1")
	adapterHTTP.NewHabitHandler(dashboard, habits, trackings, stats).RegisterRoutes(api)
	adapterHTTP.NewTrackingHandler(trackings, clock).RegisterRoutes(api)
	adapterHTTP.NewStatsHandler(stats).RegisterRoutes(api)

	return &testAPI{
		router:    router,
		store:     store,
		clock:     clock,
		dashboard: dashboard,
		habits:    habits,
		trackings: trackings,
		stats:     stats,
	}
}

func (a *testAPI) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}

	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) createHabit(t *testing.T, name string) *domain.Habit {
	t.Helper()
	h, err := a.dashboard.CreateHabit(context.Background(), services.CreateHabitInput{Name: name, Description: name + " daily"})
	require.NoError(t, err)
	return h
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
