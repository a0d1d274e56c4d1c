package http_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type habitJSON struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Icon          string `json:"icon"`
	IconKind      string `json:"icon_kind"`
	Streak        int    `json:"streak"`
	LongestStreak int    `json:"longest_streak"`
	Done          *bool  `json:"done"`
}

func TestCreateHabit(t *testing.T) {
	t.Run("Success: 201 Created", func(t *testing.T) {
		api := newTestAPI(t)

		w := api.do(http.MethodPost, "/api/v1/habits", `{"name": "Gym", "description": "Lift", "icon": "💪"}`)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		got := decode[habitJSON](t, w)
		assert.NotZero(t, got.ID)
		assert.Equal(t, "Gym", got.Name)
		assert.Equal(t, "emoji", got.IconKind)
		assert.Nil(t, got.Done)
	})

	t.Run("Default icon is a symbol", func(t *testing.T) {
		api := newTestAPI(t)

		w := api.do(http.MethodPost, "/api/v1/habits", `{"name": "Read", "description": "Pages"}`)

		require.Equal(t, http.StatusCreated, w.Code)
		got := decode[habitJSON](t, w)
		assert.Equal(t, "default_icon", got.Icon)
		assert.Equal(t, "symbol", got.IconKind)
	})

	t.Run("Fail: 400 missing description", func(t *testing.T) {
		api := newTestAPI(t)
		w := api.do(http.MethodPost, "/api/v1/habits", `{"name": "Gym"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Fail: 400 blank name", func(t *testing.T) {
		api := newTestAPI(t)
		w := api.do(http.MethodPost, "/api/v1/habits", `{"name": "   ", "description": "x"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "name cannot be empty")
	})

	t.Run("Fail: 409 duplicate name", func(t *testing.T) {
		api := newTestAPI(t)
		api.createHabit(t, "Gym")

		w := api.do(http.MethodPost, "/api/v1/habits", `{"name": "Gym", "description": "again"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestListHabits(t *testing.T) {
	api := newTestAPI(t)
	a := api.createHabit(t, "Alpha")
	b := api.createHabit(t, "Beta")

	w := api.do(http.MethodPost, fmt.Sprintf("/api/v1/habits/%d/toggle", b.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("Done first for today", func(t *testing.T) {
		w := api.do(http.MethodGet, "/api/v1/habits", nil)

		require.Equal(t, http.StatusOK, w.Code)
		list := decode[[]habitJSON](t, w)
		require.Len(t, list, 2)
		assert.Equal(t, b.ID, list[0].ID)
		assert.True(t, *list[0].Done)
		assert.Equal(t, a.ID, list[1].ID)
		assert.False(t, *list[1].Done)
	})

	t.Run("Other day has nothing done", func(t *testing.T) {
		w := api.do(http.MethodGet, "/api/v1/habits?date=2024-01-09", nil)

		require.Equal(t, http.StatusOK, w.Code)
		list := decode[[]habitJSON](t, w)
		require.Len(t, list, 2)
		assert.Equal(t, a.ID, list[0].ID)
	})

	t.Run("Invalid date", func(t *testing.T) {
		w := api.do(http.MethodGet, "/api/v1/habits?date=01-09-2024", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Titles", func(t *testing.T) {
		w := api.do(http.MethodGet, "/api/v1/habits/titles", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.ElementsMatch(t, []string{"Alpha", "Beta"}, decode[[]string](t, w))
	})
}

func TestUpdateHabit(t *testing.T) {
	t.Run("Success: 200 OK", func(t *testing.T) {
		api := newTestAPI(t)
		h := api.createHabit(t, "Old")

		w := api.do(http.MethodPut, fmt.Sprintf("/api/v1/habits/%d", h.ID), `{"name": "New", "description": "Better", "streak": 4}`)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		got := decode[habitJSON](t, w)
		assert.Equal(t, "New", got.Name)
		assert.Equal(t, 4, got.Streak)
		assert.Equal(t, 4, got.LongestStreak)
	})

	t.Run("Fail: 404 unknown habit", func(t *testing.T) {
		api := newTestAPI(t)
		w := api.do(http.MethodPut, "/api/v1/habits/999", `{"name": "New", "description": "x"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Fail: 400 invalid id", func(t *testing.T) {
		api := newTestAPI(t)
		w := api.do(http.MethodPut, "/api/v1/habits/abc", `{"name": "New", "description": "x"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Fail: 400 negative streak", func(t *testing.T) {
		api := newTestAPI(t)
		h := api.createHabit(t, "Old")
		w := api.do(http.MethodPut, fmt.Sprintf("/api/v1/habits/%d", h.ID), `{"name": "Old", "description": "x", "streak": -1}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDeleteHabit(t *testing.T) {
	api := newTestAPI(t)
	h := api.createHabit(t, "Gone")

	w := api.do(http.MethodDelete, fmt.Sprintf("/api/v1/habits/%d", h.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	rows, err := api.store.ListTrackingsForHabit(context.Background(), h.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)

	w = api.do(http.MethodDelete, fmt.Sprintf("/api/v1/habits/%d", h.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestToggleHabit(t *testing.T) {
	api := newTestAPI(t)
	h := api.createHabit(t, "Walk")
	path := fmt.Sprintf("/api/v1/habits/%d/toggle", h.ID)

	w := api.do(http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[habitJSON](t, w)
	assert.True(t, *got.Done)
	assert.Equal(t, 1, got.Streak)
	assert.Equal(t, 1, got.LongestStreak)

	w = api.do(http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got = decode[habitJSON](t, w)
	assert.False(t, *got.Done)
	assert.Equal(t, 0, got.Streak)
	assert.Equal(t, 1, got.LongestStreak)

	t.Run("Missing row is 404", func(t *testing.T) {
		w := api.do(http.MethodPost, path+"?date=2023-12-01", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Bad date is 400", func(t *testing.T) {
		w := api.do(http.MethodPost, path+"?date=yesterday", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHabitTrackingsAndLookup(t *testing.T) {
	api := newTestAPI(t)
	h := api.createHabit(t, "Stretch")

	w := api.do(http.MethodGet, fmt.Sprintf("/api/v1/habits/%d/trackings", h.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"2024-01-10"`)

	w = api.do(http.MethodGet, "/api/v1/habits/404/trackings", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodGet, "/api/v1/habits/lookup?name=Stretch", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), fmt.Sprintf(`"id":%d`, h.ID))
	assert.Contains(t, w.Body.String(), `"icon_kind":"symbol"`)

	w = api.do(http.MethodGet, "/api/v1/habits/lookup?name=Nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodGet, "/api/v1/habits/lookup", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type streamRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func (r *streamRecorder) CloseNotify() <-chan bool { return r.closed }

func TestWatchHabits(t *testing.T) {
	api := newTestAPI(t)
	api.createHabit(t, "Meditate")

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "/api/v1/habits/watch", nil)
	w := &streamRecorder{ResponseRecorder: httptest.NewRecorder(), closed: make(chan bool, 1)}

	api.router.ServeHTTP(w, req)

	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/event-stream"), "content type %q", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "event:habits")
	assert.Contains(t, w.Body.String(), "Meditate")
}
