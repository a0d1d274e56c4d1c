package http_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"
)

func TestTrackingHandler(t *testing.T) {
	api := newTestAPI(t)
	a := api.createHabit(t, "Alpha")
	api.createHabit(t, "Beta")

	w := api.do(http.MethodPost, fmt.Sprintf("/api/v1/habits/%d/toggle", a.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("Rows for today", func(t *testing.T) {
		w := api.do(http.MethodGet, "/api/v1/trackings", nil)

		require.Equal(t, http.StatusOK, w.Code)
		rows := decode[[]domain.HabitTracking](t, w)
		assert.Len(t, rows, 2)
	})

	t.Run("Empty day", func(t *testing.T) {
		w := api.do(http.MethodGet, "/api/v1/trackings?date=2020-02-29", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decode[[]domain.HabitTracking](t, w))
	})

	t.Run("Summary", func(t *testing.T) {
		w := api.do(http.MethodGet, "/api/v1/trackings/summary?date=2024-01-10", nil)

		require.Equal(t, http.StatusOK, w.Code)
		summary := decode[domain.DaySummary](t, w)
		assert.Equal(t, 2, summary.Total)
		assert.Equal(t, 1, summary.Completed)
		assert.InDelta(t, 50.0, summary.Rate, 0.001)
	})

	t.Run("Invalid date", func(t *testing.T) {
		w := api.do(http.MethodGet, "/api/v1/trackings/summary?date=2024-13-01", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
