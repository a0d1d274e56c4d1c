package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/services"
)

const maxWindowDays = 366

type StatsHandler struct {
	svc *services.StatsService
}

func NewStatsHandler(svc *services.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

func (h *StatsHandler) RegisterRoutes(r *gin.RouterGroup) {
	stats := r.Group("/stats")
	{
		stats.GET("/best-streak", h.BestStreak)
		stats.GET("/completion-rate", h.CompletionRate)
		stats.GET("/longest-streak", h.LongestStreak)
	}
}

// habitParam parses the optional habit_id query parameter.
func habitParam(c *gin.Context) (*int64, bool) {
	raw := c.Query("habit_id")
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit_id"})
		return nil, false
	}
	return &id, true
}

// BestStreak godoc
// @Summary  Longest run of consecutive done days, for one habit or all
// @Tags     stats
// @Produce  json
// @Param    habit_id query int false "Habit id"
// @Success  200 {object} map[string]any
// @Router   /stats/best-streak [get]
func (h *StatsHandler) BestStreak(c *gin.Context) {
	habitID, ok := habitParam(c)
	if !ok {
		return
	}

	best, err := h.svc.BestStreak(c.Request.Context(), habitID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"habit_id": habitID, "best_streak": best})
}

// CompletionRate godoc
// @Summary  Share of done days in a trailing window
// @Tags     stats
// @Produce  json
// @Param    habit_id query int false "Habit id, all habits when omitted"
// @Param    days query int false "Window length, defaults to 7"
// @Success  200 {object} domain.CompletionStats
// @Router   /stats/completion-rate [get]
func (h *StatsHandler) CompletionRate(c *gin.Context) {
	habitID, ok := habitParam(c)
	if !ok {
		return
	}

	days := services.DefaultCompletionWindow
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a non-negative integer"})
			return
		}
		if n > maxWindowDays {
			c.JSON(http.StatusBadRequest, gin.H{"error": "window too large, max 366 days"})
			return
		}
		days = n
	}

	ctx := c.Request.Context()
	var (
		stats any
		err   error
	)
	if habitID != nil {
		stats, err = h.svc.CompletionRate(ctx, *habitID, days)
	} else {
		stats, err = h.svc.OverallCompletionRate(ctx, days)
	}
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *StatsHandler) LongestStreak(c *gin.Context) {
	longest, err := h.svc.MaxLongestStreak(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"longest_streak": longest})
}
