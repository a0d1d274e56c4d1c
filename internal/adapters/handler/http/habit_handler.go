package http

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/services"
)

type HabitHandler struct {
	dashboard *services.DashboardService
	habits    *services.HabitService
	trackings *services.TrackingService
	stats     *services.StatsService
}

func NewHabitHandler(
	dashboard *services.DashboardService,
	habits *services.HabitService,
	trackings *services.TrackingService,
	stats *services.StatsService,
) *HabitHandler {
	return &HabitHandler{
		dashboard: dashboard,
		habits:    habits,
		trackings: trackings,
		stats:     stats,
	}
}

type createHabitRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	Icon        string `json:"icon"`
}

type updateHabitRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Streak      *int   `json:"streak"`
}

type habitResponse struct {
	domain.Habit
	IconKind string `json:"icon_kind"`
	Done     *bool  `json:"done,omitempty"`
}

func newHabitResponse(h domain.Habit) habitResponse {
	return habitResponse{Habit: h, IconKind: h.IconKind()}
}

func newDayHabitResponse(dh *domain.DayHabit) habitResponse {
	resp := newHabitResponse(dh.Habit)
	done := dh.Done
	resp.Done = &done
	return resp
}

func (h *HabitHandler) RegisterRoutes(router *gin.RouterGroup) {
	habits := router.Group("/habits")
	{
		habits.GET("", h.List)
		habits.POST("", h.Create)
		habits.GET("/titles", h.Titles)
		habits.GET("/lookup", h.Lookup)
		habits.GET("/watch", h.Watch)
		habits.PUT("/:id", h.Update)
		habits.DELETE("/:id", h.Delete)
		habits.POST("/:id/toggle", h.Toggle)
		habits.GET("/:id/trackings", h.Trackings)
	}
}

// List godoc
// @Summary  List habits with their status for a day, done first
// @Tags     habits
// @Produce  json
// @Param    date query string false "YYYY-MM-DD, defaults to today"
// @Success  200 {array} habitResponse
// @Router   /habits [get]
func (h *HabitHandler) List(c *gin.Context) {
	day, err := optionalDay(c)
	if err != nil {
		handleError(c, err)
		return
	}

	list, err := h.dashboard.HabitsForDay(c.Request.Context(), day)
	if err != nil {
		handleError(c, err)
		return
	}

	resp := make([]habitResponse, 0, len(list))
	for _, dh := range list {
		resp = append(resp, newDayHabitResponse(dh))
	}
	c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary  Create a habit and seed today's tracking row
// @Tags     habits
// @Accept   json
// @Produce  json
// @Param    habit body createHabitRequest true "Habit"
// @Success  201 {object} habitResponse
// @Failure  400,409 {object} map[string]string
// @Router   /habits [post]
func (h *HabitHandler) Create(c *gin.Context) {
	var req createHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	habit, err := h.dashboard.CreateHabit(c.Request.Context(), services.CreateHabitInput{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newHabitResponse(*habit))
}

func (h *HabitHandler) Titles(c *gin.Context) {
	titles, err := h.habits.HabitTitles(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, titles)
}

// Lookup godoc
// @Summary  Resolve a habit title to its id and icon
// @Tags     habits
// @Produce  json
// @Param    name query string true "Habit name"
// @Success  200 {object} domain.HabitLookup
// @Failure  404 {object} map[string]string
// @Router   /habits/lookup [get]
func (h *HabitHandler) Lookup(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	lookup, err := h.stats.LookupHabit(c.Request.Context(), name)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, lookup)
}

// Watch streams the habit list as server-sent events. A new "habits" event
// is sent after every committed write.
func (h *HabitHandler) Watch(c *gin.Context) {
	ctx := c.Request.Context()

	feed := h.habits.WatchAllHabits(ctx)
	updates, cancel := feed.Subscribe()
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case out, ok := <-updates:
			if !ok {
				return false
			}
			if !out.Available() {
				c.SSEvent("error", gin.H{"error": "habits unavailable"})
				return true
			}
			resp := make([]habitResponse, 0, len(out.Value))
			for _, dh := range out.Value {
				resp = append(resp, newDayHabitResponse(dh))
			}
			c.SSEvent("habits", resp)
			return true
		}
	})
}

// Update godoc
// @Summary  Update a habit
// @Tags     habits
// @Accept   json
// @Produce  json
// @Param    id path int true "Habit id"
// @Param    habit body updateHabitRequest true "Habit"
// @Success  200 {object} habitResponse
// @Failure  400,404,409 {object} map[string]string
// @Router   /habits/{id} [put]
func (h *HabitHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		handleError(c, err)
		return
	}

	var req updateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	habit, err := h.dashboard.UpdateHabit(c.Request.Context(), services.UpdateHabitInput{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Streak:      req.Streak,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, newHabitResponse(*habit))
}

func (h *HabitHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		handleError(c, err)
		return
	}

	if err := h.dashboard.DeleteHabit(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Toggle godoc
// @Summary  Flip the done status of a habit for a day
// @Tags     habits
// @Produce  json
// @Param    id path int true "Habit id"
// @Param    date query string false "YYYY-MM-DD, defaults to today"
// @Success  200 {object} habitResponse
// @Failure  400,404 {object} map[string]string
// @Router   /habits/{id}/toggle [post]
func (h *HabitHandler) Toggle(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		handleError(c, err)
		return
	}
	day, err := optionalDay(c)
	if err != nil {
		handleError(c, err)
		return
	}

	dh, err := h.dashboard.Toggle(c.Request.Context(), id, day)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDayHabitResponse(dh))
}

func (h *HabitHandler) Trackings(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		handleError(c, err)
		return
	}

	rows, err := h.trackings.TrackingsForHabit(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
