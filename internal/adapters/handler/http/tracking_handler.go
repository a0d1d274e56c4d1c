package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/services"
)

type TrackingHandler struct {
	svc   *services.TrackingService
	clock domain.Clock
}

func NewTrackingHandler(svc *services.TrackingService, clock domain.Clock) *TrackingHandler {
	return &TrackingHandler{svc: svc, clock: clock}
}

func (h *TrackingHandler) RegisterRoutes(router *gin.RouterGroup) {
	trackings := router.Group("/trackings")
	{
		trackings.GET("", h.ListForDate)
		trackings.GET("/summary", h.Summary)
	}
}

func (h *TrackingHandler) day(c *gin.Context) (string, error) {
	day, err := optionalDay(c)
	if err != nil {
		return "", err
	}
	if day == "" {
		day = domain.Today(h.clock)
	}
	return day, nil
}

// ListForDate godoc
// @Summary  Tracking rows of one day
// @Tags     trackings
// @Produce  json
// @Param    date query string false "YYYY-MM-DD, defaults to today"
// @Success  200 {array} domain.HabitTracking
// @Router   /trackings [get]
func (h *TrackingHandler) ListForDate(c *gin.Context) {
	day, err := h.day(c)
	if err != nil {
		handleError(c, err)
		return
	}

	rows, err := h.svc.HabitTrackingsForDate(c.Request.Context(), day)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Summary godoc
// @Summary  Completed and total habits of one day
// @Tags     trackings
// @Produce  json
// @Param    date query string false "YYYY-MM-DD, defaults to today"
// @Success  200 {object} domain.DaySummary
// @Router   /trackings/summary [get]
func (h *TrackingHandler) Summary(c *gin.Context) {
	day, err := h.day(c)
	if err != nil {
		handleError(c, err)
		return
	}

	summary, err := h.svc.Summary(c.Request.Context(), day)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
