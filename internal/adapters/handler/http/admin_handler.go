package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/workers"
)

type RolloverRunner interface {
	Run(ctx context.Context, day string, force bool) (*domain.RolloverReport, error)
}

type ReminderSettings interface {
	Slots() map[string]string
	SetSlot(slot, hhmm string) error
}

type AdminHandler struct {
	rollover  RolloverRunner
	reminders ReminderSettings
	clock     domain.Clock
}

func NewAdminHandler(rollover RolloverRunner, reminders ReminderSettings, clock domain.Clock) *AdminHandler {
	return &AdminHandler{rollover: rollover, reminders: reminders, clock: clock}
}

type remindersRequest struct {
	Morning string `json:"morning"`
	Evening string `json:"evening"`
}

func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/admin/rollover", h.Rollover)

	settings := router.Group("/settings")
	{
		settings.GET("/reminders", h.GetReminders)
		settings.PUT("/reminders", h.PutReminders)
	}
}

// Rollover godoc
// @Summary  Run the daily rollover now
// @Tags     admin
// @Produce  json
// @Param    date query string false "YYYY-MM-DD, defaults to today"
// @Param    force query bool false "Run even if the day was already rolled over"
// @Success  200 {object} domain.RolloverReport
// @Router   /admin/rollover [post]
func (h *AdminHandler) Rollover(c *gin.Context) {
	day, err := optionalDay(c)
	if err != nil {
		handleError(c, err)
		return
	}
	if day == "" {
		day = domain.Today(h.clock)
	}

	force := false
	if raw := c.Query("force"); raw != "" {
		force, err = strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "force must be a boolean"})
			return
		}
	}

	report, err := h.rollover.Run(c.Request.Context(), day, force)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *AdminHandler) GetReminders(c *gin.Context) {
	c.JSON(http.StatusOK, h.reminders.Slots())
}

// PutReminders godoc
// @Summary  Move the morning and/or evening reminder
// @Tags     settings
// @Accept   json
// @Produce  json
// @Param    reminders body remindersRequest true "HH:MM per slot, empty keeps the current time"
// @Success  200 {object} map[string]string
// @Failure  400 {object} map[string]string
// @Router   /settings/reminders [put]
func (h *AdminHandler) PutReminders(c *gin.Context) {
	var req remindersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Morning == "" && req.Evening == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "morning or evening is required"})
		return
	}

	changes := []struct{ slot, at string }{
		{workers.SlotMorning, req.Morning},
		{workers.SlotEvening, req.Evening},
	}
	for _, ch := range changes {
		if ch.at == "" {
			continue
		}
		if _, err := workers.DelayUntil(h.clock.Now(), ch.at); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	for _, ch := range changes {
		if ch.at == "" {
			continue
		}
		if err := h.reminders.SetSlot(ch.slot, ch.at); err != nil {
			handleError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, h.reminders.Slots())
}
