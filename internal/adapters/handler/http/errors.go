package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/workers"
)

var errInvalidID = errors.New("invalid id")

// handleError writes the status for err. Unknown errors are attached to the
// context for the request logger and hidden from the client.
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrHabitNotFound),
		errors.Is(err, domain.ErrTrackingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrDuplicateName):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrHabitNameEmpty),
		errors.Is(err, domain.ErrHabitNameTooLong),
		errors.Is(err, domain.ErrHabitDescriptionEmpty),
		errors.Is(err, domain.ErrHabitDescTooLong),
		errors.Is(err, domain.ErrInvalidStreak),
		errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrInvalidTracking),
		errors.Is(err, workers.ErrUnknownSlot),
		errors.Is(err, errInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, workers.ErrQueueClosed):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "shutting down"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// optionalDay returns the date query parameter or "" when absent. A present
// value must be a valid day.
func optionalDay(c *gin.Context) (string, error) {
	day := c.Query("date")
	if day == "" {
		return "", nil
	}
	if _, err := domain.ParseDay(day); err != nil {
		return "", err
	}
	return day, nil
}
