package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"alcyxob/training-engine/internal/domain"
	"alcyxob/training-engine/internal/service"
)

type SessionHandler struct {
	planService service.PlanService
	logger      *zap.Logger
}

func NewSessionHandler(planService service.PlanService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{planService: planService, logger: logger.Named("session_handler")}
}

// limitQuery reads ?limit=, defaulting to 0 (no limit).
func limitQuery(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		abortWithError(c, http.StatusBadRequest, "limit must be a non-negative integer")
		return 0, false
	}
	return limit, true
}

// RecordSession godoc
// @Summary Record a completed training session
// @Description Stores the session and runs monitoring under the re-analysis guard.
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param athleteId path string true "Athlete ID"
// @Param session body domain.SessionRecord true "Session"
// @Success 201 {object} engine.MonitorOutcome
// @Failure 400 {object} gin.H "Invalid session"
// @Router /athletes/{athleteId}/sessions [post]
func (h *SessionHandler) RecordSession(c *gin.Context) {
	var record domain.SessionRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	outcome, err := h.planService.RecordSession(c.Request.Context(), c.Param("athleteId"), record)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, outcome)
}

func (h *SessionHandler) ListSessions(c *gin.Context) {
	limit, ok := limitQuery(c)
	if !ok {
		return
	}
	sessions, err := h.planService.ListSessions(c.Request.Context(), c.Param("athleteId"), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func (h *SessionHandler) Monitor(c *gin.Context) {
	outcome, err := h.planService.MonitorAndAdapt(c.Request.Context(), c.Param("athleteId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func (h *SessionHandler) GetJournal(c *gin.Context) {
	limit, ok := limitQuery(c)
	if !ok {
		return
	}
	entries, err := h.planService.GetJournal(c.Request.Context(), c.Param("athleteId"), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
