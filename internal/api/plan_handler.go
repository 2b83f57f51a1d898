package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"alcyxob/training-engine/internal/domain"
	"alcyxob/training-engine/internal/service"
)

type PlanHandler struct {
	planService service.PlanService
	logger      *zap.Logger
}

func NewPlanHandler(planService service.PlanService, logger *zap.Logger) *PlanHandler {
	return &PlanHandler{planService: planService, logger: logger.Named("plan_handler")}
}

// --- DTOs ---

type BuildPlanRequest struct {
	Profile *domain.AthleteProfile `json:"profile" binding:"required"`
	Goal    *domain.GoalParameters `json:"goal" binding:"required"`
}

type BuildPlanResponse struct {
	Plan      *domain.Plan           `json:"plan"`
	Selection *domain.ModelSelection `json:"selection"`
}

// weekParam parses :week, aborting with 400 on a malformed value.
func weekParam(c *gin.Context) (int, bool) {
	week, err := strconv.Atoi(c.Param("week"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid week number")
		return 0, false
	}
	return week, true
}

// BuildPlan godoc
// @Summary Build a training plan for an athlete
// @Description Selects a periodization model and generates the macro, meso and microcycles.
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param athleteId path string true "Athlete ID"
// @Param request body BuildPlanRequest true "Athlete profile and goal"
// @Success 201 {object} BuildPlanResponse
// @Failure 400 {object} gin.H "Invalid profile or goal"
// @Failure 409 {object} gin.H "Profile id does not match the path"
// @Router /athletes/{athleteId}/plan [post]
func (h *PlanHandler) BuildPlan(c *gin.Context) {
	var req BuildPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	athleteID := c.Param("athleteId")
	if req.Profile.ID != "" && req.Profile.ID != athleteID {
		respondError(c, h.logger, service.ErrAthleteMismatch)
		return
	}
	req.Profile.ID = athleteID

	plan, sel, err := h.planService.BuildPlan(c.Request.Context(), req.Profile, req.Goal)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, BuildPlanResponse{Plan: plan, Selection: sel})
}

func (h *PlanHandler) GetPlan(c *gin.Context) {
	plan, err := h.planService.GetPlan(c.Request.Context(), c.Param("athleteId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *PlanHandler) GetWeek(c *gin.Context) {
	week, ok := weekParam(c)
	if !ok {
		return
	}
	m, err := h.planService.GetWeek(c.Request.Context(), c.Param("athleteId"), week)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// AdaptWorkout godoc
// @Summary Adapt a base workout to a plan week
// @Description Applies the week's volume and intensity multipliers and focus areas.
// @Description An unknown plan or week answers 404 with the workout unmodified.
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param athleteId path string true "Athlete ID"
// @Param week path int true "Plan week (1-based)"
// @Param workout body domain.Workout true "Base workout"
// @Success 200 {object} domain.AdaptedWorkout
// @Failure 400 {object} gin.H "Invalid workout"
// @Failure 404 {object} gin.H "Unknown plan or week"
// @Router /athletes/{athleteId}/plan/weeks/{week}/adapt [post]
func (h *PlanHandler) AdaptWorkout(c *gin.Context) {
	week, ok := weekParam(c)
	if !ok {
		return
	}
	var workout domain.Workout
	if err := c.ShouldBindJSON(&workout); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	if err := domain.Validate(&workout); err != nil {
		respondError(c, h.logger, err)
		return
	}

	adapted, err := h.planService.AdaptWorkout(c.Request.Context(), c.Param("athleteId"), week, workout)
	if err != nil {
		if adapted != nil && (errors.Is(err, domain.ErrNotFound) || errors.Is(err, service.ErrPlanNotFound)) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error(), "workout": adapted})
			return
		}
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, adapted)
}

func (h *PlanHandler) OverrideDeload(c *gin.Context) {
	week, ok := weekParam(c)
	if !ok {
		return
	}
	plan, err := h.planService.OverrideDeload(c.Request.Context(), c.Param("athleteId"), week)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// AddCompetition integrates a competition taper into the active plan.
func (h *PlanHandler) AddCompetition(c *gin.Context) {
	var competition domain.Competition
	if err := c.ShouldBindJSON(&competition); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	plan, err := h.planService.AddCompetition(c.Request.Context(), c.Param("athleteId"), competition)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}
