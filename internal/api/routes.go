package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"alcyxob/training-engine/internal/domain"
	"alcyxob/training-engine/internal/service"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	planService service.PlanService,
	catalogService service.CatalogService,
	logger *zap.Logger,
) {
	if logger == nil {
		logger = zap.NewNop()
	}
	planHandler := NewPlanHandler(planService, logger)
	sessionHandler := NewSessionHandler(planService, logger)
	stateHandler := NewStateHandler(planService, logger)
	catalogHandler := NewCatalogHandler(catalogService, logger)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	protected := router.Group("/api/v1")
	protected.Use(AuthMiddleware(jwtSecret))
	{
		protected.GET("/me", func(c *gin.Context) {
			userID, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userID, "role": role})
		})

		protected.GET("/models", catalogHandler.ListModels)
		protected.GET("/models/:key", catalogHandler.GetModel)

		// --- Athlete context routes ---
		// Athletes may only reach their own context; coaches reach any.
		athlete := protected.Group("/athletes/:athleteId")
		athlete.Use(AthleteAccessMiddleware())
		{
			athlete.POST("/plan", planHandler.BuildPlan)
			athlete.GET("/plan", planHandler.GetPlan)
			athlete.GET("/plan/weeks/:week", planHandler.GetWeek)
			athlete.POST("/plan/weeks/:week/adapt", planHandler.AdaptWorkout)
			athlete.POST("/plan/competitions", planHandler.AddCompetition)

			athlete.POST("/sessions", sessionHandler.RecordSession)
			athlete.GET("/sessions", sessionHandler.ListSessions)
			athlete.POST("/monitor", sessionHandler.Monitor)
			athlete.GET("/journal", sessionHandler.GetJournal)

			athlete.GET("/export", stateHandler.Export)
			athlete.POST("/archive", stateHandler.Archive)
			athlete.GET("/snapshots", stateHandler.ListSnapshots)
		}

		// --- Coach-only overrides ---
		coach := athlete.Group("")
		coach.Use(RoleMiddleware(domain.RoleCoach))
		{
			coach.POST("/plan/weeks/:week/deload", planHandler.OverrideDeload)
			coach.POST("/import", stateHandler.Import)
		}
	}
}
