package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"alcyxob/training-engine/internal/domain"
	"alcyxob/training-engine/internal/service"
)

// maxImportBytes caps the size of an uploaded state document.
const maxImportBytes = 8 << 20

type StateHandler struct {
	planService service.PlanService
	logger      *zap.Logger
}

func NewStateHandler(planService service.PlanService, logger *zap.Logger) *StateHandler {
	return &StateHandler{planService: planService, logger: logger.Named("state_handler")}
}

type ArchiveResponse struct {
	Snapshot    *domain.Snapshot `json:"snapshot"`
	DownloadURL string           `json:"downloadUrl"`
}

func (h *StateHandler) Export(c *gin.Context) {
	athleteID := c.Param("athleteId")
	doc, err := h.planService.ExportState(c.Request.Context(), athleteID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-state.json"`, athleteID))
	c.Data(http.StatusOK, "application/json", doc)
}

// Import replaces the athlete context with an exported document. A rejected
// document leaves the current state untouched.
func (h *StateHandler) Import(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)
	doc, err := c.GetRawData()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Unable to read request body")
		return
	}
	if err := h.planService.ImportState(c.Request.Context(), c.Param("athleteId"), doc); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *StateHandler) Archive(c *gin.Context) {
	snapshot, url, err := h.planService.ArchiveState(c.Request.Context(), c.Param("athleteId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, ArchiveResponse{Snapshot: snapshot, DownloadURL: url})
}

func (h *StateHandler) ListSnapshots(c *gin.Context) {
	snapshots, err := h.planService.ListSnapshots(c.Request.Context(), c.Param("athleteId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if snapshots == nil {
		snapshots = []domain.Snapshot{}
	}
	c.JSON(http.StatusOK, snapshots)
}
