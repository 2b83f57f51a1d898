package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"alcyxob/training-engine/internal/domain"
	"alcyxob/training-engine/internal/service"
)

type CatalogHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

func NewCatalogHandler(catalogService service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService, logger: logger.Named("catalog_handler")}
}

func (h *CatalogHandler) ListModels(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalogService.ListModels())
}

func (h *CatalogHandler) GetModel(c *gin.Context) {
	model, err := h.catalogService.GetModel(domain.ModelKey(c.Param("key")))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, model)
}
