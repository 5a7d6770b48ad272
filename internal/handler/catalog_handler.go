package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/natar10/uva-ong-block/internal/reader"
)

type CatalogHandler struct {
	materials *reader.MaterialReader
	providers *reader.ProviderReader
}

func NewCatalogHandler(materials *reader.MaterialReader, providers *reader.ProviderReader) *CatalogHandler {
	return &CatalogHandler{
		materials: materials,
		providers: providers,
	}
}

// GetMaterials 获取物料目录
func (h *CatalogHandler) GetMaterials(c *gin.Context) {
	materials, err := h.materials.List(c.Request.Context())
	if err != nil {
		FailFrom(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", gin.H{"materials": materials})
}

// GetProvider 查询供应商记录
func (h *CatalogHandler) GetProvider(c *gin.Context) {
	address, ok := parseAddress(c, "address")
	if !ok {
		return
	}

	provider, err := h.providers.Get(c.Request.Context(), address)
	if err != nil {
		FailFrom(c, err)
		return
	}
	if provider == nil {
		ErrorResponse(c, http.StatusNotFound, "provider not registered")
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", provider)
}
