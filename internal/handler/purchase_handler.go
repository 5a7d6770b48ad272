package handler

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"github.com/natar10/uva-ong-block/internal/reader"
	"github.com/natar10/uva-ong-block/internal/workflow"
)

type PurchaseHandler struct {
	purchases *reader.PurchaseReader
	flow      *workflow.PurchaseFlow
}

func NewPurchaseHandler(purchases *reader.PurchaseReader, flow *workflow.PurchaseFlow) *PurchaseHandler {
	return &PurchaseHandler{
		purchases: purchases,
		flow:      flow,
	}
}

// RequestPurchaseRequest 采购申请请求
type RequestPurchaseRequest struct {
	PurchaseId   string `json:"purchase_id" binding:"required"`
	ProjectId    string `json:"project_id" binding:"required"`
	Provider     string `json:"provider" binding:"required"`
	MaterialKind string `json:"material_kind" binding:"required"`
	Quantity     uint64 `json:"quantity" binding:"required"`
}

// RequestPurchase 项目负责人申请采购
func (h *PurchaseHandler) RequestPurchase(c *gin.Context) {
	var req RequestPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if !common.IsHexAddress(req.Provider) {
		ErrorResponse(c, http.StatusBadRequest, "invalid provider address")
		return
	}

	outcome, err := h.flow.Request(c.Request.Context(),
		req.PurchaseId, req.ProjectId, common.HexToAddress(req.Provider), req.MaterialKind, req.Quantity)
	if err != nil {
		FailFrom(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "purchase requested", outcome)
}

// ValidatePurchase 项目负责人确认货物到位
func (h *PurchaseHandler) ValidatePurchase(c *gin.Context) {
	outcome, err := h.flow.Validate(c.Request.Context(), c.Param("id"))
	if err != nil {
		FailFrom(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "purchase validated", outcome)
}

// GetPurchase 查询采购记录
func (h *PurchaseHandler) GetPurchase(c *gin.Context) {
	purchase, err := h.purchases.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		FailFrom(c, err)
		return
	}
	if purchase == nil {
		ErrorResponse(c, http.StatusNotFound, "purchase not found")
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", purchase)
}
