package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/natar10/uva-ong-block/internal/reader"
	"github.com/natar10/uva-ong-block/internal/workflow"
)

type DonationHandler struct {
	donations *reader.DonationReader
	flow      *workflow.DonationFlow
}

func NewDonationHandler(donations *reader.DonationReader, flow *workflow.DonationFlow) *DonationHandler {
	return &DonationHandler{
		donations: donations,
		flow:      flow,
	}
}

// DonateRequest 捐赠请求，金额为十进制字符串（整币单位）
type DonateRequest struct {
	ProjectId string `json:"project_id" binding:"required"`
	Amount    string `json:"amount" binding:"required"`
}

// Donate 向项目捐赠
func (h *DonationHandler) Donate(c *gin.Context) {
	var req DonateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	amount, err := reader.ParseUnits(req.Amount)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "invalid amount: "+err.Error())
		return
	}

	outcome, err := h.flow.Donate(c.Request.Context(), req.ProjectId, amount)
	if err != nil {
		FailFrom(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "donation confirmed", outcome)
}

// GetDonations 获取全部捐赠记录
func (h *DonationHandler) GetDonations(c *gin.Context) {
	donations, err := h.donations.List(c.Request.Context())
	if err != nil {
		FailFrom(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", gin.H{"donations": donations})
}
