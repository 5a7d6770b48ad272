package handler

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"github.com/natar10/uva-ong-block/internal/model"
	"github.com/natar10/uva-ong-block/internal/reader"
	"github.com/natar10/uva-ong-block/internal/workflow"
)

type DonorHandler struct {
	donors       *reader.DonorReader
	registration *workflow.RegistrationFlow
}

func NewDonorHandler(donors *reader.DonorReader, registration *workflow.RegistrationFlow) *DonorHandler {
	return &DonorHandler{
		donors:       donors,
		registration: registration,
	}
}

// RegisterDonorRequest 注册请求
type RegisterDonorRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
	Class       string `json:"class" binding:"required"`
}

// RegisterDonor 注册当前钱包账户为捐赠者
func (h *DonorHandler) RegisterDonor(c *gin.Context) {
	var req RegisterDonorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	class, ok := parseDonorClass(req.Class)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "class must be individual or organization")
		return
	}

	outcome, err := h.registration.Register(c.Request.Context(), req.DisplayName, class)
	if err != nil {
		FailFrom(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "donor registered", outcome)
}

// GetDonor 查询捐赠者记录
func (h *DonorHandler) GetDonor(c *gin.Context) {
	address, ok := parseAddress(c, "address")
	if !ok {
		return
	}

	donor, err := h.donors.Get(c.Request.Context(), address)
	if err != nil {
		FailFrom(c, err)
		return
	}
	if donor == nil {
		ErrorResponse(c, http.StatusNotFound, "donor not registered")
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", donor)
}

// GetGovernanceBalance 查询治理代币余额
func (h *DonorHandler) GetGovernanceBalance(c *gin.Context) {
	address, ok := parseAddress(c, "address")
	if !ok {
		return
	}

	balance, err := h.donors.GovernanceBalance(c.Request.Context(), address)
	if err != nil {
		FailFrom(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", gin.H{
		"address": address.Hex(),
		"balance": balance.String(),
	})
}

// parseAddress 解析路径中的地址参数
func parseAddress(c *gin.Context, param string) (common.Address, bool) {
	raw := c.Param(param)
	if !common.IsHexAddress(raw) {
		ErrorResponse(c, http.StatusBadRequest, "invalid address")
		return common.Address{}, false
	}
	return common.HexToAddress(raw), true
}

// parseDonorClass 解析捐赠者类型
func parseDonorClass(raw string) (model.DonorClass, bool) {
	switch raw {
	case "individual":
		return model.DonorClassIndividual, true
	case "organization":
		return model.DonorClassOrganization, true
	default:
		return 0, false
	}
}
