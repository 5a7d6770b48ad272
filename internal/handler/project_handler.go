package handler

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"github.com/natar10/uva-ong-block/internal/reader"
	"github.com/natar10/uva-ong-block/internal/workflow"
)

type ProjectHandler struct {
	projects  *reader.ProjectReader
	donations *reader.DonationReader
	purchases *reader.PurchaseReader
	flow      *workflow.ProjectFlow
}

func NewProjectHandler(projects *reader.ProjectReader, donations *reader.DonationReader, purchases *reader.PurchaseReader, flow *workflow.ProjectFlow) *ProjectHandler {
	return &ProjectHandler{
		projects:  projects,
		donations: donations,
		purchases: purchases,
		flow:      flow,
	}
}

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	ProjectId   string `json:"project_id" binding:"required"`
	Description string `json:"description" binding:"required"`
	Responsible string `json:"responsible" binding:"required"`
}

// CreateProject 创建提案项目，合约侧限制为owner调用
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if !common.IsHexAddress(req.Responsible) {
		ErrorResponse(c, http.StatusBadRequest, "invalid responsible address")
		return
	}

	outcome, err := h.flow.Create(c.Request.Context(), req.ProjectId, req.Description, common.HexToAddress(req.Responsible))
	if err != nil {
		FailFrom(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "project created", outcome)
}

// GetProjects 获取项目列表及统计
func (h *ProjectHandler) GetProjects(c *gin.Context) {
	list, err := h.projects.List(c.Request.Context())
	if err != nil {
		FailFrom(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", list)
}

// GetProject 获取单个项目
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, err := h.projects.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		FailFrom(c, err)
		return
	}
	if project == nil {
		ErrorResponse(c, http.StatusNotFound, "project not found")
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", project)
}

// GetProjectDonations 获取项目的捐赠记录
func (h *ProjectHandler) GetProjectDonations(c *gin.Context) {
	donations, err := h.donations.ListByProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		FailFrom(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", gin.H{"donations": donations})
}

// GetProjectPurchases 获取项目的采购记录
func (h *ProjectHandler) GetProjectPurchases(c *gin.Context) {
	purchases, err := h.purchases.ListByProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		FailFrom(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", gin.H{"purchases": purchases})
}
