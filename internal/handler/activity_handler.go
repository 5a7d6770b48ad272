package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/natar10/uva-ong-block/internal/logic"
)

type ActivityHandler struct {
	activity *logic.ActivityLogic
}

func NewActivityHandler(activity *logic.ActivityLogic) *ActivityHandler {
	return &ActivityHandler{activity: activity}
}

// GetActivities 获取链上操作留档，支持按发起者、项目、操作过滤
func (h *ActivityHandler) GetActivities(c *gin.Context) {
	actor := c.Query("actor")
	projectId := c.Query("project_id")
	action := c.Query("action")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	records, total, err := h.activity.GetRecords(actor, projectId, action, page, pageSize)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", gin.H{
		"records": records,
		"pagination": Pagination{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	})
}
