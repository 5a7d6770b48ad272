package handler

import (
	"math/big"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/natar10/uva-ong-block/internal/workflow"
)

type VoteHandler struct {
	flow *workflow.VoteFlow
}

func NewVoteHandler(flow *workflow.VoteFlow) *VoteHandler {
	return &VoteHandler{flow: flow}
}

// VoteRequest 投票请求，amount 为投入的治理代币数量（整数）
type VoteRequest struct {
	Kind   string `json:"kind" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

// CastVote 对项目投票。
// kind 为 approval 或 cancellation，投票消耗治理代币。
func (h *VoteHandler) CastVote(c *gin.Context) {
	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	amount, ok := new(big.Int).SetString(req.Amount, 10)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "invalid vote amount")
		return
	}

	projectId := c.Param("id")

	var (
		outcome *workflow.VoteOutcome
		err     error
	)
	switch workflow.VoteKind(req.Kind) {
	case workflow.VoteApproval:
		outcome, err = h.flow.Approve(c.Request.Context(), projectId, amount)
	case workflow.VoteCancellation:
		outcome, err = h.flow.Cancel(c.Request.Context(), projectId, amount)
	default:
		ErrorResponse(c, http.StatusBadRequest, "kind must be approval or cancellation")
		return
	}
	if err != nil {
		FailFrom(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "vote confirmed", outcome)
}
