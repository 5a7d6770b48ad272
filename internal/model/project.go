package model

import "math/big"

// ProjectState 项目状态
type ProjectState uint8

const (
	ProjectStateProposed  ProjectState = iota // 已提案，等待批准投票
	ProjectStateActive                        // 已批准，可接受捐赠
	ProjectStateCancelled                     // 已取消，终态
)

// String 状态名称
func (s ProjectState) String() string {
	switch s {
	case ProjectStateProposed:
		return "proposed"
	case ProjectStateActive:
		return "active"
	case ProjectStateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Project 合约上项目的只读投影
type Project struct {
	Id                string       `json:"id"`
	Description       string       `json:"description"`
	Responsible       string       `json:"responsible"` // 负责人地址
	AmountRaised      string       `json:"amount_raised"`
	AmountValidated   string       `json:"amount_validated"`
	State             ProjectState `json:"state"`
	ApprovalVotes     *big.Int     `json:"approval_votes"`
	CancellationVotes *big.Int     `json:"cancellation_votes"`
}

// ProjectStats 项目列表统计
type ProjectStats struct {
	TotalProjects  int    `json:"total_projects"`
	TotalRaised    string `json:"total_raised"`
	TotalValidated string `json:"total_validated"`
}

// ProjectList 项目列表及统计
type ProjectList struct {
	Projects []Project    `json:"projects"`
	Stats    ProjectStats `json:"stats"`
}
