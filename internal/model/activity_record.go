package model

import (
	"time"

	"gorm.io/gorm"
)

// 留档操作类型
const (
	ActionRegister         = "register"
	ActionDonate           = "donate"
	ActionVoteApproval     = "vote_approval"
	ActionVoteCancellation = "vote_cancellation"
	ActionProjectCreated   = "project_created"
	ActionProjectApproved  = "project_approved"
	ActionProjectCancelled = "project_cancelled"
	ActionPurchase         = "purchase"
	ActionValidate         = "validate"
)

// ActivityRecord 已确认链上写入的本地留档
type ActivityRecord struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	// 操作信息
	Action     string `json:"action" gorm:"not null;index"` // register, donate, vote_approval, vote_cancellation, purchase, validate
	Actor      string `json:"actor" gorm:"not null;index"`  // 发起者地址
	ProjectId  string `json:"project_id" gorm:"index"`
	PurchaseId string `json:"purchase_id"`
	AmountWei  string `json:"amount_wei"` // 金额（最小单位）

	// 链上信息
	TxHash    string `json:"tx_hash" gorm:"not null;uniqueIndex:idx_tx_log"`
	BlockNum  int64  `json:"block_num" gorm:"not null"`
	LogIndex  int64  `json:"log_index" gorm:"uniqueIndex:idx_tx_log"`
	EventName string `json:"event_name"`
}

// TableName 指定表名
func (ActivityRecord) TableName() string {
	return "activity_record"
}
