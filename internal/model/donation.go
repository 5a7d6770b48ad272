package model

import "time"

// Donation 捐赠记录，只追加，创建后不再变更
type Donation struct {
	Id        uint64    `json:"id"`
	Donor     string    `json:"donor"` // 捐赠者地址
	ProjectId string    `json:"project_id"`
	Amount    string    `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}
