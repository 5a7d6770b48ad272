package model

import "time"

// Purchase 合约上采购记录的只读投影
type Purchase struct {
	Id           string    `json:"id"` // 项目内唯一
	ProjectId    string    `json:"project_id"`
	Buyer        string    `json:"buyer"`    // 必须等于项目负责人
	Provider     string    `json:"provider"` // 供应商地址
	MaterialKind string    `json:"material_kind"`
	Quantity     uint64    `json:"quantity"`
	Value        string    `json:"value"` // quantity × 单价
	Validated    bool      `json:"validated"`
	Timestamp    time.Time `json:"timestamp"`
}

// Provider 合约上供应商的只读投影
type Provider struct {
	Address            string `json:"address"` // 身份键
	Id                 string `json:"id"`
	Description        string `json:"description"`
	CumulativeEarnings string `json:"cumulative_earnings"` // 仅通过采购验证增加
}

// Material 物料目录条目，不可变
type Material struct {
	Name      string `json:"name"` // 键
	UnitPrice string `json:"unit_price"`
}
