package model

// DonorClass 捐赠者类型
type DonorClass uint8

const (
	DonorClassIndividual   DonorClass = iota // 个人
	DonorClassOrganization                   // 组织
)

// String 类型名称
func (c DonorClass) String() string {
	switch c {
	case DonorClassIndividual:
		return "individual"
	case DonorClassOrganization:
		return "organization"
	default:
		return "unknown"
	}
}

// Donor 合约上捐赠者的只读投影
type Donor struct {
	Address           string     `json:"address"` // 身份键，不可变
	DisplayName       string     `json:"display_name"`
	Class             DonorClass `json:"class"`
	CumulativeDonated string     `json:"cumulative_donated"`
	GovernanceBalance string     `json:"governance_balance"`
}
