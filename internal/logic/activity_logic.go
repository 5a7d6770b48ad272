package logic

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/natar10/uva-ong-block/internal/chain"
	"github.com/natar10/uva-ong-block/internal/logger"
	"github.com/natar10/uva-ong-block/internal/model"
)

// ActivityLogic 链上操作留档业务逻辑
type ActivityLogic struct {
	db *gorm.DB
}

// NewActivityLogic 创建留档业务逻辑
func NewActivityLogic(db *gorm.DB) *ActivityLogic {
	return &ActivityLogic{db: db}
}

// CreateRecord 创建留档记录，同一事件（tx_hash+log_index）只记一次
func (a *ActivityLogic) CreateRecord(record *model.ActivityRecord) error {
	if record.TxHash == "" {
		return errors.New("record tx hash must not be empty")
	}

	var existing model.ActivityRecord
	err := a.db.Where("tx_hash = ? AND log_index = ?", record.TxHash, record.LogIndex).First(&existing).Error
	if err == nil {
		// 流程落库和事件监控可能看到同一条事件
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check existing record: %w", err)
	}

	if err := a.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to create activity record: %w", err)
	}

	return nil
}

// GetRecords 获取留档列表，支持按发起者、项目、操作过滤
func (a *ActivityLogic) GetRecords(actor, projectId, action string, page, pageSize int) ([]model.ActivityRecord, int64, error) {
	var records []model.ActivityRecord
	var total int64

	query := a.db.Model(&model.ActivityRecord{})
	if actor != "" {
		query = query.Where("actor = ?", actor)
	}
	if projectId != "" {
		query = query.Where("project_id = ?", projectId)
	}
	if action != "" {
		query = query.Where("action = ?", action)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count activity records: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Order("block_num DESC, log_index DESC").Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list activity records: %w", err)
	}

	return records, total, nil
}

// MaxRecordedBlock 已留档的最大区块号，监控器接续扫描的起点
func (a *ActivityLogic) MaxRecordedBlock() (int64, error) {
	var maxBlock int64
	err := a.db.Model(&model.ActivityRecord{}).
		Select("COALESCE(MAX(block_num), 0)").
		Scan(&maxBlock).Error
	if err != nil {
		return 0, fmt.Errorf("failed to get max recorded block: %w", err)
	}
	return maxBlock, nil
}

// RecordReceipt 把回执中的每条事件落库。
// 留档失败只记日志，链上状态是事实来源。
func (a *ActivityLogic) RecordReceipt(receipt *chain.Receipt) {
	for _, event := range receipt.Events {
		record, ok := recordFromEvent(event)
		if !ok {
			continue
		}
		if err := a.CreateRecord(record); err != nil {
			logger.Error("Failed to record activity for tx %s log %d: %v",
				event.TxHash.Hex(), event.LogIndex, err)
		}
	}
}

// recordFromEvent 事件到留档记录的映射
func recordFromEvent(event chain.Event) (*model.ActivityRecord, bool) {
	record := &model.ActivityRecord{
		TxHash:    event.TxHash.Hex(),
		BlockNum:  int64(event.BlockNumber),
		LogIndex:  int64(event.LogIndex),
		EventName: event.Name,
	}

	switch event.Name {
	case "DonorRegistered":
		record.Action = model.ActionRegister
		record.Actor = event.AddressArg("account").Hex()
	case "DonationReceived":
		record.Action = model.ActionDonate
		record.Actor = event.AddressArg("donor").Hex()
		record.ProjectId = event.StringArg("projectId")
		record.AmountWei = bigArgString(event, "amount")
	case "ApprovalVoteCast":
		record.Action = model.ActionVoteApproval
		record.Actor = event.AddressArg("voter").Hex()
		record.ProjectId = event.StringArg("projectId")
		record.AmountWei = bigArgString(event, "amount")
	case "CancellationVoteCast":
		record.Action = model.ActionVoteCancellation
		record.Actor = event.AddressArg("voter").Hex()
		record.ProjectId = event.StringArg("projectId")
		record.AmountWei = bigArgString(event, "amount")
	case "ProjectCreated":
		record.Action = model.ActionProjectCreated
		record.Actor = event.AddressArg("responsible").Hex()
		record.ProjectId = event.StringArg("projectId")
	case "ProjectApproved":
		record.Action = model.ActionProjectApproved
		record.ProjectId = event.StringArg("projectId")
	case "ProjectCancelled":
		record.Action = model.ActionProjectCancelled
		record.ProjectId = event.StringArg("projectId")
	case "PurchaseRequested":
		record.Action = model.ActionPurchase
		record.Actor = event.AddressArg("buyer").Hex()
		record.ProjectId = event.StringArg("projectId")
		record.PurchaseId = event.StringArg("purchaseId")
		record.AmountWei = bigArgString(event, "value")
	case "PurchaseValidated":
		record.Action = model.ActionValidate
		record.Actor = event.AddressArg("buyer").Hex()
		record.ProjectId = event.StringArg("projectId")
		record.PurchaseId = event.StringArg("purchaseId")
		record.AmountWei = bigArgString(event, "value")
	default:
		return nil, false
	}

	return record, true
}

func bigArgString(event chain.Event, name string) string {
	if v := event.BigArg(name); v != nil {
		return v.String()
	}
	return ""
}
