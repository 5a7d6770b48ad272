package precheck

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/natar10/uva-ong-block/internal/errs"
	"github.com/natar10/uva-ong-block/internal/model"
	"github.com/natar10/uva-ong-block/internal/reader"
)

// VoteThreshold 第二票触发状态迁移
const VoteThreshold = 2

// Validator 写操作的本地前置检查。
// 只读不写，检查通过不代表交易必然成功，
// 链上状态可能在检查和提交之间发生变化。
type Validator struct {
	donors    *reader.DonorReader
	projects  *reader.ProjectReader
	purchases *reader.PurchaseReader
	providers *reader.ProviderReader
	materials *reader.MaterialReader
}

// NewValidator 创建前置检查器
func NewValidator(
	donors *reader.DonorReader,
	projects *reader.ProjectReader,
	purchases *reader.PurchaseReader,
	providers *reader.ProviderReader,
	materials *reader.MaterialReader,
) *Validator {
	return &Validator{
		donors:    donors,
		projects:  projects,
		purchases: purchases,
		providers: providers,
		materials: materials,
	}
}

// CheckRegistration 注册前置检查：名称非空且地址未注册过
func (v *Validator) CheckRegistration(ctx context.Context, account common.Address, displayName string, class model.DonorClass) error {
	if strings.TrimSpace(displayName) == "" {
		return errs.PreconditionFailed(errs.PreconditionInvalidInput, "donor name must not be empty")
	}
	if class != model.DonorClassIndividual && class != model.DonorClassOrganization {
		return errs.PreconditionFailed(errs.PreconditionInvalidInput, fmt.Sprintf("unknown donor class %d", class))
	}

	donor, err := v.donors.Get(ctx, account)
	if err != nil {
		return err
	}
	if donor != nil {
		return errs.PreconditionFailed(errs.PreconditionDuplicateId, fmt.Sprintf("donor %s already registered", account.Hex()))
	}

	return nil
}

// CheckDonation 捐赠前置检查：项目存在且处于募集状态，金额为正
func (v *Validator) CheckDonation(ctx context.Context, donor common.Address, projectId string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return errs.PreconditionFailed(errs.PreconditionInvalidInput, "donation amount must be positive")
	}

	registered, err := v.donors.Get(ctx, donor)
	if err != nil {
		return err
	}
	if registered == nil {
		return errs.PreconditionFailed(errs.PreconditionRole, fmt.Sprintf("account %s is not a registered donor", donor.Hex()))
	}

	project, err := v.projects.Get(ctx, projectId)
	if err != nil {
		return err
	}
	if project == nil {
		return errs.PreconditionFailed(errs.PreconditionNotFound, fmt.Sprintf("project %s not found", projectId))
	}
	if project.State != model.ProjectStateActive {
		return errs.PreconditionFailed(errs.PreconditionState, fmt.Sprintf("project %s is not active", projectId))
	}

	return nil
}

// CheckApprovalVote 批准投票前置检查。
// 只有提案状态的项目可以接受批准票，票数消耗治理代币。
func (v *Validator) CheckApprovalVote(ctx context.Context, voter common.Address, projectId string, amount *big.Int) error {
	project, err := v.checkVoteCommon(ctx, voter, projectId, amount)
	if err != nil {
		return err
	}
	if project.State != model.ProjectStateProposed {
		return errs.PreconditionFailed(errs.PreconditionState, fmt.Sprintf("project %s is not awaiting approval", projectId))
	}

	return nil
}

// CheckCancellationVote 取消投票前置检查。
// 提案和活跃状态的项目都可以投取消票，已取消是终态。
func (v *Validator) CheckCancellationVote(ctx context.Context, voter common.Address, projectId string, amount *big.Int) error {
	project, err := v.checkVoteCommon(ctx, voter, projectId, amount)
	if err != nil {
		return err
	}
	if project.State == model.ProjectStateCancelled {
		return errs.PreconditionFailed(errs.PreconditionState, fmt.Sprintf("project %s is already cancelled", projectId))
	}

	return nil
}

// checkVoteCommon 两种投票共用的检查：注册、余额、项目存在
func (v *Validator) checkVoteCommon(ctx context.Context, voter common.Address, projectId string, amount *big.Int) (*model.Project, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, errs.PreconditionFailed(errs.PreconditionInvalidInput, "vote amount must be positive")
	}

	registered, err := v.donors.Get(ctx, voter)
	if err != nil {
		return nil, err
	}
	if registered == nil {
		return nil, errs.PreconditionFailed(errs.PreconditionRole, fmt.Sprintf("account %s is not a registered donor", voter.Hex()))
	}

	balance, err := v.donors.GovernanceBalance(ctx, voter)
	if err != nil {
		return nil, err
	}
	if balance.Cmp(amount) < 0 {
		return nil, errs.PreconditionFailed(errs.PreconditionBalance,
			fmt.Sprintf("governance balance %s is below vote amount %s", balance, amount))
	}

	project, err := v.projects.Get(ctx, projectId)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, errs.PreconditionFailed(errs.PreconditionNotFound, fmt.Sprintf("project %s not found", projectId))
	}

	return project, nil
}

// CheckPurchaseRequest 采购申请前置检查：
// 只有项目负责人可以申请，ID不能重复，物料必须在目录内，
// 按单价计算的总价不能超过项目剩余可用额度。
func (v *Validator) CheckPurchaseRequest(ctx context.Context, buyer common.Address, purchaseId, projectId string, providerAddr common.Address, materialKind string, quantity uint64) error {
	if strings.TrimSpace(purchaseId) == "" {
		return errs.PreconditionFailed(errs.PreconditionInvalidInput, "purchase id must not be empty")
	}
	if quantity == 0 {
		return errs.PreconditionFailed(errs.PreconditionInvalidInput, "purchase quantity must be positive")
	}

	project, err := v.projects.Get(ctx, projectId)
	if err != nil {
		return err
	}
	if project == nil {
		return errs.PreconditionFailed(errs.PreconditionNotFound, fmt.Sprintf("project %s not found", projectId))
	}
	if project.State != model.ProjectStateActive {
		return errs.PreconditionFailed(errs.PreconditionState, fmt.Sprintf("project %s is not active", projectId))
	}
	if !strings.EqualFold(project.Responsible, buyer.Hex()) {
		return errs.PreconditionFailed(errs.PreconditionRole, fmt.Sprintf("account %s is not responsible for project %s", buyer.Hex(), projectId))
	}

	existing, err := v.purchases.Get(ctx, purchaseId)
	if err != nil {
		return err
	}
	if existing != nil {
		return errs.PreconditionFailed(errs.PreconditionDuplicateId, fmt.Sprintf("purchase %s already exists", purchaseId))
	}

	provider, err := v.providers.Get(ctx, providerAddr)
	if err != nil {
		return err
	}
	if provider == nil {
		return errs.PreconditionFailed(errs.PreconditionNotFound, fmt.Sprintf("provider %s not registered", providerAddr.Hex()))
	}

	unitPrice, err := v.materials.UnitPrice(ctx, materialKind)
	if err != nil {
		return err
	}
	if unitPrice == nil {
		return errs.PreconditionFailed(errs.PreconditionNotFound, fmt.Sprintf("material %s is not in the catalog", materialKind))
	}

	value := new(big.Int).Mul(unitPrice, new(big.Int).SetUint64(quantity))
	available, err := remainingBudget(project)
	if err != nil {
		return err
	}
	if value.Cmp(available) > 0 {
		return errs.PreconditionFailed(errs.PreconditionBalance,
			fmt.Sprintf("purchase value %s exceeds remaining project funds %s", reader.FormatUnits(value), reader.FormatUnits(available)))
	}

	return nil
}

// CheckPurchaseValidation 采购验证前置检查：
// 记录存在、尚未验证、调用者为该项目负责人。
func (v *Validator) CheckPurchaseValidation(ctx context.Context, caller common.Address, purchaseId string) error {
	purchase, err := v.purchases.Get(ctx, purchaseId)
	if err != nil {
		return err
	}
	if purchase == nil {
		return errs.PreconditionFailed(errs.PreconditionNotFound, fmt.Sprintf("purchase %s not found", purchaseId))
	}
	// 与回执分类保持同一种类：重复验证视作重复提交
	if purchase.Validated {
		return errs.PreconditionFailed(errs.PreconditionDuplicateId, fmt.Sprintf("purchase %s is already validated", purchaseId))
	}

	project, err := v.projects.Get(ctx, purchase.ProjectId)
	if err != nil {
		return err
	}
	if project == nil {
		return errs.PreconditionFailed(errs.PreconditionNotFound, fmt.Sprintf("project %s not found", purchase.ProjectId))
	}
	if !strings.EqualFold(project.Responsible, caller.Hex()) {
		return errs.PreconditionFailed(errs.PreconditionRole, fmt.Sprintf("account %s is not responsible for project %s", caller.Hex(), purchase.ProjectId))
	}

	return nil
}

// ProjectExists 项目ID是否已被占用
func (v *Validator) ProjectExists(ctx context.Context, projectId string) (bool, error) {
	project, err := v.projects.Get(ctx, projectId)
	if err != nil {
		return false, err
	}
	return project != nil, nil
}

// remainingBudget 已募集减去已验证的余量
func remainingBudget(project *model.Project) (*big.Int, error) {
	raised, err := reader.ParseUnits(project.AmountRaised)
	if err != nil {
		return nil, fmt.Errorf("invalid raised amount for project %s: %w", project.Id, err)
	}
	validated, err := reader.ParseUnits(project.AmountValidated)
	if err != nil {
		return nil, fmt.Errorf("invalid validated amount for project %s: %w", project.Id, err)
	}

	return new(big.Int).Sub(raised, validated), nil
}
