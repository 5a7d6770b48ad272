package precheck

import (
	"context"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/natar10/uva-ong-block/internal/cache"
	"github.com/natar10/uva-ong-block/internal/chain"
	"github.com/natar10/uva-ong-block/internal/config"
	"github.com/natar10/uva-ong-block/internal/errs"
	"github.com/natar10/uva-ong-block/internal/model"
	"github.com/natar10/uva-ong-block/internal/reader"
)

var (
	donorAddr       = common.HexToAddress("0x1111111111111111111111111111111111111111")
	responsibleAddr = common.HexToAddress("0x3333333333333333333333333333333333333333")
	providerAddr    = common.HexToAddress("0x4444444444444444444444444444444444444444")
)

// ledgerState 测试场景的链上状态
type ledgerState struct {
	donorRegistered bool
	balance         *big.Int
	projectState    uint8
	projectExists   bool
	raised          *big.Int
	validated       *big.Int
	purchaseExists  bool
	purchaseDone    bool
	providerKnown   bool
}

type stateSession struct {
	state *ledgerState
}

func (s *stateSession) Account() common.Address         { return donorAddr }
func (s *stateSession) ContractAddress() common.Address { return common.Address{} }

func (s *stateSession) Send(ctx context.Context, target chain.Target, method string, value *big.Int, args ...interface{}) (chain.Pending, error) {
	panic("prechecks must not send transactions")
}

func (s *stateSession) Call(ctx context.Context, target chain.Target, method string, args ...interface{}) ([]interface{}, error) {
	st := s.state
	switch method {
	case "getDonor":
		if !st.donorRegistered {
			return []interface{}{common.Address{}, "", uint8(0), big.NewInt(0), big.NewInt(0)}, nil
		}
		return []interface{}{donorAddr, "Ada", uint8(0), big.NewInt(0), big.NewInt(0)}, nil
	case "governanceBalance":
		return []interface{}{st.balance}, nil
	case "getProject":
		if !st.projectExists {
			return []interface{}{"", "", common.Address{}, big.NewInt(0), big.NewInt(0), uint8(0), big.NewInt(0), big.NewInt(0)}, nil
		}
		return []interface{}{args[0].(string), "desc", responsibleAddr, st.raised, st.validated, st.projectState, big.NewInt(0), big.NewInt(0)}, nil
	case "getPurchase":
		if !st.purchaseExists {
			return []interface{}{"", "", common.Address{}, common.Address{}, "", uint64(0), big.NewInt(0), false, big.NewInt(0)}, nil
		}
		return []interface{}{args[0].(string), "well", responsibleAddr, providerAddr, "cement", uint64(5), big.NewInt(0), st.purchaseDone, big.NewInt(100)}, nil
	case "getProvider":
		if !st.providerKnown {
			return []interface{}{common.Address{}, "", "", big.NewInt(0)}, nil
		}
		return []interface{}{providerAddr, "prov-1", "building supplies", big.NewInt(0)}, nil
	case "materialCount":
		return []interface{}{big.NewInt(1)}, nil
	case "materialAt":
		// 水泥单价 1 币
		return []interface{}{"cement", new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)}, nil
	}
	return nil, fmt.Errorf("unexpected method %s", method)
}

func newValidator(st *ledgerState) *Validator {
	if st.balance == nil {
		st.balance = big.NewInt(0)
	}
	if st.raised == nil {
		st.raised = big.NewInt(0)
	}
	if st.validated == nil {
		st.validated = big.NewInt(0)
	}

	session := &stateSession{state: st}
	store := cache.New(config.CacheConfig{RetryAttempts: 1})

	return NewValidator(
		reader.NewDonorReader(session, store),
		reader.NewProjectReader(session, store),
		reader.NewPurchaseReader(session, store),
		reader.NewProviderReader(session, store),
		reader.NewMaterialReader(session, store),
	)
}

func assertPrecondition(t *testing.T, err error, want errs.PreconditionKind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, errs.KindPreconditionFailed, errs.KindOf(err))
	assert.Equal(t, want, errs.PreconditionOf(err))
}

func TestCheckRegistration(t *testing.T) {
	v := newValidator(&ledgerState{})
	assert.NoError(t, v.CheckRegistration(context.Background(), donorAddr, "Ada", model.DonorClassIndividual))

	v = newValidator(&ledgerState{})
	assertPrecondition(t, v.CheckRegistration(context.Background(), donorAddr, "  ", model.DonorClassIndividual), errs.PreconditionInvalidInput)

	v = newValidator(&ledgerState{donorRegistered: true})
	assertPrecondition(t, v.CheckRegistration(context.Background(), donorAddr, "Ada", model.DonorClassIndividual), errs.PreconditionDuplicateId)
}

func TestCheckDonation(t *testing.T) {
	active := &ledgerState{donorRegistered: true, projectExists: true, projectState: 1}

	v := newValidator(active)
	assert.NoError(t, v.CheckDonation(context.Background(), donorAddr, "well", big.NewInt(100)))

	v = newValidator(active)
	assertPrecondition(t, v.CheckDonation(context.Background(), donorAddr, "well", big.NewInt(0)), errs.PreconditionInvalidInput)

	v = newValidator(&ledgerState{projectExists: true, projectState: 1})
	assertPrecondition(t, v.CheckDonation(context.Background(), donorAddr, "well", big.NewInt(100)), errs.PreconditionRole)

	v = newValidator(&ledgerState{donorRegistered: true})
	assertPrecondition(t, v.CheckDonation(context.Background(), donorAddr, "well", big.NewInt(100)), errs.PreconditionNotFound)

	// 提案状态的项目不能接受捐赠
	v = newValidator(&ledgerState{donorRegistered: true, projectExists: true, projectState: 0})
	assertPrecondition(t, v.CheckDonation(context.Background(), donorAddr, "well", big.NewInt(100)), errs.PreconditionState)
}

func TestCheckApprovalVote(t *testing.T) {
	proposed := func() *ledgerState {
		return &ledgerState{donorRegistered: true, projectExists: true, projectState: 0, balance: big.NewInt(5)}
	}

	v := newValidator(proposed())
	assert.NoError(t, v.CheckApprovalVote(context.Background(), donorAddr, "well", big.NewInt(3)))

	st := proposed()
	st.balance = big.NewInt(2)
	v = newValidator(st)
	assertPrecondition(t, v.CheckApprovalVote(context.Background(), donorAddr, "well", big.NewInt(3)), errs.PreconditionBalance)

	st = proposed()
	st.projectState = 1
	v = newValidator(st)
	assertPrecondition(t, v.CheckApprovalVote(context.Background(), donorAddr, "well", big.NewInt(3)), errs.PreconditionState)

	st = proposed()
	st.donorRegistered = false
	v = newValidator(st)
	assertPrecondition(t, v.CheckApprovalVote(context.Background(), donorAddr, "well", big.NewInt(3)), errs.PreconditionRole)
}

func TestCheckCancellationVoteAllowsNonTerminalStates(t *testing.T) {
	// 提案和活跃项目都接受取消票
	active := &ledgerState{donorRegistered: true, projectExists: true, projectState: 1, balance: big.NewInt(5)}
	v := newValidator(active)
	assert.NoError(t, v.CheckCancellationVote(context.Background(), donorAddr, "well", big.NewInt(2)))

	proposed := &ledgerState{donorRegistered: true, projectExists: true, projectState: 0, balance: big.NewInt(10)}
	v = newValidator(proposed)
	assert.NoError(t, v.CheckCancellationVote(context.Background(), donorAddr, "well", big.NewInt(3)))

	cancelled := &ledgerState{donorRegistered: true, projectExists: true, projectState: 2, balance: big.NewInt(5)}
	v = newValidator(cancelled)
	assertPrecondition(t, v.CheckCancellationVote(context.Background(), donorAddr, "well", big.NewInt(2)), errs.PreconditionState)
}

func TestCheckPurchaseRequest(t *testing.T) {
	base := func() *ledgerState {
		return &ledgerState{
			projectExists: true,
			projectState:  1,
			raised:        reader.TokensToWei(10),
			validated:     reader.TokensToWei(2),
			providerKnown: true,
		}
	}

	// 调用者即项目负责人
	v := newValidator(base())
	err := v.CheckPurchaseRequest(context.Background(), responsibleAddr, "p-1", "well", providerAddr, "cement", 5)
	assert.NoError(t, err)

	v = newValidator(base())
	assertPrecondition(t, v.CheckPurchaseRequest(context.Background(), donorAddr, "p-1", "well", providerAddr, "cement", 5), errs.PreconditionRole)

	v = newValidator(base())
	assertPrecondition(t, v.CheckPurchaseRequest(context.Background(), responsibleAddr, "p-1", "well", providerAddr, "bricks", 5), errs.PreconditionNotFound)

	st := base()
	st.purchaseExists = true
	v = newValidator(st)
	assertPrecondition(t, v.CheckPurchaseRequest(context.Background(), responsibleAddr, "p-1", "well", providerAddr, "cement", 5), errs.PreconditionDuplicateId)

	st = base()
	st.providerKnown = false
	v = newValidator(st)
	assertPrecondition(t, v.CheckPurchaseRequest(context.Background(), responsibleAddr, "p-1", "well", providerAddr, "cement", 5), errs.PreconditionNotFound)

	// 单价1币，数量9超过剩余额度 10-2=8
	v = newValidator(base())
	assertPrecondition(t, v.CheckPurchaseRequest(context.Background(), responsibleAddr, "p-1", "well", providerAddr, "cement", 9), errs.PreconditionBalance)

	v = newValidator(base())
	assertPrecondition(t, v.CheckPurchaseRequest(context.Background(), responsibleAddr, "", "well", providerAddr, "cement", 5), errs.PreconditionInvalidInput)

	v = newValidator(base())
	assertPrecondition(t, v.CheckPurchaseRequest(context.Background(), responsibleAddr, "p-1", "well", providerAddr, "cement", 0), errs.PreconditionInvalidInput)
}

func TestCheckPurchaseValidation(t *testing.T) {
	base := func() *ledgerState {
		return &ledgerState{
			projectExists:  true,
			projectState:   1,
			raised:         reader.TokensToWei(10),
			purchaseExists: true,
		}
	}

	v := newValidator(base())
	assert.NoError(t, v.CheckPurchaseValidation(context.Background(), responsibleAddr, "p-1"))

	v = newValidator(&ledgerState{projectExists: true, projectState: 1})
	assertPrecondition(t, v.CheckPurchaseValidation(context.Background(), responsibleAddr, "p-1"), errs.PreconditionNotFound)

	// 已验证再验证与链上守卫的分类一致，按重复提交处理
	st := base()
	st.purchaseDone = true
	v = newValidator(st)
	assertPrecondition(t, v.CheckPurchaseValidation(context.Background(), responsibleAddr, "p-1"), errs.PreconditionDuplicateId)

	v = newValidator(base())
	assertPrecondition(t, v.CheckPurchaseValidation(context.Background(), donorAddr, "p-1"), errs.PreconditionRole)
}
