package allowance

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/natar10/uva-ong-block/internal/chain"
	"github.com/natar10/uva-ong-block/internal/errs"
)

// tokenSession 模拟治理代币额度与授权
type tokenSession struct {
	allowance *big.Int
	approvals []*big.Int
}

func (s *tokenSession) Account() common.Address {
	return common.HexToAddress("0x1111111111111111111111111111111111111111")
}

func (s *tokenSession) ContractAddress() common.Address {
	return common.HexToAddress("0x2222222222222222222222222222222222222222")
}

func (s *tokenSession) Call(ctx context.Context, target chain.Target, method string, args ...interface{}) ([]interface{}, error) {
	switch method {
	case "allowance":
		return []interface{}{new(big.Int).Set(s.allowance)}, nil
	case "balanceOf":
		return []interface{}{big.NewInt(100)}, nil
	}
	panic("unexpected method " + method)
}

func (s *tokenSession) Send(ctx context.Context, target chain.Target, method string, value *big.Int, args ...interface{}) (chain.Pending, error) {
	if method != "approve" {
		panic("unexpected method " + method)
	}
	amount := args[1].(*big.Int)
	s.approvals = append(s.approvals, amount)
	s.allowance = new(big.Int).Set(amount)
	return &instantPending{}, nil
}

type instantPending struct{}

func (p *instantPending) Hash() common.Hash { return common.Hash{} }

func (p *instantPending) Confirm(ctx context.Context) (*chain.Receipt, error) {
	return &chain.Receipt{}, nil
}

func TestEnsureSkipsWhenCovered(t *testing.T) {
	session := &tokenSession{allowance: big.NewInt(10)}
	negotiator := NewNegotiator(session)

	result, err := negotiator.Ensure(context.Background(), big.NewInt(5))
	require.NoError(t, err)
	assert.False(t, result.Approved)
	assert.Empty(t, session.approvals)
}

func TestEnsureApprovesWhenShort(t *testing.T) {
	session := &tokenSession{allowance: big.NewInt(0)}
	negotiator := NewNegotiator(session)

	result, err := negotiator.Ensure(context.Background(), big.NewInt(3))
	require.NoError(t, err)
	assert.True(t, result.Approved)
	require.Len(t, session.approvals, 1)
	assert.Equal(t, int64(3), session.approvals[0].Int64())
}

func TestEnsureReapprovesOnIncrease(t *testing.T) {
	session := &tokenSession{allowance: big.NewInt(0)}
	negotiator := NewNegotiator(session)

	_, err := negotiator.Ensure(context.Background(), big.NewInt(3))
	require.NoError(t, err)

	// 额度提高后需要补授权
	result, err := negotiator.Ensure(context.Background(), big.NewInt(8))
	require.NoError(t, err)
	assert.True(t, result.Approved)

	// 相同或更低额度不再发授权
	result, err = negotiator.Ensure(context.Background(), big.NewInt(8))
	require.NoError(t, err)
	assert.False(t, result.Approved)

	result, err = negotiator.Ensure(context.Background(), big.NewInt(2))
	require.NoError(t, err)
	assert.False(t, result.Approved)

	assert.Len(t, session.approvals, 2)
}

func TestEnsureRejectsNonPositive(t *testing.T) {
	negotiator := NewNegotiator(&tokenSession{allowance: big.NewInt(0)})

	_, err := negotiator.Ensure(context.Background(), big.NewInt(0))
	require.Error(t, err)
	assert.Equal(t, errs.KindPreconditionFailed, errs.KindOf(err))

	_, err = negotiator.Ensure(context.Background(), nil)
	require.Error(t, err)
}
