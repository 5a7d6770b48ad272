package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/natar10/uva-ong-block/internal/chain"
	"github.com/natar10/uva-ong-block/internal/errs"
)

func TestGuardRejectsBusyTarget(t *testing.T) {
	var g guard

	require.NoError(t, g.acquire("vote:well"))
	err := g.acquire("vote:well")
	require.Error(t, err)
	assert.Equal(t, errs.KindAlreadyInProgress, errs.KindOf(err))

	// 其他目标不受影响
	require.NoError(t, g.acquire("vote:school"))

	g.release("vote:well")
	require.NoError(t, g.acquire("vote:well"))
}

type recorderSpy struct {
	recorded chan *chain.Receipt
}

func (r *recorderSpy) RecordReceipt(receipt *chain.Receipt) {
	r.recorded <- receipt
}

func TestSettleFinishesAfterCallerAbandons(t *testing.T) {
	block := make(chan struct{})
	pending := &scriptedPending{block: block}

	recorder := &recorderSpy{recorded: make(chan *chain.Receipt, 1)}
	deps := &Deps{Recorder: recorder}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	settled := make(chan struct{})
	_, err := deps.settle(ctx, pending, func(receipt *chain.Receipt) {
		close(settled)
	})
	require.Error(t, err)

	// 调用方已放弃，后台确认仍然执行收尾
	close(block)
	select {
	case <-settled:
	case <-time.After(time.Second):
		t.Fatal("settle callback did not run after caller abandoned")
	}

	select {
	case receipt := <-recorder.recorded:
		assert.Equal(t, common.HexToHash("0xdead"), receipt.TxHash)
	case <-time.After(time.Second):
		t.Fatal("receipt was not recorded after caller abandoned")
	}
}

func TestSettleReturnsReceipt(t *testing.T) {
	pending := &scriptedPending{events: []chain.Event{{Name: "DonationReceived"}}}
	deps := &Deps{}

	ran := false
	receipt, err := deps.settle(context.Background(), pending, func(receipt *chain.Receipt) {
		ran = true
	})
	require.NoError(t, err)
	assert.True(t, ran)

	_, found := receipt.FindEvent("DonationReceived")
	assert.True(t, found)
}
