package workflow

import (
	"context"
	"fmt"
	"sync"

	"github.com/natar10/uva-ong-block/internal/cache"
	"github.com/natar10/uva-ong-block/internal/chain"
	"github.com/natar10/uva-ong-block/internal/errs"
	"github.com/natar10/uva-ong-block/internal/logger"
	"github.com/natar10/uva-ong-block/internal/precheck"
)

// ActivityRecorder 把确认后的回执落库，供审计查询。
// 落库失败不影响流程结果。
type ActivityRecorder interface {
	RecordReceipt(receipt *chain.Receipt)
}

// SessionOpener 打开已认证的账本会话
type SessionOpener interface {
	Open(ctx context.Context) (chain.Session, error)
}

// Deps 各编排流程共享的依赖
type Deps struct {
	Gateway   SessionOpener
	Cache     *cache.Store
	Validator *precheck.Validator
	Recorder  ActivityRecorder // 可为 nil

	guard guard
}

// NewDeps 创建流程依赖
func NewDeps(gateway SessionOpener, store *cache.Store, validator *precheck.Validator, recorder ActivityRecorder) *Deps {
	return &Deps{
		Gateway:   gateway,
		Cache:     store,
		Validator: validator,
		Recorder:  recorder,
	}
}

// guard 同一目标的互斥执行。重复提交直接拒绝而不是排队
type guard struct {
	mu      sync.Mutex
	targets map[string]struct{}
}

// acquire 占用目标，已被占用返回 AlreadyInProgress
func (g *guard) acquire(target string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.targets == nil {
		g.targets = make(map[string]struct{})
	}
	if _, busy := g.targets[target]; busy {
		return errs.AlreadyInProgress(target)
	}

	g.targets[target] = struct{}{}
	return nil
}

// release 释放目标
func (g *guard) release(target string) {
	g.mu.Lock()
	delete(g.targets, target)
	g.mu.Unlock()
}

// settle 等待确认并执行收尾。
// 收尾（缓存回收、落库）在独立goroutine里跑，
// 调用方放弃等待也会执行，缓存不会留下过期的链下视图。
func (d *Deps) settle(ctx context.Context, pending chain.Pending, after func(receipt *chain.Receipt)) (*chain.Receipt, error) {
	type outcome struct {
		receipt *chain.Receipt
		err     error
	}

	done := make(chan outcome, 1)
	go func() {
		// 确认等待不绑定调用方上下文，超时由链客户端自己控制
		receipt, err := pending.Confirm(context.Background())
		if err == nil {
			if after != nil {
				after(receipt)
			}
			if d.Recorder != nil {
				d.Recorder.RecordReceipt(receipt)
			}
		}
		done <- outcome{receipt: receipt, err: err}
	}()

	select {
	case o := <-done:
		if o.err != nil {
			return nil, errs.Classify(o.err)
		}
		return o.receipt, nil
	case <-ctx.Done():
		logger.Warn("Caller stopped waiting for tx %s, confirmation continues in background", pending.Hash().Hex())
		return nil, errs.Classify(fmt.Errorf("confirmation wait abandoned: %w", ctx.Err()))
	}
}
