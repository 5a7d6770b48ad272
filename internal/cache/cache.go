package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/natar10/uva-ong-block/internal/config"
	"github.com/natar10/uva-ong-block/internal/errs"
	"github.com/natar10/uva-ong-block/internal/logger"
)

// Kind 缓存条目的实体类别
type Kind string

const (
	KindProjectList  Kind = "projects"  // 项目列表
	KindProject      Kind = "project"   // 单个项目
	KindDonor        Kind = "donor"     // 捐赠者
	KindBalance      Kind = "balance"   // 治理代币余额
	KindPurchase     Kind = "purchase"  // 单条采购
	KindPurchaseList Kind = "purchases" // 项目采购列表
	KindMaterial     Kind = "materials" // 物料目录
	KindProvider     Kind = "provider"  // 供应商
	KindDonationList Kind = "donations" // 捐赠列表
)

// Wildcard 通配所有ID
const Wildcard = "*"

// Key 缓存键 {实体类别, 实体ID}
type Key struct {
	Kind Kind
	Id   string
}

// NewKey 创建缓存键
func NewKey(kind Kind, id string) Key {
	return Key{Kind: kind, Id: id}
}

// FetchFunc 未命中时的取数函数
type FetchFunc func(ctx context.Context) (interface{}, error)

// entry 缓存条目
type entry struct {
	value     interface{}
	fetchedAt time.Time
}

// flight 同一键上进行中的取数，后到的读者等待并共享结果
type flight struct {
	done  chan struct{}
	value interface{}
	err   error
}

// Store 按键、按时间窗口的读缓存。
// 写入确认后只做失效，从不直接覆盖值，读取方总是重新取数。
type Store struct {
	mu      sync.Mutex
	entries map[Key]*entry
	flights map[Key]*flight

	windows       map[Kind]time.Duration
	defaultWindow time.Duration

	attempts  int
	baseDelay time.Duration
	maxDelay  time.Duration

	now func() time.Time
}

// New 根据配置创建读缓存
func New(cfg config.CacheConfig) *Store {
	windows := map[Kind]time.Duration{
		KindProjectList:  secondsOr(cfg.ProjectWindow, 300),
		KindProject:      secondsOr(cfg.ProjectWindow, 300),
		KindDonor:        secondsOr(cfg.DonorWindow, 120),
		KindBalance:      secondsOr(cfg.BalanceWindow, 30),
		KindPurchase:     secondsOr(cfg.PurchaseWindow, 120),
		KindPurchaseList: secondsOr(cfg.PurchaseWindow, 120),
		KindMaterial:     secondsOr(cfg.MaterialWindow, 1800),
		KindProvider:     secondsOr(cfg.DonorWindow, 120),
		KindDonationList: secondsOr(cfg.ProjectWindow, 300),
	}

	attempts := cfg.RetryAttempts
	if attempts <= 0 {
		attempts = 3
	}

	return &Store{
		entries:       make(map[Key]*entry),
		flights:       make(map[Key]*flight),
		windows:       windows,
		defaultWindow: 2 * time.Minute,
		attempts:      attempts,
		baseDelay:     time.Second,
		maxDelay:      30 * time.Second,
		now:           time.Now,
	}
}

// secondsOr 秒数配置，零值使用默认
func secondsOr(seconds, fallback int) time.Duration {
	if seconds <= 0 {
		seconds = fallback
	}
	return time.Duration(seconds) * time.Second
}

// Get 命中新鲜窗口内的值直接返回，否则取数并缓存。
// 同一键的并发取数只发起一次，其余读者等待共享结果；
// 取数对瞬时失败做有上限的指数退避重试。
func (s *Store) Get(ctx context.Context, key Key, fetch FetchFunc) (interface{}, error) {
	window := s.windowFor(key.Kind)

	for {
		s.mu.Lock()
		if e, ok := s.entries[key]; ok && s.now().Sub(e.fetchedAt) < window {
			value := e.value
			s.mu.Unlock()
			return value, nil
		}

		if f, ok := s.flights[key]; ok {
			s.mu.Unlock()
			select {
			case <-f.done:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			if f.err == nil {
				return f.value, nil
			}
			// 共享的取数失败时由后来者重新发起
			continue
		}

		f := &flight{done: make(chan struct{})}
		s.flights[key] = f
		s.mu.Unlock()

		value, err := s.fetchWithRetry(ctx, key, fetch)

		s.mu.Lock()
		delete(s.flights, key)
		if err == nil {
			s.entries[key] = &entry{value: value, fetchedAt: s.now()}
		}
		s.mu.Unlock()

		f.value, f.err = value, err
		close(f.done)
		return value, err
	}
}

// Invalidate 按键失效，ID为 "*" 时失效该类别的全部条目
func (s *Store) Invalidate(kind Kind, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == Wildcard {
		for key := range s.entries {
			if key.Kind == kind {
				delete(s.entries, key)
			}
		}
		return
	}

	delete(s.entries, Key{Kind: kind, Id: id})
}

// Len 当前条目数
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// windowFor 类别的新鲜度窗口
func (s *Store) windowFor(kind Kind) time.Duration {
	if window, ok := s.windows[kind]; ok {
		return window
	}
	return s.defaultWindow
}

// fetchWithRetry 带退避的取数
func (s *Store) fetchWithRetry(ctx context.Context, key Key, fetch FetchFunc) (interface{}, error) {
	delay := s.baseDelay

	var lastErr error
	for attempt := 0; attempt < s.attempts; attempt++ {
		if attempt > 0 {
			logger.Debug("Retrying read for %s/%s (attempt %d) after %s", key.Kind, key.Id, attempt+1, delay)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}

			delay *= 2
			if delay > s.maxDelay {
				delay = s.maxDelay
			}
		}

		value, err := fetch(ctx)
		if err == nil {
			return value, nil
		}
		lastErr = err

		// 合约未部署是预期的可恢复状态，重试没有意义
		if errs.KindOf(err) == errs.KindLedgerUnreachable {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("read for %s/%s failed after %d attempts: %w", key.Kind, key.Id, s.attempts, lastErr)
}
