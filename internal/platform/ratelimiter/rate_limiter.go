// Package ratelimiter limits how often an operation may be attempted per key.
package ratelimiter

import (
	"context"
	"sync"
	"time"
)

// window はキーごとの固定ウィンドウの状態です。
type window struct {
	count     int
	lastReset time.Time
}

// RateLimiter は、キーごとに一定期間内の試行回数を制限するインメモリ実装です。
// Redisが利用できない場合に使用され、プロセス内でのみ有効です。
type RateLimiter struct {
	limit    int           // intervalあたりの上限
	interval time.Duration // どの単位でリセットするか
	now      func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

// NewRateLimiterは新しいRateLimiterのインスタンスを生成します。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:    limit,
		interval: interval,
		now:      time.Now,
		windows:  make(map[string]*window),
	}
}

// Allow はkeyの試行を1回数え、上限以内ならtrueを返します。
func (rl *RateLimiter) Allow(_ context.Context, key string) (bool, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[key]
	// interval を過ぎたらカウントリセット
	if !ok || now.Sub(w.lastReset) >= rl.interval {
		w = &window{lastReset: now}
		rl.windows[key] = w
		rl.evictExpired(now)
	}

	w.count++
	return w.count <= rl.limit, nil
}

// Reset はkeyのカウントを破棄します。ログイン成功時に呼ばれます。
func (rl *RateLimiter) Reset(_ context.Context, key string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	delete(rl.windows, key)
	return nil
}

// evictExpired drops finished windows so the map does not grow without bound.
func (rl *RateLimiter) evictExpired(now time.Time) {
	for k, w := range rl.windows {
		if now.Sub(w.lastReset) >= rl.interval {
			delete(rl.windows, k)
		}
	}
}
