package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// FraudWindow 归因防刷窗口计数器
// Incr 返回窗口内（含本次）的累计次数
type FraudWindow interface {
	Incr(ctx context.Context, ip string, windowSeconds int) (int64, error)
}

var fraudWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RedisFraudWindow 基于 Redis 固定窗口的计数器实现
type RedisFraudWindow struct {
	client *redis.Client
	prefix string
}

// NewRedisFraudWindow 创建 Redis 防刷计数器
func NewRedisFraudWindow(client *redis.Client, prefix string) *RedisFraudWindow {
	if strings.TrimSpace(prefix) == "" {
		prefix = "fraud:attr"
	}
	return &RedisFraudWindow{client: client, prefix: prefix}
}

// Incr 递增指定IP在当前窗口内的计数
func (w *RedisFraudWindow) Incr(ctx context.Context, ip string, windowSeconds int) (int64, error) {
	if w == nil || w.client == nil {
		return 0, fmt.Errorf("fraud window redis client not configured")
	}
	if windowSeconds <= 0 {
		return 0, fmt.Errorf("invalid fraud window seconds: %d", windowSeconds)
	}
	key := fmt.Sprintf("%s:%s", w.prefix, strings.TrimSpace(ip))
	result, err := fraudWindowScript.Run(ctx, w.client, []string{key}, windowSeconds).Int64()
	if err != nil {
		return 0, fmt.Errorf("fraud window incr: %w", err)
	}
	return result, nil
}

// MemoryFraudWindow 进程内固定窗口计数器，用于未启用 Redis 的部署与测试
type MemoryFraudWindow struct {
	mu      sync.Mutex
	entries map[string]*memoryWindowEntry
	now     func() time.Time
}

type memoryWindowEntry struct {
	count     int64
	expiresAt time.Time
}

// NewMemoryFraudWindow 创建进程内防刷计数器
func NewMemoryFraudWindow() *MemoryFraudWindow {
	return &MemoryFraudWindow{
		entries: make(map[string]*memoryWindowEntry),
		now:     time.Now,
	}
}

// Incr 递增指定IP在当前窗口内的计数
func (w *MemoryFraudWindow) Incr(_ context.Context, ip string, windowSeconds int) (int64, error) {
	if windowSeconds <= 0 {
		return 0, fmt.Errorf("invalid fraud window seconds: %d", windowSeconds)
	}
	key := strings.TrimSpace(ip)
	now := w.now()

	w.mu.Lock()
	defer w.mu.Unlock()

	entry, ok := w.entries[key]
	if !ok || now.After(entry.expiresAt) {
		entry = &memoryWindowEntry{
			expiresAt: now.Add(time.Duration(windowSeconds) * time.Second),
		}
		w.entries[key] = entry
	}
	entry.count++
	return entry.count, nil
}
