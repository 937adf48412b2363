package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"vsocial/resolver-service/internal/config"
)

const rateLimitMessage = "Too many requests. Please try again later."

// Decision 限流判定结果
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Limiter 按 key 限流
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// NewLimiter 根据配置创建限流器, redis 客户端为空时退回内存实现
func NewLimiter(cfg *config.RateLimitConfig, client *redis.Client, logger *zap.Logger) Limiter {
	if cfg.Backend == "redis" && client != nil {
		return NewRedisLimiter(client, cfg.Points, cfg.Duration, logger)
	}
	return NewMemoryLimiter(cfg.Points, cfg.Duration)
}

// MemoryLimiter 进程内固定窗口限流器, 计数方式与 RedisLimiter 一致
type MemoryLimiter struct {
	windows sync.Map
	points  int
	window  time.Duration
	now     func() time.Time
}

// fixedWindow 单个 key 的窗口计数
type fixedWindow struct {
	mu    sync.Mutex
	start time.Time
	count int
}

// NewMemoryLimiter 每 window 内最多 points 次请求
func NewMemoryLimiter(points int, window time.Duration) *MemoryLimiter {
	if points <= 0 {
		points = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &MemoryLimiter{
		points: points,
		window: window,
		now:    time.Now,
	}
}

// getWindow 获取 key 对应的窗口
func (l *MemoryLimiter) getWindow(key string) *fixedWindow {
	if w, ok := l.windows.Load(key); ok {
		return w.(*fixedWindow)
	}

	w, _ := l.windows.LoadOrStore(key, &fixedWindow{})
	return w.(*fixedWindow)
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := l.now()
	w := l.getWindow(key)

	w.mu.Lock()
	defer w.mu.Unlock()

	// 窗口到期后重新计数
	if w.start.IsZero() || now.Sub(w.start) >= l.window {
		w.start = now
		w.count = 0
	}
	w.count++

	if w.count > l.points {
		return Decision{Allowed: false, RetryAfter: w.start.Add(l.window).Sub(now)}, nil
	}
	return Decision{Allowed: true}, nil
}

// RedisLimiter 基于 Redis 的固定窗口限流器, 多实例共享计数
type RedisLimiter struct {
	client *redis.Client
	points int64
	window time.Duration
	prefix string
	logger *zap.Logger
	// Redis 故障期间限制告警日志频率
	warn *rate.Sometimes
}

// NewRedisLimiter 创建 Redis 限流器
func NewRedisLimiter(client *redis.Client, points int, window time.Duration, logger *zap.Logger) *RedisLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLimiter{
		client: client,
		points: int64(points),
		window: window,
		prefix: "ratelimit:",
		logger: logger,
		warn:   &rate.Sometimes{First: 1, Interval: 10 * time.Second},
	}
}

// fixedWindowScript 首次计数时设置窗口过期时间, 返回 {计数, 剩余毫秒}
var fixedWindowScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return {n, redis.call('PTTL', KEYS[1])}
`)

// Allow Redis 不可用时放行
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	vals, err := fixedWindowScript.Run(ctx, l.client, []string{l.prefix + key}, l.window.Milliseconds()).Int64Slice()
	if err != nil || len(vals) != 2 {
		l.warn.Do(func() {
			l.logger.Warn("Rate limiter unavailable, allowing request", zap.String("key", key), zap.Error(err))
		})
		return Decision{Allowed: true}, err
	}

	if vals[0] > l.points {
		retry := time.Duration(vals[1]) * time.Millisecond
		if retry <= 0 {
			retry = l.window
		}
		return Decision{Allowed: false, RetryAfter: retry}, nil
	}
	return Decision{Allowed: true}, nil
}

// RateLimit IP 限流中间件
func RateLimit(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision, _ := limiter.Allow(c.Request.Context(), c.ClientIP())
		if decision.Allowed {
			c.Next()
			return
		}

		retryAfter := retryAfterSeconds(decision.RetryAfter)
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"success":    false,
			"error":      rateLimitMessage,
			"retryAfter": retryAfter,
		})
	}
}

// retryAfterSeconds 四舍五入到秒, 至少为1
func retryAfterSeconds(d time.Duration) int {
	secs := int(math.Round(d.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
