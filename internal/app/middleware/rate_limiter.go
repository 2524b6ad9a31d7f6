package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/makino-seiya/kansatsunikki/internal/error/code"
	"github.com/makino-seiya/kansatsunikki/internal/error/response"
)

// シンプルなトークンバケット式リミッター
type TokenBucket struct {
	rate       float64   // 毎秒補充するトークン数
	capacity   int       // バケットの容量
	tokens     float64   // 現在のトークン数
	lastRefill time.Time // 最終補充時刻
	mu         sync.Mutex
}

// NewTokenBucket 新しいトークンバケットを作成する
func NewTokenBucket(rate float64, capacity int) *TokenBucket {
	return &TokenBucket{
		rate:       rate,
		capacity:   capacity,
		tokens:     float64(capacity),
		lastRefill: time.Now(),
	}
}

// Allow トークンの取得を試みる
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.lastRefill = now

	// トークンを補充する
	tb.tokens += elapsed * tb.rate
	if tb.tokens > float64(tb.capacity) {
		tb.tokens = float64(tb.capacity)
	}

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}

	return false
}

// リミッターのマップ
var (
	ipLimiters     = make(map[string]*TokenBucket)
	ipLimitersMu   sync.RWMutex
	pathLimiters   = make(map[string]*TokenBucket)
	pathLimitersMu sync.RWMutex
)

// RateLimiterConfig リミッターの設定
type RateLimiterConfig struct {
	Rate      float64 // 毎秒許可するリクエスト数
	Burst     int     // 許容するバースト数
	LimitType string  // 制限の種類: "ip", "path", "combined"
}

// DefaultRateLimiterConfig デフォルトのリミッター設定
var DefaultRateLimiterConfig = RateLimiterConfig{
	Rate:      1,
	Burst:     5,
	LimitType: "ip",
}

func getIPLimiter(key string, cfg RateLimiterConfig) *TokenBucket {
	ipLimitersMu.RLock()
	limiter, exists := ipLimiters[key]
	ipLimitersMu.RUnlock()

	if !exists {
		limiter = NewTokenBucket(cfg.Rate, cfg.Burst)
		ipLimitersMu.Lock()
		ipLimiters[key] = limiter
		ipLimitersMu.Unlock()
	}

	return limiter
}

func getPathLimiter(path string, cfg RateLimiterConfig) *TokenBucket {
	pathLimitersMu.RLock()
	limiter, exists := pathLimiters[path]
	pathLimitersMu.RUnlock()

	if !exists {
		limiter = NewTokenBucket(cfg.Rate, cfg.Burst)
		pathLimitersMu.Lock()
		pathLimiters[path] = limiter
		pathLimitersMu.Unlock()
	}

	return limiter
}

// RateLimiter 流量制限ミドルウェアを作成する
func RateLimiter(config ...RateLimiterConfig) gin.HandlerFunc {
	var cfg RateLimiterConfig
	if len(config) > 0 {
		cfg = config[0]
	} else {
		cfg = DefaultRateLimiterConfig
	}

	if cfg.Rate <= 0 {
		cfg.Rate = DefaultRateLimiterConfig.Rate
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultRateLimiterConfig.Burst
	}
	if cfg.LimitType == "" {
		cfg.LimitType = DefaultRateLimiterConfig.LimitType
	}

	return func(c *gin.Context) {
		var limiter *TokenBucket

		switch cfg.LimitType {
		case "path":
			limiter = getPathLimiter(c.Request.URL.Path, cfg)
		case "combined":
			limiter = getIPLimiter(c.ClientIP()+":"+c.Request.URL.Path, cfg)
		default:
			limiter = getIPLimiter(c.ClientIP(), cfg)
		}

		if !limiter.Allow() {
			response.FailWithMessage(c, code.ErrTooManyRequests, "リクエストが多すぎます。しばらくしてからお試しください", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

// IPRateLimiter IP単位で制限する
func IPRateLimiter(rate float64, burst int) gin.HandlerFunc {
	return RateLimiter(RateLimiterConfig{
		Rate:      rate,
		Burst:     burst,
		LimitType: "ip",
	})
}

// PathRateLimiter パス単位で制限する
func PathRateLimiter(rate float64, burst int) gin.HandlerFunc {
	return RateLimiter(RateLimiterConfig{
		Rate:      rate,
		Burst:     burst,
		LimitType: "path",
	})
}

// CombinedRateLimiter IPとパスの組み合わせで制限する
func CombinedRateLimiter(rate float64, burst int) gin.HandlerFunc {
	return RateLimiter(RateLimiterConfig{
		Rate:      rate,
		Burst:     burst,
		LimitType: "combined",
	})
}

// 古いリミッターの定期清掃
func init() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			cleanLimiters()
		}
	}()
}

// cleanLimiters リミッターのマップを空にして作り直す。
// エントリ数は多くならないので全消しで十分
func cleanLimiters() {
	ipLimitersMu.Lock()
	ipLimiters = make(map[string]*TokenBucket)
	ipLimitersMu.Unlock()

	pathLimitersMu.Lock()
	pathLimiters = make(map[string]*TokenBucket)
	pathLimitersMu.Unlock()
}
