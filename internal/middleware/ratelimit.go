package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/jobboard/internal/model"
)

// RateLimiterConfig はレート制限の設定を保持する。
type RateLimiterConfig struct {
	GeneralRate     rate.Limit // 認証済みAPIのユーザー単位レート（req/sec）
	GeneralBurst    int
	AuthRate        rate.Limit // ログイン・登録のIP単位レート（req/sec）
	AuthBurst       int
	CleanupInterval time.Duration
}

// DefaultRateLimiterConfig は認証済みAPI 120 req/min/user、ログイン・登録 10 req/min/IP の設定を返す。
func DefaultRateLimiterConfig() RateLimiterConfig {
	return PerMinuteRateLimiterConfig(120, 10)
}

// PerMinuteRateLimiterConfig は1分あたりの上限から設定を生成する。バーストは1分ぶんと同じ。
func PerMinuteRateLimiterConfig(generalPerMin, authPerMin int) RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(float64(generalPerMin) / 60.0),
		GeneralBurst:    generalPerMin,
		AuthRate:        rate.Limit(float64(authPerMin) / 60.0),
		AuthBurst:       authPerMin,
		CleanupInterval: 5 * time.Minute,
	}
}

// limiterPool はキーごとのトークンバケットを保持する。
type limiterPool struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLimiterPool(limit rate.Limit, burst int) *limiterPool {
	return &limiterPool{limit: limit, burst: burst, buckets: make(map[string]*bucket)}
}

// take はkeyのバケットから1トークン取り出す。取り出せなければ次に取り出せるまでの待ち時間を返す。
func (p *limiterPool) take(key string, now time.Time) (bool, time.Duration) {
	p.mu.Lock()
	b, ok := p.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(p.limit, p.burst)}
		p.buckets[key] = b
	}
	b.lastSeen = now
	p.mu.Unlock()

	if b.limiter.AllowN(now, 1) {
		return true, 0
	}
	r := b.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Minute
	}
	wait := r.DelayFrom(now)
	r.CancelAt(now)
	return false, wait
}

// prune は最後の利用からttlを超えたバケットを削除する。
func (p *limiterPool) prune(now time.Time, ttl time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for key, b := range p.buckets {
		if now.Sub(b.lastSeen) > ttl {
			delete(p.buckets, key)
		}
	}
}

func (p *limiterPool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buckets)
}

// RateLimiter は認証済みAPIのユーザー単位制限と、ログイン・登録のIP単位制限を提供する。
type RateLimiter struct {
	config  RateLimiterConfig
	general *limiterPool
	auth    *limiterPool

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewRateLimiter はRateLimiterを生成し、古いバケットを掃除するゴルーチンを開始する。
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		config:  config,
		general: newLimiterPool(config.GeneralRate, config.GeneralBurst),
		auth:    newLimiterPool(config.AuthRate, config.AuthBurst),
		stopCh:  make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Stop は掃除用ゴルーチンを停止する。複数回呼んでもよい。
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// GeneralMiddleware は認証済みAPIのレート制限ミドルウェアを返す。
// SessionMiddlewareの内側に置くこと。
func (rl *RateLimiter) GeneralMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := UserIDFromContext(r.Context())
			if err != nil {
				WriteAPIError(w, model.NewUnauthenticatedError())
				return
			}
			if ok, wait := rl.general.take(userID, time.Now()); !ok {
				slog.Warn("rate limit exceeded",
					slog.String("user_id", userID),
					slog.String("limit_type", "general"),
				)
				writeRateLimitResponse(w, wait)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AuthMiddleware はログイン・登録用のIP単位レート制限ミドルウェアを返す。
func (rl *RateLimiter) AuthMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if ok, wait := rl.auth.take(ip, time.Now()); !ok {
				slog.Warn("rate limit exceeded",
					slog.String("client_ip", ip),
					slog.String("limit_type", "auth"),
				)
				writeRateLimitResponse(w, wait)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GeneralLimiterCount は保持しているユーザー単位バケットの数を返す。
func (rl *RateLimiter) GeneralLimiterCount() int { return rl.general.size() }

// AuthLimiterCount は保持しているIP単位バケットの数を返す。
func (rl *RateLimiter) AuthLimiterCount() int { return rl.auth.size() }

// clientIP はリクエスト元のIPアドレスを返す。
// プロキシ配下ではchiのRealIPミドルウェアがRemoteAddrを書き換えている前提。
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			rl.cleanup(now)
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup は最後の利用からCleanupIntervalの2倍を超えたバケットを削除する。
func (rl *RateLimiter) cleanup(now time.Time) {
	ttl := rl.config.CleanupInterval * 2
	rl.general.prune(now, ttl)
	rl.auth.prune(now, ttl)
}

// writeRateLimitResponse は 429 RATE_LIMIT_EXCEEDED を書き込む。
// Retry-After は次のトークンが使えるまでの秒数（切り上げ、最低1秒）。
func writeRateLimitResponse(w http.ResponseWriter, wait time.Duration) {
	sec := int(math.Ceil(wait.Seconds()))
	if sec < 1 {
		sec = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(sec))
	WriteAPIError(w, model.NewRateLimitExceededError())
}
