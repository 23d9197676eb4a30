package httpx

import (
	"math"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/aussiebroadwan/loanapply/pkg/slogx"
)

// RateLimitConfig is a token bucket per key: RequestsPerWindow tokens refill
// evenly over Window, and up to Burst may be spent at once.
type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	Burst             int

	// Message is the envelope msg of a rejected request.
	Message string

	// TrustProxyHeaders keys per-address limits on X-Forwarded-For and
	// X-Real-IP. Enable it only behind a proxy that overwrites them.
	TrustProxyHeaders bool
}

// DefaultRateLimitMessage is used when RateLimitConfig.Message is empty.
const DefaultRateLimitMessage = "Too many requests. Please try again later."

// Profiles used by the router. Each can be overridden at startup with
// RATELIMIT_<NAME>_REQUESTS, RATELIMIT_<NAME>_WINDOW_SEC and
// RATELIMIT_<NAME>_BURST, where NAME is STRICT, MODERATE or LENIENT.
var (
	// StrictLimit guards login against password guessing.
	StrictLimit = RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}

	// ModerateLimit covers apply and confirm, which carry uploads.
	ModerateLimit = RateLimitConfig{RequestsPerWindow: 20, Window: time.Minute, Burst: 20}

	// LenientLimit covers token checks, logout and health probes.
	LenientLimit = RateLimitConfig{RequestsPerWindow: 100, Window: time.Minute, Burst: 100}
)

func init() {
	StrictLimit = RateLimitFromEnv("STRICT", StrictLimit)
	ModerateLimit = RateLimitFromEnv("MODERATE", ModerateLimit)
	LenientLimit = RateLimitFromEnv("LENIENT", LenientLimit)
}

// RateLimitFromEnv returns def with any positive RATELIMIT_<name>_* values
// applied. Unparsable or non-positive values are ignored.
func RateLimitFromEnv(name string, def RateLimitConfig) RateLimitConfig {
	cfg := def
	overrides := []struct {
		suffix string
		apply  func(n int)
	}{
		{"REQUESTS", func(n int) { cfg.RequestsPerWindow = n }},
		{"WINDOW_SEC", func(n int) { cfg.Window = time.Duration(n) * time.Second }},
		{"BURST", func(n int) { cfg.Burst = n }},
	}
	for _, o := range overrides {
		n, err := strconv.Atoi(os.Getenv("RATELIMIT_" + name + "_" + o.suffix))
		if err == nil && n > 0 {
			o.apply(n)
		}
	}
	return cfg
}

// KeyFunc groups requests into buckets. An empty key skips limiting.
type KeyFunc func(*http.Request) string

// ForwardedClientIP is the first X-Forwarded-For hop, else X-Real-IP, else
// ClientIP. Clients can set both headers freely.
func ForwardedClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return ClientIP(r)
}

// ClientIP is the host part of RemoteAddr.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// AuthenticatedUser is the user id stored by AuthnMiddleware, or "".
func AuthenticatedUser(r *http.Request) string {
	id, _ := r.Context().Value(CtxKeyUserID).(string)
	return id
}

// JoinKeys concatenates the non-empty keys of fns with sep.
func JoinKeys(sep string, fns ...KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(fns))
		for _, fn := range fns {
			if k := fn(r); k != "" {
				parts = append(parts, k)
			}
		}
		return strings.Join(parts, sep)
	}
}

// bucketIdleTTL is how long an unused bucket is kept before eviction.
const bucketIdleTTL = 10 * time.Minute

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// buckets holds one limiter per key and evicts idle ones lazily.
type buckets struct {
	mu        sync.Mutex
	byKey     map[string]*bucket
	limit     rate.Limit
	burst     int
	nextSweep time.Time
	now       func() time.Time
}

func newBuckets(cfg RateLimitConfig) *buckets {
	perSecond := float64(cfg.RequestsPerWindow) / cfg.Window.Seconds()
	return &buckets{
		byKey: make(map[string]*bucket),
		limit: rate.Limit(perSecond),
		burst: cfg.Burst,
		now:   time.Now,
	}
}

// take spends one token for key. When the bucket is empty it returns false
// and the wait until the next token.
func (b *buckets) take(key string) (bool, time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if now.After(b.nextSweep) {
		for k, v := range b.byKey {
			if now.Sub(v.lastSeen) > bucketIdleTTL {
				delete(b.byKey, k)
			}
		}
		b.nextSweep = now.Add(bucketIdleTTL)
	}

	bk, ok := b.byKey[key]
	if !ok {
		bk = &bucket{limiter: rate.NewLimiter(b.limit, b.burst)}
		b.byKey[key] = bk
	}
	bk.lastSeen = now

	if bk.limiter.AllowN(now, 1) {
		return true, 0
	}
	res := bk.limiter.ReserveN(now, 1)
	wait := res.DelayFrom(now)
	res.CancelAt(now)
	return false, wait
}

// RateLimit rejects requests whose bucket is empty with an enveloped
// CodeError carrying {"retry_after": seconds} and a Retry-After header.
func RateLimit(cfg RateLimitConfig, key KeyFunc) Middleware {
	b := newBuckets(cfg)
	msg := cfg.Message
	if msg == "" {
		msg = DefaultRateLimitMessage
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				slogx.FromContext(r.Context()).Warn("rate limit: no key for request, not limiting",
					"path", r.URL.Path)
				next.ServeHTTP(w, r)
				return
			}

			ok, wait := b.take(k)
			if ok {
				next.ServeHTTP(w, r)
				return
			}

			retryAfter := max(int(math.Ceil(wait.Seconds())), 1)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerWindow))
			w.Header().Set("X-RateLimit-Window", cfg.Window.String())

			slogx.FromContext(r.Context()).Warn("rate limit exceeded",
				"key", k,
				"path", r.URL.Path,
				"retry_after", retryAfter,
			)
			Fail(w, CodeError, msg, map[string]int{"retry_after": retryAfter})
		})
	}
}

func (cfg RateLimitConfig) addressKey() KeyFunc {
	if cfg.TrustProxyHeaders {
		return ForwardedClientIP
	}
	return ClientIP
}

// RateLimitByIP limits per client address.
func RateLimitByIP(cfg RateLimitConfig) Middleware {
	return RateLimit(cfg, cfg.addressKey())
}

// RateLimitByUser limits per authenticated user and address. It must run
// after AuthnMiddleware; without a user it degrades to per address.
func RateLimitByUser(cfg RateLimitConfig) Middleware {
	return RateLimit(cfg, JoinKeys(":", AuthenticatedUser, cfg.addressKey()))
}
