package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/loanapply/internal/loan/metrics"
	"github.com/aussiebroadwan/loanapply/internal/loan/service"
	"github.com/aussiebroadwan/loanapply/internal/loan/store"
	"github.com/aussiebroadwan/loanapply/pkg/httpx"
	"github.com/aussiebroadwan/loanapply/pkg/slogx"

	_ "github.com/aussiebroadwan/loanapply/api/loan" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

//go:generate swag init --generalInfo router.go --dir ./,../../../pkg/loansdk --output ../../../api/loan --outputTypes go --packageName loan

// DefaultMaxBodyBytes caps multipart and form bodies.
const DefaultMaxBodyBytes int64 = 16 << 20

// RouterConfig holds the transport settings of the router.
type RouterConfig struct {
	BuildVersion string
	Messages     *service.Catalog
	CORS         httpx.CORSConfig
	MaxBodyBytes int64

	// TrustProxyHeaders keys per-address rate limits on X-Forwarded-For.
	TrustProxyHeaders bool
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	messages     *service.Catalog
	maxBodyBytes int64
	trustProxy   bool

	store       store.Store
	AuthService *service.AuthService
	LoanService *service.LoanService
	Stager      *service.FileStager
	Metrics     *metrics.Metrics // Optional: nil disables /metrics
}

func NewRouter(cfg RouterConfig, st store.Store, logger *slog.Logger) *Router {
	if cfg.Messages == nil {
		cfg.Messages = service.Messages("")
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: cfg.BuildVersion,
		startTime:    time.Now(),
		logger:       logger,
		messages:     cfg.Messages,
		maxBodyBytes: cfg.MaxBodyBytes,
		trustProxy:   cfg.TrustProxyHeaders,
		store:        st,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORS(cfg.CORS),
		httpx.Recover(r.messages.Server),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerLoan()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())

	// Everything unmatched, including a wrong method on a known path.
	r.Mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		httpx.Fail(w, httpx.CodeNotFound, r.messages.NotFound, nil)
	}))
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Loan Application Service API
//	@version		0.1.0
//	@description	Enterprise loan application backend: bearer token login and a two step submission (apply, then confirm).
//	@description
//	@description				Every response is HTTP 200 with an envelope {code, msg, data, timestamp}. code 0 is success; 10001-10006 are failures.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/loanapply
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:5000
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// handle registers h under pattern with request metrics labelled by route.
func (r *Router) handle(pattern, route string, h http.Handler) {
	r.Mux.Handle(pattern, r.Metrics.Instrument(route, h))
}

// secured requires a valid bearer token and limits requests per user.
func (r *Router) secured(h http.Handler, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.AuthService, httpx.AuthnOptions{
			Messages: httpx.AuthnMessages{
				Missing:   r.messages.TokenMissing,
				Malformed: r.messages.TokenMalformed,
				Invalid:   r.messages.TokenInvalid,
				Expired:   r.messages.TokenExpired,
			},
			OnReject: func(req *http.Request, reason string) {
				slogx.FromContext(req.Context()).Info("bearer token rejected",
					slog.String("reason", reason),
					slog.String("path", req.URL.Path),
				)
			},
		}),
		httpx.RateLimitByUser(r.limit(limit)),
	)
}

// limit applies router settings to a rate limit profile.
func (r *Router) limit(cfg httpx.RateLimitConfig) httpx.RateLimitConfig {
	cfg.Message = r.messages.RateLimit
	cfg.TrustProxyHeaders = r.trustProxy
	return cfg
}

func (r *Router) registerAuth() {
	// POST /login - strict rate limit by IP (password guessing)
	login := &LoginHandler{AuthService: r.AuthService, Messages: r.messages}
	r.handle("POST /api/auth/login", "/api/auth/login",
		httpx.Chain(login,
			httpx.RateLimitByIP(r.limit(httpx.StrictLimit)),
		),
	)

	logout := &LogoutHandler{AuthService: r.AuthService, Messages: r.messages}
	r.handle("POST /api/auth/logout", "/api/auth/logout",
		r.secured(logout, httpx.LenientLimit),
	)

	test := &TokenTestHandler{Messages: r.messages}
	r.handle("GET /api/auth/test", "/api/auth/test",
		r.secured(test, httpx.LenientLimit),
	)
}

func (r *Router) registerLoan() {
	// Submissions carry uploads - moderate rate limit by user
	apply := &ApplyHandler{
		LoanService:  r.LoanService,
		Messages:     r.messages,
		MaxBodyBytes: r.maxBodyBytes,
	}
	r.handle("POST /api/loan/apply", "/api/loan/apply",
		r.secured(apply, httpx.ModerateLimit),
	)

	confirm := &ConfirmHandler{
		LoanService:  r.LoanService,
		Messages:     r.messages,
		MaxBodyBytes: r.maxBodyBytes,
	}
	r.handle("POST /api/loan/confirm", "/api/loan/confirm",
		r.secured(confirm, httpx.ModerateLimit),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.limit(httpx.LenientLimit)),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.Stager),
			httpx.RateLimitByIP(r.limit(httpx.LenientLimit)),
		),
	)

	if r.Metrics != nil {
		r.Mux.Handle("GET /metrics", r.Metrics.Handler())
	}
}
