package http

import (
	"log/slog"
	"net/http"

	"github.com/geocoder89/scouthub/internal/config"
	"github.com/geocoder89/scouthub/internal/http/handlers"
	"github.com/geocoder89/scouthub/internal/http/middlewares"
	"github.com/geocoder89/scouthub/internal/observability"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type Deps struct {
	Players handlers.RegistrationService
	// Ping reports store reachability for /readyz; nil skips the check.
	Ping    func() error
	Prom    *observability.Prom
	Metrics http.Handler
	Tokens  middlewares.TokenVerifier
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// nil trusts no proxy, so ClientIP is the socket peer
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Error("ignoring TRUSTED_PROXIES", "err", err)
		_ = r.SetTrustedProxies(nil)
	}

	// middleware
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders(cfg.Env == "prod"))
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	if cfg.MaxBodyBytes > 0 {
		r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	}
	r.Use(middlewares.RequireJSON())

	// health
	h := handlers.NewHealthHandler(deps.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)

	players := handlers.NewPlayersHandler(deps.Players, deps.Prom)

	register := []gin.HandlerFunc{}
	if cfg.RegisterRateLimit > 0 {
		rl := middlewares.NewRateLimiter(cfg.RegisterRateLimit, cfg.RegisterRateWindow)
		register = append(register, rl.RateLimiterMiddleware(middlewares.KeyByIP))
	}
	register = append(register, players.Register)
	r.POST("/register", register...)

	list := []gin.HandlerFunc{}
	if cfg.PlayersRequireAuth && deps.Tokens != nil {
		authMW := middlewares.NewAuthMiddleware(deps.Tokens)
		list = append(list, authMW.RequireAuth())
		if len(cfg.PlayersRoles) > 0 {
			list = append(list, authMW.RequireRole(cfg.PlayersRoles...))
		}
	}
	list = append(list, players.List)
	r.GET("/players", list...)

	r.NoRoute(func(ctx *gin.Context) {
		handlers.RespondNotFound(ctx, "Route not found")
	})

	return r
}
