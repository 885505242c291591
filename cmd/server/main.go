package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/yourorg/tenantcrm/internal/handler"
	"github.com/yourorg/tenantcrm/internal/infrastructure/logger"
	"github.com/yourorg/tenantcrm/internal/infrastructure/redis"
	"github.com/yourorg/tenantcrm/internal/observability/metrics"
	"github.com/yourorg/tenantcrm/internal/observability/tracing"
	"github.com/yourorg/tenantcrm/internal/repository"
	"github.com/yourorg/tenantcrm/internal/security/audit"
	"github.com/yourorg/tenantcrm/internal/security/auth"
	"github.com/yourorg/tenantcrm/internal/security/middleware"
	"github.com/yourorg/tenantcrm/internal/security/ratelimit"
	"github.com/yourorg/tenantcrm/internal/service"
	"github.com/yourorg/tenantcrm/internal/worker"
	"github.com/yourorg/tenantcrm/pkg/cache"
	"github.com/yourorg/tenantcrm/pkg/config"
	"github.com/yourorg/tenantcrm/pkg/database"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting tenantcrm server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize tracing (no-op unless an OTLP endpoint is configured)
	shutdownTracing, err := tracing.Init(ctx, log, cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Connect to Postgres and apply migrations
	pool, err := database.NewConnectionPool(ctx, &database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}, log)
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Migrate(ctx); err != nil {
		log.Error("failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 5. Connect to Redis (session revocation + readiness)
	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to Redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer redisClient.Close()

	// 6. Initialize repositories
	db := pool.GetDB()
	tenantRepo := repository.NewPostgresTenantRepository(db, log)
	membershipRepo := repository.NewPostgresMembershipRepository(db, log)
	customerRepo := repository.NewPostgresCustomerRepository(db, log)
	activityRepo := repository.NewPostgresActivityRepository(db, log)
	authUserRepo := repository.NewPostgresAuthUserRepository(db, log)

	// 7. Initialize security components
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.SessionTTL)
	sessions := auth.NewRevocationStore(redisClient, log)
	rateLimiter := ratelimit.NewLimiter(cfg.RateLimit, cfg.RateWindow)
	auditLogger := audit.NewLogger(log)
	dashboardCache := cache.New()

	// 8. Initialize services
	authService := service.NewAuthService(authUserRepo, tenantRepo, membershipRepo, tokenManager, sessions, log)
	customerService := service.NewCustomerService(customerRepo, dashboardCache, auditLogger, log)
	memberService := service.NewMemberService(membershipRepo, authUserRepo, auditLogger, log)
	activityService := service.NewActivityService(activityRepo, dashboardCache, log)
	analyticsService := service.NewAnalyticsService(customerRepo, membershipRepo, activityRepo, dashboardCache, cfg.DashboardCacheTTL, log)

	// 9. Initialize handlers
	authHandler := handler.NewAuthHandler(authService, rateLimiter, cfg.AuthLimit, cfg.AuthWindow, log)
	customersHandler := handler.NewCustomersHandler(customerService, log)
	activitiesHandler := handler.NewActivitiesHandler(activityService, log)
	usersHandler := handler.NewUsersHandler(memberService, log)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, log)
	healthHandler := handler.NewHealthHandler(pool, redisClient, log)

	// 10. Middleware chains. The order is the authorization model: identity
	// first, then the per-user rate limit, then tenant membership. Handlers
	// behind `protected` always see a verified Grant.
	authn := middleware.AuthMiddleware(tokenManager, sessions, log)
	tenant := middleware.TenantMiddleware(membershipRepo, log)
	rated := middleware.RateLimitMiddleware(rateLimiter, log)
	validate := middleware.ValidateJSONContentType(log)

	protected := func(h http.HandlerFunc) http.Handler {
		return authn(rated(tenant(validate(h))))
	}
	identified := func(h http.HandlerFunc) http.Handler {
		return authn(rated(h))
	}

	// 11. Routes
	mux := http.NewServeMux()

	mux.Handle("POST /api/auth/signup", validate(http.HandlerFunc(authHandler.Signup)))
	mux.Handle("POST /api/auth/login", validate(http.HandlerFunc(authHandler.Login)))
	mux.Handle("POST /api/auth/logout", identified(authHandler.Logout))

	mux.Handle("GET /api/customers", protected(customersHandler.List))
	mux.Handle("GET /api/customers/{id}", protected(customersHandler.Get))
	mux.Handle("POST /api/customers", protected(customersHandler.Create))
	mux.Handle("PUT /api/customers/{id}", protected(customersHandler.Update))
	mux.Handle("DELETE /api/customers/{id}", protected(customersHandler.Delete))

	mux.Handle("GET /api/activities", protected(activitiesHandler.List))
	mux.Handle("POST /api/activities", protected(activitiesHandler.Create))

	mux.Handle("GET /api/users", protected(usersHandler.List))
	mux.Handle("POST /api/users/invite", protected(usersHandler.Invite))
	mux.Handle("PUT /api/users/{id}/role", protected(usersHandler.UpdateRole))
	mux.Handle("DELETE /api/users/{id}", protected(usersHandler.Remove))

	mux.Handle("GET /api/analytics/dashboard", protected(analyticsHandler.Dashboard))

	mux.HandleFunc("GET /api/health", healthHandler.Health)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.Handle("/metrics", promhttp.Handler())

	// CORS honoring configured origins; X-Tenant-Id must be listed for the
	// browser to send it
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(cfg.CORSOrigins) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSOrigins[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization, X-Tenant-Id")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})

	// Outermost: request ID -> tracing -> metrics -> CORS -> routes
	rootHandler := withRequestID(
		otelhttp.NewHandler(
			metrics.HTTPMetricsMiddleware(handlerWithCORS),
			"tenantcrm.http",
		),
		log,
	)

	// 12. Start stats worker in background
	statsWorker := worker.NewStatsWorker(tenantRepo, customerRepo, log, cfg.StatsInterval)
	go statsWorker.Start(ctx)

	// 13. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "jwt"),
		slog.Int("rate_limit", cfg.RateLimit),
		slog.String("rate_limit_window", cfg.RateWindow.String()),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	cancel() // stop stats worker
	rateLimiter.Stop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
}

type requestIDKey struct{}

// withRequestID attaches a request ID to the context and response headers for traceability
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := generateRequestID()
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("req-%d", time.Now().UnixNano())
}
