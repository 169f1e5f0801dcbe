package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"agrisense/internal/config"
	hhttp "agrisense/internal/handler/http"
	hanalysis "agrisense/internal/handler/http/analysis"
	hauth "agrisense/internal/handler/http/auth"
	hbill "agrisense/internal/handler/http/bill"
	hcart "agrisense/internal/handler/http/cart"
	hdashboard "agrisense/internal/handler/http/dashboard"
	hmachinery "agrisense/internal/handler/http/machinery"
	"agrisense/internal/handler/http/middleware"
	hproduct "agrisense/internal/handler/http/product"
	"agrisense/internal/handler/http/requestid"
	htelemetry "agrisense/internal/handler/http/telemetry"
	huser "agrisense/internal/handler/http/user"
	hvideo "agrisense/internal/handler/http/video"
	pgRepo "agrisense/internal/infra/adapter/persistence/postgres"
	"agrisense/internal/infra/analyzer"
	"agrisense/internal/infra/cartstore"
	"agrisense/internal/infra/db"
	"agrisense/internal/observability/logging"
	"agrisense/internal/observability/metrics"
	"agrisense/internal/observability/tracing"
	"agrisense/internal/repository"
	authservice "agrisense/internal/service/auth"
	analysisUC "agrisense/internal/usecase/analysis"
	billUC "agrisense/internal/usecase/bill"
	cartUC "agrisense/internal/usecase/cart"
	dashUC "agrisense/internal/usecase/dashboard"
	machUC "agrisense/internal/usecase/machinery"
	"agrisense/internal/usecase/notify"
	prodUC "agrisense/internal/usecase/product"
	telemetryUC "agrisense/internal/usecase/telemetry"
	userUC "agrisense/internal/usecase/user"
	videoUC "agrisense/internal/usecase/video"
	envcfg "agrisense/pkg/config"
)

func main() {
	logger := logging.Init()

	secCfg, err := config.LoadSecurityConfigFromEnv()
	if err != nil {
		logger.Error("failed to load security configuration", slog.Any("error", err))
		os.Exit(1)
	}
	secret := validateJWTSecret(logger, secCfg.JWTSecretEnv())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing := tracing.Init("agrisense-api", envcfg.GetEnvFloat("TRACE_SAMPLE_RATIO", 0.1))

	database := initDatabase(ctx, logger)
	version := envcfg.GetEnvString("VERSION", "dev")

	app := setupServer(ctx, logger, database, secCfg, secret, version)
	runServer(ctx, logger, app.Handler, version)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Notify.Shutdown(shutdownCtx); err != nil {
		logger.Warn("notification service shutdown timed out", slog.Any("error", err))
	}
	if app.Redis != nil {
		_ = app.Redis.Close()
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracer shutdown failed", slog.Any("error", err))
	}
	if err := database.Close(); err != nil {
		logger.Error("failed to close database", slog.Any("error", err))
	}
}

// validateJWTSecret rejects empty, short and well-known secrets.
func validateJWTSecret(logger *slog.Logger, env string) []byte {
	secret := os.Getenv(env)
	if secret == "" {
		logger.Error("JWT secret must be set", slog.String("env", env))
		os.Exit(1)
	}
	if len(secret) < 32 {
		logger.Error("JWT secret must be at least 32 characters (256 bits)", slog.String("env", env))
		os.Exit(1)
	}
	for _, weak := range []string{"secret", "password", "test", "admin", "default"} {
		if secret == weak || secret == weak+"123" {
			logger.Error("JWT secret must not be a common weak value", slog.String("env", env))
			os.Exit(1)
		}
	}
	return []byte(secret)
}

func initDatabase(ctx context.Context, logger *slog.Logger) *sql.DB {
	database, err := db.Open(ctx, envcfg.GetEnvString("DATABASE_URL", ""), db.ConnectionConfigFromEnv())
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := metrics.RegisterDBStats(prometheus.DefaultRegisterer, database, "agrisense"); err != nil {
		logger.Warn("db pool metrics unavailable", slog.Any("error", err))
	}
	return database
}

// ServerComponents holds what main needs to serve and clean up.
type ServerComponents struct {
	Handler http.Handler
	Notify  notify.Service
	Redis   *redis.Client
}

func setupServer(
	ctx context.Context,
	logger *slog.Logger,
	database *sql.DB,
	secCfg *config.SecurityConfig,
	secret []byte,
	version string,
) *ServerComponents {
	products := pgRepo.NewProductRepo(database)
	machinery := pgRepo.NewMachineryRepo(database)
	videos := pgRepo.NewVideoRepo(database)
	users := pgRepo.NewUserRepo(database)
	bills := pgRepo.NewBillRepo(database)
	sensors := pgRepo.NewSensorRepo(database)

	optional := map[string]hhttp.Pinger{}
	carts, redisClient := initCartStore(ctx, logger)
	if redisClient != nil {
		optional["redis"] = carts.(hhttp.Pinger)
	}

	notifySvc := notify.NewService(notify.ChannelsFromEnv(logger), envcfg.GetEnvInt("NOTIFY_MAX_CONCURRENT", 10))

	analyzerCfg, err := config.LoadAnalyzerConfig()
	if err != nil {
		logger.Error("failed to load analyzer configuration", slog.Any("error", err))
		os.Exit(1)
	}
	provider, err := analyzer.New(ctx, analyzerCfg)
	if err != nil {
		logger.Error("failed to create analyzer", slog.Any("error", err))
		os.Exit(1)
	}
	prompts, err := config.LoadPromptCatalog(analyzerCfg.PromptsPath)
	if err != nil {
		logger.Error("failed to load prompt catalog", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("analyzer configured",
		slog.String("provider", analyzerCfg.Provider),
		slog.String("model", analyzerCfg.Model))

	issuer := hauth.NewIssuer(secret, time.Duration(secCfg.JWTExpiryHours())*time.Hour)
	admin, viewer := hauth.AccountsFromEnv()
	authProvider, err := hauth.NewMultiUserAuthProvider(secCfg.MinPasswordLength(), secCfg.WeakPasswords(), admin, viewer, logger)
	if err != nil {
		logger.Error("invalid account configuration", slog.Any("error", err))
		os.Exit(1)
	}
	authSvc := authservice.NewAuthService(authProvider)

	rlCfg, err := envcfg.LoadRateLimitConfig()
	if err != nil {
		logger.Error("invalid rate limit configuration", slog.Any("error", err))
		os.Exit(1)
	}
	extractor := middleware.NewIPExtractor(rlCfg.TrustProxy, rlCfg.TrustedProxies)
	limit := func(h http.Handler) http.Handler { return h }
	if rlCfg.Enabled {
		limit = middleware.NewIPRateLimiter(*rlCfg, extractor).Middleware
	}

	mux := http.NewServeMux()
	mux.Handle("POST /auth/token", hauth.TokenHandler(authSvc, issuer))

	hproduct.Register(mux, &prodUC.Service{Repo: products})
	hmachinery.Register(mux, &machUC.Service{Repo: machinery})
	hvideo.Register(mux, &videoUC.Service{Repo: videos})
	huser.Register(mux, &userUC.Service{Repo: users})
	hcart.Register(mux, &cartUC.Service{Store: carts, Products: products})
	hbill.Register(mux, &billUC.Service{Repo: bills, Products: products, Carts: carts, Notifier: notifySvc})
	hanalysis.Register(mux, analysisUC.NewService(provider, prompts, analyzerCfg.CacheTTL, analyzerCfg.MaxImageBytes), limit)
	hdashboard.Register(mux, &dashUC.Service{
		Products:  products,
		Machinery: machinery,
		Videos:    videos,
		Users:     users,
		Bills:     bills,
	})
	htelemetry.Register(mux, telemetryUC.NewService(sensors, telemetryUC.NewSimulator(), telemetryUC.NoopPublisher{}))

	hhttp.RegisterOps(mux, &hhttp.HealthHandler{
		DB:       database,
		Version:  version,
		Optional: optional,
		Analyzer: analyzerCfg.Provider,
	})

	handler := hhttp.Chain(mux,
		middleware.CORS(middleware.LoadCORSConfig()),
		requestid.Middleware,
		tracing.Middleware,
		hhttp.Recover(logger),
		hhttp.Logging(logger),
		hhttp.LimitRequestBody(max(hhttp.DefaultMaxBodyBytes, hanalysis.MaxJSONBodyBytes(analyzerCfg.MaxImageBytes))),
		middleware.SecurityHeaders(envcfg.LoadCSPConfig()),
		hhttp.MetricsMiddleware,
		hauth.Authz(issuer),
	)

	return &ServerComponents{Handler: handler, Notify: notifySvc, Redis: redisClient}
}

// initCartStore picks the cart backend from CART_STORE. Redis falls back
// to memory when the server cannot be reached at startup.
func initCartStore(ctx context.Context, logger *slog.Logger) (repository.CartStore, *redis.Client) {
	ttl := envcfg.GetEnvDuration("CART_TTL", cartstore.DefaultTTL)
	if envcfg.GetEnvString("CART_STORE", "memory") != "redis" {
		logger.Info("cart store: memory", slog.Duration("ttl", ttl))
		return cartstore.NewMemory(ttl), nil
	}

	addr := envcfg.GetEnvString("REDIS_ADDR", "localhost:6379")
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: envcfg.GetEnvString("REDIS_PASSWORD", ""),
		DB:       envcfg.GetEnvInt("REDIS_DB", 0),
	})
	store := cartstore.NewRedis(client, ttl)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		logger.Warn("redis unavailable, using in-memory cart store",
			slog.String("addr", addr),
			slog.Any("error", err))
		_ = client.Close()
		return cartstore.NewMemory(ttl), nil
	}
	logger.Info("cart store: redis", slog.String("addr", addr), slog.Duration("ttl", ttl))
	return store, client
}

func runServer(ctx context.Context, logger *slog.Logger, handler http.Handler, version string) {
	addr := envcfg.GetEnvString("HTTP_ADDR", ":8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second, // Slowloris
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
