package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alextreichler/magicworld/internal/api"
	"github.com/alextreichler/magicworld/internal/cache"
	"github.com/alextreichler/magicworld/internal/checkout"
	"github.com/alextreichler/magicworld/internal/config"
	"github.com/alextreichler/magicworld/internal/handlers"
	"github.com/alextreichler/magicworld/internal/session"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
)

// maxBody caps every request body. The order form's screenshot limit is
// enforced separately and is well below this.
const maxBody = 8 << 20

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Using TextHandler for console readability; for production JSONHandler might be preferred.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. API client and catalog cache
	apiClient := api.NewClient(cfg.APIBaseURL, cfg.APITimeout)
	store := cacheStore(ctx, cfg)
	catalog := cache.NewCatalog(apiClient, store, cfg.CatalogCacheTTL)

	// 3. Session Setup
	sessionStore := sessions.NewCookieStore(cfg.SessionKey)
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.Secure = cfg.CookieSecure
	sessionStore.Options.SameSite = http.SameSiteLaxMode
	sessionStore.Options.Path = "/"
	if cfg.CookieDomain != "" {
		sessionStore.Options.Domain = cfg.CookieDomain
	}
	adminSessions := session.NewManager(sessionStore)

	// 4. Init Templates
	templates := handlers.NewTemplateCache()
	templates.AddFunc("asset", apiClient.AssetURL)
	if err := templates.Load(cfg.TemplatesDir); err != nil {
		slog.Error("Failed to load templates", "error", err)
		os.Exit(1)
	}

	// 5. Setup Handlers
	publicHandler := &handlers.PublicHandler{
		Catalog:         catalog,
		API:             apiClient,
		Templates:       templates,
		SessionStore:    sessionStore,
		SiteURL:         cfg.SiteURL,
		TelegramContact: cfg.TelegramContact,
	}
	orderHandler := &handlers.OrderHandler{
		Catalog:   catalog,
		Checkout:  checkout.NewService(apiClient, cfg.OrderTimeout, cfg.ScreenshotWidth),
		Templates: templates,
		Public:    publicHandler,
		UPIID:     cfg.UPIID,
	}
	adminHandler := &handlers.AdminHandler{
		API:               apiClient,
		Catalog:           catalog,
		Sessions:          adminSessions,
		Templates:         templates,
		AllowSlugOverride: cfg.AllowSlugOverride,
	}
	adminSessions.OnExpired(adminHandler.SessionExpired)

	router := &handlers.Router{
		Public:      publicHandler,
		Orders:      orderHandler,
		Admin:       adminHandler,
		RateLimiter: handlers.NewRateLimiter(ctx, 5, time.Minute),
		StaticDir:   cfg.StaticDir,
	}

	// 6. Middleware Setup
	CSRF := csrf.Protect(
		cfg.CSRFKey,
		csrf.Secure(cfg.CookieSecure),
		csrf.Path("/"),
		csrf.ErrorHandler(http.HandlerFunc(publicHandler.CSRFFailure)),
		csrf.TrustedOrigins(trustedOrigins(cfg)),
	)

	// Chain: Logger -> Security Headers -> Body Limit -> CSRF -> Mux
	handler := handlers.LoggingMiddleware(
		handlers.SecurityHeadersMiddleware(
			handlers.LimitBody(maxBody)(
				CSRF(router.Mux()),
			),
		),
	)

	// 7. Start Server with Graceful Shutdown
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server starting", "port", cfg.Port, "api", cfg.APIBaseURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to listen and serve", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited gracefully.")
}

// cacheStore picks Redis when REDIS_ADDR is set and answers a ping, the
// in-process store otherwise.
func cacheStore(ctx context.Context, cfg *config.Config) cache.Store {
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		err := rdb.Ping(pingCtx).Err()
		if err == nil {
			slog.Info("Catalog cache: redis", "addr", cfg.RedisAddr)
			return cache.NewRedis(rdb)
		}
		slog.Warn("Redis unavailable, falling back to in-memory cache", "addr", cfg.RedisAddr, "error", err)
		rdb.Close()
	}

	mem := cache.NewMemory()
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				mem.Sweep()
			}
		}
	}()
	return mem
}

// trustedOrigins allows local development hosts plus the public site.
func trustedOrigins(cfg *config.Config) []string {
	origins := []string{"localhost:" + cfg.Port, "127.0.0.1:" + cfg.Port, "localhost", "127.0.0.1"}
	if u, err := url.Parse(cfg.SiteURL); err == nil && u.Host != "" {
		origins = append(origins, u.Host)
	}
	return origins
}
