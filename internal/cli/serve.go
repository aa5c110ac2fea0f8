package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	apiv1 "github.com/divinecoid/sabkabazaar/internal/api/v1"
	"github.com/divinecoid/sabkabazaar/internal/config"
	"github.com/divinecoid/sabkabazaar/internal/db"
	"github.com/divinecoid/sabkabazaar/internal/notify"
	"github.com/divinecoid/sabkabazaar/internal/payment"
	"github.com/divinecoid/sabkabazaar/internal/service"
	"github.com/divinecoid/sabkabazaar/pkg/config/keys"
)

const shutdownTimeout = 30 * time.Second

func serveCmd(opts *rootOptions) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API.

Examples:
  sabkabazaar serve
  sabkabazaar serve --migrate --config config.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(true)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, migrate)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "run schema migrations before serving")

	return cmd
}

func runServe(parent context.Context, cfg *config.Config, migrate bool) error {
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, db.Options{
		URL:      cfg.Database.URL,
		MaxConns: cfg.Database.MaxConns,
		LogLevel: gormLogLevel(cfg),
	})
	if err != nil {
		return err
	}
	defer database.Close()

	if migrate {
		if err := db.Migrate(ctx, database.Gorm); err != nil {
			return err
		}
		logger.Info("schema migrated")
	}

	keyManager, err := keys.NewKeyManager(cfg.App.Env, cfg.Auth.SigningKeyCurrent, cfg.Auth.SigningKeyPrevious)
	if err != nil {
		return fmt.Errorf("failed to load signing keys: %w", err)
	}

	bus := notify.NewBus(logger)
	unsubscribe := subscribeOrderLog(bus, logger)
	defer unsubscribe()

	handler := newHandler(cfg, database, keyManager, bus, logger)

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.HTTP.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func newHandler(cfg *config.Config, database *db.DB, keyManager *keys.KeyManager, bus *notify.Bus, logger *slog.Logger) http.Handler {
	gdb := database.Gorm

	tokens := service.NewTokenIssuer(keyManager, cfg.Auth.TokenTTL)
	orders := service.NewOrderService(gdb, bus, logger)
	deps := apiv1.Deps{
		Auth:         service.NewAuthService(gdb, tokens, logger),
		Cart:         service.NewCartService(gdb, logger),
		Orders:       orders,
		Products:     service.NewProductService(gdb, logger),
		Reviews:      service.NewReviewService(gdb),
		DB:           database,
		Logger:       logger,
		CookieSecure: cfg.Auth.CookieSecure,
	}
	if cfg.Razorpay.Enabled() {
		client := payment.NewClient(payment.Config{
			KeyID:     cfg.Razorpay.KeyID,
			KeySecret: cfg.Razorpay.KeySecret,
			BaseURL:   cfg.Razorpay.BaseURL,
			Timeout:   cfg.Razorpay.Timeout,
		}, logger)
		deps.Payments = service.NewPaymentService(client, orders, bus, logger, cfg.Payment.Currency, cfg.Payment.MaxAmount)
	}

	if cfg.App.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), apiv1.RequestID())
	r.SetTrustedProxies(nil)
	apiv1.RegisterRoutes(r.Group("/api/v1"), deps)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.HTTP.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", apiv1.RequestIDHeader},
		ExposedHeaders:   []string{apiv1.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           86400,
	})
	return c.Handler(r)
}

// subscribeOrderLog writes every order event to the structured log.
func subscribeOrderLog(bus *notify.Bus, logger *slog.Logger) func() {
	log := func(ctx context.Context, e notify.Event) {
		attrs := []any{"topic", e.Topic, "at", e.At}
		for k, v := range e.Payload {
			attrs = append(attrs, k, v)
		}
		logger.InfoContext(ctx, "order event", attrs...)
	}

	var unsubs []func()
	topics := []string{
		notify.TopicOrderCreated,
		notify.TopicOrderStatusChanged,
		notify.TopicOrderPaid,
		notify.TopicOrderRefundRequired,
	}
	for _, topic := range topics {
		unsubs = append(unsubs, bus.Subscribe(topic, log))
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
