package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Simplici0/estimator/internal/inquiry"
	"github.com/Simplici0/estimator/internal/money"
	"github.com/Simplici0/estimator/internal/notify"
	"github.com/Simplici0/estimator/internal/quotes"
	"github.com/Simplici0/estimator/internal/seed"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger := zap.L()
		a, err := openApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		if cfg.IsDev() {
			if err := a.migrate(ctx); err != nil {
				return eris.Wrap(err, "run database migrations")
			}
		}

		stats, err := seed.Run(ctx, a.db, a.rates, seed.Config{
			AdminEmail:    cfg.Admin.Email,
			AdminPassword: cfg.Admin.Password,
		})
		if err != nil {
			return eris.Wrap(err, "seed")
		}
		logger.Info("seed complete", zap.Int("inserts", stats.Inserts))

		srv, err := newServer(a)
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		httpServer := &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      srv.routes(),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("starting server", zap.Int("port", port))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			logger.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return err
			}
			if err := srv.intake.Wait(shutdownCtx); err != nil {
				logger.Warn("inquiry emails still sending at shutdown", zap.Error(err))
			}
			return nil
		})
		return g.Wait()
	},
}

// newServer wires the HTTP handlers to the app's stores and senders.
func newServer(a *app) (*server, error) {
	currency, err := money.ParseCurrency(a.cfg.Rates.Currency)
	if err != nil {
		return nil, err
	}

	auth, err := newAuthService(a.db, a.cfg.Admin.SessionSecret, a.cfg.Admin.SessionTTL, !a.cfg.IsDev())
	if err != nil {
		return nil, err
	}

	renderer, err := notify.NewRenderer()
	if err != nil {
		return nil, err
	}
	var sender notify.Sender = notify.NewLogSender(a.logger)
	if a.cfg.Notify.WebhookURL != "" {
		sender = notify.NewWebhookSender(notify.WebhookOptions{
			URL:           a.cfg.Notify.WebhookURL,
			Token:         a.cfg.Notify.Token,
			RatePerSecond: a.cfg.Notify.RatePerSecond,
			Burst:         a.cfg.Notify.Burst,
			MaxElapsed:    a.cfg.Notify.MaxElapsed,
		}, a.logger)
	}

	adminEmail := a.cfg.Notify.AdminEmail
	if adminEmail == "" {
		adminEmail = a.cfg.Admin.Email
	}

	inquiries := inquiry.NewStore(a.db)
	return &server{
		auth:      auth,
		rates:     a.rates,
		quotes:    quotes.NewStore(a.db),
		inquiries: inquiries,
		intake: inquiry.NewService(inquiry.ServiceOptions{
			Repo:            inquiries,
			Renderer:        renderer,
			Sender:          sender,
			From:            a.cfg.Notify.From,
			AdminEmail:      adminEmail,
			DeliveryTimeout: a.cfg.Notify.DeliveryTimeout,
			Logger:          a.logger,
		}),
		logger:          a.logger,
		estimateLimiter: a.limiter("estimate", a.cfg.RateLimit.Estimate),
		inquiryLimiter:  a.limiter("inquiry", a.cfg.RateLimit.Inquiry),
		currency:        currency,
		allowedOrigins:  a.cfg.Server.AllowedOrigins,
	}, nil
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
