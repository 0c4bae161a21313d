package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quiz-event/internal/config"
	"quiz-event/internal/question"
	"quiz-event/internal/server"
	"quiz-event/pkg/cache"
	"quiz-event/pkg/logger"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewServeCmd builds the subcommand that runs the HTTP and WebSocket server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the quiz event server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
	cmd.Flags().StringVar(port, "port", "", "port to listen on (overrides config)")
	return cmd
}

func setupLogger(cfg config.Config) {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	setupLogger(cfg)

	if cfg.Auth.JWTSecret == "" {
		return errors.New("JWT secret not configured")
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	var (
		codeCache  question.CodeCache
		redisCache *cache.RedisCache
	)
	if cfg.Redis.Addr != "" {
		redisCache = cache.NewRedisCache(cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      config.TTLDuration(cfg.Redis.TTL, 10*time.Minute),
			Channel:  cfg.Redis.Channel,
		})
		defer redisCache.Close()

		if err := redisCache.Ping(ctx); err != nil {
			return err
		}
		codeCache = redisCache
	}

	app := server.New(store, codeCache, server.Options{
		JWTSecret:        cfg.Auth.JWTSecret,
		TokenTTL:         config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour),
		AllowAdminSignup: cfg.Auth.AllowAdminSignup,
		PublicBaseURL:    cfg.Server.PublicBaseURL,
		CORSOrigins:      cfg.Server.CORSOrigins,
		RateLimit:        cfg.RateLimit.Requests,
		RateWindow:       config.TTLDuration(cfg.RateLimit.Window, 15*time.Minute),
	})

	if redisCache != nil {
		if err := app.Hub.AttachRelay(ctx, redisCache); err != nil {
			return err
		}
		log.Info().Str("channel", cfg.Redis.Channel).Msg("websocket relay attached")
	}
	go app.Hub.Run(ctx)

	srv := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      app.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", finalPort).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("shutting down server")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server")
	case err := <-errCh:
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return err
	}
	cancel()

	log.Info().Msg("server shutdown gracefully")
	return nil
}
