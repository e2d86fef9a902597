package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vitaltrack/bemestar/internal/auth"
	"github.com/vitaltrack/bemestar/internal/config"
	"github.com/vitaltrack/bemestar/internal/db"
	internalhttp "github.com/vitaltrack/bemestar/internal/http"
	"github.com/vitaltrack/bemestar/internal/identity"
	"github.com/vitaltrack/bemestar/internal/mailer"
	"github.com/vitaltrack/bemestar/internal/repo"
	"github.com/vitaltrack/bemestar/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api encerrada com erro")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()

	// Redis é opcional: sem ele a revogação de sessões fica em memória e vale
	// apenas para a instância local.
	var redisClient *redis.Client
	var sessions auth.SessionStore
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis parse: %w", err)
		}
		redisClient = redis.NewClient(redisOpts)
		defer redisClient.Close()
		sessions = auth.NewRedisSessionStore(redisClient)
	} else {
		log.Warn().Msg("REDIS_URL ausente; sessões revogadas apenas em memória")
		sessions = auth.NewMemorySessionStore()
	}

	queries := repo.New(pool)
	tokens := auth.NewTokenManager(cfg.TokenSecret, cfg.TokenTTL)
	provider := identity.NewPostgresProvider(pool)

	var sender mailer.Sender
	if cfg.MailerURL != "" {
		sender, err = mailer.NewHTTPSender(cfg.MailerURL, cfg.MailerKey, cfg.MailerFrom)
		if err != nil {
			return fmt.Errorf("mailer: %w", err)
		}
	} else {
		log.Warn().Msg("MAILER_URL ausente; e-mails serão apenas registrados em log")
		sender = mailer.LogSender{}
	}
	mailerService := mailer.NewService(sender, mailer.NewRepository(pool))

	authService := service.NewAuthService(queries, provider, tokens, sessions, mailerService, cfg.ResetActionTTL, cfg.AppBaseURL)

	handler, err := internalhttp.NewRouter(cfg, pool, redisClient, authService, mailerService)
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("API ouvindo em :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("encerrando...")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
