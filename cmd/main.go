package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/zlog"

	"egasrsvp/cmd/buildCFG"
	"egasrsvp/internal/api/api"
	rabbitReader "egasrsvp/internal/consumerWorker"
	"egasrsvp/internal/mailer"
	"egasrsvp/internal/notify"
	"egasrsvp/internal/rabbit"
	"egasrsvp/internal/repo"
	"egasrsvp/internal/service"
)

func main() {
	zlog.Init()
	log := zlog.Logger

	envPath := ""
	if _, err := os.Stat(".env"); err == nil {
		envPath = ".env"
	}
	cfg := config.New()
	if err := cfg.Load("config.yaml", envPath, "RSVP"); err != nil {
		log.Fatal().Msgf("failed to load configuration: %v", err)
	}
	serverCfg := buildCFG.BuildServerConfig(cfg, &log)

	ev, err := buildCFG.BuildEventConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build event config")
	}

	dbCfg, err := buildCFG.BuildDBConfig(cfg, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build DB config")
	}
	repository, err := repo.Open(context.Background(), dbCfg, &log)
	if err != nil {
		log.Fatal().Msgf("failed to initialize repository: %v", err)
	}
	defer repository.Close()

	if err := repository.MigrateUp(context.Background()); err != nil {
		if !errors.Is(err, repo.ErrNotConfigured) {
			log.Fatal().Err(err).Msg("migration failed")
		}
	} else {
		log.Info().Str("driver", dbCfg.Driver).Msg("Guest record store ready")
	}

	rabbitCfg, err := buildCFG.BuildRabbitConfig(cfg, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load RabbitMQ config")
	}

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	smtpCfg := buildCFG.BuildSMTPConfig(cfg)
	mail := mailer.New(smtpCfg, ev, &log)
	notifier, reader, rmq := buildNotifier(workerCtx, smtpCfg, rabbitCfg, mail, &log)
	if rmq != nil {
		defer rmq.Close()
	}

	submitter := service.NewSubmitter(repository, notifier, ev, &log)
	admin := service.NewAdmin(repository, buildCFG.BuildAdminSecret(cfg, &log), &log)
	serviceInstance := service.NewService(submitter, admin, ev, &log)
	app := api.NewRouters(&api.Routers{Service: serviceInstance, StaticDir: serverCfg.StaticDir})

	srv := &http.Server{
		Addr:              ":" + serverCfg.Port,
		Handler:           app,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info().Msgf("Starting server on %s", serverCfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("failed to start server: %w", err)
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-signalChan:
		log.Info().Msgf("Received signal %s. Initiating shutdown...", sig)
	case err := <-serverErrChan:
		log.Error().Msgf("Server error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Msgf("Error shutting down server: %v", err)
	}

	submitter.Wait()
	cancelWorkers()
	if reader != nil {
		reader.Stop()
	}

	log.Info().Msg("Shutdown complete")
}

// buildNotifier picks the queue when a broker is configured, direct SMTP
// otherwise, and a no-op when there is no SMTP account.
func buildNotifier(ctx context.Context, smtpCfg mailer.Config, rabbitCfg buildCFG.RabbitConfig, mail *mailer.Mailer, log *zerolog.Logger) (notify.Notifier, *rabbitReader.Reader, *rabbit.Client) {
	if !smtpCfg.Enabled() {
		log.Warn().Msg("smtp.host or smtp.from not set, confirmation emails are disabled")
		return notify.Nop, nil, nil
	}
	if rabbitCfg.Url == "" {
		return notify.Mail(mail), nil, nil
	}

	rmq, err := rabbit.NewRabbit(rabbitCfg.Url, rabbitCfg.Exchange, rabbitCfg.Queue)
	if err != nil {
		log.Fatal().Msgf("Failed to connect to RabbitMQ: %v", err)
	}
	reader := rabbitReader.NewReader(rmq, mail)
	reader.Start(ctx)
	return notify.Queue(rmq), reader, rmq
}
