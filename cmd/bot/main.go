package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/restuaku/vet/internal/adminlog"
	"github.com/restuaku/vet/internal/config"
	"github.com/restuaku/vet/internal/confirm"
	"github.com/restuaku/vet/internal/domain"
	"github.com/restuaku/vet/internal/flow"
	"github.com/restuaku/vet/internal/httpserver"
	"github.com/restuaku/vet/internal/mailbox"
	"github.com/restuaku/vet/internal/platform/logging"
	"github.com/restuaku/vet/internal/sheerid"
	"github.com/restuaku/vet/internal/telegram"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupMailboxes(cfg *config.Config) domain.MailboxProvider {
	switch cfg.MailboxProvider {
	case "domainpool":
		return mailbox.NewDomainPool(cfg.MailboxAPIURL, cfg.MailboxDomain)
	default:
		return mailbox.NewMailTM(cfg.MailTMBaseURL)
	}
}

func runGracefulShutdown(srv *httpserver.Server, cancelPolling context.CancelFunc) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		cancelPolling()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.Init(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	verifier := sheerid.NewClient(cfg.SheerIDBaseURL)
	mailboxes := setupMailboxes(cfg)
	executor := confirm.NewHTTPExecutor()
	audit := adminlog.New(cfg.LogBotToken, cfg.AdminChatID)

	botClient := telegram.NewClient(cfg.BotToken)
	notifier := telegram.NewNotifier(botClient)

	store := flow.NewStore()
	scheduler := flow.NewScheduler(clock)
	orchestrator := flow.NewOrchestrator(store, scheduler, verifier, mailboxes, executor, notifier, audit, confirm.Classify, clock)

	pollCtx, cancelPolling := context.WithCancel(context.Background())
	poller := telegram.NewPoller(botClient, orchestrator)
	go poller.Run(pollCtx)

	srv := httpserver.NewServer(cfg.Port, nil)
	done := runGracefulShutdown(srv, cancelPolling)

	if err := srv.Start(); err != nil {
		slog.Error("Server stopped", "error", err)
	}

	<-done
	slog.Info("Shutdown complete")
}
