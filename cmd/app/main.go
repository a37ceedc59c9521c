package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"score-report-relay/internal/config"
	"score-report-relay/internal/domain/ports/adapter"
	tele "score-report-relay/internal/infra/adapters/telegram"
	"score-report-relay/internal/infra/logging"
	"score-report-relay/internal/infra/metrics"
	"score-report-relay/internal/infra/web"
	"score-report-relay/internal/usecase"
)

// Set via -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

func main() {
	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file (optional)")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, unredacted secrets)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}

	// ---- Metrics ----
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- CORS ----
	if web.NewCORSPolicy(cfg.CORS).Unlocked() {
		logger.Warn().Msg("cors.allowed_origin is empty; every origin is allowed (set cors.strict to forbid this)")
	}

	// ---- Telegram ----
	if !cfg.Telegram.Configured() {
		logger.Error().Msg("TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID missing; reports will be answered with 500")
	}
	notifier := newNotifier(cfg, logger)

	// ---- Use cases ----
	formatter := usecase.NewMessageFormatter(cfg.Report.DefaultTestID, cfg.Report.DefaultStudentName)
	reportUC := usecase.NewReportUseCase(notifier, cfg.Telegram, formatter, logger)

	// ---- HTTP ----
	srv := web.NewServer(cfg, reportUC, logger)
	servers := []*http.Server{{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}}
	if cfg.Admin.Port != 0 {
		servers = append(servers, &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Admin.Port),
			Handler:           srv.AdminRouter(),
			ReadHeaderTimeout: 10 * time.Second,
		})
	}

	errc := make(chan error, len(servers))
	for _, s := range servers {
		go func(s *http.Server) {
			logger.Info().Str("addr", s.Addr).Msg("http listening")
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- fmt.Errorf("%s: %w", s.Addr, err)
			}
		}(s)
	}
	logger.Info().
		Str("path", cfg.Server.Path).
		Str("allowed_origin", cfg.CORS.AllowedOrigin).
		Bool("allow_null_origin", cfg.CORS.AllowNullOrigin).
		Str("telegram_token", logging.Redact(cfg.Telegram.Token, cfg.Runtime.Dev)).
		Str("telegram_mode", cfg.Telegram.Mode).
		Msg("report relay started")

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	exitCode := 0
	select {
	case sig := <-sigc:
		logger.Info().Str("signal", sig.String()).Msg("shutdown requested")
	case err := <-errc:
		logger.Error().Err(err).Msg("http server error")
		exitCode = 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	for _, s := range servers {
		if err := s.Shutdown(ctx); err != nil {
			logger.Warn().Err(err).Str("addr", s.Addr).Msg("shutdown")
		}
	}
	if exitCode != 0 {
		cancel()
		os.Exit(exitCode)
	}
}

func newNotifier(cfg *config.Config, logger *zerolog.Logger) adapter.TelegramNotifier {
	if strings.ToLower(cfg.Telegram.Mode) == "noop" {
		logger.Warn().Msg("telegram.mode=noop; notifications are logged, not sent")
		return tele.NewNoopSender(logger)
	}
	return tele.NewBotAPISender(cfg.Telegram, nil, logger)
}
