package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"physicstutor/internal/chat"
	"physicstutor/internal/config"
	"physicstutor/internal/httpserver"
	"physicstutor/internal/llm"
	"physicstutor/internal/logging"
	"physicstutor/internal/transport"
	"physicstutor/internal/ui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, closeLogs := logging.New(cfg.Log)
	defer closeLogs()
	slog.SetDefault(logger)

	httpClient := transport.NewHTTPClient(cfg.RequestTimeout)
	llmClient := llm.NewInferenceClient(cfg.Inference, httpClient, logger)

	adapter := chat.NewTurnAdapter(llmClient, cfg.SystemPrompt, logger)
	controls, err := ui.DefaultControls(adapter.DefaultPrompt()).WithOverrides(cfg.Controls)
	if err != nil {
		log.Fatalf("invalid controls config: %v", err)
	}

	chatHandler := ui.NewHandler(ui.HandlerDeps{
		Responder: adapter,
		Controls:  controls,
		Logger:    logger,
	})

	router := httpserver.NewRouter(httpserver.RouterDeps{
		Logger: logger,
		Chat:   chatHandler,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      writeTimeout(cfg.RequestTimeout),
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting",
			slog.String("addr", cfg.HTTPAddr),
			slog.String("model", cfg.Inference.Model),
			slog.String("base_url", cfg.Inference.BaseURL),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}

// writeTimeout ответ модели ждём синхронно, поэтому запись ответа должна
// жить дольше таймаута исходящего запроса. Нулевой таймаут клиента
// означает «без ограничения» и для сервера.
func writeTimeout(clientTimeout time.Duration) time.Duration {
	if clientTimeout <= 0 {
		return 0
	}
	return clientTimeout + 15*time.Second
}
