package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/yuhengc/prepmate/backend/internal/config"
	"github.com/yuhengc/prepmate/backend/internal/handler"
	"github.com/yuhengc/prepmate/backend/internal/logger"
	interviewModel "github.com/yuhengc/prepmate/backend/internal/model/interview"
	evaluatorService "github.com/yuhengc/prepmate/backend/internal/service/evaluator"
	interviewService "github.com/yuhengc/prepmate/backend/internal/service/interview"
	"github.com/yuhengc/prepmate/backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	// Select the session store backend.
	var sessionStore interviewModel.Store
	if cfg.Store.Path != "" {
		sqliteStore, err := store.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			zapLogger.Fatal("failed to open session store", zap.Error(err))
		}
		defer func() { _ = sqliteStore.Close() }()
		sessionStore = sqliteStore
		zapLogger.Info("using sqlite session store", zap.String("path", cfg.Store.Path))
	} else {
		sessionStore = interviewModel.NewMemoryStore()
		zapLogger.Info("using in-memory session store")
	}

	// Initialize the evaluator. Without credentials every turn degrades
	// to the deterministic fallback questions.
	var eval interviewService.Evaluator = evaluatorService.Disabled{}
	if cfg.AI.Enabled() {
		chatModel, err := cfg.AI.NewChatModel(ctx)
		if err != nil {
			zapLogger.Warn("failed to initialize chat model, falling back to disabled evaluator", zap.Error(err))
		} else {
			evalSvc, err := evaluatorService.NewService(ctx, chatModel, zapLogger)
			if err != nil {
				zapLogger.Warn("failed to initialize evaluator, falling back to disabled evaluator", zap.Error(err))
			} else {
				eval = evalSvc
				zapLogger.Info("evaluator initialized", zap.String("model", cfg.AI.Model))
			}
		}
	} else {
		zapLogger.Info("ark credentials not configured, evaluator disabled")
	}

	interviewSvc := interviewService.NewService(sessionStore, eval, interviewService.Config{
		MaxTurns:         cfg.Interview.MaxTurns,
		HistoryWindow:    cfg.Interview.HistoryWindow,
		EvaluatorTimeout: cfg.Interview.EvaluatorTimeout,
	}, zapLogger)

	router := handler.NewRouter(interviewSvc, zapLogger)

	startServer(ctx, cfg.Server, router, zapLogger)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, zapLogger *zap.Logger) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	zapLogger.Info("prepmate backend listening", zap.String("addr", serverCfg.Addr))
	if err := runServer(ctx, srv); err != nil {
		zapLogger.Fatal("server error", zap.Error(err))
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
