package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"equity-scanner-bot/internal/config"
	"equity-scanner-bot/internal/executor"
	"equity-scanner-bot/internal/logger"
	"equity-scanner-bot/internal/marketdata"
	"equity-scanner-bot/internal/news"
	"equity-scanner-bot/internal/notifier"
	"equity-scanner-bot/internal/portfolio"
	"equity-scanner-bot/internal/predictor"
	"equity-scanner-bot/internal/scanner"
	"equity-scanner-bot/internal/store"
)

// initializeSystem loads the environment and brings up logging.
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

func initializeStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	st, err := store.New(store.Options{
		Backend:        cfg.Storage.Backend,
		Dir:            cfg.Storage.Dir,
		DSN:            cfg.Storage.DSN,
		InitialBalance: cfg.Paper.InitialBalance,
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "Store ready", "backend", cfg.Storage.Backend)
	return st, nil
}

func initializeMarketData(ctx context.Context, cfg *config.Config) marketdata.Provider {
	if cfg.DataSource == "YAHOO" {
		logger.Info(ctx, "Using Yahoo Finance market data")
		return marketdata.NewYahoo(cfg.Scanner.HistoryDays)
	}
	logger.Info(ctx, "Using STATIC synthetic market data for testing")
	return marketdata.NewStatic(cfg.Scanner.HistoryDays)
}

func initializeNews(ctx context.Context, cfg *config.Config) news.Provider {
	if !cfg.News.Enabled {
		logger.Info(ctx, "News sentiment disabled - scoring without it")
		return news.Noop{}
	}
	return news.NewService(&news.ServiceConfig{
		MaxHeadlines:   cfg.News.MaxHeadlines,
		CacheDuration:  time.Duration(cfg.News.CacheMinutes) * time.Minute,
		ScraperTimeout: 30 * time.Second,
		Enabled:        true,
	})
}

func initializePredictor(ctx context.Context, cfg *config.Config) predictor.Predictor {
	if cfg.Predictor.Provider == "HTTP" && cfg.Predictor.URL != "" {
		logger.Info(ctx, "Using HTTP model predictor", "url", cfg.Predictor.URL)
		return predictor.NewHTTP(cfg.Predictor.URL)
	}
	logger.Warn(ctx, "No predictor configured - using Noop (never predicts up)")
	return predictor.Noop{}
}

func initializeNotifier(ctx context.Context) notifier.Notifier {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	chatID := os.Getenv("TELEGRAM_CHAT_ID")
	if token == "" || chatID == "" {
		logger.Warn(ctx, "Telegram not configured - notifications disabled")
		return notifier.Noop{}
	}

	tg, err := notifier.NewTelegram(token, chatID)
	if err != nil {
		logger.ErrorWithErr(ctx, "Telegram setup failed - notifications disabled", err)
		return notifier.Noop{}
	}
	return tg
}

func initializeExecutor(ctx context.Context, cfg *config.Config, st store.Store, n notifier.Notifier) *executor.Manager {
	opts := executor.Options{
		RequireApproval: cfg.Paper.RequireApproval,
	}

	if cfg.Mode == "LIVE" {
		apiKey := os.Getenv("KITE_API_KEY")
		accessToken := os.Getenv("KITE_ACCESS_TOKEN")
		if apiKey != "" && accessToken != "" {
			opts.Live = true
			opts.Backend = executor.NewKite(apiKey, accessToken)
			logger.Warn(ctx, "LIVE mode - orders will reach the broker")
		} else {
			logger.Warn(ctx, "LIVE mode requested without broker credentials - falling back to paper")
		}
	} else {
		logger.Info(ctx, "PAPER mode - trades settle against the virtual balance")
	}

	return executor.NewManager(st, n, opts)
}

func initializeScanner(cfg *config.Config, market marketdata.Provider, sentiment news.Provider, pred predictor.Predictor) *scanner.Scanner {
	return scanner.New(market, sentiment, pred, scanner.Options{
		MinScore:   cfg.Scanner.MinScore,
		DefaultQty: cfg.Scanner.DefaultQty,
		StopATR:    cfg.Risk.StopATR,
		TargetATR:  cfg.Risk.TargetATR,
	})
}

func initializeExitMonitor(cfg *config.Config, st store.Store, market marketdata.Provider, exec *executor.Manager) *portfolio.ExitMonitor {
	return portfolio.NewExitMonitor(st, market, exec, cfg.Exits.TargetPct, cfg.Exits.StopLossPct)
}
