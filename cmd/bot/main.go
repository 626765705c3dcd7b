package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"equity-scanner-bot/internal/config"
	"equity-scanner-bot/internal/executor"
	"equity-scanner-bot/internal/logger"
	"equity-scanner-bot/internal/notifier"
	"equity-scanner-bot/internal/portfolio"
	"equity-scanner-bot/internal/scanner"
	"equity-scanner-bot/internal/server"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	must(initializeSystem())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer func() { _ = logger.Shutdown(context.Background()) }()

	cfg, err := loadConfig(ctx)
	must(err)

	st, err := initializeStore(ctx, cfg)
	must(err)

	market := initializeMarketData(ctx, cfg)
	sentiment := initializeNews(ctx, cfg)
	pred := initializePredictor(ctx, cfg)
	notify := initializeNotifier(ctx)

	exec := initializeExecutor(ctx, cfg, st, notify)
	scan := initializeScanner(cfg, market, sentiment, pred)
	exits := initializeExitMonitor(cfg, st, market, exec)

	srv := server.New(scan, exec, st, exits, notify, cfg, os.Getenv(cfg.Server.APIKeyEnv))
	go func() {
		if err := srv.Start(cfg.Server.ListenAddr); err != nil {
			logger.ErrorWithErr(ctx, "HTTP server stopped", err)
			cancel()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	exitTick := time.NewTicker(time.Duration(cfg.Exits.IntervalMinutes) * time.Minute)
	defer exitTick.Stop()
	scanTick := time.NewTicker(time.Duration(cfg.Schedule.ScanIntervalMinutes) * time.Minute)
	defer scanTick.Stop()

	logger.Info(ctx, "Bot started", "mode", cfg.Mode, "sector", cfg.Schedule.ScanSector)

	for {
		select {
		case <-exitTick.C:
			runExitSweep(ctx, exits)

		case <-scanTick.C:
			// Close what needs closing before hunting for new entries.
			runExitSweep(ctx, exits)
			runScan(ctx, cfg, scan, exec, notify)

		case <-sigc:
			logger.Info(ctx, "Shutting down...")
			shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
			_ = srv.Shutdown(shutdownCtx)
			stop()
			return

		case <-ctx.Done():
			return
		}
	}
}

func runExitSweep(ctx context.Context, exits *portfolio.ExitMonitor) {
	reports, err := exits.ScanAndClose(ctx)
	if err != nil {
		logger.ErrorWithErr(ctx, "Exit sweep failed", err)
		return
	}
	for _, r := range reports {
		if r.Action == portfolio.ActionSold {
			logger.Info(ctx, "Position closed", "symbol", r.Symbol, "price", r.Price, "reason", r.Reason)
		}
	}
}

// runScan sweeps the configured sector and routes the best pick into the
// order lifecycle. With approval on, that parks it in the pending queue and
// pings the operator.
func runScan(ctx context.Context, cfg *config.Config, scan *scanner.Scanner, exec *executor.Manager, notify notifier.Notifier) {
	symbols := cfg.StocksBySector(cfg.Schedule.ScanSector)
	result, err := scan.Scan(ctx, symbols)
	if err != nil {
		logger.ErrorWithErr(ctx, "Scan failed", err)
		return
	}

	logger.Info(ctx, "Scan complete", "sector", cfg.Schedule.ScanSector, "candidates", len(result.MarketData))
	if result.BestPick == nil {
		return
	}

	best := *result.BestPick
	_ = notify.Notify(ctx, fmt.Sprintf(
		"*Scan pick* %s\nScore: %d\n%s\nEntry %.2f | SL %.2f | Target %.2f",
		best.Symbol, best.Score, best.Reasons, best.Price, best.StopLoss, best.Target))

	proposal := scan.Proposal(best, cfg.Scanner.DefaultQty)
	if _, err := exec.Execute(ctx, proposal, false); err != nil {
		logger.ErrorWithErr(ctx, "Best pick order failed", err, "symbol", best.Symbol)
	}
}
