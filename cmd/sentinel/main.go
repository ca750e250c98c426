package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/arcadia-lab/sentinel-trading/internal/config"
	"github.com/arcadia-lab/sentinel-trading/internal/exchange"
	"github.com/arcadia-lab/sentinel-trading/internal/indicator"
	"github.com/arcadia-lab/sentinel-trading/internal/logger"
	"github.com/arcadia-lab/sentinel-trading/internal/marketdata"
	"github.com/arcadia-lab/sentinel-trading/internal/notify"
	"github.com/arcadia-lab/sentinel-trading/internal/oracle"
	"github.com/arcadia-lab/sentinel-trading/internal/orchestrator"
	"github.com/arcadia-lab/sentinel-trading/internal/store"
	"github.com/arcadia-lab/sentinel-trading/internal/version"
)

const (
	bybitMainnetURL = "https://api.bybit.com"
	bybitTestnetURL = "https://api-testnet.bybit.com"
)

func main() {
	cmd := &cli.Command{
		Name:    "sentinel",
		Usage:   "Signal pipeline: market data, indicators, oracle decisions, confirmed execution",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
				Value:   "config.yaml",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run the scheduler and the webhook server until interrupted",
				Action: runAction,
			},
			{
				Name:  "seed",
				Usage: "Backfill historical candles from the market data provider",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "count",
						Aliases: []string{"n"},
						Usage:   "Number of candles to backfill",
						Value:   200,
					},
				},
				Action: seedAction,
			},
			{
				Name:  "export",
				Usage: "Export the signal history as CSV",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path, or - for stdout",
						Value:   "signals.csv",
					},
				},
				Action: exportAction,
			},
			{
				Name:  "version",
				Usage: "Print the build version",
				Action: func(_ context.Context, _ *cli.Command) error {
					fmt.Println(version.GetVersion())

					return nil
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// app bundles the wired components shared by the subcommands.
type app struct {
	config   config.Config
	logger   *logger.Logger
	store    *store.Store
	exchange *exchange.BybitClient
	provider marketdata.Provider
}

func buildApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.NewLogger()
	if err != nil {
		return nil, err
	}

	st, err := store.NewStore(cfg.DatabasePath, log)
	if err != nil {
		return nil, err
	}

	if err := st.Initialize(); err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.CallTimeout}

	bybit := exchange.NewBybitClient(exchange.BybitConfig{
		APIKey:    cfg.Exchange.APIKey,
		APISecret: cfg.Exchange.APISecret,
		BaseURL:   bybitBaseURL(cfg.Exchange),
	}, httpClient, log)

	var provider marketdata.Provider
	if cfg.MarketData.Provider == "binance" {
		provider = marketdata.NewBinanceProvider()
	} else {
		provider = marketdata.NewBybitProvider(bybit)
	}

	return &app{
		config:   cfg,
		logger:   log,
		store:    st,
		exchange: bybit,
		provider: provider,
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("Failed to close store", zap.Error(err))
	}

	_ = a.logger.Sync()
}

func bybitBaseURL(cfg config.ExchangeConfig) string {
	if cfg.BaseURL != "" {
		return cfg.BaseURL
	}

	if cfg.Testnet {
		return bybitTestnetURL
	}

	return bybitMainnetURL
}

func oracleFromConfig(cfg config.Config, httpClient *http.Client, log *logger.Logger) (*oracle.Client, error) {
	return oracle.NewClient(oracle.Config{
		BaseURL:     cfg.Oracle.BaseURL,
		APIKey:      cfg.Oracle.APIKey,
		Model:       cfg.Oracle.Model,
		Temperature: cfg.Oracle.Temperature,
	}, httpClient, log)
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	a, err := buildApp(cmd.String("config"))
	if err != nil {
		return err
	}
	defer a.close()

	httpClient := &http.Client{Timeout: a.config.CallTimeout}

	oracleClient, err := oracleFromConfig(a.config, httpClient, a.logger)
	if err != nil {
		return err
	}

	telegram := notify.NewTelegramClient(notify.TelegramConfig{
		BotToken: a.config.Telegram.BotToken,
		ChatID:   a.config.Telegram.ChatID,
	}, httpClient, a.logger)

	engine := indicator.NewEngine(a.store.Snapshots(), a.logger)
	orch := orchestrator.New(&a.config, a.store, engine, a.provider, a.exchange, oracleClient, telegram, a.logger)
	server := notify.NewServer(orch, a.exchange, a.config.InternalAPIKey, a.logger)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := server.Start(a.config.Telegram.ListenAddr); err != nil {
			a.logger.Error("Webhook server failed", zap.Error(err))
			stop()
		}
	}()

	err = orch.Run(runCtx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		a.logger.Warn("Webhook server shutdown failed", zap.Error(shutdownErr))
	}

	if err == context.Canceled || runCtx.Err() != nil {
		a.logger.Info("Stopped by signal")

		return nil
	}

	return err
}

func seedAction(ctx context.Context, cmd *cli.Command) error {
	a, err := buildApp(cmd.String("config"))
	if err != nil {
		return err
	}
	defer a.close()

	return seedCandles(ctx, a, int(cmd.Int("count")))
}

// seedBatchSize is the number of candles ingested per store batch.
const seedBatchSize = 100

// seedCandles backfills the trailing count candles. Ingestion is per-row
// tolerant: a failing row is logged by the store and the rest of the batch
// continues.
func seedCandles(ctx context.Context, a *app, count int) error {
	symbol, interval := a.config.Symbol, a.config.Interval

	candles, err := a.provider.GetCandles(ctx, symbol, interval, count)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(len(candles),
		progressbar.OptionSetDescription(fmt.Sprintf("Seeding %s %s", symbol, interval)),
		progressbar.OptionShowCount())

	inserted := 0

	for start := 0; start < len(candles); start += seedBatchSize {
		end := min(start+seedBatchSize, len(candles))
		inserted += a.store.Candles().UpsertBatch(candles[start:end])

		_ = bar.Add(end - start)
	}

	total, err := a.store.Candles().Count(symbol, interval)
	if err != nil {
		return err
	}

	fmt.Printf("\nSeeded %d candles (%d new, %d stored)\n", len(candles), inserted, total)

	return nil
}

func exportAction(_ context.Context, cmd *cli.Command) error {
	a, err := buildApp(cmd.String("config"))
	if err != nil {
		return err
	}
	defer a.close()

	signals, err := a.store.Signals().List()
	if err != nil {
		return err
	}

	output := cmd.String("output")
	if output == "-" {
		return gocsv.Marshal(&signals, os.Stdout)
	}

	file, err := os.Create(output)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&signals, file); err != nil {
		return err
	}

	fmt.Printf("Exported %d signals to %s\n", len(signals), output)

	return nil
}
