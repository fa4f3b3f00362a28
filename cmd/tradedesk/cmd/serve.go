package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/tradedesk/api"
	"github.com/rustyeddy/tradedesk/catalog"
	"github.com/rustyeddy/tradedesk/config"
	"github.com/rustyeddy/tradedesk/ledger"
	"github.com/rustyeddy/tradedesk/market"
	"github.com/rustyeddy/tradedesk/portfolio"
	"github.com/rustyeddy/tradedesk/risk"
	"github.com/rustyeddy/tradedesk/trading"
	"github.com/rustyeddy/tradedesk/vendorapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the trading API server",
	Long: `Start the HTTP API backed by the configured vendor.

Configuration comes from the environment (and a .env file if present), or
from a config file given with --config. Environment variables:

  VENDOR_API_BASE_URL          upstream vendor base URL (required)
  VENDOR_API_KEY               upstream vendor API key
  API_TIMEOUT                  per-request timeout in ms (default 30000)
  API_RETRY_ATTEMPTS           retry attempts for transient failures (default 3)
  CACHE_TTL_SECONDS            catalog snapshot TTL (default 300)
  MAX_PRICE_DEVIATION_PERCENT  deviation guard ceiling (default 2)
  LEDGER_TYPE                  "memory" or "sqlite" (default memory)
  PORT                         listen address (default :8080)`,
	RunE: runServe,
}

var serveConfigPath string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "f", "", "path to config file (YAML or JSON); overrides the environment")
}

func runServe(cmd *cobra.Command, args []string) error {
	var (
		cfg *config.Config
		err error
	)
	if serveConfigPath != "" {
		cfg, err = config.LoadFromFile(serveConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Vendor.BaseURL == "" {
		return fmt.Errorf("vendor base URL is required (VENDOR_API_BASE_URL)")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	vendor := vendorapi.NewClient(vendorapi.Config{
		BaseURL:    cfg.Vendor.BaseURL,
		APIKey:     cfg.Vendor.APIKey,
		Timeout:    cfg.Vendor.Timeout(),
		MaxRetries: cfg.Vendor.RetryAttempts,
		BaseDelay:  cfg.Vendor.RetryBaseDelay(),
	}, logger.Named("vendor"))

	store := market.NewSnapshotStore()
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go store.Janitor(janitorCtx, time.Minute)

	cat := catalog.New(vendor, store, cfg.Cache.TTL(), logger.Named("catalog"))

	var led ledger.Ledger
	if cfg.Ledger.Type == "sqlite" {
		led, err = ledger.NewSQLite(cfg.Ledger.DBPath)
		if err != nil {
			return fmt.Errorf("open ledger: %w", err)
		}
	} else {
		led = ledger.NewMemory()
	}
	defer led.Close()

	trader := trading.New(cat, vendor, led,
		risk.Policy{MaxDeviationPct: cfg.Trading.MaxDeviationPercent},
		logger.Named("trading"))
	ports := portfolio.New(cat, logger.Named("portfolio"))

	srv := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: api.NewServer(cat, trader, ports, logger.Named("api")),
	}

	go func() {
		logger.Info("server started", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}
