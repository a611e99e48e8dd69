package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Rajchodisetti/paper-trader/internal/config"
	"github.com/Rajchodisetti/paper-trader/internal/engine"
	"github.com/Rajchodisetti/paper-trader/internal/feed"
	"github.com/Rajchodisetti/paper-trader/internal/observ"
	"github.com/Rajchodisetti/paper-trader/internal/risk"
	"github.com/Rajchodisetti/paper-trader/internal/scoring"
	"github.com/Rajchodisetti/paper-trader/internal/server"
)

func main() {
	var cfgPath string
	var listenAddr string
	var symbolsFlag string
	flag.StringVar(&cfgPath, "config", "config.example.yaml", "config path")
	flag.StringVar(&listenAddr, "listen", "", "override server listen address")
	flag.StringVar(&symbolsFlag, "symbols", "", "override symbol universe (comma-separated)")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		// Bounds violations are programming/config errors: refuse to start.
		log.Fatal().Err(err).Str("path", cfgPath).Msg("load config")
	}

	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if listenAddr != "" {
		cfg.Server.Addr = listenAddr
	}
	if symbolsFlag != "" {
		cfg.Symbols = strings.Split(strings.ToUpper(symbolsFlag), ",")
	}

	observ.InitLogging(cfg.Logging.Level, cfg.Logging.Format)

	client := feed.NewCached(feed.NewHTTPClient(feed.HTTPConfig{
		BaseURL:          cfg.Feed.BaseURL,
		VsCurrency:       cfg.Feed.VsCurrency,
		Timeout:          time.Duration(cfg.Feed.TimeoutMs) * time.Millisecond,
		RequestsPerMin:   cfg.Feed.RequestsPerMin,
		BreakerThreshold: cfg.Feed.BreakerThreshold,
		BreakerTimeout:   time.Duration(cfg.Feed.BreakerTimeoutMs) * time.Millisecond,
	}))

	scorer := scoring.NewEngine(scoring.Config{
		MinSamples:     cfg.Scoring.MinSamples,
		MomentumLook:   cfg.Scoring.MomentumLook,
		FastEMA:        cfg.Scoring.FastEMA,
		SlowEMA:        cfg.Scoring.SlowEMA,
		VolWindow:      cfg.Scoring.VolWindow,
		MomentumWeight: cfg.Scoring.MomentumWeight,
		TrendWeight:    cfg.Scoring.TrendWeight,
		VolWeight:      cfg.Scoring.VolWeight,
	})

	adaptive := risk.NewAdaptive(risk.AdaptiveConfig{
		MinAggression:     cfg.Risk.MinAggression,
		MaxAggression:     cfg.Risk.MaxAggression,
		MinEntryThreshold: cfg.Risk.MinEntryThresh,
		MaxEntryThreshold: cfg.Risk.MaxEntryThresh,
		MinSampleTrades:   cfg.Risk.MinSampleTrades,
		HighWatermark:     cfg.Risk.HighWatermark,
		LowWatermark:      cfg.Risk.LowWatermark,
		MaxDrawdown:       cfg.Risk.MaxDrawdown,
		Cooldown:          time.Duration(cfg.Risk.CooldownSec) * time.Second,
	})

	eng := engine.New(engine.Config{
		Symbols:         cfg.Symbols,
		Interval:        time.Duration(cfg.Scheduler.IntervalSec) * time.Second,
		Jitter:          time.Duration(cfg.Scheduler.JitterSec) * time.Second,
		HistorySize:     cfg.HistorySize,
		MaxPositions:    cfg.Risk.MaxPositions,
		TrailTriggerPct: cfg.Risk.TrailTriggerPct,
		TrailPct:        cfg.Risk.TrailPct,
		InitialCash:     cfg.Risk.InitialCash,
	}, client, scorer, risk.NewSizer(cfg.Risk.MinTradeUSD), adaptive, risk.Policy{
		Aggression:     cfg.Risk.Aggression,
		EntryThreshold: cfg.Risk.EntryThreshold,
		ExitThreshold:  cfg.Risk.ExitThreshold,
		TakeProfitPct:  cfg.Risk.TakeProfitPct,
		StopLossPct:    cfg.Risk.StopLossPct,
	})

	srv := server.New(server.Config{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutMs) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutMs) * time.Millisecond,
		StaleAfter:   time.Duration(cfg.Server.StaleAfterSec) * time.Second,
	}, eng)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil {
			log.Error().Err(err).Msg("reporting server failed")
			stop()
		}
	}()

	eng.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
}
