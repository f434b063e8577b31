package app

import (
	"fmt"

	"stoppilot/internal/config"
	"stoppilot/internal/config/loader"
	"stoppilot/internal/gateway/binance"
	"stoppilot/internal/gateway/broker"
	"stoppilot/internal/gateway/notifier"
	"stoppilot/internal/logger"
	"stoppilot/internal/market"
	"stoppilot/internal/pkg/circuit"
	symbolpkg "stoppilot/internal/pkg/symbol"
	"stoppilot/internal/risk"
	"stoppilot/internal/signal"
	"stoppilot/internal/store/journal"
	statushttp "stoppilot/internal/transport/http"
)

func build(cfg *config.Config) (*App, error) {
	gateway, err := buildGateway(cfg)
	if err != nil {
		return nil, err
	}

	profiles, err := buildProfiles(cfg)
	if err != nil {
		return nil, err
	}

	tracker := risk.NewTracker(profiles)
	breaker := circuit.NewBreaker("gateway-modify", cfg.Risk.BreakerThreshold, cfg.Risk.BreakerCooldown())

	var sink notifier.Sink = notifier.Noop{}
	if cfg.Notify.Telegram.Enabled {
		sink = notifier.NewTelegram(cfg.Notify.Telegram.BotToken, cfg.Notify.Telegram.ChatID)
		logger.Infof("telegram notifications enabled for chat %s", cfg.Notify.Telegram.ChatID)
	}

	executor := risk.NewExecutor(gateway, tracker, sink, breaker)
	executor.SetTimeout(cfg.Risk.GatewayTimeout())

	a := &App{
		cfg:      cfg,
		gateway:  gateway,
		bars:     market.NewMemoryBarStore(),
		settings: cfg.Indicator,
		scorer:   signal.NewScorer(cfg.Signal),
		signals:  signal.NewCache(),
		tracker:  tracker,
		executor: executor,
		journal:  (*journal.Store)(nil),
	}

	if cfg.Journal.Path != "" {
		store, err := journal.NewStore(cfg.Journal.Path)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		a.journalStore = store
		a.journal = store
		logger.Infof("journal enabled at %s", cfg.Journal.Path)
	}

	if cfg.HTTP.Enabled {
		srv, err := statushttp.NewServer(statushttp.ServerConfig{
			Addr:    cfg.HTTP.Addr,
			Signals: a.signals,
			Tracker: tracker,
			Journal: a.journal,
		})
		if err != nil {
			return nil, fmt.Errorf("build status http server: %w", err)
		}
		a.httpSrv = srv
	}

	return a, nil
}

func buildGateway(cfg *config.Config) (broker.Gateway, error) {
	switch cfg.Broker.Backend {
	case "binance":
		return binance.New(binance.Config{
			RESTBaseURL: cfg.Broker.RESTBaseURL,
			APIKey:      cfg.Broker.APIKey,
			APISecret:   cfg.Broker.APISecret,
			HTTPTimeout: cfg.Broker.Timeout(),
		})
	default:
		return nil, fmt.Errorf("unsupported broker backend %q", cfg.Broker.Backend)
	}
}

func buildProfiles(cfg *config.Config) (risk.ProfileSource, error) {
	if cfg.Risk.ProfilesPath != "" {
		l, err := loader.NewProfileLoader(cfg.Risk.ProfilesPath)
		if err != nil {
			return nil, fmt.Errorf("load risk profiles: %w", err)
		}
		return l, nil
	}
	// Config parsers lower-case map keys; the lookup side expects the
	// normalized compact form.
	symbols := make(map[string]risk.Profile, len(cfg.Risk.Profiles))
	for sym, p := range cfg.Risk.Profiles {
		symbols[symbolpkg.Normalize(sym)] = p
	}
	return risk.StaticProfiles{Default: cfg.Risk.Default, Symbols: symbols}, nil
}
