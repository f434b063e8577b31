package config

import (
	"fmt"

	"stoppilot/internal/risk"
	symbolpkg "stoppilot/internal/pkg/symbol"
)

func validate(cfg *Config) error {
	if len(cfg.Market.Symbols) == 0 {
		return fmt.Errorf("market.symbols cannot be empty")
	}
	for _, s := range cfg.Market.Symbols {
		if symbolpkg.Normalize(s) == "" {
			return fmt.Errorf("market.symbols contains a blank entry")
		}
	}

	if cfg.Signal.BuyScore < cfg.Signal.SellScore {
		return fmt.Errorf("signal.buy_score (%d) cannot be below signal.sell_score (%d)",
			cfg.Signal.BuyScore, cfg.Signal.SellScore)
	}

	static := risk.StaticProfiles{Default: cfg.Risk.Default, Symbols: cfg.Risk.Profiles}
	if err := static.Validate(); err != nil {
		return fmt.Errorf("risk config invalid: %w", err)
	}

	switch cfg.Broker.Backend {
	case "binance":
		if cfg.Broker.APIKey == "" || cfg.Broker.APISecret == "" {
			return fmt.Errorf("broker.api_key and broker.api_secret are required for backend %q", cfg.Broker.Backend)
		}
	default:
		return fmt.Errorf("unsupported broker backend %q", cfg.Broker.Backend)
	}

	if cfg.Notify.Telegram.Enabled {
		if cfg.Notify.Telegram.BotToken == "" || cfg.Notify.Telegram.ChatID == "" {
			return fmt.Errorf("notify.telegram enabled but bot_token or chat_id is missing")
		}
	}

	if cfg.HTTP.Enabled && cfg.HTTP.Addr == "" {
		return fmt.Errorf("http.addr is required when http.enabled is true")
	}
	return nil
}
