package config

import (
	"time"

	"stoppilot/internal/indicator"
	"stoppilot/internal/risk"
	"stoppilot/internal/signal"
)

// Config is the full startup configuration.
type Config struct {
	App       AppConfig          `mapstructure:"app"`
	Market    MarketConfig       `mapstructure:"market"`
	Indicator indicator.Settings `mapstructure:"indicator"`
	Signal    signal.Thresholds  `mapstructure:"signal"`
	Risk      RiskConfig         `mapstructure:"risk"`
	Broker    BrokerConfig       `mapstructure:"broker"`
	Notify    NotifyConfig       `mapstructure:"notify"`
	Journal   JournalConfig      `mapstructure:"journal"`
	HTTP      HTTPConfig         `mapstructure:"http"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
	LogPath  string `mapstructure:"log_path"`
}

// MarketConfig drives the signal side: which instruments to watch and how.
type MarketConfig struct {
	Symbols         []string `mapstructure:"symbols"`
	Timeframe       string   `mapstructure:"timeframe"`
	LookbackBars    int      `mapstructure:"lookback_bars"`
	IntervalSeconds int      `mapstructure:"interval_seconds"`
}

func (m MarketConfig) Interval() time.Duration {
	return time.Duration(m.IntervalSeconds) * time.Second
}

// RiskConfig drives the position risk loop.
type RiskConfig struct {
	IntervalSeconds        int                     `mapstructure:"interval_seconds"`
	GatewayTimeoutSeconds  int                     `mapstructure:"gateway_timeout_seconds"`
	BreakerThreshold       int                     `mapstructure:"breaker_threshold"`
	BreakerCooldownSeconds int                     `mapstructure:"breaker_cooldown_seconds"`
	// ProfilesPath points at an external YAML profile document that is
	// watched for changes. Inline profiles below apply when unset.
	ProfilesPath string                  `mapstructure:"profiles_path"`
	Default      risk.Profile            `mapstructure:"default_profile"`
	Profiles     map[string]risk.Profile `mapstructure:"profiles"`
}

func (r RiskConfig) Interval() time.Duration {
	return time.Duration(r.IntervalSeconds) * time.Second
}

func (r RiskConfig) GatewayTimeout() time.Duration {
	return time.Duration(r.GatewayTimeoutSeconds) * time.Second
}

func (r RiskConfig) BreakerCooldown() time.Duration {
	return time.Duration(r.BreakerCooldownSeconds) * time.Second
}

// BrokerConfig selects and parameterizes the gateway backend.
type BrokerConfig struct {
	Backend        string `mapstructure:"backend"` // "binance"
	RESTBaseURL    string `mapstructure:"rest_base_url"`
	APIKey         string `mapstructure:"api_key"`
	APISecret      string `mapstructure:"api_secret"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

func (b BrokerConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

type NotifyConfig struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
}

type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// JournalConfig controls the SQLite signal/action journal. Empty path
// disables journaling.
type JournalConfig struct {
	Path string `mapstructure:"path"`
}

type HTTPConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}
