package config

import (
	"stoppilot/internal/risk"
	"stoppilot/internal/signal"
)

func (c *Config) applyDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.Env == "" {
		c.App.Env = "prod"
	}

	if c.Market.Timeframe == "" {
		c.Market.Timeframe = "1m"
	}
	if c.Market.LookbackBars <= 0 {
		c.Market.LookbackBars = 120
	}
	if c.Market.IntervalSeconds <= 0 {
		c.Market.IntervalSeconds = 45
	}

	if c.Risk.IntervalSeconds <= 0 {
		c.Risk.IntervalSeconds = 20
	}
	if c.Risk.GatewayTimeoutSeconds <= 0 {
		c.Risk.GatewayTimeoutSeconds = 8
	}
	if c.Risk.BreakerThreshold <= 0 {
		c.Risk.BreakerThreshold = 5
	}
	if c.Risk.BreakerCooldownSeconds <= 0 {
		c.Risk.BreakerCooldownSeconds = 60
	}
	if c.Risk.Default == (risk.Profile{}) {
		c.Risk.Default = risk.DefaultProfile()
	}

	if c.Signal == (signal.Thresholds{}) {
		c.Signal = signal.DefaultThresholds()
	}

	if c.Broker.Backend == "" {
		c.Broker.Backend = "binance"
	}
	if c.Broker.TimeoutSeconds <= 0 {
		c.Broker.TimeoutSeconds = 8
	}

	if c.HTTP.Enabled && c.HTTP.Addr == "" {
		c.HTTP.Addr = ":9981"
	}
}
