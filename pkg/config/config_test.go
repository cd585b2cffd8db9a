package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() *Config {
	c := &Config{}
	c.Environment = "test"
	c.Refresh.Interval = time.Minute
	c.Timeframes = []TimeframeConfig{{ID: "1h", Label: "Intraday", Candles: 200}}
	c.Sources = []SourceConfig{{Name: "silverprice", URL: "https://silverprice.org", Timeout: 5 * time.Second}}
	c.Scoring.Weights.Trend = 3
	c.Scoring.Weights.SMA50 = 2
	c.Scoring.Weights.MACD = 2
	c.Scoring.Weights.RSI = 2
	c.Scoring.Weights.ADX = 1
	c.Scoring.Weights.Bollinger = 1
	c.Scoring.Weights.Volume = 1
	c.Scoring.Weights.RiskReward = 2
	c.Scoring.Thresholds.Strong = 0.55
	c.Scoring.Thresholds.Plain = 0.35
	c.Scoring.Thresholds.Weak = 0.15
	c.Scoring.RSIBullish = 60
	c.Scoring.RSIBearish = 40
	c.Scoring.ADXTrending = 25
	c.Scoring.RRAttractive = 1.5
	c.Scoring.ATRStopMultiple = 1.5
	c.Scoring.ATRLevelMaxMultiple = 3
	c.Scoring.SwingWindow = 3
	c.Scoring.ClusterTolerancePct = 0.5
	c.Scoring.MaxLevels = 3
	c.Narrative.Timeout = 30 * time.Second
	return c
}

func TestValidateOK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no timeframes", func(c *Config) { c.Timeframes = nil }},
		{"duplicate timeframe", func(c *Config) {
			c.Timeframes = append(c.Timeframes, c.Timeframes[0])
		}},
		{"short candle window", func(c *Config) { c.Timeframes[0].Candles = 10 }},
		{"unsupported timeframe", func(c *Config) { c.Timeframes[0].ID = "30m" }},
		{"no sources", func(c *Config) { c.Sources = nil }},
		{"zero refresh", func(c *Config) { c.Refresh.Interval = 0 }},
		{"negative weight", func(c *Config) { c.Scoring.Weights.MACD = -1 }},
		{"all weights zero", func(c *Config) {
			c.Scoring.Weights = validConfig().Scoring.Weights
			c.Scoring.Weights.Trend = 0
			c.Scoring.Weights.SMA50 = 0
			c.Scoring.Weights.MACD = 0
			c.Scoring.Weights.RSI = 0
			c.Scoring.Weights.ADX = 0
			c.Scoring.Weights.Bollinger = 0
			c.Scoring.Weights.Volume = 0
			c.Scoring.Weights.RiskReward = 0
		}},
		{"inverted thresholds", func(c *Config) { c.Scoring.Thresholds.Weak = 0.9 }},
		{"rsi bands inverted", func(c *Config) { c.Scoring.RSIBearish = 70 }},
		{"zero tolerance", func(c *Config) { c.Scoring.ClusterTolerancePct = 0 }},
		{"degenerate risk reward bar", func(c *Config) { c.Scoring.RRAttractive = 0 }},
		{"risk reward bar at one", func(c *Config) { c.Scoring.RRAttractive = 1 }},
		{"negative adx gate", func(c *Config) { c.Scoring.ADXTrending = -5 }},
		{"unknown cache backend", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"kafka enabled without topic", func(c *Config) {
			c.Kafka.Enabled = true
			c.Kafka.Brokers = []string{"localhost:9092"}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := validConfig()
			tc.mutate(c)
			if err := c.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestMaxScore(t *testing.T) {
	c := validConfig()
	if got := c.Scoring.MaxScore(); got != 14 {
		t.Fatalf("expected max score 14, got %v", got)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
environment: development
refresh:
  interval: 60s
timeframes:
  - id: 1h
    label: Intraday
    candles: 200
sources:
  - name: silverprice
    url: https://silverprice.org
    timeout: 5s
scoring:
  weights:
    trend: 3
    sma_50: 2
    macd: 2
    rsi: 2
    adx: 1
    bollinger: 1
    volume: 1
    risk_reward: 2
  thresholds:
    strong: 0.55
    plain: 0.35
    weak: 0.15
  rsi_bullish: 60
  rsi_bearish: 40
  adx_trending: 25
  rr_attractive: 1.5
  atr_stop_multiple: 1.5
  atr_level_max_multiple: 3
  swing_window: 3
  cluster_tolerance_pct: 0.5
  max_levels: 3
narrative:
  timeout: 30s
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("CLAUDE_API_KEY", "sk-test")
	t.Setenv("REFRESH_SECONDS", "30")

	c, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Environment != "production" {
		t.Fatalf("expected environment override, got %q", c.Environment)
	}
	if c.Narrative.APIKey != "sk-test" {
		t.Fatalf("expected api key override")
	}
	if c.Refresh.Interval != 30*time.Second {
		t.Fatalf("expected refresh override, got %v", c.Refresh.Interval)
	}
}
