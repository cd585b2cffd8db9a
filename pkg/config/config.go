package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"SilverFetch/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Host            string        `yaml:"host"`
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		AllowedOrigins  []string      `yaml:"allowed_origins"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Refresh struct {
		Interval time.Duration `yaml:"interval"`
	} `yaml:"refresh"`
	Timeframes []TimeframeConfig `yaml:"timeframes"`
	Sources    []SourceConfig    `yaml:"sources"`
	Scoring    ScoringConfig     `yaml:"scoring"`
	Narrative  struct {
		APIKey      string        `yaml:"api_key"`
		BaseURL     string        `yaml:"base_url"`
		Model       string        `yaml:"model"`
		MaxTokens   int           `yaml:"max_tokens"`
		Temperature float64       `yaml:"temperature"`
		Timeout     time.Duration `yaml:"timeout"`
	} `yaml:"narrative"`
	Cache struct {
		Backend string        `yaml:"backend"` // memory, redis, layered
		TTL     time.Duration `yaml:"ttl"`
		Redis   struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic"`
		Compression  string        `yaml:"compression"`
		RequiredAcks int           `yaml:"required_acks"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		Async        bool          `yaml:"async"`
	} `yaml:"kafka"`
	History struct {
		Enabled    bool `yaml:"enabled"`
		ClickHouse struct {
			Host         string        `yaml:"host"`
			Port         int           `yaml:"port"`
			Database     string        `yaml:"database"`
			User         string        `yaml:"user"`
			Password     string        `yaml:"password"`
			DialTimeout  time.Duration `yaml:"dial_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
		} `yaml:"clickhouse"`
	} `yaml:"history"`
}

// TimeframeConfig declares one timeframe the scheduler evaluates.
type TimeframeConfig struct {
	ID      string `yaml:"id"`
	Label   string `yaml:"label"`
	Candles int    `yaml:"candles"`
}

// supportedTimeframes mirrors the timeframe enum the API serves. A configured
// timeframe outside this set would be evaluated but unreachable by clients, so
// it is rejected at startup.
var supportedTimeframes = map[string]bool{
	"15m": true,
	"1h":  true,
	"4h":  true,
	"1d":  true,
	"1w":  true,
}

// SourceConfig declares one spot price source adapter.
type SourceConfig struct {
	Name    string        `yaml:"name"`
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// ScoringConfig holds the vote weights and mapping thresholds. Weights and
// thresholds are policy, kept out of code so they are reviewable and testable
// in isolation.
type ScoringConfig struct {
	Weights struct {
		Trend      float64 `yaml:"trend"`
		SMA50      float64 `yaml:"sma_50"`
		MACD       float64 `yaml:"macd"`
		RSI        float64 `yaml:"rsi"`
		ADX        float64 `yaml:"adx"`
		Bollinger  float64 `yaml:"bollinger"`
		Volume     float64 `yaml:"volume"`
		RiskReward float64 `yaml:"risk_reward"`
	} `yaml:"weights"`
	// Normalized-score boundaries: |score|/max ≥ Strong → STRONG BUY/SELL,
	// ≥ Plain → BUY/SELL, ≥ Weak → WEAK BUY/SELL, below → HOLD.
	Thresholds struct {
		Strong float64 `yaml:"strong"`
		Plain  float64 `yaml:"plain"`
		Weak   float64 `yaml:"weak"`
	} `yaml:"thresholds"`
	RSIBullish          float64 `yaml:"rsi_bullish"`
	RSIBearish          float64 `yaml:"rsi_bearish"`
	ADXTrending         float64 `yaml:"adx_trending"`
	RRAttractive        float64 `yaml:"rr_attractive"`
	ATRStopMultiple     float64 `yaml:"atr_stop_multiple"`
	ATRLevelMaxMultiple float64 `yaml:"atr_level_max_multiple"`
	SwingWindow         int     `yaml:"swing_window"`
	ClusterTolerancePct float64 `yaml:"cluster_tolerance_pct"`
	MaxLevels           int     `yaml:"max_levels"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("ENVIRONMENT"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("CLAUDE_API_KEY"); v != "" {
		c.Narrative.APIKey = v
	}
	if v := os.Getenv("REFRESH_SECONDS"); v != "" {
		if sec := util.ParseIntDefault(v, 0); sec > 0 {
			c.Refresh.Interval = time.Duration(sec) * time.Second
		}
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("FRONTEND_URL"); v != "" {
		c.Server.AllowedOrigins = []string{v}
	}

	return c, nil
}

// Validate checks if the configuration is valid. Scoring misconfiguration is
// fatal: the service must refuse to start rather than run with undefined
// scoring behavior.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Refresh.Interval <= 0 {
		return fmt.Errorf("refresh.interval must be positive")
	}
	if len(c.Timeframes) == 0 {
		return fmt.Errorf("timeframes cannot be empty")
	}
	seen := make(map[string]bool, len(c.Timeframes))
	for _, tf := range c.Timeframes {
		if tf.ID == "" {
			return fmt.Errorf("timeframe id is required")
		}
		if !supportedTimeframes[tf.ID] {
			return fmt.Errorf("unsupported timeframe %q", tf.ID)
		}
		if seen[tf.ID] {
			return fmt.Errorf("duplicate timeframe %q", tf.ID)
		}
		seen[tf.ID] = true
		if tf.Candles < 60 {
			return fmt.Errorf("timeframe %q: candles must be >= 60, got %d", tf.ID, tf.Candles)
		}
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("sources cannot be empty")
	}
	for _, s := range c.Sources {
		if s.Name == "" || s.URL == "" {
			return fmt.Errorf("source name and url are required")
		}
	}
	if err := c.Scoring.validate(); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	if c.Narrative.Timeout <= 0 {
		return fmt.Errorf("narrative.timeout must be positive")
	}
	switch c.Cache.Backend {
	case "", "memory", "redis", "layered":
	default:
		return fmt.Errorf("cache.backend must be memory, redis, or layered, got %q", c.Cache.Backend)
	}
	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		return fmt.Errorf("kafka.brokers and kafka.topic are required when kafka is enabled")
	}
	if c.History.Enabled && (c.History.ClickHouse.Host == "" || c.History.ClickHouse.Database == "") {
		return fmt.Errorf("history.clickhouse.host and database are required when history is enabled")
	}
	return nil
}

func (s *ScoringConfig) validate() error {
	weights := []struct {
		name  string
		value float64
	}{
		{"trend", s.Weights.Trend},
		{"sma_50", s.Weights.SMA50},
		{"macd", s.Weights.MACD},
		{"rsi", s.Weights.RSI},
		{"adx", s.Weights.ADX},
		{"bollinger", s.Weights.Bollinger},
		{"volume", s.Weights.Volume},
		{"risk_reward", s.Weights.RiskReward},
	}
	var total float64
	for _, w := range weights {
		if w.value < 0 {
			return fmt.Errorf("weight %s must be non-negative", w.name)
		}
		total += w.value
	}
	if total == 0 {
		return fmt.Errorf("at least one weight must be positive")
	}
	t := s.Thresholds
	if !(0 < t.Weak && t.Weak < t.Plain && t.Plain < t.Strong && t.Strong <= 1) {
		return fmt.Errorf("thresholds must satisfy 0 < weak < plain < strong <= 1")
	}
	if s.RSIBearish >= s.RSIBullish {
		return fmt.Errorf("rsi_bearish must be below rsi_bullish")
	}
	if s.SwingWindow < 1 || s.SwingWindow > 10 {
		return fmt.Errorf("swing_window must be in [1,10]")
	}
	if s.ClusterTolerancePct <= 0 {
		return fmt.Errorf("cluster_tolerance_pct must be positive")
	}
	if s.MaxLevels < 1 {
		return fmt.Errorf("max_levels must be at least 1")
	}
	if s.ATRStopMultiple <= 0 || s.ATRLevelMaxMultiple <= 0 {
		return fmt.Errorf("atr multiples must be positive")
	}
	// The risk/reward vote compares against 1/rr_attractive, so a ratio at or
	// below 1 degenerates into an unconditional vote.
	if s.RRAttractive <= 1 {
		return fmt.Errorf("rr_attractive must be greater than 1")
	}
	if s.ADXTrending < 0 {
		return fmt.Errorf("adx_trending must be non-negative")
	}
	return nil
}

// MaxScore is the sum of all absolute vote weights: the theoretical maximum
// score magnitude, fixed per configuration.
func (s *ScoringConfig) MaxScore() float64 {
	return s.Weights.Trend + s.Weights.SMA50 + s.Weights.MACD + s.Weights.RSI +
		s.Weights.ADX + s.Weights.Bollinger + s.Weights.Volume + s.Weights.RiskReward
}
