package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"logging"`
	Data struct {
		Source string `yaml:"source"` // clickhouse, csv or synthetic
		Symbol string `yaml:"symbol" default:"USDJPY"`
		CSV    struct {
			Path string `yaml:"path"`
		} `yaml:"csv"`
		Synthetic struct {
			Candles int   `yaml:"candles" default:"20000"`
			Seed    int64 `yaml:"seed" default:"42"`
		} `yaml:"synthetic"`
	} `yaml:"data"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		Table            string        `yaml:"table" default:"candles"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic" default:"trendlab.reports"`
		RequiredAcks int      `yaml:"required_acks" default:"1"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"100ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	Redis struct {
		Enabled  bool          `yaml:"enabled"`
		Addr     string        `yaml:"addr" default:"localhost:6379"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		TTL      time.Duration `yaml:"ttl" default:"24h"`
	} `yaml:"redis"`
	Stream struct {
		Enabled        bool          `yaml:"enabled"`
		URL            string        `yaml:"url"`
		Symbols        []string      `yaml:"symbols"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay" default:"5s"`
		PingInterval   time.Duration `yaml:"ping_interval" default:"30s"`
		BufferSize     int           `yaml:"buffer_size" default:"256"`
	} `yaml:"stream"`
	Features struct {
		TenkanPeriod  int  `yaml:"tenkan_period" default:"9"`
		KijunPeriod   int  `yaml:"kijun_period" default:"26"`
		SenkouBPeriod int  `yaml:"senkou_b_period" default:"52"`
		ATRPeriod     int  `yaml:"atr_period" default:"14"`
		ADXPeriod     int  `yaml:"adx_period" default:"14"`
		VolumeWindow  int  `yaml:"volume_window" default:"20"`
		RangeWindow   int  `yaml:"range_window" default:"20"`
		ChikouParity  bool `yaml:"chikou_parity" default:"true"`
	} `yaml:"features"`
	Labels struct {
		ThresholdPips float64 `yaml:"threshold_pips" default:"30"`
		Lookforward   int     `yaml:"lookforward" default:"10"`
		PipValue      float64 `yaml:"pip_value" default:"0.01"`
		SLMultiplier  float64 `yaml:"sl_multiplier" default:"1.5"`
		BiasBand      float64 `yaml:"bias_band" default:"0.1"`
	} `yaml:"labels"`
	Walkforward struct {
		TrainWindowMonths int     `yaml:"train_window_months" default:"3"`
		TestWindowMonths  int     `yaml:"test_window_months" default:"1"`
		MaxFolds          int     `yaml:"max_folds"`
		MinTestSamples    int     `yaml:"min_test_samples" default:"100"`
		DecisionThreshold float64 `yaml:"decision_threshold" default:"0.5"`
		TradingThreshold  float64 `yaml:"trading_threshold" default:"0.72"`
		AcceptAccuracy    float64 `yaml:"accept_accuracy" default:"0.55"`
		Simulation        string  `yaml:"simulation" default:"realized"`
		Seed              int64   `yaml:"seed"`
	} `yaml:"walkforward"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("default config: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Validate required fields
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

	// Override with environment variables
	if v := os.Getenv("DATA_SOURCE"); v != "" {
		c.Data.Source = v
	}
	if v := os.Getenv("SYMBOL"); v != "" {
		c.Data.Symbol = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("STREAM_URL"); v != "" {
		c.Stream.URL = v
	}
	if v := os.Getenv("SYNTHETIC_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse SYNTHETIC_SEED: %w", err)
		}
		c.Data.Synthetic.Seed = seed
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Data.Source == "" {
		return fmt.Errorf("data.source is required")
	}
	switch c.Data.Source {
	case "clickhouse", "csv", "synthetic":
	default:
		return fmt.Errorf("data.source must be 'clickhouse', 'csv' or 'synthetic', got '%s'", c.Data.Source)
	}
	if c.Data.Symbol == "" {
		return fmt.Errorf("data.symbol is required")
	}
	if c.Data.Source == "csv" && c.Data.CSV.Path == "" {
		return fmt.Errorf("data.csv.path is required for the csv source")
	}
	if c.Data.Source == "clickhouse" && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required for the clickhouse source")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Stream.Enabled && c.Stream.URL == "" {
		return fmt.Errorf("stream.url is required when streaming is enabled")
	}
	if c.Walkforward.Simulation != "realized" && c.Walkforward.Simulation != "coinflip" {
		return fmt.Errorf("walkforward.simulation must be 'realized' or 'coinflip', got '%s'", c.Walkforward.Simulation)
	}
	return nil
}
