package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"budgetit/internal/core"
	applog "budgetit/internal/log"
)

// EnvPrefix is prepended to every environment variable, e.g. BUDGETIT_DATA_BACKEND.
const EnvPrefix = "BUDGETIT"

// Keys understood in config files, flags and (upper-cased, prefixed) the environment.
const (
	KeyDataBackend        = "data_backend"
	KeySQLiteDBPath       = "sqlite_db_path"
	KeyAMQPURL            = "amqp_url"
	KeyAMQPExchange       = "amqp_exchange"
	KeyAMQPQueue          = "amqp_queue"
	KeyLogLevel           = "log_level"
	KeyLogFormat          = "log_format"
	KeyAnalysisCacheSize  = "analysis_cache_size"
	KeyAnalysisCacheTTL   = "analysis_cache_ttl"
	KeyDefaultGranularity = "default_granularity"
	KeyDedupWindow        = "dedup_window"
)

type Config struct {
	// Backend selection
	DataBackend string

	// Database
	SQLiteDBPath string

	// AMQP, publishing is disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Logging
	LogLevel  string
	LogFormat string

	// Analysis
	AnalysisCacheSize  int
	AnalysisCacheTTL   time.Duration
	DefaultGranularity string

	// Worker
	DedupWindow time.Duration
}

// NewViper returns a viper instance with defaults and environment binding.
// Callers may bind flags on it before calling FromViper.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyDataBackend, "sqlite")
	v.SetDefault(KeySQLiteDBPath, "./data/budgetit.db")
	v.SetDefault(KeyAMQPURL, "")
	v.SetDefault(KeyAMQPExchange, "budgetit")
	v.SetDefault(KeyAMQPQueue, "ledger_events")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyAnalysisCacheSize, 32)
	v.SetDefault(KeyAnalysisCacheTTL, 5*time.Minute)
	v.SetDefault(KeyDefaultGranularity, string(core.Monthly))
	v.SetDefault(KeyDedupWindow, time.Hour)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// FromViper reads a Config out of v.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		DataBackend:        v.GetString(KeyDataBackend),
		SQLiteDBPath:       v.GetString(KeySQLiteDBPath),
		AMQPURL:            v.GetString(KeyAMQPURL),
		AMQPExchange:       v.GetString(KeyAMQPExchange),
		AMQPQueue:          v.GetString(KeyAMQPQueue),
		LogLevel:           v.GetString(KeyLogLevel),
		LogFormat:          v.GetString(KeyLogFormat),
		AnalysisCacheSize:  v.GetInt(KeyAnalysisCacheSize),
		AnalysisCacheTTL:   v.GetDuration(KeyAnalysisCacheTTL),
		DefaultGranularity: v.GetString(KeyDefaultGranularity),
		DedupWindow:        v.GetDuration(KeyDedupWindow),
	}
}

// Load reads defaults, the optional config file and the environment.
// A missing file is only an error when configFile names it explicitly.
func Load(configFile string) (*Config, error) {
	v := NewViper()
	if err := ReadConfigFile(v, configFile); err != nil {
		return nil, err
	}
	return FromViper(v), nil
}

// ReadConfigFile loads configFile into v. With an empty name it looks for
// budgetit.yaml in the working directory and ignores its absence.
func ReadConfigFile(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("budgetit")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	// Validate data backend
	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	// Validate SQLite configuration if backend is sqlite
	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// Validate AMQP if configured
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Validate logging
	if _, err := applog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	// Validate analysis
	if c.AnalysisCacheSize < 0 {
		errs = append(errs, fmt.Sprintf("invalid analysis cache size %d: must not be negative", c.AnalysisCacheSize))
	} else if c.AnalysisCacheSize > 10000 {
		errs = append(errs, fmt.Sprintf("invalid analysis cache size %d: must be at most 10000", c.AnalysisCacheSize))
	}
	if c.AnalysisCacheSize > 0 && c.AnalysisCacheTTL < time.Second {
		errs = append(errs, fmt.Sprintf("invalid analysis cache TTL %v: must be at least 1 second", c.AnalysisCacheTTL))
	}
	if _, err := core.ParseGranularity(c.DefaultGranularity); err != nil {
		errs = append(errs, fmt.Sprintf("invalid default granularity '%s': must be weekly, monthly or yearly", c.DefaultGranularity))
	}

	if c.DedupWindow < time.Second {
		errs = append(errs, fmt.Sprintf("invalid dedup window %v: must be at least 1 second", c.DedupWindow))
	} else if c.DedupWindow > 7*24*time.Hour {
		errs = append(errs, fmt.Sprintf("invalid dedup window %v: must be at most 7 days", c.DedupWindow))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}

// Granularity returns the parsed default granularity, falling back to monthly.
func (c *Config) Granularity() core.Granularity {
	g, err := core.ParseGranularity(c.DefaultGranularity)
	if err != nil {
		return core.Monthly
	}
	return g
}
