package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. SANDTIMER_BRIDGE_PORT
const EnvPrefix = "SANDTIMER"

// Default values
const (
	DefaultHost            = "127.0.0.1"
	DefaultPort            = 61420
	DefaultTimeout         = 5 * time.Second
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "json"
	DefaultMaxMessageBytes = 1024 * 1024
	DefaultServiceName     = "sandtimer-mcp"
)

// Config is the effective configuration of the server
type Config struct {
	Bridge    BridgeConfig    `mapstructure:"bridge"`
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`

	// File is the config file that was read, empty when none was found
	File string `mapstructure:"-"`
}

// BridgeConfig locates the timer application's command listener
type BridgeConfig struct {
	Host    string        `mapstructure:"host"`
	Port    int           `mapstructure:"port"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LogConfig controls structured logging
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig controls the stdio protocol server
type ServerConfig struct {
	MaxMessageBytes int `mapstructure:"max_message_bytes"`
}

// TelemetryConfig controls opt-in trace export
type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name"`
}

// Entry is one key/value pair of the effective configuration
type Entry struct {
	Key   string
	Value string
}

// Entries returns the configuration as ordered key/value pairs
func (c *Config) Entries() []Entry {
	return []Entry{
		{Key: "bridge.host", Value: c.Bridge.Host},
		{Key: "bridge.port", Value: strconv.Itoa(c.Bridge.Port)},
		{Key: "bridge.timeout", Value: c.Bridge.Timeout.String()},
		{Key: "log.level", Value: c.Log.Level},
		{Key: "log.format", Value: c.Log.Format},
		{Key: "server.max_message_bytes", Value: strconv.Itoa(c.Server.MaxMessageBytes)},
		{Key: "telemetry.otlp_endpoint", Value: c.Telemetry.OTLPEndpoint},
		{Key: "telemetry.service_name", Value: c.Telemetry.ServiceName},
	}
}

// flagKeys maps CLI flag names to config keys
var flagKeys = map[string]string{
	"host":       "bridge.host",
	"port":       "bridge.port",
	"timeout":    "bridge.timeout",
	"log-level":  "log.level",
	"log-format": "log.format",
}

// LoadOptions controls where configuration is read from
type LoadOptions struct {
	// ConfigFile is an explicit config file; it must exist when set
	ConfigFile string

	// Flags are bound over environment and file values when they were set
	Flags *pflag.FlagSet
}

// Load builds the configuration from defaults, an optional config file,
// SANDTIMER_* environment variables and flags, in increasing precedence,
// and validates the result.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if flag := opts.Flags.Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
				}
			}
		}
	}

	file, err := resolveConfigFile(opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = file
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))

	if err := NewConfigValidator().Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		Bridge: BridgeConfig{
			Host:    DefaultHost,
			Port:    DefaultPort,
			Timeout: DefaultTimeout,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Server: ServerConfig{
			MaxMessageBytes: DefaultMaxMessageBytes,
		},
		Telemetry: TelemetryConfig{
			ServiceName: DefaultServiceName,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("bridge.host", d.Bridge.Host)
	v.SetDefault("bridge.port", d.Bridge.Port)
	v.SetDefault("bridge.timeout", d.Bridge.Timeout)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("server.max_message_bytes", d.Server.MaxMessageBytes)
	v.SetDefault("telemetry.otlp_endpoint", d.Telemetry.OTLPEndpoint)
	v.SetDefault("telemetry.service_name", d.Telemetry.ServiceName)
}

// CandidateFiles returns the config files searched when none is given explicitly
func CandidateFiles() []string {
	var candidates []string
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".sandtimer", "config.yaml"))
	}
	return append(candidates, "sandtimer.yaml")
}

func resolveConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return explicit, nil
	}

	for _, candidate := range CandidateFiles() {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("failed to check config file %s: %w", candidate, err)
		}
	}
	return "", nil
}
