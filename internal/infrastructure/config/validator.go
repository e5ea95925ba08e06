package config

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"
)

// ConfigValidator validates configuration values
type ConfigValidator struct{}

// NewConfigValidator creates a new configuration validator
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateHost validates the bridge host
func (v *ConfigValidator) ValidateHost(host string) error {
	if strings.TrimSpace(host) == "" {
		return fmt.Errorf("host cannot be empty")
	}
	if strings.ContainsAny(host, " \t\r\n/") {
		return fmt.Errorf("host contains invalid characters: %q", host)
	}
	return nil
}

// ValidatePort validates the bridge port
func (v *ConfigValidator) ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port out of range: %d (must be 1-65535)", port)
	}
	return nil
}

// ValidateTimeout validates the bridge timeout
func (v *ConfigValidator) ValidateTimeout(timeout time.Duration) error {
	maxTimeout := 5 * time.Minute

	if timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if timeout > maxTimeout {
		return fmt.Errorf("timeout too long (maximum 5m)")
	}
	return nil
}

// ValidateLogLevel validates log level value
func (v *ConfigValidator) ValidateLogLevel(level string) error {
	validLevels := []string{"trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled"}

	normalizedLevel := strings.ToLower(strings.TrimSpace(level))

	for _, valid := range validLevels {
		if normalizedLevel == valid {
			return nil
		}
	}

	return fmt.Errorf("invalid log level: %s (valid levels: %s)", level, strings.Join(validLevels, ", "))
}

// ValidateLogFormat validates log format value
func (v *ConfigValidator) ValidateLogFormat(format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("invalid log format: %s (valid formats: json, console)", format)
	}
}

// ValidateMaxMessageBytes validates the largest accepted protocol message
func (v *ConfigValidator) ValidateMaxMessageBytes(size int) error {
	minSize := 1024              // 1KB minimum
	maxSize := 100 * 1024 * 1024 // 100MB maximum

	if size < minSize {
		return fmt.Errorf("max message size too small (minimum 1KB)")
	}
	if size > maxSize {
		return fmt.Errorf("max message size too large (maximum 100MB)")
	}
	return nil
}

// ValidateOTLPEndpoint validates the trace export endpoint; empty disables export
func (v *ConfigValidator) ValidateOTLPEndpoint(endpoint string) error {
	if endpoint == "" {
		return nil
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %q (must be http or https)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must include host")
	}
	return nil
}

// ValidateAll validates every field and returns the failures keyed by config key
func (v *ConfigValidator) ValidateAll(cfg *Config) map[string]error {
	errs := make(map[string]error)

	check := func(key string, err error) {
		if err != nil {
			errs[key] = err
		}
	}

	check("bridge.host", v.ValidateHost(cfg.Bridge.Host))
	check("bridge.port", v.ValidatePort(cfg.Bridge.Port))
	check("bridge.timeout", v.ValidateTimeout(cfg.Bridge.Timeout))
	check("log.level", v.ValidateLogLevel(cfg.Log.Level))
	check("log.format", v.ValidateLogFormat(cfg.Log.Format))
	check("server.max_message_bytes", v.ValidateMaxMessageBytes(cfg.Server.MaxMessageBytes))
	check("telemetry.otlp_endpoint", v.ValidateOTLPEndpoint(cfg.Telemetry.OTLPEndpoint))

	return errs
}

// Validate returns a single error describing every invalid field
func (v *ConfigValidator) Validate(cfg *Config) error {
	errs := v.ValidateAll(cfg)
	if len(errs) == 0 {
		return nil
	}

	keys := make([]string, 0, len(errs))
	for key := range errs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", key, errs[key]))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(parts, "; "))
}
