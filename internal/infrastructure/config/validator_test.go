package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidator_ValidateOTLPEndpoint(t *testing.T) {
	validator := NewConfigValidator()

	tests := []struct {
		name     string
		endpoint string
		wantErr  bool
		errMsg   string
	}{
		{
			name:     "empty_disables_export",
			endpoint: "",
			wantErr:  false,
		},
		{
			name:     "valid_http_localhost",
			endpoint: "http://localhost:4318",
			wantErr:  false,
		},
		{
			name:     "valid_https_with_path",
			endpoint: "https://otel.example.com/v1/traces",
			wantErr:  false,
		},
		{
			name:     "invalid_scheme",
			endpoint: "grpc://localhost:4317",
			wantErr:  true,
			errMsg:   "unsupported URL scheme",
		},
		{
			name:     "missing_scheme",
			endpoint: "localhost:4318",
			wantErr:  true,
		},
		{
			name:     "missing_host",
			endpoint: "https://",
			wantErr:  true,
			errMsg:   "URL must include host",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateOTLPEndpoint(tt.endpoint)

			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigValidator_ValidatePort(t *testing.T) {
	validator := NewConfigValidator()

	tests := []struct {
		name    string
		port    int
		wantErr bool
	}{
		{name: "default_port", port: 61420, wantErr: false},
		{name: "lowest_port", port: 1, wantErr: false},
		{name: "highest_port", port: 65535, wantErr: false},
		{name: "zero", port: 0, wantErr: true},
		{name: "negative", port: -1, wantErr: true},
		{name: "too_high", port: 65536, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidatePort(tt.port)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigValidator_ValidateHost(t *testing.T) {
	validator := NewConfigValidator()

	assert.NoError(t, validator.ValidateHost("127.0.0.1"))
	assert.NoError(t, validator.ValidateHost("localhost"))
	assert.NoError(t, validator.ValidateHost("::1"))

	err := validator.ValidateHost("  ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "host cannot be empty")

	assert.Error(t, validator.ValidateHost("local host"))
}

func TestConfigValidator_ValidateLogLevel(t *testing.T) {
	validator := NewConfigValidator()

	validLevels := []string{"trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled", "INFO", " Debug "}
	for _, level := range validLevels {
		t.Run("valid_"+level, func(t *testing.T) {
			assert.NoError(t, validator.ValidateLogLevel(level))
		})
	}

	invalidLevels := []string{"", "verbose", "warning", "critical"}
	for _, level := range invalidLevels {
		t.Run("invalid_"+level, func(t *testing.T) {
			err := validator.ValidateLogLevel(level)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "invalid log level")
		})
	}
}

func TestConfigValidator_ValidateLogFormat(t *testing.T) {
	validator := NewConfigValidator()

	assert.NoError(t, validator.ValidateLogFormat("json"))
	assert.NoError(t, validator.ValidateLogFormat("console"))
	assert.NoError(t, validator.ValidateLogFormat("Console"))

	err := validator.ValidateLogFormat("xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log format")
}

func TestConfigValidator_ValidateTimeout(t *testing.T) {
	validator := NewConfigValidator()

	tests := []struct {
		name    string
		timeout time.Duration
		wantErr bool
		errMsg  string
	}{
		{name: "default", timeout: 5 * time.Second, wantErr: false},
		{name: "sub_second", timeout: 250 * time.Millisecond, wantErr: false},
		{name: "maximum", timeout: 5 * time.Minute, wantErr: false},
		{name: "zero", timeout: 0, wantErr: true, errMsg: "must be positive"},
		{name: "negative", timeout: -time.Second, wantErr: true, errMsg: "must be positive"},
		{name: "too_long", timeout: 6 * time.Minute, wantErr: true, errMsg: "timeout too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateTimeout(tt.timeout)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigValidator_ValidateMaxMessageBytes(t *testing.T) {
	validator := NewConfigValidator()

	assert.NoError(t, validator.ValidateMaxMessageBytes(1024))
	assert.NoError(t, validator.ValidateMaxMessageBytes(DefaultMaxMessageBytes))

	err := validator.ValidateMaxMessageBytes(1023)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too small")

	err = validator.ValidateMaxMessageBytes(200 * 1024 * 1024)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestConfigValidator_ValidateAll(t *testing.T) {
	validator := NewConfigValidator()

	t.Run("defaults_are_valid", func(t *testing.T) {
		assert.Empty(t, validator.ValidateAll(Default()))
		assert.NoError(t, validator.Validate(Default()))
	})

	t.Run("reports_every_invalid_field", func(t *testing.T) {
		cfg := Default()
		cfg.Bridge.Host = ""
		cfg.Bridge.Port = 0
		cfg.Log.Format = "xml"

		errs := validator.ValidateAll(cfg)
		assert.Len(t, errs, 3)
		assert.Contains(t, errs, "bridge.host")
		assert.Contains(t, errs, "bridge.port")
		assert.Contains(t, errs, "log.format")

		err := validator.Validate(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration: bridge.host: ")
		assert.Contains(t, err.Error(), "; log.format: ")
	})
}
