package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvVars = []string{
	"ALBUMSVC_CONFIG",
	"ALBUMSVC_SERVER_PORT", "ALBUMSVC_SERVER_HOST", "ALBUMSVC_SERVER_READ_TIMEOUT",
	"ALBUMSVC_SECURITY_ALLOWED_ORIGINS",
	"ALBUMSVC_LOGGING_LEVEL", "ALBUMSVC_LOGGING_OUTPUT",
	"ALBUMSVC_DATABASE_DSN", "ALBUMSVC_DATABASE_EXPOSE_ERRORS",
	"ALBUMSVC_WEBSOCKET_PING_PERIOD", "ALBUMSVC_WEBSOCKET_PONG_WAIT",
	"ALBUMSVC_TELEMETRY_TRACE_EXPORTER",
}

// clearConfigEnv unsets every variable the tests touch and restores the
// original values when the test finishes.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	originalEnv := make(map[string]string)
	for _, envVar := range configEnvVars {
		if val, ok := os.LookupEnv(envVar); ok {
			originalEnv[envVar] = val
		}
		os.Unsetenv(envVar)
	}
	t.Cleanup(func() {
		for _, envVar := range configEnvVars {
			if val, ok := originalEnv[envVar]; ok {
				os.Setenv(envVar, val)
			} else {
				os.Unsetenv(envVar)
			}
		}
	})
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// TestLoad tests the Load function with various scenarios
func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "default configuration with no env vars",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 3000, cfg.Server.Port)
				assert.Equal(t, "", cfg.Server.Host)
				assert.Equal(t, ":3000", cfg.Server.Addr())
				assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
				assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)

				assert.False(t, cfg.Security.RateLimit.Enabled)

				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "console", cfg.Logging.Output)

				assert.Equal(t, "sqlite3", cfg.Database.Driver)
				assert.True(t, cfg.Database.AutoMigrate)
				assert.True(t, cfg.Database.ExposeErrors)

				assert.Equal(t, int64(64*1024), cfg.WebSocket.MaxMessageSize)
				assert.Equal(t, 60*time.Second, cfg.WebSocket.PongWait)
				assert.Equal(t, 54*time.Second, cfg.WebSocket.PingPeriod)

				assert.Equal(t, "albumsvc", cfg.Telemetry.ServiceName)
				assert.Equal(t, "none", cfg.Telemetry.TraceExporter)
				assert.Equal(t, "prometheus", cfg.Telemetry.MetricExporter)
			},
		},
		{
			name: "custom environment variables",
			env: map[string]string{
				"ALBUMSVC_SERVER_PORT":              "9090",
				"ALBUMSVC_SERVER_READ_TIMEOUT":      "30s",
				"ALBUMSVC_SECURITY_ALLOWED_ORIGINS": "http://example.com,https://example.com",
				"ALBUMSVC_LOGGING_LEVEL":            "debug",
				"ALBUMSVC_DATABASE_DSN":             "file::memory:",
				"ALBUMSVC_DATABASE_EXPOSE_ERRORS":   "false",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, []string{"http://example.com", "https://example.com"}, cfg.Security.AllowedOrigins)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "file::memory:", cfg.Database.DSN)
				assert.False(t, cfg.Database.ExposeErrors)
			},
		},
		{
			name: "file overrides defaults",
			file: `
server:
  host: 127.0.0.1
  port: 4000
database:
  dsn: "file:test.db"
telemetry:
  trace_exporter: stdout
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "127.0.0.1:4000", cfg.Server.Addr())
				assert.Equal(t, "file:test.db", cfg.Database.DSN)
				assert.Equal(t, "stdout", cfg.Telemetry.TraceExporter)
				// untouched keys keep their defaults
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "sqlite3", cfg.Database.Driver)
			},
		},
		{
			name: "env overrides file",
			file: "server:\n  port: 4000\n",
			env:  map[string]string{"ALBUMSVC_SERVER_PORT": "5000"},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 5000, cfg.Server.Port)
			},
		},
		{
			name:    "invalid port number",
			env:     map[string]string{"ALBUMSVC_SERVER_PORT": "99999"},
			wantErr: true,
		},
		{
			name:    "zero port number",
			env:     map[string]string{"ALBUMSVC_SERVER_PORT": "0"},
			wantErr: true,
		},
		{
			name:    "non numeric port",
			env:     map[string]string{"ALBUMSVC_SERVER_PORT": "abc"},
			wantErr: true,
		},
		{
			name: "ping period not shorter than pong wait",
			env: map[string]string{
				"ALBUMSVC_WEBSOCKET_PING_PERIOD": "60s",
				"ALBUMSVC_WEBSOCKET_PONG_WAIT":   "60s",
			},
			wantErr: true,
		},
		{
			name:    "unknown trace exporter",
			env:     map[string]string{"ALBUMSVC_TELEMETRY_TRACE_EXPORTER": "jaeger"},
			wantErr: true,
		},
		{
			name:    "file output without path is rejected",
			file:    "logging:\n  output: file\n  file_path: \"\"\n",
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "server: [unterminated",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tt.env {
				os.Setenv(k, v)
			}

			var path string
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := Load(path)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	clearConfigEnv(t)
	path := writeConfigFile(t, "server:\n  port: 4321\n")
	os.Setenv("ALBUMSVC_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 4321, cfg.Server.Port)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	clearConfigEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty dsn",
			mutate:  func(c *Config) { c.Database.DSN = "" },
			wantErr: "database dsn",
		},
		{
			name:    "negative request timeout",
			mutate:  func(c *Config) { c.Server.RequestTimeout = -time.Second },
			wantErr: "request timeout",
		},
		{
			name: "rate limit enabled without burst",
			mutate: func(c *Config) {
				c.Security.RateLimit.Enabled = true
				c.Security.RateLimit.Burst = 0
			},
			wantErr: "rate limit",
		},
		{
			name:    "sample ratio above one",
			mutate:  func(c *Config) { c.Telemetry.SampleRatio = 1.5 },
			wantErr: "sample ratio",
		},
		{
			name:    "unknown metric exporter",
			mutate:  func(c *Config) { c.Telemetry.MetricExporter = "statsd" },
			wantErr: "metric exporter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
