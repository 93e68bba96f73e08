package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.TmpDir = filepath.Join(t.TempDir(), "scratch")
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Mode != ModeServer {
		t.Errorf("Mode = %q, want %q", cfg.Mode, ModeServer)
	}
	if cfg.Port != DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port, DefaultPort)
	}
	if cfg.MaxFileSize != DefaultMaxFileSize {
		t.Errorf("MaxFileSize = %d, want %d", cfg.MaxFileSize, DefaultMaxFileSize)
	}
	if cfg.FetchTimeout != 30*time.Second {
		t.Errorf("FetchTimeout = %v, want 30s", cfg.FetchTimeout)
	}
	if cfg.PdfsigBinary != "pdfsig" {
		t.Errorf("PdfsigBinary = %q, want pdfsig", cfg.PdfsigBinary)
	}
	if cfg.OfficeBinary != "libreoffice" {
		t.Errorf("OfficeBinary = %q, want libreoffice", cfg.OfficeBinary)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			modify: func(c *Config) {},
		},
		{
			name:   "valid stdio mode",
			modify: func(c *Config) { c.Mode = ModeStdio },
		},
		{
			name:    "invalid mode",
			modify:  func(c *Config) { c.Mode = "daemon" },
			wantErr: "mode must be",
		},
		{
			name:    "port too low",
			modify:  func(c *Config) { c.Port = 0 },
			wantErr: "port must be",
		},
		{
			name:    "port too high",
			modify:  func(c *Config) { c.Port = 70000 },
			wantErr: "port must be",
		},
		{
			name:   "port ignored in stdio mode",
			modify: func(c *Config) { c.Mode = ModeStdio; c.Port = 0 },
		},
		{
			name:    "empty scratch directory",
			modify:  func(c *Config) { c.TmpDir = "" },
			wantErr: "scratch directory",
		},
		{
			name:    "non-positive file size",
			modify:  func(c *Config) { c.MaxFileSize = 0 },
			wantErr: "file size",
		},
		{
			name:    "non-positive timeout",
			modify:  func(c *Config) { c.SigTimeout = 0 },
			wantErr: "timeouts",
		},
		{
			name:    "invalid log level",
			modify:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCreatesScratchDirectory(t *testing.T) {
	cfg := validConfig(t)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	// the directory must now exist, a second validation passes too
	if err := cfg.Validate(); err != nil {
		t.Errorf("second Validate() error: %v", err)
	}
}

func TestAddress(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Host = "0.0.0.0"
	cfg.Port = 8080
	if got := cfg.Address(); got != "0.0.0.0:8080" {
		t.Errorf("Address() = %q, want 0.0.0.0:8080", got)
	}
}

func TestModeHelpers(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.IsServerMode() || cfg.IsStdioMode() {
		t.Error("default config should be in server mode")
	}
	cfg.Mode = ModeStdio
	if cfg.IsServerMode() || !cfg.IsStdioMode() {
		t.Error("stdio config should be in stdio mode")
	}
}

func TestIsDebug(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.IsDebug() {
		t.Error("default log level should not be debug")
	}
	cfg.LogLevel = "debug"
	if !cfg.IsDebug() {
		t.Error("debug log level not detected")
	}
}
