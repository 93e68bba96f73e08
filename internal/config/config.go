package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeServer = "server"
	ModeStdio  = "stdio"

	// Default values
	DefaultPort           = 3000
	DefaultHost           = "127.0.0.1"
	DefaultLogLevel       = "info"
	DefaultMaxFileSize    = 100 * 1024 * 1024 // 100MB
	DefaultFetchTimeout   = 30 * time.Second
	DefaultConvertTimeout = 60 * time.Second
	DefaultSigTimeout     = 15 * time.Second

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the document extraction service
type Config struct {
	// Server configuration
	Mode   string // "server" for HTTP, "stdio" for MCP
	Host   string
	Port   int
	APIKey string

	// Extraction configuration
	TmpDir         string
	MaxFileSize    int64 // Maximum document size in bytes
	FetchTimeout   time.Duration
	ConvertTimeout time.Duration
	SigTimeout     time.Duration

	// External tools
	PdfsigBinary string
	OfficeBinary string

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Mode:           ModeServer,
		Host:           DefaultHost,
		Port:           DefaultPort,
		TmpDir:         filepath.Join(os.TempDir(), "docmeta"),
		MaxFileSize:    DefaultMaxFileSize,
		FetchTimeout:   DefaultFetchTimeout,
		ConvertTimeout: DefaultConvertTimeout,
		SigTimeout:     DefaultSigTimeout,
		PdfsigBinary:   "pdfsig",
		OfficeBinary:   "libreoffice",
		Version:        "1.0.0",
		ServerName:     "docmeta",
		LogLevel:       DefaultLogLevel,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand the scratch directory path
	if cfg.TmpDir != "" {
		if expandedPath, err := filepath.Abs(cfg.TmpDir); err == nil {
			cfg.TmpDir = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix("DOCMETA")
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("apikey", cfg.APIKey)
	viper.SetDefault("tmpdir", cfg.TmpDir)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("fetchtimeout", cfg.FetchTimeout)
	viper.SetDefault("converttimeout", cfg.ConvertTimeout)
	viper.SetDefault("sigtimeout", cfg.SigTimeout)
	viper.SetDefault("pdfsig", cfg.PdfsigBinary)
	viper.SetDefault("office", cfg.OfficeBinary)
	viper.SetDefault("loglevel", cfg.LogLevel)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Service mode: 'server' for HTTP, 'stdio' for MCP standard I/O")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("apikey", cfg.APIKey, "API key required on extraction requests (empty disables the check)")
	pflag.String("tmpdir", cfg.TmpDir, "Scratch directory for external tool invocations")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum document size in bytes")
	pflag.Duration("fetchtimeout", cfg.FetchTimeout, "Timeout for fetching source documents")
	pflag.Duration("converttimeout", cfg.ConvertTimeout, "Timeout for office-to-PDF conversion")
	pflag.Duration("sigtimeout", cfg.SigTimeout, "Timeout for signature verification")
	pflag.String("pdfsig", cfg.PdfsigBinary, "Path to the pdfsig binary")
	pflag.String("office", cfg.OfficeBinary, "Path to the LibreOffice binary")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range []string{
		"mode", "host", "port", "apikey", "tmpdir", "maxfilesize",
		"fetchtimeout", "converttimeout", "sigtimeout", "pdfsig", "office", "loglevel",
	} {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.APIKey = viper.GetString("apikey")
	cfg.TmpDir = viper.GetString("tmpdir")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.FetchTimeout = viper.GetDuration("fetchtimeout")
	cfg.ConvertTimeout = viper.GetDuration("converttimeout")
	cfg.SigTimeout = viper.GetDuration("sigtimeout")
	cfg.PdfsigBinary = viper.GetString("pdfsig")
	cfg.OfficeBinary = viper.GetString("office")
	cfg.LogLevel = viper.GetString("loglevel")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeServer && c.Mode != ModeStdio {
		return errors.New("mode must be either 'server' or 'stdio'")
	}

	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.TmpDir == "" {
		return errors.New("scratch directory cannot be empty")
	}
	if _, err := os.Stat(c.TmpDir); os.IsNotExist(err) {
		if err := os.MkdirAll(c.TmpDir, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create scratch directory %s: %w", c.TmpDir, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access scratch directory %s: %w", c.TmpDir, err)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if c.FetchTimeout <= 0 || c.ConvertTimeout <= 0 || c.SigTimeout <= 0 {
		return errors.New("timeouts must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// IsServerMode returns true if the service runs the HTTP server
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the service runs as an MCP stdio server
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, TmpDir: %s, LogLevel: %s, MaxFileSize: %d}",
		c.Mode, c.Host, c.Port, c.TmpDir, c.LogLevel, c.MaxFileSize)
}
