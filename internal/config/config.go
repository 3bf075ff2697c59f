package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultWorkers     = 4
	DefaultMaxFileSize = 50 * 1024 * 1024 // 50MB

	// EnvPrefix prefixes every environment variable, e.g. CIRCULAR29_DIR.
	EnvPrefix = "CIRCULAR29"

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Flag and viper keys.
const (
	KeyMode        = "mode"
	KeyHost        = "host"
	KeyPort        = "port"
	KeyDir         = "dir"
	KeyOut         = "out"
	KeyRules       = "rules"
	KeyWorkers     = "workers"
	KeyReports     = "reports"
	KeyLogLevel    = "loglevel"
	KeyMaxFileSize = "maxfilesize"
)

// Config holds all configuration for the converter CLI and tool server
type Config struct {
	// Tool server transport
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Conversion configuration
	InputDirectory  string
	OutputDirectory string // defaults to InputDirectory
	RulesFile       string // optional YAML vocabulary override
	Workers         int
	Reports         bool

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum workbook size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:           ModeStdio,
		Host:           DefaultHost,
		Port:           DefaultPort,
		InputDirectory: currentDir,
		Workers:        DefaultWorkers,
		Reports:        true,
		Version:        "1.0.0",
		ServerName:     "circular29",
		LogLevel:       DefaultLogLevel,
		MaxFileSize:    DefaultMaxFileSize,
	}
}

// RegisterFlags defines every configuration flag on fs with cfg's values as
// defaults. Pass a cobra command's PersistentFlags().
func RegisterFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.String(KeyMode, cfg.Mode, "Tool server mode: 'stdio' for standard I/O, 'server' for HTTP/SSE")
	fs.String(KeyHost, cfg.Host, "Tool server host address (server mode only)")
	fs.Int(KeyPort, cfg.Port, "Tool server port (server mode only)")
	fs.String(KeyDir, cfg.InputDirectory, "Directory containing Form 3 workbooks")
	fs.String(KeyOut, cfg.OutputDirectory, "Directory for Circular 29 output (default: input directory)")
	fs.String(KeyRules, cfg.RulesFile, "YAML file overriding the matching vocabulary")
	fs.Int(KeyWorkers, cfg.Workers, "Number of workbooks converted in parallel")
	fs.Bool(KeyReports, cfg.Reports, "Write per-file conversion reports in batch mode")
	fs.String(KeyLogLevel, cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.Int64(KeyMaxFileSize, cfg.MaxFileSize, "Maximum workbook size in bytes")
}

// Load resolves configuration from defaults, CIRCULAR29_* environment
// variables and the flags registered on fs, in increasing precedence. Flags
// missing from fs are skipped. The result is validated.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	setupViperEnvironment(v, cfg)
	if err := bindFlagsToViper(v, fs); err != nil {
		return nil, err
	}
	populateConfigFromViper(v, cfg)

	if cfg.InputDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.InputDirectory); err == nil {
			cfg.InputDirectory = expandedPath
		}
	}
	if cfg.OutputDirectory == "" {
		cfg.OutputDirectory = cfg.InputDirectory
	} else if expandedPath, err := filepath.Abs(cfg.OutputDirectory); err == nil {
		cfg.OutputDirectory = expandedPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault(KeyMode, cfg.Mode)
	v.SetDefault(KeyHost, cfg.Host)
	v.SetDefault(KeyPort, cfg.Port)
	v.SetDefault(KeyDir, cfg.InputDirectory)
	v.SetDefault(KeyOut, cfg.OutputDirectory)
	v.SetDefault(KeyRules, cfg.RulesFile)
	v.SetDefault(KeyWorkers, cfg.Workers)
	v.SetDefault(KeyReports, cfg.Reports)
	v.SetDefault(KeyLogLevel, cfg.LogLevel)
	v.SetDefault(KeyMaxFileSize, cfg.MaxFileSize)
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper(v *viper.Viper, fs *pflag.FlagSet) error {
	if fs == nil {
		return nil
	}
	keys := []string{
		KeyMode, KeyHost, KeyPort, KeyDir, KeyOut, KeyRules,
		KeyWorkers, KeyReports, KeyLogLevel, KeyMaxFileSize,
	}
	for _, key := range keys {
		flag := fs.Lookup(key)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", key, err)
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(v *viper.Viper, cfg *Config) {
	cfg.Mode = v.GetString(KeyMode)
	cfg.Host = v.GetString(KeyHost)
	cfg.Port = v.GetInt(KeyPort)
	cfg.InputDirectory = v.GetString(KeyDir)
	cfg.OutputDirectory = v.GetString(KeyOut)
	cfg.RulesFile = v.GetString(KeyRules)
	cfg.Workers = v.GetInt(KeyWorkers)
	cfg.Reports = v.GetBool(KeyReports)
	cfg.LogLevel = v.GetString(KeyLogLevel)
	cfg.MaxFileSize = v.GetInt64(KeyMaxFileSize)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.InputDirectory == "" {
		return errors.New("input directory cannot be empty")
	}
	info, err := os.Stat(c.InputDirectory)
	if err != nil {
		return fmt.Errorf("cannot access input directory %s: %w", c.InputDirectory, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("input path is not a directory: %s", c.InputDirectory)
	}

	if c.OutputDirectory == "" {
		return errors.New("output directory cannot be empty")
	}
	// Check if output directory exists, create if it doesn't
	if _, err := os.Stat(c.OutputDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.OutputDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create output directory %s: %w", c.OutputDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access output directory %s: %w", c.OutputDirectory, err)
	}

	if c.RulesFile != "" {
		if _, err := os.Stat(c.RulesFile); err != nil {
			return fmt.Errorf("cannot access rules file %s: %w", c.RulesFile, err)
		}
	}

	if c.Workers <= 0 {
		return errors.New("workers must be positive")
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
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

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, InputDirectory: %s, OutputDirectory: %s, RulesFile: %s, Workers: %d, "+
		"Reports: %t, LogLevel: %s, MaxFileSize: %d}",
		c.Mode, c.InputDirectory, c.OutputDirectory, c.RulesFile, c.Workers,
		c.Reports, c.LogLevel, c.MaxFileSize)
}

// IsServerMode returns true if the tool server runs over HTTP
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the tool server runs over stdio
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
