package config

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Global settings
	Verbose bool `mapstructure:"verbose"`

	// GDB subprocess settings
	GDB GDBConfig `mapstructure:"gdb"`

	// Server transport settings
	Server ServerConfig `mapstructure:"server"`
}

// GDBConfig holds the debugger subprocess settings
type GDBConfig struct {
	Path             string   `mapstructure:"path"`
	ExtraArgs        []string `mapstructure:"extra_args"`
	CommandTimeout   string   `mapstructure:"command_timeout"`
	InterruptTimeout string   `mapstructure:"interrupt_timeout"`
	SessionTTL       string   `mapstructure:"session_ttl"`
}

// ServerConfig holds the MCP transport settings
type ServerConfig struct {
	Transport   string `mapstructure:"transport"`
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	MountPath   string `mapstructure:"mount_path"`
	SSEPath     string `mapstructure:"sse_path"`
	MessagePath string `mapstructure:"message_path"`
	HTTPPath    string `mapstructure:"http_path"`
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		Verbose: false,
		GDB: GDBConfig{
			Path:             "pwndbg",
			CommandTimeout:   "5s",
			InterruptTimeout: "1s",
			SessionTTL:       "30m",
		},
		Server: ServerConfig{
			Transport:   "",
			Host:        "0.0.0.0",
			Port:        1111,
			MountPath:   "/",
			SSEPath:     "/sse",
			MessagePath: "/messages/",
			HTTPPath:    "/mcp",
		},
	}
}

// Duration parses a duration field, falling back when unset or malformed.
func Duration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Load loads configuration from files and environment
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and type
	v.SetConfigName("gdbmcp")
	v.SetConfigType("yaml")

	// Add config paths (in order of precedence, lowest first)
	// 1. System-wide config
	v.AddConfigPath("/etc/gdbmcp/")
	// 2. User config directory
	if configDir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(configDir, "gdbmcp"))
	}
	// 3. Home directory (as .gdbmcp.yaml)
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
		v.SetConfigName(".gdbmcp")
	}
	// 4. Current directory
	v.AddConfigPath(".")

	// Environment variables
	v.SetEnvPrefix("GDBMCP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Bind specific environment variables
	v.BindEnv("verbose", "GDBMCP_VERBOSE")
	v.BindEnv("gdb.path", "GDBMCP_GDB_PATH")
	v.BindEnv("server.transport", "GDBMCP_TRANSPORT")
	v.BindEnv("server.host", "GDBMCP_HOST")
	v.BindEnv("server.port", "GDBMCP_PORT")

	// Set defaults
	cfg := Default()
	v.SetDefault("verbose", cfg.Verbose)
	v.SetDefault("gdb.path", cfg.GDB.Path)
	v.SetDefault("gdb.command_timeout", cfg.GDB.CommandTimeout)
	v.SetDefault("gdb.interrupt_timeout", cfg.GDB.InterruptTimeout)
	v.SetDefault("gdb.session_ttl", cfg.GDB.SessionTTL)
	v.SetDefault("server.host", cfg.Server.Host)
	v.SetDefault("server.port", cfg.Server.Port)
	v.SetDefault("server.mount_path", cfg.Server.MountPath)
	v.SetDefault("server.sse_path", cfg.Server.SSEPath)
	v.SetDefault("server.message_path", cfg.Server.MessagePath)
	v.SetDefault("server.http_path", cfg.Server.HTTPPath)

	// Try to read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error occurred
			return nil, err
		}
		// Config file not found; use defaults
	}

	// Unmarshal into struct
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific file
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
