package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeExtract = "extract"
	ModeServe   = "serve"
	ModeStdio   = "stdio"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB
)

// Config holds all configuration for the extraction tool
type Config struct {
	// Run mode: "extract" for one-shot CLI extraction, "serve" for the
	// HTTP API, "stdio" for the MCP server
	Mode string

	// One-shot extraction inputs (extract mode only)
	PDFPath      string
	GabaritoPath string
	XLSXPath     string

	// Server configuration (serve mode only)
	Host string
	Port int

	// Data configuration
	DataDir string

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum PDF file size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		// Fallback to current directory if working directory cannot be determined
		currentDir = "."
	}

	return &Config{
		Mode:        ModeServe,
		Host:        DefaultHost,
		Port:        DefaultPort,
		DataDir:     filepath.Join(currentDir, "data"),
		Version:     "1.0.0",
		ServerName:  "revalida-extract",
		LogLevel:    DefaultLogLevel,
		MaxFileSize: DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths so downstream confinement checks compare absolutes
	cfg.DataDir = expandPath(cfg.DataDir)
	cfg.PDFPath = expandPath(cfg.PDFPath)
	cfg.GabaritoPath = expandPath(cfg.GabaritoPath)
	cfg.XLSXPath = expandPath(cfg.XLSXPath)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// expandPath resolves a path to its absolute form, leaving empty paths alone
func expandPath(path string) string {
	if path == "" {
		return ""
	}
	if expanded, err := filepath.Abs(path); err == nil {
		return expanded
	}
	return path
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix; dashes in keys map to underscores,
	// so --data-dir is REVALIDA_DATA_DIR
	viper.SetEnvPrefix("REVALIDA")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Define flags with Viper
	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("pdf", cfg.PDFPath)
	viper.SetDefault("gabarito", cfg.GabaritoPath)
	viper.SetDefault("xlsx", cfg.XLSXPath)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("data-dir", cfg.DataDir)
	viper.SetDefault("log-level", cfg.LogLevel)
	viper.SetDefault("max-file-size", cfg.MaxFileSize)
	viper.SetDefault("debug", false)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode,
		"Run mode: 'extract' for one-shot extraction, 'serve' for the HTTP API, 'stdio' for MCP standard I/O")
	pflag.String("pdf", cfg.PDFPath, "Exam PDF to extract (extract mode only)")
	pflag.String("gabarito", cfg.GabaritoPath, "Separate answer-key PDF (extract mode only)")
	pflag.String("xlsx", cfg.XLSXPath, "Write the extracted questions to this XLSX file (extract mode only)")
	pflag.String("host", cfg.Host, "Server host address (serve mode only)")
	pflag.Int("port", cfg.Port, "Server port (serve mode only)")
	pflag.String("data-dir", cfg.DataDir, "Data directory holding uploads and extraction artifacts")
	pflag.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("max-file-size", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.Bool("debug", false, "Shorthand for --log-level=debug")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("mode", pflag.Lookup("mode"))
	_ = viper.BindPFlag("pdf", pflag.Lookup("pdf"))
	_ = viper.BindPFlag("gabarito", pflag.Lookup("gabarito"))
	_ = viper.BindPFlag("xlsx", pflag.Lookup("xlsx"))
	_ = viper.BindPFlag("host", pflag.Lookup("host"))
	_ = viper.BindPFlag("port", pflag.Lookup("port"))
	_ = viper.BindPFlag("data-dir", pflag.Lookup("data-dir"))
	_ = viper.BindPFlag("log-level", pflag.Lookup("log-level"))
	_ = viper.BindPFlag("max-file-size", pflag.Lookup("max-file-size"))
	_ = viper.BindPFlag("debug", pflag.Lookup("debug"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nRevalida Extract - turn Revalida-style exam PDFs into structured question records\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --mode=extract --pdf=prova.pdf                    "+
			"# one-shot extraction, answers scanned from the same file\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=extract --pdf=prova.pdf --gabarito=gab.pdf "+
			"# answers from a separate PDF\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=extract --pdf=prova.pdf --xlsx=out.xlsx    "+
			"# also write a spreadsheet\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=serve --host=0.0.0.0 --port=8080           # HTTP API\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=stdio --data-dir=/srv/exams                # MCP server\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  REVALIDA_MODE           Run mode\n")
		fmt.Fprintf(os.Stderr, "  REVALIDA_PDF            Exam PDF path\n")
		fmt.Fprintf(os.Stderr, "  REVALIDA_GABARITO       Answer-key PDF path\n")
		fmt.Fprintf(os.Stderr, "  REVALIDA_XLSX           XLSX output path\n")
		fmt.Fprintf(os.Stderr, "  REVALIDA_HOST           Server host\n")
		fmt.Fprintf(os.Stderr, "  REVALIDA_PORT           Server port\n")
		fmt.Fprintf(os.Stderr, "  REVALIDA_DATA_DIR       Data directory\n")
		fmt.Fprintf(os.Stderr, "  REVALIDA_LOG_LEVEL      Log level\n")
		fmt.Fprintf(os.Stderr, "  REVALIDA_MAX_FILE_SIZE  Maximum file size\n")
		fmt.Fprintf(os.Stderr, "  REVALIDA_DEBUG          Enable debug logging\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.PDFPath = viper.GetString("pdf")
	cfg.GabaritoPath = viper.GetString("gabarito")
	cfg.XLSXPath = viper.GetString("xlsx")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.DataDir = viper.GetString("data-dir")
	cfg.LogLevel = viper.GetString("log-level")
	cfg.MaxFileSize = viper.GetInt64("max-file-size")
	if viper.GetBool("debug") {
		cfg.LogLevel = "debug"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate mode
	if c.Mode != ModeExtract && c.Mode != ModeServe && c.Mode != ModeStdio {
		return errors.New("mode must be one of 'extract', 'serve' or 'stdio'")
	}

	// Validate port range (only for serve mode)
	if c.Mode == ModeServe && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	// One-shot extraction needs an input file
	if c.Mode == ModeExtract && c.PDFPath == "" {
		return errors.New("extract mode requires --pdf")
	}

	// Validate data directory. It does not have to exist yet; the artifact
	// store creates it on first use.
	if c.DataDir == "" {
		return errors.New("data directory cannot be empty")
	}
	if info, err := os.Stat(c.DataDir); err == nil && !info.IsDir() {
		return fmt.Errorf("data directory is not a directory: %s", c.DataDir)
	}

	// Validate max file size
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	// Validate log level
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
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, DataDir: %s, LogLevel: %s, MaxFileSize: %d}",
		c.Mode, c.Host, c.Port, c.DataDir, c.LogLevel, c.MaxFileSize)
}

// IsExtractMode returns true if running as a one-shot extraction
func (c *Config) IsExtractMode() bool {
	return c.Mode == ModeExtract
}

// IsServeMode returns true if running the HTTP API
func (c *Config) IsServeMode() bool {
	return c.Mode == ModeServe
}

// IsStdioMode returns true if running as an MCP stdio server
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
