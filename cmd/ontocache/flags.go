package main

import (
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath      string
	LogLevel        string
	LogFormat       string
	Roots           []string
	Lang            string
	Serve           bool
	ShutdownTimeout time.Duration
	ShowVersion     bool
	ShowHelp        bool
	Validate        bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}
	var roots string

	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("ONTOCACHE_CONFIG", ""),
		"Path to a JSON or YAML configuration file (env: ONTOCACHE_CONFIG)")

	flag.StringVar(&cfg.ConfigPath, "c",
		getEnv("ONTOCACHE_CONFIG", ""),
		"Path to a JSON or YAML configuration file (env: ONTOCACHE_CONFIG)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("ONTOCACHE_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: ONTOCACHE_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("ONTOCACHE_LOG_FORMAT", "json"),
		"Log format: json, text (env: ONTOCACHE_LOG_FORMAT)")

	flag.StringVar(&roots, "roots", "",
		"Comma-separated root classes to print, overriding ontology.root_classes")

	flag.StringVar(&cfg.Lang, "lang", "",
		"Label language of the printed tree, default language when empty")

	flag.BoolVar(&cfg.Serve, "serve", false,
		"Keep serving metrics and health after printing, until interrupted")

	flag.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout",
		getEnvDuration("ONTOCACHE_SHUTDOWN_TIMEOUT", 10*time.Second),
		"Graceful shutdown timeout (env: ONTOCACHE_SHUTDOWN_TIMEOUT)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")
	flag.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	flag.Usage = func() {
		printDetailedHelp()
	}

	flag.Parse()

	cfg.Roots = splitList(roots)
	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	if cfg.ConfigPath != "" {
		if _, err := os.Stat(cfg.ConfigPath); err != nil {
			return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
		}
	}

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	if !slices.Contains([]string{"json", "text"}, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("invalid shutdown timeout: %s", cfg.ShutdownTimeout)
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - OWL class cache

Usage: %s [options]

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Examples:
  # Print the class tree of a local ontology
  %s --config=ontocache.yaml --roots=http://example.org/zoo#Animal

  # Query a remote endpoint and keep serving metrics
  export ONTOCACHE_SPARQL_ENDPOINT=http://localhost:3030/ds/query
  %s --config=ontocache.yaml --serve --log-format=text

  # Validate configuration only
  %s --config=ontocache.yaml --validate

Version: %s
Build: %s
`, os.Args[0], os.Args[0], os.Args[0], Version, BuildTime)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
