package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/DeBrosOfficial/pinner/pkg/config"
)

// parseGatewayConfig loads config and applies command-line overrides.
// Priority: flags > env > config file > defaults.
func parseGatewayConfig() (*config.Config, error) {
	configPath := flag.String("config", "", "Path to a YAML config file (overrides PINNER_CONFIG)")
	port := flag.Int("port", 0, "HTTP listen port (overrides PORT)")
	logFile := flag.String("log-file", "", "Append logs to this file instead of stdout")

	// Do not call flag.Parse() elsewhere to avoid double-parsing
	flag.Parse()

	if p := strings.TrimSpace(*configPath); p != "" {
		if err := os.Setenv("PINNER_CONFIG", p); err != nil {
			return nil, fmt.Errorf("failed to set config path: %w", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if *port != 0 {
		cfg.Server.Port = *port
	}
	if f := strings.TrimSpace(*logFile); f != "" {
		cfg.Logging.OutputFile = f
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		var b strings.Builder
		b.WriteString("invalid configuration:")
		for _, e := range errs {
			b.WriteString("\n  - ")
			b.WriteString(e.Error())
		}
		return nil, fmt.Errorf("%s", b.String())
	}

	return cfg, nil
}
