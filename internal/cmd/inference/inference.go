// Package inference parses inference command flags and starts the MCP server.
package inference

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/dyadlab/interaction/internal/mcp/service"
	"github.com/dyadlab/interaction/internal/platform/cmd"
	"github.com/dyadlab/interaction/internal/storage/sqlite"
)

// Config holds inference command configuration.
type Config struct {
	DBPath    string `env:"DYADLAB_INFERENCE_DB_PATH" envDefault:"inference.db"`
	Transport string `env:"DYADLAB_MCP_TRANSPORT"     envDefault:"stdio"`
	HTTPAddr  string `env:"DYADLAB_MCP_HTTP_ADDR"     envDefault:"localhost:8081"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := cmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the run database")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	if err := cmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the inference MCP server with run persistence.
func Run(ctx context.Context, cfg Config) error {
	return cmd.RunWithTelemetry(ctx, cmd.ServiceInference, func(ctx context.Context) error {
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open run store: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Printf("close run store: %v", err)
			}
		}()

		return service.Run(ctx, store, service.Config{
			Transport: service.TransportKind(cfg.Transport),
			HTTPAddr:  cfg.HTTPAddr,
		})
	})
}
