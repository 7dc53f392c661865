package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	inferencecmd "github.com/dyadlab/interaction/internal/cmd/inference"
)

// main starts the inference MCP server on stdio or HTTP.
func main() {
	cfg, err := inferencecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[INFERENCE] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := inferencecmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
