package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	progresscmd "github.com/proact-eco/proact/internal/cmd/progress"
)

func main() {
	cfg, err := progresscmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[PROGRESS] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := progresscmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
