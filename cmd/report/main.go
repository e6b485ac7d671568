package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	reportcmd "github.com/louisbranch/explodingdice/internal/cmd/report"
	"github.com/louisbranch/explodingdice/internal/platform/config"
)

// main runs the exploding-dice analysis and prints the report as JSON.
func main() {
	cfg, err := reportcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.ExitUsage("parse flags: %v", err)
	}
	log.SetPrefix("[REPORT] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := reportcmd.Run(ctx, cfg, os.Stdout); err != nil {
		config.Exitf("report: %v", err)
	}
}
