// Package main submits a registration from the command line.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	regctlcmd "github.com/louisbranch/rawcn/internal/cmd/regctl"
	entrypoint "github.com/louisbranch/rawcn/internal/platform/cmd"
)

func main() {
	cfg, err := regctlcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[REGCTL] ")
	log.SetFlags(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceRegctl, func(ctx context.Context) error {
		return regctlcmd.Run(ctx, cfg, os.Stdout)
	})
	if err != nil {
		log.Fatal(err)
	}
}
