package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/plantops/hygrowatch"
)

func main() {
	cfg, err := hygrowatch.DefaultConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := hygrowatch.NewRuntime(cfg)
	if err != nil {
		log.Fatalf("runtime: %v", err)
	}
	if _, err := rt.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("monitoring run exited: %v", err)
	}
}
