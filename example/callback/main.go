package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/plantops/hygrowatch/pkg/hygrowatch"
)

func main() {
	cfg, err := hygrowatch.DefaultConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	cfg.Simulator.Enabled = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifier := hygrowatch.NewCallbackNotifier("stdout", func(a *hygrowatch.Alert) error {
		fmt.Printf("ALERT %s seq=%d humidity=%.4f\n",
			a.Timestamp.Format(time.RFC3339),
			a.Sample.Seq,
			a.Sample.Humidity,
		)
		return nil
	})

	rt, err := hygrowatch.NewRuntime(cfg, hygrowatch.WithNotifier(notifier))
	if err != nil {
		log.Fatalf("runtime: %v", err)
	}
	if _, err := rt.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("runtime error: %v", err)
	}
}
