package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/plantops/hygrowatch"
)

func main() {
	cfg, err := hygrowatch.DefaultConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	cfg.Simulator.Enabled = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifier, alerts, closeAlerts := hygrowatch.NewChannelNotifier("fanout", 8)
	defer closeAlerts()

	go alertWorker("pager", alerts)

	rt, err := hygrowatch.NewRuntime(cfg, hygrowatch.WithNotifier(notifier))
	if err != nil {
		log.Fatalf("runtime: %v", err)
	}
	if _, err := rt.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("runtime error: %v", err)
	}
}

func alertWorker(name string, alerts <-chan *hygrowatch.Alert) {
	for a := range alerts {
		fmt.Printf("[%s] low humidity %.4f on sample %d at %s\n",
			name, a.Sample.Humidity, a.Sample.Seq, time.Now().Format(time.RFC3339))
		// TODO: forward to a paging or chat webhook.
	}
}
