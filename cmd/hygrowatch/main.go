package main

import (
	"bufio"
	"context"
	_ "embed"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/plantops/hygrowatch"
)

//go:embed assets/banner_color.ansi
var bannerColor string

//go:embed assets/banner_plain.txt
var bannerPlain string

func main() {
	fmt.Print(selectBanner())
	fmt.Println()
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	var err error

	switch cmd {
	case "run":
		err = runCommand(os.Args[2:])
	case "validate":
		err = validateCommand(os.Args[2:])
	case "setup":
		err = setupCommand(os.Args[2:])
	case "stats":
		err = statsCommand(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		log.Fatalf("hygrowatch %s: %v", cmd, err)
	}
}

// loadConfig reads the yaml file when it exists and otherwise builds the
// config from defaults, the connection file, and the environment.
func loadConfig(path string) (*hygrowatch.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return hygrowatch.DefaultConfig()
	}
	return hygrowatch.LoadConfig(path)
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "./hygrowatch.yaml", "Path to configuration file")
	simulate := fs.Bool("simulate", false, "Use the built-in simulator instead of SSH hardware access")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *simulate {
		cfg.Simulator.Enabled = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := hygrowatch.NewRuntime(cfg)
	if err != nil {
		return err
	}
	_, err = rt.Run(ctx)
	return err
}

func validateCommand(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	cfgPath := fs.String("config", "./hygrowatch.yaml", "Path to configuration file to validate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := hygrowatch.LoadConfig(*cfgPath); err != nil {
		return err
	}
	fmt.Printf("config %s looks good ✅\n", *cfgPath)
	return nil
}

func setupCommand(args []string) error {
	fs := flag.NewFlagSet("setup", flag.ExitOnError)
	cfgPath := fs.String("config", "./hygrowatch.yaml", "Path to configuration file")
	manifest := fs.String("manifest", "", "Local python dependency manifest to install on the target host")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return hygrowatch.Setup(ctx, cfg, *manifest, os.Stdout)
}

func selectBanner() string {
	if os.Getenv("NO_COLOR") != "" {
		return bannerPlain
	}
	return bannerColor
}

func statsCommand(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	url := fs.String("url", "http://localhost:9100/metrics", "Prometheus metrics endpoint")
	interval := fs.Duration("interval", 2*time.Second, "Refresh interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	fmt.Printf("Streaming metrics from %s (Ctrl+C to stop)\n", *url)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := printMetricsSnapshot(*url); err != nil {
				fmt.Fprintf(os.Stderr, "stats error: %v\n", err)
			}
		}
	}
}

func printMetricsSnapshot(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	targets := map[string]float64{
		"hygro_samples_total":     0,
		"hygro_alerts_sent_total": 0,
		"hygro_humidity_ratio":    0,
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		for key := range targets {
			if strings.HasPrefix(line, key+" ") {
				var value float64
				if _, err := fmt.Sscanf(line, key+" %f", &value); err == nil {
					targets[key] = value
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	fmt.Printf("[%s] samples=%.0f alerts=%.0f humidity=%.4f\n",
		time.Now().Format(time.RFC3339),
		targets["hygro_samples_total"],
		targets["hygro_alerts_sent_total"],
		targets["hygro_humidity_ratio"],
	)
	return nil
}

func printUsage() {
	fmt.Printf(`HygroWatch CLI

Usage:
  hygrowatch <command> [flags]

Commands:
  run        Poll the humidity sensor and alert when it drops below threshold
  validate   Load and validate a config file without connecting anywhere
  setup      Install the python sensor stack on the target host over SSH
  stats      Poll the Prometheus metrics endpoint and print live counters

Examples:
  hygrowatch run -config ./hygrowatch.yaml
  hygrowatch run -simulate
  hygrowatch setup -manifest ./requirements.txt
  hygrowatch validate -config ./hygrowatch.yaml
  hygrowatch stats -url http://localhost:9100/metrics -interval 1s
`)
}
