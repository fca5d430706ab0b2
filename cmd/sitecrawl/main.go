package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"sitecrawl/pkg/config"
	"sitecrawl/pkg/crawler"
	"sitecrawl/pkg/models"
)

const version = "1.2.0"

func main() {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})
	log.SetLevel(logrus.InfoLevel)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "crawl":
		runCrawl(os.Args[2:], log)
	case "scrape":
		runScrape(os.Args[2:], log)
	case "version":
		fmt.Printf("sitecrawl %s\n", version)
	case "-h", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(2)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: sitecrawl <command> [flags]

Commands:
  crawl    Breadth-first crawl of a site, bounded by page/depth/time budgets
  scrape   Fetch and extract a single page, no link following
  version  Print version

Run 'sitecrawl <command> -h' for flags.
`)
}

func runCrawl(args []string, log *logrus.Logger) {
	fs := flag.NewFlagSet("crawl", flag.ExitOnError)
	urlFlag := fs.String("url", "", "Seed URL to crawl (required)")
	modeFlag := fs.String("mode", "fast", "Crawl mode: fast or thorough")
	maxPagesFlag := fs.Int("max-pages", 0, "Override page cap (0 = mode default)")
	maxDepthFlag := fs.Int("max-depth", -1, "Override depth cap (-1 = mode default)")
	maxRuntimeFlag := fs.Duration("max-runtime", 0, "Override wall-clock budget (0 = mode default)")
	workersFlag := fs.Int("workers", 0, "Override concurrent fetch count (0 = mode default)")
	configFlag := fs.String("config", "", "Optional YAML config file overlaid on mode defaults")
	logLevelFlag := fs.String("loglevel", "info", "Log level (debug, info, warn, error)")
	prettyFlag := fs.Bool("pretty", false, "Indent the JSON report")
	fs.Parse(args)

	setLogLevel(log, *logLevelFlag)

	if *urlFlag == "" {
		log.Error("-url is required")
		fs.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(*modeFlag, *configFlag)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if *maxPagesFlag > 0 {
		cfg.MaxPages = *maxPagesFlag
	}
	if *maxDepthFlag >= 0 {
		cfg.MaxDepth = *maxDepthFlag
	}
	if *maxRuntimeFlag > 0 {
		cfg.MaxRuntime = *maxRuntimeFlag
	}
	if *workersFlag > 0 {
		cfg.Workers = *workersFlag
	}

	ctx, cancel := signalContext(log)
	defer cancel()

	report := crawler.Crawl(ctx, normalizeURL(*urlFlag), cfg, log)
	emit(report, *prettyFlag, log)
}

func runScrape(args []string, log *logrus.Logger) {
	fs := flag.NewFlagSet("scrape", flag.ExitOnError)
	urlFlag := fs.String("url", "", "Page URL to scrape (required)")
	configFlag := fs.String("config", "", "Optional YAML config file overlaid on single-page defaults")
	logLevelFlag := fs.String("loglevel", "info", "Log level (debug, info, warn, error)")
	prettyFlag := fs.Bool("pretty", false, "Indent the JSON report")
	fs.Parse(args)

	setLogLevel(log, *logLevelFlag)

	if *urlFlag == "" {
		log.Error("-url is required")
		fs.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(string(config.ModeSingle), *configFlag)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	ctx, cancel := signalContext(log)
	defer cancel()

	report := crawler.ScrapePage(ctx, normalizeURL(*urlFlag), cfg, log)
	emit(report, *prettyFlag, log)
}

func loadConfig(mode, path string) (config.CrawlConfig, error) {
	if path != "" {
		return config.Load(path, config.Mode(mode))
	}
	return config.ForMode(config.Mode(mode)), nil
}

func setLogLevel(log *logrus.Logger, raw string) {
	level, err := logrus.ParseLevel(raw)
	if err != nil {
		log.Warnf("Invalid log level '%s', using default 'info'. Error: %v", raw, err)
		return
	}
	log.SetLevel(level)
}

// normalizeURL prefixes scheme-less input with https so "example.com" works
// the way users expect.
func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return "https://" + raw
	}
	return raw
}

// signalContext returns a context cancelled on SIGINT/SIGTERM. A second
// signal forces exit, as does a stuck shutdown.
func signalContext(log *logrus.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Warnf("Received signal: %v. Shutting down...", sig)
		cancel()
		select {
		case sig = <-sigChan:
			log.Warnf("Received second signal: %v. Forcing exit.", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			log.Warn("Shutdown period exceeded after signal. Forcing exit.")
			os.Exit(1)
		}
	}()

	return ctx, cancel
}

// emit writes the report as JSON to stdout. Exit status reflects the report:
// 0 for any completed crawl, 1 only when the report itself is a failure.
func emit(report models.CrawlReport, pretty bool, log *logrus.Logger) {
	enc := json.NewEncoder(os.Stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(report); err != nil {
		log.Fatalf("Failed to encode report: %v", err)
	}
	if !report.Success {
		os.Exit(1)
	}
}
