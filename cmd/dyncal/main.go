package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"dyncal/internal/config"
	appLog "dyncal/internal/log"
	"dyncal/internal/web"
)

type flagConfig struct {
	configPath string
	csvURL     string
	outDir     string
	listen     string
	serve      bool
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI flags override config file values if provided.
	if flags.csvURL != "" {
		conf.CSVURL = flags.csvURL
	}
	if flags.outDir != "" {
		conf.OutDir = flags.outDir
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))
	appLog.Info("dyncal starting",
		"out_dir", conf.OutDir,
		"timezone", conf.Timezone,
		"default_duration", conf.DefaultDuration,
		"serve", flags.serve,
	)

	if conf.CSVURL == "" {
		appLog.Error("no source configured", nil, "hint", "set csv_url in the config file or the CSV_URL environment variable")
		os.Exit(1)
	}

	a, err := newApp(conf)
	if err != nil {
		appLog.Error("invalid configuration", err)
		os.Exit(1)
	}

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if !flags.serve {
		if _, err := a.buildOnce(ctx); err != nil {
			appLog.Error("build failed", err)
			os.Exit(1)
		}
		appLog.Info("build complete")
		return
	}

	if err := runServe(ctx, a); err != nil {
		appLog.Error("server stopped", err)
		os.Exit(1)
	}
	appLog.Info("dyncal exiting")
}

// runServe builds once up front, then serves the output directory while
// rebuilding on the configured cron schedule and on manual API triggers.
func runServe(ctx context.Context, a *app) error {
	// The initial build may legitimately fail (e.g. source temporarily
	// unreachable); in serve mode we keep going and let the next
	// scheduled rebuild retry.
	if _, err := a.buildOnce(ctx); err != nil {
		appLog.Error("initial build failed", err)
	}

	c := cron.New()
	_, err := c.AddFunc(a.cfg.RefreshCron, func() {
		if _, err := a.buildOnce(ctx); err != nil {
			appLog.Error("scheduled rebuild failed", err)
		}
	})
	if err != nil {
		return err
	}
	c.Start()
	defer c.Stop()

	srv := web.NewServer(a.cfg.OutDir, a.buildOnce)
	return web.Serve(ctx, a.cfg.Listen, srv)
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "dyncal.yaml", "Path to config file")
	flag.StringVar(&cfg.csvURL, "csv", "", "Source CSV URL or file path (overrides config if set)")
	flag.StringVar(&cfg.outDir, "out", "", "Output directory (overrides config if set)")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address for -serve (overrides config if set)")
	flag.BoolVar(&cfg.serve, "serve", false, "Serve the output directory and rebuild on a schedule")

	flag.Parse()

	return cfg
}
