package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/openstack-archive/rst2bash/internal/config"
	"github.com/openstack-archive/rst2bash/internal/convert"
	"github.com/openstack-archive/rst2bash/internal/extract"
	"github.com/openstack-archive/rst2bash/internal/journal"
	"github.com/openstack-archive/rst2bash/internal/logfields"
	"github.com/openstack-archive/rst2bash/internal/metrics"
	"github.com/openstack-archive/rst2bash/internal/source"
	"github.com/openstack-archive/rst2bash/internal/watch"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"rst2bash.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Convert struct {
		File string `short:"f" help:"Convert a single input file (relative to source dir)"`
	} `cmd:"" help:"Convert documentation source files into per-distro shell scripts"`

	Discover struct{} `cmd:"" help:"List tagged regions per input file without writing scripts"`

	Watch struct{} `cmd:"" help:"Watch the source tree and reconvert on changes"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`
}

func main() {
	ctx := kong.Parse(&CLI)

	if ctx.Command() == "init" {
		if err := runInit(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", logfields.Error(err))
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		slog.Error("Failed to load configuration", logfields.Error(err))
		os.Exit(1)
	}
	setupLogging(cfg, CLI.Verbose)

	switch ctx.Command() {
	case "convert":
		if err := runConvert(cfg, CLI.Convert.File); err != nil {
			slog.Error("Convert failed", logfields.Error(err))
			os.Exit(1)
		}
	case "discover":
		if err := runDiscover(cfg); err != nil {
			slog.Error("Discover failed", logfields.Error(err))
			os.Exit(1)
		}
	case "watch":
		if err := runWatch(cfg); err != nil {
			slog.Error("Watch failed", logfields.Error(err))
			os.Exit(1)
		}
	}
}

// setupLogging configures the default slog logger from the loaded
// configuration; --verbose forces debug level.
func setupLogging(cfg *config.Config, verbose bool) {
	level := slog.LevelInfo
	switch config.NormalizeLogLevel(cfg.Logging.Level) {
	case config.LogLevelDebug:
		level = slog.LevelDebug
	case config.LogLevelWarn:
		level = slog.LevelWarn
	case config.LogLevelError:
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	var out io.Writer = os.Stdout
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			slog.Warn("Failed to open log file, logging to stdout only", logfields.Error(err))
		} else {
			out = io.MultiWriter(os.Stdout, f)
		}
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if config.NormalizeLogFormat(cfg.Logging.Format) == config.LogFormatJSON {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// syncSource updates the source checkout when a repository is configured.
func syncSource(cfg *config.Config) error {
	if cfg.Source.Repo == "" {
		return nil
	}
	return source.NewSyncer(cfg.Source.Dir).Sync(cfg.Source.Repo, cfg.Source.Branch)
}

// openJournal opens the conversion journal when one is configured. The
// returned store is nil when journaling is disabled.
func openJournal(cfg *config.Config) (*journal.Store, error) {
	if cfg.Journal.Path == "" {
		return nil, nil
	}
	return journal.Open(cfg.Journal.Path)
}

func runConvert(cfg *config.Config, file string) error {
	if err := syncSource(cfg); err != nil {
		return err
	}

	store, err := openJournal(cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	converter := convert.New(cfg).WithJournal(store)

	ctx := context.Background()
	var summary *convert.Summary
	if file != "" {
		summary, err = converter.RunFiles(ctx, []string{file})
	} else {
		summary, err = converter.Run(ctx)
	}
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d files failed to convert", summary.Failed, summary.Failed+summary.Succeeded)
	}
	return nil
}

func runDiscover(cfg *config.Config) error {
	if err := syncSource(cfg); err != nil {
		return err
	}

	files, err := convert.New(cfg).DiscoverFiles()
	if err != nil {
		return err
	}
	slog.Info("Discovered input files", slog.Int("count", len(files)), slog.String("source", cfg.Source.Dir))

	for _, file := range files {
		data, err := os.ReadFile(filepath.Join(cfg.Source.Dir, file))
		if err != nil {
			slog.Warn("Failed to read input", logfields.File(file), logfields.Error(err))
			continue
		}
		engine := extract.NewEngine(string(data), cfg.DefaultDistros)
		engine.BuildIndices()
		slog.Info("  File discovered",
			logfields.File(file),
			logfields.Regions(engine.RegionCount()),
			slog.Int("code", engine.Index(extract.CategoryCode).StartCount()),
			slog.Int("distro", engine.Index(extract.CategoryDistro).StartCount()),
			slog.Int("path", engine.Index(extract.CategoryPath).StartCount()))
	}
	return nil
}

func runWatch(cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := openJournal(cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	reg := prom.NewRegistry()
	converter := convert.New(cfg).WithJournal(store).WithMetrics(metrics.NewRecorder(reg))

	runAll := func(runCtx context.Context) {
		if err := syncSource(cfg); err != nil {
			slog.Error("Source sync failed", logfields.Error(err))
		}
		if _, err := converter.Run(runCtx); err != nil {
			slog.Error("Conversion run failed", logfields.Error(err))
		}
	}

	// Initial full run before watching for changes.
	runAll(ctx)

	watcher, err := watch.NewWatcher(cfg.Source.Dir, cfg.Watch.DebounceDuration(), runAll)
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		return err
	}

	var scheduler *watch.Scheduler
	if interval := cfg.Watch.IntervalDuration(); interval > 0 {
		scheduler, err = watch.NewScheduler()
		if err != nil {
			return err
		}
		if _, err := scheduler.SchedulePeriodicRun(interval, func() { runAll(ctx) }); err != nil {
			return err
		}
		scheduler.Start(ctx)
	}

	var metricsServer *http.Server
	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.HTTPHandler(reg))
		metricsServer = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
		go func() {
			slog.Info("Serving metrics", slog.String("addr", cfg.Metrics.Addr))
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("Metrics server failed", logfields.Error(err))
			}
		}()
	}

	slog.Info("Watching for source changes, press Ctrl+C to stop", logfields.Path(cfg.Source.Dir))
	<-ctx.Done()
	slog.Info("Shutdown signal received, stopping...")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()

	if err := watcher.Stop(stopCtx); err != nil {
		slog.Warn("Failed to stop watcher", logfields.Error(err))
	}
	if scheduler != nil {
		if err := scheduler.Stop(stopCtx); err != nil {
			slog.Warn("Failed to stop scheduler", logfields.Error(err))
		}
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(stopCtx); err != nil {
			slog.Warn("Failed to stop metrics server", logfields.Error(err))
		}
	}
	return nil
}

func runInit(configPath string, force bool) error {
	slog.Info("Initializing configuration", logfields.Path(configPath), slog.Bool("force", force))
	return config.Init(configPath, force)
}
