package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formcheck/pkg/metrics"
)

type watchFlags struct {
	cfg      Config
	debounce time.Duration
	metrics  bool
}

var watchOpts watchFlags

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-validate whenever layouts, models or data change",
	Long: `Watch validates once, then re-runs the full validation each time a file
under the layouts or models directory, or one of the data files, changes.
Bursts of events are collapsed into one run.`,
	RunE: runWatch,
}

func init() {
	registerConfigFlags(watchCmd, &watchOpts.cfg)
	watchCmd.Flags().DurationVar(&watchOpts.debounce, "debounce", 200*time.Millisecond, "quiet period before re-validating")
	watchCmd.Flags().BoolVar(&watchOpts.metrics, "metrics", false, "write cumulative engine metrics to stderr after each run")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(watchOpts.cfg)
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr())
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry, options := metricsOptions(watchOpts.metrics)
	revalidate := func() {
		ws, err := loadWorkspace(ctx, cfg, logger, options...)
		if err != nil {
			logger.Error("reload failed", "err", err)
			return
		}
		result, err := ws.engine.ValidateForm(ctx, ws.state)
		if err != nil {
			logger.Error("validation failed", "err", err)
			return
		}
		if err := printResult(cmd.OutOrStdout(), cfg.Output, result, false); err != nil {
			logger.Error("print failed", "err", err)
		}
		if registry != nil {
			if err := metrics.WriteText(cmd.ErrOrStderr(), registry); err != nil {
				logger.Error("metrics dump failed", "err", err)
			}
		}
	}
	revalidate()

	return watchPaths(ctx, logger, watchOpts.debounce, watchTargets(cfg), revalidate)
}

// watchTargets lists the directories to watch and the files within them
// that matter. An empty file set means every layout or schema file counts.
func watchTargets(cfg Config) map[string]map[string]bool {
	targets := map[string]map[string]bool{}
	for _, dir := range []string{cfg.Layouts, cfg.Models} {
		if dir != "" {
			targets[filepath.Clean(dir)] = nil
		}
	}
	for _, file := range []string{cfg.Data, cfg.Attachments, cfg.Resources} {
		if file == "" {
			continue
		}
		dir := filepath.Dir(filepath.Clean(file))
		files, ok := targets[dir]
		if ok && files == nil {
			continue
		}
		if files == nil {
			files = map[string]bool{}
		}
		files[filepath.Clean(file)] = true
		targets[dir] = files
	}
	return targets
}

func watchPaths(ctx context.Context, logger *slog.Logger, quiet time.Duration, targets map[string]map[string]bool, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	for dir := range targets {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		logger.Info("watching", "path", dir)
	}

	debounce := newDebouncer(quiet, onChange)
	defer debounce.stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !relevant(event, targets) {
				continue
			}
			logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
			debounce.trigger()
		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			logger.Error("watcher error", "err", err)
		}
	}
}

// debouncer collapses bursts of triggers into one call of fn after a quiet
// period. Calls of fn never overlap: a run that fires while another is in
// progress waits for it.
type debouncer struct {
	quiet time.Duration
	fn    func()

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool

	run sync.Mutex
}

func newDebouncer(quiet time.Duration, fn func()) *debouncer {
	return &debouncer{quiet: quiet, fn: fn}
}

func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, d.fire)
}

func (d *debouncer) fire() {
	d.run.Lock()
	defer d.run.Unlock()
	d.mu.Lock()
	stopped := d.stopped
	d.mu.Unlock()
	if !stopped {
		d.fn()
	}
}

// stop cancels a pending call and waits for a running one to finish.
func (d *debouncer) stop() {
	d.mu.Lock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()
	d.run.Lock()
	d.run.Unlock()
}

func relevant(event fsnotify.Event, targets map[string]map[string]bool) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Clean(event.Name)
	files, ok := targets[filepath.Dir(name)]
	if !ok {
		return false
	}
	if files != nil {
		return files[name]
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
