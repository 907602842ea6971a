package main

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/bulwarkhq/bulwark/internal/observability"
)

const watchDebounce = 300 * time.Millisecond

func newWatchCmd(app *appContext) *cobra.Command {
	var (
		scope       string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Re-scan the project whenever source files change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := projectRoot(args)
			if err != nil {
				return err
			}
			return runWatch(cmd.Context(), app, root, scope, metricsAddr)
		},
	}
	cmd.Flags().StringVar(&scope, "scope", "", "Restrict scans to a path prefix")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")

	return cmd
}

func runWatch(ctx context.Context, app *appContext, root, scope, metricsAddr string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dirs, err := addWatchRecursive(watcher, root)
	if err != nil {
		return err
	}

	var metrics *observability.ScanMetrics
	if metricsAddr != "" {
		metrics = observability.NewScanMetrics()
		metrics.WatchedDirs.Set(float64(dirs))

		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		srv := &http.Server{Addr: metricsAddr, Handler: mux}
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				app.log.Warn("metrics server stopped", "error", err)
			}
		}()
		app.log.Info("serving metrics", "addr", metricsAddr)
	}

	scanOnce := func() {
		start := time.Now()
		result, err := runScan(ctx, app, root, scope, false, "", false, false)
		if err != nil {
			app.log.Error("scan failed", "error", err)
			return
		}
		if metrics != nil && result != nil {
			metrics.RecordScan(time.Since(start), result.FilesChecked, result.Stats.Total, result.Stats.Errors)
		}
	}

	app.log.Info("watching for changes", "root", root, "dirs", dirs)
	scanOnce()

	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// State writes from our own scans must not retrigger.
			if strings.Contains(ev.Name, string(filepath.Separator)+".bulwark"+string(filepath.Separator)) {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if added, err := addWatchRecursive(watcher, ev.Name); err == nil && metrics != nil {
						dirs += added
						metrics.WatchedDirs.Set(float64(dirs))
					}
				}
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, scanOnce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			app.log.Warn("watch error", "error", err)
		}
	}
}

func addWatchRecursive(w *fsnotify.Watcher, root string) (int, error) {
	dirs := 0
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if strings.Contains(path, string(filepath.Separator)+".bulwark") {
				return filepath.SkipDir
			}
			if err := w.Add(path); err != nil {
				return err
			}
			dirs++
		}
		return nil
	})
	return dirs, err
}
