package config

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch re-reads the tuning file whenever it changes on disk and hands each
// successfully parsed result to apply. It blocks until ctx is cancelled.
//
// A bad edit is non-fatal: apply is not called and the previous tuning stays
// active, so an editor typo can never take the gateway down between
// invocations.
func Watch(ctx context.Context, path string, apply func(*File)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("tuning watch: %w", err)
	}
	defer w.Close()

	if err := w.Add(path); err != nil {
		return fmt.Errorf("tuning watch %q: %w", path, err)
	}
	slog.Info("tuning file watch started", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, open := <-w.Events:
			if !open {
				return nil
			}
			if !reloadable(ev) {
				continue
			}
			reload(path, apply)
			// Atomic saves replace the inode; re-arm the watch so the next
			// save is still seen.
			_ = w.Add(path)

		case err, open := <-w.Errors:
			if !open {
				return nil
			}
			slog.Error("tuning file watch error", "err", err)
		}
	}
}

// reloadable reports whether ev should trigger a re-read. Create counts as
// well as Write: most editors save through a rename.
func reloadable(ev fsnotify.Event) bool {
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)
}

// reload parses the tuning file and applies it. Parse and validation
// failures leave the previous tuning in place and are only logged.
func reload(path string, apply func(*File)) {
	cfg, err := Load(path)
	if err != nil {
		slog.Error("tuning reload rejected, previous tuning kept",
			"path", path, "err", err)
		return
	}

	apply(cfg)
	slog.Info("tuning reloaded",
		"path", path,
		"http_port", cfg.Gateway.HTTPPort,
		"alert_view", cfg.Gateway.Upstream.AlertView,
	)
}
