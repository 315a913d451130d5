package parselabelfacts

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"label-compliance/internal/common/logger"
)

// TableWatcher reloads the normalizer's match table when its YAML file changes.
type TableWatcher struct {
	watcher    *fsnotify.Watcher
	path       string
	normalizer *Normalizer
	logger     logger.Logger
	reloaded   chan error
}

// NewTableWatcher watches the directory holding path, since editors often
// replace files instead of writing them in place.
func NewTableWatcher(path string, normalizer *Normalizer, log logger.Logger) (*TableWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	return &TableWatcher{
		watcher:    w,
		path:       filepath.Clean(path),
		normalizer: normalizer,
		logger:     log.With(map[string]interface{}{"rulesPath": path}),
		reloaded:   make(chan error, 1),
	}, nil
}

// Reloaded delivers the outcome of each reload attempt (nil on success).
// Sends are dropped when nobody is listening.
func (w *TableWatcher) Reloaded() <-chan error { return w.reloaded }

// Run blocks until ctx is done or the watcher is closed.
func (w *TableWatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.notify(w.reload())
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Match table watcher error", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (w *TableWatcher) reload() error {
	table, err := LoadTableFile(w.path)
	if err == nil {
		err = w.normalizer.Swap(table)
	}
	if err != nil {
		w.logger.Warn("Match table reload failed, keeping previous table", map[string]interface{}{"error": err.Error()})
		return err
	}
	w.logger.Info("Match table reloaded", map[string]interface{}{
		"countries":   len(table.Countries),
		"states":      len(table.States),
		"ingredients": len(table.Ingredients),
		"products":    len(table.Products),
	})
	return nil
}

func (w *TableWatcher) notify(err error) {
	select {
	case w.reloaded <- err:
	default:
	}
}

func (w *TableWatcher) Close() error {
	return w.watcher.Close()
}
