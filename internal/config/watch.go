// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	xglog "github.com/ManuGH/esconf/internal/log"
	"github.com/ManuGH/esconf/internal/metrics"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const defaultDebounce = 500 * time.Millisecond

// Snapshot is a validated document together with its validation result.
type Snapshot struct {
	Document *Document
	Result   *Result
}

// WatchOptions configure a Holder.
type WatchOptions struct {
	// Defaults, when set, is merged under every loaded document before validation.
	Defaults *Document
	// TechnologyDefaults fills unset parameters of declared technologies on
	// every load, before Defaults is merged.
	TechnologyDefaults bool
	// Debounce collapses bursts of file events. Zero means 500ms.
	Debounce time.Duration
}

// Holder keeps the latest valid snapshot of a configuration file.
// Every change produces a new document; a failed reload keeps the previous one.
type Holder struct {
	mu      sync.RWMutex
	current Snapshot
	path    string
	opts    WatchOptions
	logger  zerolog.Logger

	listenersMu sync.RWMutex
	listeners   []chan<- Snapshot

	done chan struct{}
}

// NewHolder creates a holder for path. Call Reload or Watch to populate it.
func NewHolder(path string, opts WatchOptions) *Holder {
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	return &Holder{
		path:   filepath.Clean(path),
		opts:   opts,
		logger: xglog.WithComponent("config").With().Str(xglog.FieldPath, path).Logger(),
	}
}

// Current returns the latest valid snapshot (zero Snapshot before the first success).
func (h *Holder) Current() Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Reload loads, merges and validates the file. On any failure the previous
// snapshot stays in place and the error is returned.
func (h *Holder) Reload(_ context.Context) error {
	h.logger.Debug().Str(xglog.FieldEvent, "config.reload_start").Msg("reloading configuration")

	doc, err := Load(h.path)
	if err != nil {
		outcome := metrics.OutcomeReadError
		var pe *ParseError
		if errors.As(err, &pe) {
			outcome = metrics.OutcomeParseError
		}
		metrics.RecordReload(outcome)
		h.logger.Error().Err(err).Str(xglog.FieldEvent, "config.reload_failed").Msg("failed to load new configuration")
		return fmt.Errorf("load config: %w", err)
	}
	if h.opts.TechnologyDefaults {
		doc = WithTechnologyDefaults(doc)
	}
	if h.opts.Defaults != nil {
		doc = Merge(h.opts.Defaults, doc)
	}

	res, err := Validate(doc)
	if err != nil {
		metrics.RecordReload(metrics.OutcomeInvalid)
		h.logger.Error().Err(err).Str(xglog.FieldEvent, "config.validation_failed").Msg("new configuration failed validation")
		return fmt.Errorf("validate config: %w", err)
	}

	next := Snapshot{Document: doc, Result: res}
	h.mu.Lock()
	prev := h.current
	h.current = next
	h.mu.Unlock()

	metrics.RecordReload(metrics.OutcomeOK)
	h.notifyListeners(next)
	h.logChanges(prev, next)
	return nil
}

// Watch loads the file once and then reloads it on every change until ctx
// is cancelled. The directory is watched so editors that replace the file
// by rename are seen. The initial load must succeed.
func (h *Holder) Watch(ctx context.Context) error {
	if err := h.Reload(ctx); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(h.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch config dir: %w", err)
	}

	h.done = make(chan struct{})
	h.logger.Info().Str(xglog.FieldEvent, "config.watcher_started").Msg("watching config file for changes")

	go h.watchLoop(ctx, watcher)
	return nil
}

// Done is closed once the watch loop has exited. It is nil before Watch succeeds.
func (h *Holder) Done() <-chan struct{} { return h.done }

func (h *Holder) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer close(h.done)
	defer func() { _ = watcher.Close() }()

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Str(xglog.FieldEvent, "config.watcher_stopped").Msg("config watcher stopped")
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != h.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			h.logger.Debug().
				Str(xglog.FieldEvent, "config.file_changed").
				Str("op", event.Op.String()).
				Msg("config file changed")
			if timer == nil {
				timer = time.NewTimer(h.opts.Debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(h.opts.Debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			if err := h.Reload(ctx); err != nil {
				h.logger.Warn().Err(err).Str(xglog.FieldEvent, "config.auto_reload_failed").Msg("keeping previous configuration")
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().Err(err).Str(xglog.FieldEvent, "config.watcher_error").Msg("config watcher error")
		}
	}
}

// Subscribe registers a channel that receives every new snapshot.
// Sends never block; a full channel misses the update.
func (h *Holder) Subscribe(ch chan<- Snapshot) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()
	h.listeners = append(h.listeners, ch)
}

func (h *Holder) notifyListeners(s Snapshot) {
	h.listenersMu.RLock()
	defer h.listenersMu.RUnlock()

	for _, ch := range h.listeners {
		select {
		case ch <- s:
		default:
			h.logger.Warn().Str(xglog.FieldEvent, "config.listener_skip").Msg("skipped notifying listener (channel full)")
		}
	}
}

func (h *Holder) logChanges(prev, next Snapshot) {
	if prev.Document == nil {
		return
	}
	changes := Diff(prev.Document, next.Document)
	if changes.Empty() {
		return
	}
	h.logger.Info().
		Str(xglog.FieldEvent, "config.changed").
		Str(xglog.FieldLoadID, next.Document.LoadID).
		Strs(xglog.FieldChanged, changes.Paths()).
		Msg("configuration reloaded")
}

// Watch is a convenience wrapper: it starts a Holder on path and returns it
// once the first snapshot is valid.
func Watch(ctx context.Context, path string, opts WatchOptions) (*Holder, error) {
	h := NewHolder(path, opts)
	if err := h.Watch(ctx); err != nil {
		return nil, err
	}
	return h, nil
}
