// Package watcher reports out-of-band changes to session files. While an
// instruction is running the session's own edits hit the same files, so
// callers suppress the watcher for the duration and only human or external
// edits surface.
package watcher

import (
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// ChangeCallback is called with the path of a watched file that changed on
// disk.
type ChangeCallback func(path string)

// Config holds configuration for the watcher.
type Config struct {
	// StabilityThreshold debounces rapid successive events on one file.
	StabilityThreshold time.Duration
	OnChange           ChangeCallback
}

// Watcher monitors individual files for external modification.
type Watcher struct {
	watcher            *fsnotify.Watcher
	stabilityThreshold time.Duration
	onChange           ChangeCallback

	mu         sync.Mutex
	watched    map[string]struct{}
	suppressed bool

	debounceTimers map[string]*time.Timer
	debounceMu     sync.Mutex

	done     chan struct{}
	stopOnce sync.Once
}

// New creates a watcher. Call Start before adding files.
func New(config Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if config.StabilityThreshold == 0 {
		config.StabilityThreshold = 100 * time.Millisecond
	}

	return &Watcher{
		watcher:            fsw,
		stabilityThreshold: config.StabilityThreshold,
		onChange:           config.OnChange,
		watched:            make(map[string]struct{}),
		debounceTimers:     make(map[string]*time.Timer),
		done:               make(chan struct{}),
	}, nil
}

// Start starts the event loop.
func (w *Watcher) Start() {
	go w.eventLoop()
	log.Info().Msg("File watcher started")
}

// Stop stops the watcher and cancels pending debounce timers.
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() {
		close(w.done)
	})

	w.debounceMu.Lock()
	for _, timer := range w.debounceTimers {
		timer.Stop()
	}
	clear(w.debounceTimers)
	w.debounceMu.Unlock()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}

	log.Info().Msg("File watcher stopped")
	return nil
}

// Watch adds a file to the watch set.
func (w *Watcher) Watch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.watched[path]; ok {
		return nil
	}
	if err := w.watcher.Add(path); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	w.watched[path] = struct{}{}
	return nil
}

// Unwatch removes a file from the watch set.
func (w *Watcher) Unwatch(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.watched[path]; !ok {
		return
	}
	delete(w.watched, path)
	if err := w.watcher.Remove(path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to unwatch path")
	}
}

// Suppress mutes change callbacks. Events arriving while suppressed are
// dropped, not queued.
func (w *Watcher) Suppress() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.suppressed = true
}

// Resume re-enables change callbacks.
func (w *Watcher) Resume() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.suppressed = false
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("Watcher error")

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	w.debounceEvent(event)
}

// debounceEvent coalesces rapid changes to the same file; editors often fire
// several events per save.
func (w *Watcher) debounceEvent(event fsnotify.Event) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, exists := w.debounceTimers[event.Name]; exists {
		timer.Stop()
	}

	path := event.Name
	w.debounceTimers[path] = time.AfterFunc(w.stabilityThreshold, func() {
		w.debounceMu.Lock()
		delete(w.debounceTimers, path)
		w.debounceMu.Unlock()

		select {
		case <-w.done:
			return
		default:
		}
		w.fire(path)
	})
}

func (w *Watcher) fire(path string) {
	w.mu.Lock()
	_, watched := w.watched[path]
	suppressed := w.suppressed
	w.mu.Unlock()

	if !watched || suppressed || w.onChange == nil {
		return
	}

	log.Debug().Str("path", path).Msg("Watched file changed externally")
	w.onChange(path)
}
