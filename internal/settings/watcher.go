package settings

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"studentdesk/internal/logging"
)

// debounceDelay waits out editor write bursts before reloading.
const debounceDelay = 250 * time.Millisecond

// Watcher reloads the settings file when it changes on disk and publishes
// the parsed result to subscribers. Invalid intermediate states are
// skipped, as are writes that leave the content unchanged.
type Watcher struct {
	path string
	log  logging.Logger

	mu       sync.RWMutex
	current  *Settings
	lastHash uint64

	subsMu sync.Mutex
	subs   []chan *Settings
}

// NewWatcher creates a Watcher for the given settings path with the given
// initial state.
func NewWatcher(path string, initial *Settings) *Watcher {
	w := &Watcher{
		path: path,
		log:  logging.GetGlobal().With("component", "settings-watcher"),
	}
	if initial != nil {
		w.commit(initial)
	}
	return w
}

// Current returns the last good settings.
func (w *Watcher) Current() *Settings {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Subscribe returns a channel receiving every accepted settings reload.
func (w *Watcher) Subscribe(buffer int) chan *Settings {
	ch := make(chan *Settings, buffer)
	w.subsMu.Lock()
	w.subs = append(w.subs, ch)
	w.subsMu.Unlock()
	return ch
}

// Unsubscribe removes and closes a channel returned by Subscribe.
func (w *Watcher) Unsubscribe(ch chan *Settings) {
	if ch == nil {
		return
	}
	w.subsMu.Lock()
	defer w.subsMu.Unlock()
	for i, s := range w.subs {
		if s == ch {
			last := len(w.subs) - 1
			w.subs[i] = w.subs[last]
			w.subs[last] = nil
			w.subs = w.subs[:last]
			close(ch)
			return
		}
	}
}

// Watch blocks until ctx is done, reloading the settings file on change.
// The parent directory is watched so atomic renames are seen too.
func (w *Watcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	debounce := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounceDelay, w.reload)
	}
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()

	file := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != file {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			debounce()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("settings watch error", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	loaded, err := LoadFrom(w.path)
	if err != nil {
		w.log.Warn("settings reload rejected", "path", w.path, "error", err)
		return
	}

	h := hashSettings(loaded)
	w.mu.RLock()
	unchanged := h != 0 && h == w.lastHash
	w.mu.RUnlock()
	if unchanged {
		return
	}

	w.commit(loaded)
	w.log.Info("settings reloaded", "path", w.path)
	w.publish(loaded)
}

func (w *Watcher) commit(s *Settings) {
	w.mu.Lock()
	w.current = s
	w.lastHash = hashSettings(s)
	w.mu.Unlock()
}

func (w *Watcher) publish(s *Settings) {
	// Hold subsMu while sending to avoid send-on-closed panics.
	w.subsMu.Lock()
	defer w.subsMu.Unlock()
	for _, ch := range w.subs {
		if ch == nil {
			continue
		}
		select {
		case ch <- s:
		default:
			// Slow subscriber: drop the oldest update, then push the newest.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- s:
			default:
			}
		}
	}
}

func hashSettings(s *Settings) uint64 {
	if s == nil {
		return 0
	}
	data, err := json.Marshal(s)
	if err != nil {
		return 0
	}
	h := fnv.New64a()
	h.Write(data)
	return h.Sum64()
}
