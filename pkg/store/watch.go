package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// EventType describes the nature of a persistence change notification.
type EventType int

const (
	// EventNotebookChanged indicates the named notebook was written or
	// erased.
	EventNotebookChanged EventType = iota

	// EventCatalogInvalidated signals that the set of notebooks may have
	// changed and callers should refresh their full view.
	EventCatalogInvalidated
)

func (t EventType) String() string {
	switch t {
	case EventNotebookChanged:
		return "changed"
	case EventCatalogInvalidated:
		return "invalidated"
	default:
		return fmt.Sprintf("EventType(%d)", int(t))
	}
}

// Event is emitted by Persistence.Watch when underlying storage changes.
type Event struct {
	Type EventType
	Name string
}

// watchDelay is how long Watch coalesces a burst of writes.
const watchDelay = 100 * time.Millisecond

// Watch streams change events until ctx is cancelled. Callers should drain the
// returned channel to avoid blocking the watcher. The channel is closed once
// ctx is done or the watcher encounters an unrecoverable error.
func (p *persistence) Watch(ctx context.Context) (<-chan Event, error) {
	if err := os.MkdirAll(p.basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				p.log.Warn("watcher close failed", zap.Error(err))
			}
		})
	}

	dirs, err := collectDirs(p.basePath)
	if err != nil {
		closeWatcher()
		return nil, fmt.Errorf("store: enumerate directories: %w", err)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			closeWatcher()
			return nil, fmt.Errorf("store: watch %s: %w", dir, err)
		}
	}

	events := make(chan Event, 64)
	throttle := newEventThrottle(watchDelay)

	go func() {
		defer throttle.Stop()
		defer closeWatcher()

		watched := make(map[string]struct{}, len(dirs))
		for _, dir := range dirs {
			watched[dir] = struct{}{}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				p.log.Debug("watcher error", zap.Error(err))
				throttle.Enqueue(Event{Type: EventCatalogInvalidated})
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op&fsnotify.Create == fsnotify.Create {
					// A new notebook directory; watch it for the document write.
					if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
						dir := filepath.Clean(evt.Name)
						if _, found := watched[dir]; !found {
							if err := watcher.Add(dir); err != nil {
								p.log.Warn("watch directory failed", zap.String("dir", dir), zap.Error(err))
							} else {
								watched[dir] = struct{}{}
							}
						}
						throttle.Enqueue(Event{Type: EventCatalogInvalidated})
						continue
					}
				}
				if name := p.notebookForPath(evt.Name); name != "" {
					throttle.Enqueue(Event{Type: EventNotebookChanged, Name: name})
				} else {
					throttle.Enqueue(Event{Type: EventCatalogInvalidated})
				}
			}
		}
	}()

	go func() {
		for batch := range throttle.Batches() {
			for _, ev := range batch {
				select {
				case events <- ev:
				default:
					// Drop events if the consumer is not ready; a later
					// refresh picks the change up.
				}
			}
		}
		close(events)
	}()

	return events, nil
}

// collectDirs walks base and returns all directories that should be watched.
func collectDirs(base string) ([]string, error) {
	dirs := []string{base}
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() && path != base {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}

// notebookForPath derives the notebook name from a diskv path.
func (p *persistence) notebookForPath(path string) string {
	rel, err := filepath.Rel(p.basePath, path)
	if err != nil || rel == "." {
		return ""
	}
	parts := strings.Split(rel, string(os.PathSeparator))
	if parts[0] == "" {
		return ""
	}
	name, err := fromKey(parts[0])
	if err != nil {
		return ""
	}
	return name
}

// eventThrottle coalesces rapid change notifications so the UI can redraw once
// per burst of filesystem activity instead of on every single write.
type eventThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[Event]struct{}
	delay   time.Duration
	stopped bool
	out     chan []Event
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{
		delay:   delay,
		pending: make(map[Event]struct{}),
		out:     make(chan []Event, 1),
	}
}

func (t *eventThrottle) Enqueue(ev Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.pending[ev] = struct{}{}
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, t.flush)
	}
}

// Batches delivers coalesced events. It is closed by Stop.
func (t *eventThrottle) Batches() <-chan []Event {
	return t.out
}

func (t *eventThrottle) flush() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timer = nil
	if t.stopped || len(t.pending) == 0 {
		return
	}
	batch := t.takeLocked()
	select {
	case t.out <- batch:
	default:
		// Consumer still busy with the previous batch; merge back and retry.
		for _, ev := range batch {
			t.pending[ev] = struct{}{}
		}
		t.timer = time.AfterFunc(t.delay, t.flush)
	}
}

func (t *eventThrottle) takeLocked() []Event {
	batch := make([]Event, 0, len(t.pending))
	for ev := range t.pending {
		batch = append(batch, ev)
	}
	t.pending = make(map[Event]struct{})
	return batch
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	close(t.out)
}
