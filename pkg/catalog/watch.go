package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// Event signals a change to a bundle descriptor under the catalog root.
// The catalog re-indexes the touched descriptor before emitting.
type Event struct {
	ID        string // affected bundle id, when resolvable
	Path      string // descriptor path relative to the root
	Timestamp int64  // Unix timestamp
}

// Watch starts a filesystem watcher over the catalog root and emits an
// Event whenever a bundle descriptor is created, modified, or removed.
// Cancel ctx to stop the watcher.
func (c *Catalog) Watch(ctx context.Context) (<-chan Event, error) {
	c.mu.RLock()
	initialized := c.initialized
	c.mu.RUnlock()
	if !initialized {
		return nil, errors.New("catalog is not initialized")
	}

	events := make(chan Event, 16)
	w := newWatchWorker(c, events)
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return events, nil
}

type watchWorker struct {
	*worker.BaseWorker
	catalog   *Catalog
	events    chan<- Event
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	cancel    context.CancelFunc
}

func newWatchWorker(c *Catalog, events chan<- Event) *watchWorker {
	return &watchWorker{
		BaseWorker: worker.NewBaseWorker("catalog-watcher"),
		catalog:    c,
		events:     events,
	}
}

func (w *watchWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.recursiveAdd(watcher); err != nil {
		_ = watcher.Close()
		return err
	}

	w.watcher = watcher
	w.debouncer = newDebouncer(50 * time.Millisecond)
	w.catalog.setWatcherActive(true)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *watchWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}
	return w.BaseWorker.Stop(ctx)
}

func (w *watchWorker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
		}
	})
}

// recursiveAdd watches the root, every category directory, and every bundle
// directory, skipping .git and the system directory.
func (w *watchWorker) recursiveAdd(watcher *fsnotify.Watcher) error {
	return filepath.WalkDir(w.catalog.config.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" || d.Name() == w.catalog.config.SystemDir {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func (w *watchWorker) run(ctx context.Context) error {
	defer w.catalog.setWatcherActive(false)
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			w.debouncer.stopAndWait(5 * time.Second)
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.handleEvent(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			if w.catalog.config.Logger != nil {
				w.catalog.config.Logger.Error("fsnotify error", "error", wErr)
			}
		}
	}
}

func (w *watchWorker) handleEvent(ctx context.Context, event fsnotify.Event) {
	// Bundle directories appearing after startup must be watched too.
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if filepath.Base(event.Name) != w.catalog.config.SystemDir {
				_ = w.watcher.Add(event.Name)
			}
			return
		}
	}

	rel, err := filepath.Rel(w.catalog.config.Root, event.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)
	if ok, _ := doublestar.Match(descriptorPattern, rel); !ok {
		return
	}

	if w.catalog.config.Logger != nil {
		w.catalog.config.Logger.Debug("descriptor event", "path", rel, "op", event.Op.String())
	}

	w.debouncer.add(rel, func() {
		id := w.catalog.reindex(rel)
		e := Event{ID: id, Path: rel, Timestamp: time.Now().Unix()}

		// The events channel may be torn down while a timer is in flight.
		defer func() { _ = recover() }()
		select {
		case w.events <- e:
		case <-ctx.Done():
		}
	})
}
