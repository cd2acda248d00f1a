package filewatcher

import (
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	"github.com/rbxpath/rbxpath/internal/projectpath"
	"github.com/rbxpath/rbxpath/internal/walk"
)

// watchAddMode is used to indicate whether watchRecursively should synthesize events
// for existing files.
type watchAddMode int

const (
	dontSynthesizeEvents watchAddMode = iota
	synthesizeEvents
)

type fsNotifyBackend struct {
	watcher *fsnotify.Watcher
	events  chan Event
	errors  chan error
	logger  hclog.Logger

	mu      sync.Mutex
	filters []*walk.Filter
	started bool
	closed  bool
}

func (f *fsNotifyBackend) Events() <-chan Event {
	return f.events
}

func (f *fsNotifyBackend) Errors() <-chan error {
	return f.errors
}

// Close stops the underlying watcher. The event channels are closed by the
// watch loop once it drains, or here if it never started.
func (f *fsNotifyBackend) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrFilewatchingClosed
	}
	f.closed = true
	if !f.started {
		close(f.events)
		close(f.errors)
	}
	return f.watcher.Close()
}

// onFileAdded helps up paper over cross-platform inconsistencies in fsnotify.
// Some fsnotify backends automatically add the contents of directories. Some do
// not. Adding a watch is idempotent, so anytime any file we care about gets added,
// watch it.
func (f *fsNotifyBackend) onFileAdded(name projectpath.AbsoluteSystemPath, filter *walk.Filter) error {
	info, err := name.Lstat()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// We can race with a file being added and removed. Ignore it
			return nil
		}
		return errors.Wrapf(err, "error checking lstat of new file %v", name)
	}
	if info.IsDir() {
		// If a directory has been added, we need to synthesize events for everything it contains
		if err := f.watchRecursively(name, filter, synthesizeEvents); err != nil {
			return errors.Wrapf(err, "failed recursive watch of %v", name)
		}
	}
	return nil
}

// watchRecursively adds a watch for every directory below root that filter
// keeps. Synthesized events are collected and sent after the lock is
// released so that a slow consumer cannot hold up Close.
func (f *fsNotifyBackend) watchRecursively(root projectpath.AbsoluteSystemPath, filter *walk.Filter, addMode watchAddMode) error {
	var synthesized []Event
	err := func() error {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.closed {
			return ErrFilewatchingClosed
		}
		return filter.Walk(root, func(entry walk.Entry) error {
			if entry.IsDir && (entry.Mode&os.ModeSymlink == 0) {
				if err := f.watcher.Add(entry.Path.ToString()); err != nil {
					return errors.Wrapf(err, "failed adding watch to %v", entry.Path)
				}
				f.logger.Debug("watching directory", "path", entry.Path)
			}
			if addMode == synthesizeEvents && entry.Path != root {
				synthesized = append(synthesized, Event{
					Path:      entry.Path,
					EventType: FileAdded,
				})
			}
			return nil
		})
	}()
	if err != nil {
		if errors.Is(err, ErrFilewatchingClosed) {
			return nil
		}
		return err
	}
	for _, ev := range synthesized {
		f.events <- ev
	}
	return nil
}

// filterFor returns the filter of the root that contains name.
func (f *fsNotifyBackend) filterFor(name projectpath.AbsoluteSystemPath) (*walk.Filter, projectpath.AnchoredUnixPath, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, filter := range f.filters {
		if anchored, err := filter.Root().Anchor(name); err == nil {
			return filter, anchored.ToUnixPath(), true
		}
	}
	return nil, "", false
}

func (f *fsNotifyBackend) watch() {
	defer func() {
		close(f.events)
		close(f.errors)
	}()
outer:
	for {
		select {
		case ev, ok := <-f.watcher.Events:
			if !ok {
				break outer
			}
			path := projectpath.AbsoluteSystemPathFromUpstream(ev.Name)
			filter, rel, ok := f.filterFor(path)
			if !ok {
				continue
			}
			isDir := path.DirExists()
			if filter.Skip(rel, isDir) {
				f.logger.Trace("skipping event", "path", rel)
				continue
			}
			eventType := toFileEvent(ev.Op)
			f.events <- Event{
				Path:      path,
				EventType: eventType,
			}
			if eventType == FileAdded && isDir {
				if err := f.onFileAdded(path, filter); err != nil {
					f.errors <- err
				}
			}
		case err, ok := <-f.watcher.Errors:
			if !ok {
				break outer
			}
			f.errors <- err
		}
	}
}

var _modifiedMask = fsnotify.Chmod | fsnotify.Write

func toFileEvent(op fsnotify.Op) FileEvent {
	if op&fsnotify.Create != 0 {
		return FileAdded
	} else if op&fsnotify.Remove != 0 {
		return FileDeleted
	} else if op&_modifiedMask != 0 {
		return FileModified
	} else if op&fsnotify.Rename != 0 {
		return FileRenamed
	}
	return FileOther
}

func (f *fsNotifyBackend) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrFilewatchingClosed
	}
	if f.started {
		return nil
	}
	f.started = true
	go f.watch()
	return nil
}

func (f *fsNotifyBackend) AddRoot(root projectpath.AbsoluteSystemPath, filter *walk.Filter) error {
	f.mu.Lock()
	f.filters = append(f.filters, filter)
	f.mu.Unlock()
	// We don't synthesize events for the initial watch
	return f.watchRecursively(root, filter, dontSynthesizeEvents)
}

// GetBackend returns the fsnotify filewatching backend.
func GetBackend(logger hclog.Logger) (Backend, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &fsNotifyBackend{
		watcher: watcher,
		events:  make(chan Event),
		errors:  make(chan error),
		logger:  logger.Named("fsnotify"),
	}, nil
}
