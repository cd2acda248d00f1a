// Package signals turns process interrupts into a shutdown notification.
package signals

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Watcher runs registered closers once, on the first interrupt or on Close.
type Watcher struct {
	doneCh  chan struct{}
	closed  bool
	mu      sync.Mutex
	closers []func()
	stop    func()
}

// AddOnClose registers closer to run when the watcher closes.
func (w *Watcher) AddOnClose(closer func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closers = append(w.closers, closer)
}

// Close runs the registered closers and stops listening for signals.
func (w *Watcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	for _, closer := range w.closers {
		closer()
	}
	w.closers = nil
	w.stop()
	close(w.doneCh)
}

// Done is closed once the watcher has closed.
func (w *Watcher) Done() <-chan struct{} {
	return w.doneCh
}

// Context returns a child of parent that is cancelled when the watcher
// closes.
func (w *Watcher) Context(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	w.AddOnClose(cancel)
	return ctx, cancel
}

// NewWatcher returns a Watcher listening for SIGINT, SIGTERM and SIGQUIT.
func NewWatcher() *Watcher {
	return newWatcher(os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
}

func newWatcher(sigs ...os.Signal) *Watcher {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, sigs...)
	w := &Watcher{
		doneCh: make(chan struct{}),
		stop:   func() { signal.Stop(signalCh) },
	}
	go func() {
		select {
		case <-signalCh:
			w.Close()
		case <-w.doneCh:
		}
	}()
	return w
}
