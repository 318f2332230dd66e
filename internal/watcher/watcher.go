// Package watcher re-runs the audit when the install root changes.
//
// The audit itself is single-shot per invocation; watch mode is a
// convenience wrapper that observes the install root with fsnotify and
// triggers a fresh audit once events have settled.
package watcher

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is the default quiet period after the last filesystem
// event before the trigger fires. Package operations touch several paths
// in quick succession; debouncing keeps that to one audit.
const DefaultSettle = 2 * time.Second

// Watcher observes the install root and invokes a callback after changes
// settle.
type Watcher struct {
	root    string
	settle  time.Duration
	trigger func()

	fsw    *fsnotify.Watcher
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a Watcher for root that calls trigger after each settled
// burst of changes. A settle of 0 uses DefaultSettle.
func New(root string, settle time.Duration, trigger func()) (*Watcher, error) {
	if trigger == nil {
		return nil, fmt.Errorf("trigger callback cannot be nil")
	}
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Watcher{
		root:    root,
		settle:  settle,
		trigger: trigger,
		stopCh:  make(chan struct{}),
	}, nil
}

// Start begins watching the install root.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	if err := fsw.Add(w.root); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch install root %s: %w", w.root, err)
	}
	w.fsw = fsw

	w.wg.Add(1)
	go w.run()
	return nil
}

// run debounces filesystem events into trigger calls until stopped.
func (w *Watcher) run() {
	defer w.wg.Done()

	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.settle)
				timerCh = timer.C
			} else {
				if !timer.Stop() {
					<-timerCh
				}
				timer.Reset(w.settle)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "watcher: %v\n", err)
		case <-timerCh:
			timer = nil
			timerCh = nil
			w.trigger()
		case <-w.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// relevant filters out events that cannot change the active package set.
func relevant(ev fsnotify.Event) bool {
	return ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename|fsnotify.Write) != 0
}

// Stop halts the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	close(w.stopCh)
	if w.fsw != nil {
		w.fsw.Close()
	}
	w.wg.Wait()
	return nil
}
