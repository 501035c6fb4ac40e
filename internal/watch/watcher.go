// ============================================================================
// mLANG - Front end for a small imperative language
// ============================================================================
//
// Package:     watch
// Description: Re-parses a source file whenever it changes on disk
// Author:      msto63
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package watch

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	mlerror "github.com/msto63/mlang/foundation/core/error"
	mllog "github.com/msto63/mlang/foundation/core/log"
	"github.com/msto63/mlang/foundation/lang"
)

// DefaultDebounce is the quiet period before a changed file is re-parsed
const DefaultDebounce = 250 * time.Millisecond

// Event reports one parse of the watched file
type Event struct {
	Path   string
	Source string
	Result *lang.Result
	Err    error
	Time   time.Time
	Seq    int
}

// Handler receives parse events. It runs on the watcher goroutine.
type Handler func(Event)

// Options configures a Watcher
type Options struct {
	Path     string
	Debounce time.Duration
	Engine   *lang.Engine
	Logger   *mllog.Logger
}

// Watcher parses a file once and again after every write
type Watcher struct {
	path     string
	debounce time.Duration
	engine   *lang.Engine
	logger   *mllog.Logger
	handler  Handler
	seq      int
}

// New creates a watcher for opts.Path. Nothing is watched until Run.
func New(opts Options, handler Handler) (*Watcher, error) {
	if opts.Path == "" {
		return nil, mlerror.New("watch path is required").
			WithCode(mlerror.CodeInvalidInput).
			WithOperation("watch.New")
	}
	if handler == nil {
		return nil, mlerror.New("watch handler is required").
			WithCode(mlerror.CodeInvalidInput).
			WithOperation("watch.New")
	}

	path, err := filepath.Abs(opts.Path)
	if err != nil {
		return nil, mlerror.Wrap(err, "failed to resolve watch path").
			WithCode(mlerror.CodeIOError).
			WithOperation("watch.New")
	}

	w := &Watcher{
		path:     path,
		debounce: opts.Debounce,
		engine:   opts.Engine,
		logger:   opts.Logger,
		handler:  handler,
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.logger == nil {
		w.logger = mllog.Discard()
	}
	w.logger = w.logger.WithField("component", "watch")
	if w.engine == nil {
		w.engine, err = lang.NewEngine(lang.Options{Logger: w.logger})
		if err != nil {
			return nil, err
		}
	}

	return w, nil
}

// Path returns the absolute path of the watched file
func (w *Watcher) Path() string {
	return w.path
}

// Run parses the file, then blocks re-parsing it after each change until
// ctx is cancelled. The parent directory is watched so that editors that
// replace the file on save are followed.
func (w *Watcher) Run(ctx context.Context) error {
	if _, err := os.Stat(w.path); err != nil {
		return mlerror.Wrap(err, "cannot watch file").
			WithCode(mlerror.CodeNotFound).
			WithOperation("watch.Run").
			WithDetail("path", w.path)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return mlerror.Wrap(err, "failed to create watcher").
			WithCode(mlerror.CodeIOError).
			WithOperation("watch.Run")
	}
	defer fsw.Close()

	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return mlerror.Wrap(err, "failed to watch directory").
			WithCode(mlerror.CodeIOError).
			WithOperation("watch.Run").
			WithDetail("dir", filepath.Dir(w.path))
	}

	w.logger.Info("started watching", mllog.Fields{"path": w.path, "debounce_ms": w.debounce.Milliseconds()})
	w.parse()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("stopping watcher (context cancelled)")
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Trace("file event", mllog.Fields{"op": event.Op.String()})

			// Restart the quiet period on every event
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.parse()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.ErrorWithErr("watcher error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		w.logger.Warn("watched file removed, waiting for it to reappear", mllog.Fields{"op": event.Op.String()})
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

func (w *Watcher) parse() {
	w.seq++
	ev := Event{Path: w.path, Time: time.Now(), Seq: w.seq}

	data, err := os.ReadFile(w.path)
	if err != nil {
		ev.Err = mlerror.Wrap(err, "failed to read source").
			WithCode(mlerror.CodeIOError).
			WithOperation("watch.parse").
			WithDetail("path", w.path)
		w.logger.LogError(ev.Err)
		w.handler(ev)
		return
	}

	ev.Source = string(data)
	ev.Result, ev.Err = w.engine.Parse(ev.Source)

	fields := mllog.Fields{"seq": ev.Seq, "ok": ev.Err == nil}
	if ev.Result != nil {
		fields["statements"] = ev.Result.Stats.Statements
	}
	w.logger.Debug("re-parsed", fields)

	w.handler(ev)
}
