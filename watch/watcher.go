package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Handler processes one settled video. It runs on a single worker, so videos are
// handled one at a time in the order they settle.
type Handler func(ctx context.Context, videoPath, teacherID string) error

var DefaultExtensions = []string{".mp4", ".mov", ".mkv", ".webm", ".avi"}

const DefaultDebounce = 5 * time.Second

// Watcher watches an inbox laid out as <root>/<teacher_id>/<video>. A video is handed
// to the Handler once it has stopped changing for the debounce delay.
type Watcher struct {
	root   string
	delay  time.Duration
	exts   map[string]bool
	handle Handler
	log    logrus.FieldLogger

	mu   sync.Mutex
	seen map[string]bool
}

func New(root string, delay time.Duration, exts []string, h Handler, log logrus.FieldLogger) *Watcher {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" && !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		set[e] = true
	}
	return &Watcher{root: filepath.Clean(root), delay: delay, exts: set, handle: h, log: log, seen: map[string]bool{}}
}

// Run blocks until ctx is cancelled. Videos already present when it starts are
// processed too.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	ready := make(chan string, 64)
	deb := newDebouncer(w.delay, func(path string) {
		select {
		case ready <- path:
		case <-ctx.Done():
		}
	})
	defer deb.Stop()

	if err := fw.Add(w.root); err != nil {
		return err
	}
	entries, err := os.ReadDir(w.root)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			w.addTeacherDir(fw, deb, filepath.Join(w.root, e.Name()))
		}
	}
	w.log.WithField("root", w.root).Info("watching inbox")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case ev, ok := <-fw.Events:
				if !ok {
					return nil
				}
				w.onEvent(fw, deb, ev)
			case err, ok := <-fw.Errors:
				if !ok {
					return nil
				}
				w.log.WithError(err).Warn("watcher error")
			case <-gctx.Done():
				return nil
			}
		}
	})
	g.Go(func() error {
		for {
			select {
			case path := <-ready:
				w.process(gctx, path)
			case <-gctx.Done():
				return nil
			}
		}
	})
	return g.Wait()
}

func (w *Watcher) onEvent(fw *fsnotify.Watcher, deb *debouncer, ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return
	}
	info, err := os.Stat(ev.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if filepath.Dir(ev.Name) == w.root && ev.Has(fsnotify.Create) {
			w.addTeacherDir(fw, deb, ev.Name)
		}
		return
	}
	if _, ok := w.teacherOf(ev.Name); ok {
		deb.Queue(ev.Name)
	}
}

// addTeacherDir watches dir and queues videos that landed before the watch existed.
func (w *Watcher) addTeacherDir(fw *fsnotify.Watcher, deb *debouncer, dir string) {
	if err := fw.Add(dir); err != nil {
		w.log.WithError(err).WithField("dir", dir).Warn("cannot watch teacher directory")
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if _, ok := w.teacherOf(path); ok && !e.IsDir() {
			deb.Queue(path)
		}
	}
}

// teacherOf accepts only <root>/<teacher_id>/<file> with a video extension.
func (w *Watcher) teacherOf(path string) (string, bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return "", false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 2 || parts[0] == ".." || strings.HasPrefix(parts[1], ".") {
		return "", false
	}
	return parts[0], w.exts[strings.ToLower(filepath.Ext(parts[1]))]
}

func (w *Watcher) process(ctx context.Context, path string) {
	teacherID, _ := w.teacherOf(path)
	w.mu.Lock()
	if w.seen[path] {
		w.mu.Unlock()
		return
	}
	w.seen[path] = true
	w.mu.Unlock()

	log := w.log.WithFields(logrus.Fields{"video": path, "teacher_id": teacherID})
	log.Info("processing video")
	if err := w.handle(ctx, path, teacherID); err != nil {
		log.WithError(err).Error("video failed")
		return
	}
	log.Info("video done")
}
