package watch

import (
	"sync"
	"time"
)

// debouncer fires fn(path) once a path has seen no new events for delay.
type debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	pending map[string]*time.Timer
	stopped bool
	fn      func(path string)
}

func newDebouncer(delay time.Duration, fn func(path string)) *debouncer {
	return &debouncer{delay: delay, pending: map[string]*time.Timer{}, fn: fn}
}

// Queue starts or restarts the quiet period for path.
func (d *debouncer) Queue(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if t, ok := d.pending[path]; ok && t.Stop() {
		t.Reset(d.delay)
		return
	}
	d.pending[path] = time.AfterFunc(d.delay, func() { d.fire(path) })
}

func (d *debouncer) fire(path string) {
	d.mu.Lock()
	_, ok := d.pending[path]
	delete(d.pending, path)
	stopped := d.stopped
	d.mu.Unlock()
	if ok && !stopped {
		d.fn(path)
	}
}

func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	for _, t := range d.pending {
		t.Stop()
	}
	d.pending = map[string]*time.Timer{}
}

func (d *debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
