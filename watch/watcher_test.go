package watch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
)

func TestTeacherOf(t *testing.T) {
	root := filepath.Join(os.TempDir(), "inbox")
	w := New(root, time.Second, nil, nil, nil)
	cases := []struct {
		path    string
		teacher string
		ok      bool
	}{
		{filepath.Join(root, "t-1", "lesson.mp4"), "t-1", true},
		{filepath.Join(root, "t-1", "LESSON.MOV"), "t-1", true},
		{filepath.Join(root, "t-1", "notes.txt"), "t-1", false},
		{filepath.Join(root, "t-1", ".hidden.mp4"), "", false},
		{filepath.Join(root, "lesson.mp4"), "", false},
		{filepath.Join(root, "t-1", "outputs", "t-1", "x.mp4"), "", false},
		{filepath.Join(os.TempDir(), "elsewhere", "t", "x.mp4"), "", false},
	}
	for _, c := range cases {
		teacher, ok := w.teacherOf(c.path)
		if ok != c.ok || (ok && teacher != c.teacher) {
			t.Errorf("teacherOf(%s) = %q, %v; want %q, %v", c.path, teacher, ok, c.teacher, c.ok)
		}
	}
}

func TestNew_NormalizesExtensions(t *testing.T) {
	w := New(t.TempDir(), 0, []string{"MP4", " .webm "}, nil, nil)
	if !w.exts[".mp4"] || !w.exts[".webm"] || len(w.exts) != 2 {
		t.Fatalf("exts = %v", w.exts)
	}
	if w.delay != DefaultDebounce {
		t.Fatalf("delay = %s", w.delay)
	}
}

func TestDebouncer_Coalesces(t *testing.T) {
	var fired atomic.Int32
	d := newDebouncer(50*time.Millisecond, func(string) { fired.Add(1) })
	for i := 0; i < 5; i++ {
		d.Queue("a")
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(200 * time.Millisecond)
	if n := fired.Load(); n != 1 {
		t.Fatalf("fired %d times, want 1", n)
	}
	if d.Pending() != 0 {
		t.Fatal("pending events left")
	}
}

func TestDebouncer_StopDropsPending(t *testing.T) {
	var fired atomic.Int32
	d := newDebouncer(30*time.Millisecond, func(string) { fired.Add(1) })
	d.Queue("a")
	d.Stop()
	d.Queue("b")
	time.Sleep(100 * time.Millisecond)
	if fired.Load() != 0 {
		t.Fatal("stopped debouncer fired")
	}
}

type call struct{ video, teacher string }

func TestWatcher_Run(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "t1"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "t1", "early.mp4"), []byte("v"), 0o644); err != nil {
		t.Fatal(err)
	}

	var (
		mu    sync.Mutex
		calls []call
		got   = make(chan struct{}, 8)
	)
	handler := func(_ context.Context, video, teacher string) error {
		mu.Lock()
		calls = append(calls, call{filepath.Base(video), teacher})
		mu.Unlock()
		got <- struct{}{}
		return nil
	}
	log, _ := test.NewNullLogger()
	w := New(root, 50*time.Millisecond, nil, handler, log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	if err := os.MkdirAll(filepath.Join(root, "t2"), 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	for name, body := range map[string]string{
		filepath.Join(root, "t2", "late.mov"):  "v",
		filepath.Join(root, "t2", "notes.txt"): "n",
		filepath.Join(root, "top.mp4"):         "v",
	} {
		if err := os.WriteFile(name, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	for i := 0; i < 2; i++ {
		select {
		case <-got:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for video %d", i+1)
		}
	}
	time.Sleep(200 * time.Millisecond)
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	sort.Slice(calls, func(i, j int) bool { return calls[i].video < calls[j].video })
	want := []call{{"early.mp4", "t1"}, {"late.mov", "t2"}}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", calls, want)
		}
	}
}
