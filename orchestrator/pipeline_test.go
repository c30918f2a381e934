package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/maastricht-university/lesson-assessor/analysis"
	"github.com/maastricht-university/lesson-assessor/clients"
	cfg "github.com/maastricht-university/lesson-assessor/config"
	"github.com/maastricht-university/lesson-assessor/transcript"
	"github.com/sirupsen/logrus/hooks/test"
	"gopkg.in/yaml.v3"
)

type fakeMedia struct {
	chunks int
	err    error
}

func (f *fakeMedia) ExtractAudio(_ context.Context, _, out string) error {
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(out, []byte("mp3"), 0o644)
}

func (f *fakeMedia) SplitAudio(_ context.Context, _, dir string, _ time.Duration) ([]string, error) {
	var out []string
	for i := 0; i < f.chunks; i++ {
		p := filepath.Join(dir, fmt.Sprintf("chunk_%03d.mp3", i))
		if err := os.WriteFile(p, []byte("mp3"), 0o644); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

type fakeASR struct {
	err error
}

func (f *fakeASR) Transcribe(_ context.Context, audioPath string) ([]transcript.Utterance, error) {
	if f.err != nil {
		return nil, f.err
	}
	name := filepath.Base(audioPath)
	return []transcript.Utterance{
		{Speaker: "A", Text: "ok " + name},
		{Speaker: "B", Text: "Let's look at the next fraction, can anyone explain it? " + name},
	}, nil
}

// routedLLM answers by prompt shape. Assessment replies echo the first dialogue
// line so results can be traced back to their chunk.
type routedLLM struct {
	mu        sync.Mutex
	calls     int
	failChunk bool
}

func (r *routedLLM) Complete(_ context.Context, req clients.CompletionRequest) (clients.Completion, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()

	switch {
	case req.System == analysis.QualitativeSystemPrompt:
		return clients.Completion{Content: "교사 전문성\n- 설명이 명확함"}, nil
	case strings.Contains(req.Prompt, "[숫자]"):
		return clients.Completion{Content: "학생 참여: 20\n개념 설명: 20\n피드백: 20\n체계성: 20\n상호작용: 20"}, nil
	}
	if r.failChunk {
		return clients.Completion{}, errors.New("upstream down")
	}
	first := firstDialogueLine(req.Prompt)
	return clients.Completion{Content: fmt.Sprintf(
		"세부 평가:\n%s\n강점:\n- %s\n개선이 필요한 부분:\n- feedback after %s", first, first, first)}, nil
}

func firstDialogueLine(prompt string) string {
	_, rest, _ := strings.Cut(prompt, "3. 대화 내용:\n")
	line, _, _ := strings.Cut(rest, "\n")
	return line
}

func testConfig(t *testing.T) *cfg.Root {
	t.Helper()
	c := &cfg.Root{}
	c.Assessment = cfg.Assessment{Window: 30, Overlap: 5, Concurrency: 1}
	c.Classifier = cfg.Classifier{SignalWeight: 2, LengthWeight: 0.5, CountWeight: 0.3}
	c.Media.SegmentDuration = 10 * time.Minute
	c.Paths.Outputs = t.TempDir()
	return c
}

func newTestPipeline(t *testing.T, c *cfg.Root, d Deps) (*Pipeline, *bytes.Buffer) {
	t.Helper()
	var progress bytes.Buffer
	log, _ := test.NewNullLogger()
	d.Log = log
	d.Progress = &progress
	return NewPipeline(c, d), &progress
}

func TestRun_EndToEnd(t *testing.T) {
	c := testConfig(t)
	llm := &routedLLM{}
	p, progress := newTestPipeline(t, c, Deps{Media: &fakeMedia{chunks: 2}, Transcriber: &fakeASR{}, LLM: llm})

	res, err := p.Run(context.Background(), "/videos/lesson.mp4", "t-1")
	if err != nil {
		t.Fatal(err)
	}

	if want := "Progress: 0\nProgress: 10\nProgress: 30\nProgress: 40\nProgress: 65\nProgress: 90\nProgress: 100\n"; progress.String() != want {
		t.Errorf("progress = %q, want %q", progress.String(), want)
	}

	paths := Layout(filepath.Join(c.Paths.Outputs, "t-1"))
	raw, err := os.ReadFile(paths.Transcript)
	if err != nil {
		t.Fatal(err)
	}
	want := transcript.Header + "\n\n" +
		"Student: ok chunk_000.mp3\n" +
		"Teacher: Let's look at the next fraction, can anyone explain it? chunk_000.mp3\n" +
		"Student: ok chunk_001.mp3\n" +
		"Teacher: Let's look at the next fraction, can anyone explain it? chunk_001.mp3\n"
	if string(raw) != want {
		t.Errorf("transcript =\n%s\nwant\n%s", raw, want)
	}

	if res.Scores.Total() != 100 {
		t.Errorf("total = %d, want 100", res.Scores.Total())
	}
	if res.Metrics.TeacherTurns != 2 || res.Metrics.StudentTurns != 2 {
		t.Errorf("metrics = %+v", res.Metrics)
	}
	if len(res.Chunks) != 1 {
		t.Errorf("chunks = %d, want 1", len(res.Chunks))
	}

	md, err := os.ReadFile(paths.Report)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(md), "**Outstanding (A+)** (100 points)") {
		t.Errorf("report:\n%s", md)
	}

	var bundle map[string]any
	rawBundle, err := os.ReadFile(paths.Bundle)
	if err != nil {
		t.Fatal(err)
	}
	if err := yaml.Unmarshal(rawBundle, &bundle); err != nil {
		t.Fatal(err)
	}
	if bundle["run_id"] != res.RunID || bundle["teacher_id"] != "t-1" || bundle["total"] != 100 {
		t.Errorf("bundle = %v", bundle)
	}

	leftovers, _ := filepath.Glob(filepath.Join(paths.Dir, "audio-*"))
	if len(leftovers) != 0 {
		t.Errorf("temporary audio not removed: %v", leftovers)
	}
}

func TestTranscribe_DefaultOutputsNextToVideo(t *testing.T) {
	c := testConfig(t)
	c.Paths.Outputs = ""
	videoDir := t.TempDir()
	p, progress := newTestPipeline(t, c, Deps{Media: &fakeMedia{chunks: 1}, Transcriber: &fakeASR{}})

	path, err := p.Transcribe(context.Background(), filepath.Join(videoDir, "lesson.mp4"), "t-2")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(videoDir, "outputs", "t-2", TranscriptFile); path != want {
		t.Errorf("path = %s, want %s", path, want)
	}
	if !strings.HasSuffix(progress.String(), "Progress: 90\nProgress: 100\n") {
		t.Errorf("progress = %q", progress.String())
	}
}

func TestTranscribe_KeepAudio(t *testing.T) {
	c := testConfig(t)
	c.Media.KeepAudio = true
	p, _ := newTestPipeline(t, c, Deps{Media: &fakeMedia{chunks: 2}, Transcriber: &fakeASR{}})
	if _, err := p.Transcribe(context.Background(), "lesson.mp4", "t-3"); err != nil {
		t.Fatal(err)
	}
	dirs, _ := filepath.Glob(filepath.Join(c.Paths.Outputs, "t-3", "audio-*"))
	if len(dirs) != 1 {
		t.Fatalf("audio dirs = %v", dirs)
	}
	chunks, _ := filepath.Glob(filepath.Join(dirs[0], "chunk_*.mp3"))
	if len(chunks) != 2 {
		t.Fatalf("kept chunks = %v", chunks)
	}
}

func TestTranscribe_Errors(t *testing.T) {
	c := testConfig(t)
	boom := errors.New("boom")

	p, _ := newTestPipeline(t, c, Deps{Media: &fakeMedia{err: boom}, Transcriber: &fakeASR{}})
	_, err := p.Transcribe(context.Background(), "lesson.mp4", "t")
	if !IsKind(err, KindService) || !errors.Is(err, boom) {
		t.Errorf("media failure: err = %v", err)
	}

	p, _ = newTestPipeline(t, c, Deps{Media: &fakeMedia{chunks: 1}, Transcriber: &fakeASR{err: boom}})
	_, err = p.Transcribe(context.Background(), "lesson.mp4", "t")
	if !IsKind(err, KindService) || !errors.Is(err, boom) {
		t.Errorf("transcription failure: err = %v", err)
	}

	_, err = p.Transcribe(context.Background(), "lesson.mp4", "../escape")
	if !errors.Is(err, ErrInvalidTeacherID) {
		t.Errorf("bad teacher id: err = %v", err)
	}
}

func TestAnalyze_EmptyTranscript(t *testing.T) {
	llm := &routedLLM{}
	p, _ := newTestPipeline(t, testConfig(t), Deps{LLM: llm})

	res, err := p.Analyze(context.Background(), transcript.Header+"\n\n", "t")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Scores.AllZero() || len(res.Chunks) != 0 {
		t.Fatalf("result = %+v", res)
	}
	if llm.calls != 0 {
		t.Fatalf("llm calls = %d, want 0", llm.calls)
	}
	if !strings.Contains(res.Report, "(0 points)") {
		t.Fatalf("report:\n%s", res.Report)
	}
}

func lessonText(turns int) string {
	var b strings.Builder
	b.WriteString(transcript.Header + "\n\n")
	for i := 0; i < turns; i++ {
		role := transcript.RoleStudent
		if i%3 == 0 {
			role = transcript.RoleTeacher
		}
		fmt.Fprintf(&b, "%s: turn %03d\n", role, i)
	}
	return b.String()
}

func TestAnalyze_ParallelMatchesSequential(t *testing.T) {
	text := lessonText(130)

	run := func(concurrency int) *Result {
		c := testConfig(t)
		c.Assessment.Concurrency = concurrency
		p, _ := newTestPipeline(t, c, Deps{LLM: &routedLLM{}})
		res, err := p.Analyze(context.Background(), text, "t")
		if err != nil {
			t.Fatal(err)
		}
		return res
	}
	seq, par := run(1), run(4)

	if len(seq.Chunks) != 5 {
		t.Fatalf("chunks = %d, want 5", len(seq.Chunks))
	}
	if !reflect.DeepEqual(seq.Chunks, par.Chunks) || !reflect.DeepEqual(seq.Merged, par.Merged) {
		t.Fatal("parallel assessment differs from sequential")
	}
	for i, ca := range par.Chunks {
		want := fmt.Sprintf("turn %03d", i*25)
		if !strings.Contains(ca.Detail, want) {
			t.Errorf("chunk %d detail = %q, want it to start at %q", i, ca.Detail, want)
		}
	}
}

func TestAnalyze_ChunkFailureIsServiceError(t *testing.T) {
	p, _ := newTestPipeline(t, testConfig(t), Deps{LLM: &routedLLM{failChunk: true}})
	_, err := p.Analyze(context.Background(), lessonText(10), "t")
	if !IsKind(err, KindService) {
		t.Fatalf("err = %v, want a service error", err)
	}
	var pe *Error
	if !errors.As(err, &pe) || pe.Op != "assess chunks" {
		t.Fatalf("err = %#v", err)
	}
}
