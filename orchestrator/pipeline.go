package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/maastricht-university/lesson-assessor/analysis"
	"github.com/maastricht-university/lesson-assessor/clients"
	cfg "github.com/maastricht-university/lesson-assessor/config"
	"github.com/maastricht-university/lesson-assessor/report"
	"github.com/maastricht-university/lesson-assessor/transcript"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Media extracts and splits audio. *media.FFmpeg implements it.
type Media interface {
	ExtractAudio(ctx context.Context, videoPath, outPath string) error
	SplitAudio(ctx context.Context, audioPath, dir string, segment time.Duration) ([]string, error)
}

// Deps are the collaborators a Pipeline drives. Progress receives "Progress: N" lines
// and defaults to io.Discard.
type Deps struct {
	Media       Media
	Transcriber clients.Transcriber
	LLM         clients.Completer
	Log         logrus.FieldLogger
	Progress    io.Writer
}

type Pipeline struct {
	cfg      *cfg.Root
	media    Media
	asr      clients.Transcriber
	assessor *analysis.Assessor
	lexicon  analysis.Lexicon
	weights  transcript.ClassifierWeights
	log      logrus.FieldLogger
	progress io.Writer
	now      func() time.Time
}

func NewPipeline(c *cfg.Root, d Deps) *Pipeline {
	log := d.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	progress := d.Progress
	if progress == nil {
		progress = io.Discard
	}
	weights := transcript.ClassifierWeights{
		Signal:    c.Classifier.SignalWeight,
		AvgLength: c.Classifier.LengthWeight,
		Count:     c.Classifier.CountWeight,
		Phrases:   c.Classifier.Phrases,
	}
	if len(weights.Phrases) == 0 {
		weights.Phrases = transcript.DefaultTeacherPhrases
	}
	return &Pipeline{
		cfg:      c,
		media:    d.Media,
		asr:      d.Transcriber,
		assessor: analysis.NewAssessor(d.LLM, c.Services.LLM.Temperature, log),
		lexicon:  analysis.DefaultLexicon(),
		weights:  weights,
		log:      log,
		progress: progress,
		now:      time.Now,
	}
}

func (p *Pipeline) emit(n int) { fmt.Fprintf(p.progress, "Progress: %d\n", n) }

// OutputDir is <outputs>/<teacherID>. outputs defaults to an outputs/ directory next
// to the video.
func (p *Pipeline) OutputDir(videoPath, teacherID string) string {
	return filepath.Join(p.outputsRoot(videoPath), teacherID)
}

func (p *Pipeline) outputsRoot(videoPath string) string {
	if p.cfg.Paths.Outputs != "" {
		return p.cfg.Paths.Outputs
	}
	return filepath.Join(filepath.Dir(videoPath), "outputs")
}

// Transcribe writes the labeled transcript of videoPath and returns its path.
func (p *Pipeline) Transcribe(ctx context.Context, videoPath, teacherID string) (string, error) {
	paths, err := p.transcribe(ctx, videoPath, teacherID)
	if err != nil {
		return "", err
	}
	p.emit(100)
	return paths.Transcript, nil
}

func (p *Pipeline) transcribe(ctx context.Context, videoPath, teacherID string) (Paths, error) {
	p.emit(0)
	if err := checkTeacherID(teacherID); err != nil {
		return Paths{}, err
	}
	log := p.log.WithField("teacher_id", teacherID)

	paths, err := mkTeacherDir(p.outputsRoot(videoPath), teacherID)
	if err != nil {
		return Paths{}, wrap(KindIO, "create output dir", err)
	}
	w, err := transcript.Create(paths.Transcript)
	if err != nil {
		return Paths{}, wrap(KindIO, "create transcript", err)
	}
	audioDir, err := os.MkdirTemp(paths.Dir, "audio-")
	if err != nil {
		return Paths{}, wrap(KindIO, "create audio dir", err)
	}
	if !p.cfg.Media.KeepAudio {
		defer os.RemoveAll(audioDir)
	}
	p.emit(10)

	mctx, cancel := withTimeout(ctx, p.cfg.Media.Timeout)
	defer cancel()
	audio := filepath.Join(audioDir, "output.mp3")
	if err := p.media.ExtractAudio(mctx, videoPath, audio); err != nil {
		return Paths{}, wrap(KindService, "extract audio", err)
	}
	p.emit(30)

	chunks, err := p.media.SplitAudio(mctx, audio, audioDir, p.cfg.Media.SegmentDuration)
	if err != nil {
		return Paths{}, wrap(KindService, "split audio", err)
	}
	log.WithField("chunks", len(chunks)).Info("audio split")
	p.emit(40)

	for i, chunk := range chunks {
		tctx, cancel := withTimeout(ctx, p.cfg.Services.Transcription.Timeout)
		utts, err := p.asr.Transcribe(tctx, chunk)
		cancel()
		if err != nil {
			return Paths{}, wrap(KindService, fmt.Sprintf("transcribe chunk %d", i), err)
		}
		// speaker ids are only comparable inside one transcription job
		conv, teacher := transcript.Classify(utts, p.weights)
		if err := w.Append(conv); err != nil {
			return Paths{}, wrap(KindIO, "append transcript", err)
		}
		log.WithFields(logrus.Fields{
			"chunk":           i,
			"utterances":      len(utts),
			"teacher_speaker": teacher,
		}).Info("chunk transcribed")
		p.emit(40 + (i+1)*50/len(chunks))
	}
	if len(chunks) == 0 {
		log.Warn("no audio chunks to transcribe")
		p.emit(90)
	}
	log.WithField("path", paths.Transcript).Info("transcript written")
	return paths, nil
}

// Analyze assesses a transcript in the text format written by Transcribe.
func (p *Pipeline) Analyze(ctx context.Context, transcriptText, teacherID string) (*Result, error) {
	res := &Result{
		RunID:        uuid.NewString(),
		TeacherID:    teacherID,
		Generated:    p.now(),
		Conversation: transcript.ParseString(transcriptText),
	}
	log := p.log.WithFields(logrus.Fields{"run_id": res.RunID, "teacher_id": teacherID})
	if len(res.Conversation) == 0 {
		log.Warn("transcript has no turns")
	}

	res.Metrics = analysis.Annotate(res.Conversation, p.lexicon)
	notes, err := p.assessor.QualitativeNotes(ctx, res.Conversation)
	if err != nil {
		return nil, wrap(KindService, "qualitative notes", err)
	}
	res.Notes = notes

	window, overlap := p.cfg.Assessment.Window, p.cfg.Assessment.Overlap
	if !validWindow(window, overlap) {
		log.WithFields(logrus.Fields{"window": window, "overlap": overlap}).Warn("invalid window; using defaults")
	}
	windows := segment(res.Conversation, window, overlap)
	log.WithFields(logrus.Fields{"turns": len(res.Conversation), "chunks": len(windows)}).Info("transcript segmented")

	res.Chunks, err = p.assessChunks(ctx, log, windows, res.Metrics, notes)
	if err != nil {
		return nil, err
	}
	res.Merged = analysis.Merge(res.Chunks)

	res.Scores, err = p.assessor.Score(ctx, res.Merged, notes, res.Metrics)
	if err != nil {
		return nil, wrap(KindService, "score", err)
	}
	log.WithField("total", res.Scores.Total()).Info("assessment scored")

	res.Report = report.Render(report.Input{
		TeacherID:    teacherID,
		Generated:    res.Generated,
		Scores:       res.Scores,
		Strengths:    res.Merged.Strengths,
		Improvements: res.Merged.Improvements,
		Notes:        notes,
	})
	return res, nil
}

// assessChunks fans the windows out to at most assessment.concurrency workers. Results
// and log lines stay in chunk order whatever order the calls finish in.
func (p *Pipeline) assessChunks(ctx context.Context, log logrus.FieldLogger, windows []transcript.Conversation, m *analysis.Metrics, notes analysis.Notes) ([]analysis.ChunkAssessment, error) {
	out := make([]analysis.ChunkAssessment, len(windows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, p.cfg.Assessment.Concurrency))
	for i, turns := range windows {
		g.Go(func() error {
			ca, err := p.assessor.AssessChunk(gctx, analysis.Chunk{Index: i, Turns: turns, Metrics: m, Notes: notes})
			if err != nil {
				return fmt.Errorf("chunk %d: %w", i, err)
			}
			out[i] = ca
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, wrap(KindService, "assess chunks", err)
	}
	for i, ca := range out {
		log.WithFields(logrus.Fields{
			"chunk":        i,
			"turns":        len(windows[i]),
			"strengths":    len(ca.Strengths),
			"improvements": len(ca.Improvements),
		}).Info("chunk assessed")
	}
	return out, nil
}

// Write stores res as report.md and analysis.yaml under paths.
func (p *Pipeline) Write(paths Paths, res *Result) error {
	if err := persist(paths, res, p.cfg); err != nil {
		return wrap(KindIO, "write results", err)
	}
	p.log.WithFields(logrus.Fields{"report": paths.Report, "bundle": paths.Bundle}).Info("results written")
	return nil
}

// Run transcribes videoPath, analyzes the transcript and writes every output.
func (p *Pipeline) Run(ctx context.Context, videoPath, teacherID string) (*Result, error) {
	paths, err := p.transcribe(ctx, videoPath, teacherID)
	if err != nil {
		return nil, err
	}
	text, err := os.ReadFile(paths.Transcript)
	if err != nil {
		return nil, wrap(KindIO, "read transcript", err)
	}
	res, err := p.Analyze(ctx, string(text), teacherID)
	if err != nil {
		return nil, err
	}
	if err := p.Write(paths, res); err != nil {
		return nil, err
	}
	p.emit(100)
	return res, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
