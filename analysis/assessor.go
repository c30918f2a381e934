package analysis

import (
	"context"

	"github.com/maastricht-university/lesson-assessor/clients"
	"github.com/maastricht-university/lesson-assessor/transcript"
	"github.com/sirupsen/logrus"
)

// NotesBlockSize is the number of turns sent per qualitative-analysis call.
const NotesBlockSize = 100

// Chunk is one assessment window plus the session-wide context it is judged against.
// Metrics is shared by every chunk of a session.
type Chunk struct {
	Index   int
	Turns   transcript.Conversation
	Metrics *Metrics
	Notes   Notes
}

// Assessor runs the LLM-backed steps of the analysis.
type Assessor struct {
	llm         clients.Completer
	temperature float32
	log         logrus.FieldLogger
}

func NewAssessor(llm clients.Completer, temperature float32, log logrus.FieldLogger) *Assessor {
	return &Assessor{llm: llm, temperature: temperature, log: log}
}

// AssessChunk asks for feedback on one window. A transport failure is returned as an
// error; an empty or malformed reply yields a partial or empty assessment.
func (a *Assessor) AssessChunk(ctx context.Context, c Chunk) (ChunkAssessment, error) {
	resp, err := a.llm.Complete(ctx, clients.CompletionRequest{
		System:      AssessmentSystemPrompt,
		Prompt:      assessmentPrompt(c),
		Temperature: a.temperature,
	})
	if err != nil {
		return ChunkAssessment{}, err
	}
	if resp.Empty() {
		a.log.WithField("chunk", c.Index).Warn("empty assessment response")
		return ChunkAssessment{}, nil
	}
	return ParseAssessment(resp.Content), nil
}

// QualitativeNotes analyses the whole conversation in blocks of NotesBlockSize turns
// and accumulates the notes of every block.
func (a *Assessor) QualitativeNotes(ctx context.Context, conv transcript.Conversation) (Notes, error) {
	notes := Notes{}
	for start := 0; start < len(conv); start += NotesBlockSize {
		end := min(start+NotesBlockSize, len(conv))
		resp, err := a.llm.Complete(ctx, clients.CompletionRequest{
			System:      QualitativeSystemPrompt,
			Prompt:      qualitativePrompt(conv[start:end]),
			Temperature: a.temperature,
		})
		if err != nil {
			return nil, err
		}
		if resp.Empty() {
			a.log.WithField("block_start", start).Warn("empty qualitative response")
			continue
		}
		notes = notes.Add(ParseNotes(resp.Content))
	}
	return notes, nil
}

// Score asks for the five rubric scores. With no detail text there is nothing to
// grade and the call is skipped. All-zero results are logged as degraded but are
// still returned.
func (a *Assessor) Score(ctx context.Context, merged MergedAssessment, notes Notes, m *Metrics) (ScoreSet, error) {
	if merged.Detail == "" {
		a.log.Warn("no assessment detail to score; all scores are 0")
		return NewScoreSet(), nil
	}
	resp, err := a.llm.Complete(ctx, clients.CompletionRequest{
		System:      AssessmentSystemPrompt,
		Prompt:      scoringPrompt(merged, notes, m),
		Temperature: a.temperature,
	})
	if err != nil {
		return nil, err
	}
	scores := ParseScores(resp.Content)
	if scores.AllZero() {
		a.log.WithField("response", resp.Content).Warn("every score parsed as 0")
	}
	return scores, nil
}
