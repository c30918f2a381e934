package orchestrator

import (
	"time"

	"github.com/maastricht-university/lesson-assessor/analysis"
	"github.com/maastricht-university/lesson-assessor/transcript"
)

// Result is the outcome of one analysis run.
type Result struct {
	RunID        string
	TeacherID    string
	Generated    time.Time
	Conversation transcript.Conversation
	Metrics      *analysis.Metrics
	Notes        analysis.Notes
	Chunks       []analysis.ChunkAssessment // indexed by chunk
	Merged       analysis.MergedAssessment
	Scores       analysis.ScoreSet
	Report       string
}
