package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/maastricht-university/lesson-assessor/transcript"
)

// TopicBlockSize is the block size used while accumulating lesson topics. It is
// independent of the assessment window size.
const TopicBlockSize = 100

type ScaffoldHit struct {
	Strategy string `yaml:"strategy"`
	Example  string `yaml:"example"`
}

// Metrics is the session-wide heuristic bundle. It is built once by Annotate and shared
// read-only by every chunk.
type Metrics struct {
	TeacherTurns           int                `yaml:"teacher_turns"`
	StudentTurns           int                `yaml:"student_turns"`
	TeacherQuestions       int                `yaml:"teacher_questions"`
	StudentQuestions       int                `yaml:"student_questions"`
	Explanations           int                `yaml:"explanations"`
	ProblemSolvingAttempts int                `yaml:"problem_solving_attempts"`
	ImmediateFeedback      int                `yaml:"immediate_feedback"`
	PositiveReinforcement  int                `yaml:"positive_reinforcement"`
	CorrectiveFeedback     int                `yaml:"corrective_feedback"`
	QuestionTypes          map[BloomLevel]int `yaml:"question_types,omitempty"`
	Scaffolding            []ScaffoldHit      `yaml:"scaffolding,omitempty"`
	Topics                 []string           `yaml:"topics,omitempty"`
}

// Merge returns m with the delta d folded in. Counters only ever grow.
func (m Metrics) Merge(d Metrics) Metrics {
	out := m
	out.TeacherTurns += d.TeacherTurns
	out.StudentTurns += d.StudentTurns
	out.TeacherQuestions += d.TeacherQuestions
	out.StudentQuestions += d.StudentQuestions
	out.Explanations += d.Explanations
	out.ProblemSolvingAttempts += d.ProblemSolvingAttempts
	out.ImmediateFeedback += d.ImmediateFeedback
	out.PositiveReinforcement += d.PositiveReinforcement
	out.CorrectiveFeedback += d.CorrectiveFeedback

	if len(m.QuestionTypes)+len(d.QuestionTypes) > 0 {
		out.QuestionTypes = make(map[BloomLevel]int, len(BloomLevels))
		for k, v := range m.QuestionTypes {
			out.QuestionTypes[k] += v
		}
		for k, v := range d.QuestionTypes {
			out.QuestionTypes[k] += v
		}
	}
	out.Scaffolding = append(append([]ScaffoldHit(nil), m.Scaffolding...), d.Scaffolding...)
	out.Topics = unionSorted(m.Topics, d.Topics)
	return out
}

type stage func(conv transcript.Conversation, lex Lexicon) Metrics

var stages = []stage{
	turnStage,
	teachingStage,
	engagementStage,
	feedbackStage,
	topicStage,
}

// Annotate runs every heuristic stage over the whole conversation and folds the
// per-stage deltas into one bundle.
func Annotate(conv transcript.Conversation, lex Lexicon) *Metrics {
	var m Metrics
	for _, s := range stages {
		m = m.Merge(s(conv, lex))
	}
	return &m
}

func turnStage(conv transcript.Conversation, _ Lexicon) Metrics {
	var d Metrics
	for _, l := range conv {
		isQuestion := strings.Contains(l.Text, "?")
		switch l.Role {
		case transcript.RoleTeacher:
			d.TeacherTurns++
			if isQuestion {
				d.TeacherQuestions++
			}
		default:
			d.StudentTurns++
			if isQuestion {
				d.StudentQuestions++
			}
		}
	}
	return d
}

func teachingStage(conv transcript.Conversation, lex Lexicon) Metrics {
	d := Metrics{QuestionTypes: map[BloomLevel]int{}}
	for _, l := range conv {
		if l.Role != transcript.RoleTeacher {
			continue
		}
		for _, p := range lex.Scaffolding {
			if p.Re.MatchString(l.Text) {
				d.Scaffolding = append(d.Scaffolding, ScaffoldHit{Strategy: p.Strategy, Example: l.Text})
			}
		}
		lower := strings.ToLower(l.Text)
		for _, t := range lex.BloomTriggers {
			if strings.Contains(lower, t.Phrase) {
				d.QuestionTypes[t.Level]++
				break
			}
		}
		if containsAny(lower, lex.Explanation) {
			d.Explanations++
		}
	}
	return d
}

func engagementStage(conv transcript.Conversation, lex Lexicon) Metrics {
	var d Metrics
	for _, l := range conv {
		if l.Role == transcript.RoleStudent && containsAny(strings.ToLower(l.Text), lex.ProblemSolving) {
			d.ProblemSolvingAttempts++
		}
	}
	return d
}

func feedbackStage(conv transcript.Conversation, lex Lexicon) Metrics {
	var d Metrics
	for i, l := range conv {
		if l.Role != transcript.RoleTeacher {
			continue
		}
		if i > 0 && conv[i-1].Role == transcript.RoleStudent {
			d.ImmediateFeedback++
		}
		lower := strings.ToLower(l.Text)
		if containsAny(lower, lex.Positive) {
			d.PositiveReinforcement++
		} else if containsAny(lower, lex.Corrective) {
			d.CorrectiveFeedback++
		}
	}
	return d
}

func topicStage(conv transcript.Conversation, lex Lexicon) Metrics {
	seen := map[string]bool{}
	for start := 0; start < len(conv); start += TopicBlockSize {
		end := min(start+TopicBlockSize, len(conv))
		for _, l := range conv[start:end] {
			lower := strings.ToLower(l.Text)
			for _, kw := range lex.Subjects {
				if strings.Contains(lower, kw) {
					seen[kw] = true
				}
			}
		}
	}
	var d Metrics
	for kw := range seen {
		d.Topics = append(d.Topics, kw)
	}
	sort.Strings(d.Topics)
	return d
}

// Lines renders the bundle as prompt bullet lines in a fixed order.
func (m *Metrics) Lines() []string {
	if m == nil {
		return nil
	}
	lines := []string{
		fmt.Sprintf("- teacher turns: %d, student turns: %d", m.TeacherTurns, m.StudentTurns),
		fmt.Sprintf("- teacher questions: %d, student questions: %d", m.TeacherQuestions, m.StudentQuestions),
		fmt.Sprintf("- explanations: %d", m.Explanations),
		fmt.Sprintf("- immediate feedback: %d, positive reinforcement: %d, corrective feedback: %d",
			m.ImmediateFeedback, m.PositiveReinforcement, m.CorrectiveFeedback),
		fmt.Sprintf("- problem solving attempts: %d", m.ProblemSolvingAttempts),
	}
	var qt []string
	for _, lvl := range BloomLevels {
		if n := m.QuestionTypes[lvl]; n > 0 {
			qt = append(qt, fmt.Sprintf("%s=%d", lvl, n))
		}
	}
	if len(qt) > 0 {
		lines = append(lines, "- question types: "+strings.Join(qt, ", "))
	}
	if len(m.Scaffolding) > 0 {
		counts := map[string]int{}
		var order []string
		for _, h := range m.Scaffolding {
			if counts[h.Strategy] == 0 {
				order = append(order, h.Strategy)
			}
			counts[h.Strategy]++
		}
		var parts []string
		for _, s := range order {
			parts = append(parts, fmt.Sprintf("%s=%d", s, counts[s]))
		}
		lines = append(lines, "- scaffolding: "+strings.Join(parts, ", "))
	}
	if len(m.Topics) > 0 {
		lines = append(lines, "- topics: "+strings.Join(m.Topics, ", "))
	}
	return lines
}

func containsAny(lower string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func unionSorted(a, b []string) []string {
	if len(a)+len(b) == 0 {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	for _, s := range append(append([]string(nil), a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
