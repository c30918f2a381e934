package analysis

import (
	"regexp"
	"strconv"
	"strings"
)

// Dimension is one rubric area of the final score.
type Dimension string

const (
	DimEngagement  Dimension = "student-engagement"
	DimConcept     Dimension = "concept-explanation"
	DimFeedback    Dimension = "feedback"
	DimStructure   Dimension = "structure"
	DimInteraction Dimension = "interaction"
)

const MaxScore = 20

// Dimensions lists the rubric in label-matching and display order.
var Dimensions = []Dimension{DimEngagement, DimConcept, DimFeedback, DimStructure, DimInteraction}

var dimensionLabels = map[Dimension][]string{
	DimEngagement:  {"학생 참여", "student engagement"},
	DimConcept:     {"개념 설명", "concept explanation"},
	DimFeedback:    {"피드백", "feedback"},
	DimStructure:   {"체계성", "structure"},
	DimInteraction: {"상호작용", "interaction"},
}

// Label is the name the scoring prompt asks the model to use.
func (d Dimension) Label() string { return dimensionLabels[d][0] }

func (d Dimension) Title() string {
	switch d {
	case DimEngagement:
		return "Student Engagement"
	case DimConcept:
		return "Concept Explanation"
	case DimFeedback:
		return "Feedback"
	case DimStructure:
		return "Lesson Structure"
	case DimInteraction:
		return "Interaction"
	}
	return string(d)
}

// ScoreSet maps every rubric dimension to a score in [0, MaxScore].
type ScoreSet map[Dimension]int

func NewScoreSet() ScoreSet {
	s := make(ScoreSet, len(Dimensions))
	for _, d := range Dimensions {
		s[d] = 0
	}
	return s
}

func (s ScoreSet) Total() int {
	t := 0
	for _, d := range Dimensions {
		t += s[d]
	}
	return t
}

func (s ScoreSet) AllZero() bool { return s.Total() == 0 }

var digitRun = regexp.MustCompile(`[0-9]+`)

// outOf matches the scale in "8/20", "8 out of 20" and "20점 만점에".
var outOf = regexp.MustCompile(`(?i)(/\s*[0-9]+|out\s+of\s+[0-9]+|[0-9]+\s*점\s*만점)`)

// ParseScores reads "label: number" lines. The longest digit run on a line is the
// value (first one on ties), ignoring denominators such as the 20 in "8/20"; lines
// without a known label or without digits are skipped. Values above MaxScore are
// clamped.
func ParseScores(resp string) ScoreSet {
	scores := NewScoreSet()
	for _, line := range strings.Split(resp, "\n") {
		d, ok := matchDimension(line)
		if !ok {
			continue
		}
		run := longestRun(line)
		if run == "" {
			continue
		}
		n, err := strconv.Atoi(run)
		if err != nil || n > MaxScore {
			n = MaxScore
		}
		scores[d] = n
	}
	return scores
}

func matchDimension(line string) (Dimension, bool) {
	lower := strings.ToLower(line)
	for _, d := range Dimensions {
		for _, label := range dimensionLabels[d] {
			if strings.Contains(lower, label) {
				return d, true
			}
		}
	}
	return "", false
}

func longestRun(line string) string {
	best := ""
	for _, r := range digitRun.FindAllString(outOf.ReplaceAllString(line, " "), -1) {
		if len(r) > len(best) {
			best = r
		}
	}
	return best
}
