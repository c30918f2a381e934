package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/maastricht-university/lesson-assessor/analysis"
)

const TimeLayout = "2006-01-02 15:04"

// Input is everything a report is rendered from.
type Input struct {
	TeacherID    string
	Generated    time.Time
	Scores       analysis.ScoreSet
	Strengths    []string
	Improvements []analysis.Improvement
	Notes        analysis.Notes
}

// Score is one raw score out of Max.
type Score struct {
	Raw int
	Max int
}

// Percentage truncates toward zero.
func (s Score) Percentage() int {
	if s.Max <= 0 {
		return 0
	}
	return s.Raw * 100 / s.Max
}

// PointsPerStar is how many raw points earn one star in the score table.
const PointsPerStar = 4

// Stars is one star per PointsPerStar raw points, or "-" below the first star.
func (s Score) Stars() string {
	if n := s.Raw / PointsPerStar; n > 0 {
		return strings.Repeat("★", n)
	}
	return "-"
}

func (s Score) Grade() string {
	switch p := s.Percentage(); {
	case p >= 90:
		return "Outstanding (A+)"
	case p >= 80:
		return "Excellent (A)"
	case p >= 70:
		return "Good (B)"
	case p >= 60:
		return "Fair (C)"
	default:
		return "Needs Improvement (D)"
	}
}

var actionSteps = []string{
	"Draft a concrete action plan",
	"Break the change into incremental steps",
	"Review progress regularly",
}

// Render formats the final assessment as markdown.
func Render(in Input) string {
	var b strings.Builder
	b.WriteString("# Teaching Assessment Report\n\n")
	if in.TeacherID != "" {
		fmt.Fprintf(&b, "- Teacher: `%s`\n", in.TeacherID)
	}
	fmt.Fprintf(&b, "- Generated: %s\n\n", in.Generated.Format(TimeLayout))

	total := Score{Raw: in.Scores.Total(), Max: analysis.MaxScore * len(analysis.Dimensions)}
	strongest, weakest := extremes(in.Scores)
	b.WriteString("## Overall Result\n\n")
	fmt.Fprintf(&b, "- Overall grade: **%s** (%d points)\n", total.Grade(), total.Raw)
	fmt.Fprintf(&b, "- Strongest area: **%s**\n", strongest.Title())
	fmt.Fprintf(&b, "- Priority for improvement: **%s**\n\n", weakest.Title())

	b.WriteString("### Scores\n\n")
	b.WriteString("| Area | Score | Max | Rating | Grade | Percentage |\n")
	b.WriteString("|:-----|:-----:|:---:|:------:|:-----:|:----------:|\n")
	for _, d := range analysis.Dimensions {
		s := Score{Raw: in.Scores[d], Max: analysis.MaxScore}
		fmt.Fprintf(&b, "| %s | %d | %d | %s | %s | %d%% |\n", d.Title(), s.Raw, s.Max, s.Stars(), s.Grade(), s.Percentage())
	}
	b.WriteString("\n---\n\n")

	b.WriteString("## Detailed Analysis\n\n")
	if in.Notes.Empty() {
		b.WriteString("_No qualitative notes._\n\n")
	}
	for _, c := range analysis.NoteCategories {
		items := in.Notes[c]
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "### %s\n\n", c.Title())
		for _, item := range items {
			fmt.Fprintf(&b, "- %s\n", item)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Key Findings\n\n")
	b.WriteString("| Area | Finding |\n")
	b.WriteString("|:-----|:--------|\n")
	for _, s := range in.Strengths {
		fmt.Fprintf(&b, "| Teaching practice | • %s |\n", cell(s))
	}
	b.WriteString("\n")

	b.WriteString("## Recommended Improvements\n\n")
	b.WriteString("| Area | Suggestion | Actions |\n")
	b.WriteString("|:-----|:-----------|:--------|\n")
	actions := "• " + strings.Join(actionSteps, "<br>• ")
	for _, imp := range in.Improvements {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", imp.Category.Title(), cell(imp.Text), actions)
	}
	return b.String()
}

// extremes returns the first highest and first lowest dimension in display order.
func extremes(s analysis.ScoreSet) (hi, lo analysis.Dimension) {
	hi, lo = analysis.Dimensions[0], analysis.Dimensions[0]
	for _, d := range analysis.Dimensions[1:] {
		if s[d] > s[hi] {
			hi = d
		}
		if s[d] < s[lo] {
			lo = d
		}
	}
	return hi, lo
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r\n", "<br>")
	return strings.ReplaceAll(s, "\n", "<br>")
}
