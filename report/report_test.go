package report

import (
	"strings"
	"testing"
	"time"

	"github.com/maastricht-university/lesson-assessor/analysis"
)

var generated = time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC)

func TestScoreGrade(t *testing.T) {
	cases := []struct {
		raw, max int
		grade    string
		pct      int
	}{
		{20, 20, "Outstanding (A+)", 100},
		{18, 20, "Outstanding (A+)", 90},
		{17, 20, "Excellent (A)", 85},
		{14, 20, "Good (B)", 70},
		{12, 20, "Fair (C)", 60},
		{11, 20, "Needs Improvement (D)", 55},
		{0, 20, "Needs Improvement (D)", 0},
		{79, 100, "Good (B)", 79},
	}
	for _, c := range cases {
		s := Score{Raw: c.raw, Max: c.max}
		if s.Grade() != c.grade || s.Percentage() != c.pct {
			t.Errorf("%d/%d = %s %d%%, want %s %d%%", c.raw, c.max, s.Grade(), s.Percentage(), c.grade, c.pct)
		}
	}
}

func TestScoreStars(t *testing.T) {
	cases := []struct {
		raw  int
		want string
	}{
		{0, "-"},
		{3, "-"},
		{4, "★"},
		{11, "★★"},
		{16, "★★★★"},
		{20, "★★★★★"},
	}
	for _, c := range cases {
		if got := (Score{Raw: c.raw, Max: analysis.MaxScore}).Stars(); got != c.want {
			t.Errorf("Stars(%d) = %q, want %q", c.raw, got, c.want)
		}
	}
}

func TestRender_PerfectScores(t *testing.T) {
	scores := analysis.NewScoreSet()
	for _, d := range analysis.Dimensions {
		scores[d] = analysis.MaxScore
	}
	out := Render(Input{
		TeacherID:    "t-42",
		Generated:    generated,
		Scores:       scores,
		Strengths:    []string{"uses a | pipe", "clear\nexamples"},
		Improvements: []analysis.Improvement{{Category: analysis.CategoryFeedback, Text: "be specific"}},
		Notes:        analysis.Notes{analysis.NoteClassroomDiscourse: {"varied questions"}},
	})

	for _, want := range []string{
		"# Teaching Assessment Report",
		"- Generated: 2024-03-05 14:07",
		"- Teacher: `t-42`",
		"**Outstanding (A+)** (100 points)",
		"| Student Engagement | 20 | 20 | ★★★★★ | Outstanding (A+) | 100% |",
		"### Classroom Discourse",
		"- varied questions",
		`| Teaching practice | • uses a \| pipe |`,
		"| Teaching practice | • clear<br>examples |",
		"| Feedback | be specific | • Draft a concrete action plan<br>• ",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q\n%s", want, out)
		}
	}
}

func TestRender_Empty(t *testing.T) {
	out := Render(Input{Generated: generated, Scores: analysis.NewScoreSet()})
	for _, want := range []string{
		"**Needs Improvement (D)** (0 points)",
		"| Interaction | 0 | 20 | - | Needs Improvement (D) | 0% |",
		"_No qualitative notes._",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
	if strings.Contains(out, "Teaching practice") || strings.Contains(out, "Draft a concrete") {
		t.Error("empty input must render empty findings and improvements tables")
	}
	if strings.Contains(out, "- Teacher:") {
		t.Error("teacher line rendered without an id")
	}
}

func TestRender_StrongestAndWeakest(t *testing.T) {
	scores := analysis.ScoreSet{
		analysis.DimEngagement:  10,
		analysis.DimConcept:     18,
		analysis.DimFeedback:    18,
		analysis.DimStructure:   5,
		analysis.DimInteraction: 5,
	}
	out := Render(Input{Generated: generated, Scores: scores})
	if !strings.Contains(out, "Strongest area: **Concept Explanation**") {
		t.Error("strongest should be the first maximum")
	}
	if !strings.Contains(out, "Priority for improvement: **Lesson Structure**") {
		t.Error("weakest should be the first minimum")
	}
}
