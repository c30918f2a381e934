package analysis

import "strings"

// ChunkAssessment is the parsed LLM feedback for one window of the conversation.
type ChunkAssessment struct {
	Detail       string   `yaml:"detail"`
	Strengths    []string `yaml:"strengths,omitempty"`
	Improvements []string `yaml:"improvements,omitempty"`
}

const (
	sectionStrengths section = iota + 1
	sectionImprovements
	sectionDetail
)

var assessmentHeaders = []header{
	{sectionStrengths, []string{"특히 우수한 부분", "강점"}, []string{"strength"}},
	{sectionImprovements, []string{"개선이 필요한 부분", "약점"}, []string{"improvement", "weakness"}},
	{sectionDetail, []string{"세부 평가"}, []string{"detailed assessment", "detailed evaluation"}},
}

// ParseAssessment extracts strengths, improvements and detail text from a free-form
// completion. Bullets are items under strengths and improvements; under the detail
// header only plain lines are kept. It never fails: missing sections stay empty and
// stray prose is ignored.
func ParseAssessment(resp string) ChunkAssessment {
	var (
		out    ChunkAssessment
		detail []string
	)
	scanSections(resp, assessmentHeaders, func(s section, l sectionLine) {
		switch s {
		case sectionStrengths:
			if l.bullet && l.item != "" {
				out.Strengths = append(out.Strengths, l.item)
			}
		case sectionImprovements:
			if l.bullet && l.item != "" {
				out.Improvements = append(out.Improvements, l.item)
			}
		case sectionDetail:
			if !l.bullet {
				detail = append(detail, l.text)
			}
		}
	})
	out.Detail = strings.Join(detail, "\n")
	return out
}
