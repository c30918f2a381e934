package analysis

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Category is the closed set of improvement areas.
type Category string

const (
	CategoryFeedback    Category = "feedback"
	CategoryConcept     Category = "concept-explanation"
	CategoryStructure   Category = "lesson-structure"
	CategoryInteraction Category = "interaction"
	CategoryEngagement  Category = "student-engagement"
	CategoryOther       Category = "other"
)

// Categories lists every category in classification priority order.
var Categories = []Category{
	CategoryFeedback, CategoryConcept, CategoryStructure,
	CategoryInteraction, CategoryEngagement, CategoryOther,
}

var categoryKeywords = map[Category][]string{
	CategoryFeedback:    {"피드백", "feedback"},
	CategoryConcept:     {"개념", "설명", "concept", "explanation", "explain"},
	CategoryStructure:   {"체계", "흐름", "structure", "flow"},
	CategoryInteraction: {"상호작용", "interaction"},
	CategoryEngagement:  {"참여", "engagement", "participation"},
}

func (c Category) Title() string {
	switch c {
	case CategoryFeedback:
		return "Feedback"
	case CategoryConcept:
		return "Concept Explanation"
	case CategoryStructure:
		return "Lesson Structure"
	case CategoryInteraction:
		return "Interaction"
	case CategoryEngagement:
		return "Student Engagement"
	}
	return "Other"
}

// ClassifyImprovement returns the first category whose keywords appear in the item.
func ClassifyImprovement(item string) Category {
	lower := strings.ToLower(item)
	for _, c := range Categories {
		for _, kw := range categoryKeywords[c] {
			if strings.Contains(lower, kw) {
				return c
			}
		}
	}
	return CategoryOther
}

type Improvement struct {
	Category Category `yaml:"category"`
	Text     string   `yaml:"text"`
}

func (i Improvement) String() string { return fmt.Sprintf("%s: %s", i.Category, i.Text) }

// MergedAssessment is the lesson-level view over every chunk assessment.
type MergedAssessment struct {
	Detail       string        `yaml:"detail"`
	Strengths    []string      `yaml:"strengths"`
	Improvements []Improvement `yaml:"improvements"`
}

// Merge concatenates detail text, de-duplicates strengths and keeps the single longest
// improvement per category. Ties keep the first one seen.
func Merge(chunks []ChunkAssessment) MergedAssessment {
	var (
		out     MergedAssessment
		details []string
		seen    = map[string]bool{}
		best    = map[Category]string{}
	)
	for _, ca := range chunks {
		details = append(details, ca.Detail)
		for _, s := range ca.Strengths {
			if !seen[s] {
				seen[s] = true
				out.Strengths = append(out.Strengths, s)
			}
		}
		for _, imp := range ca.Improvements {
			c := ClassifyImprovement(imp)
			if cur, ok := best[c]; !ok || utf8.RuneCountInString(imp) > utf8.RuneCountInString(cur) {
				best[c] = imp
			}
		}
	}
	out.Detail = strings.TrimSpace(strings.Join(details, "\n"))
	for _, c := range Categories {
		if text, ok := best[c]; ok {
			out.Improvements = append(out.Improvements, Improvement{Category: c, Text: text})
		}
	}
	return out
}
