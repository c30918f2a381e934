package analysis

import (
	"reflect"
	"testing"
)

func TestClassifyImprovement(t *testing.T) {
	cases := map[string]Category{
		"피드백이 부족함":                  CategoryFeedback,
		"Give more specific feedback": CategoryFeedback,
		"개념 설명이 모호함":                CategoryConcept,
		"수업 흐름이 끊김":                 CategoryStructure,
		"More interaction in pairs":   CategoryInteraction,
		"student participation low":   CategoryEngagement,
		"speak louder":                CategoryOther,
		// feedback is checked before concept
		"feedback on the concept": CategoryFeedback,
	}
	for in, want := range cases {
		if got := ClassifyImprovement(in); got != want {
			t.Errorf("ClassifyImprovement(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestMerge(t *testing.T) {
	chunks := []ChunkAssessment{
		{
			Detail:       "A",
			Strengths:    []string{"s1", "s2"},
			Improvements: []string{"피드백이 부족함", "more concept explanation needed for fractions"},
		},
		{},
		{
			Detail:       "B",
			Strengths:    []string{"s2", "s3"},
			Improvements: []string{"피드백을 더 구체적으로 제공해야 함", "random thing", "student participation low"},
		},
	}
	got := Merge(chunks)

	if got.Detail != "A\n\nB" {
		t.Errorf("detail = %q", got.Detail)
	}
	if want := []string{"s1", "s2", "s3"}; !reflect.DeepEqual(got.Strengths, want) {
		t.Errorf("strengths = %q, want %q", got.Strengths, want)
	}
	want := []Improvement{
		{CategoryFeedback, "피드백을 더 구체적으로 제공해야 함"},
		{CategoryConcept, "more concept explanation needed for fractions"},
		{CategoryEngagement, "student participation low"},
		{CategoryOther, "random thing"},
	}
	if !reflect.DeepEqual(got.Improvements, want) {
		t.Errorf("improvements = %v, want %v", got.Improvements, want)
	}
}

func TestMerge_TieKeepsFirst(t *testing.T) {
	got := Merge([]ChunkAssessment{
		{Improvements: []string{"feedback a"}},
		{Improvements: []string{"feedback b"}},
	})
	if len(got.Improvements) != 1 || got.Improvements[0].Text != "feedback a" {
		t.Fatalf("improvements = %v", got.Improvements)
	}
}

func TestMerge_AtMostOnePerCategory(t *testing.T) {
	var chunks []ChunkAssessment
	for _, item := range []string{"피드백", "개념", "흐름", "상호작용", "참여", "x", "feedback again", "other again"} {
		chunks = append(chunks, ChunkAssessment{Improvements: []string{item}})
	}
	got := Merge(chunks)
	if len(got.Improvements) != len(Categories) {
		t.Fatalf("got %d improvements, want %d", len(got.Improvements), len(Categories))
	}
	seen := map[Category]bool{}
	for _, imp := range got.Improvements {
		if seen[imp.Category] {
			t.Fatalf("duplicate category %s", imp.Category)
		}
		seen[imp.Category] = true
	}
}

func TestMerge_Empty(t *testing.T) {
	got := Merge(nil)
	if got.Detail != "" || got.Strengths != nil || got.Improvements != nil {
		t.Fatalf("Merge(nil) = %+v", got)
	}
}
