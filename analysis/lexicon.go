package analysis

import "regexp"

// BloomLevel is a question type from Bloom's taxonomy.
type BloomLevel string

const (
	BloomKnowledge     BloomLevel = "knowledge"
	BloomComprehension BloomLevel = "comprehension"
	BloomApplication   BloomLevel = "application"
	BloomAnalysis      BloomLevel = "analysis"
	BloomSynthesis     BloomLevel = "synthesis"
	BloomEvaluation    BloomLevel = "evaluation"
)

var BloomLevels = []BloomLevel{
	BloomKnowledge, BloomComprehension, BloomApplication,
	BloomAnalysis, BloomSynthesis, BloomEvaluation,
}

type ScaffoldPattern struct {
	Strategy string
	Re       *regexp.Regexp
}

type BloomTrigger struct {
	Level  BloomLevel
	Phrase string
}

// Lexicon holds the phrase lists the annotator matches against. All phrase matching
// is a case-insensitive substring test.
type Lexicon struct {
	Scaffolding    []ScaffoldPattern
	BloomTriggers  []BloomTrigger // first match wins per utterance; list longer phrases first
	Explanation    []string
	Positive       []string
	Corrective     []string
	ProblemSolving []string
	Subjects       []string
}

func DefaultLexicon() Lexicon {
	return Lexicon{
		Scaffolding: []ScaffoldPattern{
			{"step-by-step breakdown", regexp.MustCompile(`(?i)let'?s break this down`)},
			{"link to prior learning", regexp.MustCompile(`(?i)remember when we`)},
			{"extend thinking", regexp.MustCompile(`(?i)think about what happens if`)},
			{"elicit explanation", regexp.MustCompile(`(?i)can you explain why`)},
		},
		BloomTriggers: []BloomTrigger{
			{BloomAnalysis, "what is the difference"},
			{BloomKnowledge, "what is"},
			{BloomComprehension, "in your own words"},
			{BloomComprehension, "what does that mean"},
			{BloomApplication, "how would you use"},
			{BloomApplication, "how could you apply"},
			{BloomAnalysis, "why do you think"},
			{BloomSynthesis, "what if"},
			{BloomSynthesis, "can you come up with"},
			{BloomEvaluation, "do you agree"},
			{BloomEvaluation, "which is better"},
		},
		Explanation:    []string{"because", "this means", "for example", "in other words", "the reason"},
		Positive:       []string{"good", "excellent", "right", "great", "well done"},
		Corrective:     []string{"instead", "try", "not quite", "almost"},
		ProblemSolving: []string{"i think", "maybe it's", "i guess"},
		Subjects: []string{
			"fraction", "multiply", "divide", "add", "subtract",
			"equation", "problem solving", "pizza", "pumpkin",
		},
	}
}
