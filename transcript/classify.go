package transcript

import (
	"strings"
	"unicode/utf8"
)

// DefaultTeacherPhrases are instructional discourse markers that hint a speaker is teaching.
var DefaultTeacherPhrases = []string{
	"let's", "look at", "can anyone", "tell me",
	"does anyone", "remember", "explain",
	"understand", "question", "next",
	"class", "everyone", "please",
}

// ClassifierWeights tunes the teacher score:
// Signal*hits + AvgLength*avgRunes + Count*utterances.
type ClassifierWeights struct {
	Signal    float64
	AvgLength float64
	Count     float64
	Phrases   []string
}

func DefaultWeights() ClassifierWeights {
	return ClassifierWeights{Signal: 2, AvgLength: 0.5, Count: 0.3, Phrases: DefaultTeacherPhrases}
}

type speakerStats struct {
	count   int
	runes   int
	signals int
}

// Classify labels every utterance Teacher or Student. The speaker with the highest
// teacher score is the teacher; everyone else collapses into Student. Ties go to the
// speaker seen first. It returns the labeled turns in input order and the raw id that
// was picked as teacher ("" when there are no utterances).
func Classify(utts []Utterance, w ClassifierWeights) (Conversation, string) {
	if len(utts) == 0 {
		return nil, ""
	}
	phrases := make([]string, 0, len(w.Phrases))
	for _, p := range w.Phrases {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			phrases = append(phrases, p)
		}
	}

	var order []string
	stats := map[string]*speakerStats{}
	for _, u := range utts {
		st, ok := stats[u.Speaker]
		if !ok {
			st = &speakerStats{}
			stats[u.Speaker] = st
			order = append(order, u.Speaker)
		}
		st.count++
		st.runes += utf8.RuneCountInString(u.Text)
		lower := strings.ToLower(u.Text)
		for _, p := range phrases {
			if strings.Contains(lower, p) {
				st.signals++
			}
		}
	}

	teacher := ""
	best := -1.0
	for _, spk := range order {
		st := stats[spk]
		avg := float64(st.runes) / float64(st.count)
		score := w.Signal*float64(st.signals) + w.AvgLength*avg + w.Count*float64(st.count)
		if score > best {
			best = score
			teacher = spk
		}
	}

	out := make(Conversation, 0, len(utts))
	for _, u := range utts {
		role := RoleStudent
		if u.Speaker == teacher {
			role = RoleTeacher
		}
		out = append(out, Labeled{Role: role, Text: u.Text})
	}
	return out, teacher
}
