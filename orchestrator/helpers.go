package orchestrator

import "github.com/maastricht-university/lesson-assessor/transcript"

const (
	DefaultWindow  = 30
	DefaultOverlap = 5
)

// segment cuts conv into windows of size turns that overlap by overlap turns.
// When the remaining tail fits in one window it is emitted whole, so the last chunk
// may be longer than window and never dangles. Invalid sizes fall back to the defaults.
func segment(conv transcript.Conversation, window, overlap int) []transcript.Conversation {
	if len(conv) == 0 {
		return nil
	}
	if window <= 0 || overlap < 0 || overlap >= window {
		window, overlap = DefaultWindow, DefaultOverlap
	}
	step := window - overlap

	var out []transcript.Conversation
	for i := 0; i < len(conv); i += step {
		if len(conv)-i <= window {
			out = append(out, conv[i:])
			break
		}
		out = append(out, conv[i:i+window])
	}
	return out
}

func validWindow(window, overlap int) bool {
	return window > 0 && overlap >= 0 && overlap < window
}
