package transcript

// Role is the binary speaker role assigned for a whole diarization session.
type Role string

const (
	RoleTeacher Role = "Teacher"
	RoleStudent Role = "Student"
)

// Utterance is one diarized speaker turn as returned by transcription.
type Utterance struct {
	Speaker string // raw diarization id: "A", "B", ...
	Text    string
	Order   int
	StartMs int64
	EndMs   int64
}

// Labeled is an utterance after role inference.
type Labeled struct {
	Role Role   `yaml:"role"`
	Text string `yaml:"text"`
}

// Conversation is an ordered sequence of labeled turns.
type Conversation []Labeled

func (c Conversation) Count(r Role) int {
	n := 0
	for _, l := range c {
		if l.Role == r {
			n++
		}
	}
	return n
}

// Texts returns the utterance texts spoken by r, in order.
func (c Conversation) Texts(r Role) []string {
	var out []string
	for _, l := range c {
		if l.Role == r {
			out = append(out, l.Text)
		}
	}
	return out
}
