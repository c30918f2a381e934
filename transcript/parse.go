package transcript

import (
	"bufio"
	"io"
	"strings"
)

// Parse reads "Speaker: text" turns. A line without a ": " separator continues the
// current turn; anything before the first turn (such as the file header) is dropped.
// The role is Teacher when the speaker label mentions "teacher".
func Parse(r io.Reader) (Conversation, error) {
	var (
		conv  Conversation
		role  Role
		parts []string
	)
	flush := func() {
		if role != "" && len(parts) > 0 {
			if text := strings.TrimSpace(strings.Join(parts, " ")); text != "" {
				conv = append(conv, Labeled{Role: role, Text: text})
			}
		}
		parts = parts[:0]
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if speaker, text, ok := strings.Cut(line, ": "); ok {
			flush()
			role = roleFromLabel(speaker)
			parts = append(parts, strings.TrimSpace(text))
			continue
		}
		if role == "" || len(parts) == 0 {
			continue
		}
		if s := strings.TrimSpace(line); s != "" {
			parts = append(parts, s)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	flush()
	return conv, nil
}

// ParseString is Parse over an in-memory transcript.
func ParseString(s string) Conversation {
	conv, _ := Parse(strings.NewReader(s))
	return conv
}

func roleFromLabel(label string) Role {
	if strings.Contains(strings.ToLower(label), "teacher") {
		return RoleTeacher
	}
	return RoleStudent
}
