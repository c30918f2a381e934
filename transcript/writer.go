package transcript

import (
	"fmt"
	"os"
	"strings"
)

const Header = "#Lecture transcript"

// Writer appends labeled turns to a transcript file. Each Append opens, writes and
// closes the file so whatever was transcribed so far survives a crash.
type Writer struct {
	path string
}

// Create truncates path and writes the transcript header.
func Create(path string) (*Writer, error) {
	if err := os.WriteFile(path, []byte(Header+"\n\n"), 0o644); err != nil {
		return nil, fmt.Errorf("create transcript: %w", err)
	}
	return &Writer{path: path}, nil
}

func (w *Writer) Path() string { return w.path }

func (w *Writer) Append(conv Conversation) error {
	if len(conv) == 0 {
		return nil
	}
	var b strings.Builder
	for _, l := range conv {
		fmt.Fprintf(&b, "%s: %s\n", l.Role, strings.Join(strings.Fields(l.Text), " "))
	}
	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open transcript: %w", err)
	}
	if _, err := f.WriteString(b.String()); err != nil {
		f.Close()
		return fmt.Errorf("append transcript: %w", err)
	}
	return f.Close()
}
