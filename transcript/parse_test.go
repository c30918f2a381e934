package transcript

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	in := Header + `

Teacher: Today we will add fractions.
Please open your books.
Student: What page?

Teacher: Page 12.
`
	conv, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	want := Conversation{
		{Role: RoleTeacher, Text: "Today we will add fractions. Please open your books."},
		{Role: RoleStudent, Text: "What page?"},
		{Role: RoleTeacher, Text: "Page 12."},
	}
	if len(conv) != len(want) {
		t.Fatalf("got %d turns: %+v", len(conv), conv)
	}
	for i := range want {
		if conv[i] != want[i] {
			t.Errorf("turn %d = %+v, want %+v", i, conv[i], want[i])
		}
	}
}

func TestParse_RoleFromLabel(t *testing.T) {
	conv := ParseString("Ms Kim (teacher): hi\nMichael: hello\n")
	if len(conv) != 2 || conv[0].Role != RoleTeacher || conv[1].Role != RoleStudent {
		t.Fatalf("unexpected: %+v", conv)
	}
}

func TestParse_Empty(t *testing.T) {
	if conv := ParseString(""); len(conv) != 0 {
		t.Fatalf("expected empty, got %+v", conv)
	}
	if conv := ParseString(Header + "\n\n"); len(conv) != 0 {
		t.Fatalf("expected empty, got %+v", conv)
	}
}

func TestWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcript.txt")
	w, err := Create(path)
	if err != nil {
		t.Fatal(err)
	}
	first := Conversation{{Role: RoleTeacher, Text: "Let's begin."}, {Role: RoleStudent, Text: "OK"}}
	second := Conversation{{Role: RoleTeacher, Text: "Next\nquestion."}}
	if err := w.Append(first); err != nil {
		t.Fatal(err)
	}
	if err := w.Append(second); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	conv, err := Parse(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(conv) != 3 || conv[2].Text != "Next question." {
		t.Fatalf("unexpected: %+v", conv)
	}
}
