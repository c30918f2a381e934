package analysis

import "strings"

// section is a parser state. sectionNone drops every line until a header is seen.
type section int

const sectionNone section = 0

// header maps a set of marker phrases to the state they switch to. markers match
// anywhere in a line; aliases only match a line that looks like a heading.
type header struct {
	next    section
	markers []string
	aliases []string
}

// sectionLine is one non-empty line handed to a consumer, with any bullet marker
// already split off.
type sectionLine struct {
	text   string // trimmed line, bullet marker included
	item   string // content after the bullet marker
	bullet bool
}

// scanSections walks text line by line. Non-bullet lines that contain a header marker
// switch the current state; every other non-empty line is handed to consume along with
// the current state. Headers are checked in table order. Bullets never switch state:
// an item such as "- 강점: ..." under improvements stays an item.
func scanSections(text string, headers []header, consume func(section, sectionLine)) {
	state := sectionNone
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		sl := splitBullet(line)
		if !sl.bullet {
			if next, ok := matchHeader(line, headers); ok {
				state = next
				continue
			}
		}
		if state == sectionNone {
			continue
		}
		consume(state, sl)
	}
}

func matchHeader(line string, headers []header) (section, bool) {
	lower := strings.ToLower(line)
	heading := isHeading(lower)
	for _, h := range headers {
		for _, m := range h.markers {
			if strings.Contains(lower, m) {
				return h.next, true
			}
		}
		if !heading {
			continue
		}
		for _, a := range h.aliases {
			if strings.Contains(lower, a) {
				return h.next, true
			}
		}
	}
	return sectionNone, false
}

// maxHeadingWords bounds how long an undecorated line can be and still read as a heading.
const maxHeadingWords = 4

// isHeading reports whether line is shaped like a section title rather than prose:
// a markdown heading, a line ending in ':', or a few words without closing punctuation.
func isHeading(line string) bool {
	if strings.HasPrefix(line, "#") {
		return true
	}
	t := strings.TrimSpace(strings.Trim(line, "*_ "))
	if t == "" {
		return false
	}
	if strings.HasSuffix(t, ":") || strings.HasSuffix(t, "：") {
		return true
	}
	if strings.ContainsAny(t[len(t)-1:], ".!?") {
		return false
	}
	return len(strings.Fields(t)) <= maxHeadingWords
}

func splitBullet(line string) sectionLine {
	for _, marker := range []string{"-", "•"} {
		if strings.HasPrefix(line, marker) {
			item := strings.TrimSpace(strings.TrimPrefix(line, marker))
			if strings.Trim(item, "-") == "" {
				item = ""
			}
			return sectionLine{text: line, item: item, bullet: true}
		}
	}
	return sectionLine{text: line}
}
