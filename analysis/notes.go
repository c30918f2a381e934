package analysis

// NoteCategory is one perspective of the qualitative lesson analysis.
type NoteCategory string

const (
	NoteTeacherExpertise    NoteCategory = "teacher-expertise"
	NoteClassroomDiscourse  NoteCategory = "classroom-discourse"
	NoteLearningEnvironment NoteCategory = "learning-environment"
)

var NoteCategories = []NoteCategory{NoteTeacherExpertise, NoteClassroomDiscourse, NoteLearningEnvironment}

func (c NoteCategory) Title() string {
	switch c {
	case NoteTeacherExpertise:
		return "Teacher Expertise"
	case NoteClassroomDiscourse:
		return "Classroom Discourse"
	case NoteLearningEnvironment:
		return "Learning Environment"
	}
	return string(c)
}

// Notes are qualitative observations accumulated across the whole lesson.
type Notes map[NoteCategory][]string

// Add returns a copy of n with other appended per category.
func (n Notes) Add(other Notes) Notes {
	out := Notes{}
	for _, c := range NoteCategories {
		items := append(append([]string(nil), n[c]...), other[c]...)
		if len(items) > 0 {
			out[c] = items
		}
	}
	return out
}

func (n Notes) Empty() bool {
	for _, c := range NoteCategories {
		if len(n[c]) > 0 {
			return false
		}
	}
	return true
}

const (
	sectionExpertise section = iota + 1
	sectionDiscourse
	sectionEnvironment
)

var noteHeaders = []header{
	{sectionExpertise, []string{"교사 전문성"}, []string{"teacher expertise"}},
	{sectionDiscourse, []string{"수업 담화"}, []string{"classroom discourse"}},
	{sectionEnvironment, []string{"학습 환경"}, []string{"learning environment"}},
}

var noteSections = map[section]NoteCategory{
	sectionExpertise:   NoteTeacherExpertise,
	sectionDiscourse:   NoteClassroomDiscourse,
	sectionEnvironment: NoteLearningEnvironment,
}

// ParseNotes collects '-' bullets under each perspective header.
func ParseNotes(resp string) Notes {
	out := Notes{}
	scanSections(resp, noteHeaders, func(s section, l sectionLine) {
		if l.bullet && l.item != "" {
			c := noteSections[s]
			out[c] = append(out[c], l.item)
		}
	})
	return out
}
