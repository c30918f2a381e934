package analysis

import (
	"fmt"
	"strings"

	"github.com/maastricht-university/lesson-assessor/transcript"
)

const (
	AssessmentSystemPrompt  = "당신은 매우 엄격한 교육 평가 전문가입니다."
	QualitativeSystemPrompt = "당신은 교육 평가 전문가입니다."
)

func assessmentPrompt(c Chunk) string {
	var b strings.Builder
	b.WriteString("다음 수업 데이터를 분석하여 평가해주세요:\n\n")
	b.WriteString("1. 정량적 지표:\n")
	writeLines(&b, c.Metrics.Lines())
	b.WriteString("\n2. 질적 분석:\n")
	writeNotes(&b, c.Notes)
	b.WriteString("\n3. 대화 내용:\n")
	writeDialogue(&b, c.Turns)
	b.WriteString(`
각 영역별로 구체적인 근거와 함께 평가해주세요.
반드시 아래 형식으로 응답해주세요:

세부 평가:
(영역별 평가 내용)

특히 우수한 부분:
- (강점)

개선이 필요한 부분:
- (개선점)
`)
	return b.String()
}

func qualitativePrompt(block transcript.Conversation) string {
	var b strings.Builder
	b.WriteString(`다음 수업 대화를 분석하여 세 가지 관점에서 평가해주세요:

1. 교사 전문성
- 개념 설명의 명확성
- 학생 이해도 점검
- 교사 전략의 적절성

2. 수업 담화
- 대화의 질
- 질문의 수준
- 피드백의 효과성

3. 학습 환경
- 학생 참여도
- 상호작용의 질
- 수업 분위기

대화 내용:
`)
	writeDialogue(&b, block)
	b.WriteString("\n각 관점별로 구체적인 예시와 함께 '-' 목록으로 분석해주세요.\n")
	return b.String()
}

func scoringPrompt(merged MergedAssessment, notes Notes, m *Metrics) string {
	var b strings.Builder
	b.WriteString("다음 교사의 수업 평가 내용을 바탕으로 각 영역별 점수를 산출해주세요.\n")
	b.WriteString("반드시 아래와 같은 형식으로만 응답해주세요:\n\n")
	for _, d := range Dimensions {
		fmt.Fprintf(&b, "%s: [숫자]\n", d.Label())
	}
	b.WriteString("\n1. 세부 평가:\n")
	b.WriteString(merged.Detail)
	b.WriteString("\n\n2. 질적 분석:\n")
	writeNotes(&b, notes)
	b.WriteString("\n3. 정량적 지표:\n")
	writeLines(&b, m.Lines())
	fmt.Fprintf(&b, `
평가 기준:
- 15-20점: 탁월한 성과
- 10-14점: 기본 요구사항 충족
- 5-9점: 개선 필요
- 0-4점: 심각한 문제

각 항목은 0-%d점 사이의 정수로 평가해주세요.
다른 설명은 일체 하지 말고, 오직 위 형식의 점수만 응답해주세요.
`, MaxScore)
	return b.String()
}

func writeLines(b *strings.Builder, lines []string) {
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
}

func writeNotes(b *strings.Builder, n Notes) {
	if n.Empty() {
		b.WriteString("- (없음)\n")
		return
	}
	for _, c := range NoteCategories {
		if len(n[c]) == 0 {
			continue
		}
		fmt.Fprintf(b, "[%s]\n", c.Title())
		for _, item := range n[c] {
			fmt.Fprintf(b, "- %s\n", item)
		}
	}
}

func writeDialogue(b *strings.Builder, turns transcript.Conversation) {
	for _, t := range turns {
		fmt.Fprintf(b, "%s: %s\n", t.Role, t.Text)
	}
}
