package studybuddy

import "strings"

// gradeAnswer compares a user answer against a question's canonical answer.
// Single choice requires a verbatim match of the selected option, multiple
// choice requires exact set equality of the selections, and fill-in-the-blank
// compares after trimming whitespace and lowercasing both sides. Option
// answers are deliberately not normalized: the selections come verbatim from
// the generated option strings.
func gradeAnswer(question Question, answer Answer) bool {
	switch question.Type {
	case TypeSingleChoice:
		return answer.Text == question.CorrectAnswer

	case TypeMultipleChoice:
		return setsEqual(answer.Selections, question.CorrectAnswers)

	case TypeFillBlank:
		return normalizeBlank(answer.Text) == normalizeBlank(question.CorrectAnswer)

	default:
		return false
	}
}

func normalizeBlank(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// setsEqual compares two string slices as sets, ignoring order and
// duplicates
func setsEqual(a, b []string) bool {
	as := make(map[string]struct{}, len(a))
	for _, v := range a {
		as[v] = struct{}{}
	}
	bs := make(map[string]struct{}, len(b))
	for _, v := range b {
		bs[v] = struct{}{}
	}

	if len(as) != len(bs) {
		return false
	}
	for v := range as {
		if _, ok := bs[v]; !ok {
			return false
		}
	}
	return true
}

// AggregateScore returns the percentage of correct results. Callers must
// not pass an empty result set; an empty session has no score.
func AggregateScore(results []GradingResult) float64 {
	correct := 0
	for _, result := range results {
		if result.IsCorrect {
			correct++
		}
	}
	return float64(correct) / float64(len(results)) * 100
}

// Display renders an answer the way it appears in results and exports
func (a Answer) Display(qt QuestionType) string {
	if qt == TypeMultipleChoice {
		return strings.Join(a.Selections, ", ")
	}
	return a.Text
}

// CorrectAnswerDisplay renders the canonical answer for results and exports
func (q Question) CorrectAnswerDisplay() string {
	if q.Type == TypeMultipleChoice {
		return strings.Join(q.CorrectAnswers, ", ")
	}
	return q.CorrectAnswer
}
