package studybuddy

import (
	"context"
	"fmt"
)

// QuizSession holds one quiz: the generated questions, the user's answers,
// and the grading results derived from them. Presentation order is
// generation order. The session is owned by whoever created it; nothing in
// this package keeps a reference behind the caller's back.
type QuizSession struct {
	questions []Question
	answers   []Answer
	submitted []bool
	results   []GradingResult
}

// NewQuizSession creates an empty session
func NewQuizSession() *QuizSession {
	return &QuizSession{}
}

// Reset clears questions, answers, and results
func (qs *QuizSession) Reset() {
	qs.questions = nil
	qs.answers = nil
	qs.submitted = nil
	qs.results = nil
}

// Generate fills the session with count freshly generated questions. The
// session is reset first. Generation is all-or-nothing: if any question
// terminally fails after its retry budget, the session is left empty and the
// error is returned, so a partial quiz is never exposed.
func (qs *QuizSession) Generate(ctx context.Context, gen *QuestionGenerator, req GenerationRequest, count int) error {
	qs.Reset()

	if count < 1 {
		return fmt.Errorf("question count must be at least 1, got %d", count)
	}

	questions := make([]Question, 0, count)
	for i := 0; i < count; i++ {
		question, err := gen.GenerateQuestion(ctx, req)
		if err != nil {
			if gen.logger != nil {
				gen.logger.LogQuestionResult(i+1, "failed", err.Error())
			}
			return fmt.Errorf("failed to generate question %d of %d: %w", i+1, count, err)
		}
		if gen.logger != nil {
			gen.logger.LogQuestionResult(i+1, "accepted", truncate(question.Text, 80))
		}
		questions = append(questions, question)
	}

	qs.questions = questions
	qs.answers = make([]Answer, count)
	qs.submitted = make([]bool, count)
	return nil
}

// Len returns the number of questions in the session
func (qs *QuizSession) Len() int {
	return len(qs.questions)
}

// Questions returns the questions in presentation order
func (qs *QuizSession) Questions() []Question {
	return qs.questions
}

// Question returns the question at index i
func (qs *QuizSession) Question(i int) (Question, error) {
	if i < 0 || i >= len(qs.questions) {
		return Question{}, fmt.Errorf("question index %d out of range", i)
	}
	return qs.questions[i], nil
}

// SubmitAnswer stores the user's answer for question i. Each slot accepts
// exactly one submission; later submissions for the same slot are rejected.
func (qs *QuizSession) SubmitAnswer(i int, answer Answer) error {
	if i < 0 || i >= len(qs.questions) {
		return fmt.Errorf("question index %d out of range", i)
	}
	if qs.submitted[i] {
		return fmt.Errorf("answer for question %d already submitted", i+1)
	}

	qs.answers[i] = answer
	qs.submitted[i] = true
	return nil
}

// Submitted reports whether question i has a submitted answer
func (qs *QuizSession) Submitted(i int) bool {
	return i >= 0 && i < len(qs.submitted) && qs.submitted[i]
}

// SubmittedAnswer returns the answer stored for question i, if any
func (qs *QuizSession) SubmittedAnswer(i int) (Answer, bool) {
	if !qs.Submitted(i) {
		return Answer{}, false
	}
	return qs.answers[i], true
}

// AllSubmitted reports whether every question has a submitted answer
func (qs *QuizSession) AllSubmitted() bool {
	for _, done := range qs.submitted {
		if !done {
			return false
		}
	}
	return len(qs.submitted) > 0
}

// Evaluate grades every question against its submitted answer and returns
// the per-question results. It refuses with an InsufficientAnswersError if
// any slot is still unanswered; prior results are kept in that case.
// Results are recomputed fresh on each call.
func (qs *QuizSession) Evaluate() ([]GradingResult, error) {
	answered := 0
	for _, done := range qs.submitted {
		if done {
			answered++
		}
	}
	if answered < len(qs.questions) {
		return nil, &InsufficientAnswersError{Answered: answered, Total: len(qs.questions)}
	}

	results := make([]GradingResult, 0, len(qs.questions))
	for i, question := range qs.questions {
		answer := qs.answers[i]
		results = append(results, GradingResult{
			QuestionNumber: i + 1,
			Question:       question.Text,
			QuestionType:   question.Type,
			UserAnswer:     answer.Display(question.Type),
			CorrectAnswer:  question.CorrectAnswerDisplay(),
			IsCorrect:      gradeAnswer(question, answer),
			Options:        question.Options,
		})
	}

	qs.results = results
	return results, nil
}

// Results returns the grading results from the most recent Evaluate call
func (qs *QuizSession) Results() []GradingResult {
	return qs.results
}
