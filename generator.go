package studybuddy

import (
	"context"
	"fmt"
	"unicode/utf8"
)

// QuestionGenerator produces validated questions from a text-completion model
type QuestionGenerator struct {
	completer   TextCompleter
	maxAttempts int
	logger      *LLMLogger
}

// NewQuestionGenerator creates a generator with the given retry budget.
// maxAttempts below 1 falls back to a single attempt.
func NewQuestionGenerator(completer TextCompleter, maxAttempts int) *QuestionGenerator {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &QuestionGenerator{
		completer:   completer,
		maxAttempts: maxAttempts,
	}
}

// SetLogger attaches an LLM interaction logger. Optional.
func (qg *QuestionGenerator) SetLogger(logger *LLMLogger) {
	qg.logger = logger
}

// GenerateQuestion generates one validated question for the request. Model
// output is untrusted: every attempt re-prompts, re-parses, and re-validates,
// and only a question passing its shape's structural rules is returned. After
// the retry budget is exhausted it fails with a GenerationFailedError.
func (qg *QuestionGenerator) GenerateQuestion(ctx context.Context, req GenerationRequest) (Question, error) {
	return withRetry(qg.maxAttempts, func(attempt int) (Question, error) {
		VerboseLog("Generating %s question for topic %q (attempt %d/%d)", req.Type, truncate(req.Topic, 60), attempt, qg.maxAttempts)
		return qg.attempt(ctx, req)
	})
}

func (qg *QuestionGenerator) attempt(ctx context.Context, req GenerationRequest) (Question, error) {
	prompt := buildPrompt(req)

	if qg.logger != nil {
		qg.logger.LogLLMRequest("QuestionGenerator", prompt)
	}

	raw, err := qg.completer.Complete(ctx, req.Model, prompt)
	if err != nil {
		return Question{}, fmt.Errorf("completion request failed: %w", err)
	}

	if qg.logger != nil {
		qg.logger.LogLLMResponse("QuestionGenerator", raw)
	}

	question, err := ParseQuestion(req.Type, raw)
	if err != nil {
		return Question{}, err
	}

	return question, nil
}

// withRetry runs attempt up to maxAttempts times, returning the first
// success. Any failure before the last attempt is logged and retried
// immediately; the last failure is wrapped in a GenerationFailedError.
func withRetry(maxAttempts int, attempt func(attempt int) (Question, error)) (Question, error) {
	var lastErr error

	for n := 1; n <= maxAttempts; n++ {
		question, err := attempt(n)
		if err == nil {
			return question, nil
		}

		lastErr = err
		VerboseLog("Attempt %d/%d failed: %v", n, maxAttempts, err)
	}

	return Question{}, &GenerationFailedError{Attempts: maxAttempts, Cause: lastErr}
}

// truncate shortens s to at most max bytes, cutting on a rune boundary so a
// multi-byte character is never split.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max] + "..."
}
