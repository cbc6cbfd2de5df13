package studybuddy

import "fmt"

// ParseError means the model's raw output could not be turned into the
// requested shape's structured fields. Retryable.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse generated output: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StructureError means parsed fields violate a shape's structural rule.
// Retryable.
type StructureError struct {
	Type QuestionType
	Rule string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("invalid %s structure: %s", e.Type, e.Rule)
}

// GenerationFailedError is the terminal failure raised after the retry
// budget for one question is exhausted. Cause holds the last attempt's error.
type GenerationFailedError struct {
	Attempts int
	Cause    error
}

func (e *GenerationFailedError) Error() string {
	return fmt.Sprintf("generation failed after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *GenerationFailedError) Unwrap() error { return e.Cause }

// InsufficientAnswersError means evaluation was attempted before every
// question had a submitted answer. The session is left untouched.
type InsufficientAnswersError struct {
	Answered int
	Total    int
}

func (e *InsufficientAnswersError) Error() string {
	return fmt.Sprintf("cannot evaluate quiz: %d of %d questions answered", e.Answered, e.Total)
}

// PersistenceError means saving results to disk or the database failed.
// Nothing partial is left behind.
type PersistenceError struct {
	Target string
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to save results to %s: %v", e.Target, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
