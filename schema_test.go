package studybuddy

import (
	"errors"
	"testing"
)

func TestParseSingleChoiceValid(t *testing.T) {
	raw := `{
		"question": "What is the capital of France?",
		"options": ["London", "Berlin", "Paris", "Madrid"],
		"correct_answer": "Paris"
	}`

	q, err := ParseQuestion(TypeSingleChoice, raw)
	if err != nil {
		t.Fatalf("expected valid question, got %v", err)
	}
	if q.Type != TypeSingleChoice {
		t.Errorf("expected type %s, got %s", TypeSingleChoice, q.Type)
	}
	if len(q.Options) != 4 {
		t.Errorf("expected 4 options, got %d", len(q.Options))
	}
	if q.CorrectAnswer != "Paris" {
		t.Errorf("expected correct answer Paris, got %q", q.CorrectAnswer)
	}
}

func TestParseSingleChoiceStructureErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "three options",
			raw:  `{"question": "Q?", "options": ["a", "b", "c"], "correct_answer": "a"}`,
		},
		{
			name: "five options",
			raw:  `{"question": "Q?", "options": ["a", "b", "c", "d", "e"], "correct_answer": "a"}`,
		},
		{
			name: "answer not in options",
			raw:  `{"question": "Q?", "options": ["a", "b", "c", "d"], "correct_answer": "e"}`,
		},
		{
			name: "answer differs by case",
			raw:  `{"question": "Q?", "options": ["Paris", "b", "c", "d"], "correct_answer": "paris"}`,
		},
		{
			name: "empty question",
			raw:  `{"question": "", "options": ["a", "b", "c", "d"], "correct_answer": "a"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseQuestion(TypeSingleChoice, tt.raw)
			var structErr *StructureError
			if !errors.As(err, &structErr) {
				t.Fatalf("expected StructureError, got %v", err)
			}
		})
	}
}

func TestParseMultipleChoiceValid(t *testing.T) {
	raw := `{
		"question": "Which of the following are programming languages?",
		"options": ["Python", "HTML", "JavaScript", "Photoshop"],
		"correct_answers": ["Python", "JavaScript"]
	}`

	q, err := ParseQuestion(TypeMultipleChoice, raw)
	if err != nil {
		t.Fatalf("expected valid question, got %v", err)
	}
	if len(q.CorrectAnswers) != 2 {
		t.Errorf("expected 2 correct answers, got %d", len(q.CorrectAnswers))
	}
}

func TestParseMultipleChoiceStructureErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "fewer than 4 options",
			raw:  `{"question": "Q?", "options": ["a", "b", "c"], "correct_answers": ["a"]}`,
		},
		{
			name: "no correct answers",
			raw:  `{"question": "Q?", "options": ["a", "b", "c", "d"], "correct_answers": []}`,
		},
		{
			name: "correct answer outside options",
			raw:  `{"question": "Q?", "options": ["a", "b", "c", "d"], "correct_answers": ["a", "x"]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseQuestion(TypeMultipleChoice, tt.raw)
			var structErr *StructureError
			if !errors.As(err, &structErr) {
				t.Fatalf("expected StructureError, got %v", err)
			}
		})
	}
}

func TestParseMultipleChoiceAllowsMoreThanFourOptions(t *testing.T) {
	raw := `{"question": "Q?", "options": ["a", "b", "c", "d", "e", "f"], "correct_answers": ["a", "f"]}`
	q, err := ParseQuestion(TypeMultipleChoice, raw)
	if err != nil {
		t.Fatalf("expected valid question, got %v", err)
	}
	if len(q.Options) != 6 {
		t.Errorf("expected 6 options, got %d", len(q.Options))
	}
}

func TestParseFillBlank(t *testing.T) {
	q, err := ParseQuestion(TypeFillBlank, `{"question": "The capital of France is ____.", "answer": "Paris"}`)
	if err != nil {
		t.Fatalf("expected valid question, got %v", err)
	}
	if q.CorrectAnswer != "Paris" {
		t.Errorf("expected answer Paris, got %q", q.CorrectAnswer)
	}

	_, err = ParseQuestion(TypeFillBlank, `{"question": "The capital of France is Paris.", "answer": "Paris"}`)
	var structErr *StructureError
	if !errors.As(err, &structErr) {
		t.Fatalf("expected StructureError for missing blank marker, got %v", err)
	}
}

func TestParseQuestionMalformedOutput(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "prose only", raw: "Sure! Here is a question about France."},
		{name: "broken JSON", raw: `{"question": "Q?", "options": [`},
		{name: "empty", raw: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseQuestion(TypeSingleChoice, tt.raw)
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected ParseError, got %v", err)
			}
		})
	}
}

func TestParseQuestionToleratesWrapping(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "markdown fences",
			raw:  "```json\n{\"question\": \"Q?\", \"options\": [\"a\", \"b\", \"c\", \"d\"], \"correct_answer\": \"a\"}\n```",
		},
		{
			name: "surrounding prose",
			raw:  "Here you go:\n{\"question\": \"Q?\", \"options\": [\"a\", \"b\", \"c\", \"d\"], \"correct_answer\": \"a\"}\nHope that helps!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := ParseQuestion(TypeSingleChoice, tt.raw)
			if err != nil {
				t.Fatalf("expected wrapped JSON to parse, got %v", err)
			}
			if q.CorrectAnswer != "a" {
				t.Errorf("expected correct answer a, got %q", q.CorrectAnswer)
			}
		})
	}
}
