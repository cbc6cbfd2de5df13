package studybuddy

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Raw payloads as the model is asked to return them, one per shape
type singleChoicePayload struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

type multipleChoicePayload struct {
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	CorrectAnswers []string `json:"correct_answers"`
}

type fillBlankPayload struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ParseQuestion turns raw model output into a validated Question of the
// requested shape. Malformed output yields a ParseError, a well-formed
// object that breaks a structural rule yields a StructureError; both are
// retryable and consumed by the retry controller.
func ParseQuestion(qt QuestionType, raw string) (Question, error) {
	payload, err := extractJSON(raw)
	if err != nil {
		return Question{}, &ParseError{Raw: raw, Err: err}
	}

	switch qt {
	case TypeSingleChoice:
		var p singleChoicePayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return Question{}, &ParseError{Raw: raw, Err: err}
		}
		return validateSingleChoice(p)

	case TypeMultipleChoice:
		var p multipleChoicePayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return Question{}, &ParseError{Raw: raw, Err: err}
		}
		return validateMultipleChoice(p)

	case TypeFillBlank:
		var p fillBlankPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return Question{}, &ParseError{Raw: raw, Err: err}
		}
		return validateFillBlank(p)

	default:
		return Question{}, fmt.Errorf("unknown question type: %s", qt)
	}
}

func validateSingleChoice(p singleChoicePayload) (Question, error) {
	if p.Question == "" {
		return Question{}, &StructureError{Type: TypeSingleChoice, Rule: "question text is empty"}
	}
	if len(p.Options) != 4 {
		return Question{}, &StructureError{
			Type: TypeSingleChoice,
			Rule: fmt.Sprintf("expected exactly 4 options, got %d", len(p.Options)),
		}
	}
	if !contains(p.Options, p.CorrectAnswer) {
		return Question{}, &StructureError{Type: TypeSingleChoice, Rule: "correct answer is not one of the options"}
	}

	return Question{
		Type:          TypeSingleChoice,
		Text:          p.Question,
		Options:       p.Options,
		CorrectAnswer: p.CorrectAnswer,
	}, nil
}

func validateMultipleChoice(p multipleChoicePayload) (Question, error) {
	if p.Question == "" {
		return Question{}, &StructureError{Type: TypeMultipleChoice, Rule: "question text is empty"}
	}
	if len(p.Options) < 4 {
		return Question{}, &StructureError{
			Type: TypeMultipleChoice,
			Rule: fmt.Sprintf("expected 4 or more options, got %d", len(p.Options)),
		}
	}
	if len(p.CorrectAnswers) == 0 {
		return Question{}, &StructureError{Type: TypeMultipleChoice, Rule: "no correct answers given"}
	}
	for _, answer := range p.CorrectAnswers {
		if !contains(p.Options, answer) {
			return Question{}, &StructureError{
				Type: TypeMultipleChoice,
				Rule: fmt.Sprintf("correct answer %q is not one of the options", answer),
			}
		}
	}

	return Question{
		Type:           TypeMultipleChoice,
		Text:           p.Question,
		Options:        p.Options,
		CorrectAnswers: p.CorrectAnswers,
	}, nil
}

func validateFillBlank(p fillBlankPayload) (Question, error) {
	if !strings.Contains(p.Question, BlankMarker) {
		return Question{}, &StructureError{
			Type: TypeFillBlank,
			Rule: fmt.Sprintf("question text does not contain the blank marker %q", BlankMarker),
		}
	}
	if p.Answer == "" {
		return Question{}, &StructureError{Type: TypeFillBlank, Rule: "answer is empty"}
	}

	return Question{
		Type:          TypeFillBlank,
		Text:          p.Question,
		CorrectAnswer: p.Answer,
	}, nil
}

// extractJSON pulls the first JSON object out of raw model output. Models
// regularly wrap the object in markdown fences or surrounding prose, so we
// cut from the first '{' to the last '}' before unmarshaling.
func extractJSON(raw string) (json.RawMessage, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON object found in output")
	}

	payload := json.RawMessage(text[start : end+1])
	if !json.Valid(payload) {
		return nil, fmt.Errorf("output is not valid JSON")
	}
	return payload, nil
}

func contains(options []string, value string) bool {
	for _, option := range options {
		if option == value {
			return true
		}
	}
	return false
}
