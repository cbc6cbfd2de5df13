package studybuddy

// QuestionType identifies the shape of a quiz question
type QuestionType string

const (
	TypeSingleChoice   QuestionType = "MCQ"
	TypeMultipleChoice QuestionType = "Multiple Answer"
	TypeFillBlank      QuestionType = "Fill in the Blank"
)

// BlankMarker is the literal substring a fill-in-the-blank question must contain
const BlankMarker = "____"

// Question represents a single validated quiz question. The Type tag
// determines which fields are populated:
//   - TypeSingleChoice: Options (exactly 4) and CorrectAnswer
//   - TypeMultipleChoice: Options (4 or more) and CorrectAnswers
//   - TypeFillBlank: CorrectAnswer only; Text contains the blank marker
//
// Questions are only constructed by the schema validator, so a Question
// value always satisfies its shape's structural rules.
type Question struct {
	Type           QuestionType `json:"type"`
	Text           string       `json:"question"`
	Options        []string     `json:"options,omitempty"`
	CorrectAnswer  string       `json:"correct_answer,omitempty"`
	CorrectAnswers []string     `json:"correct_answers,omitempty"`
}

// Difficulty levels accepted by the generation prompts
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// GenerationRequest represents a request to generate one question
type GenerationRequest struct {
	Topic      string       `json:"topic"`
	Type       QuestionType `json:"type"`
	Difficulty string       `json:"difficulty"`
	Model      string       `json:"model"`
}

// Answer holds a user's response to one question. Text carries the selected
// option for single choice and the typed answer for fill-in-the-blank;
// Selections carries the chosen options for multiple choice.
type Answer struct {
	Text       string   `json:"text,omitempty"`
	Selections []string `json:"selections,omitempty"`
}

// GradingResult is the per-question verdict produced by evaluating a quiz
type GradingResult struct {
	QuestionNumber int          `json:"question_number"`
	Question       string       `json:"question"`
	QuestionType   QuestionType `json:"question_type"`
	UserAnswer     string       `json:"user_answer"`
	CorrectAnswer  string       `json:"correct_answer"`
	IsCorrect      bool         `json:"is_correct"`
	Options        []string     `json:"options"`
}
