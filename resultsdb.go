package studybuddy

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB is the results store: finished quizzes and their per-question grades
type DB struct {
	db *sql.DB
}

// SavedQuiz is one finished quiz in the results store
type SavedQuiz struct {
	ID           string       `json:"id"`
	Topic        string       `json:"topic"`
	QuestionType QuestionType `json:"question_type"`
	Difficulty   string       `json:"difficulty"`
	Model        string       `json:"model"`
	NumQuestions int          `json:"num_questions"`
	Score        float64      `json:"score"`
	CreatedAt    time.Time    `json:"created_at"`
}

// OpenDB opens a new database connection
func OpenDB(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db: db}, nil
}

// CloseDB closes the database connection
func (db *DB) CloseDB() error {
	return db.db.Close()
}

// CreateTables creates the necessary tables if they don't exist
func (db *DB) CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS quiz_results (
			id TEXT PRIMARY KEY,
			topic TEXT NOT NULL,
			question_type TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			model TEXT NOT NULL,
			num_questions INTEGER NOT NULL,
			score REAL NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS question_results (
			quiz_id TEXT NOT NULL,
			question_num INTEGER NOT NULL,
			question TEXT NOT NULL,
			question_type TEXT NOT NULL,
			user_answer TEXT NOT NULL,
			correct_answer TEXT NOT NULL,
			is_correct BOOLEAN NOT NULL,
			options TEXT NOT NULL,
			PRIMARY KEY (quiz_id, question_num),
			FOREIGN KEY (quiz_id) REFERENCES quiz_results(id)
		)`,
	}

	for _, query := range queries {
		if _, err := db.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute %s: %w", query, err)
		}
	}
	return nil
}

// SaveQuizResult stores a finished quiz and its grading rows in one
// transaction, so a failure commits nothing. Returns the stored quiz ID.
func (db *DB) SaveQuizResult(req GenerationRequest, results []GradingResult) (string, error) {
	if len(results) == 0 {
		return "", &PersistenceError{Target: "quiz_results", Err: fmt.Errorf("no results to save")}
	}

	quizID := generateQuizID()

	tx, err := db.db.Begin()
	if err != nil {
		return "", &PersistenceError{Target: "quiz_results", Err: err}
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO quiz_results (id, topic, question_type, difficulty, model, num_questions, score, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		quizID, req.Topic, string(req.Type), req.Difficulty, req.Model, len(results), AggregateScore(results), time.Now(),
	)
	if err != nil {
		return "", &PersistenceError{Target: "quiz_results", Err: err}
	}

	for _, result := range results {
		optionsJSON, err := OptionsToJSON(result.Options)
		if err != nil {
			return "", &PersistenceError{Target: "question_results", Err: err}
		}

		_, err = tx.Exec(
			"INSERT INTO question_results (quiz_id, question_num, question, question_type, user_answer, correct_answer, is_correct, options) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			quizID, result.QuestionNumber, result.Question, string(result.QuestionType), result.UserAnswer, result.CorrectAnswer, result.IsCorrect, optionsJSON,
		)
		if err != nil {
			return "", &PersistenceError{Target: "question_results", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", &PersistenceError{Target: "quiz_results", Err: err}
	}
	return quizID, nil
}

// GetSavedQuizzes retrieves saved quizzes, newest first, optionally limited
func (db *DB) GetSavedQuizzes(limit int) ([]SavedQuiz, error) {
	query := "SELECT id, topic, question_type, difficulty, model, num_questions, score, created_at FROM quiz_results ORDER BY created_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get saved quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []SavedQuiz
	for rows.Next() {
		var quiz SavedQuiz
		var questionType string
		err := rows.Scan(&quiz.ID, &quiz.Topic, &questionType, &quiz.Difficulty, &quiz.Model, &quiz.NumQuestions, &quiz.Score, &quiz.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan saved quiz: %w", err)
		}
		quiz.QuestionType = QuestionType(questionType)
		quizzes = append(quizzes, quiz)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating saved quizzes: %w", err)
	}

	return quizzes, nil
}

// GetQuizResult retrieves the grading rows of a saved quiz in question order
func (db *DB) GetQuizResult(quizID string) ([]GradingResult, error) {
	rows, err := db.db.Query(
		"SELECT question_num, question, question_type, user_answer, correct_answer, is_correct, options FROM question_results WHERE quiz_id = ? ORDER BY question_num",
		quizID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz result: %w", err)
	}
	defer rows.Close()

	var results []GradingResult
	for rows.Next() {
		var result GradingResult
		var questionType, optionsJSON string
		err := rows.Scan(&result.QuestionNumber, &result.Question, &questionType, &result.UserAnswer, &result.CorrectAnswer, &result.IsCorrect, &optionsJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question result: %w", err)
		}
		result.QuestionType = QuestionType(questionType)
		result.Options, err = JSONToOptions(optionsJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to decode options: %w", err)
		}
		results = append(results, result)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating question results: %w", err)
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("quiz result not found: %s", quizID)
	}
	return results, nil
}

// Helper function to convert options slice to JSON string
func OptionsToJSON(options []string) (string, error) {
	if options == nil {
		options = []string{}
	}
	data, err := json.Marshal(options)
	if err != nil {
		return "", fmt.Errorf("failed to marshal options: %w", err)
	}
	return string(data), nil
}

// Helper function to convert JSON string to options slice
func JSONToOptions(optionsJSON string) ([]string, error) {
	var options []string
	err := json.Unmarshal([]byte(optionsJSON), &options)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal options: %w", err)
	}
	return options, nil
}

func generateQuizID() string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, 12)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
