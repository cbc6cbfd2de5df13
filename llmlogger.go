package studybuddy

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LLMLogger handles logging of all LLM interactions for one quiz run
type LLMLogger struct {
	file  *os.File
	mu    sync.Mutex
	runID string
}

// NewLLMLogger creates a new LLM logger for a specific quiz run
func NewLLMLogger(dir, runID string, req GenerationRequest, numQuestions int) (*LLMLogger, error) {
	// Ensure log directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// Create log file
	filename := filepath.Join(dir, fmt.Sprintf("%s.log", runID))
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	logger := &LLMLogger{
		file:  file,
		runID: runID,
	}

	// Write header with quiz parameters
	logger.Logf("=== Quiz Generation Log ===\n")
	logger.Logf("Run ID: %s\n", runID)
	logger.Logf("Question Type: %s\n", req.Type)
	logger.Logf("Difficulty: %s\n", req.Difficulty)
	logger.Logf("Model: %s\n", req.Model)
	logger.Logf("Number of Questions: %d\n", numQuestions)
	logger.Logf("Study Material Length: %d characters\n", len(req.Topic))
	logger.Logf("Started: %s\n", time.Now().Format(time.RFC3339))
	logger.Logf("========================\n\n")

	return logger, nil
}

// Logf writes a formatted log entry with timestamp
func (ll *LLMLogger) Logf(format string, args ...interface{}) {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	ll.writeEntry(format, args...)
}

// writeEntry writes one timestamped entry. Caller holds ll.mu.
func (ll *LLMLogger) writeEntry(format string, args ...interface{}) {
	if ll.file == nil {
		return
	}

	timestamp := time.Now().Format("15:04:05.000")
	message := fmt.Sprintf(format, args...)

	// Write to file
	fmt.Fprintf(ll.file, "[%s] %s", timestamp, message)

	// Also flush to ensure it's written immediately
	ll.file.Sync()
}

// LogLLMRequest logs an LLM request
func (ll *LLMLogger) LogLLMRequest(module, prompt string) {
	ll.Logf("=== LLM REQUEST (%s) ===\n", module)
	ll.Logf("Prompt:\n%s\n", prompt)
	ll.Logf("=====================\n\n")
}

// LogLLMResponse logs an LLM response
func (ll *LLMLogger) LogLLMResponse(module, response string) {
	ll.Logf("=== LLM RESPONSE (%s) ===\n", module)
	ll.Logf("Response:\n%s\n", response)
	ll.Logf("======================\n\n")
}

// LogQuestionResult logs the outcome of generating one question
func (ll *LLMLogger) LogQuestionResult(questionNum int, outcome, detail string) {
	ll.Logf("Question %d: %s - %s\n", questionNum, outcome, detail)
}

// Close writes the closing entries and closes the log file. Safe to call
// more than once.
func (ll *LLMLogger) Close() error {
	ll.mu.Lock()
	defer ll.mu.Unlock()

	if ll.file == nil {
		return nil
	}

	ll.writeEntry("=== Quiz Generation Complete ===\n")
	ll.writeEntry("Completed: %s\n", time.Now().Format(time.RFC3339))
	ll.writeEntry("=============================\n")

	err := ll.file.Close()
	ll.file = nil
	return err
}
