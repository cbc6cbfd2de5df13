package studybuddy

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGenerationRunIsLogged(t *testing.T) {
	dir := t.TempDir()

	req := testRequest()
	logger, err := NewLLMLogger(dir, "run_test", req, 2)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	completer := &scriptedCompleter{outputs: []scriptedOutput{
		{text: "not json at all"},
		{text: validSingleChoiceJSON},
		{text: validSingleChoiceJSON},
	}}
	gen := NewQuestionGenerator(completer, 3)
	gen.SetLogger(logger)

	session := NewQuizSession()
	if err := session.Generate(context.Background(), gen, req, 2); err != nil {
		t.Fatalf("generation failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "run_test.log"))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	contents := string(data)

	for _, want := range []string{
		"Run ID: run_test",
		"Number of Questions: 2",
		"=== LLM REQUEST (QuestionGenerator) ===",
		"=== LLM RESPONSE (QuestionGenerator) ===",
		"not json at all",
		"Question 1: accepted",
		"Question 2: accepted",
		"=== Quiz Generation Complete ===",
	} {
		if !strings.Contains(contents, want) {
			t.Errorf("log file missing %q", want)
		}
	}
}

func TestFailedQuestionIsLogged(t *testing.T) {
	dir := t.TempDir()

	req := testRequest()
	logger, err := NewLLMLogger(dir, "run_fail", req, 1)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	completer := &scriptedCompleter{outputs: []scriptedOutput{
		{text: "garbage"},
		{text: "garbage"},
		{text: "garbage"},
	}}
	gen := NewQuestionGenerator(completer, 3)
	gen.SetLogger(logger)

	session := NewQuizSession()
	if err := session.Generate(context.Background(), gen, req, 1); err == nil {
		t.Fatal("expected generation to fail")
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "run_fail.log"))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "Question 1: failed") {
		t.Error("log file does not record the failed question")
	}
}

func TestLoggerCloseIsIdempotent(t *testing.T) {
	logger, err := NewLLMLogger(t.TempDir(), "run_close", testRequest(), 1)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	if err := logger.Close(); err != nil {
		t.Fatalf("first close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("second close failed: %v", err)
	}

	// Logging after close must be a no-op, not a crash
	logger.Logf("late entry\n")
}
