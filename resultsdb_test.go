package studybuddy

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.CloseDB() })

	if err := db.CreateTables(); err != nil {
		t.Fatalf("failed to create tables: %v", err)
	}
	return db
}

func TestSaveAndLoadQuizResult(t *testing.T) {
	db := openTestDB(t)

	req := GenerationRequest{
		Topic:      "European capitals",
		Type:       TypeSingleChoice,
		Difficulty: DifficultyMedium,
		Model:      "llama-3.1-8b-instant",
	}

	quizID, err := db.SaveQuizResult(req, sampleResults())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	quizzes, err := db.GetSavedQuizzes(0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(quizzes) != 1 {
		t.Fatalf("expected 1 saved quiz, got %d", len(quizzes))
	}

	saved := quizzes[0]
	if saved.ID != quizID {
		t.Errorf("expected ID %s, got %s", quizID, saved.ID)
	}
	if saved.Topic != req.Topic || saved.QuestionType != req.Type {
		t.Errorf("unexpected saved quiz: %+v", saved)
	}
	if saved.NumQuestions != 2 {
		t.Errorf("expected 2 questions, got %d", saved.NumQuestions)
	}
	if saved.Score != 50.0 {
		t.Errorf("expected score 50.0, got %v", saved.Score)
	}

	results, err := db.GetQuizResult(quizID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 result rows, got %d", len(results))
	}
	if !results[0].IsCorrect || results[1].IsCorrect {
		t.Errorf("correctness flags did not round-trip: %+v", results)
	}
	if len(results[0].Options) != 4 {
		t.Errorf("options did not round-trip: %v", results[0].Options)
	}
	if len(results[1].Options) != 0 {
		t.Errorf("fill-blank options should be empty, got %v", results[1].Options)
	}
}

func TestSaveQuizResultRejectsEmpty(t *testing.T) {
	db := openTestDB(t)

	if _, err := db.SaveQuizResult(GenerationRequest{}, nil); err == nil {
		t.Fatal("expected empty results to be rejected")
	}

	quizzes, err := db.GetSavedQuizzes(0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(quizzes) != 0 {
		t.Errorf("rejected save must not leave rows behind, got %d", len(quizzes))
	}
}

func TestGetQuizResultUnknownID(t *testing.T) {
	db := openTestDB(t)

	if _, err := db.GetQuizResult("missing"); err == nil {
		t.Fatal("expected error for unknown quiz ID")
	}
}

func TestGetSavedQuizzesLimit(t *testing.T) {
	db := openTestDB(t)

	req := GenerationRequest{Topic: "t", Type: TypeFillBlank, Difficulty: DifficultyEasy, Model: "m"}
	for i := 0; i < 3; i++ {
		if _, err := db.SaveQuizResult(req, sampleResults()); err != nil {
			t.Fatalf("save %d failed: %v", i, err)
		}
	}

	quizzes, err := db.GetSavedQuizzes(2)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(quizzes) != 2 {
		t.Errorf("expected limit of 2, got %d", len(quizzes))
	}
}
