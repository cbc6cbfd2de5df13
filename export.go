package studybuddy

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// resultHeader is the column set of an exported results file
var resultHeader = []string{
	"question_number",
	"question",
	"question_type",
	"user_answer",
	"correct_answer",
	"is_correct",
	"options",
}

// ResultRows renders grading results as tabular rows matching resultHeader,
// one row per question in question order.
func ResultRows(results []GradingResult) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			strconv.Itoa(r.QuestionNumber),
			r.Question,
			string(r.QuestionType),
			r.UserAnswer,
			r.CorrectAnswer,
			strconv.FormatBool(r.IsCorrect),
			strings.Join(r.Options, ", "),
		})
	}
	return rows
}

// SaveResultsCSV writes grading results to a timestamped CSV file under dir
// and returns the file's path. The write is atomic: rows go to a temporary
// file that is renamed into place, so a failure leaves no partial file.
func SaveResultsCSV(results []GradingResult, dir, prefix string) (string, error) {
	if len(results) == 0 {
		return "", &PersistenceError{Target: dir, Err: fmt.Errorf("no results to save")}
	}
	if prefix == "" {
		prefix = "quiz_results"
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &PersistenceError{Target: dir, Err: err}
	}

	timestamp := time.Now().Format("20060102_150405")
	finalPath := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", prefix, timestamp))

	tmp, err := os.CreateTemp(dir, prefix+"_*.csv.tmp")
	if err != nil {
		return "", &PersistenceError{Target: finalPath, Err: err}
	}
	tmpPath := tmp.Name()

	if err := writeResultRows(tmp, results); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", &PersistenceError{Target: finalPath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", &PersistenceError{Target: finalPath, Err: err}
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return "", &PersistenceError{Target: finalPath, Err: err}
	}

	return finalPath, nil
}

func writeResultRows(f *os.File, results []GradingResult) error {
	w := csv.NewWriter(f)

	if err := w.Write(resultHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range ResultRows(results) {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush rows: %w", err)
	}
	return nil
}
