package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"studybuddy"
)

func main() {
	var (
		topic        = flag.String("topic", "", "Quiz topic or study material (required)")
		questionType = flag.String("type", "single", "Question type: single, multi, or fill")
		numQuestions = flag.Int("questions", 5, "Number of questions to generate")
		difficulty   = flag.String("difficulty", studybuddy.DifficultyMedium, "Difficulty level (easy, medium, hard)")
		model        = flag.String("model", studybuddy.DefaultModel, "Model to generate with")
		outputFile   = flag.String("output", "", "Output file for quiz JSON (default: stdout)")
		playMode     = flag.Bool("play", false, "Play the quiz interactively")
		saveResults  = flag.Bool("save", false, "Save graded results to CSV and the results database (play mode)")
		verbose      = flag.Bool("verbose", false, "Enable verbose debugging output")
	)

	flag.Parse()

	studybuddy.SetVerbose(*verbose)

	if *topic == "" {
		log.Fatal("Topic is required. Use -topic flag.")
	}

	qt, err := parseQuestionType(*questionType)
	if err != nil {
		log.Fatal(err)
	}

	settings, err := studybuddy.LoadSettings()
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	client := studybuddy.NewLLMClient(settings)
	generator := studybuddy.NewQuestionGenerator(client, settings.MaxRetries)

	req := studybuddy.GenerationRequest{
		Topic:      *topic,
		Type:       qt,
		Difficulty: strings.ToLower(*difficulty),
		Model:      *model,
	}

	session := studybuddy.NewQuizSession()

	runID := fmt.Sprintf("quiz_%s", time.Now().Format("20060102_150405"))
	llmLog, err := studybuddy.NewLLMLogger(settings.LogDir, runID, req, *numQuestions)
	if err != nil {
		log.Printf("Warning: LLM interaction log disabled: %v", err)
	} else {
		generator.SetLogger(llmLog)
		defer llmLog.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	fmt.Printf("Generating %d %s questions... (this may take a moment)\n", *numQuestions, qt)
	if err := session.Generate(ctx, generator, req, *numQuestions); err != nil {
		log.Fatalf("Failed to generate quiz: %v", err)
	}

	if *playMode {
		playQuiz(session, req, settings, *saveResults)
		return
	}

	// Output the generated questions as JSON
	output, err := json.MarshalIndent(session.Questions(), "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal quiz: %v", err)
	}

	if *outputFile != "" {
		err = os.WriteFile(*outputFile, output, 0644)
		if err != nil {
			log.Fatalf("Failed to write output file: %v", err)
		}
		log.Printf("Quiz saved to: %s", *outputFile)
	} else {
		fmt.Println(string(output))
	}
}

func parseQuestionType(raw string) (studybuddy.QuestionType, error) {
	switch strings.ToLower(raw) {
	case "single", "mcq":
		return studybuddy.TypeSingleChoice, nil
	case "multi", "multiple":
		return studybuddy.TypeMultipleChoice, nil
	case "fill", "blank":
		return studybuddy.TypeFillBlank, nil
	default:
		return "", fmt.Errorf("unknown question type %q (want single, multi, or fill)", raw)
	}
}

func playQuiz(session *studybuddy.QuizSession, req studybuddy.GenerationRequest, settings *studybuddy.Settings, saveResults bool) {
	fmt.Printf("\n🎯 Quiz ready: %d questions, difficulty %s\n\n", session.Len(), req.Difficulty)

	scanner := bufio.NewScanner(os.Stdin)

	for i, question := range session.Questions() {
		fmt.Printf("Question %d: %s\n", i+1, question.Text)

		var answer studybuddy.Answer
		switch question.Type {
		case studybuddy.TypeSingleChoice:
			answer = askSingleChoice(scanner, question)
		case studybuddy.TypeMultipleChoice:
			answer = askMultipleChoice(scanner, question)
		default:
			answer = askFillBlank(scanner)
		}

		if err := session.SubmitAnswer(i, answer); err != nil {
			log.Fatalf("Failed to submit answer: %v", err)
		}
		fmt.Println()
	}

	results, err := session.Evaluate()
	if err != nil {
		log.Fatalf("Failed to evaluate quiz: %v", err)
	}

	fmt.Println("📊 Results")
	fmt.Println("==========")
	for _, result := range results {
		if result.IsCorrect {
			fmt.Printf("✅ Question %d: %s\n", result.QuestionNumber, result.Question)
		} else {
			fmt.Printf("❌ Question %d: %s\n", result.QuestionNumber, result.Question)
			fmt.Printf("   Your answer: %s\n", result.UserAnswer)
			fmt.Printf("   Correct answer: %s\n", result.CorrectAnswer)
		}
	}
	fmt.Printf("\nScore: %.1f%%\n", studybuddy.AggregateScore(results))

	if saveResults {
		saveQuizResults(req, results, settings)
	}
}

func askSingleChoice(scanner *bufio.Scanner, question studybuddy.Question) studybuddy.Answer {
	for i, option := range question.Options {
		fmt.Printf("  %d. %s\n", i+1, option)
	}

	for {
		fmt.Print("Your answer (1-4): ")
		if !scanner.Scan() {
			os.Exit(1)
		}
		choice, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err == nil && choice >= 1 && choice <= len(question.Options) {
			return studybuddy.Answer{Text: question.Options[choice-1]}
		}
		fmt.Println("Please enter a number between 1 and 4.")
	}
}

func askMultipleChoice(scanner *bufio.Scanner, question studybuddy.Question) studybuddy.Answer {
	for i, option := range question.Options {
		fmt.Printf("  %d. %s\n", i+1, option)
	}

	for {
		fmt.Print("Your answers (comma-separated, e.g. 1,3): ")
		if !scanner.Scan() {
			os.Exit(1)
		}

		var selections []string
		valid := true
		for _, part := range strings.Split(scanner.Text(), ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			choice, err := strconv.Atoi(part)
			if err != nil || choice < 1 || choice > len(question.Options) {
				valid = false
				break
			}
			selections = append(selections, question.Options[choice-1])
		}

		if valid && len(selections) > 0 {
			return studybuddy.Answer{Selections: selections}
		}
		fmt.Printf("Please enter numbers between 1 and %d, separated by commas.\n", len(question.Options))
	}
}

func askFillBlank(scanner *bufio.Scanner) studybuddy.Answer {
	fmt.Print("Fill in the blank: ")
	if !scanner.Scan() {
		os.Exit(1)
	}
	return studybuddy.Answer{Text: scanner.Text()}
}

func saveQuizResults(req studybuddy.GenerationRequest, results []studybuddy.GradingResult, settings *studybuddy.Settings) {
	path, err := studybuddy.SaveResultsCSV(results, settings.ResultsDir, "quiz_results")
	if err != nil {
		log.Printf("Warning: %v", err)
	} else {
		fmt.Printf("Results saved to: %s\n", path)
	}

	db, err := studybuddy.OpenDB(settings.DBPath)
	if err != nil {
		log.Printf("Warning: failed to open results database: %v", err)
		return
	}
	defer db.CloseDB()

	if err := db.CreateTables(); err != nil {
		log.Printf("Warning: failed to prepare results database: %v", err)
		return
	}

	quizID, err := db.SaveQuizResult(req, results)
	if err != nil {
		log.Printf("Warning: %v", err)
		return
	}
	fmt.Printf("Results stored in database as quiz %s\n", quizID)
}
