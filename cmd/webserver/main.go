package main

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"studybuddy"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

const sessionName = "studybuddy-session"

// userState is the server-side state for one browser session, addressed by
// the session ID stored in the cookie. The quiz session object is passed
// explicitly into core operations; nothing in the core reads ambient state.
// Handlers hold mu for the duration of their state access: the quiz and chat
// objects are not safe for concurrent mutation.
type userState struct {
	mu          sync.Mutex
	quiz        *studybuddy.QuizSession
	quizReq     studybuddy.GenerationRequest
	generated   bool
	submitted   bool
	lastCSV     string
	chats       map[string]*studybuddy.ChatSession
	chatOrder   []string
	activeChat  string
	quizContext string
}

type Server struct {
	db        *studybuddy.DB
	store     *sessions.CookieStore
	templates map[string]*template.Template
	settings  *studybuddy.Settings
	client    *studybuddy.LLMClient
	chat      *studybuddy.ChatEngine

	mu    sync.Mutex
	users map[string]*userState
}

func main() {
	verbose := os.Getenv("STUDYBUDDY_VERBOSE") != ""
	studybuddy.SetVerbose(verbose)

	settings, err := studybuddy.LoadSettings()
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	// Initialize database
	db, err := studybuddy.OpenDB(settings.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.CloseDB()

	// Create tables
	if err := db.CreateTables(); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	// Initialize session store
	store := sessions.NewCookieStore(sessionSecret())

	// Load templates with custom functions
	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"join":   strings.Join,
		"printf": fmt.Sprintf,
	}

	// Create template map
	templates := make(map[string]*template.Template)

	// Load each template with base.html
	templateFiles := []struct {
		name string
		file string
	}{
		{"quiz", "templates/quiz.html"},
		{"chat", "templates/chat.html"},
		{"history", "templates/history.html"},
	}

	for _, tmpl := range templateFiles {
		templates[tmpl.name] = template.Must(template.New(tmpl.name).Funcs(funcMap).ParseFiles("templates/base.html", tmpl.file))
	}

	client := studybuddy.NewLLMClient(settings)
	server := &Server{
		db:        db,
		store:     store,
		templates: templates,
		settings:  settings,
		client:    client,
		chat:      studybuddy.NewChatEngine(client),
		users:     make(map[string]*userState),
	}

	// Setup routes
	http.HandleFunc("/", server.handleHome)
	http.HandleFunc("/quiz", server.handleQuizPage)
	http.HandleFunc("/quiz/generate", server.handleGenerate)
	http.HandleFunc("/quiz/answer", server.handleAnswer)
	http.HandleFunc("/quiz/submit", server.handleSubmit)
	http.HandleFunc("/quiz/save", server.handleSave)
	http.HandleFunc("/quiz/download", server.handleDownload)
	http.HandleFunc("/chat", server.handleChatPage)
	http.HandleFunc("/chat/new", server.handleChatNew)
	http.HandleFunc("/chat/select", server.handleChatSelect)
	http.HandleFunc("/chat/message", server.handleChatMessage)
	http.HandleFunc("/chat/quiz", server.handleChatToQuiz)
	http.HandleFunc("/history", server.handleHistory)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8180"
	}

	log.Printf("Starting server on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, nil))
}

// sessionSecret returns the cookie signing key: STUDYBUDDY_SESSION_SECRET if
// set, otherwise a random per-boot key (sessions then reset on restart).
func sessionSecret() []byte {
	if secret := os.Getenv("STUDYBUDDY_SESSION_SECRET"); secret != "" {
		return []byte(secret)
	}

	key := securecookie.GenerateRandomKey(32)
	if key == nil {
		log.Fatal("Failed to generate a session secret")
	}
	log.Printf("STUDYBUDDY_SESSION_SECRET not set; using a random per-boot secret, sessions will not survive a restart")
	return key
}

// userFor returns (creating if needed) the server-side state for the
// request's browser session.
func (s *Server) userFor(w http.ResponseWriter, r *http.Request) *userState {
	session, _ := s.store.Get(r, sessionName)

	sid, _ := session.Values["sid"].(string)
	if sid == "" {
		sid = newSessionID()
		session.Values["sid"] = sid
		if err := session.Save(r, w); err != nil {
			log.Printf("Session save error: %v", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.users[sid]
	if !ok {
		state = &userState{
			quiz:  studybuddy.NewQuizSession(),
			chats: make(map[string]*studybuddy.ChatSession),
		}
		s.users[sid] = state
	}
	return state
}

func (s *Server) setFlash(w http.ResponseWriter, r *http.Request, message string) {
	session, _ := s.store.Get(r, sessionName)
	session.AddFlash(message)
	if err := session.Save(r, w); err != nil {
		log.Printf("Session save error: %v", err)
	}
}

func (s *Server) takeFlash(w http.ResponseWriter, r *http.Request) string {
	session, _ := s.store.Get(r, sessionName)
	flashes := session.Flashes()
	if err := session.Save(r, w); err != nil {
		log.Printf("Session save error: %v", err)
	}
	if len(flashes) == 0 {
		return ""
	}
	if msg, ok := flashes[0].(string); ok {
		return msg
	}
	return ""
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/quiz", http.StatusSeeOther)
}

// questionView is the per-question render model for the quiz page
type questionView struct {
	Num        int
	Text       string
	IsSingle   bool
	IsMulti    bool
	IsFill     bool
	Options    []string
	Submitted  bool
	UserAnswer string
}

func (s *Server) handleQuizPage(w http.ResponseWriter, r *http.Request) {
	state := s.userFor(w, r)
	state.mu.Lock()
	defer state.mu.Unlock()

	var questions []questionView
	for i, q := range state.quiz.Questions() {
		view := questionView{
			Num:      i + 1,
			Text:     q.Text,
			IsSingle: q.Type == studybuddy.TypeSingleChoice,
			IsMulti:  q.Type == studybuddy.TypeMultipleChoice,
			IsFill:   q.Type == studybuddy.TypeFillBlank,
			Options:  q.Options,
		}
		if answer, ok := state.quiz.SubmittedAnswer(i); ok {
			view.Submitted = true
			view.UserAnswer = answer.Display(q.Type)
		}
		questions = append(questions, view)
	}

	var results []studybuddy.GradingResult
	var score float64
	if state.submitted {
		results = state.quiz.Results()
		if len(results) > 0 {
			score = studybuddy.AggregateScore(results)
		}
	}

	err := s.templates["quiz"].ExecuteTemplate(w, "base.html", map[string]interface{}{
		"Flash":       s.takeFlash(w, r),
		"Models":      studybuddy.Models,
		"Generated":   state.generated,
		"Submitted":   state.submitted,
		"AllAnswered": state.quiz.AllSubmitted(),
		"Questions":   questions,
		"Results":     results,
		"Score":       score,
		"HasCSV":      state.lastCSV != "",
		"FromChat":    state.quizContext != "",
	})
	if err != nil {
		log.Printf("Template error in quiz: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	state := s.userFor(w, r)
	state.mu.Lock()
	defer state.mu.Unlock()

	topic := r.FormValue("topic")
	if r.FormValue("source") == "chat" {
		topic = state.quizContext
	}
	if topic == "" {
		s.setFlash(w, r, "Please provide a topic or create a quiz from a chat.")
		http.Redirect(w, r, "/quiz", http.StatusSeeOther)
		return
	}

	numQuestions, err := strconv.Atoi(r.FormValue("num_questions"))
	if err != nil || numQuestions < 1 || numQuestions > 10 {
		numQuestions = 5
	}

	questionType := studybuddy.QuestionType(r.FormValue("question_type"))
	switch questionType {
	case studybuddy.TypeSingleChoice, studybuddy.TypeMultipleChoice, studybuddy.TypeFillBlank:
	default:
		questionType = studybuddy.TypeSingleChoice
	}

	difficulty := strings.ToLower(r.FormValue("difficulty"))
	if difficulty == "" {
		difficulty = studybuddy.DifficultyMedium
	}

	model := r.FormValue("model")
	if model == "" {
		model = studybuddy.DefaultModel
	}

	req := studybuddy.GenerationRequest{
		Topic:      topic,
		Type:       questionType,
		Difficulty: difficulty,
		Model:      model,
	}

	generator := studybuddy.NewQuestionGenerator(s.client, s.settings.MaxRetries)

	runID := fmt.Sprintf("quiz_%s_%s", time.Now().Format("20060102_150405"), newSessionID()[:6])
	if llmLog, err := studybuddy.NewLLMLogger(s.settings.LogDir, runID, req, numQuestions); err != nil {
		log.Printf("LLM interaction log disabled: %v", err)
	} else {
		generator.SetLogger(llmLog)
		defer llmLog.Close()
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Minute)
	defer cancel()

	state.generated = false
	state.submitted = false
	state.lastCSV = ""
	if err := state.quiz.Generate(ctx, generator, req, numQuestions); err != nil {
		log.Printf("Quiz generation failed: %v", err)
		s.setFlash(w, r, "Quiz generation failed. Please try again.")
		http.Redirect(w, r, "/quiz", http.StatusSeeOther)
		return
	}

	state.quizReq = req
	state.generated = true
	http.Redirect(w, r, "/quiz", http.StatusSeeOther)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	state := s.userFor(w, r)
	state.mu.Lock()
	defer state.mu.Unlock()

	index, err := strconv.Atoi(r.FormValue("question"))
	if err != nil {
		http.Error(w, "Invalid question index", http.StatusBadRequest)
		return
	}
	index-- // form uses 1-based question numbers

	question, err := state.quiz.Question(index)
	if err != nil {
		http.Error(w, "Unknown question", http.StatusBadRequest)
		return
	}

	var answer studybuddy.Answer
	if question.Type == studybuddy.TypeMultipleChoice {
		answer.Selections = r.Form["answer"]
		if len(answer.Selections) == 0 {
			s.setFlash(w, r, fmt.Sprintf("Select at least one answer for question %d.", index+1))
			http.Redirect(w, r, "/quiz", http.StatusSeeOther)
			return
		}
	} else {
		answer.Text = r.FormValue("answer")
		if answer.Text == "" {
			s.setFlash(w, r, fmt.Sprintf("Provide an answer for question %d.", index+1))
			http.Redirect(w, r, "/quiz", http.StatusSeeOther)
			return
		}
	}

	if err := state.quiz.SubmitAnswer(index, answer); err != nil {
		s.setFlash(w, r, err.Error())
	}
	http.Redirect(w, r, "/quiz", http.StatusSeeOther)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	state := s.userFor(w, r)
	state.mu.Lock()
	defer state.mu.Unlock()

	if _, err := state.quiz.Evaluate(); err != nil {
		var insufficient *studybuddy.InsufficientAnswersError
		if errors.As(err, &insufficient) {
			s.setFlash(w, r, "Please answer all questions before submitting.")
		} else {
			log.Printf("Evaluation failed: %v", err)
			s.setFlash(w, r, "Evaluation failed.")
		}
		http.Redirect(w, r, "/quiz", http.StatusSeeOther)
		return
	}

	state.submitted = true
	http.Redirect(w, r, "/quiz", http.StatusSeeOther)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	state := s.userFor(w, r)
	state.mu.Lock()
	defer state.mu.Unlock()
	results := state.quiz.Results()
	if len(results) == 0 {
		s.setFlash(w, r, "No results to save.")
		http.Redirect(w, r, "/quiz", http.StatusSeeOther)
		return
	}

	path, err := studybuddy.SaveResultsCSV(results, s.settings.ResultsDir, "quiz_results")
	if err != nil {
		log.Printf("CSV export failed: %v", err)
		s.setFlash(w, r, "Failed to save results.")
		http.Redirect(w, r, "/quiz", http.StatusSeeOther)
		return
	}
	state.lastCSV = path

	if _, err := s.db.SaveQuizResult(state.quizReq, results); err != nil {
		log.Printf("Database save failed: %v", err)
		s.setFlash(w, r, "Results saved to CSV, but storing in the database failed.")
		http.Redirect(w, r, "/quiz", http.StatusSeeOther)
		return
	}

	s.setFlash(w, r, "Results saved.")
	http.Redirect(w, r, "/quiz", http.StatusSeeOther)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	state := s.userFor(w, r)
	state.mu.Lock()
	defer state.mu.Unlock()
	if state.lastCSV == "" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=\"quiz_results.csv\"")
	http.ServeFile(w, r, state.lastCSV)
}

func (s *Server) handleChatPage(w http.ResponseWriter, r *http.Request) {
	state := s.userFor(w, r)
	state.mu.Lock()
	defer state.mu.Unlock()

	var messages []studybuddy.ChatMessage
	canQuiz := false
	if chat, ok := state.chats[state.activeChat]; ok {
		for _, m := range chat.Messages {
			if m.Role != studybuddy.RoleSystem {
				messages = append(messages, m)
			}
		}
		canQuiz = studybuddy.HasMeaningfulChat(chat.Messages)
	}

	err := s.templates["chat"].ExecuteTemplate(w, "base.html", map[string]interface{}{
		"Flash":      s.takeFlash(w, r),
		"Models":     studybuddy.Models,
		"Chats":      state.chatOrder,
		"ActiveChat": state.activeChat,
		"Messages":   messages,
		"CanQuiz":    canQuiz,
	})
	if err != nil {
		log.Printf("Template error in chat: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

func (s *Server) handleChatNew(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	state := s.userFor(w, r)
	state.mu.Lock()
	defer state.mu.Unlock()

	model := r.FormValue("model")
	if model == "" {
		model = studybuddy.DefaultModel
	}

	chatID := fmt.Sprintf("chat_%d", len(state.chatOrder)+1)
	state.chats[chatID] = studybuddy.NewChatSession(model)
	state.chatOrder = append(state.chatOrder, chatID)
	state.activeChat = chatID

	http.Redirect(w, r, "/chat", http.StatusSeeOther)
}

func (s *Server) handleChatSelect(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	state := s.userFor(w, r)
	state.mu.Lock()
	defer state.mu.Unlock()
	chatID := r.FormValue("chat")
	if _, ok := state.chats[chatID]; ok {
		state.activeChat = chatID
	}
	http.Redirect(w, r, "/chat", http.StatusSeeOther)
}

func (s *Server) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	state := s.userFor(w, r)
	state.mu.Lock()
	defer state.mu.Unlock()
	chat, ok := state.chats[state.activeChat]
	if !ok {
		s.setFlash(w, r, "Create a chat to start studying.")
		http.Redirect(w, r, "/chat", http.StatusSeeOther)
		return
	}

	userInput := r.FormValue("message")
	if userInput == "" {
		http.Redirect(w, r, "/chat", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	if _, err := s.chat.Respond(ctx, chat, userInput); err != nil {
		log.Printf("Chat response failed: %v", err)
		s.setFlash(w, r, "The assistant could not answer. Please try again.")
	}
	http.Redirect(w, r, "/chat", http.StatusSeeOther)
}

func (s *Server) handleChatToQuiz(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	state := s.userFor(w, r)
	state.mu.Lock()
	defer state.mu.Unlock()
	chat, ok := state.chats[state.activeChat]
	if !ok || !studybuddy.HasMeaningfulChat(chat.Messages) {
		s.setFlash(w, r, "Start a conversation to generate a quiz from it.")
		http.Redirect(w, r, "/chat", http.StatusSeeOther)
		return
	}

	state.quizContext = studybuddy.ChatToContext(chat.Messages)
	state.quiz.Reset()
	state.generated = false
	state.submitted = false
	state.lastCSV = ""

	http.Redirect(w, r, "/quiz", http.StatusSeeOther)
}

func newSessionID() string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, 16)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	quizzes, err := s.db.GetSavedQuizzes(50)
	if err != nil {
		log.Printf("Failed to get saved quizzes: %v", err)
		http.Error(w, "Failed to get saved quizzes", http.StatusInternalServerError)
		return
	}

	var results []studybuddy.GradingResult
	quizID := r.URL.Query().Get("id")
	if quizID != "" {
		results, err = s.db.GetQuizResult(quizID)
		if err != nil {
			log.Printf("Failed to get quiz result: %v", err)
		}
	}

	err = s.templates["history"].ExecuteTemplate(w, "base.html", map[string]interface{}{
		"Quizzes":  quizzes,
		"Selected": quizID,
		"Results":  results,
	})
	if err != nil {
		log.Printf("Template error in history: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}
