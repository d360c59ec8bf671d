package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"gradequiz"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/samber/lo"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	sessionName = "quiz-session"
	sessionKey  = "sid"
	historySize = 5

	defaultIdleTTL     = 2 * time.Hour
	defaultMaxSessions = 10000
)

// Server serves the quiz pages. Each browser gets its own Orchestrator,
// found through the ID stored in its session cookie. Sessions idle for
// longer than idleTTL are dropped, and at most maxSessions are kept.
type Server struct {
	provider  gradequiz.Provider
	db        *gradequiz.DB
	store     *sessions.CookieStore
	templates map[string]*template.Template

	idleTTL     time.Duration
	maxSessions int
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*browserSession
}

type browserSession struct {
	orch     *gradequiz.Orchestrator
	lastUsed time.Time
}

// NewServer wires the provider and optional history database. db may be nil.
func NewServer(provider gradequiz.Provider, db *gradequiz.DB, secret []byte) *Server {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return &Server{
		provider:      provider,
		db:            db,
		store:         store,
		templates:   loadTemplates(),
		idleTTL:     defaultIdleTTL,
		maxSessions: defaultMaxSessions,
		now:         time.Now,
		sessions:    make(map[string]*browserSession),
	}
}

func loadTemplates() map[string]*template.Template {
	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"letter": func(i int) string {
			return string(rune('A' + i))
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"isSelected": func(selected *string, option string) bool {
			return selected != nil && *selected == option
		},
	}

	templates := make(map[string]*template.Template)
	templateFiles := []struct {
		name string
		file string
	}{
		{"config", "templates/config.html"},
		{"loading", "templates/loading.html"},
		{"welcome", "templates/welcome.html"},
		{"quiz", "templates/quiz.html"},
		{"results", "templates/results.html"},
	}
	for _, tmpl := range templateFiles {
		templates[tmpl.name] = template.Must(template.New(tmpl.name).Funcs(funcMap).ParseFS(templateFS, "templates/base.html", tmpl.file))
	}
	return templates
}

// Routes builds the HTTP handler
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleHome)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Post("/topics", s.handleTopics)
	r.Post("/quiz", s.handleStartQuiz)
	r.Post("/quiz/ai", s.handleStartQuizWithAI)
	r.Post("/answer", s.handleAnswer)
	r.Post("/next", s.handleNext)
	r.Post("/restart", s.handleRestart)
	return r
}

// orchestrator returns the caller's orchestrator, creating the session
// cookie on first use. fresh reports that the cookie was issued by this
// request. It must run before anything is written to w.
func (s *Server) orchestrator(w http.ResponseWriter, r *http.Request) (orch *gradequiz.Orchestrator, fresh bool) {
	session, err := s.store.Get(r, sessionName)
	if err != nil {
		log.Printf("Session decode error, starting a new one: %v", err)
	}
	sid, _ := session.Values[sessionKey].(string)
	if sid == "" {
		sid = uuid.NewString()
		session.Values[sessionKey] = sid
		if err := session.Save(r, w); err != nil {
			log.Printf("Session save error: %v", err)
		}
		fresh = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.evictLocked(now)

	bs, ok := s.sessions[sid]
	if !ok {
		var recorder gradequiz.Recorder
		if s.db != nil {
			recorder = s.db
		}
		bs = &browserSession{orch: gradequiz.NewOrchestrator(s.provider, recorder)}
		s.sessions[sid] = bs
	}
	bs.lastUsed = now
	return bs.orch, fresh
}

// evictLocked drops idle sessions and, when still full, the least recently
// used one so a new session fits.
func (s *Server) evictLocked(now time.Time) {
	for sid, bs := range s.sessions {
		if now.Sub(bs.lastUsed) > s.idleTTL {
			delete(s.sessions, sid)
		}
	}
	for len(s.sessions) >= s.maxSessions && len(s.sessions) > 0 {
		oldest := lo.MinBy(lo.Entries(s.sessions), func(a, b lo.Entry[string, *browserSession]) bool {
			return a.Value.lastUsed.Before(b.Value.lastUsed)
		})
		delete(s.sessions, oldest.Key)
	}
}

func (s *Server) sessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

type pageData struct {
	Snap         gradequiz.Snapshot
	Defaults     gradequiz.QuizConfig
	Grades       []int
	Subjects     []string
	Counts       []int
	Difficulties []gradequiz.Difficulty
	Modes        []gradequiz.Mode
	History      []gradequiz.GenerationRecord
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	orch, fresh := s.orchestrator(w, r)
	snap := orch.Snapshot()

	// Topics cost a model call, so they are only fetched once the browser
	// has shown it keeps the session cookie.
	if snap.Screen == gradequiz.ScreenConfig && snap.TopicsSubject == "" && !snap.TopicsLoading {
		if fresh {
			s.render(w, "welcome", nil)
			return
		}
		def := gradequiz.DefaultConfig()
		orch.LoadTopics(r.Context(), def.Subject, def.Grade)
		snap = orch.Snapshot()
	}

	data := pageData{
		Snap:         snap,
		Defaults:     gradequiz.DefaultConfig(),
		Grades:       gradequiz.Grades,
		Subjects:     gradequiz.Subjects,
		Counts:       gradequiz.QuestionCounts,
		Difficulties: gradequiz.Difficulties,
		Modes:        gradequiz.Modes,
	}
	if snap.TopicsSubject != "" {
		data.Defaults.Subject = snap.TopicsSubject
		data.Defaults.Grade = snap.TopicsGrade
	}

	name := string(snap.Screen)
	switch {
	case snap.Loading:
		name = "loading"
	case snap.Screen == gradequiz.ScreenConfig && s.db != nil:
		history, err := s.db.RecentGenerations(historySize)
		if err != nil {
			log.Printf("Failed to load history: %v", err)
		}
		data.History = history
	}
	s.render(w, name, data)
}

func (s *Server) render(w http.ResponseWriter, name string, data interface{}) {
	tmpl, ok := s.templates[name]
	if !ok {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Template error in %s: %v", name, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	orch, _ := s.orchestrator(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}
	grade, err := strconv.Atoi(r.FormValue("grade"))
	if err != nil {
		http.Error(w, "Invalid grade", http.StatusBadRequest)
		return
	}
	// unknown subjects and grades are rejected there; the error is on the snapshot
	orch.LoadTopics(r.Context(), r.FormValue("subject"), grade)
	redirectHome(w, r)
}

func (s *Server) handleStartQuiz(w http.ResponseWriter, r *http.Request) {
	orch, _ := s.orchestrator(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}
	cfg, err := configFromForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.start(w, r, func(ctx context.Context) error {
		return orch.StartQuiz(ctx, cfg)
	})
}

func (s *Server) handleStartQuizWithAI(w http.ResponseWriter, r *http.Request) {
	orch, _ := s.orchestrator(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}
	cfg, err := configFromForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	prompt := r.FormValue("prompt")
	s.start(w, r, func(ctx context.Context) error {
		return orch.StartQuizFromPrompt(ctx, prompt, cfg.NumQuestions, cfg.Grade, cfg.Difficulty, cfg.Mode)
	})
}

// start runs a quiz fetch. Provider and validation errors are shown on the
// config page, so only unexpected failures are logged here.
func (s *Server) start(w http.ResponseWriter, r *http.Request, fn func(context.Context) error) {
	err := fn(r.Context())
	switch {
	case err == nil, errors.Is(err, gradequiz.ErrStartPending), errors.Is(err, gradequiz.ErrStartAbandoned):
	case errors.Is(err, gradequiz.ErrWrongScreen):
		gradequiz.VerboseLog("Ignoring quiz start outside the config screen")
	default:
		gradequiz.VerboseLog("Quiz start failed: %v", err)
	}
	redirectHome(w, r)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	orch, _ := s.orchestrator(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}
	orch.SelectAnswer(r.FormValue("option"))
	redirectHome(w, r)
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	orch, _ := s.orchestrator(w, r)
	orch.Advance()
	redirectHome(w, r)
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	orch, _ := s.orchestrator(w, r)
	orch.Restart()
	redirectHome(w, r)
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func configFromForm(r *http.Request) (gradequiz.QuizConfig, error) {
	grade, err := strconv.Atoi(r.FormValue("grade"))
	if err != nil {
		return gradequiz.QuizConfig{}, fmt.Errorf("invalid grade")
	}
	numQuestions, err := strconv.Atoi(r.FormValue("num_questions"))
	if err != nil {
		return gradequiz.QuizConfig{}, fmt.Errorf("invalid number of questions")
	}
	difficulty, err := gradequiz.ParseDifficulty(r.FormValue("difficulty"))
	if err != nil {
		return gradequiz.QuizConfig{}, err
	}
	mode, err := gradequiz.ParseMode(r.FormValue("mode"))
	if err != nil {
		return gradequiz.QuizConfig{}, err
	}
	return gradequiz.QuizConfig{
		Grade:        grade,
		Subject:      r.FormValue("subject"),
		Topic:        r.FormValue("topic"),
		NumQuestions: numQuestions,
		Difficulty:   difficulty,
		Mode:         mode,
	}, nil
}
