package gradequiz

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Screen is the page the user is looking at
type Screen string

const (
	ScreenConfig  Screen = "config"
	ScreenQuiz    Screen = "quiz"
	ScreenResults Screen = "results"
)

var (
	ErrWrongScreen    = errors.New("action not available on this screen")
	ErrStartAbandoned = errors.New("quiz start abandoned by restart")
)

// Recorder receives one record per quiz-start attempt
type Recorder interface {
	RecordGeneration(ctx context.Context, rec GenerationRecord) error
}

// Orchestrator sequences the Config, Quiz and Results screens for one user.
//
// At most one quiz fetch is outstanding at a time: a start requested while
// another is pending fails with ErrStartPending and changes nothing. The
// mutex is never held across a provider call.
type Orchestrator struct {
	provider Provider
	recorder Recorder

	mu        sync.Mutex
	screen    Screen
	config    *QuizConfig
	questions QuizSet
	session   *Session
	answers   []*string
	result    *ScoreResult
	errMsg    string
	errTopics bool // errMsg came from a topic load
	loading   bool
	cancel    context.CancelFunc
	epoch     uint64 // bumped by Restart so late fetch results are dropped

	topics        []string
	topicsSubject string
	topicsGrade   int
	topicsLoading bool
	topicsSeq     uint64
}

// NewOrchestrator creates an orchestrator on the Config screen. recorder
// may be nil.
func NewOrchestrator(provider Provider, recorder Recorder) *Orchestrator {
	return &Orchestrator{
		provider: provider,
		recorder: recorder,
		screen:   ScreenConfig,
	}
}

// LoadTopics replaces the topic catalog for a subject and grade. It runs
// whenever the subject or grade changes on the configuration screen; only
// the most recent call updates the catalog.
func (o *Orchestrator) LoadTopics(ctx context.Context, subject string, grade int) ([]string, error) {
	if err := validateGradeSubject(grade, subject); err != nil {
		o.mu.Lock()
		o.setErrorLocked(err, true)
		o.mu.Unlock()
		return nil, err
	}

	o.mu.Lock()
	o.topicsSeq++
	seq := o.topicsSeq
	o.topics = nil
	o.topicsSubject = subject
	o.topicsGrade = grade
	o.topicsLoading = true
	o.mu.Unlock()

	topics, err := o.provider.FetchTopics(ctx, subject, grade)
	if err != nil {
		err = providerError(OpFetchTopics, err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if seq != o.topicsSeq {
		VerboseLog("Dropping stale topics for %s (grade %d)", subject, grade)
		return nil, err
	}
	o.topicsLoading = false
	if err != nil {
		log.Printf("Failed to fetch topics for %s (grade %d): %v", subject, grade, err)
		o.setErrorLocked(err, true)
		return nil, err
	}
	o.topics = TopicCatalog(topics)
	if o.errTopics {
		o.setErrorLocked(nil, false)
	}
	out := make([]string, len(o.topics))
	copy(out, o.topics)
	return out, nil
}

// StartQuiz fetches a quiz for cfg and moves to the Quiz screen. On any
// failure the screen stays on Config with an error message and no session
// is created.
func (o *Orchestrator) StartQuiz(ctx context.Context, cfg QuizConfig) error {
	if err := cfg.Validate(); err != nil {
		o.setError(err)
		return err
	}
	ctx, epoch, err := o.beginStart(ctx)
	if err != nil {
		return err
	}

	questions, err := o.provider.FetchQuiz(ctx, cfg.Subject, cfg.Topic, cfg.NumQuestions, cfg.Grade, cfg.Difficulty)
	if err != nil {
		err = providerError(OpFetchQuiz, err)
	} else {
		questions, err = checkQuizSet(OpFetchQuiz, questions, cfg.NumQuestions)
	}

	o.record(ctx, GenerationRecord{
		Source:     SourceManual,
		Subject:    cfg.Subject,
		Topic:      cfg.Topic,
		Grade:      cfg.Grade,
		Difficulty: cfg.Difficulty,
		Mode:       cfg.Mode,
		Requested:  cfg.NumQuestions,
		Received:   len(questions),
	}, err)

	return o.finishStart(epoch, cfg, questions, err)
}

// StartQuizFromPrompt lets the provider identify the topic from free text.
// The resulting config uses PromptSubject and the identified topic.
func (o *Orchestrator) StartQuizFromPrompt(ctx context.Context, prompt string, count, grade int, difficulty Difficulty, mode Mode) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		o.setError(ErrEmptyPrompt)
		return ErrEmptyPrompt
	}
	if err := validateShared(grade, count, difficulty, mode); err != nil {
		o.setError(err)
		return err
	}
	ctx, epoch, err := o.beginStart(ctx)
	if err != nil {
		return err
	}

	var (
		questions QuizSet
		topic     string
	)
	pq, err := o.provider.FetchQuizFromPrompt(ctx, prompt, count, grade, difficulty)
	switch {
	case err != nil:
		err = providerError(OpFetchQuizFromPrompt, err)
	case pq == nil || strings.TrimSpace(pq.Topic) == "":
		err = providerError(OpFetchQuizFromPrompt, ErrMalformedQuestion)
	default:
		topic = strings.TrimSpace(pq.Topic)
		questions, err = checkQuizSet(OpFetchQuizFromPrompt, pq.Questions, count)
	}

	o.record(ctx, GenerationRecord{
		Source:     SourcePrompt,
		Subject:    PromptSubject,
		Topic:      topic,
		Prompt:     prompt,
		Grade:      grade,
		Difficulty: difficulty,
		Mode:       mode,
		Requested:  count,
		Received:   len(questions),
	}, err)

	cfg := QuizConfig{
		Grade:        grade,
		Subject:      PromptSubject,
		Topic:        topic,
		NumQuestions: count,
		Difficulty:   difficulty,
		Mode:         mode,
	}
	return o.finishStart(epoch, cfg, questions, err)
}

// beginStart marks a fetch as outstanding. The returned context is
// cancelled by Restart or when the fetch finishes.
func (o *Orchestrator) beginStart(ctx context.Context) (context.Context, uint64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.loading {
		return ctx, 0, ErrStartPending
	}
	if o.screen != ScreenConfig {
		return ctx, 0, ErrWrongScreen
	}
	ctx, o.cancel = context.WithCancel(ctx)
	o.loading = true
	o.setErrorLocked(nil, false)
	return ctx, o.epoch, nil
}

func (o *Orchestrator) finishStart(epoch uint64, cfg QuizConfig, questions QuizSet, err error) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if epoch != o.epoch {
		return ErrStartAbandoned
	}
	o.loading = false
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}

	var session *Session
	if err == nil {
		session, err = NewSession(questions, cfg.Mode)
		if err != nil {
			err = providerError(OpFetchQuiz, err)
		}
	}
	if err != nil {
		log.Printf("Failed to start quiz: %v", err)
		o.screen = ScreenConfig
		o.setErrorLocked(err, false)
		return err
	}

	o.config = &cfg
	o.questions = questions
	o.session = session
	o.answers = nil
	o.result = nil
	o.setErrorLocked(nil, false)
	o.screen = ScreenQuiz
	log.Printf("Quiz started: %d questions on %q (%s mode)", len(questions), cfg.Topic, cfg.Mode)
	return nil
}

// checkQuizSet enforces the provider contract and trims extra questions
func checkQuizSet(op string, questions QuizSet, requested int) (QuizSet, error) {
	if err := questions.Validate(requested); err != nil {
		return questions, providerError(op, err)
	}
	return truncate(questions, requested), nil
}

func (o *Orchestrator) record(ctx context.Context, rec GenerationRecord, err error) {
	if o.recorder == nil {
		return
	}
	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now()
	rec.Status = StatusReady
	if err != nil {
		rec.Status = StatusFailed
		rec.Error = err.Error()
	}
	if rerr := o.recorder.RecordGeneration(context.WithoutCancel(ctx), rec); rerr != nil {
		log.Printf("Failed to record generation %s: %v", rec.ID, rerr)
	}
}

func (o *Orchestrator) setError(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.setErrorLocked(err, false)
}

func (o *Orchestrator) setErrorLocked(err error, fromTopics bool) {
	o.errMsg = UserMessage(err)
	o.errTopics = err != nil && fromTopics
}

// SelectAnswer forwards to the session; false means the selection was rejected
func (o *Orchestrator) SelectAnswer(option string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.screen != ScreenQuiz || o.session == nil {
		return false
	}
	ok := o.session.SelectAnswer(option)
	if !ok {
		VerboseLog("Rejected answer %q", option)
	}
	return ok
}

// Advance forwards to the session and scores the quiz when it completes
func (o *Orchestrator) Advance() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.screen != ScreenQuiz || o.session == nil {
		return false
	}
	if !o.session.Advance() {
		VerboseLog("Rejected advance on unanswered question")
		return false
	}
	if answers, done := o.session.Finished(); done {
		result := Score(o.questions, answers)
		o.answers = answers
		o.result = &result
		o.screen = ScreenResults
		log.Printf("Quiz finished: %d/%d", result.Score, result.Total)
	}
	return true
}

// Questions returns a copy of the active question set
func (o *Orchestrator) Questions() QuizSet {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append(QuizSet(nil), o.questions...)
}

// Restart discards the quiz and returns to Config with no error. A fetch
// still in flight is cancelled and its result dropped.
func (o *Orchestrator) Restart() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.epoch++
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.loading = false
	o.screen = ScreenConfig
	o.config = nil
	o.questions = nil
	o.session = nil
	o.answers = nil
	o.result = nil
	o.setErrorLocked(nil, false)
}

// Snapshot is a read-only view of the orchestrator for rendering
type Snapshot struct {
	Screen        Screen
	Loading       bool
	Error         string
	Topics        []string
	TopicsSubject string // subject the topic catalog was requested for, empty before the first load
	TopicsGrade   int
	TopicsLoading bool
	Config        *QuizConfig

	// Quiz screen
	Question *Question
	Index    int
	Total    int
	Phase    Phase
	Selected *string
	Feedback *Feedback

	// Results screen
	Answers []*string
	Result  *ScoreResult
}

// Snapshot returns the current state
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	snap := Snapshot{
		Screen:        o.screen,
		Loading:       o.loading,
		Error:         o.errMsg,
		Topics:        append([]string(nil), o.topics...),
		TopicsSubject: o.topicsSubject,
		TopicsGrade:   o.topicsGrade,
		TopicsLoading: o.topicsLoading,
	}
	if o.config != nil {
		cfg := *o.config
		snap.Config = &cfg
	}
	if o.screen == ScreenQuiz && o.session != nil {
		q, i := o.session.Current()
		state := o.session.State()
		snap.Question = &q
		snap.Index = i
		snap.Total = len(o.questions)
		snap.Phase = state.Phase
		snap.Selected = state.Answers[i]
		if fb, ok := o.session.Feedback(); ok {
			snap.Feedback = &fb
		}
	}
	if o.screen == ScreenResults && o.result != nil {
		result := *o.result
		snap.Result = &result
		snap.Answers = copyAnswers(o.answers)
		snap.Total = result.Total
	}
	return snap
}
