package gradequiz

import (
	"fmt"
	"strings"
	"time"
)

// Question represents a single multiple choice question as returned by the provider
type Question struct {
	Text          string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"` // must equal one of Options
	Explanation   string   `json:"explanation"`
}

// QuizSet is the ordered list of questions owned by one session
type QuizSet []Question

// Mode selects when feedback is shown
type Mode string

const (
	ModeQuiz     Mode = "Quiz"
	ModePractice Mode = "Practice"
)

// Difficulty is the requested difficulty level passed to the provider
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyTough  Difficulty = "Tough"
)

// ParseMode converts user input into a Mode
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if strings.EqualFold(s, string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, s)
}

// ParseDifficulty converts user input into a Difficulty
func ParseDifficulty(s string) (Difficulty, error) {
	for _, d := range Difficulties {
		if strings.EqualFold(s, string(d)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: unknown difficulty %q", ErrInvalidConfig, s)
}

// QuizConfig is everything the configuration screen collects
type QuizConfig struct {
	Grade        int        `json:"grade"`
	Subject      string     `json:"subject"`
	Topic        string     `json:"topic"`
	NumQuestions int        `json:"num_questions"`
	Difficulty   Difficulty `json:"difficulty"`
	Mode         Mode       `json:"mode"`
}

// PromptQuiz is the provider's answer to a free-text quiz request
type PromptQuiz struct {
	Topic     string  `json:"topic"`
	Questions QuizSet `json:"questions"`
}

// Phase is the session engine state
type Phase string

const (
	PhaseAnswering     Phase = "answering"
	PhaseFeedbackShown Phase = "feedback"
	PhaseCompleted     Phase = "completed"
)

// SessionState is a read-only snapshot of a session
type SessionState struct {
	Phase           Phase     `json:"phase"`
	CurrentIndex    int       `json:"current_index"`
	Answers         []*string `json:"answers"`
	FeedbackVisible bool      `json:"feedback_visible"`
}

// Feedback is what Practice mode reveals right after an answer
type Feedback struct {
	Selected      string `json:"selected"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
	IsCorrect     bool   `json:"is_correct"`
}

// QuestionReview is the per-question part of a ScoreResult
type QuestionReview struct {
	Question   Question `json:"question"`
	UserAnswer *string  `json:"user_answer"`
	IsCorrect  bool     `json:"is_correct"`
}

// ScoreResult is the scored outcome of a completed session
type ScoreResult struct {
	Score       int              `json:"score"`
	Total       int              `json:"total"`
	PerQuestion []QuestionReview `json:"per_question"`
}

// GenerationRecord describes one quiz-start attempt for the history store
type GenerationRecord struct {
	ID         string     `json:"id"`
	Source     string     `json:"source"` // "manual" or "prompt"
	Subject    string     `json:"subject"`
	Topic      string     `json:"topic"`
	Prompt     string     `json:"prompt,omitempty"`
	Grade      int        `json:"grade"`
	Difficulty Difficulty `json:"difficulty"`
	Mode       Mode       `json:"mode"`
	Requested  int        `json:"requested"`
	Received   int        `json:"received"`
	Status     string     `json:"status"` // "ready" or "failed"
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

const (
	SourceManual = "manual"
	SourcePrompt = "prompt"

	StatusReady  = "ready"
	StatusFailed = "failed"
)
