package gradequiz

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// AllTopics is the pseudo-topic that asks for questions across a whole subject
const AllTopics = "All"

// PromptSubject is recorded as the subject of free-text quizzes
const PromptSubject = "AI Generated"

var (
	Grades         = []int{3, 4, 5, 6, 7, 8}
	Subjects       = []string{"Math", "Science", "Reading", "Social Studies", "Writing"}
	QuestionCounts = []int{5, 10, 15, 20}
	Difficulties   = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyTough}
	Modes          = []Mode{ModeQuiz, ModePractice}
)

// DefaultConfig is what the configuration screen starts with
func DefaultConfig() QuizConfig {
	return QuizConfig{
		Grade:        Grades[0],
		Subject:      Subjects[0],
		Topic:        AllTopics,
		NumQuestions: QuestionCounts[0],
		Difficulty:   DifficultyMedium,
		Mode:         ModeQuiz,
	}
}

// Validate checks the configuration against the catalogs. Topic is free
// text because the topic catalog comes from the provider.
func (c QuizConfig) Validate() error {
	if err := validateShared(c.Grade, c.NumQuestions, c.Difficulty, c.Mode); err != nil {
		return err
	}
	if !lo.Contains(Subjects, c.Subject) {
		return fmt.Errorf("%w: unsupported subject %q", ErrInvalidConfig, c.Subject)
	}
	if strings.TrimSpace(c.Topic) == "" {
		return fmt.Errorf("%w: topic is required", ErrInvalidConfig)
	}
	return nil
}

func validateGradeSubject(grade int, subject string) error {
	if !lo.Contains(Grades, grade) {
		return fmt.Errorf("%w: unsupported grade %d", ErrInvalidConfig, grade)
	}
	if !lo.Contains(Subjects, subject) {
		return fmt.Errorf("%w: unsupported subject %q", ErrInvalidConfig, subject)
	}
	return nil
}

// validateShared covers the settings common to manual and free-text starts
func validateShared(grade, count int, difficulty Difficulty, mode Mode) error {
	if !lo.Contains(Grades, grade) {
		return fmt.Errorf("%w: unsupported grade %d", ErrInvalidConfig, grade)
	}
	if !lo.Contains(QuestionCounts, count) {
		return fmt.Errorf("%w: unsupported question count %d", ErrInvalidConfig, count)
	}
	if !lo.Contains(Difficulties, difficulty) {
		return fmt.Errorf("%w: unsupported difficulty %q", ErrInvalidConfig, difficulty)
	}
	if !lo.Contains(Modes, mode) {
		return fmt.Errorf("%w: unsupported mode %q", ErrInvalidConfig, mode)
	}
	return nil
}

// TopicCatalog prefixes the provider's topics with AllTopics and drops
// blanks and duplicates.
func TopicCatalog(topics []string) []string {
	cleaned := lo.FilterMap(topics, func(t string, _ int) (string, bool) {
		t = strings.TrimSpace(t)
		return t, t != "" && !strings.EqualFold(t, AllTopics)
	})
	return append([]string{AllTopics}, lo.Uniq(cleaned)...)
}
