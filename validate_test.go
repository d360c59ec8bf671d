package gradequiz

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func TestQuestionValidate(t *testing.T) {
	valid := twoPlusTwo()[0]
	tests := []struct {
		name   string
		mutate func(q *Question)
		ok     bool
	}{
		{"valid", func(q *Question) {}, true},
		{"missing text", func(q *Question) { q.Text = " " }, false},
		{"missing explanation", func(q *Question) { q.Explanation = "" }, false},
		{"three options", func(q *Question) { q.Options = q.Options[:3] }, false},
		{"empty option", func(q *Question) { q.Options = []string{"3", "4", "", "6"} }, false},
		{"duplicate options", func(q *Question) { q.Options = []string{"3", "4", "4", "6"} }, false},
		{"missing correct answer", func(q *Question) { q.CorrectAnswer = "" }, false},
		{"correct answer not an option", func(q *Question) { q.CorrectAnswer = "four" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := valid
			q.Options = append([]string(nil), valid.Options...)
			tt.mutate(&q)
			err := q.Validate()
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrMalformedQuestion) {
				t.Fatalf("err = %v, want ErrMalformedQuestion", err)
			}
		})
	}
}

func TestQuizSetValidate(t *testing.T) {
	if err := sampleSet(5).Validate(5); err != nil {
		t.Fatalf("valid set: %v", err)
	}
	if err := sampleSet(6).Validate(5); err != nil {
		t.Fatalf("longer set: %v", err)
	}

	err := sampleSet(3).Validate(5)
	if !errors.Is(err, ErrTooFewQuestions) {
		t.Fatalf("err = %v, want ErrTooFewQuestions", err)
	}
	if got := err.Error(); got != "got 3 of 5 requested questions" {
		t.Fatalf("message = %q", got)
	}

	extra := sampleSet(6)
	extra[5].Explanation = ""
	if err := extra.Validate(5); err != nil {
		t.Fatalf("malformed question past the requested count: %v", err)
	}
	if err := extra.Validate(6); !errors.Is(err, ErrMalformedQuestion) {
		t.Fatalf("err = %v, want ErrMalformedQuestion", err)
	}

	qs := sampleSet(5)
	qs[3].Options[1] = qs[3].Options[0]
	err = qs.Validate(5)
	if !errors.Is(err, ErrMalformedQuestion) {
		t.Fatalf("err = %v, want ErrMalformedQuestion", err)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config: %v", err)
	}
	tests := []struct {
		name   string
		mutate func(c *QuizConfig)
	}{
		{"grade", func(c *QuizConfig) { c.Grade = 9 }},
		{"subject", func(c *QuizConfig) { c.Subject = "Art" }},
		{"topic", func(c *QuizConfig) { c.Topic = "" }},
		{"count", func(c *QuizConfig) { c.NumQuestions = 7 }},
		{"difficulty", func(c *QuizConfig) { c.Difficulty = "Hard" }},
		{"mode", func(c *QuizConfig) { c.Mode = "Exam" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(&c)
			if err := c.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("err = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestParseModeAndDifficulty(t *testing.T) {
	if m, err := ParseMode("practice"); err != nil || m != ModePractice {
		t.Fatalf("ParseMode = %q, %v", m, err)
	}
	if _, err := ParseMode("exam"); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err = %v", err)
	}
	if d, err := ParseDifficulty("TOUGH"); err != nil || d != DifficultyTough {
		t.Fatalf("ParseDifficulty = %q, %v", d, err)
	}
	if _, err := ParseDifficulty("hard"); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err = %v", err)
	}
}

func TestTopicCatalog(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{nil, []string{AllTopics}},
		{[]string{"Fractions"}, []string{AllTopics, "Fractions"}},
		{[]string{" Geometry", "all", "", "Geometry", "Decimals"}, []string{AllTopics, "Geometry", "Decimals"}},
	}
	for _, tt := range tests {
		if got := TopicCatalog(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("TopicCatalog(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{providerError(OpFetchQuiz, &tooFewQuestionsError{got: 3, want: 5}), "The model could only generate 3 questions. Please try a different topic."},
		{providerError(OpFetchTopics, errors.New("x")), "Failed to generate topics. The model might be busy. Please try again."},
		{providerError(OpFetchQuizFromPrompt, errors.New("x")), "Failed to generate the quiz from your request. The model might be busy. Please try again with a clearer topic."},
		{providerError(OpFetchQuiz, errors.New("x")), "Failed to generate the quiz. Please check your configuration and try again."},
		{ErrStartPending, "Your quiz is still being built. Hang tight!"},
		{ErrEmptyPrompt, "Tell us what you want to be quizzed on."},
		{fmt.Errorf("%w: unsupported grade 9", ErrInvalidConfig), "invalid quiz configuration: unsupported grade 9"},
		{errors.New("odd"), "An unknown error occurred."},
	}
	for _, tt := range tests {
		if got := UserMessage(tt.err); got != tt.want {
			t.Errorf("UserMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestProviderErrorNotDoubleWrapped(t *testing.T) {
	inner := providerError(OpFetchTopics, errors.New("x"))
	outer := providerError(OpFetchQuiz, inner)
	var pe *ProviderError
	if !errors.As(outer, &pe) || pe.Op != OpFetchTopics {
		t.Fatalf("outer = %v", outer)
	}
	if outer != inner {
		t.Fatal("provider error wrapped twice")
	}
}
