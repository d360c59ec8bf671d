package gradequiz

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig     = errors.New("invalid quiz configuration")
	ErrEmptyQuiz         = errors.New("quiz has no questions")
	ErrTooFewQuestions   = errors.New("too few questions")
	ErrMalformedQuestion = errors.New("malformed question")
	ErrStartPending      = errors.New("a quiz is already being generated")
	ErrEmptyPrompt       = errors.New("prompt is empty")
)

// ProviderError wraps every failure of the question provider: transport
// errors, malformed responses and short question sets.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func providerError(op string, err error) error {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return err
	}
	return &ProviderError{Op: op, Err: err}
}

// tooFewQuestionsError records how many questions actually arrived
type tooFewQuestionsError struct {
	got, want int
}

func (e *tooFewQuestionsError) Error() string {
	return fmt.Sprintf("got %d of %d requested questions", e.got, e.want)
}

func (e *tooFewQuestionsError) Unwrap() error {
	return ErrTooFewQuestions
}

// UserMessage turns an error from the orchestrator into the text shown on
// the configuration screen.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var short *tooFewQuestionsError
	if errors.As(err, &short) {
		return fmt.Sprintf("The model could only generate %d questions. Please try a different topic.", short.got)
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		switch pe.Op {
		case OpFetchTopics:
			return "Failed to generate topics. The model might be busy. Please try again."
		case OpFetchQuizFromPrompt:
			return "Failed to generate the quiz from your request. The model might be busy. Please try again with a clearer topic."
		default:
			return "Failed to generate the quiz. Please check your configuration and try again."
		}
	}
	switch {
	case errors.Is(err, ErrStartPending):
		return "Your quiz is still being built. Hang tight!"
	case errors.Is(err, ErrEmptyPrompt):
		return "Tell us what you want to be quizzed on."
	case errors.Is(err, ErrInvalidConfig):
		return err.Error()
	}
	return "An unknown error occurred."
}
