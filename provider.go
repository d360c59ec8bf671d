package gradequiz

import "context"

// Provider operation names, used in ProviderError.Op
const (
	OpFetchTopics         = "fetch topics"
	OpFetchQuiz           = "fetch quiz"
	OpFetchQuizFromPrompt = "fetch quiz from prompt"
)

// Provider supplies topics and question sets. Implementations must return
// questions that pass Question.Validate or fail with a *ProviderError.
type Provider interface {
	FetchTopics(ctx context.Context, subject string, grade int) ([]string, error)
	FetchQuiz(ctx context.Context, subject, topic string, count, grade int, difficulty Difficulty) (QuizSet, error)
	FetchQuizFromPrompt(ctx context.Context, prompt string, count, grade int, difficulty Difficulty) (*PromptQuiz, error)
}

// GenerationRequest carries the parameters of a single provider call
type GenerationRequest struct {
	Subject      string     `json:"subject,omitempty"`
	Topic        string     `json:"topic,omitempty"`
	Prompt       string     `json:"prompt,omitempty"`
	Grade        int        `json:"grade"`
	NumQuestions int        `json:"num_questions,omitempty"`
	Difficulty   Difficulty `json:"difficulty,omitempty"`
}
