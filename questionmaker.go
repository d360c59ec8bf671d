package gradequiz

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
)

// QuestionMaker is the OpenAI backed Provider. It forces a tool call so the
// model answers with JSON matching the question schema.
type QuestionMaker struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logDir  string
}

var _ Provider = (*QuestionMaker)(nil)

// NewQuestionMaker creates a question maker from the provider settings in cfg
func NewQuestionMaker(cfg Config) *QuestionMaker {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4o
	}
	return &QuestionMaker{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   model,
		timeout: cfg.ProviderTimeout,
		logDir:  cfg.LLMLogDir,
	}
}

// FetchQuiz generates count questions for a subject and topic
func (qm *QuestionMaker) FetchQuiz(ctx context.Context, subject, topic string, count, grade int, difficulty Difficulty) (QuizSet, error) {
	req := GenerationRequest{
		Subject:      subject,
		Topic:        topic,
		Grade:        grade,
		NumQuestions: count,
		Difficulty:   difficulty,
	}
	log.Printf("Generating %d questions for %s / %s (grade %d, %s)", count, subject, topic, grade, difficulty)

	var args struct {
		Questions QuizSet `json:"questions"`
	}
	err := qm.callTool(ctx, OpFetchQuiz, req, buildQuizPrompt(req), submitQuestionsTool(), &args)
	if err != nil {
		return nil, err
	}
	if err := args.Questions.Validate(count); err != nil {
		return nil, providerError(OpFetchQuiz, err)
	}

	log.Printf("Generated %d questions", len(args.Questions))
	return truncate(args.Questions, count), nil
}

// FetchQuizFromPrompt lets the model pick the topic from a free-text request
func (qm *QuestionMaker) FetchQuizFromPrompt(ctx context.Context, prompt string, count, grade int, difficulty Difficulty) (*PromptQuiz, error) {
	req := GenerationRequest{
		Prompt:       prompt,
		Grade:        grade,
		NumQuestions: count,
		Difficulty:   difficulty,
	}
	log.Printf("Generating %d questions from prompt (grade %d, %s)", count, grade, difficulty)

	var args PromptQuiz
	err := qm.callTool(ctx, OpFetchQuizFromPrompt, req, buildPromptQuizPrompt(req), submitQuizTool(), &args)
	if err != nil {
		return nil, err
	}
	args.Topic = strings.TrimSpace(args.Topic)
	if args.Topic == "" {
		return nil, providerError(OpFetchQuizFromPrompt, fmt.Errorf("%w: missing topic", ErrMalformedQuestion))
	}
	if err := args.Questions.Validate(count); err != nil {
		return nil, providerError(OpFetchQuizFromPrompt, err)
	}

	log.Printf("Generated %d questions on identified topic %q", len(args.Questions), args.Topic)
	args.Questions = truncate(args.Questions, count)
	return &args, nil
}

// callTool sends one chat completion with a forced tool call and decodes the
// tool arguments into out.
func (qm *QuestionMaker) callTool(ctx context.Context, op string, req GenerationRequest, prompt string, tool *openai.FunctionDefinition, out any) error {
	if qm.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, qm.timeout)
		defer cancel()
	}

	var logger *LLMLogger
	if qm.logDir != "" {
		var err error
		logger, err = NewLLMLogger(qm.logDir, uuid.NewString(), op, req)
		if err != nil {
			log.Printf("Failed to create LLM logger: %v", err)
		} else {
			defer logger.Close()
		}
	}
	if logger != nil {
		logger.LogLLMRequest(op, prompt)
	}

	system := quizSystemPrompt
	if op == OpFetchTopics {
		system = topicSystemPrompt
	}

	resp, err := qm.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: qm.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: system,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Tools: []openai.Tool{
				{
					Type:     openai.ToolTypeFunction,
					Function: tool,
				},
			},
			ToolChoice: openai.ToolChoice{
				Type: openai.ToolTypeFunction,
				Function: openai.ToolFunction{
					Name: tool.Name,
				},
			},
		},
	)
	if err != nil {
		return providerError(op, fmt.Errorf("failed to call model: %w", err))
	}

	if logger != nil {
		responseText := ""
		if len(resp.Choices) > 0 && len(resp.Choices[0].Message.ToolCalls) > 0 {
			responseText = resp.Choices[0].Message.ToolCalls[0].Function.Arguments
		}
		logger.LogLLMResponse(op, responseText)
	}

	if len(resp.Choices) == 0 {
		return providerError(op, fmt.Errorf("no response from model"))
	}

	choice := resp.Choices[0]
	if len(choice.Message.ToolCalls) == 0 {
		return providerError(op, fmt.Errorf("no tool calls in response"))
	}

	toolCall := choice.Message.ToolCalls[0]
	if toolCall.Function.Name != tool.Name {
		return providerError(op, fmt.Errorf("unexpected tool call: %s", toolCall.Function.Name))
	}

	if err := json.Unmarshal([]byte(toolCall.Function.Arguments), out); err != nil {
		return providerError(op, fmt.Errorf("%w: failed to parse tool arguments: %v", ErrMalformedQuestion, err))
	}

	VerboseLog("%s: tool %s returned %d bytes", op, tool.Name, len(toolCall.Function.Arguments))
	return nil
}

func questionSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"question": map[string]interface{}{
				"type":        "string",
				"description": "The quiz question.",
			},
			"options": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "string",
				},
				"description": "An array of 4 possible answers.",
			},
			"correctAnswer": map[string]interface{}{
				"type":        "string",
				"description": "The correct answer, which must be one of the options.",
			},
			"explanation": map[string]interface{}{
				"type":        "string",
				"description": "A detailed explanation of why the answer is correct.",
			},
		},
		"required": []string{"question", "options", "correctAnswer", "explanation"},
	}
}

func submitQuestionsTool() *openai.FunctionDefinition {
	return &openai.FunctionDefinition{
		Name:        "submit_questions",
		Description: "Submit generated quiz questions",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"questions": map[string]interface{}{
					"type":  "array",
					"items": questionSchema(),
				},
			},
			"required": []string{"questions"},
		},
	}
}

func submitQuizTool() *openai.FunctionDefinition {
	return &openai.FunctionDefinition{
		Name:        "submit_quiz",
		Description: "Submit the identified topic and the generated quiz questions",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"topic": map[string]interface{}{
					"type":        "string",
					"description": "The academic topic identified from the user's request.",
				},
				"questions": map[string]interface{}{
					"type":  "array",
					"items": questionSchema(),
				},
			},
			"required": []string{"topic", "questions"},
		},
	}
}
