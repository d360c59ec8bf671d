package gradequiz

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

// fakeModel answers every chat completion with a single tool call
type fakeModel struct {
	tool      string
	arguments string
	noTools   bool

	lastRequest struct {
		Model      string          `json:"model"`
		ToolChoice json.RawMessage `json:"tool_choice"`
		Messages   []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
}

func (m *fakeModel) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/chat/completions" {
		http.NotFound(w, r)
		return
	}
	if err := json.NewDecoder(r.Body).Decode(&m.lastRequest); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant}
	if !m.noTools {
		msg.ToolCalls = []openai.ToolCall{{
			ID:   "call_1",
			Type: openai.ToolTypeFunction,
			Function: openai.FunctionCall{
				Name:      m.tool,
				Arguments: m.arguments,
			},
		}}
	} else {
		msg.Content = "I would rather chat."
	}
	resp := openai.ChatCompletionResponse{
		ID:      "chatcmpl-test",
		Object:  "chat.completion",
		Model:   m.lastRequest.Model,
		Choices: []openai.ChatCompletionChoice{{Index: 0, Message: msg, FinishReason: openai.FinishReasonToolCalls}},
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func newTestMaker(t *testing.T, m *fakeModel, logDir string) *QuestionMaker {
	t.Helper()
	srv := httptest.NewServer(m)
	t.Cleanup(srv.Close)
	return NewQuestionMaker(Config{
		APIKey:    "test-key",
		Model:     "test-model",
		BaseURL:   srv.URL + "/v1",
		LLMLogDir: logDir,
	})
}

func toolArgs(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestFetchQuiz(t *testing.T) {
	m := &fakeModel{tool: "submit_questions"}
	m.arguments = toolArgs(t, map[string]any{"questions": sampleSet(5)})
	logDir := t.TempDir()
	qm := newTestMaker(t, m, logDir)

	qs, err := qm.FetchQuiz(context.Background(), "Math", "Fractions", 5, 4, DifficultyEasy)
	if err != nil {
		t.Fatalf("FetchQuiz: %v", err)
	}
	if len(qs) != 5 || qs[2].CorrectAnswer != "3" {
		t.Fatalf("questions = %+v", qs)
	}

	if m.lastRequest.Model != "test-model" {
		t.Errorf("model = %q", m.lastRequest.Model)
	}
	if !strings.Contains(string(m.lastRequest.ToolChoice), `"submit_questions"`) {
		t.Errorf("tool_choice = %s", m.lastRequest.ToolChoice)
	}
	if len(m.lastRequest.Messages) != 2 || !strings.Contains(m.lastRequest.Messages[1].Content, "Fractions") {
		t.Errorf("messages = %+v", m.lastRequest.Messages)
	}

	entries, err := os.ReadDir(logDir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("log dir entries = %v, %v", entries, err)
	}
	body, err := os.ReadFile(filepath.Join(logDir, entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Operation: fetch quiz", "LLM REQUEST", "LLM RESPONSE", "Provider Call Complete"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("log missing %q", want)
		}
	}
}

func TestFetchQuizAllTopicsPrompt(t *testing.T) {
	m := &fakeModel{tool: "submit_questions"}
	m.arguments = toolArgs(t, map[string]any{"questions": sampleSet(5)})
	qm := newTestMaker(t, m, "")

	if _, err := qm.FetchQuiz(context.Background(), "Science", AllTopics, 5, 6, DifficultyTough); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(m.lastRequest.Messages[1].Content, "comprehensive range of topics") {
		t.Errorf("prompt = %q", m.lastRequest.Messages[1].Content)
	}
}

func TestFetchQuizErrors(t *testing.T) {
	tests := []struct {
		name  string
		model *fakeModel
		want  error
	}{
		{"short set", &fakeModel{tool: "submit_questions", arguments: `{"questions":[]}`}, ErrTooFewQuestions},
		{"bad json", &fakeModel{tool: "submit_questions", arguments: `{"questions":`}, ErrMalformedQuestion},
		{"wrong tool", &fakeModel{tool: "submit_topics", arguments: `{"topics":["a"]}`}, nil},
		{"no tool call", &fakeModel{noTools: true}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qm := newTestMaker(t, tt.model, "")
			_, err := qm.FetchQuiz(context.Background(), "Math", "Fractions", 5, 4, DifficultyEasy)
			var pe *ProviderError
			if !errors.As(err, &pe) || pe.Op != OpFetchQuiz {
				t.Fatalf("err = %v, want ProviderError", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFetchQuizTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"overloaded","type":"server_error"}}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	qm := NewQuestionMaker(Config{APIKey: "k", BaseURL: srv.URL + "/v1"})

	_, err := qm.FetchQuiz(context.Background(), "Math", "Fractions", 5, 4, DifficultyEasy)
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want ProviderError", err)
	}
}

func TestFetchQuizFromPrompt(t *testing.T) {
	m := &fakeModel{tool: "submit_quiz"}
	m.arguments = toolArgs(t, map[string]any{"topic": "  Volcanoes ", "questions": sampleSet(5)})
	qm := newTestMaker(t, m, "")

	pq, err := qm.FetchQuizFromPrompt(context.Background(), "how do volcanoes erupt", 5, 5, DifficultyMedium)
	if err != nil {
		t.Fatalf("FetchQuizFromPrompt: %v", err)
	}
	if pq.Topic != "Volcanoes" || len(pq.Questions) != 5 {
		t.Fatalf("result = %+v", pq)
	}
	if !strings.Contains(m.lastRequest.Messages[1].Content, "how do volcanoes erupt") {
		t.Errorf("prompt = %q", m.lastRequest.Messages[1].Content)
	}

	m.arguments = toolArgs(t, map[string]any{"topic": "", "questions": sampleSet(5)})
	if _, err := qm.FetchQuizFromPrompt(context.Background(), "x", 5, 5, DifficultyMedium); !errors.Is(err, ErrMalformedQuestion) {
		t.Fatalf("err = %v, want ErrMalformedQuestion", err)
	}
}

func TestFetchTopics(t *testing.T) {
	m := &fakeModel{tool: "submit_topics", arguments: `{"topics":["Fractions","Decimals"]}`}
	qm := newTestMaker(t, m, "")

	topics, err := qm.FetchTopics(context.Background(), "Math", 5)
	if err != nil {
		t.Fatalf("FetchTopics: %v", err)
	}
	if strings.Join(topics, ",") != "Fractions,Decimals" {
		t.Fatalf("topics = %v", topics)
	}
	if m.lastRequest.Messages[0].Content != topicSystemPrompt {
		t.Error("topics call did not use the topic system prompt")
	}

	m.arguments = `{"topics":[]}`
	_, err = qm.FetchTopics(context.Background(), "Math", 5)
	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Op != OpFetchTopics {
		t.Fatalf("err = %v, want topics ProviderError", err)
	}
}
