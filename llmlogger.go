package gradequiz

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LLMLogger writes the prompts and raw responses of one provider call to
// its own file under the log directory.
type LLMLogger struct {
	file *os.File
	mu   sync.Mutex
	id   string
}

// NewLLMLogger creates dir/<id>.log and writes the request header
func NewLLMLogger(dir, id, op string, req GenerationRequest) (*LLMLogger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("%s.log", id))
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	logger := &LLMLogger{
		file: file,
		id:   id,
	}

	logger.Logf("=== Provider Call Log ===\n")
	logger.Logf("Call ID: %s\n", id)
	logger.Logf("Operation: %s\n", op)
	if req.Subject != "" {
		logger.Logf("Subject: %s\n", req.Subject)
	}
	if req.Topic != "" {
		logger.Logf("Topic: %s\n", req.Topic)
	}
	if req.Prompt != "" {
		logger.Logf("Prompt Length: %d characters\n", len(req.Prompt))
	}
	logger.Logf("Grade: %d\n", req.Grade)
	if req.NumQuestions > 0 {
		logger.Logf("Number of Questions: %d\n", req.NumQuestions)
		logger.Logf("Difficulty: %s\n", req.Difficulty)
	}
	logger.Logf("Started: %s\n", time.Now().Format(time.RFC3339))
	logger.Logf("========================\n\n")

	return logger, nil
}

// Logf writes a formatted log entry with timestamp
func (ll *LLMLogger) Logf(format string, args ...interface{}) {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	ll.writef(format, args...)
}

func (ll *LLMLogger) writef(format string, args ...interface{}) {
	if ll.file == nil {
		return
	}
	timestamp := time.Now().Format("15:04:05.000")
	fmt.Fprintf(ll.file, "[%s] %s", timestamp, fmt.Sprintf(format, args...))
	ll.file.Sync()
}

// LogLLMRequest logs an LLM request
func (ll *LLMLogger) LogLLMRequest(op, prompt string) {
	ll.Logf("=== LLM REQUEST (%s) ===\n", op)
	ll.Logf("Prompt:\n%s\n", prompt)
	ll.Logf("=====================\n\n")
}

// LogLLMResponse logs an LLM response
func (ll *LLMLogger) LogLLMResponse(op, response string) {
	ll.Logf("=== LLM RESPONSE (%s) ===\n", op)
	ll.Logf("Response:\n%s\n", response)
	ll.Logf("======================\n\n")
}

// Close closes the log file
func (ll *LLMLogger) Close() error {
	ll.mu.Lock()
	defer ll.mu.Unlock()

	if ll.file == nil {
		return nil
	}
	ll.writef("=== Provider Call Complete ===\n")
	ll.writef("Completed: %s\n", time.Now().Format(time.RFC3339))
	err := ll.file.Close()
	ll.file = nil
	return err
}
