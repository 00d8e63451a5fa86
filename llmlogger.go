package studyquiz

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LLMLogger records one generation's model interaction to a transcript
// file: the prompt sent, the raw text received, and how validation
// went. One logger per synthesis call.
type LLMLogger struct {
	file *os.File
	mu   sync.Mutex
	id   string
}

// NewLLMLogger creates a transcript logger for a generation identified
// by id (the session id once one exists, or a fresh id for creation).
func NewLLMLogger(dir, id string, req GenerationRequest) (*LLMLogger, error) {
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

	logger.Logf("=== Question Generation Log ===\n")
	logger.Logf("Generation ID: %s\n", id)
	if req.Context != nil {
		logger.Logf("Topic: %s\n", req.Context.Name)
		logger.Logf("Materials Length: %d characters\n", len(req.Context.Materials))
	}
	if len(req.Remediation) > 0 {
		logger.Logf("Remediation Questions: %d\n", len(req.Remediation))
	}
	logger.Logf("Started: %s\n", time.Now().Format(time.RFC3339))
	logger.Logf("========================\n\n")

	return logger, nil
}

// Logf writes a formatted log entry with timestamp
func (ll *LLMLogger) Logf(format string, args ...interface{}) {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	ll.logf(format, args...)
}

func (ll *LLMLogger) logf(format string, args ...interface{}) {
	timestamp := time.Now().Format("15:04:05.000")
	message := fmt.Sprintf(format, args...)

	fmt.Fprintf(ll.file, "[%s] %s", timestamp, message)
	ll.file.Sync()
}

// LogRequest logs the prompt sent to the model.
func (ll *LLMLogger) LogRequest(prompt string) {
	ll.Logf("=== LLM REQUEST ===\n")
	ll.Logf("Prompt:\n%s\n", prompt)
	ll.Logf("===================\n\n")
}

// LogResponse logs the raw text the model returned.
func (ll *LLMLogger) LogResponse(raw string) {
	ll.Logf("=== LLM RESPONSE ===\n")
	ll.Logf("Response:\n%s\n", raw)
	ll.Logf("====================\n\n")
}

// LogOutcome logs how parsing and validation of the response went.
func (ll *LLMLogger) LogOutcome(accepted int, err error) {
	if err != nil {
		ll.Logf("Validation failed: %v\n", err)
		return
	}
	ll.Logf("Validation passed: %d questions accepted\n", accepted)
}

// Close closes the log file
func (ll *LLMLogger) Close() error {
	ll.mu.Lock()
	defer ll.mu.Unlock()

	if ll.file != nil {
		ll.logf("=== Generation Complete ===\n")
		ll.logf("Completed: %s\n", time.Now().Format(time.RFC3339))
		ll.logf("===========================\n")
		return ll.file.Close()
	}
	return nil
}
