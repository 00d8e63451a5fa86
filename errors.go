package studyquiz

import (
	"errors"
	"fmt"
)

var (
	// ErrTopicNotFound is returned when a topic id resolves to nothing.
	ErrTopicNotFound = errors.New("topic not found")

	// ErrSessionNotFound is returned when a session id resolves to nothing.
	ErrSessionNotFound = errors.New("quiz session not found")

	// ErrSessionCompleted is returned when an operation valid only for
	// in-progress sessions targets a completed one.
	ErrSessionCompleted = errors.New("quiz session already completed")

	// ErrSessionNotCompleted is returned when review is requested for a
	// session that has not been submitted yet.
	ErrSessionNotCompleted = errors.New("quiz session not completed")

	// ErrNoIncorrectAnswers is returned when regeneration is requested
	// for a session with no incorrectly answered questions.
	ErrNoIncorrectAnswers = errors.New("no incorrect answers to generate a new quiz")

	// ErrGenerationFailed is returned when the model produced no content.
	ErrGenerationFailed = errors.New("no questions generated")
)

// MalformedOutputError reports model output that failed schema
// validation. It is the only rejection point for generated text; code
// past the parser assumes well-formed questions.
type MalformedOutputError struct {
	Reason string
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed generation output: %s", e.Reason)
}

// IsMalformedOutput reports whether err is a MalformedOutputError.
func IsMalformedOutput(err error) bool {
	var m *MalformedOutputError
	return errors.As(err, &m)
}
