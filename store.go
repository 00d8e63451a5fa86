package studyquiz

import "context"

// GradedAnswer is one question's grading outcome, applied at
// submission time together with the session's completion.
type GradedAnswer struct {
	QuestionID string
	UserAnswer string
	IsCorrect  bool
}

// Store is the durable persistence boundary for topics, sessions, and
// questions. The orchestration service depends on this interface so
// tests can substitute an in-memory implementation.
type Store interface {
	// CreateTopic persists a new topic.
	CreateTopic(ctx context.Context, topic *Topic) error

	// GetTopic returns a topic with its session summaries, or
	// ErrTopicNotFound.
	GetTopic(ctx context.Context, topicID string) (*TopicWithSessions, error)

	// GetUserTopics lists the topics owned by a user.
	GetUserTopics(ctx context.Context, userID string) ([]TopicSummary, error)

	// CreateSession persists a session and all of its questions as one
	// atomic unit. A failed insert leaves nothing behind.
	CreateSession(ctx context.Context, session *QuizSession) error

	// GetSession returns a session with its questions in order, or
	// ErrSessionNotFound.
	GetSession(ctx context.Context, sessionID string) (*QuizSession, error)

	// SaveAnswers applies a batch of userAnswer updates atomically.
	// Returns ErrSessionNotFound for unknown sessions and
	// ErrSessionCompleted when the session is no longer in progress.
	SaveAnswers(ctx context.Context, sessionID string, answers []Answer) error

	// CompleteSession applies all grading updates and the session's
	// completed/score fields as one atomic unit, conditional on the
	// session still being in progress. Returns ErrSessionCompleted when
	// a concurrent submission won, ErrSessionNotFound for unknown ids.
	CompleteSession(ctx context.Context, sessionID string, graded []GradedAnswer, score int) error
}
