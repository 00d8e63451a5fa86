package studyquiz

import "time"

// Topic is a named body of study material submitted by a user.
type Topic struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Materials string    `json:"materials"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// TopicSummary is the shape returned when listing a user's topics.
type TopicSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TopicWithSessions is a topic plus summaries of its quiz sessions.
type TopicWithSessions struct {
	Topic
	Sessions []SessionSummary `json:"sessions"`
}

// SessionSummary is the per-session shape embedded in a topic view.
type SessionSummary struct {
	ID        string `json:"id"`
	Completed bool   `json:"completed"`
	Score     *int   `json:"score"`
}

// QuizSession is one attempt at a generated quiz tied to a topic.
// Score is nil until the session is completed.
type QuizSession struct {
	ID        string         `json:"id"`
	TopicID   string         `json:"topicId"`
	Completed bool           `json:"completed"`
	Score     *int           `json:"score"`
	Questions []QuizQuestion `json:"questions"`
	CreatedAt time.Time      `json:"createdAt"`
}

// QuizQuestion is a single multiple-choice question within a session.
// UserAnswer and IsCorrect stay nil until set: UserAnswer by progress
// saving or submission, IsCorrect only at submission time.
type QuizQuestion struct {
	ID            string   `json:"id"`
	SessionID     string   `json:"sessionId"`
	QuestionText  string   `json:"questionText"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
	UserAnswer    *string  `json:"userAnswer"`
	IsCorrect     *bool    `json:"isCorrect"`
}

// CleanedQuestion is a question that has passed the parser's schema
// checks. Downstream code assumes it is fully well-formed and never
// re-validates.
type CleanedQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// TopicContext is the synthesis input for a fresh quiz on a topic.
type TopicContext struct {
	Name      string `json:"name"`
	Materials string `json:"materials"`
}

// IncorrectQuestion is one previously-missed question fed back to the
// synthesizer as remediation context.
type IncorrectQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// GenerationRequest is the transient input to a synthesis call.
// Exactly one of Context/Remediation is populated. Logger, when set,
// receives the prompt/response transcript for this call.
type GenerationRequest struct {
	Context     *TopicContext
	Remediation []IncorrectQuestion
	Logger      *LLMLogger
}

// Answer is a caller-supplied answer targeting one question.
type Answer struct {
	QuestionID string  `json:"questionId"`
	UserAnswer *string `json:"userAnswer"`
}

// SessionQuestionView is a question as exposed while taking a quiz:
// the correct answer and explanation are withheld until review.
type SessionQuestionView struct {
	QuestionID   string   `json:"questionId"`
	QuestionText string   `json:"questionText"`
	Options      []string `json:"options"`
	UserAnswer   *string  `json:"userAnswer"`
}

// CreatedSession is the response shape for session creation and
// regeneration.
type CreatedSession struct {
	SessionID string                `json:"sessionId"`
	Count     int                   `json:"count"`
	Questions []SessionQuestionView `json:"questions"`
}

// SessionView is an in-progress session as returned while taking a quiz.
type SessionView struct {
	SessionID string                `json:"sessionId"`
	TopicID   string                `json:"topicId"`
	Completed bool                  `json:"completed"`
	Questions []SessionQuestionView `json:"questions"`
}

// ReviewQuestion is the fully-revealed question shape for review.
type ReviewQuestion struct {
	QuestionText  string   `json:"questionText"`
	Options       []string `json:"options"`
	UserAnswer    *string  `json:"userAnswer"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
	IsCorrect     *bool    `json:"isCorrect"`
}

// SessionReview is the review shape for a completed session.
type SessionReview struct {
	SessionID string           `json:"sessionId"`
	TopicID   string           `json:"topicId"`
	Score     *int             `json:"score"`
	Questions []ReviewQuestion `json:"questions"`
}
