package studyquiz

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

// QuizService drives the quiz lifecycle: topic bookkeeping, synthesis,
// validation, persistence, grading, and regeneration. It is the only
// caller of the synthesizer, the parser, and the store, and it never
// exposes raw model output.
type QuizService struct {
	store  Store
	synth  Synthesizer
	logDir string
}

// NewQuizService creates a quiz service over the given store and
// synthesizer.
func NewQuizService(store Store, synth Synthesizer) *QuizService {
	return &QuizService{
		store: store,
		synth: synth,
	}
}

// SetLogDir enables per-generation LLM transcript files under dir.
func (s *QuizService) SetLogDir(dir string) {
	s.logDir = dir
}

// CreateTopic persists a new topic for a user. No synthesis happens at
// creation time.
func (s *QuizService) CreateTopic(ctx context.Context, name, materials, userID string) (*Topic, error) {
	topic := &Topic{
		ID:        uuid.NewString(),
		Name:      name,
		Materials: materials,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateTopic(ctx, topic); err != nil {
		return nil, err
	}
	return topic, nil
}

// GetUserTopics lists the topics owned by a user.
func (s *QuizService) GetUserTopics(ctx context.Context, userID string) ([]TopicSummary, error) {
	return s.store.GetUserTopics(ctx, userID)
}

// GetTopic returns a topic with its session summaries.
func (s *QuizService) GetTopic(ctx context.Context, topicID string) (*TopicWithSessions, error) {
	return s.store.GetTopic(ctx, topicID)
}

// CreateQuizSession synthesizes a fresh quiz for a topic and persists
// it as a new in-progress session. Correct answers and explanations are
// withheld from the response until review.
func (s *QuizService) CreateQuizSession(ctx context.Context, topicID string) (*CreatedSession, error) {
	topic, err := s.store.GetTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}

	req := GenerationRequest{
		Context: &TopicContext{
			Name:      topic.Name,
			Materials: topic.Materials,
		},
	}
	return s.generateSession(ctx, topicID, req)
}

// GetQuizSession returns an in-progress session for taking the quiz.
// Completed sessions are rejected; reviewing them is a separate
// operation.
func (s *QuizService) GetQuizSession(ctx context.Context, sessionID string) (*SessionView, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Completed {
		return nil, ErrSessionCompleted
	}

	view := &SessionView{
		SessionID: session.ID,
		TopicID:   session.TopicID,
		Completed: session.Completed,
		Questions: withheldQuestions(session.Questions),
	}
	return view, nil
}

// SaveProgress updates userAnswer for the targeted questions without
// completing the session. Repeated calls with the same answers leave
// the same stored state.
func (s *QuizService) SaveProgress(ctx context.Context, sessionID string, answers []Answer) error {
	return s.store.SaveAnswers(ctx, sessionID, answers)
}

// SubmitAnswers grades the supplied answers, computes the score, and
// completes the session. Unanswered questions keep a nil isCorrect and
// count as incorrect in the score.
func (s *QuizService) SubmitAnswers(ctx context.Context, sessionID string, answers []Answer) (*QuizSession, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Completed {
		return nil, ErrSessionCompleted
	}

	byID := make(map[string]*QuizQuestion, len(session.Questions))
	for i := range session.Questions {
		byID[session.Questions[i].ID] = &session.Questions[i]
	}

	graded := make([]GradedAnswer, 0, len(answers))
	score := 0
	for _, answer := range answers {
		question, ok := byID[answer.QuestionID]
		if !ok || answer.UserAnswer == nil {
			continue
		}
		isCorrect := *answer.UserAnswer == question.CorrectAnswer
		if isCorrect {
			score++
		}
		graded = append(graded, GradedAnswer{
			QuestionID: answer.QuestionID,
			UserAnswer: *answer.UserAnswer,
			IsCorrect:  isCorrect,
		})
	}

	if err := s.store.CompleteSession(ctx, sessionID, graded, score); err != nil {
		return nil, err
	}

	return s.store.GetSession(ctx, sessionID)
}

// ReviewSession returns the fully-revealed questions of a completed
// session. In-progress sessions cannot be reviewed.
func (s *QuizService) ReviewSession(ctx context.Context, sessionID string) (*SessionReview, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Completed {
		return nil, ErrSessionNotCompleted
	}

	review := &SessionReview{
		SessionID: session.ID,
		TopicID:   session.TopicID,
		Score:     session.Score,
		Questions: make([]ReviewQuestion, 0, len(session.Questions)),
	}
	for _, q := range session.Questions {
		review.Questions = append(review.Questions, ReviewQuestion{
			QuestionText:  q.QuestionText,
			Options:       q.Options,
			UserAnswer:    q.UserAnswer,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
			IsCorrect:     q.IsCorrect,
		})
	}
	return review, nil
}

// RegenerateSession creates a brand-new session on the same topic,
// synthesized from the previous session's incorrectly answered
// questions. The previous session is left untouched.
func (s *QuizService) RegenerateSession(ctx context.Context, sessionID string) (*CreatedSession, error) {
	previous, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var remediation []IncorrectQuestion
	for _, q := range previous.Questions {
		if q.IsCorrect != nil && !*q.IsCorrect {
			remediation = append(remediation, IncorrectQuestion{
				Question:      q.QuestionText,
				Options:       q.Options,
				CorrectAnswer: q.CorrectAnswer,
				Explanation:   q.Explanation,
			})
		}
	}
	if len(remediation) == 0 {
		return nil, ErrNoIncorrectAnswers
	}

	req := GenerationRequest{Remediation: remediation}
	return s.generateSession(ctx, previous.TopicID, req)
}

// generateSession runs synthesize -> validate -> persist for both
// creation and regeneration. Nothing is written to the store until the
// full validated question set is in hand. The transcript logger rides
// on the request so concurrent generations never share one.
func (s *QuizService) generateSession(ctx context.Context, topicID string, req GenerationRequest) (*CreatedSession, error) {
	sessionID := uuid.NewString()

	var logger *LLMLogger
	if s.logDir != "" {
		var err error
		logger, err = NewLLMLogger(s.logDir, sessionID, req)
		if err != nil {
			log.Printf("Failed to create LLM logger for session %s: %v", sessionID, err)
		} else {
			defer logger.Close()
		}
	}
	req.Logger = logger

	raw, err := s.synth.Synthesize(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("synthesis failed: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		if logger != nil {
			logger.LogOutcome(0, ErrGenerationFailed)
		}
		return nil, ErrGenerationFailed
	}

	cleaned, err := ParseQuestions(raw)
	if err == nil {
		err = CheckRemediationRepeats(cleaned, req.Remediation)
	}
	if err == nil && len(cleaned) != questionsPerSession {
		err = &MalformedOutputError{Reason: fmt.Sprintf("expected %d questions, got %d", questionsPerSession, len(cleaned))}
	}
	if logger != nil {
		logger.LogOutcome(len(cleaned), err)
	}
	if err != nil {
		return nil, err
	}

	session := &QuizSession{
		ID:        sessionID,
		TopicID:   topicID,
		CreatedAt: time.Now().UTC(),
		Questions: make([]QuizQuestion, 0, len(cleaned)),
	}
	for _, q := range cleaned {
		session.Questions = append(session.Questions, QuizQuestion{
			ID:            uuid.NewString(),
			SessionID:     sessionID,
			QuestionText:  q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		})
	}

	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	VerboseLog("Created session %s with %d questions for topic %s", sessionID, len(session.Questions), topicID)

	return &CreatedSession{
		SessionID: sessionID,
		Count:     len(session.Questions),
		Questions: withheldQuestions(session.Questions),
	}, nil
}

// withheldQuestions maps stored questions to the taking-a-quiz view:
// no correct answer, no explanation.
func withheldQuestions(questions []QuizQuestion) []SessionQuestionView {
	views := make([]SessionQuestionView, 0, len(questions))
	for _, q := range questions {
		views = append(views, SessionQuestionView{
			QuestionID:   q.ID,
			QuestionText: q.QuestionText,
			Options:      q.Options,
			UserAnswer:   q.UserAnswer,
		})
	}
	return views
}
