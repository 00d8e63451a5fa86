package studyquiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB is the sqlite-backed Store implementation.
type DB struct {
	db *sql.DB
}

var _ Store = (*DB)(nil)

// OpenDB opens a new database connection
func OpenDB(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db: db}, nil
}

// CloseDB closes the database connection
func (db *DB) CloseDB() error {
	return db.db.Close()
}

// CreateTables creates the necessary tables if they don't exist
func (db *DB) CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS topics (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			materials TEXT NOT NULL,
			user_id TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS quiz_sessions (
			id TEXT PRIMARY KEY,
			topic_id TEXT NOT NULL,
			completed INTEGER NOT NULL DEFAULT 0,
			score INTEGER,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (topic_id) REFERENCES topics(id)
		)`,
		`CREATE TABLE IF NOT EXISTS quiz_questions (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			question_num INTEGER NOT NULL,
			question_text TEXT NOT NULL,
			options TEXT NOT NULL,
			correct_answer TEXT NOT NULL,
			explanation TEXT,
			user_answer TEXT,
			is_correct INTEGER,
			FOREIGN KEY (session_id) REFERENCES quiz_sessions(id)
		)`,
	}

	for _, query := range queries {
		if _, err := db.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute %s: %w", query, err)
		}
	}
	return nil
}

// CreateTopic persists a new topic.
func (db *DB) CreateTopic(ctx context.Context, topic *Topic) error {
	_, err := db.db.ExecContext(ctx,
		"INSERT INTO topics (id, name, materials, user_id, created_at) VALUES (?, ?, ?, ?, ?)",
		topic.ID, topic.Name, topic.Materials, topic.UserID, topic.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create topic: %w", err)
	}
	return nil
}

// GetTopic retrieves a topic by ID together with its session summaries.
func (db *DB) GetTopic(ctx context.Context, topicID string) (*TopicWithSessions, error) {
	var topic Topic
	err := db.db.QueryRowContext(ctx,
		"SELECT id, name, materials, user_id, created_at FROM topics WHERE id = ?",
		topicID,
	).Scan(&topic.ID, &topic.Name, &topic.Materials, &topic.UserID, &topic.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTopicNotFound
		}
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}

	rows, err := db.db.QueryContext(ctx,
		"SELECT id, completed, score FROM quiz_sessions WHERE topic_id = ? ORDER BY created_at",
		topicID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get topic sessions: %w", err)
	}
	defer rows.Close()

	sessions := []SessionSummary{}
	for rows.Next() {
		var summary SessionSummary
		var score sql.NullInt64
		if err := rows.Scan(&summary.ID, &summary.Completed, &score); err != nil {
			return nil, fmt.Errorf("failed to scan session summary: %w", err)
		}
		if score.Valid {
			value := int(score.Int64)
			summary.Score = &value
		}
		sessions = append(sessions, summary)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session summaries: %w", err)
	}

	return &TopicWithSessions{Topic: topic, Sessions: sessions}, nil
}

// GetUserTopics retrieves the topics owned by a user.
func (db *DB) GetUserTopics(ctx context.Context, userID string) ([]TopicSummary, error) {
	rows, err := db.db.QueryContext(ctx,
		"SELECT id, name FROM topics WHERE user_id = ? ORDER BY created_at DESC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get topics: %w", err)
	}
	defer rows.Close()

	topics := []TopicSummary{}
	for rows.Next() {
		var topic TopicSummary
		if err := rows.Scan(&topic.ID, &topic.Name); err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		topics = append(topics, topic)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating topics: %w", err)
	}

	return topics, nil
}

// CreateSession persists a session and its questions in one transaction.
func (db *DB) CreateSession(ctx context.Context, session *QuizSession) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO quiz_sessions (id, topic_id, completed, score, created_at) VALUES (?, ?, 0, NULL, ?)",
		session.ID, session.TopicID, session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	for i, question := range session.Questions {
		optionsJSON, err := OptionsToJSON(question.Options)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO quiz_questions (id, session_id, question_num, question_text, options, correct_answer, explanation) VALUES (?, ?, ?, ?, ?, ?, ?)",
			question.ID, session.ID, i+1, question.QuestionText, optionsJSON, question.CorrectAnswer, question.Explanation,
		)
		if err != nil {
			return fmt.Errorf("failed to create question: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID with its questions in order.
func (db *DB) GetSession(ctx context.Context, sessionID string) (*QuizSession, error) {
	var session QuizSession
	var score sql.NullInt64
	err := db.db.QueryRowContext(ctx,
		"SELECT id, topic_id, completed, score, created_at FROM quiz_sessions WHERE id = ?",
		sessionID,
	).Scan(&session.ID, &session.TopicID, &session.Completed, &score, &session.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if score.Valid {
		value := int(score.Int64)
		session.Score = &value
	}

	rows, err := db.db.QueryContext(ctx,
		"SELECT id, session_id, question_text, options, correct_answer, explanation, user_answer, is_correct FROM quiz_questions WHERE session_id = ? ORDER BY question_num",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var question QuizQuestion
		var optionsJSON string
		var explanation, userAnswer sql.NullString
		var isCorrect sql.NullBool
		err := rows.Scan(&question.ID, &question.SessionID, &question.QuestionText, &optionsJSON,
			&question.CorrectAnswer, &explanation, &userAnswer, &isCorrect)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}

		question.Options, err = JSONToOptions(optionsJSON)
		if err != nil {
			return nil, err
		}
		question.Explanation = explanation.String
		if userAnswer.Valid {
			value := userAnswer.String
			question.UserAnswer = &value
		}
		if isCorrect.Valid {
			value := isCorrect.Bool
			question.IsCorrect = &value
		}
		session.Questions = append(session.Questions, question)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating questions: %w", err)
	}

	return &session, nil
}

// SaveAnswers applies a batch of userAnswer updates in one transaction.
// Only in-progress sessions accept updates.
func (db *DB) SaveAnswers(ctx context.Context, sessionID string, answers []Answer) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := checkInProgress(ctx, tx, sessionID); err != nil {
		return err
	}

	for _, answer := range answers {
		_, err = tx.ExecContext(ctx,
			"UPDATE quiz_questions SET user_answer = ? WHERE id = ? AND session_id = ?",
			answer.UserAnswer, answer.QuestionID, sessionID,
		)
		if err != nil {
			return fmt.Errorf("failed to save answer: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit answers: %w", err)
	}
	return nil
}

// CompleteSession grades the supplied answers and marks the session
// completed in one transaction. The completion update is conditional on
// completed = 0 so a concurrent submission cannot re-score the session.
func (db *DB) CompleteSession(ctx context.Context, sessionID string, graded []GradedAnswer, score int) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := checkInProgress(ctx, tx, sessionID); err != nil {
		return err
	}

	for _, answer := range graded {
		_, err = tx.ExecContext(ctx,
			"UPDATE quiz_questions SET user_answer = ?, is_correct = ? WHERE id = ? AND session_id = ?",
			answer.UserAnswer, answer.IsCorrect, answer.QuestionID, sessionID,
		)
		if err != nil {
			return fmt.Errorf("failed to grade answer: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx,
		"UPDATE quiz_sessions SET completed = 1, score = ? WHERE id = ? AND completed = 0",
		score, sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check completion update: %w", err)
	}
	if affected == 0 {
		return ErrSessionCompleted
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit completion: %w", err)
	}
	return nil
}

// checkInProgress verifies inside tx that the session exists and has
// not been completed.
func checkInProgress(ctx context.Context, tx *sql.Tx, sessionID string) error {
	var completed bool
	err := tx.QueryRowContext(ctx,
		"SELECT completed FROM quiz_sessions WHERE id = ?",
		sessionID,
	).Scan(&completed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to check session state: %w", err)
	}
	if completed {
		return ErrSessionCompleted
	}
	return nil
}

// Helper function to convert options slice to JSON string
func OptionsToJSON(options []string) (string, error) {
	data, err := json.Marshal(options)
	if err != nil {
		return "", fmt.Errorf("failed to marshal options: %w", err)
	}
	return string(data), nil
}

// Helper function to convert JSON string to options slice
func JSONToOptions(optionsJSON string) ([]string, error) {
	var options []string
	err := json.Unmarshal([]byte(optionsJSON), &options)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal options: %w", err)
	}
	return options, nil
}
