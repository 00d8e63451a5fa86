package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"studyquiz"
)

type apiResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type createTopicBody struct {
	Name      string `json:"name"`
	Materials string `json:"materials"`
}

type answersBody struct {
	Answers []studyquiz.Answer `json:"answers"`
}

// handleTopics serves GET /topics.
func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	topics, err := s.service.GetUserTopics(r.Context(), userID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Message: "User topics retrieved", Data: topics})
}

// handleTopic dispatches /topic/create, /topic/{topicId}, and
// /topic/{topicId}/create-quiz-session.
func (s *Server) handleTopic(w http.ResponseWriter, r *http.Request, userID string) {
	path := strings.TrimPrefix(r.URL.Path, "/topic/")
	parts := strings.Split(path, "/")

	if len(parts) == 1 && parts[0] == "create" {
		s.handleCreateTopic(w, r, userID)
		return
	}

	if len(parts) == 1 && parts[0] != "" {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		s.handleGetTopic(w, r, parts[0])
		return
	}

	if len(parts) == 2 && parts[1] == "create-quiz-session" {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		s.handleCreateQuizSession(w, r, parts[0])
		return
	}

	http.NotFound(w, r)
}

func (s *Server) handleCreateTopic(w http.ResponseWriter, r *http.Request, userID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var body createTopicBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(body.Name) < 3 || len(body.Name) > 100 {
		writeError(w, http.StatusBadRequest, "name must be between 3 and 100 characters")
		return
	}
	if len(body.Materials) < 10 {
		writeError(w, http.StatusBadRequest, "materials must be at least 10 characters")
		return
	}

	topic, err := s.service.CreateTopic(r.Context(), body.Name, body.Materials, userID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, apiResponse{Message: "Topic created successfully", Data: topic})
}

func (s *Server) handleGetTopic(w http.ResponseWriter, r *http.Request, topicID string) {
	topic, err := s.service.GetTopic(r.Context(), topicID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{Message: "Topic retrieved", Data: topic})
}

func (s *Server) handleCreateQuizSession(w http.ResponseWriter, r *http.Request, topicID string) {
	created, err := s.service.CreateQuizSession(r.Context(), topicID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, apiResponse{Message: "Quiz session created successfully", Data: created})
}

// handleQuizSession dispatches /quiz-session/{sessionId} and its
// save/submit/review/regenerate subroutes.
func (s *Server) handleQuizSession(w http.ResponseWriter, r *http.Request, userID string) {
	path := strings.TrimPrefix(r.URL.Path, "/quiz-session/")
	parts := strings.Split(path, "/")

	if len(parts) == 0 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	sessionID := parts[0]

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		session, err := s.service.GetQuizSession(r.Context(), sessionID)
		if err != nil {
			s.respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, apiResponse{Message: "Quiz session retrieved", Data: session})
		return
	}

	if len(parts) != 2 {
		http.NotFound(w, r)
		return
	}

	switch parts[1] {
	case "save":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		body, ok := decodeAnswers(w, r)
		if !ok {
			return
		}
		if err := s.service.SaveProgress(r.Context(), sessionID, body.Answers); err != nil {
			s.respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, apiResponse{Message: "Progress saved successfully"})

	case "submit":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		body, ok := decodeAnswers(w, r)
		if !ok {
			return
		}
		session, err := s.service.SubmitAnswers(r.Context(), sessionID, body.Answers)
		if err != nil {
			s.respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, apiResponse{Message: "Quiz submitted successfully", Data: session})

	case "review":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		review, err := s.service.ReviewSession(r.Context(), sessionID)
		if err != nil {
			s.respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, apiResponse{Message: "Quiz review retrieved", Data: review})

	case "regenerate":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		created, err := s.service.RegenerateSession(r.Context(), sessionID)
		if err != nil {
			s.respondError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, apiResponse{Message: "Quiz regenerated successfully", Data: created})

	default:
		http.NotFound(w, r)
	}
}

func decodeAnswers(w http.ResponseWriter, r *http.Request) (answersBody, bool) {
	var body answersBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return body, false
	}
	if len(body.Answers) == 0 {
		writeError(w, http.StatusBadRequest, "answers must not be empty")
		return body, false
	}
	for _, answer := range body.Answers {
		if answer.QuestionID == "" {
			writeError(w, http.StatusBadRequest, "every answer needs a questionId")
			return body, false
		}
	}
	return body, true
}

// respondError classifies service errors into the HTTP taxonomy. No
// internal details reach the client.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, studyquiz.ErrTopicNotFound):
		writeError(w, http.StatusNotFound, "Topic not found")
	case errors.Is(err, studyquiz.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "Quiz session not found")
	case errors.Is(err, studyquiz.ErrSessionCompleted):
		writeError(w, http.StatusBadRequest, "Quiz session already completed")
	case errors.Is(err, studyquiz.ErrSessionNotCompleted):
		writeError(w, http.StatusBadRequest, "Quiz session not completed")
	case errors.Is(err, studyquiz.ErrNoIncorrectAnswers):
		writeError(w, http.StatusBadRequest, "No incorrect answers to generate a new quiz")
	case errors.Is(err, studyquiz.ErrGenerationFailed):
		writeError(w, http.StatusInternalServerError, "No questions generated")
	case studyquiz.IsMalformedOutput(err):
		log.Printf("Malformed generation output: %v", err)
		writeError(w, http.StatusInternalServerError, "Generated questions failed validation")
	default:
		log.Printf("Internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apiResponse{Message: message})
}
