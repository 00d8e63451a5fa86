package main

import (
	"log"
	"net/http"
	"os"

	"studyquiz"

	"github.com/gorilla/sessions"
)

// Server holds the wiring for the JSON API: the quiz service, the
// cookie store for the authenticated principal, and the bearer-token
// secret.
type Server struct {
	service    *studyquiz.QuizService
	store      *sessions.CookieStore
	authSecret []byte
}

// routes mounts every quiz route behind the auth guard.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/topics", s.requireUser(s.handleTopics))
	mux.HandleFunc("/topic/", s.requireUser(s.handleTopic))
	mux.HandleFunc("/quiz-session/", s.requireUser(s.handleQuizSession))
	return mux
}

func main() {
	studyquiz.SetVerbose(os.Getenv("VERBOSE") != "")

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY environment variable is required")
	}

	authSecret := os.Getenv("AUTH_SECRET")
	if authSecret == "" {
		log.Fatal("AUTH_SECRET environment variable is required")
	}

	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		sessionSecret = authSecret
	}

	dbPath := os.Getenv("QUIZ_DB")
	if dbPath == "" {
		dbPath = "./quiz.db"
	}

	db, err := studyquiz.OpenDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.CloseDB()

	if err := db.CreateTables(); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	maker := studyquiz.NewQuestionMaker(apiKey)
	service := studyquiz.NewQuizService(db, maker)

	logDir := os.Getenv("LLM_LOG_DIR")
	if logDir == "" {
		logDir = "log"
	}
	service.SetLogDir(logDir)

	server := &Server{
		service:    service,
		store:      sessions.NewCookieStore([]byte(sessionSecret)),
		authSecret: []byte(authSecret),
	}

	mux := server.routes()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8180"
	}

	log.Printf("Starting server on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, mux))
}
