package main

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const sessionName = "studyquiz-session"

// requireUser resolves the authenticated principal and passes the user
// id to the handler. Token issuance lives elsewhere; this side only
// verifies. A bearer token wins; after a successful token check the
// user id is remembered in the cookie session so browser clients do
// not have to resend the token.
func (s *Server) requireUser(next func(w http.ResponseWriter, r *http.Request, userID string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token := bearerToken(r); token != "" {
			userID, err := s.verifyToken(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			session, _ := s.store.Get(r, sessionName)
			session.Values["userId"] = userID
			if err := session.Save(r, w); err != nil {
				log.Printf("Session save error: %v", err)
			}

			next(w, r, userID)
			return
		}

		session, _ := s.store.Get(r, sessionName)
		if userID, ok := session.Values["userId"].(string); ok && userID != "" {
			next(w, r, userID)
			return
		}

		writeError(w, http.StatusUnauthorized, "Token not provided")
	}
}

// verifyToken checks an HS256-signed token and extracts the subject.
func (s *Server) verifyToken(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.authSecret, nil
	})
	if err != nil {
		return "", err
	}

	subject, err := parsed.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return subject, nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
