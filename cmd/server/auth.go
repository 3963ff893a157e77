package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const sessionCookieName = "shopcalc_session"

type authService struct {
	db            *sql.DB
	sessionSecret []byte
}

func newAuthService(db *sql.DB, sessionSecret string) *authService {
	return &authService{db: db, sessionSecret: []byte(sessionSecret)}
}

func (a *authService) validateCredentials(email, password string) (bool, error) {
	var passwordHash string
	err := a.db.QueryRow(`SELECT password_hash FROM users WHERE email = ?`, email).Scan(&passwordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query user credentials: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("compare password hash: %w", err)
	}
	return true, nil
}

// createSessionValue signs the email as base64(email) + "." + hex(hmac).
func (a *authService) createSessionValue(email string) string {
	payload := base64.RawURLEncoding.EncodeToString([]byte(email))
	return payload + "." + hex.EncodeToString(a.sign(payload))
}

func (a *authService) verifySessionValue(value string) (string, bool) {
	payload, signature, found := strings.Cut(value, ".")
	if !found {
		return "", false
	}

	provided, err := hex.DecodeString(signature)
	if err != nil || !hmac.Equal(provided, a.sign(payload)) {
		return "", false
	}

	decoded, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil || len(decoded) == 0 {
		return "", false
	}
	return string(decoded), true
}

func (a *authService) sign(payload string) []byte {
	mac := hmac.New(sha256.New, a.sessionSecret)
	_, _ = mac.Write([]byte(payload))
	return mac.Sum(nil)
}

func (a *authService) setSessionCookie(w http.ResponseWriter, email string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    a.createSessionValue(email),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *authService) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *authService) isAuthenticated(r *http.Request) bool {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return false
	}
	_, ok := a.verifySessionValue(cookie.Value)
	return ok
}

func (s *server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.auth.isAuthenticated(r) {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	valid, err := s.auth.validateCredentials(email, r.FormValue("password"))
	if err != nil {
		log.Printf("login: %v", err)
		writeError(w, http.StatusInternalServerError, "authentication error")
		return
	}
	if !valid {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	s.auth.setSessionCookie(w, email)
	writeJSON(w, http.StatusOK, map[string]string{"email": email})
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
