package http

import (
	"errors"
	"net/http"

	"budgeting/internal/core"
	applog "budgeting/internal/log"
)

type credentialForm struct {
	Error    string
	Username string
}

func (s *Server) handleSignupForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "signup.html", credentialForm{})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.logger.ErrorContext(r.Context(), "Parse form error", applog.FieldError, err, applog.FieldPath, r.URL.Path)
		s.render(w, r, "signup.html", credentialForm{Error: "Invalid request."})
		return
	}

	username := sanitizeInput(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")

	_, err := s.creds.CreateUser(r.Context(), username, password)
	switch {
	case err == nil:
		s.logger.InfoContext(r.Context(), "Signup succeeded",
			applog.FieldUsername, username, applog.FieldOperation, applog.OpSignup)
		http.Redirect(w, r, "/login", http.StatusFound)
	case errors.Is(err, core.ErrDuplicateUsername):
		s.render(w, r, "signup.html", credentialForm{
			Error:    "Username already exists.",
			Username: username,
		})
	case errors.Is(err, core.ErrEmptyUsername), errors.Is(err, core.ErrEmptyPassword):
		s.render(w, r, "signup.html", credentialForm{
			Error:    "Username and password are required.",
			Username: username,
		})
	default:
		s.logger.ErrorContext(r.Context(), "Signup failed",
			applog.FieldError, err, applog.FieldUsername, username, applog.FieldOperation, applog.OpSignup)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "login.html", credentialForm{})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.logger.ErrorContext(r.Context(), "Parse form error", applog.FieldError, err, applog.FieldPath, r.URL.Path)
		s.render(w, r, "login.html", credentialForm{Error: "Invalid request."})
		return
	}

	username := sanitizeInput(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")

	userID, err := s.creds.Verify(r.Context(), username, password)
	if errors.Is(err, core.ErrInvalidCredentials) {
		s.render(w, r, "login.html", credentialForm{
			Error:    "Invalid username or password.",
			Username: username,
		})
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Login failed",
			applog.FieldError, err, applog.FieldUsername, username, applog.FieldOperation, applog.OpLogin)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if err := s.sessions.Issue(r.Context(), w, userID); err != nil {
		s.logger.ErrorContext(r.Context(), "Session issue failed",
			applog.FieldError, err, applog.FieldUserID, userID, applog.FieldOperation, applog.OpLogin)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.logger.InfoContext(r.Context(), "Login succeeded",
		applog.FieldUserID, userID, applog.FieldOperation, applog.OpLogin)
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Revoke(r.Context(), w, r); err != nil {
		s.logger.ErrorContext(r.Context(), "Logout failed",
			applog.FieldError, err, applog.FieldOperation, applog.OpLogout)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}
