package api

import (
	"net/http"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if !decodeBody(w, r, &c) {
		return
	}
	u, err := s.st.CreateUser(r.Context(), c.Email, c.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sess, err := s.st.CreateSession(r.Context(), u)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, sess)
}

// handleToken signs in with email and password (grant_type=password).
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if gt := r.URL.Query().Get("grant_type"); gt != "" && gt != "password" {
		writeError(w, http.StatusBadRequest, "unsupported grant_type: "+gt)
		return
	}
	var c credentials
	if !decodeBody(w, r, &c) {
		return
	}
	u, err := s.st.Authenticate(r.Context(), c.Email, c.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sess, err := s.st.CreateSession(r.Context(), u)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, sess)
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, userFrom(r.Context()))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.st.DeleteSession(r.Context(), bearerToken(r)); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
