package http

import (
	"net/http"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.sess.Register(r.Context(), req.Username, req.Email, req.Password); err != nil {
		writeError(w, r, err)
		return
	}

	s.logger.InfoContext(r.Context(), "User registered", "username", req.Username)
	writeJSON(w, http.StatusCreated, map[string]string{"status": "registered"})
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := s.sess.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Post-login reconciliation: pull the user's mirrored expenses into
	// the local ledger before anything renders.
	if err := s.expenses.SyncDown(r.Context(), user); err != nil {
		writeError(w, r, err)
		return
	}

	s.logger.InfoContext(r.Context(), "User logged in", "username", user.Username)
	writeJSON(w, http.StatusOK, map[string]string{
		"username": user.Username,
		"greeting": "Hola, " + user.Username,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := s.sess.Logout(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	users, err := s.sess.Users(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	type userView struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		UID      string `json:"uid,omitempty"`
	}
	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, userView{Username: u.Username, Email: u.Email, UID: u.RemoteID})
	}
	writeJSON(w, http.StatusOK, views)
}

type deleteUserRequest struct {
	Target  string `json:"target"`
	Confirm bool   `json:"confirm"`
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if _, ok := s.currentUser(w); !ok {
		return
	}
	var req deleteUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if !req.Confirm {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "deletion requires confirm=true"})
		return
	}

	if err := s.sess.DeleteAccount(r.Context(), req.Target); err != nil {
		writeError(w, r, err)
		return
	}

	s.logger.InfoContext(r.Context(), "User deleted", "target", req.Target)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
