package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m-mizutani/trek/pkg/adapter"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *credentialsRequest) validate() error {
	if r.Email == "" || r.Password == "" {
		return errors.New("email and password are required")
	}
	return nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(ctx, w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	result, err := s.identity.SignIn(ctx, req.Email, req.Password)
	switch {
	case err == nil:
		writeJSON(ctx, w, http.StatusOK, result)
	case errors.Is(err, adapter.ErrEmailNotFound):
		writeError(ctx, w, http.StatusUnauthorized, "email not registered, sign up first", err)
	case errors.Is(err, adapter.ErrWrongPassword):
		writeError(ctx, w, http.StatusUnauthorized, "wrong password, try again", err)
	default:
		writeError(ctx, w, http.StatusUnauthorized, err.Error(), err)
	}
}

type registerResponse struct {
	UID string `json:"uid"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(ctx, w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	uid, err := s.identity.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		// No structured taxonomy for registration failures
		writeError(ctx, w, http.StatusBadRequest, "registration failed", err)
		return
	}

	writeJSON(ctx, w, http.StatusCreated, registerResponse{UID: uid})
}
