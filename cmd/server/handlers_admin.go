package main

import (
	"net/http"
	"strings"

	"github.com/Simplici0/importhub/internal/store"
	"github.com/Simplici0/importhub/internal/validate"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string     `json:"token"`
	User  store.User `json:"user"`
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.writeError(w, r, err)
		return
	}

	token, user, err := s.auth.login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, loginResponse{Token: token, User: user})
}

func (s *server) handleMe(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r.Context())
	if !ok {
		s.writeError(w, r, errUnauthenticated)
		return
	}
	s.writeJSON(w, r, http.StatusOK, map[string]string{"email": p.Email, "role": p.Role})
}

type userRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=admin user"`
}

func (s *server) handleUsersList(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, users)
}

func (s *server) handleUsersCreate(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		s.writeError(w, r, err)
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	user, err := s.store.CreateUser(r.Context(), store.User{Email: req.Email, PasswordHash: hash, Role: req.Role})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, user)
}

func (s *server) handleCostSettingsGet(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.store.GetCostSettings(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, validate.FromConfig(cfg))
}

func (s *server) handleCostSettingsPut(w http.ResponseWriter, r *http.Request) {
	var req validate.CostConfigRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.writeError(w, r, err)
		return
	}

	cfg := req.Config()
	cfg.ContainerQtyOverride = nil
	if err := s.store.PutCostSettings(r.Context(), cfg); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, validate.FromConfig(cfg))
}
