// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tomtom215/quill/internal/auth"
	"github.com/tomtom215/quill/internal/database"
	"github.com/tomtom215/quill/internal/logging"
	"github.com/tomtom215/quill/internal/models"
	"github.com/tomtom215/quill/internal/validation"
)

const msgInvalidCredentials = "Invalid credentials"

// Signup registers a new author or reader.
//
// @Summary Register a user
// @Description Creates an account. Passwords are stored as bcrypt hashes.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body models.SignupRequest true "Signup request"
// @Success 201 {object} models.APIResponse{Object=models.PublicUser} "User registered successfully"
// @Failure 400 {object} models.APIResponse "Validation failed"
// @Failure 409 {object} models.APIResponse "Email already in use"
// @Router /api/auth/signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		respondError(w, r, validation.NewFieldError("password", "Password must be at most 72 bytes"))
		return
	}
	if err != nil {
		respondError(w, r, fmt.Errorf("hash password: %w", err))
		return
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
	}
	if err := h.users.CreateUser(r.Context(), user); err != nil {
		respondError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("user_id", user.ID).
		Str("role", user.Role).
		Msg("User registered")

	respondSuccess(w, http.StatusCreated, "User registered successfully", user.Public())
}

// Login verifies credentials and issues a JWT.
//
// @Summary Log in
// @Description Returns a bearer token carrying the user's ID and role.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body models.LoginRequest true "Login request"
// @Success 200 {object} models.APIResponse{Object=models.LoginResponse} "Login successful"
// @Failure 400 {object} models.APIResponse "Validation failed"
// @Failure 401 {object} models.APIResponse "Invalid credentials"
// @Failure 429 {object} models.APIResponse "Too many requests"
// @Router /api/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, r, newAPIError(http.StatusUnauthorized, msgInvalidCredentials))
		return
	}
	if err != nil {
		respondError(w, r, err)
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		logging.Ctx(r.Context()).Warn().Str("user_id", user.ID).Msg("Login failed: wrong password")
		respondError(w, r, newAPIError(http.StatusUnauthorized, msgInvalidCredentials))
		return
	}

	token, err := h.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		respondError(w, r, fmt.Errorf("generate token: %w", err))
		return
	}

	respondSuccess(w, http.StatusOK, "Login successful", models.LoginResponse{
		Token: token,
		User: models.LoginUser{
			ID:   user.ID,
			Name: user.Name,
			Role: user.Role,
		},
	})
}
