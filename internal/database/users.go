// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/quill/internal/models"
)

const userColumns = `id, name, email, password_hash, role, created_at`

// CreateUser inserts a user. Emails are compared case-insensitively and
// stored lower-cased. A duplicate email returns ErrEmailTaken.
func (db *DB) CreateUser(ctx context.Context, user *models.User) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("INSERT", "users", start, err) }(time.Now())

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.Email = normalizeEmail(user.Email)

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.CreatedAt.UTC())
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByEmail returns the user with the given email, or ErrNotFound.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return db.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, normalizeEmail(email))
}

// GetUserByID returns the user with the given ID, or ErrNotFound.
func (db *DB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return db.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (db *DB) getUser(ctx context.Context, query string, arg string) (user *models.User, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer func(start time.Time) { observe("SELECT", "users", start, err) }(time.Now())

	var u models.User
	err = db.conn.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
