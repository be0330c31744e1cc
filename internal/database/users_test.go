// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

package database

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/quill/internal/models"
)

func TestCreateUser(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	u := insertTestUser(t, db, "Ada Lovelace", " Ada@Example.com ", models.RoleAuthor)
	if u.ID == "" {
		t.Fatal("CreateUser should assign an ID")
	}
	if u.Email != "ada@example.com" {
		t.Errorf("Email = %q, want normalized ada@example.com", u.Email)
	}

	got, err := db.GetUserByEmail(ctx, "ADA@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if got.ID != u.ID || got.Name != "Ada Lovelace" || got.Role != models.RoleAuthor {
		t.Errorf("GetUserByEmail() = %+v", got)
	}
	if got.PasswordHash != "$2a$10$hash" {
		t.Errorf("PasswordHash = %q", got.PasswordHash)
	}

	byID, err := db.GetUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if byID.Email != u.Email {
		t.Errorf("GetUserByID() email = %q", byID.Email)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db := setupTestDB(t)

	insertTestUser(t, db, "Ada", "ada@example.com", models.RoleAuthor)

	dup := &models.User{Name: "Other", Email: "ADA@example.com", PasswordHash: "h", Role: models.RoleReader}
	err := db.CreateUser(context.Background(), dup)
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("CreateUser() duplicate error = %v, want ErrEmailTaken", err)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUserByEmail() error = %v, want ErrNotFound", err)
	}
	if _, err := db.GetUserByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUserByID() error = %v, want ErrNotFound", err)
	}
}

func TestCreateUser_RejectsUnknownRole(t *testing.T) {
	db := setupTestDB(t)

	u := &models.User{Name: "Eve", Email: "eve@example.com", PasswordHash: "h", Role: "admin"}
	if err := db.CreateUser(context.Background(), u); err == nil {
		t.Error("CreateUser() with unknown role should fail the CHECK constraint")
	}
}
