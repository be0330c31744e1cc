// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

// Package authz provides role-based authorization using Casbin.
//
// Subjects are the role claim of the authenticated user ("author" or
// "reader"). Objects name a resource (articles, dashboard) and actions name
// what is done to it. The model and default policy are embedded; both can be
// replaced by files for deployments that need different rules.
package authz

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Protected objects.
const (
	ObjectArticles  = "articles"
	ObjectDashboard = "dashboard"
)

// Actions on protected objects.
const (
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionListOwn = "list_own"
	ActionRead    = "read"
)

// EnforcerConfig holds configuration for the Casbin enforcer.
type EnforcerConfig struct {
	// ModelPath is the path to the Casbin model file.
	// If empty, uses embedded model.
	ModelPath string

	// PolicyPath is the path to the Casbin policy file.
	// If empty, uses embedded policy.
	PolicyPath string
}

// Enforcer wraps the Casbin enforcer.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer creates a new authorization enforcer. A nil config uses the
// embedded model and policy.
func NewEnforcer(config *EnforcerConfig) (*Enforcer, error) {
	if config == nil {
		config = &EnforcerConfig{}
	}

	var m model.Model
	var err error

	if config.ModelPath != "" && fileExists(config.ModelPath) {
		m, err = model.NewModelFromFile(config.ModelPath)
	} else {
		m, err = model.NewModelFromString(embeddedModel)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	var enforcer *casbin.SyncedEnforcer
	if config.PolicyPath != "" && fileExists(config.PolicyPath) {
		enforcer, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(config.PolicyPath))
	} else {
		enforcer, err = casbin.NewSyncedEnforcer(m)
		if err == nil {
			err = loadPolicy(enforcer, embeddedPolicy)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	return &Enforcer{enforcer: enforcer}, nil
}

// loadPolicy parses policy CSV lines ("p, sub, obj, act" and "g, user, role").
func loadPolicy(enforcer *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch parts[0] {
		case "p":
			if len(parts) != 4 {
				return fmt.Errorf("malformed policy line %q", line)
			}
			if _, err := enforcer.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
				return fmt.Errorf("failed to add policy %v: %w", parts[1:], err)
			}
		case "g":
			if len(parts) != 3 {
				return fmt.Errorf("malformed grouping line %q", line)
			}
			if _, err := enforcer.AddGroupingPolicy(parts[1], parts[2]); err != nil {
				return fmt.Errorf("failed to add grouping policy %v: %w", parts[1:], err)
			}
		default:
			return fmt.Errorf("unknown policy type %q", parts[0])
		}
	}
	return nil
}

// Enforce checks if role may perform action on object.
func (e *Enforcer) Enforce(role, object, action string) (bool, error) {
	allowed, err := e.enforcer.Enforce(role, object, action)
	if err != nil {
		return false, fmt.Errorf("enforcement failed: %w", err)
	}
	return allowed, nil
}

// Policies returns the loaded policy rules.
func (e *Enforcer) Policies() ([][]string, error) {
	return e.enforcer.GetPolicy()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
