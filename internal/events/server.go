// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

//go:build nats

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"
)

// EmbeddedServerConfig configures the embedded NATS server.
type EmbeddedServerConfig struct {
	Host string
	// Port -1 picks a random free port.
	Port     int
	StoreDir string

	JetStreamMaxMemory int64
	JetStreamMaxStore  int64
}

// EmbeddedServer is an in-process NATS JetStream server for single-instance
// deployments.
type EmbeddedServer struct {
	server    *server.Server
	clientURL string
}

// NewEmbeddedServer creates and starts an embedded NATS server. It returns
// an error if the server is not ready within 30 seconds.
func NewEmbeddedServer(cfg *EmbeddedServerConfig) (*EmbeddedServer, error) {
	opts := &server.Options{
		ServerName:         "quill-events",
		Host:               cfg.Host,
		Port:               cfg.Port,
		JetStream:          true,
		StoreDir:           cfg.StoreDir,
		JetStreamMaxMemory: cfg.JetStreamMaxMemory,
		JetStreamMaxStore:  cfg.JetStreamMaxStore,
		NoLog:              true,
		NoSigs:             true,
		MaxPayload:         1024 * 1024,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("create NATS server: %w", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(30 * time.Second) {
		ns.Shutdown()
		return nil, fmt.Errorf("NATS server not ready within timeout")
	}

	return &EmbeddedServer{
		server:    ns,
		clientURL: ns.ClientURL(),
	}, nil
}

// ClientURL returns the connection URL for clients.
func (s *EmbeddedServer) ClientURL() string {
	return s.clientURL
}

// Shutdown stops the server and waits for it to exit, or for ctx.
func (s *EmbeddedServer) Shutdown(ctx context.Context) error {
	s.server.Shutdown()

	done := make(chan struct{})
	go func() {
		s.server.WaitForShutdown()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning returns server health status.
func (s *EmbeddedServer) IsRunning() bool {
	return s.server.Running()
}

// JetStreamEnabled returns whether JetStream is enabled.
func (s *EmbeddedServer) JetStreamEnabled() bool {
	return s.server.JetStreamEnabled()
}
