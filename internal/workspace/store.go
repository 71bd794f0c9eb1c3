// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package workspace is the named workspace store: algorithms read their
// inputs from it by name and publish their outputs into it. Two backends
// are provided, an in-process map and a SQLite database that survives
// between CLI invocations.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pdiddy/peaks-engine/internal/peaks"
	"github.com/pdiddy/peaks-engine/pkg/types"
)

var (
	// ErrNotFound is returned when no workspace has the requested name.
	ErrNotFound = errors.New("workspace not found")

	// ErrInvalidName is returned for an empty workspace name or one that
	// cannot be used as a file name (path separators, "." or "..").
	ErrInvalidName = errors.New("invalid workspace name")
)

var validate = validator.New()

// Store holds peaks workspaces by name. Put replaces any workspace already
// stored under the name. Callers that share a Store must not mutate a
// workspace obtained from Get while another goroutine reads it.
type Store interface {
	Put(ctx context.Context, name string, ws *peaks.Workspace) error
	Get(ctx context.Context, name string) (*peaks.Workspace, error)
	Remove(ctx context.Context, name string) error
	Names(ctx context.Context) ([]string, error)

	// Subscribe registers h for events of the given kind.
	Subscribe(kind EventKind, h Handler)

	Close() error
}

// Open returns the store selected by cfg.
func Open(cfg types.StoreConfig) (Store, error) {
	if cfg.Backend == "" {
		cfg.Backend = types.StoreSQLite
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid store config: %w", err)
	}

	switch cfg.Backend {
	case types.StoreMemory:
		return NewMemoryStore(), nil
	default:
		return NewSQLStore(cfg.DataDir)
	}
}

func checkName(name string) error {
	if strings.TrimSpace(name) == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`+"\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func checkPut(name string, ws *peaks.Workspace) error {
	if err := checkName(name); err != nil {
		return err
	}
	if ws == nil {
		return fmt.Errorf("workspace %s is nil", name)
	}
	return nil
}
