// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package algorithm runs named, property-driven operations against a
// workspace store. An algorithm is created from a Registry, initialized,
// configured with SetProperty, and executed once its mandatory properties
// are set.
package algorithm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/peaks-engine/internal/workspace"
)

var (
	// ErrUnknownAlgorithm is returned by Create for an unregistered name.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")

	// ErrUnknownProperty is returned by SetProperty for a name the
	// algorithm does not declare.
	ErrUnknownProperty = errors.New("unknown property")

	// ErrNotInitialized is returned when SetProperty or Execute is called
	// before Initialize.
	ErrNotInitialized = errors.New("algorithm not initialized")

	// ErrMissingProperty is returned by Execute when a mandatory property
	// has no value.
	ErrMissingProperty = errors.New("mandatory property not set")
)

// Algorithm is a configurable operation over named workspaces.
type Algorithm interface {
	Name() string
	Version() int

	// Initialize declares the properties and resets them to defaults.
	Initialize()
	SetProperty(name string, value any) error
	Execute(ctx context.Context) error

	// LastRun describes the most recent successful execution.
	LastRun() Run
}

// Run records one successful execution.
type Run struct {
	ID       uuid.UUID
	Output   string
	Peaks    int
	Duration time.Duration
}

// Env is what every algorithm is created with.
type Env struct {
	Store  workspace.Store
	Logger *slog.Logger
}

// Factory creates an algorithm bound to env.
type Factory func(env Env) Algorithm

// Registry maps algorithm names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Standard returns a registry holding every algorithm in this package.
func Standard() *Registry {
	r := NewRegistry()
	if err := r.Register(CombinePeaksWorkspacesName, NewCombinePeaksWorkspaces); err != nil {
		panic(err)
	}
	return r
}

// Register adds a factory. Registering a name twice is an error.
func (r *Registry) Register(name string, f Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("algorithm %s registered more than once", name)
	}
	r.factories[name] = f
	return nil
}

// Create returns a new, uninitialized instance of the named algorithm. A
// nil env.Logger discards log output.
func (r *Registry) Create(name string, env Env) (Algorithm, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, name)
	}
	if env.Logger == nil {
		env.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return f(env), nil
}

// Names lists registered algorithms in name order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// --- property coercion ---

func stringValue(name string, value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("property %s: want string, got %T", name, value)
	}
	return s, nil
}

func floatValue(name string, value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("property %s: %w", name, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("property %s: want number, got %T", name, value)
	}
}

func boolValue(name string, value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("property %s: %w", name, err)
		}
		return b, nil
	default:
		return false, fmt.Errorf("property %s: want bool, got %T", name, value)
	}
}
