// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package algorithm

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/peaks-engine/internal/combine"
	"github.com/pdiddy/peaks-engine/internal/peaks"
)

// CombinePeaksWorkspacesName is the registry name of the combine algorithm.
const CombinePeaksWorkspacesName = "CombinePeaksWorkspaces"

// Property names of CombinePeaksWorkspaces.
const (
	PropLHSWorkspace         = "LHSWorkspace"
	PropRHSWorkspace         = "RHSWorkspace"
	PropOutputWorkspace      = "OutputWorkspace"
	PropTolerance            = "Tolerance"
	PropCombineMatchingPeaks = "CombineMatchingPeaks"
)

// DefaultTolerance is the Tolerance property's initial value.
const DefaultTolerance = combine.Tolerance(0.01)

// CombinePeaksWorkspaces merges two stored peaks workspaces into a third.
type CombinePeaksWorkspaces struct {
	env         Env
	initialized bool

	lhs, rhs, output string
	opts             combine.Options

	last Run
}

// NewCombinePeaksWorkspaces is the registry factory.
func NewCombinePeaksWorkspaces(env Env) Algorithm {
	return &CombinePeaksWorkspaces{env: env}
}

func (a *CombinePeaksWorkspaces) Name() string { return CombinePeaksWorkspacesName }
func (a *CombinePeaksWorkspaces) Version() int { return 1 }

func (a *CombinePeaksWorkspaces) Initialize() {
	a.lhs, a.rhs, a.output = "", "", ""
	a.opts = combine.Options{Tolerance: DefaultTolerance}
	a.initialized = true
}

// SetProperty sets one property. A negative Tolerance is rejected here
// with combine.ErrInvalidArgument and leaves the previous value in place.
func (a *CombinePeaksWorkspaces) SetProperty(name string, value any) error {
	if !a.initialized {
		return ErrNotInitialized
	}

	switch name {
	case PropLHSWorkspace, PropRHSWorkspace, PropOutputWorkspace:
		s, err := stringValue(name, value)
		if err != nil {
			return err
		}
		switch name {
		case PropLHSWorkspace:
			a.lhs = s
		case PropRHSWorkspace:
			a.rhs = s
		default:
			a.output = s
		}

	case PropTolerance:
		var f float64
		if t, ok := value.(combine.Tolerance); ok {
			f = float64(t)
		} else {
			var err error
			if f, err = floatValue(name, value); err != nil {
				return err
			}
		}
		tol, err := combine.NewTolerance(f)
		if err != nil {
			return fmt.Errorf("property %s: %w", name, err)
		}
		a.opts.Tolerance = tol

	case PropCombineMatchingPeaks:
		b, err := boolValue(name, value)
		if err != nil {
			return err
		}
		a.opts.CombineMatchingPeaks = b

	default:
		return fmt.Errorf("%w: %s.%s", ErrUnknownProperty, a.Name(), name)
	}
	return nil
}

// Execute reads both inputs from the store, combines them, and stores the
// result under OutputWorkspace. Nothing is stored when any step fails.
func (a *CombinePeaksWorkspaces) Execute(ctx context.Context) error {
	if !a.initialized {
		return ErrNotInitialized
	}
	for _, p := range [][2]string{
		{PropLHSWorkspace, a.lhs},
		{PropRHSWorkspace, a.rhs},
		{PropOutputWorkspace, a.output},
	} {
		if p[1] == "" {
			return fmt.Errorf("%w: %s", ErrMissingProperty, p[0])
		}
	}

	runID := uuid.New()
	log := a.env.Logger.With("algorithm", a.Name(), "run_id", runID.String())
	start := time.Now()

	log.Info("execution started",
		"lhs", a.lhs, "rhs", a.rhs, "output", a.output,
		"tolerance", float64(a.opts.Tolerance), "combine_matching_peaks", a.opts.CombineMatchingPeaks)

	var lhs, rhs *peaks.Workspace
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lhs, err = a.env.Store.Get(gctx, a.lhs)
		return err
	})
	g.Go(func() error {
		var err error
		rhs, err = a.env.Store.Get(gctx, a.rhs)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Error("execution failed", "error", err)
		return fmt.Errorf("%s: %w", a.Name(), err)
	}

	out, err := combine.Combine(lhs, rhs, a.opts)
	if err != nil {
		log.Error("execution failed", "error", err)
		return fmt.Errorf("%s: %w", a.Name(), err)
	}

	if err := a.env.Store.Put(ctx, a.output, out); err != nil {
		log.Error("execution failed", "error", err)
		return fmt.Errorf("%s: storing %s: %w", a.Name(), a.output, err)
	}

	a.last = Run{ID: runID, Output: a.output, Peaks: out.Number(), Duration: time.Since(start)}
	log.Info("execution finished",
		"lhs_peaks", lhs.Number(), "rhs_peaks", rhs.Number(),
		"output_peaks", out.Number(), "duration", a.last.Duration)
	return nil
}

func (a *CombinePeaksWorkspaces) LastRun() Run { return a.last }
