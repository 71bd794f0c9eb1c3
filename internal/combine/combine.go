// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package combine merges two peaks workspaces into one.
//
// Without matching, the output is every LHS peak followed by every RHS peak.
// With matching, each RHS peak is compared, in order, against every peak
// already in the output (LHS peaks and RHS peaks accepted so far) and is
// dropped when it coincides with one of them. Two peaks coincide when their
// lab-frame Q differ by no more than the tolerance in both X and Z; the Y
// component is not compared.
//
// The output always carries the LHS instrument. Combine never modifies its
// inputs and holds no state between calls.
package combine

import (
	"errors"
	"fmt"
	"math"

	"github.com/pdiddy/peaks-engine/internal/instrument"
	"github.com/pdiddy/peaks-engine/internal/peaks"
)

// ErrInvalidArgument is returned for a negative or NaN tolerance.
var ErrInvalidArgument = errors.New("invalid argument")

// Tolerance is the largest per-axis Q difference (inverse Angstrom) at
// which two peaks are treated as the same peak.
type Tolerance float64

// NewTolerance validates v. It fails for negative values whether or not
// matching is enabled.
func NewTolerance(v float64) (Tolerance, error) {
	t := Tolerance(v)
	if err := t.Validate(); err != nil {
		return 0, err
	}
	return t, nil
}

// Validate reports ErrInvalidArgument for a negative or NaN tolerance.
func (t Tolerance) Validate() error {
	if math.IsNaN(float64(t)) || t < 0 {
		return fmt.Errorf("%w: tolerance must be non-negative, got %g", ErrInvalidArgument, float64(t))
	}
	return nil
}

// Options controls a Combine call.
type Options struct {
	Tolerance            Tolerance
	CombineMatchingPeaks bool
}

// Coincide reports whether a and b are the same peak within tol. Only the
// X and Z components of Q are compared.
func Coincide(a, b peaks.Peak, tol Tolerance) bool {
	qa, qb := a.QLabFrame(), b.QLabFrame()
	t := float64(tol)
	return math.Abs(qa.X-qb.X) <= t && math.Abs(qa.Z-qb.Z) <= t
}

// Combine merges lhs and rhs. Either workspace may be empty. A bad tolerance
// fails with ErrInvalidArgument before any work; no other input is rejected.
func Combine(lhs, rhs *peaks.Workspace, opts Options) (*peaks.Workspace, error) {
	if err := opts.Tolerance.Validate(); err != nil {
		return nil, err
	}

	inst := outputInstrument(lhs, rhs)
	out := peaks.NewWorkspace(inst)
	accepted := make([]peaks.Peak, 0, lhs.Number()+rhs.Number())

	for _, p := range lhs.Peaks() {
		accepted = append(accepted, p.Rebased(inst))
	}

	for _, p := range rhs.Peaks() {
		if opts.CombineMatchingPeaks && matchesAny(p, accepted, opts.Tolerance) {
			continue
		}
		accepted = append(accepted, p.Rebased(inst))
	}

	for i, p := range accepted {
		if err := out.AddPeak(p); err != nil {
			return nil, fmt.Errorf("combining peak %d: %w", i, err)
		}
	}
	return out, nil
}

// matchesAny scans accepted in order and stops at the first coincidence.
func matchesAny(p peaks.Peak, accepted []peaks.Peak, tol Tolerance) bool {
	for _, q := range accepted {
		if Coincide(p, q, tol) {
			return true
		}
	}
	return false
}

// outputInstrument is the LHS instrument, falling back to the RHS one only
// when LHS has none.
func outputInstrument(lhs, rhs *peaks.Workspace) *instrument.Instrument {
	if inst := lhs.Instrument(); inst != nil {
		return inst
	}
	return rhs.Instrument()
}
