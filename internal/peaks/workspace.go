// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package peaks

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/pdiddy/peaks-engine/internal/geometry"
	"github.com/pdiddy/peaks-engine/internal/instrument"
	"github.com/pdiddy/peaks-engine/pkg/types"
)

// ErrInstrumentMismatch is returned when a peak does not share the
// workspace's base instrument.
var ErrInstrumentMismatch = errors.New("peak belongs to a different instrument")

var validate = validator.New()

// Workspace is an ordered collection of peaks sharing one instrument.
// A Workspace is not safe for concurrent mutation; readers that share a
// workspace must not call AddPeak concurrently.
type Workspace struct {
	inst  *instrument.Instrument
	peaks []Peak
}

// NewWorkspace returns an empty workspace for inst. inst may be nil; the
// workspace then adopts the instrument of the first peak added.
func NewWorkspace(inst *instrument.Instrument) *Workspace {
	return &Workspace{inst: inst}
}

// AddPeak appends p. The peak must reference the workspace's base
// instrument.
func (w *Workspace) AddPeak(p Peak) error {
	if p.inst == nil {
		return ErrNoInstrument
	}
	if w.inst == nil {
		w.inst = p.inst
	} else if p.inst.BaseInstrument() != w.inst.BaseInstrument() {
		return fmt.Errorf("%w: workspace uses %s, peak uses %s",
			ErrInstrumentMismatch, w.inst.Name(), p.inst.Name())
	}
	w.peaks = append(w.peaks, p)
	return nil
}

// Number returns the peak count.
func (w *Workspace) Number() int {
	return len(w.peaks)
}

// Peak returns the peak at index i. It panics if i is out of range.
func (w *Workspace) Peak(i int) Peak {
	return w.peaks[i]
}

// Peaks returns a copy of the peak list in workspace order.
func (w *Workspace) Peaks() []Peak {
	return append([]Peak(nil), w.peaks...)
}

// Instrument returns the workspace instrument, or nil for an empty
// workspace created without one.
func (w *Workspace) Instrument() *instrument.Instrument {
	return w.inst
}

// Clone returns a workspace with its own peak list and the same instrument.
func (w *Workspace) Clone() *Workspace {
	return &Workspace{inst: w.inst, peaks: w.Peaks()}
}

// Records returns the serialized form of every peak in order.
func (w *Workspace) Records() []types.PeakRecord {
	out := make([]types.PeakRecord, len(w.peaks))
	for i, p := range w.peaks {
		out[i] = p.Record()
	}
	return out
}

// Restore rebuilds a stored peak. When the record carries Q it is kept as
// stored and the detector is not looked up; otherwise Q is computed from
// geometry.
func Restore(inst *instrument.Instrument, r types.PeakRecord) (Peak, error) {
	if len(r.QLab) != 3 {
		return NewPeak(inst, r.DetectorID, r.Wavelength)
	}
	if inst == nil {
		return Peak{}, ErrNoInstrument
	}
	if !(r.Wavelength > 0) || math.IsInf(r.Wavelength, 1) {
		return Peak{}, fmt.Errorf("%w: %g", ErrInvalidWavelength, r.Wavelength)
	}
	return Peak{
		inst:       inst,
		detectorID: r.DetectorID,
		wavelength: r.Wavelength,
		qLab:       geometry.V3D{X: r.QLab[0], Y: r.QLab[1], Z: r.QLab[2]},
	}, nil
}

// FromRecords builds a workspace for inst from serialized peaks. A record
// that carries QLab keeps it as written; one without QLab gets Q computed
// from inst's geometry.
func FromRecords(inst *instrument.Instrument, records []types.PeakRecord) (*Workspace, error) {
	ws := NewWorkspace(inst)
	for i, r := range records {
		if err := validate.Struct(r); err != nil {
			return nil, fmt.Errorf("peak %d: %w", i, err)
		}
		p, err := Restore(inst, r)
		if err != nil {
			return nil, fmt.Errorf("peak %d: %w", i, err)
		}
		if err := ws.AddPeak(p); err != nil {
			return nil, fmt.Errorf("peak %d: %w", i, err)
		}
	}
	return ws, nil
}
