// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package peaks holds the single-crystal peak model: immutable peaks with a
// lab-frame momentum transfer derived from instrument geometry, ordered
// peaks workspaces that share one instrument, and index selections over a
// workspace.
package peaks

import (
	"errors"
	"fmt"
	"math"

	"github.com/pdiddy/peaks-engine/internal/geometry"
	"github.com/pdiddy/peaks-engine/internal/instrument"
	"github.com/pdiddy/peaks-engine/pkg/types"
)

var (
	// ErrInvalidWavelength is returned for a zero, negative, or non-finite
	// wavelength.
	ErrInvalidWavelength = errors.New("wavelength must be positive")

	// ErrNoInstrument is returned when a peak is built without geometry.
	ErrNoInstrument = errors.New("peak has no instrument")
)

// Peak is one detected scattering event. Peaks are values: the With*
// methods return a new peak and never modify the receiver.
type Peak struct {
	inst       *instrument.Instrument
	detectorID int
	wavelength float64
	qLab       geometry.V3D
}

// NewPeak builds a peak seen by detectorID at the given wavelength
// (Angstrom) and computes its lab-frame Q as k*(beam - detector direction)
// with k = 2*pi/wavelength.
func NewPeak(inst *instrument.Instrument, detectorID int, wavelength float64) (Peak, error) {
	if inst == nil {
		return Peak{}, ErrNoInstrument
	}
	if !(wavelength > 0) || math.IsInf(wavelength, 1) {
		return Peak{}, fmt.Errorf("%w: %g", ErrInvalidWavelength, wavelength)
	}
	detPos, err := inst.DetectorPosition(detectorID)
	if err != nil {
		return Peak{}, err
	}

	k := 2 * math.Pi / wavelength
	detDir := detPos.Sub(inst.SamplePosition()).Unit()
	q := inst.BeamDirection().Sub(detDir).Scale(k)

	return Peak{
		inst:       inst,
		detectorID: detectorID,
		wavelength: wavelength,
		qLab:       q,
	}, nil
}

// MustPeak is NewPeak for fixed inputs known to be valid; it panics on error.
func MustPeak(inst *instrument.Instrument, detectorID int, wavelength float64) Peak {
	p, err := NewPeak(inst, detectorID, wavelength)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Peak) DetectorID() int                    { return p.detectorID }
func (p Peak) Wavelength() float64                { return p.wavelength }
func (p Peak) QLabFrame() geometry.V3D            { return p.qLab }
func (p Peak) Instrument() *instrument.Instrument { return p.inst }

// WithWavelength returns a copy of p at a new wavelength, with Q recomputed.
func (p Peak) WithWavelength(wavelength float64) (Peak, error) {
	return NewPeak(p.inst, p.detectorID, wavelength)
}

// WithDetectorID returns a copy of p moved to another pixel, with Q
// recomputed.
func (p Peak) WithDetectorID(id int) (Peak, error) {
	return NewPeak(p.inst, id, p.wavelength)
}

// Rebased returns a copy of p attributed to inst. Detector ID, wavelength,
// and Q are kept as measured; nothing is recomputed.
func (p Peak) Rebased(inst *instrument.Instrument) Peak {
	p.inst = inst
	return p
}

// Record returns the serialized form of p.
func (p Peak) Record() types.PeakRecord {
	return types.PeakRecord{
		DetectorID: p.detectorID,
		Wavelength: p.wavelength,
		QLab:       p.qLab.Slice(),
	}
}

func (p Peak) String() string {
	return fmt.Sprintf("peak(det=%d, wl=%g, q=%s)", p.detectorID, p.wavelength, p.qLab)
}
