// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package instrument builds instrument geometry (source, sample, and detector
// pixel positions) from definitions. Peaks use it to derive their lab-frame
// momentum transfer from a detector ID and a wavelength.
package instrument

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/pdiddy/peaks-engine/internal/geometry"
	"github.com/pdiddy/peaks-engine/pkg/types"
)

var (
	// ErrUnknownDetector is returned when a detector ID is not part of the
	// instrument.
	ErrUnknownDetector = errors.New("unknown detector")

	// ErrDuplicateDetector is returned when two pixels share an ID.
	ErrDuplicateDetector = errors.New("duplicate detector id")
)

var validate = validator.New()

// Instrument is an immutable description of the instrument geometry. It is
// shared by pointer: every peak of a workspace refers to the same
// *Instrument, and identity comparison is how callers check that two
// workspaces share an instrument.
type Instrument struct {
	def       types.InstrumentDefinition
	source    geometry.V3D
	sample    geometry.V3D
	detectors map[int]geometry.V3D
}

// FromDefinition validates def and builds the instrument, expanding each
// bank into its pixels.
func FromDefinition(def types.InstrumentDefinition) (*Instrument, error) {
	if err := validate.Struct(def); err != nil {
		return nil, fmt.Errorf("invalid instrument definition: %w", err)
	}

	source, err := geometry.FromSlice(def.Source)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	sample, err := geometry.FromSlice(def.Sample)
	if err != nil {
		return nil, fmt.Errorf("sample: %w", err)
	}

	inst := &Instrument{
		def:       cloneDefinition(def),
		source:    source,
		sample:    sample,
		detectors: make(map[int]geometry.V3D),
	}

	for _, bank := range def.Banks {
		for id, pos := range bankPixels(bank, sample) {
			if err := inst.addDetector(id, pos); err != nil {
				return nil, fmt.Errorf("bank %s: %w", bank.Name, err)
			}
		}
	}

	for _, d := range def.Detectors {
		pos, err := geometry.FromSlice(d.Position)
		if err != nil {
			return nil, fmt.Errorf("detector %d: %w", d.ID, err)
		}
		if err := inst.addDetector(d.ID, pos); err != nil {
			return nil, err
		}
	}

	return inst, nil
}

func (i *Instrument) addDetector(id int, pos geometry.V3D) error {
	if _, ok := i.detectors[id]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateDetector, id)
	}
	i.detectors[id] = pos
	return nil
}

// bankPixels returns the absolute position of every pixel in a cylindrical
// bank centred on the sample.
func bankPixels(b types.BankDefinition, sample geometry.V3D) map[int]geometry.V3D {
	pixels := make(map[int]geometry.V3D, b.Columns*b.Rows)
	for col := 0; col < b.Columns; col++ {
		twoTheta := (b.TwoThetaStart + float64(col)*b.TwoThetaStep) * math.Pi / 180
		for row := 0; row < b.Rows; row++ {
			rel := geometry.V3D{
				X: b.Radius * math.Sin(twoTheta),
				Y: b.HeightStart + float64(row)*b.HeightStep,
				Z: b.Radius * math.Cos(twoTheta),
			}
			pixels[b.FirstID+col*b.Rows+row] = sample.Add(rel)
		}
	}
	return pixels
}

// Name returns the instrument name.
func (i *Instrument) Name() string {
	return i.def.Name
}

// BaseInstrument returns the instrument that owns the geometry. Workspaces
// compare instruments through this method.
func (i *Instrument) BaseInstrument() *Instrument {
	return i
}

func (i *Instrument) SourcePosition() geometry.V3D { return i.source }
func (i *Instrument) SamplePosition() geometry.V3D { return i.sample }

// BeamDirection is the unit vector from source to sample.
func (i *Instrument) BeamDirection() geometry.V3D {
	return i.sample.Sub(i.source).Unit()
}

// DetectorPosition returns the absolute position of a detector pixel.
func (i *Instrument) DetectorPosition(id int) (geometry.V3D, error) {
	pos, ok := i.detectors[id]
	if !ok {
		return geometry.V3D{}, fmt.Errorf("%w: %d in instrument %s", ErrUnknownDetector, id, i.def.Name)
	}
	return pos, nil
}

// NumberDetectors returns the pixel count.
func (i *Instrument) NumberDetectors() int {
	return len(i.detectors)
}

// DetectorIDs returns all pixel IDs in ascending order.
func (i *Instrument) DetectorIDs() []int {
	ids := make([]int, 0, len(i.detectors))
	for id := range i.detectors {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Definition returns a copy of the definition the instrument was built from.
func (i *Instrument) Definition() types.InstrumentDefinition {
	return cloneDefinition(i.def)
}

func cloneDefinition(def types.InstrumentDefinition) types.InstrumentDefinition {
	out := def
	out.Source = append([]float64(nil), def.Source...)
	out.Sample = append([]float64(nil), def.Sample...)
	out.Banks = append([]types.BankDefinition(nil), def.Banks...)
	if def.Detectors != nil {
		out.Detectors = make([]types.DetectorDefinition, len(def.Detectors))
		for k, d := range def.Detectors {
			out.Detectors[k] = types.DetectorDefinition{
				ID:       d.ID,
				Position: append([]float64(nil), d.Position...),
			}
		}
	}
	return out
}
