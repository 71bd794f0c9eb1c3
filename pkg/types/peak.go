// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// PeakRecord is the serialized form of one peak. QLab is written on export
// and kept on import, so peaks measured on another instrument keep their Q.
// Records without QLab get Q from the instrument geometry.
type PeakRecord struct {
	// DetectorID is the pixel that recorded the peak.
	DetectorID int `json:"detector_id" yaml:"detector_id" validate:"gte=0"`

	// Wavelength is the neutron wavelength in Angstrom.
	Wavelength float64 `json:"wavelength" yaml:"wavelength" validate:"gt=0"`

	// QLab is the lab-frame momentum transfer [x, y, z] in inverse Angstrom.
	QLab []float64 `json:"q_lab,omitempty" yaml:"q_lab,omitempty" validate:"omitempty,len=3"`
}

// PeaksFile is a peaks workspace as read from or written to disk.
type PeaksFile struct {
	// Name is the workspace name used in the store.
	Name string `json:"name" yaml:"name" validate:"required"`

	// Instrument is the inline instrument definition. Exactly one of
	// Instrument and InstrumentName must be set.
	Instrument *InstrumentDefinition `json:"instrument,omitempty" yaml:"instrument,omitempty" validate:"required_without=InstrumentName,excluded_with=InstrumentName"`

	// InstrumentName refers to a definition in the instruments directory.
	InstrumentName string `json:"instrument_name,omitempty" yaml:"instrument_name,omitempty"`

	Peaks []PeakRecord `json:"peaks" yaml:"peaks" validate:"dive"`
}
