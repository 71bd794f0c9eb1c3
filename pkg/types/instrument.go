// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// BankType selects how a detector bank lays out its pixels.
type BankType string

const (
	// BankCylindrical places pixel columns on a vertical cylinder around the
	// sample, stepping in scattering angle, with rows stepping in height.
	BankCylindrical BankType = "cylindrical"
)

// BankDefinition describes a regular block of detector pixels.
// Pixel IDs are FirstID + column*Rows + row.
type BankDefinition struct {
	// Name labels the bank (e.g. "bank1").
	Name string `json:"name" yaml:"name" validate:"required"`

	// Type selects the pixel layout. Only cylindrical banks are supported.
	Type BankType `json:"type" yaml:"type" validate:"required,oneof=cylindrical"`

	// FirstID is the detector ID of column 0, row 0.
	FirstID int `json:"first_id" yaml:"first_id" validate:"gte=0"`

	// Columns is the number of pixel columns along the scattering angle.
	Columns int `json:"columns" yaml:"columns" validate:"gt=0"`

	// Rows is the number of pixels per column.
	Rows int `json:"rows" yaml:"rows" validate:"gt=0"`

	// Radius is the horizontal distance from the sample to each pixel (metres).
	Radius float64 `json:"radius" yaml:"radius" validate:"gt=0"`

	// TwoThetaStart is the in-plane scattering angle of column 0 (degrees).
	TwoThetaStart float64 `json:"two_theta_start" yaml:"two_theta_start"`

	// TwoThetaStep is the angle between adjacent columns (degrees).
	TwoThetaStep float64 `json:"two_theta_step" yaml:"two_theta_step"`

	// HeightStart is the height of row 0 (metres).
	HeightStart float64 `json:"height_start" yaml:"height_start"`

	// HeightStep is the vertical spacing between rows (metres).
	HeightStep float64 `json:"height_step" yaml:"height_step"`
}

// DetectorDefinition places a single detector pixel explicitly.
type DetectorDefinition struct {
	ID       int       `json:"id" yaml:"id" validate:"gte=0"`
	Position []float64 `json:"position" yaml:"position" validate:"len=3"`
}

// InstrumentDefinition is the on-disk form of an instrument: source and
// sample positions plus detector banks and individual pixels.
type InstrumentDefinition struct {
	// Name identifies the instrument (e.g. "TOPAZ").
	Name string `json:"name" yaml:"name" validate:"required"`

	// Source is the moderator position (metres). The beam runs from
	// Source to Sample.
	Source []float64 `json:"source" yaml:"source" validate:"len=3"`

	// Sample is the sample position (metres).
	Sample []float64 `json:"sample" yaml:"sample" validate:"len=3"`

	Banks     []BankDefinition     `json:"banks,omitempty" yaml:"banks,omitempty" validate:"dive"`
	Detectors []DetectorDefinition `json:"detectors,omitempty" yaml:"detectors,omitempty" validate:"dive"`
}
