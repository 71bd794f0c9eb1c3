// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package instrument

import "github.com/pdiddy/peaks-engine/pkg/types"

// TestDefinition returns a single-bank instrument used across package tests
// and by the CLI's demo data: 100 columns from 10 to 158.5 degrees in
// 1.5 degree steps, 10 rows from -0.45 m to 0.45 m, radius 1 m, source
// 10 m upstream of a sample at the origin. Pixel IDs are column*10 + row.
func TestDefinition(name string) types.InstrumentDefinition {
	return types.InstrumentDefinition{
		Name:   name,
		Source: []float64{0, 0, -10},
		Sample: []float64{0, 0, 0},
		Banks: []types.BankDefinition{{
			Name:          "bank1",
			Type:          types.BankCylindrical,
			FirstID:       0,
			Columns:       100,
			Rows:          10,
			Radius:        1,
			TwoThetaStart: 10,
			TwoThetaStep:  1.5,
			HeightStart:   -0.45,
			HeightStep:    0.1,
		}},
	}
}

// NewTestInstrument builds a fresh instrument from TestDefinition. Every
// call returns a distinct *Instrument.
func NewTestInstrument() *Instrument {
	inst, err := FromDefinition(TestDefinition("TEST_CYLINDER"))
	if err != nil {
		panic(err)
	}
	return inst
}
