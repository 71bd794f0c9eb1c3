// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package peaks

import "github.com/pdiddy/peaks-engine/internal/instrument"

// NewTestWorkspace returns a workspace on inst with n peaks: peak i is on
// detector i at wavelength i+0.5. It panics if inst lacks those detectors.
func NewTestWorkspace(inst *instrument.Instrument, n int) *Workspace {
	ws := NewWorkspace(inst)
	for i := 0; i < n; i++ {
		if err := ws.AddPeak(MustPeak(inst, i, float64(i)+0.5)); err != nil {
			panic(err)
		}
	}
	return ws
}
