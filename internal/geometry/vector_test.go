// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSlice(t *testing.T) {
	v, err := FromSlice([]float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, V3D{X: 1, Y: 2, Z: 3}, v)
	assert.Equal(t, []float64{1, 2, 3}, v.Slice())

	_, err = FromSlice([]float64{1, 2})
	assert.Error(t, err)
}

func TestArithmetic(t *testing.T) {
	a := V3D{X: 1, Y: 2, Z: 2}
	b := V3D{X: 0, Y: 1, Z: -1}

	assert.Equal(t, V3D{X: 1, Y: 3, Z: 1}, a.Add(b))
	assert.Equal(t, V3D{X: 1, Y: 1, Z: 3}, a.Sub(b))
	assert.Equal(t, V3D{X: 2, Y: 4, Z: 4}, a.Scale(2))
	assert.InDelta(t, 3.0, a.Norm(), 1e-12)
}

func TestUnit(t *testing.T) {
	u := V3D{X: 0, Y: 3, Z: 4}.Unit()
	assert.InDelta(t, 1.0, u.Norm(), 1e-12)
	assert.InDelta(t, 0.6, u.Y, 1e-12)

	assert.Equal(t, V3D{}, V3D{}.Unit())
}
