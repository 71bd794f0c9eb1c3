// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package geometry provides the small amount of 3-vector arithmetic needed
// to place detectors and compute momentum transfer in the lab frame.
package geometry

import (
	"fmt"
	"math"
)

// V3D is a vector in the lab frame. X is horizontal and perpendicular to
// the beam, Y points up, Z runs along the beam.
type V3D struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// FromSlice builds a V3D from a three-element slice.
func FromSlice(v []float64) (V3D, error) {
	if len(v) != 3 {
		return V3D{}, fmt.Errorf("vector needs 3 components, got %d", len(v))
	}
	return V3D{X: v[0], Y: v[1], Z: v[2]}, nil
}

// Slice returns the components as [x, y, z].
func (v V3D) Slice() []float64 {
	return []float64{v.X, v.Y, v.Z}
}

func (v V3D) Add(o V3D) V3D {
	return V3D{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v V3D) Sub(o V3D) V3D {
	return V3D{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

func (v V3D) Scale(f float64) V3D {
	return V3D{X: v.X * f, Y: v.Y * f, Z: v.Z * f}
}

// Norm returns the Euclidean length.
func (v V3D) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Unit returns v scaled to length one. The zero vector is returned as is.
func (v V3D) Unit() V3D {
	n := v.Norm()
	if n == 0 {
		return v
	}
	return v.Scale(1 / n)
}

func (v V3D) String() string {
	return fmt.Sprintf("[%g,%g,%g]", v.X, v.Y, v.Z)
}
