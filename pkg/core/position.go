// pkg/core/position.go
package core

import "math"

// Position3D is a point in a planar, right-handed coordinate frame.
// X and Y are horizontal metres, Z is altitude in metres.
// Callers with geodetic flight plans must project to a planar frame
// before constructing positions (see internal/geo).
type Position3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Sub returns p - other.
func (p Position3D) Sub(other Position3D) Position3D {
	return Position3D{X: p.X - other.X, Y: p.Y - other.Y, Z: p.Z - other.Z}
}

// DistanceTo returns the straight-line distance between two positions.
func (p Position3D) DistanceTo(other Position3D) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	dz := p.Z - other.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
