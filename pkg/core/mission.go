// pkg/core/mission.go
package core

import "time"

// Waypoint is a planned position at an exact instant.
type Waypoint struct {
	Position Position3D `json:"position"`
	Time     time.Time  `json:"time"`
}

// Segment is the straight-line, constant-velocity motion model between
// two consecutive waypoints of one mission.
type Segment struct {
	Start Waypoint
	End   Waypoint
}

// PositionAt returns the position on the segment at the given time,
// linearly interpolated between the endpoints. Times at or before the
// segment start return the start position; times at or after the end
// return the end position. A degenerate or inverted segment (end time
// not after start time) always yields the start position, so callers
// never see extrapolated positions.
func (s Segment) PositionAt(t time.Time) Position3D {
	span := s.End.Time.Sub(s.Start.Time).Seconds()
	elapsed := t.Sub(s.Start.Time).Seconds()

	if span <= 0 || elapsed <= 0 {
		return s.Start.Position
	}
	if elapsed >= span {
		return s.End.Position
	}

	fraction := elapsed / span
	d := s.End.Position.Sub(s.Start.Position)
	return Position3D{
		X: s.Start.Position.X + d.X*fraction,
		Y: s.Start.Position.Y + d.Y*fraction,
		Z: s.Start.Position.Z + d.Z*fraction,
	}
}

// Mission is one drone's planned trajectory: an ordered sequence of
// timestamped waypoints. Waypoint times are expected to be non-decreasing;
// this is not validated here, and out-of-order segments simply never
// produce overlap windows during detection.
type Mission struct {
	DroneID   string     `json:"droneId"`
	Waypoints []Waypoint `json:"waypoints"`
}

// NewMission creates an empty mission for the given drone.
func NewMission(droneID string) *Mission {
	return &Mission{DroneID: droneID}
}

// AddWaypoint appends a waypoint to the mission.
func (m *Mission) AddWaypoint(w Waypoint) {
	m.Waypoints = append(m.Waypoints, w)
}

// Segments returns the consecutive-waypoint segments of the mission.
// A mission with fewer than 2 waypoints has no segments and can never
// conflict with anything.
func (m *Mission) Segments() []Segment {
	if len(m.Waypoints) < 2 {
		return nil
	}
	segments := make([]Segment, 0, len(m.Waypoints)-1)
	for i := 0; i < len(m.Waypoints)-1; i++ {
		segments = append(segments, Segment{Start: m.Waypoints[i], End: m.Waypoints[i+1]})
	}
	return segments
}

// Duration returns the time spanned by the mission's waypoints.
func (m *Mission) Duration() time.Duration {
	if len(m.Waypoints) < 2 {
		return 0
	}
	return m.Waypoints[len(m.Waypoints)-1].Time.Sub(m.Waypoints[0].Time)
}
