package core

import (
	"math"
	"testing"
	"time"
)

func TestDistanceTo_345Triangle(t *testing.T) {
	a := Position3D{X: 0, Y: 0, Z: 0}
	b := Position3D{X: 3, Y: 4, Z: 0}

	if d := a.DistanceTo(b); d != 5.0 {
		t.Errorf("expected distance 5.0, got %f", d)
	}
	if d := b.DistanceTo(a); d != 5.0 {
		t.Errorf("expected symmetric distance 5.0, got %f", d)
	}
}

func TestDistanceTo_UsesAllThreeAxes(t *testing.T) {
	a := Position3D{X: 1, Y: 2, Z: 3}
	b := Position3D{X: 1, Y: 2, Z: 10}

	if d := a.DistanceTo(b); d != 7.0 {
		t.Errorf("expected distance 7.0, got %f", d)
	}
}

func TestPositionAt_Midpoint(t *testing.T) {
	t0 := time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)
	seg := Segment{
		Start: Waypoint{Position: Position3D{X: 0, Y: 0, Z: 0}, Time: t0},
		End:   Waypoint{Position: Position3D{X: 10, Y: 10, Z: 10}, Time: t0.Add(10 * time.Minute)},
	}

	pos := seg.PositionAt(t0.Add(5 * time.Minute))

	for _, v := range []float64{pos.X, pos.Y, pos.Z} {
		if math.Abs(v-5.0) > 1e-9 {
			t.Errorf("expected midpoint coordinate 5.0, got %f", v)
		}
	}
}

func TestPositionAt_ClampsBeforeStart(t *testing.T) {
	t0 := time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)
	seg := Segment{
		Start: Waypoint{Position: Position3D{X: 1, Y: 2, Z: 3}, Time: t0},
		End:   Waypoint{Position: Position3D{X: 100, Y: 200, Z: 300}, Time: t0.Add(time.Minute)},
	}

	pos := seg.PositionAt(t0.Add(-time.Hour))
	if pos != seg.Start.Position {
		t.Errorf("expected start position, got %+v", pos)
	}

	// Exactly at the start is also the start point.
	pos = seg.PositionAt(t0)
	if pos != seg.Start.Position {
		t.Errorf("expected start position at t0, got %+v", pos)
	}
}

func TestPositionAt_ClampsAtAndAfterEnd(t *testing.T) {
	t0 := time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)
	seg := Segment{
		Start: Waypoint{Position: Position3D{X: 0, Y: 0, Z: 0}, Time: t0},
		End:   Waypoint{Position: Position3D{X: 10, Y: 0, Z: 0}, Time: t0.Add(time.Minute)},
	}

	pos := seg.PositionAt(t0.Add(time.Minute))
	if pos != seg.End.Position {
		t.Errorf("expected end position at segment end, got %+v", pos)
	}

	pos = seg.PositionAt(t0.Add(time.Hour))
	if pos != seg.End.Position {
		t.Errorf("expected end position after segment end, got %+v", pos)
	}
}

func TestPositionAt_InvertedSegmentReturnsStart(t *testing.T) {
	t0 := time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)
	seg := Segment{
		Start: Waypoint{Position: Position3D{X: 5, Y: 5, Z: 5}, Time: t0.Add(time.Minute)},
		End:   Waypoint{Position: Position3D{X: 9, Y: 9, Z: 9}, Time: t0},
	}

	// End before start: no interpolation, no panic, always the start point.
	for _, at := range []time.Time{t0.Add(-time.Minute), t0, t0.Add(30 * time.Second), t0.Add(2 * time.Minute)} {
		if pos := seg.PositionAt(at); pos != seg.Start.Position {
			t.Errorf("inverted segment at %v: expected start position, got %+v", at, pos)
		}
	}
}

func TestPositionAt_ZeroDurationSegment(t *testing.T) {
	t0 := time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)
	seg := Segment{
		Start: Waypoint{Position: Position3D{X: 1, Y: 1, Z: 1}, Time: t0},
		End:   Waypoint{Position: Position3D{X: 2, Y: 2, Z: 2}, Time: t0},
	}

	if pos := seg.PositionAt(t0); pos != seg.Start.Position {
		t.Errorf("expected start position for zero-duration segment, got %+v", pos)
	}
}

func TestSegments_FewerThanTwoWaypoints(t *testing.T) {
	m := NewMission("Drone1")
	if segs := m.Segments(); segs != nil {
		t.Errorf("expected nil segments for empty mission, got %d", len(segs))
	}

	m.AddWaypoint(Waypoint{Time: time.Now()})
	if segs := m.Segments(); segs != nil {
		t.Errorf("expected nil segments for single-waypoint mission, got %d", len(segs))
	}
}

func TestSegments_ConsecutivePairs(t *testing.T) {
	t0 := time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)
	m := NewMission("Drone1")
	for i := 0; i < 4; i++ {
		m.AddWaypoint(Waypoint{
			Position: Position3D{X: float64(i * 100)},
			Time:     t0.Add(time.Duration(i) * time.Minute),
		})
	}

	segs := m.Segments()
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segs))
	}
	for i, seg := range segs {
		if seg.Start != m.Waypoints[i] || seg.End != m.Waypoints[i+1] {
			t.Errorf("segment %d does not span waypoints %d..%d", i, i, i+1)
		}
	}
}
