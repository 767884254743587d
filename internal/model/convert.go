// Converters between pkg/core values and the GORM persistence models.
package model

import (
	"encoding/json"
	"fmt"

	"github.com/skyward/deconflict/internal/geo"
	"github.com/skyward/deconflict/pkg/core"
)

// RunFromSummary converts a detection run summary to its GORM model.
func RunFromSummary(s core.RunSummary) DetectionRun {
	return DetectionRun{
		StartedAt:      s.StartedAt,
		SafetyDistance: s.SafetyDistance,
		SampleSteps:    s.SampleSteps,
		MissionCount:   s.MissionCount,
		PairCount:      s.PairCount,
		ConflictCount:  s.ConflictCount,
		DurationMs:     float32(s.Duration.Seconds() * 1000),
	}
}

// MissionFromCore converts a core mission to its GORM model. Missions with
// fewer than 2 waypoints have no path geometry but are still recorded.
func MissionFromCore(m *core.Mission) (MissionRecord, error) {
	record := MissionRecord{
		DroneID:       m.DroneID,
		WaypointCount: len(m.Waypoints),
	}

	if len(m.Waypoints) > 0 {
		record.StartTime = m.Waypoints[0].Time
		record.EndTime = m.Waypoints[len(m.Waypoints)-1].Time
	}

	if len(m.Waypoints) >= 2 {
		path, err := geo.PathLineString(m)
		if err != nil {
			return MissionRecord{}, fmt.Errorf("building path for %s: %w", m.DroneID, err)
		}
		record.Path = GeomLineString{LineString: path}
	}

	raw, err := json.Marshal(m.Waypoints)
	if err != nil {
		return MissionRecord{}, fmt.Errorf("marshalling waypoints for %s: %w", m.DroneID, err)
	}
	record.Waypoints = raw

	return record, nil
}

// ConflictFromCore converts a core conflict to its GORM model.
func ConflictFromCore(c core.Conflict) ConflictRecord {
	return ConflictRecord{
		DroneA:   c.DroneA,
		DroneB:   c.DroneB,
		Location: GeomPoint{Point: geo.Point(c.Location)},
		Altitude: c.Location.Z,
		Time:     c.Time,
		Reason:   c.Reason,
	}
}

// ConflictToCore converts a GORM conflict record back to its core value.
func ConflictToCore(r ConflictRecord) core.Conflict {
	var pos core.Position3D
	if coord, ok := r.Location.Coordinates(); ok {
		pos = core.Position3D{X: coord.X, Y: coord.Y, Z: coord.Z}
	}
	return core.Conflict{
		DroneA:   r.DroneA,
		DroneB:   r.DroneB,
		Location: pos,
		Time:     r.Time,
		Reason:   r.Reason,
	}
}
