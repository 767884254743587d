// pkg/core/conflict.go
package core

import "time"

// ReasonProximity is the reason attached to conflicts found by the
// spatial proximity check.
const ReasonProximity = "Spatial proximity"

// Conflict records two missions coming closer than the safety threshold.
// Location is the detecting mission's interpolated position at the sample
// instant. Conflicts are immutable once created.
type Conflict struct {
	DroneA   string     `json:"droneA"`
	DroneB   string     `json:"droneB"`
	Location Position3D `json:"location"`
	Time     time.Time  `json:"time"`
	Reason   string     `json:"reason"`
}

// RunSummary describes one completed detection run.
type RunSummary struct {
	StartedAt      time.Time     `json:"startedAt"`
	Duration       time.Duration `json:"duration"`
	SafetyDistance float64       `json:"safetyDistance"`
	SampleSteps    int           `json:"sampleSteps"`
	MissionCount   int           `json:"missionCount"`
	PairCount      int           `json:"pairCount"`
	ConflictCount  int           `json:"conflictCount"`
}
