package influx

import (
	"strings"
	"testing"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/skyward/deconflict/pkg/core"
)

func TestRunSummaryPoint(t *testing.T) {
	s := core.RunSummary{
		StartedAt:      time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC),
		Duration:       1500 * time.Millisecond,
		SafetyDistance: 20,
		SampleSteps:    10,
		MissionCount:   4,
		PairCount:      6,
		ConflictCount:  2,
	}

	line := influxdb2_write.PointToLineProtocol(RunSummaryPoint(s), time.Nanosecond)

	if !strings.HasPrefix(line, "detection_run ") {
		t.Errorf("unexpected measurement in %q", line)
	}
	for _, want := range []string{"conflict_count=2i", "pair_count=6i", "duration_ms=1500"} {
		if !strings.Contains(line, want) {
			t.Errorf("line protocol missing %q: %s", want, line)
		}
	}
}

func TestConflictPoint(t *testing.T) {
	c := core.Conflict{
		DroneA:   "Drone1",
		DroneB:   "Drone2",
		Location: core.Position3D{X: 100, Y: 200, Z: 15},
		Time:     time.Date(2025, 4, 2, 10, 1, 0, 0, time.UTC),
		Reason:   core.ReasonProximity,
	}

	line := influxdb2_write.PointToLineProtocol(ConflictPoint(c), time.Nanosecond)

	if !strings.Contains(line, "drone_a=Drone1") {
		t.Errorf("line protocol missing drone_a tag: %s", line)
	}
	if !strings.Contains(line, "reason=Spatial\\ proximity") {
		t.Errorf("line protocol missing reason tag: %s", line)
	}
	if !strings.Contains(line, "z=15") {
		t.Errorf("line protocol missing z field: %s", line)
	}
}
