package schedule

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/skyward/deconflict/pkg/core"
)

func TestParseWaypointLine(t *testing.T) {
	wp, err := ParseWaypointLine("100 200.5 15 2025-04-02 10:01:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := core.Position3D{X: 100, Y: 200.5, Z: 15}
	if wp.Position != want {
		t.Errorf("position = %+v, want %+v", wp.Position, want)
	}
	if !wp.Time.Equal(time.Date(2025, 4, 2, 10, 1, 30, 0, time.UTC)) {
		t.Errorf("time = %v", wp.Time)
	}
}

func TestParseWaypointLine_Errors(t *testing.T) {
	cases := []struct {
		name string
		line string
	}{
		{"too few fields", "100 200 15"},
		{"too many fields", "100 200 15 2025-04-02 10:01:30 extra"},
		{"bad coordinate", "x 200 15 2025-04-02 10:01:30"},
		{"bad timestamp", "100 200 15 2025-04-02 10:01"},
		{"swapped date and time", "100 200 15 10:01:30 2025-04-02"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseWaypointLine(tc.line); err == nil {
				t.Errorf("expected error for %q", tc.line)
			}
		})
	}
}

func TestReadMissions(t *testing.T) {
	input := `
# primary mission
mission Drone1
0 0 10 2025-04-02 10:00:00
100 0 10 2025-04-02 10:01:00

mission Drone2
200 100 15 2025-04-02 10:00:30
100 100 15 2025-04-02 10:01:00
`
	missions, err := ReadMissions(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(missions) != 2 {
		t.Fatalf("expected 2 missions, got %d", len(missions))
	}
	if missions[0].DroneID != "Drone1" || len(missions[0].Waypoints) != 2 {
		t.Errorf("mission 0: %s with %d waypoints", missions[0].DroneID, len(missions[0].Waypoints))
	}
	if missions[1].DroneID != "Drone2" || len(missions[1].Waypoints) != 2 {
		t.Errorf("mission 1: %s with %d waypoints", missions[1].DroneID, len(missions[1].Waypoints))
	}
}

func TestReadMissions_WaypointBeforeHeader(t *testing.T) {
	_, err := ReadMissions(strings.NewReader("0 0 10 2025-04-02 10:00:00\n"))
	if err == nil {
		t.Fatal("expected error for waypoint before mission header")
	}
	if !strings.Contains(err.Error(), "line 1") {
		t.Errorf("error should name the line: %v", err)
	}
}

func TestReadMissions_EmptyHeader(t *testing.T) {
	if _, err := ReadMissions(strings.NewReader("mission \n")); err == nil {
		t.Fatal("expected error for empty mission header")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missions.txt")
	content := "mission Drone1\n0 0 10 2025-04-02 10:00:00\n100 0 10 2025-04-02 10:01:00\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	missions, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(missions) != 1 {
		t.Errorf("expected 1 mission, got %d", len(missions))
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSimulated(t *testing.T) {
	missions := Simulated()

	if len(missions) != 3 {
		t.Fatalf("expected 3 simulated missions, got %d", len(missions))
	}

	ids := []string{missions[0].DroneID, missions[1].DroneID, missions[2].DroneID}
	want := []string{"Drone2", "Drone3", "Drone4"}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("mission %d: got %s, want %s", i, ids[i], want[i])
		}
	}

	// Drone2 doubles back through (100,100,15) at 10:01 and 10:03.
	d2 := missions[0]
	if len(d2.Waypoints) != 4 {
		t.Fatalf("Drone2: expected 4 waypoints, got %d", len(d2.Waypoints))
	}
	if d2.Waypoints[1].Position != (core.Position3D{X: 100, Y: 100, Z: 15}) {
		t.Errorf("Drone2 second waypoint: %+v", d2.Waypoints[1].Position)
	}
	if !d2.Waypoints[0].Time.Equal(time.Date(2025, 4, 2, 10, 0, 30, 0, time.UTC)) {
		t.Errorf("Drone2 start time: %v", d2.Waypoints[0].Time)
	}
}
