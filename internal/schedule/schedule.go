// Package schedule loads drone flight schedules: waypoint lines from
// mission files, plus the built-in simulated traffic used for demo runs.
package schedule

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/skyward/deconflict/pkg/core"
)

// TimeLayout is the timestamp format used in waypoint lines.
const TimeLayout = "2006-01-02 15:04:05"

// ParseWaypointLine parses a waypoint in the form
// "x y z YYYY-MM-DD HH:MM:SS".
func ParseWaypointLine(line string) (core.Waypoint, error) {
	fields := strings.Fields(line)
	if len(fields) != 5 {
		return core.Waypoint{}, fmt.Errorf("expected 5 values (x y z YYYY-MM-DD HH:MM:SS), got %d", len(fields))
	}

	var coords [3]float64
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return core.Waypoint{}, fmt.Errorf("invalid coordinate %q: %w", fields[i], err)
		}
		coords[i] = v
	}

	ts, err := time.Parse(TimeLayout, fields[3]+" "+fields[4])
	if err != nil {
		return core.Waypoint{}, fmt.Errorf("invalid timestamp %q: %w", fields[3]+" "+fields[4], err)
	}

	return core.Waypoint{
		Position: core.Position3D{X: coords[0], Y: coords[1], Z: coords[2]},
		Time:     ts,
	}, nil
}

// ReadMissions parses a mission schedule file. Each mission starts with a
// "mission <droneID>" header followed by one waypoint line per row. Blank
// lines and lines starting with '#' are ignored.
func ReadMissions(r io.Reader) ([]core.Mission, error) {
	var missions []core.Mission
	var current *core.Mission

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if rest, ok := strings.CutPrefix(line, "mission "); ok {
			droneID := strings.TrimSpace(rest)
			if droneID == "" {
				return nil, fmt.Errorf("line %d: mission header without drone ID", lineNo)
			}
			missions = append(missions, *core.NewMission(droneID))
			current = &missions[len(missions)-1]
			continue
		}

		if current == nil {
			return nil, fmt.Errorf("line %d: waypoint before any mission header", lineNo)
		}

		wp, err := ParseWaypointLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		current.AddWaypoint(wp)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading schedule: %w", err)
	}

	return missions, nil
}

// LoadFile reads a mission schedule file from disk.
func LoadFile(path string) ([]core.Mission, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening schedule file: %w", err)
	}
	defer f.Close()

	missions, err := ReadMissions(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return missions, nil
}

// Simulated returns the built-in simulated flight schedules used when no
// other traffic is available.
func Simulated() []core.Mission {
	mission2 := core.NewMission("Drone2")
	mission2.AddWaypoint(core.Waypoint{Position: core.Position3D{X: 200, Y: 100, Z: 15}, Time: time.Date(2025, 4, 2, 10, 0, 30, 0, time.UTC)})
	mission2.AddWaypoint(core.Waypoint{Position: core.Position3D{X: 100, Y: 100, Z: 15}, Time: time.Date(2025, 4, 2, 10, 1, 0, 0, time.UTC)})
	mission2.AddWaypoint(core.Waypoint{Position: core.Position3D{X: 0, Y: 100, Z: 15}, Time: time.Date(2025, 4, 2, 10, 2, 0, 0, time.UTC)})
	mission2.AddWaypoint(core.Waypoint{Position: core.Position3D{X: 100, Y: 100, Z: 15}, Time: time.Date(2025, 4, 2, 10, 3, 0, 0, time.UTC)})

	mission3 := core.NewMission("Drone3")
	mission3.AddWaypoint(core.Waypoint{Position: core.Position3D{X: 50, Y: 0, Z: 12}, Time: time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)})
	mission3.AddWaypoint(core.Waypoint{Position: core.Position3D{X: 50, Y: 150, Z: 12}, Time: time.Date(2025, 4, 2, 10, 2, 0, 0, time.UTC)})
	mission3.AddWaypoint(core.Waypoint{Position: core.Position3D{X: 150, Y: 150, Z: 12}, Time: time.Date(2025, 4, 2, 10, 4, 0, 0, time.UTC)})

	mission4 := core.NewMission("Drone4")
	mission4.AddWaypoint(core.Waypoint{Position: core.Position3D{X: 0, Y: 200, Z: 20}, Time: time.Date(2025, 4, 2, 10, 1, 0, 0, time.UTC)})
	mission4.AddWaypoint(core.Waypoint{Position: core.Position3D{X: 100, Y: 200, Z: 20}, Time: time.Date(2025, 4, 2, 10, 3, 0, 0, time.UTC)})
	mission4.AddWaypoint(core.Waypoint{Position: core.Position3D{X: 200, Y: 200, Z: 20}, Time: time.Date(2025, 4, 2, 10, 5, 0, 0, time.UTC)})

	return []core.Mission{*mission2, *mission3, *mission4}
}
