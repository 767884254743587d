package model

import (
	"time"

	"gorm.io/datatypes"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&DetectionRun{},
	&MissionRecord{},
	&ConflictRecord{},
}

// DetectionRun is one execution of the conflict detector over a fleet.
type DetectionRun struct {
	ID             uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	StartedAt      time.Time `json:"startedAt" gorm:"type:timestamptz;index:idx_run_started_at"`
	SafetyDistance float64   `json:"safetyDistance"`
	SampleSteps    int       `json:"sampleSteps"`
	MissionCount   int       `json:"missionCount"`
	PairCount      int       `json:"pairCount"`
	ConflictCount  int       `json:"conflictCount"`
	DurationMs     float32   `json:"durationMs"`
}

func (*DetectionRun) TableName() string {
	return "detection_runs"
}

// MissionRecord is one drone's planned trajectory within a run.
// Path holds the XYZ flight path geometry; Waypoints keeps the raw
// timestamped waypoint list for lossless export.
type MissionRecord struct {
	ID            uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	RunID         uint           `json:"runId" gorm:"index:idx_mission_run_id"`
	Run           DetectionRun   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:RunID;"`
	DroneID       string         `json:"droneId" gorm:"size:64;index:idx_mission_drone_id"`
	WaypointCount int            `json:"waypointCount"`
	StartTime     time.Time      `json:"startTime" gorm:"type:timestamptz;"`
	EndTime       time.Time      `json:"endTime" gorm:"type:timestamptz;"`
	Path          GeomLineString `json:"path"`
	Waypoints     datatypes.JSON `json:"waypoints"`
}

func (*MissionRecord) TableName() string {
	return "mission_records"
}

// ConflictRecord is one detected proximity violation within a run.
type ConflictRecord struct {
	ID       uint         `json:"id" gorm:"primarykey;autoIncrement;"`
	RunID    uint         `json:"runId" gorm:"index:idx_conflict_run_id"`
	Run      DetectionRun `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:RunID;"`
	DroneA   string       `json:"droneA" gorm:"size:64;index:idx_conflict_drone_a"`
	DroneB   string       `json:"droneB" gorm:"size:64;index:idx_conflict_drone_b"`
	Location GeomPoint    `json:"location"` // Detecting drone's position at the sample instant
	Altitude float64      `json:"altitude"` // Z coordinate, duplicated for plain SQL queries
	Time     time.Time    `json:"time" gorm:"type:timestamptz;index:idx_conflict_time"`
	Reason   string       `json:"reason" gorm:"size:64"`
}

func (*ConflictRecord) TableName() string {
	return "conflict_records"
}
