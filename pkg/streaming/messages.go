package streaming

import (
	"encoding/json"

	"github.com/skyward/deconflict/pkg/core"
)

// Message type constants matching the streaming protocol.
const (
	TypeBeginRun = "begin_run"
	TypeEndRun   = "end_run"
	TypeMission  = "mission"
	TypeConflict = "conflict"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// BeginRunPayload carries the run parameters.
type BeginRunPayload struct {
	StartedAt      string  `json:"startedAt"`
	SafetyDistance float64 `json:"safetyDistance"`
	SampleSteps    int     `json:"sampleSteps"`
}

// EndRunPayload carries the run's final counts.
type EndRunPayload struct {
	MissionCount  int     `json:"missionCount"`
	PairCount     int     `json:"pairCount"`
	ConflictCount int     `json:"conflictCount"`
	DurationMs    float64 `json:"durationMs"`
}

// NewBeginRunPayload builds the begin_run payload from a run summary.
func NewBeginRunPayload(s core.RunSummary) BeginRunPayload {
	return BeginRunPayload{
		StartedAt:      s.StartedAt.Format("2006-01-02 15:04:05"),
		SafetyDistance: s.SafetyDistance,
		SampleSteps:    s.SampleSteps,
	}
}

// NewEndRunPayload builds the end_run payload from a run summary.
func NewEndRunPayload(s core.RunSummary) EndRunPayload {
	return EndRunPayload{
		MissionCount:  s.MissionCount,
		PairCount:     s.PairCount,
		ConflictCount: s.ConflictCount,
		DurationMs:    s.Duration.Seconds() * 1000,
	}
}
