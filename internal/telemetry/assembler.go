package telemetry

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/GT-karny/GUI-TimelineTool/internal/interp"
	"github.com/GT-karny/GUI-TimelineTool/internal/timeline"
)

// payloadVersion identifies the wire format to receivers.
const payloadVersion = "1.0"

// TrackSample is one track's value at the playhead.
type TrackSample struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type payload struct {
	Version     string        `json:"version"`
	SessionID   string        `json:"session_id"`
	TimestampMs int64         `json:"timestamp_ms"`
	FrameIndex  int64         `json:"frame_index"`
	Tracks      []TrackSample `json:"tracks"`
}

// Assembler builds compact JSON telemetry payloads for one session.
type Assembler struct {
	SessionID string
}

// NewAssembler creates an assembler, generating a session ID when none is
// supplied.
func NewAssembler(sessionID string) *Assembler {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return &Assembler{SessionID: sessionID}
}

// BuildPayload converts a playhead position and track samples into the
// wire payload.
func (a *Assembler) BuildPayload(playheadMs, frameIndex int64, tracks []TrackSample) ([]byte, error) {
	if tracks == nil {
		tracks = []TrackSample{}
	}
	return json.Marshal(payload{
		Version:     payloadVersion,
		SessionID:   a.SessionID,
		TimestampMs: playheadMs,
		FrameIndex:  frameIndex,
		Tracks:      tracks,
	})
}

// BuildTrackSamples evaluates every track at the playhead through the
// interpolation engine.
func BuildTrackSamples(tl *timeline.Timeline, playheadS float64) []TrackSample {
	samples := make([]TrackSample, len(tl.Tracks))
	for i, tr := range tl.Tracks {
		samples[i] = TrackSample{
			Name:  tr.Name,
			Value: interp.Evaluate(tr, []float64{playheadS})[0],
		}
	}
	return samples
}
