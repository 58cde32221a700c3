package telemetry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GT-karny/GUI-TimelineTool/internal/timeline"
)

func TestLoadSettingsMissingFileYieldsDefaults(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
	assert.False(t, s.Enabled)
	assert.Equal(t, "127.0.0.1", s.IP)
	assert.Equal(t, 9000, s.Port)
	assert.Equal(t, 90, s.RateHz)
}

func TestSettingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.yaml")
	in := Settings{Enabled: true, IP: "192.168.1.20", Port: 9100, RateHz: 60, SessionID: "abc"}
	require.NoError(t, SaveSettings(path, in))

	out, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSettingsClampedOnLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.yaml")
	doc := "enabled: true\nip: \"\"\nport: 99999\nrate_hz: 0\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", s.IP)
	assert.Equal(t, 65535, s.Port)
	assert.Equal(t, 1, s.RateHz)
}

func TestSettingsClampedOnSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.yaml")
	require.NoError(t, SaveSettings(path, Settings{Port: -1, RateHz: 1000}))

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Port)
	assert.Equal(t, 240, s.RateHz)
}

func TestLoadSettingsRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml: ["), 0644))

	s, err := LoadSettings(path)
	assert.Error(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestNewAssemblerGeneratesSessionID(t *testing.T) {
	a := NewAssembler("")
	assert.NotEmpty(t, a.SessionID)
	b := NewAssembler("")
	assert.NotEqual(t, a.SessionID, b.SessionID)

	c := NewAssembler("fixed")
	assert.Equal(t, "fixed", c.SessionID)
}

func TestBuildPayloadShape(t *testing.T) {
	a := NewAssembler("session-1")
	data, err := a.BuildPayload(1500, 135, []TrackSample{
		{Name: "Ease", Value: 0.5},
		{Name: "Steps", Value: 2},
	})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "1.0", got["version"])
	assert.Equal(t, "session-1", got["session_id"])
	assert.Equal(t, float64(1500), got["timestamp_ms"])
	assert.Equal(t, float64(135), got["frame_index"])

	tracks, ok := got["tracks"].([]any)
	require.True(t, ok)
	require.Len(t, tracks, 2)
	first := tracks[0].(map[string]any)
	assert.Equal(t, "Ease", first["name"])
	assert.Equal(t, 0.5, first["value"])
}

func TestBuildPayloadNilTracksEncodesEmptyArray(t *testing.T) {
	a := NewAssembler("s")
	data, err := a.BuildPayload(0, 0, nil)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"tracks":[]`)
}

func TestBuildTrackSamples(t *testing.T) {
	tl := timeline.NewTimeline()
	tl.SetDuration(2)
	tl.Tracks = []*timeline.Track{
		timeline.NewTrackWithKeys("ramp", timeline.InterpLinear, []*timeline.Keyframe{
			timeline.NewKeyframe(0, 0),
			timeline.NewKeyframe(2, 4),
		}),
		timeline.NewTrackWithKeys("hold", timeline.InterpStep, []*timeline.Keyframe{
			timeline.NewKeyframe(0, 7),
		}),
	}

	samples := BuildTrackSamples(tl, 1.0)
	require.Len(t, samples, 2)
	assert.Equal(t, "ramp", samples[0].Name)
	assert.InDelta(t, 2.0, samples[0].Value, 1e-12)
	assert.Equal(t, 7.0, samples[1].Value)
}
