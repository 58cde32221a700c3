// Package project saves and loads timeline projects as JSON. The on-disk
// shape mirrors the data model fields directly; handles serialize as
// two-element [t, v] arrays. Loading accepts both the multi-track format
// and the legacy single-track documents written by early versions.
package project

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/GT-karny/GUI-TimelineTool/internal/timeline"
)

// DefaultSampleRateHz is assumed when a project omits its export rate.
const DefaultSampleRateHz = 90.0

type projectDoc struct {
	DurationS    float64    `json:"duration_s"`
	SampleRateHz float64    `json:"sample_rate_hz"`
	Tracks       []trackDoc `json:"tracks,omitempty"`
	// Legacy single-track documents store one "track" object instead.
	Track *trackDoc `json:"track,omitempty"`
}

type trackDoc struct {
	Name   string   `json:"name"`
	Interp string   `json:"interp"`
	Keys   []keyDoc `json:"keys"`
}

type keyDoc struct {
	T         float64    `json:"t"`
	V         float64    `json:"v"`
	HandleIn  *[]float64 `json:"handle_in,omitempty"`
	HandleOut *[]float64 `json:"handle_out,omitempty"`
}

// Save writes the timeline and its export sample rate to path.
func Save(path string, tl *timeline.Timeline, sampleRateHz float64) error {
	doc := projectDoc{
		DurationS:    tl.DurationS,
		SampleRateHz: sampleRateHz,
		Tracks:       make([]trackDoc, len(tl.Tracks)),
	}
	for i, tr := range tl.Tracks {
		doc.Tracks[i] = encodeTrack(tr)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// Load reads a project file, returning the timeline and its sample rate.
func Load(path string) (*timeline.Timeline, float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}
	var doc projectDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, 0, fmt.Errorf("parse project %s: %w", path, err)
	}

	docs := doc.Tracks
	if len(docs) == 0 && doc.Track != nil {
		docs = []trackDoc{*doc.Track}
	}
	if len(docs) == 0 {
		return nil, 0, fmt.Errorf("project %s contains no tracks", path)
	}

	tl := &timeline.Timeline{}
	tl.SetDuration(doc.DurationS)
	for _, td := range docs {
		tr, err := decodeTrack(td)
		if err != nil {
			return nil, 0, err
		}
		tl.Tracks = append(tl.Tracks, tr)
	}

	rate := doc.SampleRateHz
	if rate <= 0 {
		rate = DefaultSampleRateHz
	}
	return tl, rate, nil
}

func encodeTrack(tr *timeline.Track) trackDoc {
	td := trackDoc{
		Name:   tr.Name,
		Interp: string(tr.Interp),
		Keys:   make([]keyDoc, len(tr.Keys)),
	}
	for i, k := range tr.Keys {
		kd := keyDoc{T: k.T, V: k.V}
		if k.HandleIn != nil {
			kd.HandleIn = &[]float64{k.HandleIn.T, k.HandleIn.V}
		}
		if k.HandleOut != nil {
			kd.HandleOut = &[]float64{k.HandleOut.T, k.HandleOut.V}
		}
		td.Keys[i] = kd
	}
	return td
}

func decodeTrack(td trackDoc) (*timeline.Track, error) {
	mode, err := timeline.ParseInterpMode(td.Interp)
	if err != nil {
		return nil, err
	}
	keys := make([]*timeline.Keyframe, len(td.Keys))
	for i, kd := range td.Keys {
		k := timeline.NewKeyframe(kd.T, kd.V)
		if k.HandleIn, err = decodeHandle(kd.HandleIn); err != nil {
			return nil, fmt.Errorf("track %q key %d: %w", td.Name, i, err)
		}
		if k.HandleOut, err = decodeHandle(kd.HandleOut); err != nil {
			return nil, fmt.Errorf("track %q key %d: %w", td.Name, i, err)
		}
		keys[i] = k
	}
	return timeline.NewTrackWithKeys(td.Name, mode, keys), nil
}

func decodeHandle(raw *[]float64) (*timeline.Handle, error) {
	if raw == nil {
		return nil, nil
	}
	if len(*raw) != 2 {
		return nil, fmt.Errorf("%w: expected [t, v], got %d elements", timeline.ErrMalformedHandle, len(*raw))
	}
	h, err := timeline.NewHandle((*raw)[0], (*raw)[1])
	if err != nil {
		return nil, err
	}
	return &h, nil
}
