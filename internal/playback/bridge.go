package playback

import (
	"sync"
	"time"

	"github.com/GT-karny/GUI-TimelineTool/internal/telemetry"
	"github.com/GT-karny/GUI-TimelineTool/internal/udp"
)

// snapshot is the latest timeline state queued for transmission.
type snapshot struct {
	playheadMs int64
	frameIndex int64
	tracks     []telemetry.TrackSample
}

// Bridge schedules telemetry transmission at the configured rate. Playback
// pushes snapshots as fast as it ticks; the bridge sends the most recent
// one on each period deadline and skips deadlines it has already missed,
// so a stalled receiver never builds up a backlog.
type Bridge struct {
	settingsPath string
	assembler    *telemetry.Assembler
	sender       *udp.Sender

	mu           sync.Mutex
	settings     telemetry.Settings
	latest       *snapshot
	playing      bool
	periodNs     int64
	nextDeadline int64 // ns since base; 0 means unscheduled

	base   time.Time
	wakeup chan struct{}
	stop   chan struct{}
	done   chan struct{}
}

// NewBridge loads settings from settingsPath and starts the sender and the
// scheduling loop.
func NewBridge(settingsPath string) (*Bridge, error) {
	settings, err := telemetry.LoadSettings(settingsPath)
	if err != nil {
		return nil, err
	}
	b := &Bridge{
		settingsPath: settingsPath,
		settings:     settings,
		assembler:    telemetry.NewAssembler(settings.SessionID),
		sender:       udp.NewSender(udp.Endpoint{IP: settings.IP, Port: settings.Port}),
		periodNs:     periodNs(settings.RateHz),
		base:         time.Now(),
		wakeup:       make(chan struct{}, 1),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	b.sender.Start()
	go b.run()
	return b, nil
}

func periodNs(rateHz int) int64 {
	if rateHz < 1 {
		rateHz = 1
	}
	if rateHz > 240 {
		rateHz = 240
	}
	return int64(time.Second) / int64(rateHz)
}

// Settings returns the active configuration.
func (b *Bridge) Settings() telemetry.Settings {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.settings
}

// ApplySettings persists new settings, reconfigures the sender and resets
// the transmission schedule.
func (b *Bridge) ApplySettings(s telemetry.Settings) error {
	if err := telemetry.SaveSettings(b.settingsPath, s); err != nil {
		return err
	}
	updated, err := telemetry.LoadSettings(b.settingsPath)
	if err != nil {
		return err
	}
	b.sender.Reconfigure(udp.Endpoint{IP: updated.IP, Port: updated.Port})
	if updated.SessionID != "" {
		b.assembler.SessionID = updated.SessionID
	}

	b.mu.Lock()
	b.settings = updated
	b.periodNs = periodNs(updated.RateHz)
	b.nextDeadline = 0
	b.mu.Unlock()
	b.wake()
	return nil
}

// UpdateSnapshot stores the most recent playback state for background
// transmission.
func (b *Bridge) UpdateSnapshot(playing bool, playheadMs, frameIndex int64, tracks []telemetry.TrackSample) {
	b.mu.Lock()
	wasPlaying := b.playing
	b.playing = playing
	if !playing || !wasPlaying {
		b.nextDeadline = 0
	}
	b.latest = &snapshot{playheadMs: playheadMs, frameIndex: frameIndex, tracks: tracks}
	b.mu.Unlock()

	if wasPlaying != playing || !playing {
		b.wake()
	}
}

// Shutdown stops the scheduling loop and the sender.
func (b *Bridge) Shutdown() {
	close(b.stop)
	select {
	case <-b.done:
	case <-time.After(time.Second):
	}
	b.sender.Stop()
}

func (b *Bridge) wake() {
	select {
	case b.wakeup <- struct{}{}:
	default:
	}
}

func (b *Bridge) nowNs() int64 {
	return time.Since(b.base).Nanoseconds()
}

func (b *Bridge) run() {
	defer close(b.done)
	for {
		select {
		case <-b.stop:
			return
		default:
		}

		b.mu.Lock()
		active := b.playing && b.settings.Enabled && b.latest != nil
		period := b.periodNs
		deadline := b.nextDeadline
		b.mu.Unlock()

		if !active {
			b.wait(100 * time.Millisecond)
			continue
		}

		now := b.nowNs()
		if deadline == 0 {
			b.mu.Lock()
			b.nextDeadline = now + period
			b.mu.Unlock()
			continue
		}

		if now < deadline {
			remaining := deadline - now
			// Wake slightly early for longer waits; a final short spin
			// through the loop tightens the send instant.
			if remaining > 2*int64(time.Millisecond) {
				remaining -= int64(time.Millisecond)
			}
			b.wait(time.Duration(remaining))
			continue
		}

		b.mu.Lock()
		snap := b.latest
		b.mu.Unlock()
		if snap == nil {
			continue
		}

		payload, err := b.assembler.BuildPayload(snap.playheadMs, snap.frameIndex, snap.tracks)
		if err == nil {
			b.sender.Submit(payload)
		}

		sent := b.nowNs()
		deadline += period
		for deadline <= sent {
			deadline += period
		}
		b.mu.Lock()
		b.nextDeadline = deadline
		b.mu.Unlock()
	}
}

// wait blocks for d, a wakeup signal, or shutdown, whichever comes first.
func (b *Bridge) wait(d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-b.stop:
	case <-b.wakeup:
	case <-timer.C:
	}
}
