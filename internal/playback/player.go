// Package playback drives the timeline over wall-clock time: a ticker-based
// player that reports playhead positions, and a bridge that forwards those
// positions to the telemetry sender on a fixed-rate schedule.
package playback

import (
	"math"
	"sync"
	"time"

	"github.com/GT-karny/GUI-TimelineTool/internal/timeline"
)

// Player advances a playhead through the timeline at a configurable fps,
// speed (negative = reverse) and optional loop range. The playhead position
// is reported through a callback; the player never touches track data.
type Player struct {
	mu          sync.Mutex
	timeline    *timeline.Timeline
	setPlayhead func(float64)

	fps     int
	speed   float64
	loop    *[2]float64
	origin  time.Time // zero while fully stopped
	offsetS float64   // timeline position at origin

	ticker *time.Ticker
	stop   chan struct{}
	done   chan struct{}
}

func NewPlayer(tl *timeline.Timeline, setPlayhead func(float64), fps int) *Player {
	if fps < 1 {
		fps = 60
	}
	return &Player{
		timeline:    tl,
		setPlayhead: setPlayhead,
		fps:         fps,
		speed:       1.0,
	}
}

func (p *Player) interval() time.Duration {
	return time.Second / time.Duration(p.fps)
}

// Play starts (or resumes) playback. After a pause, the time origin is
// kept, so the playhead continues from where wall time has advanced to.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.origin.IsZero() {
		p.origin = time.Now()
	}
	if p.ticker != nil {
		return
	}
	p.ticker = time.NewTicker(p.interval())
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go p.run(p.ticker, p.stop, p.done)
}

// Pause halts ticking but keeps the time origin.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

// Stop halts ticking and clears the origin; the next Play starts fresh.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.origin = time.Time{}
}

func (p *Player) stopLocked() {
	if p.ticker == nil {
		return
	}
	p.ticker.Stop()
	close(p.stop)
	p.ticker, p.stop = nil, nil
}

// Toggle pauses while playing and plays while paused.
func (p *Player) Toggle() {
	if p.IsPlaying() {
		p.Pause()
	} else {
		p.Play()
	}
}

func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ticker != nil
}

// SetFPS changes the tick rate, live if currently playing.
func (p *Player) SetFPS(fps int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if fps < 1 {
		fps = 1
	}
	p.fps = fps
	if p.ticker != nil {
		p.ticker.Reset(p.interval())
	}
}

// SetSpeed sets the playback rate; negative values play in reverse.
func (p *Player) SetSpeed(speed float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.speed = speed
}

// SetLoop installs a loop range. Invalid or empty ranges clear the loop.
func (p *Player) SetLoop(startS, endS float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if endS <= startS {
		p.loop = nil
		return
	}
	p.loop = &[2]float64{math.Max(0, startS), endS}
}

// ClearLoop removes any loop range.
func (p *Player) ClearLoop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loop = nil
}

// Seek jumps the playhead to t, playing or not.
func (p *Player) Seek(tS float64) {
	p.mu.Lock()
	p.offsetS = math.Max(0, tS)
	p.origin = time.Now()
	emit := p.setPlayhead
	t := p.offsetS
	p.mu.Unlock()
	if emit != nil {
		emit(t)
	}
}

func (p *Player) run(ticker *time.Ticker, stop, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

func (p *Player) tick() {
	p.mu.Lock()
	if p.origin.IsZero() {
		p.mu.Unlock()
		return
	}
	wall := time.Since(p.origin).Seconds()
	t := p.offsetS + wall*p.speed

	start, end := 0.0, p.timeline.DurationS
	if p.loop != nil {
		start, end = p.loop[0], p.loop[1]
	}
	length := math.Max(1e-6, end-start)

	// Wrap into [start, end); Mod keeps the dividend's sign, so shift
	// negative remainders back into range for reverse playback.
	rel := math.Mod(t-start, length)
	if rel < 0 {
		rel += length
	}
	tPlay := start + rel
	emit := p.setPlayhead
	p.mu.Unlock()

	if emit != nil {
		emit(tPlay)
	}
}
