package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/GT-karny/GUI-TimelineTool/internal/config"
	"github.com/GT-karny/GUI-TimelineTool/internal/export"
	"github.com/GT-karny/GUI-TimelineTool/internal/playback"
	"github.com/GT-karny/GUI-TimelineTool/internal/project"
	"github.com/GT-karny/GUI-TimelineTool/internal/telemetry"
	"github.com/GT-karny/GUI-TimelineTool/internal/timeline"
	"github.com/GT-karny/GUI-TimelineTool/internal/udp"
)

func main() {
	projectPtr := flag.String("project", "", "Path to a project JSON file (empty: built-in demo timeline)")
	csvPtr := flag.String("csv", "", "Export the sampled timeline to this CSV path")
	ratePtr := flag.Float64("rate", 0, "Sample rate in Hz for export (0: the project's own rate)")
	settingsPtr := flag.String("telemetry-settings", "telemetry.yaml", "Path to the telemetry settings YAML")
	playPtr := flag.Bool("play", false, "Play the timeline once, streaming telemetry if enabled")
	fpsPtr := flag.Int("fps", 60, "Playback tick rate")
	speedPtr := flag.Float64("speed", 1.0, "Playback speed (negative plays in reverse)")
	listenPtr := flag.Int("listen", 0, "Listen for sync float packets on this UDP port instead of playing")

	flag.Parse()

	cfg := &config.Config{
		ProjectPath:  *projectPtr,
		CSVPath:      *csvPtr,
		SampleRateHz: *ratePtr,
		SettingsPath: *settingsPtr,
		PlayOnce:     *playPtr,
		PlaybackFPS:  *fpsPtr,
		Speed:        *speedPtr,
		ListenPort:   *listenPtr,
	}

	if cfg.ListenPort > 0 {
		if err := runListen(cfg); err != nil {
			log.Fatalf("[-] Listen error: %v", err)
		}
		return
	}

	tl, rate := loadTimeline(cfg)
	if cfg.SampleRateHz > 0 {
		rate = cfg.SampleRateHz
	}

	fmt.Printf("[*] Timeline: %.3fs | Tracks: %d | Rate: %.1f Hz\n", tl.DurationS, len(tl.Tracks), rate)
	for _, tr := range tl.Tracks {
		fmt.Printf("[*]   %-20s %-7s %d keys\n", tr.Name, tr.Interp, len(tr.Keys))
	}

	if cfg.CSVPath != "" {
		if err := export.CSV(cfg.CSVPath, tl, rate); err != nil {
			log.Fatalf("[-] CSV export error: %v", err)
		}
		fmt.Printf("[+] Exported: %s\n", cfg.CSVPath)
	}

	if cfg.PlayOnce {
		if err := runPlayback(cfg, tl); err != nil {
			log.Fatalf("[-] Playback error: %v", err)
		}
	}
}

func loadTimeline(cfg *config.Config) (*timeline.Timeline, float64) {
	if cfg.ProjectPath == "" {
		fmt.Println("[*] No project given, using demo timeline")
		return demoTimeline(), project.DefaultSampleRateHz
	}
	tl, rate, err := project.Load(cfg.ProjectPath)
	if err != nil {
		log.Fatalf("[-] Project load error: %v", err)
	}
	for _, tr := range tl.Tracks {
		tr.ClampTimes()
	}
	fmt.Printf("[*] Loaded project: %s\n", cfg.ProjectPath)
	return tl, rate
}

// demoTimeline builds a small two-track showcase curve.
func demoTimeline() *timeline.Timeline {
	tl := timeline.NewTimeline()
	tl.SetDuration(5)

	ease := tl.Track()
	ease.Name = "Ease"
	ease.Interp = timeline.InterpBezier
	k0 := timeline.NewKeyframe(0, 0)
	k0.HandleOut = &timeline.Handle{T: 5.0 / 3.0, V: 0}
	k1 := timeline.NewKeyframe(5, 1)
	k1.HandleIn = &timeline.Handle{T: 10.0 / 3.0, V: 1}
	ease.Keys = []*timeline.Keyframe{k0, k1}
	ease.ClampTimes()

	steps := timeline.NewTrackWithKeys("Steps", timeline.InterpStep, []*timeline.Keyframe{
		timeline.NewKeyframe(0, 0),
		timeline.NewKeyframe(2, 1),
		timeline.NewKeyframe(4, 2),
	})
	steps.ClampTimes()
	tl.AddTrack(steps)
	return tl
}

// runPlayback plays the timeline from start to end once, mirroring each
// playhead position into the telemetry bridge.
func runPlayback(cfg *config.Config, tl *timeline.Timeline) error {
	bridge, err := playback.NewBridge(cfg.SettingsPath)
	if err != nil {
		return err
	}
	defer bridge.Shutdown()

	if s := bridge.Settings(); s.Enabled {
		fmt.Printf("[*] Telemetry: %s:%d @ %d Hz\n", s.IP, s.Port, s.RateHz)
	} else {
		fmt.Println("[!] Telemetry disabled in settings; playing silently")
	}

	done := make(chan struct{})
	var frame int64
	player := playback.NewPlayer(tl, func(t float64) {
		frame++
		bridge.UpdateSnapshot(true, int64(t*1000), frame, telemetry.BuildTrackSamples(tl, t))
		// One full pass; the player itself would loop forever.
		if cfg.Speed >= 0 && t >= tl.DurationS-1.0/float64(cfg.PlaybackFPS) {
			select {
			case done <- struct{}{}:
			default:
			}
		}
	}, cfg.PlaybackFPS)
	player.SetSpeed(cfg.Speed)
	player.Play()
	defer player.Stop()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	wait := time.Duration(float64(time.Second) * tl.DurationS * 2)
	if cfg.Speed != 0 {
		wait = time.Duration(float64(time.Second) * tl.DurationS * 2 / absFloat(cfg.Speed))
	}
	select {
	case <-done:
		fmt.Println("[+] Playback finished")
	case <-interrupt:
		fmt.Println("[!] Interrupted")
	case <-time.After(wait):
		fmt.Println("[!] Playback timed out")
	}
	bridge.UpdateSnapshot(false, int64(tl.DurationS*1000), frame, telemetry.BuildTrackSamples(tl, tl.DurationS))
	return nil
}

// runListen prints sync float packets until interrupted.
func runListen(cfg *config.Config) error {
	recv := udp.NewReceiver(cfg.ListenPort, func(v float64) {
		fmt.Printf("[>] %.6f\n", v)
	})
	if err := recv.Start(); err != nil {
		return err
	}
	defer recv.Stop()
	fmt.Printf("[*] Listening on UDP :%d (Ctrl-C to stop)\n", recv.LocalPort())

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	<-interrupt
	return nil
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
