package config

// Config carries the CLI's resolved options into the run functions.
type Config struct {
	ProjectPath  string
	CSVPath      string
	SampleRateHz float64
	SettingsPath string
	PlayOnce     bool
	PlaybackFPS  int
	Speed        float64
	ListenPort   int
}
