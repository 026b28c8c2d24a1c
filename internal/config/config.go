// Package config handles application configuration management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server  ServerConfig
	Engine  EngineConfig
	Audio   AudioConfig
	Control ControlConfig
	Menu    MenuConfig
	// Debug enables debug logging
	Debug       bool
	Environment string
}

// ServerConfig holds the HTTP control surface configuration.
type ServerConfig struct {
	Address string
}

// EngineConfig holds the CamillaDSP websocket connection parameters.
type EngineConfig struct {
	Host string
	Port int
	// Timeout bounds each request/response round trip on the control socket
	Timeout time.Duration
}

// AudioConfig holds the hardware parameters the pipeline synthesizer needs.
type AudioConfig struct {
	// PlaybackDevice is the ALSA playback device shared by all topologies
	PlaybackDevice   string
	PlaybackChannels int
	SampleRate       int
	// CrossoverHz is the satellite/subwoofer split frequency
	CrossoverHz int
	// MainsDelayMs time-aligns the satellites with the subwoofer path
	MainsDelayMs float64
	// ConfigDir holds pipeline files and correction filter data
	ConfigDir string
	// DRCFilterPath is the correction filter waveform referenced per channel
	DRCFilterPath string
	// LoadFromFiles selects the file-path loading path (SetConfigPath+Reload)
	// instead of pushing synthesized descriptions over the socket
	LoadFromFiles bool
}

// ControlConfig holds the live control surface tuning values.
type ControlConfig struct {
	// VolumeStepDb is applied per volume or balance step
	VolumeStepDb float64
	// VolumeFloorDb is the lowest volume the controller will set
	VolumeFloorDb float64
	// BlinkPeriod is the mute indicator cycle
	BlinkPeriod time.Duration
}

// MenuConfig holds the user-selectable option lists. Order matters: cyclic
// navigation follows list order and the first entries are active at startup.
type MenuConfig struct {
	TopologyOptions []string
	SourceOptions   []string
}

// Load reads configuration from environment variables and validates the
// option lists.
func Load() (*Config, error) {
	configDir := getEnv("CAMILLACTL_CONFIG_DIR", expandHome("~/my-camilladsp-config"))
	cfg := &Config{
		Server: ServerConfig{
			Address: getEnv("CAMILLACTL_SERVER_ADDRESS", ":8090"),
		},
		Engine: EngineConfig{
			Host:    getEnv("CAMILLACTL_ENGINE_HOST", "127.0.0.1"),
			Port:    getEnvInt("CAMILLACTL_ENGINE_PORT", 31234),
			Timeout: 5 * time.Second,
		},
		Audio: AudioConfig{
			PlaybackDevice:   getEnv("CAMILLACTL_PLAYBACK_DEVICE", "hw:CARD=M4,DEV=0"),
			PlaybackChannels: getEnvInt("CAMILLACTL_PLAYBACK_CHANNELS", 4),
			SampleRate:       getEnvInt("CAMILLACTL_SAMPLERATE", 44100),
			CrossoverHz:      getEnvInt("CAMILLACTL_CROSSOVER_HZ", 80),
			MainsDelayMs:     getEnvFloat("CAMILLACTL_MAINS_DELAY_MS", 9.2),
			ConfigDir:        configDir,
			DRCFilterPath:    getEnv("CAMILLACTL_DRC_FILTER", filepath.Join(configDir, "filters/drc.wav")),
			LoadFromFiles:    getEnv("CAMILLACTL_LOAD_FROM_FILES", "") == "true",
		},
		Control: ControlConfig{
			VolumeStepDb:  0.5,
			VolumeFloorDb: -99.5,
			BlinkPeriod:   500 * time.Millisecond,
		},
		Menu: MenuConfig{
			TopologyOptions: getEnvList("CAMILLACTL_TOPOLOGIES", "2.1 DRC,2.1,2.0,Mono"),
			SourceOptions:   getEnvList("CAMILLACTL_SOURCES", "Stream,Phono"),
		},
		Debug:       getEnv("CAMILLACTL_DEBUG", "") == "true",
		Environment: getEnv("CAMILLACTL_ENV", "development"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate rejects configurations whose menu lists could never produce a
// valid catalog.
func (c *Config) validate() error {
	if len(c.Menu.TopologyOptions) == 0 || len(c.Menu.SourceOptions) == 0 {
		return fmt.Errorf("menu option lists must not be empty")
	}
	for _, label := range c.Menu.TopologyOptions {
		if _, _, err := ParseTopologyLabel(label); err != nil {
			return err
		}
	}
	for _, label := range c.Menu.SourceOptions {
		if !InputSource(label).IsValid() {
			return fmt.Errorf("unknown input source %q", label)
		}
	}
	if c.Audio.PlaybackChannels < 2 {
		return fmt.Errorf("playback channel count %d is below the stereo minimum", c.Audio.PlaybackChannels)
	}
	return nil
}

// getEnv returns the value of the environment variable key, or defaultValue if unset.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
