package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Engine.Host)
	assert.Equal(t, 31234, cfg.Engine.Port)
	assert.Equal(t, "hw:CARD=M4,DEV=0", cfg.Audio.PlaybackDevice)
	assert.Equal(t, 4, cfg.Audio.PlaybackChannels)
	assert.Equal(t, 44100, cfg.Audio.SampleRate)
	assert.Equal(t, 80, cfg.Audio.CrossoverHz)
	assert.Equal(t, 9.2, cfg.Audio.MainsDelayMs)
	assert.Equal(t, 0.5, cfg.Control.VolumeStepDb)
	assert.Equal(t, -99.5, cfg.Control.VolumeFloorDb)
	assert.Equal(t, []string{"2.1 DRC", "2.1", "2.0", "Mono"}, cfg.Menu.TopologyOptions)
	assert.Equal(t, []string{"Stream", "Phono"}, cfg.Menu.SourceOptions)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CAMILLACTL_ENGINE_HOST", "10.0.0.5")
	t.Setenv("CAMILLACTL_PLAYBACK_CHANNELS", "6")
	t.Setenv("CAMILLACTL_MAINS_DELAY_MS", "4.5")
	t.Setenv("CAMILLACTL_TOPOLOGIES", "2.0, Mono")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", cfg.Engine.Host)
	assert.Equal(t, 6, cfg.Audio.PlaybackChannels)
	assert.Equal(t, 4.5, cfg.Audio.MainsDelayMs)
	assert.Equal(t, []string{"2.0", "Mono"}, cfg.Menu.TopologyOptions)
}

func TestLoadRejectsUnknownTopology(t *testing.T) {
	t.Setenv("CAMILLACTL_TOPOLOGIES", "2.0,7.1")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownSource(t *testing.T) {
	t.Setenv("CAMILLACTL_SOURCES", "Stream,Tape")
	_, err := Load()
	assert.Error(t, err)
}

func TestParseTopologyLabel(t *testing.T) {
	tests := []struct {
		label      string
		topology   Topology
		correction Correction
		wantErr    bool
	}{
		{"2.1 DRC", TopologyTwoPointOne, CorrectionDRC, false},
		{"2.1", TopologyTwoPointOne, CorrectionNone, false},
		{"2.0", TopologyStereo, CorrectionNone, false},
		{"Mono", TopologyMono, CorrectionNone, false},
		{"2.2 DRC", TopologyTwoPointTwo, CorrectionDRC, false},
		{"", "", "", true},
		{"7.1", "", "", true},
		{"2.1 EQ", "", "", true},
		{"2.1 DRC extra", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			topology, correction, err := ParseTopologyLabel(tt.label)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.topology, topology)
			assert.Equal(t, tt.correction, correction)
		})
	}
}

func TestTopologyProperties(t *testing.T) {
	assert.True(t, TopologyMono.Downmix())
	assert.False(t, TopologyStereo.Downmix())

	assert.Equal(t, 0, TopologyMono.SubwooferChannels())
	assert.Equal(t, 0, TopologyStereo.SubwooferChannels())
	assert.Equal(t, 1, TopologyTwoPointOne.SubwooferChannels())
	assert.Equal(t, 2, TopologyTwoPointTwo.SubwooferChannels())
}

func TestInputSourceProperties(t *testing.T) {
	assert.True(t, SourceStream.UsesLoopback())
	assert.False(t, SourcePhono.UsesLoopback())
	assert.False(t, InputSource("Tape").IsValid())
}
