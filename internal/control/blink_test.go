package control

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlinkerStopsWhenTickReturnsFalse(t *testing.T) {
	var ticks atomic.Int32
	b := NewBlinker(5*time.Millisecond, func() bool {
		return ticks.Add(1) < 3
	})
	b.Start()

	require.Eventually(t, func() bool { return !b.Running() }, time.Second, time.Millisecond)
	assert.Equal(t, int32(3), ticks.Load())
}

func TestBlinkerStartWhileRunningIsNoOp(t *testing.T) {
	var ticks atomic.Int32
	b := NewBlinker(5*time.Millisecond, func() bool {
		ticks.Add(1)
		return true
	})
	b.Start()
	b.Start()
	defer b.Stop()

	time.Sleep(40 * time.Millisecond)
	// A stacked second timer would roughly double the tick rate.
	assert.LessOrEqual(t, ticks.Load(), int32(10))
	assert.True(t, b.Running())
}

func TestBlinkerStopCancels(t *testing.T) {
	b := NewBlinker(5*time.Millisecond, func() bool { return true })
	b.Start()
	b.Stop()
	assert.False(t, b.Running())
	// Stopping twice must not panic.
	b.Stop()
}

func TestParseActionVocabulary(t *testing.T) {
	bound := map[string]Action{
		"vol_up":      ActionVolumeUp,
		"vol_down":    ActionVolumeDown,
		"mute":        ActionMuteToggle,
		"config_next": ActionTopologyNext,
		"config_prev": ActionTopologyPrev,
		"source_next": ActionSourceNext,
		"source_prev": ActionSourcePrev,
		"nav_left":    ActionBalanceLeft,
		"nav_right":   ActionBalanceRight,
	}
	for name, want := range bound {
		a, ok := ParseAction(name)
		require.True(t, ok, name)
		assert.Equal(t, want, a)
		assert.True(t, a.Bound(), name)
	}

	for _, name := range []string{"track_play", "nav_select", "menu", "nav_exit"} {
		a, ok := ParseAction(name)
		require.True(t, ok, name)
		assert.False(t, a.Bound(), name)
	}

	_, ok := ParseAction("warp_drive")
	assert.False(t, ok)
}
