// Package control implements the live control state machine: it holds the
// active (topology, source) menu positions and mediates every control action
// against the catalog and the running engine.
package control

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/daverz/camilla-remote-control/internal/apperrors"
	"github.com/daverz/camilla-remote-control/internal/catalog"
	"github.com/daverz/camilla-remote-control/internal/config"
	"github.com/daverz/camilla-remote-control/internal/display"
	"github.com/daverz/camilla-remote-control/internal/pipeline"
	"github.com/daverz/camilla-remote-control/pkg/logger"
)

// Engine is the narrow view of the live engine the controller needs.
type Engine interface {
	SetConfig(d *pipeline.Description) error
	GetConfig() (*pipeline.Description, error)
	GetVolume() (float64, error)
	SetVolume(vol float64) error
	GetMute() (bool, error)
	SetMute(muted bool) error
	SetConfigPath(path string) error
	Reload() error
}

type balanceSide int

const (
	balanceLeft balanceSide = iota
	balanceRight
)

// Controller is the live control state machine. All transitions are
// serialized by its mutex: one action completes its engine round trip before
// the next starts, and blink ticks take the same lock so they never
// interleave a write.
type Controller struct {
	mu      sync.Mutex
	engine  Engine
	catalog *catalog.Catalog
	display display.Display
	control config.ControlConfig
	audio   config.AudioConfig

	topologyIdx  int
	sourceIdx    int
	blinker      *Blinker
	blinkVisible bool
}

// New creates a controller over a validated catalog. Call Activate before
// applying actions.
func New(engine Engine, cat *catalog.Catalog, disp display.Display, control config.ControlConfig, audio config.AudioConfig) *Controller {
	c := &Controller{
		engine:       engine,
		catalog:      cat,
		display:      disp,
		control:      control,
		audio:        audio,
		blinkVisible: true,
	}
	c.blinker = NewBlinker(control.BlinkPeriod, c.blinkStep)
	return c
}

// Activate pushes the first menu entries live and syncs the display. No
// action is accepted before this has succeeded.
func (c *Controller) Activate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadSelection(); err != nil {
		return err
	}
	return c.refreshVolume()
}

// Stop cancels the mute blink cycle if one is running.
func (c *Controller) Stop() {
	c.blinker.Stop()
}

// Apply performs one control action. Engine failures are surfaced to the
// caller and reported to the display; the locally tracked menu positions
// only advance on success.
func (c *Controller) Apply(a Action) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	switch a {
	case ActionVolumeUp:
		err = c.stepVolume(c.control.VolumeStepDb)
	case ActionVolumeDown:
		err = c.stepVolume(-c.control.VolumeStepDb)
	case ActionMuteToggle:
		err = c.toggleMute()
	case ActionTopologyNext:
		err = c.stepMenu(&c.topologyIdx, c.catalog.Topologies(), +1)
	case ActionTopologyPrev:
		err = c.stepMenu(&c.topologyIdx, c.catalog.Topologies(), -1)
	case ActionSourceNext:
		err = c.stepMenu(&c.sourceIdx, c.catalog.Sources(), +1)
	case ActionSourcePrev:
		err = c.stepMenu(&c.sourceIdx, c.catalog.Sources(), -1)
	case ActionBalanceLeft:
		err = c.stepBalance(balanceLeft)
	case ActionBalanceRight:
		err = c.stepBalance(balanceRight)
	case ActionTrackPlay, ActionTrackStop, ActionTrackNext, ActionTrackPrev,
		ActionMenu, ActionNavUp, ActionNavDown, ActionNavSelect, ActionNavExit:
		// Forwarded to external collaborators; no state change here.
		logger.Debug("unbound action %s", a)
	default:
		err = apperrors.InvalidInput(fmt.Sprintf("unknown action %d", a))
	}
	if err != nil {
		c.display.ShowError(err)
	}
	return err
}

// Status reports the current selection and the engine's live volume and
// mute state. Volume and mute are re-read from the engine on every call;
// the engine owns them.
type Status struct {
	Topology string  `json:"topology"`
	Source   string  `json:"source"`
	Volume   string  `json:"volume"`
	VolumeDb float64 `json:"volume_db"`
	Muted    bool    `json:"muted"`
}

// Status returns the current controller status.
func (c *Controller) Status() (Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	vol, err := c.engine.GetVolume()
	if err != nil {
		return Status{}, err
	}
	muted, err := c.engine.GetMute()
	if err != nil {
		return Status{}, err
	}
	return Status{
		Topology: c.catalog.Topologies()[c.topologyIdx],
		Source:   c.catalog.Sources()[c.sourceIdx],
		Volume:   display.FormatVolume(vol),
		VolumeDb: vol,
		Muted:    muted,
	}, nil
}

// stepVolume moves the live volume by delta, writing only when the stepped
// value stays within [floor, 0.0]; out-of-bounds steps are no-ops.
func (c *Controller) stepVolume(delta float64) error {
	vol, err := c.engine.GetVolume()
	if err != nil {
		return err
	}
	next := vol + delta
	if next <= 0.0 && next >= c.control.VolumeFloorDb {
		if err := c.engine.SetVolume(next); err != nil {
			return err
		}
		vol = next
	}
	c.display.ShowVolume(vol)
	return nil
}

func (c *Controller) refreshVolume() error {
	vol, err := c.engine.GetVolume()
	if err != nil {
		return err
	}
	c.display.ShowVolume(vol)
	return nil
}

// toggleMute flips the live mute flag and starts the blink cycle when the
// new state is muted.
func (c *Controller) toggleMute() error {
	muted, err := c.engine.GetMute()
	if err != nil {
		return err
	}
	if err := c.engine.SetMute(!muted); err != nil {
		return err
	}
	c.display.ShowMute(!muted)
	if !muted {
		c.blinkVisible = true
		c.blinker.Start()
	}
	return nil
}

// blinkStep is one blink period: while the engine reports muted it toggles
// the indicator; the first unmuted observation restores the display and
// stops the cycle. It runs under the controller mutex so it cannot
// interleave a transition's engine write.
func (c *Controller) blinkStep() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	muted, err := c.engine.GetMute()
	if err != nil {
		// A read failure ends the cycle; the next mute toggle restarts it.
		logger.Error("mute blink: %v", err)
		c.display.BlinkTick(true)
		return false
	}
	if !muted {
		c.blinkVisible = true
		c.display.BlinkTick(true)
		return false
	}
	c.blinkVisible = !c.blinkVisible
	c.display.BlinkTick(c.blinkVisible)
	return true
}

// stepMenu advances one of the cyclic menu positions and pushes the
// corresponding catalog entry live. The index only moves when the push
// succeeds.
func (c *Controller) stepMenu(idx *int, items []string, step int) error {
	next := (*idx + step + len(items)) % len(items)
	prev := *idx
	*idx = next
	if err := c.loadSelection(); err != nil {
		*idx = prev
		return err
	}
	return nil
}

// loadSelection pushes the description for the current menu positions live,
// replacing whatever was active, including any live balance adjustment.
func (c *Controller) loadSelection() error {
	topology := c.catalog.Topologies()[c.topologyIdx]
	source := c.catalog.Sources()[c.sourceIdx]
	if c.audio.LoadFromFiles {
		path := filepath.Join(c.audio.ConfigDir, catalog.FileName(topology, source))
		if err := c.engine.SetConfigPath(path); err != nil {
			return err
		}
		if err := c.engine.Reload(); err != nil {
			return err
		}
	} else {
		desc, err := c.catalog.Get(topology, source)
		if err != nil {
			return err
		}
		if err := c.engine.SetConfig(desc); err != nil {
			return err
		}
	}
	logger.Info("loaded %s / %s", topology, source)
	c.display.ShowSelection(topology, source)
	return nil
}

// stepBalance shifts the stereo balance by one step. Only one side ever
// holds a nonzero (negative) gain: the attenuated side eases back to center
// before the other side starts attenuating. Both gains are written back in a
// single read-modify-write of the live description.
func (c *Controller) stepBalance(side balanceSide) error {
	desc, err := c.engine.GetConfig()
	if err != nil {
		return err
	}
	f0, ok0 := desc.Filters[pipeline.BalanceFilter0]
	f1, ok1 := desc.Filters[pipeline.BalanceFilter1]
	if !ok0 || !ok1 || f0.Gain == nil || f1.Gain == nil {
		return apperrors.Invariant("active description has no balance filter pair")
	}
	g0, g1 := f0.Gain.Gain, f1.Gain.Gain
	step := c.control.VolumeStepDb
	switch side {
	case balanceLeft:
		if g0 == 0.0 {
			g1 -= step
		} else {
			g0 += step
			g1 = 0.0
		}
	case balanceRight:
		if g1 == 0.0 {
			g0 -= step
		} else {
			g1 += step
			g0 = 0.0
		}
	}
	f0.Gain.Gain = g0
	f1.Gain.Gain = g1
	logger.Debug("balance: %0.1f / %0.1f", g0, g1)
	return c.engine.SetConfig(desc)
}
