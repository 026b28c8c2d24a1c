// Package display defines the collaborator that renders controller state
// and provides a logging implementation for headless operation.
package display

import (
	"fmt"

	"github.com/daverz/camilla-remote-control/pkg/logger"
)

// Display receives every user-visible state change from the controller.
// Implementations render it however they like (screen, log, status LED).
type Display interface {
	// ShowSelection reports the active topology and source menu labels.
	ShowSelection(topology, source string)
	// ShowVolume reports the live volume in dB.
	ShowVolume(db float64)
	// ShowMute reports the live mute flag.
	ShowMute(muted bool)
	// BlinkTick toggles the mute indicator; visible=true restores normal
	// rendering when the blink cycle ends.
	BlinkTick(visible bool)
	// ShowError reports a failed transition.
	ShowError(err error)
}

// FormatVolume renders a volume for display, one decimal place in a fixed
// width.
func FormatVolume(db float64) string {
	return fmt.Sprintf("%5.1f", db)
}

// Log is a Display that writes to the application log.
type Log struct{}

func (Log) ShowSelection(topology, source string) {
	logger.Info("display: %s / %s", topology, source)
}

func (Log) ShowVolume(db float64) {
	logger.Info("display: %s dB", FormatVolume(db))
}

func (Log) ShowMute(muted bool) {
	logger.Info("display: muted=%v", muted)
}

func (Log) BlinkTick(visible bool) {
	logger.Debug("display: blink visible=%v", visible)
}

func (Log) ShowError(err error) {
	logger.Error("display: %v", err)
}
