// Package catalog precomputes and validates every user-selectable pipeline
// description before the control surface becomes interactive.
package catalog

import (
	"fmt"
	"strings"

	"github.com/daverz/camilla-remote-control/internal/apperrors"
	"github.com/daverz/camilla-remote-control/internal/config"
	"github.com/daverz/camilla-remote-control/internal/pipeline"
	"github.com/daverz/camilla-remote-control/pkg/logger"
)

// Validator is the engine operation the catalog build depends on.
type Validator interface {
	ValidateConfig(d *pipeline.Description) error
}

// Key identifies one catalog entry by its literal menu labels.
type Key struct {
	Topology string
	Source   string
}

// Catalog maps every (topology, source) menu pair to a validated pipeline
// description. It is built once at startup and immutable afterwards; callers
// must not modify returned descriptions.
type Catalog struct {
	entries    map[Key]*pipeline.Description
	topologies []string
	sources    []string
}

// Build synthesizes and validates the full cross-product of the menu lists.
// Any synthesis or validation failure aborts the build: a broken combination
// must be caught before the first control action, so there is no partial
// result.
func Build(menu config.MenuConfig, audio config.AudioConfig, v Validator) (*Catalog, error) {
	c := &Catalog{
		entries:    make(map[Key]*pipeline.Description, len(menu.TopologyOptions)*len(menu.SourceOptions)),
		topologies: append([]string(nil), menu.TopologyOptions...),
		sources:    append([]string(nil), menu.SourceOptions...),
	}
	for _, topologyLabel := range menu.TopologyOptions {
		topology, correction, err := config.ParseTopologyLabel(topologyLabel)
		if err != nil {
			return nil, err
		}
		for _, sourceLabel := range menu.SourceOptions {
			desc := pipeline.Synthesize(pipeline.Params{
				Topology:         topology,
				Source:           config.InputSource(sourceLabel),
				Correction:       correction,
				PlaybackDevice:   audio.PlaybackDevice,
				PlaybackChannels: audio.PlaybackChannels,
				SampleRate:       audio.SampleRate,
				CrossoverHz:      audio.CrossoverHz,
				MainsDelayMs:     audio.MainsDelayMs,
				DRCFilterPath:    audio.DRCFilterPath,
			})
			if err := desc.Check(); err != nil {
				return nil, apperrors.Schema(fmt.Sprintf("inconsistent description for %s/%s", topologyLabel, sourceLabel)).Wrap(err)
			}
			if err := v.ValidateConfig(desc); err != nil {
				return nil, fmt.Errorf("validate %s/%s: %w", topologyLabel, sourceLabel, err)
			}
			c.entries[Key{Topology: topologyLabel, Source: sourceLabel}] = desc
			logger.Debug("catalog: validated %s/%s", topologyLabel, sourceLabel)
		}
	}
	logger.Info("catalog: built %d pipeline descriptions", len(c.entries))
	return c, nil
}

// Get returns the validated description for a menu pair. A miss is an
// invariant violation: the menu lists and the catalog keys are built from
// the same configuration, so an absent key is a programming error.
func (c *Catalog) Get(topology, source string) (*pipeline.Description, error) {
	desc, ok := c.entries[Key{Topology: topology, Source: source}]
	if !ok {
		return nil, apperrors.Invariant(fmt.Sprintf("no catalog entry for %s/%s", topology, source))
	}
	return desc, nil
}

// Topologies returns the topology menu labels in navigation order.
func (c *Catalog) Topologies() []string {
	return c.topologies
}

// Sources returns the source menu labels in navigation order.
func (c *Catalog) Sources() []string {
	return c.sources
}

// FileName returns the on-disk name of the pipeline file for a menu pair,
// used by the file-path loading mode.
func FileName(topology, source string) string {
	return fmt.Sprintf("%s-%s.yml", source, strings.ReplaceAll(topology, " ", "-"))
}
