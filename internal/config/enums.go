package config

import (
	"fmt"
	"strings"
)

// Topology represents the speaker-channel layout driven by the pipeline.
type Topology string

const (
	TopologyMono        Topology = "Mono"
	TopologyStereo      Topology = "2.0"
	TopologyTwoPointOne Topology = "2.1"
	TopologyTwoPointTwo Topology = "2.2"
)

func (t Topology) IsValid() bool {
	switch t {
	case TopologyMono, TopologyStereo, TopologyTwoPointOne, TopologyTwoPointTwo:
		return true
	}
	return false
}

// Downmix reports whether input channels are folded to mono before
// distribution to the satellite channels.
func (t Topology) Downmix() bool {
	return t == TopologyMono
}

// SubwooferChannels returns the number of dedicated subwoofer playback
// channels the topology requires.
func (t Topology) SubwooferChannels() int {
	switch t {
	case TopologyTwoPointOne:
		return 1
	case TopologyTwoPointTwo:
		return 2
	}
	return 0
}

// InputSource represents the physical capture path feeding the pipeline.
type InputSource string

const (
	SourceStream InputSource = "Stream"
	SourcePhono  InputSource = "Phono"
)

func (s InputSource) IsValid() bool {
	switch s {
	case SourceStream, SourcePhono:
		return true
	}
	return false
}

// UsesLoopback reports whether the source captures from the fixed loopback
// device rather than sharing the playback hardware.
func (s InputSource) UsesLoopback() bool {
	return s == SourceStream
}

// Correction represents the room-correction mode paired with a topology.
type Correction string

const (
	CorrectionNone Correction = ""
	CorrectionDRC  Correction = "DRC"
)

func (c Correction) IsValid() bool {
	switch c {
	case CorrectionNone, CorrectionDRC:
		return true
	}
	return false
}

// ParseTopologyLabel splits a menu label such as "2.1 DRC" into its topology
// and correction parts. A label without a correction suffix maps to
// CorrectionNone.
func ParseTopologyLabel(label string) (Topology, Correction, error) {
	fields := strings.Fields(label)
	if len(fields) == 0 || len(fields) > 2 {
		return "", "", fmt.Errorf("malformed topology label %q", label)
	}
	topology := Topology(fields[0])
	if !topology.IsValid() {
		return "", "", fmt.Errorf("unknown topology %q in label %q", fields[0], label)
	}
	correction := CorrectionNone
	if len(fields) == 2 {
		correction = Correction(fields[1])
		if !correction.IsValid() {
			return "", "", fmt.Errorf("unknown correction mode %q in label %q", fields[1], label)
		}
	}
	return topology, correction, nil
}
