// Package pipeline defines the typed model of a CamillaDSP pipeline
// description and synthesizes complete descriptions from high-level
// topology, source and correction choices.
//
// The engine's wire format is a loosely structured YAML document; this
// package confines it to a single marshal/unmarshal boundary so everything
// above it works with typed records.
package pipeline

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Well-known filter names the synthesizer provisions and the controller
// manipulates at runtime.
const (
	VolumeFilter   = "volume"
	BalanceFilter0 = "balance0"
	BalanceFilter1 = "balance1"
	SubLowpass     = "sublowpass"
	MainsHighpass  = "mainshighpass"
	MainsDelay     = "mainsdelay"
)

// Description is a complete pipeline document: device block, named mixers,
// filter bank and ordered processing steps.
type Description struct {
	Devices  Devices           `yaml:"devices"`
	Mixers   map[string]Mixer  `yaml:"mixers,omitempty"`
	Filters  map[string]Filter `yaml:"filters,omitempty"`
	Pipeline []Step            `yaml:"pipeline,omitempty"`
}

// Devices describes the capture and playback endpoints plus buffering
// parameters.
type Devices struct {
	AdjustPeriod      float64        `yaml:"adjust_period"`
	Capture           CaptureDevice  `yaml:"capture"`
	CaptureSamplerate int            `yaml:"capture_samplerate"`
	Chunksize         int            `yaml:"chunksize"`
	EnableRateAdjust  bool           `yaml:"enable_rate_adjust"`
	EnableResampling  bool           `yaml:"enable_resampling"`
	Playback          PlaybackDevice `yaml:"playback"`
	Queuelimit        int            `yaml:"queuelimit"`
	ResamplerType     string         `yaml:"resampler_type"`
	Samplerate        int            `yaml:"samplerate"`
	SilenceThreshold  float64        `yaml:"silence_threshold"`
	SilenceTimeout    float64        `yaml:"silence_timeout"`
	TargetLevel       int            `yaml:"target_level"`
}

// CaptureDevice identifies the ALSA capture endpoint.
type CaptureDevice struct {
	AvoidBlockingRead bool   `yaml:"avoid_blocking_read"`
	Channels          int    `yaml:"channels"`
	Device            string `yaml:"device"`
	Format            string `yaml:"format"`
	RetryOnError      bool   `yaml:"retry_on_error"`
	Type              string `yaml:"type"`
}

// PlaybackDevice identifies the ALSA playback endpoint.
type PlaybackDevice struct {
	Channels int    `yaml:"channels"`
	Device   string `yaml:"device"`
	Format   string `yaml:"format"`
	Type     string `yaml:"type"`
}

// Mixer routes capture channels to playback channels.
type Mixer struct {
	Channels ChannelCount `yaml:"channels"`
	Mapping  []Mapping    `yaml:"mapping"`
}

// ChannelCount declares a mixer's input and output widths.
type ChannelCount struct {
	In  int `yaml:"in"`
	Out int `yaml:"out"`
}

// Mapping collects the source contributions feeding one destination channel.
type Mapping struct {
	Dest    int         `yaml:"dest"`
	Mute    bool        `yaml:"mute"`
	Sources []MixSource `yaml:"sources"`
}

// MixSource is one contribution from a source channel into a destination.
type MixSource struct {
	Channel  int     `yaml:"channel"`
	Gain     float64 `yaml:"gain"`
	Inverted bool    `yaml:"inverted"`
	Mute     bool    `yaml:"mute"`
}

// Filter is a tagged union over the filter kinds the controller works with.
// Exactly one variant is set. Kinds outside the known set round-trip through
// Other so a live description read from the engine is never mangled.
type Filter struct {
	Volume      *VolumeParams
	Gain        *GainParams
	Conv        *ConvParams
	BiquadCombo *BiquadComboParams
	Delay       *DelayParams
	Other       *GenericFilter
}

// VolumeParams configures the global volume filter.
type VolumeParams struct {
	RampTime float64 `yaml:"ramp_time"`
}

// GainParams configures a static gain filter.
type GainParams struct {
	Gain     float64 `yaml:"gain"`
	Inverted bool    `yaml:"inverted,omitempty"`
	Mute     bool    `yaml:"mute,omitempty"`
}

// ConvParams configures a convolution filter referencing external filter
// data by file path and channel.
type ConvParams struct {
	Type     string `yaml:"type"`
	Filename string `yaml:"filename"`
	Channel  int    `yaml:"channel"`
}

// BiquadComboParams configures a combined biquad filter such as a
// Linkwitz-Riley crossover leg.
type BiquadComboParams struct {
	Type  string `yaml:"type"`
	Freq  int    `yaml:"freq"`
	Order int    `yaml:"order"`
}

// DelayParams configures a pure delay filter.
type DelayParams struct {
	Delay     float64 `yaml:"delay"`
	Unit      string  `yaml:"unit"`
	Subsample bool    `yaml:"subsample"`
}

// GenericFilter preserves filter kinds this package does not model.
type GenericFilter struct {
	Type       string
	Parameters map[string]interface{}
}

type filterDoc struct {
	Type       string      `yaml:"type"`
	Parameters interface{} `yaml:"parameters,omitempty"`
}

// MarshalYAML renders the set variant in the engine's {type, parameters}
// shape.
func (f Filter) MarshalYAML() (interface{}, error) {
	switch {
	case f.Volume != nil:
		return filterDoc{Type: "Volume", Parameters: f.Volume}, nil
	case f.Gain != nil:
		return filterDoc{Type: "Gain", Parameters: f.Gain}, nil
	case f.Conv != nil:
		return filterDoc{Type: "Conv", Parameters: f.Conv}, nil
	case f.BiquadCombo != nil:
		return filterDoc{Type: "BiquadCombo", Parameters: f.BiquadCombo}, nil
	case f.Delay != nil:
		return filterDoc{Type: "Delay", Parameters: f.Delay}, nil
	case f.Other != nil:
		return filterDoc{Type: f.Other.Type, Parameters: f.Other.Parameters}, nil
	}
	return nil, fmt.Errorf("filter has no variant set")
}

// UnmarshalYAML dispatches on the wire document's type tag.
func (f *Filter) UnmarshalYAML(value *yaml.Node) error {
	var head struct {
		Type       string    `yaml:"type"`
		Parameters yaml.Node `yaml:"parameters"`
	}
	if err := value.Decode(&head); err != nil {
		return err
	}
	decode := func(out interface{}) error {
		if head.Parameters.Kind == 0 {
			return nil
		}
		return head.Parameters.Decode(out)
	}
	switch head.Type {
	case "Volume":
		f.Volume = &VolumeParams{}
		return decode(f.Volume)
	case "Gain":
		f.Gain = &GainParams{}
		return decode(f.Gain)
	case "Conv":
		f.Conv = &ConvParams{}
		return decode(f.Conv)
	case "BiquadCombo":
		f.BiquadCombo = &BiquadComboParams{}
		return decode(f.BiquadCombo)
	case "Delay":
		f.Delay = &DelayParams{}
		return decode(f.Delay)
	default:
		f.Other = &GenericFilter{Type: head.Type}
		return decode(&f.Other.Parameters)
	}
}

// Step is a tagged union over pipeline step kinds. Exactly one variant is
// set.
type Step struct {
	Filter *FilterStep
	Mixer  *MixerStep
	Other  map[string]interface{}
}

// FilterStep applies named filters to one channel.
type FilterStep struct {
	Channel int
	Names   []string
}

// MixerStep applies a named mixer.
type MixerStep struct {
	Name string
}

type filterStepDoc struct {
	Type    string   `yaml:"type"`
	Channel int      `yaml:"channel"`
	Names   []string `yaml:"names"`
}

type mixerStepDoc struct {
	Type string `yaml:"type"`
	Name string `yaml:"name"`
}

// MarshalYAML renders the set variant as a flat step document.
func (s Step) MarshalYAML() (interface{}, error) {
	switch {
	case s.Filter != nil:
		return filterStepDoc{Type: "Filter", Channel: s.Filter.Channel, Names: s.Filter.Names}, nil
	case s.Mixer != nil:
		return mixerStepDoc{Type: "Mixer", Name: s.Mixer.Name}, nil
	case s.Other != nil:
		return s.Other, nil
	}
	return nil, fmt.Errorf("pipeline step has no variant set")
}

// UnmarshalYAML dispatches on the step's type tag.
func (s *Step) UnmarshalYAML(value *yaml.Node) error {
	var head struct {
		Type string `yaml:"type"`
	}
	if err := value.Decode(&head); err != nil {
		return err
	}
	switch head.Type {
	case "Filter":
		var doc filterStepDoc
		if err := value.Decode(&doc); err != nil {
			return err
		}
		s.Filter = &FilterStep{Channel: doc.Channel, Names: doc.Names}
	case "Mixer":
		var doc mixerStepDoc
		if err := value.Decode(&doc); err != nil {
			return err
		}
		s.Mixer = &MixerStep{Name: doc.Name}
	default:
		return value.Decode(&s.Other)
	}
	return nil
}

// MarshalWire serializes a description to the engine's YAML wire format.
func (d *Description) MarshalWire() (string, error) {
	out, err := yaml.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("marshal pipeline description: %w", err)
	}
	return string(out), nil
}

// UnmarshalWire parses a description from the engine's YAML wire format.
func UnmarshalWire(doc string) (*Description, error) {
	var d Description
	if err := yaml.Unmarshal([]byte(doc), &d); err != nil {
		return nil, fmt.Errorf("unmarshal pipeline description: %w", err)
	}
	return &d, nil
}

// Check verifies the description's internal invariants: every filter and
// mixer name referenced by a step exists, and every referenced channel is
// within the declared width of its stage. It is a cheap local complement to
// the engine's own validation.
func (d *Description) Check() error {
	preMix := true
	for i, step := range d.Pipeline {
		switch {
		case step.Mixer != nil:
			mixer, ok := d.Mixers[step.Mixer.Name]
			if !ok {
				return fmt.Errorf("step %d references unknown mixer %q", i, step.Mixer.Name)
			}
			if mixer.Channels.In != d.Devices.Capture.Channels {
				return fmt.Errorf("mixer %q input width %d does not match capture channels %d",
					step.Mixer.Name, mixer.Channels.In, d.Devices.Capture.Channels)
			}
			if mixer.Channels.Out != d.Devices.Playback.Channels {
				return fmt.Errorf("mixer %q output width %d does not match playback channels %d",
					step.Mixer.Name, mixer.Channels.Out, d.Devices.Playback.Channels)
			}
			for _, m := range mixer.Mapping {
				if m.Dest >= mixer.Channels.Out {
					return fmt.Errorf("mixer %q maps destination %d beyond output width %d",
						step.Mixer.Name, m.Dest, mixer.Channels.Out)
				}
				if len(m.Sources) == 0 && !m.Mute {
					return fmt.Errorf("mixer %q destination %d has no sources and is not muted",
						step.Mixer.Name, m.Dest)
				}
				for _, src := range m.Sources {
					if src.Channel >= mixer.Channels.In {
						return fmt.Errorf("mixer %q destination %d reads source channel %d beyond input width %d",
							step.Mixer.Name, m.Dest, src.Channel, mixer.Channels.In)
					}
				}
			}
			preMix = false
		case step.Filter != nil:
			width := d.Devices.Playback.Channels
			if preMix {
				width = d.Devices.Capture.Channels
			}
			if step.Filter.Channel >= width {
				return fmt.Errorf("step %d filters channel %d beyond stage width %d", i, step.Filter.Channel, width)
			}
			for _, name := range step.Filter.Names {
				if _, ok := d.Filters[name]; !ok {
					return fmt.Errorf("step %d references unknown filter %q", i, name)
				}
			}
		}
	}
	return nil
}
