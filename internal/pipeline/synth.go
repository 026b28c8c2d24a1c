package pipeline

import (
	"fmt"

	"github.com/daverz/camilla-remote-control/internal/config"
)

// Fixed engine parameters shared by every synthesized description.
const (
	sampleFormat  = "S32LE"
	deviceType    = "Alsa"
	loopbackInput = "hw:Loopback,1"

	// volumeRampMs smooths volume changes on the always-present volume filter.
	volumeRampMs = 200.0
	// monoDownmixGain compensates for summing two channels into one.
	monoDownmixGain = -6.0
	// crossoverOrder is the Linkwitz-Riley order for both crossover legs.
	crossoverOrder = 8
)

// Params carries the selection and hardware inputs for one synthesis run.
type Params struct {
	Topology   config.Topology
	Source     config.InputSource
	Correction config.Correction

	PlaybackDevice   string
	PlaybackChannels int
	SampleRate       int
	CrossoverHz      int
	MainsDelayMs     float64
	DRCFilterPath    string
}

// MixerName returns the mixer identifier used inside the description,
// "{source}-{topology}".
func (p Params) MixerName() string {
	return fmt.Sprintf("%s-%s", p.Source, p.Topology)
}

// Synthesize produces a complete, self-consistent pipeline description for
// the given selection. It is deterministic and does not mutate its inputs.
//
// The satellite destinations are always channels 0 and 1. Subwoofer
// destinations, when the topology has any, start at channel 2. The streamed
// source captures from the fixed loopback device at offset 0; a direct
// source shares the playback hardware and captures at offset 2, past the
// playback passthrough channels.
func Synthesize(p Params) *Description {
	inputChannels := []int{0, 1}
	destinations := []int{0, 1}
	captureDevice := loopbackInput
	captureChannels := 2
	if !p.Source.UsesLoopback() {
		for i := range inputChannels {
			inputChannels[i] += 2
		}
		captureDevice = p.PlaybackDevice
		captureChannels = p.PlaybackChannels
	}

	d := &Description{
		Devices: Devices{
			AdjustPeriod: 10.0,
			Capture: CaptureDevice{
				Channels: captureChannels,
				Device:   captureDevice,
				Format:   sampleFormat,
				Type:     deviceType,
			},
			Chunksize:        8192,
			EnableRateAdjust: true,
			Playback: PlaybackDevice{
				Channels: p.PlaybackChannels,
				Device:   p.PlaybackDevice,
				Format:   sampleFormat,
				Type:     deviceType,
			},
			Queuelimit:    4,
			ResamplerType: "BalancedAsync",
			Samplerate:    p.SampleRate,
		},
		Mixers:  map[string]Mixer{},
		Filters: map[string]Filter{},
	}

	var mapping []Mapping
	if p.Topology.Downmix() {
		mapping = BuildMapping(destinations, inputChannels, true, monoDownmixGain)
	} else {
		mapping = BuildMapping(destinations, inputChannels, false, 0.0)
	}

	// The volume and balance filters are present in every topology so the
	// controller can always adjust them on the live description.
	d.Filters[VolumeFilter] = Filter{Volume: &VolumeParams{RampTime: volumeRampMs}}
	d.Filters[BalanceFilter0] = Filter{Gain: &GainParams{}}
	d.Filters[BalanceFilter1] = Filter{Gain: &GainParams{}}

	inputSteps := make([]Step, 0, len(inputChannels))
	for i, ch := range inputChannels {
		names := []string{VolumeFilter, fmt.Sprintf("balance%d", i)}
		if p.Correction == config.CorrectionDRC {
			name := fmt.Sprintf("drc_%d", i)
			d.Filters[name] = Filter{Conv: &ConvParams{
				Type:     "Wav",
				Filename: p.DRCFilterPath,
				Channel:  i,
			}}
			names = append(names, name)
		}
		inputSteps = append(inputSteps, Step{Filter: &FilterStep{Channel: ch, Names: names}})
	}
	d.Pipeline = append(d.Pipeline, inputSteps...)
	d.Pipeline = append(d.Pipeline, Step{Mixer: &MixerStep{Name: p.MixerName()}})

	if subs := p.Topology.SubwooferChannels(); subs > 0 {
		subDestinations := make([]int, 0, len(destinations))
		for _, ch := range destinations {
			subDestinations = append(subDestinations, ch+2)
		}
		var subMap []Mapping
		if subs == 1 {
			// Single physical subwoofer: collapse to one channel fed a mono
			// mix of both inputs.
			subDestinations = subDestinations[:1]
			subMap = BuildMapping(subDestinations, inputChannels, true, 0.0)
		} else {
			subMap = BuildMapping(subDestinations, inputChannels, false, 0.0)
		}
		mapping = append(mapping, subMap...)

		d.Filters[SubLowpass] = Filter{BiquadCombo: &BiquadComboParams{
			Type:  "LinkwitzRileyLowpass",
			Freq:  p.CrossoverHz,
			Order: crossoverOrder,
		}}
		d.Filters[MainsHighpass] = Filter{BiquadCombo: &BiquadComboParams{
			Type:  "LinkwitzRileyHighpass",
			Freq:  p.CrossoverHz,
			Order: crossoverOrder,
		}}
		d.Filters[MainsDelay] = Filter{Delay: &DelayParams{
			Delay: p.MainsDelayMs,
			Unit:  "ms",
		}}

		for _, ch := range destinations {
			d.Pipeline = append(d.Pipeline, Step{Filter: &FilterStep{
				Channel: ch,
				Names:   []string{MainsHighpass, MainsDelay},
			}})
		}
		for _, ch := range subDestinations {
			d.Pipeline = append(d.Pipeline, Step{Filter: &FilterStep{
				Channel: ch,
				Names:   []string{SubLowpass},
			}})
		}
	}

	d.Mixers[p.MixerName()] = Mixer{
		Channels: ChannelCount{In: captureChannels, Out: p.PlaybackChannels},
		Mapping:  mapping,
	}
	return d
}
