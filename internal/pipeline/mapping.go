package pipeline

// BuildMapping produces the per-destination mixing rules for a mixer stage.
//
// With downmix set, every destination receives a contribution from every
// input channel at the given gain, which folds the inputs into each output.
// Without downmix, destinations and inputs are paired positionally at 0 dB;
// when the lists differ in length the shorter one determines how many
// mappings are produced.
//
// The result order follows destinations and the function is deterministic
// with no side effects.
func BuildMapping(destinations, inputChannels []int, downmix bool, gain float64) []Mapping {
	if downmix {
		mapping := make([]Mapping, 0, len(destinations))
		for _, dest := range destinations {
			sources := make([]MixSource, 0, len(inputChannels))
			for _, ch := range inputChannels {
				sources = append(sources, MixSource{Channel: ch, Gain: gain})
			}
			mapping = append(mapping, Mapping{Dest: dest, Sources: sources})
		}
		return mapping
	}

	n := len(destinations)
	if len(inputChannels) < n {
		n = len(inputChannels)
	}
	mapping := make([]Mapping, 0, n)
	for i := 0; i < n; i++ {
		mapping = append(mapping, Mapping{
			Dest:    destinations[i],
			Sources: []MixSource{{Channel: inputChannels[i]}},
		})
	}
	return mapping
}
