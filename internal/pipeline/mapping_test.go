package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildMappingDownmix(t *testing.T) {
	mapping := BuildMapping([]int{0, 1}, []int{2, 3}, true, -6.0)

	assert.Len(t, mapping, 2)
	for i, m := range mapping {
		assert.Equal(t, i, m.Dest)
		assert.False(t, m.Mute)
		assert.Len(t, m.Sources, 2, "every destination receives every input")
		for j, src := range m.Sources {
			assert.Equal(t, j+2, src.Channel)
			assert.Equal(t, -6.0, src.Gain)
			assert.False(t, src.Inverted)
			assert.False(t, src.Mute)
		}
	}
}

func TestBuildMappingPassthrough(t *testing.T) {
	mapping := BuildMapping([]int{0, 1}, []int{2, 3}, false, 0.0)

	assert.Len(t, mapping, 2)
	for i, m := range mapping {
		assert.Equal(t, i, m.Dest)
		assert.Len(t, m.Sources, 1)
		assert.Equal(t, i+2, m.Sources[0].Channel)
		assert.Equal(t, 0.0, m.Sources[0].Gain)
	}
}

func TestBuildMappingLengthMismatch(t *testing.T) {
	tests := []struct {
		name         string
		destinations []int
		inputs       []int
		want         int
	}{
		{"more destinations", []int{0, 1, 2}, []int{0, 1}, 2},
		{"more inputs", []int{2}, []int{0, 1}, 1},
		{"empty destinations", nil, []int{0, 1}, 0},
		{"empty inputs", []int{0, 1}, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapping := BuildMapping(tt.destinations, tt.inputs, false, 0.0)
			assert.Len(t, mapping, tt.want, "the shorter list determines the mapping count")
		})
	}
}

func TestBuildMappingDownmixCounts(t *testing.T) {
	// N destinations x M inputs yields N mappings with M rules each.
	mapping := BuildMapping([]int{0, 1, 2}, []int{0, 1, 2, 3}, true, 0.0)
	assert.Len(t, mapping, 3)
	for _, m := range mapping {
		assert.Len(t, m.Sources, 4)
	}
}
