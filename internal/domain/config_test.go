package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestValidateRanges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*FilterConfig)
	}{
		{"pixel size zero", func(c *FilterConfig) { c.PixelSize = 0 }},
		{"pixel size negative", func(c *FilterConfig) { c.PixelSize = -3 }},
		{"pixel size too large", func(c *FilterConfig) { c.PixelSize = 25 }},
		{"contrast too low", func(c *FilterConfig) { c.Contrast = -101 }},
		{"contrast too high", func(c *FilterConfig) { c.Contrast = 101 }},
		{"brightness too low", func(c *FilterConfig) { c.Brightness = -129 }},
		{"brightness too high", func(c *FilterConfig) { c.Brightness = 129 }},
		{"threshold negative", func(c *FilterConfig) { c.Threshold = -1 }},
		{"threshold too high", func(c *FilterConfig) { c.Threshold = 256 }},
		{"dot scale zero", func(c *FilterConfig) { c.DotScale = 0 }},
		{"dot scale negative", func(c *FilterConfig) { c.DotScale = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateDegenerateContrast(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Contrast = 259
	assert.ErrorIs(t, cfg.Validate(), ErrDegenerateContrast)
}

func TestModeRecognized(t *testing.T) {
	assert.True(t, ModeBayer.Recognized())
	assert.True(t, ModeThreshold.Recognized())
	assert.True(t, ModeHalftone.Recognized())
	assert.True(t, ModeStochastic.Recognized())
	assert.True(t, ModeFloydSteinberg.Recognized())
	assert.False(t, Mode("ordered").Recognized())
	assert.False(t, Mode("").Recognized())
}

func TestSuggestionEmpty(t *testing.T) {
	assert.True(t, Suggestion{}.Empty())

	px := 8
	assert.False(t, Suggestion{PixelSize: &px}.Empty())
}

func TestMergeEmptySuggestionIsNoOp(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, cfg, cfg.Merge(Suggestion{}))
}

func TestMergeAppliesFields(t *testing.T) {
	cfg := DefaultConfig()

	px := 6
	contrast := 40.0
	mode := ModeHalftone
	merged := cfg.Merge(Suggestion{PixelSize: &px, Contrast: &contrast, Mode: &mode})

	assert.Equal(t, 6, merged.PixelSize)
	assert.Equal(t, 40.0, merged.Contrast)
	assert.Equal(t, ModeHalftone, merged.Mode)
	// Untouched fields carry over.
	assert.Equal(t, cfg.Threshold, merged.Threshold)
	assert.Equal(t, cfg.ColorA, merged.ColorA)
}

func TestMergeClampsOutOfRange(t *testing.T) {
	cfg := DefaultConfig()

	px := 400
	contrast := -900.0
	threshold := 999.0
	merged := cfg.Merge(Suggestion{PixelSize: &px, Contrast: &contrast, Threshold: &threshold})

	assert.Equal(t, MaxPixelSize, merged.PixelSize)
	assert.Equal(t, float64(MinContrast), merged.Contrast)
	assert.Equal(t, float64(MaxThreshold), merged.Threshold)
}

func TestMergeIgnoresUnrecognizedMode(t *testing.T) {
	cfg := DefaultConfig()
	bogus := Mode("hexagonal")
	merged := cfg.Merge(Suggestion{Mode: &bogus})
	assert.Equal(t, cfg.Mode, merged.Mode)
}
