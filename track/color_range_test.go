package track

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorRangeValidate(t *testing.T) {
	require.NoError(t, TennisBallGreen.Validate())

	cases := []struct {
		name  string
		lower HSV
		upper HSV
	}{
		{"lower hue above upper", HSV{H: 70, S: 0, V: 0}, HSV{H: 60, S: 255, V: 255}},
		{"negative saturation", HSV{H: 0, S: -1, V: 0}, HSV{H: 60, S: 255, V: 255}},
		{"hue beyond opencv scale", HSV{H: 0, S: 0, V: 0}, HSV{H: 200, S: 255, V: 255}},
		{"value beyond byte", HSV{H: 0, S: 0, V: 0}, HSV{H: 10, S: 255, V: 256}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewColorRange(tc.lower, tc.upper)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidColorRange))
		})
	}
}

func TestColorRangeContainsInclusive(t *testing.T) {
	colors := TennisBallGreen
	assert.True(t, colors.Contains(HSV{H: 29, S: 86, V: 6}))
	assert.True(t, colors.Contains(HSV{H: 64, S: 255, V: 255}))
	assert.True(t, colors.Contains(HSV{H: 60, S: 255, V: 255}))
	assert.False(t, colors.Contains(HSV{H: 28, S: 200, V: 200}))
	assert.False(t, colors.Contains(HSV{H: 40, S: 85, V: 200}))
	assert.False(t, colors.Contains(HSV{H: 0, S: 0, V: 0}))
}
