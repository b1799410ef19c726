package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvert(t *testing.T) {
	assert.InDelta(t, 92.0, Convert(100, 0.92), 1e-9)
	assert.InDelta(t, 45.98, Convert(45.98, 1), 1e-9)
	assert.Zero(t, Convert(0, 1.3))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "$54.66", Format(54.6584, "$"))
	assert.Equal(t, "$10.00", Format(10, "$"))
	assert.Equal(t, "£0.13", Format(0.125, "£"))
}

func TestValidateRate(t *testing.T) {
	assert.NoError(t, ValidateRate(0.92))
	for _, rate := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		assert.ErrorIs(t, ValidateRate(rate), ErrInvalidRate)
	}
}
