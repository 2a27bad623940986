package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollingAverage(t *testing.T) {
	t.Run("below minimum samples", func(t *testing.T) {
		assert.Nil(t, RollingAverage([]float64{1, 2}, 20, 5))
		assert.Nil(t, RollingAverage(nil, 20, 5))
	})

	t.Run("plain mean below the window", func(t *testing.T) {
		avg := RollingAverage([]float64{100, 200, 300, 400, 500}, 20, 5)
		require.NotNil(t, avg)
		assert.Equal(t, 300.0, *avg)
	})

	t.Run("windowed average on full history", func(t *testing.T) {
		// 25 samples, window 20: the first 5 must not count.
		values := make([]float64, 0, 25)
		for i := 0; i < 5; i++ {
			values = append(values, 1e9) // stale outliers
		}
		for i := 0; i < 20; i++ {
			values = append(values, 1000)
		}
		avg := RollingAverage(values, 20, 5)
		require.NotNil(t, avg)
		assert.Equal(t, 1000.0, *avg)
	})
}

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}))
}

func TestSafeRatio(t *testing.T) {
	assert.Equal(t, 2.5, SafeRatio(5, 2))
	assert.Equal(t, 0.0, SafeRatio(5, 0), "zero denominator reports 0, not Inf")
	assert.False(t, math.IsNaN(SafeRatio(0, 0)))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 5.0, Clamp(10, 0, 5))
	assert.Equal(t, 0.0, Clamp(-3, 0, 5))
	assert.Equal(t, 2.5, Clamp(2.5, 0, 5))
}
