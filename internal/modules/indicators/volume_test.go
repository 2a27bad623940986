package indicators

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nugraha/bandarscope/internal/domain"
)

func volHist(values ...float64) []domain.VolumePoint {
	points := make([]domain.VolumePoint, 0, len(values))
	for i, v := range values {
		points = append(points, domain.VolumePoint{Date: day(i), TotalVolume: v})
	}
	return points
}

func flatHist(n int, v float64) []domain.VolumePoint {
	points := make([]domain.VolumePoint, 0, n)
	for i := 0; i < n; i++ {
		points = append(points, domain.VolumePoint{Date: day(i), TotalVolume: v})
	}
	return points
}

func TestVolumeAnalysis_InsufficientData(t *testing.T) {
	d := testDeriver()

	analysis := d.volumeAnalysis(5000, volHist(1000, 1000, 1000))

	assert.Equal(t, domain.VolumeInsufficientData, analysis.Signal)
	assert.Equal(t, 3, analysis.SampleCount)
	assert.Zero(t, analysis.Ratio)
}

func TestVolumeAnalysis_Bands(t *testing.T) {
	d := testDeriver()
	hist := flatHist(20, 1000) // rolling average is exactly 1000

	cases := []struct {
		today    float64
		signal   domain.VolumeSignal
		severity domain.Severity
	}{
		{1000, domain.VolumeNormal, domain.SeverityNone},
		{1499, domain.VolumeNormal, domain.SeverityNone},
		{1500, domain.VolumeStealthAccum, domain.SeverityModerate},
		{1999, domain.VolumeStealthAccum, domain.SeverityModerate},
		{2000, domain.VolumeStealthAccum, domain.SeverityHigh},
		{2999, domain.VolumeStealthAccum, domain.SeverityHigh},
		{3000, domain.VolumeBreakout, domain.SeverityNone},
		{0, domain.VolumeNormal, domain.SeverityNone},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("today=%.0f", tc.today), func(t *testing.T) {
			analysis := d.volumeAnalysis(tc.today, hist)
			assert.Equal(t, tc.signal, analysis.Signal)
			assert.Equal(t, tc.severity, analysis.Severity)
			assert.Equal(t, tc.today/1000, analysis.Ratio)
		})
	}
}

func TestVolumeAnalysis_ZeroHistoryIsDefined(t *testing.T) {
	d := testDeriver()

	// A dead-quiet history has a zero average; the ratio guard keeps the
	// result defined instead of dividing by zero.
	analysis := d.volumeAnalysis(5000, flatHist(20, 0))

	assert.Equal(t, domain.VolumeNormal, analysis.Signal)
	assert.Zero(t, analysis.Ratio)
}

func TestDryUp_AccumulatingPhase(t *testing.T) {
	d := testDeriver()

	// 10 loud days then 10 quiet days: reference mean 550, decay line
	// 385, so all 10 recent days are dry.
	hist := append(flatHist(10, 1000), flatHist(10, 100)...)

	analysis := d.dryUp(hist, 1.0)

	assert.Equal(t, domain.DryUpAccumulating, analysis.Phase)
	assert.Equal(t, 10, analysis.DryUpDays)
	assert.InDelta(t, 95, analysis.Confidence, 1e-9, "confidence caps at 95")
}

func TestDryUp_BreakoutConfirmation(t *testing.T) {
	d := testDeriver()
	hist := append(flatHist(10, 1000), flatHist(10, 100)...)

	analysis := d.dryUp(hist, 2.5)

	assert.Equal(t, domain.DryUpBreakout, analysis.Phase)
}

func TestDryUp_TooFewDryDays(t *testing.T) {
	d := testDeriver()

	// Steady volume: no day falls below 0.7x the mean.
	analysis := d.dryUp(flatHist(20, 1000), 1.0)

	assert.Equal(t, domain.DryUpNone, analysis.Phase)
	assert.Zero(t, analysis.DryUpDays)
}

func TestDryUp_ShortHistory(t *testing.T) {
	d := testDeriver()

	analysis := d.dryUp(flatHist(3, 100), 1.0)

	assert.Equal(t, domain.DryUpNone, analysis.Phase)
}

func TestBidAsk_StealthAccumulation(t *testing.T) {
	d := testDeriver()

	// Heavy buying into a falling price.
	analysis := d.bidAsk(3000, 1000, -2.0)

	assert.Equal(t, domain.BidAskStealthAccum, analysis.Signal)
	assert.Equal(t, 3.0, analysis.Ratio)
}

func TestBidAsk_HiddenSupport(t *testing.T) {
	d := testDeriver()

	analysis := d.bidAsk(1300, 1000, 0.5)

	assert.Equal(t, domain.BidAskHiddenSupport, analysis.Signal)
}

func TestBidAsk_Distribution(t *testing.T) {
	d := testDeriver()

	// Sell-side imbalance past the reciprocal threshold while price
	// holds flat.
	analysis := d.bidAsk(600, 1000, 0.2)

	assert.Equal(t, domain.BidAskDistribution, analysis.Signal)
}

func TestBidAsk_NeutralInBetween(t *testing.T) {
	d := testDeriver()

	analysis := d.bidAsk(1100, 1000, 3.0)

	assert.Equal(t, domain.BidAskNeutral, analysis.Signal)
}

func TestBidAsk_ZeroSellVolume(t *testing.T) {
	d := testDeriver()

	// No sellers at all: the ratio is undefined (reported as 0) but the
	// day still classifies by price direction.
	analysis := d.bidAsk(2000, 0, -2.0)
	assert.Zero(t, analysis.Ratio)
	assert.Equal(t, domain.BidAskStealthAccum, analysis.Signal)

	flat := d.bidAsk(2000, 0, 0.0)
	assert.Equal(t, domain.BidAskHiddenSupport, flat.Signal)

	empty := d.bidAsk(0, 0, 0.0)
	assert.Equal(t, domain.BidAskNeutral, empty.Signal)
}
