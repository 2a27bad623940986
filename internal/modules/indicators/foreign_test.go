package indicators

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/nugraha/bandarscope/internal/config"
	"github.com/nugraha/bandarscope/internal/domain"
)

func testDeriver() *Deriver {
	return New(config.DefaultThresholds(), zerolog.Nop())
}

func day(offset int) time.Time {
	return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func TestForeignStreak_StopsAtSignChange(t *testing.T) {
	d := testDeriver()

	// Most-recent-first: +5, +3, then a sign change.
	hist := []domain.FlowPoint{
		{Date: day(3), ForeignNetValue: 5},
		{Date: day(2), ForeignNetValue: 3},
		{Date: day(1), ForeignNetValue: -2},
		{Date: day(0), ForeignNetValue: 10},
	}

	streak := d.foreignStreak(hist)

	assert.Equal(t, domain.StreakBuy, streak.Direction)
	assert.Equal(t, 2, streak.Days, "streak must stop at the -2 day")
	assert.Equal(t, 8.0, streak.NetValue, "net must cover only the streak days")
	assert.Equal(t, domain.StreakStrengthWeak, streak.Strength)
}

func TestForeignStreak_StopsAtZero(t *testing.T) {
	d := testDeriver()

	hist := []domain.FlowPoint{
		{Date: day(2), ForeignNetValue: -4},
		{Date: day(1), ForeignNetValue: 0},
		{Date: day(0), ForeignNetValue: -9},
	}

	streak := d.foreignStreak(hist)

	assert.Equal(t, domain.StreakSell, streak.Direction)
	assert.Equal(t, 1, streak.Days)
	assert.Equal(t, -4.0, streak.NetValue)
	assert.Equal(t, domain.StreakStrengthNone, streak.Strength, "a single day is no streak")
}

func TestForeignStreak_StrengthBuckets(t *testing.T) {
	d := testDeriver()

	hist := make([]domain.FlowPoint, 0, 6)
	for i := 0; i < 6; i++ {
		hist = append(hist, domain.FlowPoint{Date: day(6 - i), ForeignNetValue: 1e9})
	}

	streak := d.foreignStreak(hist)

	assert.Equal(t, 6, streak.Days)
	assert.Equal(t, domain.StreakStrengthStrong, streak.Strength)
	assert.Equal(t, 6e9, streak.NetValue)
}

func TestForeignStreak_EmptyHistory(t *testing.T) {
	d := testDeriver()

	streak := d.foreignStreak(nil)

	assert.Equal(t, domain.StreakNone, streak.Direction)
	assert.Equal(t, 0, streak.Days)
}

func TestForeignFlow_PartitionsByMembership(t *testing.T) {
	d := testDeriver()

	activities := []domain.BrokerActivity{
		{Code: "YU", IsForeign: true, BuyVolume: 100, BuyValue: 2e9, SellVolume: 40, SellValue: 0.5e9},
		{Code: "PD", IsForeign: false, BuyVolume: 500, BuyValue: 9e9},
		{Code: "CS", IsForeign: true, SellVolume: 60, SellValue: 1e9},
	}

	flow := d.foreignFlow(activities)

	assert.Equal(t, 100.0, flow.BuyVolume)
	assert.Equal(t, 2e9, flow.BuyValue)
	assert.Equal(t, 100.0, flow.SellVolume)
	assert.Equal(t, 1.5e9, flow.SellValue)
	assert.Equal(t, 0.5e9, flow.NetValue, "domestic brokers must not leak into foreign flow")
}
