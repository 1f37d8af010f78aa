package service

import (
	"testing"
	"time"

	"marstek2mqtt/internal/core/domain"
	"marstek2mqtt/pkg/marstek"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int {
	return &v
}

func floatPtr(v float64) *float64 {
	return &v
}

func TestSeedSnapshotSkipsAbsentFields(t *testing.T) {

	assert := assert.New(t)

	snapshot := SeedSnapshot(&marstek.EnergyStatus{
		BatterySoC:   intPtr(50),
		BatteryPower: intPtr(430),
	})

	assert.Equal(50, snapshot[domain.KEY_BATTERY_SOC])
	assert.Equal(430, snapshot[domain.KEY_BATTERY_POWER])
	_, ok := snapshot[domain.KEY_PV_POWER]
	assert.False(ok, "absent fields are omitted, not zeroed")
}

func TestMergePrecedencePrimaryWins(t *testing.T) {

	assert := assert.New(t)

	snapshot := SeedSnapshot(&marstek.EnergyStatus{
		BatterySoC: intPtr(50),
	})
	MergeBatteryStatus(snapshot, &marstek.BatteryStatus{
		SoC:         intPtr(55),
		Temperature: floatPtr(26.5),
	})

	assert.Equal(50, snapshot[domain.KEY_BATTERY_SOC], "primary bat_soc wins")
	assert.Equal(55, snapshot[domain.KEY_PACK_SOC], "fallback-only key is still exposed")
	assert.Equal(26.5, snapshot[domain.KEY_BATTERY_TEMP], "battery fields fill absent keys")
}

func TestMergeBatteryFillsAbsentPrimaryKeys(t *testing.T) {

	assert := assert.New(t)

	// primary reply without SoC
	snapshot := SeedSnapshot(&marstek.EnergyStatus{
		BatteryPower: intPtr(120),
	})
	MergeBatteryStatus(snapshot, &marstek.BatteryStatus{
		SoC: intPtr(61),
	})

	assert.Equal(61, snapshot[domain.KEY_BATTERY_SOC], "fallback fills bat_soc when primary omitted it")
}

func TestApplyOperatingMode(t *testing.T) {

	assert := assert.New(t)

	snapshot := domain.Snapshot{}
	ApplyOperatingMode(snapshot, nil)
	_, ok := snapshot[domain.KEY_ES_MODE]
	assert.False(ok, "failed mode query omits the key")

	mode := marstek.MODE_PASSIVE
	ApplyOperatingMode(snapshot, &marstek.OperatingMode{Mode: &mode})
	assert.Equal(marstek.MODE_PASSIVE, snapshot[domain.KEY_ES_MODE])
}

func TestSmoothingFreezesSmallDeltas(t *testing.T) {

	assert := assert.New(t)

	previous := domain.Snapshot{domain.KEY_BATTERY_POWER: 100}

	snapshot := domain.Snapshot{domain.KEY_BATTERY_POWER: 103}
	SmoothPower(snapshot, previous, 5)
	assert.Equal(100, snapshot[domain.KEY_BATTERY_POWER], "delta below threshold is frozen")

	snapshot = domain.Snapshot{domain.KEY_BATTERY_POWER: 106}
	SmoothPower(snapshot, previous, 5)
	assert.Equal(106, snapshot[domain.KEY_BATTERY_POWER], "delta at/above threshold propagates")
}

func TestSmoothingOnlyTouchesPowerKeys(t *testing.T) {

	assert := assert.New(t)

	previous := domain.Snapshot{
		domain.KEY_BATTERY_SOC: 50,
		domain.KEY_ES_MODE:     "Auto",
	}
	snapshot := domain.Snapshot{
		domain.KEY_BATTERY_SOC: 51,
		domain.KEY_ES_MODE:     "Manual",
	}
	SmoothPower(snapshot, previous, 5)

	assert.Equal(51, snapshot[domain.KEY_BATTERY_SOC], "non-power numeric keys untouched")
	assert.Equal("Manual", snapshot[domain.KEY_ES_MODE], "string keys untouched")
}

func TestSmoothingDisabled(t *testing.T) {

	assert := assert.New(t)

	previous := domain.Snapshot{domain.KEY_BATTERY_POWER: 100}
	snapshot := domain.Snapshot{domain.KEY_BATTERY_POWER: 101}
	SmoothPower(snapshot, previous, 0)

	assert.Equal(101, snapshot[domain.KEY_BATTERY_POWER], "threshold 0 disables smoothing")
}

func TestCacheCommitAndStaleCopy(t *testing.T) {

	assert := assert.New(t)
	require := require.New(t)

	cache := &SnapshotCache{}
	require.False(cache.HasBaseline())

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	committed := cache.Commit(domain.Snapshot{domain.KEY_BATTERY_SOC: 40}, now)

	assert.Equal(false, committed[domain.SNAPSHOT_KEY_STALE])
	assert.Equal("2025-06-01T12:00:00Z", committed[domain.SNAPSHOT_KEY_LAST_SUCCESS])
	assert.Equal(now, cache.LastSuccess())
	require.True(cache.HasBaseline())

	stale := cache.StaleCopy()
	assert.Equal(40, stale[domain.KEY_BATTERY_SOC], "measurements carried over unchanged")
	assert.Equal(true, stale[domain.SNAPSHOT_KEY_STALE])
	assert.Equal("2025-06-01T12:00:00Z", stale[domain.SNAPSHOT_KEY_LAST_SUCCESS], "timestamp not restamped")

	// the stale copy must not alias the baseline
	stale[domain.KEY_BATTERY_SOC] = 0
	assert.Equal(40, cache.Baseline()[domain.KEY_BATTERY_SOC])
}
