package service

import (
	"math"
	"strings"
	"time"

	"marstek2mqtt/internal/core/domain"
	"marstek2mqtt/pkg/marstek"
)

// SeedSnapshot builds a new snapshot from the primary (ES.GetStatus)
// query. Keys set here are never overwritten within the same cycle.
func SeedSnapshot(status *marstek.EnergyStatus) domain.Snapshot {
	snapshot := domain.Snapshot{}
	if status == nil {
		return snapshot
	}
	if status.BatterySoC != nil {
		snapshot[domain.KEY_BATTERY_SOC] = *status.BatterySoC
	}
	if status.BatteryCapacity != nil {
		snapshot[domain.KEY_BATTERY_CAPACITY] = *status.BatteryCapacity
	}
	if status.PVPower != nil {
		snapshot[domain.KEY_PV_POWER] = *status.PVPower
	}
	if status.OngridPower != nil {
		snapshot[domain.KEY_ONGRID_POWER] = *status.OngridPower
	}
	if status.OffgridPower != nil {
		snapshot[domain.KEY_OFFGRID_POWER] = *status.OffgridPower
	}
	if status.BatteryPower != nil {
		snapshot[domain.KEY_BATTERY_POWER] = *status.BatteryPower
	}
	if status.TotalPVEnergy != nil {
		snapshot[domain.KEY_TOTAL_PV_ENERGY] = *status.TotalPVEnergy
	}
	if status.TotalGridOutputEnergy != nil {
		snapshot[domain.KEY_TOTAL_GRID_OUTPUT_ENERGY] = *status.TotalGridOutputEnergy
	}
	if status.TotalGridInputEnergy != nil {
		snapshot[domain.KEY_TOTAL_GRID_INPUT_ENERGY] = *status.TotalGridInputEnergy
	}
	if status.TotalLoadEnergy != nil {
		snapshot[domain.KEY_TOTAL_LOAD_ENERGY] = *status.TotalLoadEnergy
	}
	return snapshot
}

// ApplyOperatingMode adds the mode name under its dedicated key.
func ApplyOperatingMode(snapshot domain.Snapshot, mode *marstek.OperatingMode) {
	if mode == nil || mode.Mode == nil {
		return
	}
	snapshot[domain.KEY_ES_MODE] = *mode.Mode
}

// MergeBatteryStatus merges Bat.GetStatus fields with fill-if-absent
// semantics: battery keys never override a key already set by the
// primary query. The pack SoC also backfills bat_soc.
func MergeBatteryStatus(snapshot domain.Snapshot, status *marstek.BatteryStatus) {
	if status == nil {
		return
	}
	if status.SoC != nil {
		snapshot.SetDefault(domain.KEY_BATTERY_SOC, *status.SoC)
		snapshot.SetDefault(domain.KEY_PACK_SOC, *status.SoC)
	}
	if status.ChargingFlag != nil {
		snapshot.SetDefault(domain.KEY_CHARGING_FLAG, *status.ChargingFlag)
	}
	if status.DischargeFlag != nil {
		snapshot.SetDefault(domain.KEY_DISCHARGE_FLAG, *status.DischargeFlag)
	}
	if status.Temperature != nil {
		snapshot.SetDefault(domain.KEY_BATTERY_TEMP, *status.Temperature)
	}
	if status.Voltage != nil {
		snapshot.SetDefault(domain.KEY_BATTERY_VOLTAGE, *status.Voltage)
	}
	if status.Current != nil {
		snapshot.SetDefault(domain.KEY_BATTERY_CURRENT, *status.Current)
	}
	if status.Capacity != nil {
		snapshot.SetDefault(domain.KEY_PACK_CAPACITY, *status.Capacity)
	}
	if status.RatedCapacity != nil {
		snapshot.SetDefault(domain.KEY_RATED_CAPACITY, *status.RatedCapacity)
	}
	if status.ErrorCode != nil {
		snapshot.SetDefault(domain.KEY_ERROR_CODE, *status.ErrorCode)
	}
}

// SmoothPower freezes small power fluctuations: for every numeric key
// denoting a power quantity, if the absolute delta against the previous
// committed value is strictly below minDelta, the previous value is
// kept.
func SmoothPower(snapshot, previous domain.Snapshot, minDelta float64) {
	if minDelta <= 0 || previous == nil {
		return
	}
	for key := range snapshot {
		if !strings.HasSuffix(key, "power") {
			continue
		}
		value, ok := snapshot.NumericValue(key)
		if !ok {
			continue
		}
		prev, ok := previous.NumericValue(key)
		if !ok {
			continue
		}
		if math.Abs(value-prev) < minDelta {
			snapshot[key] = previous[key]
		}
	}
}

// SnapshotCache holds the last committed snapshot, the smoothing
// baseline and the stale fallback. Only the poll orchestrator mutates
// it.
type SnapshotCache struct {
	last        domain.Snapshot
	lastSuccess time.Time
}

func (c *SnapshotCache) HasBaseline() bool {
	return c.last != nil
}

func (c *SnapshotCache) Baseline() domain.Snapshot {
	return c.last
}

func (c *SnapshotCache) LastSuccess() time.Time {
	return c.lastSuccess
}

// StaleCopy returns the previous snapshot unchanged except the stale
// flag.
func (c *SnapshotCache) StaleCopy() domain.Snapshot {
	snapshot := c.last.Clone()
	snapshot[domain.SNAPSHOT_KEY_STALE] = true
	return snapshot
}

// Commit stores the snapshot as the new baseline, clears the stale
// flag and stamps the success timestamp.
func (c *SnapshotCache) Commit(snapshot domain.Snapshot, now time.Time) domain.Snapshot {
	snapshot[domain.SNAPSHOT_KEY_STALE] = false
	snapshot[domain.SNAPSHOT_KEY_LAST_SUCCESS] = now.UTC().Format(time.RFC3339)
	c.last = snapshot
	c.lastSuccess = now
	return snapshot
}
