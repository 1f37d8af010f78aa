package domain

import "errors"

// ErrUpdateFailed is the only poll error surfaced to consumers: the
// primary query failed and no previous snapshot exists to fall back on.
var ErrUpdateFailed = errors.New("snapshot update failed: no valid response from device (ES.GetStatus)")

// Reserved snapshot keys. Everything else is a measurement.
const (
	SNAPSHOT_KEY_STALE        = "_stale"
	SNAPSHOT_KEY_LAST_SUCCESS = "_last_success"
)

// Measurement keys. Energy status keys take precedence over battery
// status keys in the merge; "soc" is the fallback-only mirror of
// "bat_soc".
const (
	KEY_BATTERY_SOC              = "bat_soc"
	KEY_BATTERY_CAPACITY         = "bat_cap"
	KEY_PV_POWER                 = "pv_power"
	KEY_ONGRID_POWER             = "ongrid_power"
	KEY_OFFGRID_POWER            = "offgrid_power"
	KEY_BATTERY_POWER            = "bat_power"
	KEY_TOTAL_PV_ENERGY          = "total_pv_energy"
	KEY_TOTAL_GRID_OUTPUT_ENERGY = "total_grid_output_energy"
	KEY_TOTAL_GRID_INPUT_ENERGY  = "total_grid_input_energy"
	KEY_TOTAL_LOAD_ENERGY        = "total_load_energy"
	KEY_ES_MODE                  = "es_mode"
	KEY_PACK_SOC                 = "soc"
	KEY_CHARGING_FLAG            = "charg_flag"
	KEY_DISCHARGE_FLAG           = "dischrg_flag"
	KEY_BATTERY_TEMP             = "bat_temp"
	KEY_BATTERY_VOLTAGE          = "bat_voltage"
	KEY_BATTERY_CURRENT          = "bat_current"
	KEY_PACK_CAPACITY            = "bat_capacity"
	KEY_RATED_CAPACITY           = "rated_capacity"
	KEY_ERROR_CODE               = "error_code"
)

// Snapshot is the flat measurement set produced by one poll cycle.
// Committed snapshots are never mutated, consumers always see a copy.
type Snapshot map[string]any

func (s Snapshot) Clone() Snapshot {
	clone := make(Snapshot, len(s))
	for k, v := range s {
		clone[k] = v
	}
	return clone
}

func (s Snapshot) Stale() bool {
	stale, ok := s[SNAPSHOT_KEY_STALE].(bool)
	return ok && stale
}

// SetDefault stores value only if key is not already set. Implements
// the fill-if-absent merge rule for fallback sources.
func (s Snapshot) SetDefault(key string, value any) {
	if _, ok := s[key]; !ok {
		s[key] = value
	}
}

// NumericValue converts a snapshot measurement to float64 if it holds
// one of the numeric types a decoded reply can produce.
func (s Snapshot) NumericValue(key string) (float64, bool) {
	switch v := s[key].(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}
