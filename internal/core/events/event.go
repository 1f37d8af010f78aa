package events

import (
	. "marstek2mqtt/internal/core/domain"
)

// SnapshotToUpdateEvents converts a committed snapshot into sensor
// update events. Keys absent from the snapshot produce no event, so a
// measurement missing for one cycle simply keeps its last published
// state.
func SnapshotToUpdateEvents(snapshot Snapshot) []any {
	var events []any

	floatKeys := []struct {
		key      string
		decimals uint
	}{
		{KEY_BATTERY_SOC, 0},
		{KEY_BATTERY_CAPACITY, 0},
		{KEY_PV_POWER, 0},
		{KEY_ONGRID_POWER, 0},
		{KEY_OFFGRID_POWER, 0},
		{KEY_BATTERY_POWER, 0},
		{KEY_TOTAL_PV_ENERGY, 1},
		{KEY_TOTAL_GRID_OUTPUT_ENERGY, 1},
		{KEY_TOTAL_GRID_INPUT_ENERGY, 1},
		{KEY_TOTAL_LOAD_ENERGY, 1},
		{KEY_PACK_SOC, 0},
		{KEY_BATTERY_TEMP, 1},
		{KEY_BATTERY_VOLTAGE, 2},
		{KEY_BATTERY_CURRENT, 2},
		{KEY_PACK_CAPACITY, 0},
		{KEY_RATED_CAPACITY, 0},
	}
	for _, fk := range floatKeys {
		if value, ok := snapshot.NumericValue(fk.key); ok {
			events = append(events, FloatSensorUpdateEvent{
				SensorUpdateEventMixIn: SensorUpdateEventMixIn{
					Id: fk.key,
				},
				Value:    value,
				Decimals: fk.decimals,
			})
		}
	}

	for _, key := range []string{KEY_CHARGING_FLAG, KEY_DISCHARGE_FLAG} {
		if value, ok := snapshot[key].(bool); ok {
			events = append(events, BinarySensorUpdateEvent{
				SensorUpdateEventMixIn: SensorUpdateEventMixIn{
					Id: key,
				},
				Value: value,
			})
		}
	}

	if value, ok := snapshot[KEY_ERROR_CODE].(string); ok {
		events = append(events, TextSensorUpdateEvent{
			SensorUpdateEventMixIn: SensorUpdateEventMixIn{
				Id: KEY_ERROR_CODE,
			},
			Value: value,
		})
	}

	if value, ok := snapshot[KEY_ES_MODE].(string); ok {
		events = append(events, SelectSensorUpdateEvent{
			SensorUpdateEventMixIn: SensorUpdateEventMixIn{
				Id: KEY_ES_MODE,
			},
			Value: value,
		})
	}

	// staleness is always published
	events = append(events, BinarySensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_DATA_STALE,
		},
		Value: snapshot.Stale(),
	})

	return events
}
