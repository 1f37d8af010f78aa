package domain

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/carlmjohnson/versioninfo"
)

// Sensor Model
type Device struct {
	Id           string
	Name         string
	Version      string
	Model        string
	Manufacturer string
	ViaDevice    string
}

type GenericSensor struct {
	Device            Device
	Id                string
	SensorType        string
	Name              string
	UniqueId          string
	UnitOfMeasurement string
	StateClass        string // measurement, total_increasing (for acc energy)
	DeviceClass       string // battery, power, energy, temperature, ...
	EntityCategory    string // diagnostic, config, nil
	EnabledByDefault  *bool
	Icon              string
}

type GenericSelect struct {
	Device   Device
	Id       string
	Name     string
	UniqueId string
	Icon     string
	Options  []string
}

type GenericInputNumber struct {
	Device            Device
	Id                string
	Name              string
	UniqueId          string
	Icon              string
	UnitOfMeasurement string
	Max               float64
	Min               float64
	Step              float64
	Mode              string
}

const (
	SENSOR_ID_BRIDGE_STATE = "bridge"
	SENSOR_ID_DATA_STALE   = "data_stale"

	STATE_CLASS_MEASUREMENT      = "measurement"
	STATE_CLASS_TOTAL_INCREASING = "total_increasing"

	DEVICE_CLASS_BATTERY          = "battery"
	DEVICE_CLASS_BATTERY_CHARGING = "battery_charging"
	DEVICE_CLASS_CURRENT          = "current"
	DEVICE_CLASS_ENERGY           = "energy"
	DEVICE_CLASS_ENERGY_STORAGE   = "energy_storage"
	DEVICE_CLASS_POWER            = "power"
	DEVICE_CLASS_PROBLEM          = "problem"
	DEVICE_CLASS_TEMPERATURE      = "temperature"
	DEVICE_CLASS_VOLTAGE          = "voltage"
	DEVICE_CLASS_CONNECTIVITY     = "connectivity"

	ENTITY_CLASS_DIAGNOSTIC = "diagnostic"
	ENTITY_CLASS_CONFIG     = "config"

	SENSOR_TYPE_SENSOR = "sensor"
	SENSOR_TYPE_BINARY = "binary_sensor"

	NUMBER_ID_PASSIVE_POWER     = "passive_power"
	NUMBER_ID_PASSIVE_COUNTDOWN = "passive_cd_time"

	INPUT_NUMBER_MODE_BOX = "box"
)

func BridgeDevice(baseTopic string) Device {
	return Device{
		Id:           fmt.Sprintf("marstek2mqtt_bridge_%s", md5HashShort(baseTopic)),
		Manufacturer: "ACasal",
		Model:        "Marstek2MQTT",
		Version:      versioninfo.Short(),
		Name:         fmt.Sprintf("Marstek2MQTT %s", md5HashShort(baseTopic)),
	}
}

func BatteryDevice(deviceId string) Device {
	return Device{
		Id:           fmt.Sprintf("marstek_venus_%s", md5HashShort(deviceId)),
		Manufacturer: "Marstek",
		Model:        "Venus",
		Name:         fmt.Sprintf("Marstek Venus %s", md5HashShort(deviceId)),
	}
}

func IdDevice(device Device) Device {
	return Device{
		Id:   device.Id,
		Name: device.Name,
	}
}

func BridgeSensors(bridgeDevice Device) []GenericSensor {

	var sensors []GenericSensor

	// Bridge connection state
	sensors = append(sensors, GenericSensor{
		Device:         bridgeDevice,
		Id:             SENSOR_ID_BRIDGE_STATE,
		SensorType:     SENSOR_TYPE_BINARY,
		Name:           "Connection state",
		DeviceClass:    DEVICE_CLASS_CONNECTIVITY,
		EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
		UniqueId:       uniqueId(bridgeDevice.Id, SENSOR_ID_BRIDGE_STATE),
	})

	return sensors
}

// BatterySensors lists every measurement the poll snapshot can carry
// for the battery device, in snapshot-key order.
func BatterySensors(batteryDevice Device) []GenericSensor {

	var sensors []GenericSensor

	sensors = append(sensors, GenericSensor{
		Device:            batteryDevice,
		Id:                KEY_BATTERY_SOC,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Battery SoC",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_BATTERY,
		UnitOfMeasurement: "%",
		UniqueId:          uniqueId(batteryDevice.Id, KEY_BATTERY_SOC),
	})

	sensors = append(sensors, GenericSensor{
		Device:            batteryDevice,
		Id:                KEY_BATTERY_CAPACITY,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Battery capacity",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_ENERGY_STORAGE,
		UnitOfMeasurement: "Wh",
		UniqueId:          uniqueId(batteryDevice.Id, KEY_BATTERY_CAPACITY),
	})

	sensors = append(sensors, GenericSensor{
		Device:            batteryDevice,
		Id:                KEY_PV_POWER,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Solar charging power",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_POWER,
		UnitOfMeasurement: "W",
		UniqueId:          uniqueId(batteryDevice.Id, KEY_PV_POWER),
	})

	sensors = append(sensors, GenericSensor{
		Device:            batteryDevice,
		Id:                KEY_ONGRID_POWER,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Grid-tied power",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_POWER,
		UnitOfMeasurement: "W",
		UniqueId:          uniqueId(batteryDevice.Id, KEY_ONGRID_POWER),
	})

	sensors = append(sensors, GenericSensor{
		Device:            batteryDevice,
		Id:                KEY_OFFGRID_POWER,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Off-grid power",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_POWER,
		UnitOfMeasurement: "W",
		UniqueId:          uniqueId(batteryDevice.Id, KEY_OFFGRID_POWER),
	})

	sensors = append(sensors, GenericSensor{
		Device:            batteryDevice,
		Id:                KEY_BATTERY_POWER,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Battery power",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_POWER,
		UnitOfMeasurement: "W",
		UniqueId:          uniqueId(batteryDevice.Id, KEY_BATTERY_POWER),
	})

	sensors = append(sensors, GenericSensor{
		Device:            batteryDevice,
		Id:                KEY_TOTAL_PV_ENERGY,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Total solar energy",
		StateClass:        STATE_CLASS_TOTAL_INCREASING,
		DeviceClass:       DEVICE_CLASS_ENERGY,
		UnitOfMeasurement: "Wh",
		UniqueId:          uniqueId(batteryDevice.Id, KEY_TOTAL_PV_ENERGY),
	})

	sensors = append(sensors, GenericSensor{
		Device:            batteryDevice,
		Id:                KEY_TOTAL_GRID_OUTPUT_ENERGY,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Total grid output energy",
		StateClass:        STATE_CLASS_TOTAL_INCREASING,
		DeviceClass:       DEVICE_CLASS_ENERGY,
		UnitOfMeasurement: "Wh",
		UniqueId:          uniqueId(batteryDevice.Id, KEY_TOTAL_GRID_OUTPUT_ENERGY),
	})

	sensors = append(sensors, GenericSensor{
		Device:            batteryDevice,
		Id:                KEY_TOTAL_GRID_INPUT_ENERGY,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Total grid input energy",
		StateClass:        STATE_CLASS_TOTAL_INCREASING,
		DeviceClass:       DEVICE_CLASS_ENERGY,
		UnitOfMeasurement: "Wh",
		UniqueId:          uniqueId(batteryDevice.Id, KEY_TOTAL_GRID_INPUT_ENERGY),
	})

	sensors = append(sensors, GenericSensor{
		Device:            batteryDevice,
		Id:                KEY_TOTAL_LOAD_ENERGY,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Total load energy",
		StateClass:        STATE_CLASS_TOTAL_INCREASING,
		DeviceClass:       DEVICE_CLASS_ENERGY,
		UnitOfMeasurement: "Wh",
		UniqueId:          uniqueId(batteryDevice.Id, KEY_TOTAL_LOAD_ENERGY),
	})

	sensors = append(sensors, GenericSensor{
		Device:            batteryDevice,
		Id:                KEY_PACK_SOC,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Battery pack SoC",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_BATTERY,
		UnitOfMeasurement: "%",
		EntityCategory:    ENTITY_CLASS_DIAGNOSTIC,
		EnabledByDefault:  optionalBool(false),
		UniqueId:          uniqueId(batteryDevice.Id, KEY_PACK_SOC),
	})

	sensors = append(sensors, GenericSensor{
		Device:      batteryDevice,
		Id:          KEY_CHARGING_FLAG,
		SensorType:  SENSOR_TYPE_BINARY,
		Name:        "Battery charging",
		DeviceClass: DEVICE_CLASS_BATTERY_CHARGING,
		UniqueId:    uniqueId(batteryDevice.Id, KEY_CHARGING_FLAG),
	})

	sensors = append(sensors, GenericSensor{
		Device:     batteryDevice,
		Id:         KEY_DISCHARGE_FLAG,
		SensorType: SENSOR_TYPE_BINARY,
		Name:       "Battery discharging",
		Icon:       "mdi:battery-minus",
		UniqueId:   uniqueId(batteryDevice.Id, KEY_DISCHARGE_FLAG),
	})

	sensors = append(sensors, GenericSensor{
		Device:            batteryDevice,
		Id:                KEY_BATTERY_TEMP,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Battery temperature",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_TEMPERATURE,
		UnitOfMeasurement: "°C",
		UniqueId:          uniqueId(batteryDevice.Id, KEY_BATTERY_TEMP),
	})

	sensors = append(sensors, GenericSensor{
		Device:            batteryDevice,
		Id:                KEY_BATTERY_VOLTAGE,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Battery voltage",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_VOLTAGE,
		UnitOfMeasurement: "V",
		EnabledByDefault:  optionalBool(false),
		UniqueId:          uniqueId(batteryDevice.Id, KEY_BATTERY_VOLTAGE),
	})

	sensors = append(sensors, GenericSensor{
		Device:            batteryDevice,
		Id:                KEY_BATTERY_CURRENT,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Battery current",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_CURRENT,
		UnitOfMeasurement: "A",
		EnabledByDefault:  optionalBool(false),
		UniqueId:          uniqueId(batteryDevice.Id, KEY_BATTERY_CURRENT),
	})

	sensors = append(sensors, GenericSensor{
		Device:            batteryDevice,
		Id:                KEY_PACK_CAPACITY,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Battery pack capacity",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_ENERGY_STORAGE,
		UnitOfMeasurement: "Wh",
		EntityCategory:    ENTITY_CLASS_DIAGNOSTIC,
		EnabledByDefault:  optionalBool(false),
		UniqueId:          uniqueId(batteryDevice.Id, KEY_PACK_CAPACITY),
	})

	sensors = append(sensors, GenericSensor{
		Device:            batteryDevice,
		Id:                KEY_RATED_CAPACITY,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Rated capacity",
		DeviceClass:       DEVICE_CLASS_ENERGY_STORAGE,
		UnitOfMeasurement: "Wh",
		EntityCategory:    ENTITY_CLASS_DIAGNOSTIC,
		EnabledByDefault:  optionalBool(false),
		UniqueId:          uniqueId(batteryDevice.Id, KEY_RATED_CAPACITY),
	})

	sensors = append(sensors, GenericSensor{
		Device:         batteryDevice,
		Id:             KEY_ERROR_CODE,
		SensorType:     SENSOR_TYPE_SENSOR,
		Name:           "Error code",
		EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
		Icon:           "mdi:alert-circle-outline",
		UniqueId:       uniqueId(batteryDevice.Id, KEY_ERROR_CODE),
	})

	sensors = append(sensors, GenericSensor{
		Device:         batteryDevice,
		Id:             SENSOR_ID_DATA_STALE,
		SensorType:     SENSOR_TYPE_BINARY,
		Name:           "Data stale",
		DeviceClass:    DEVICE_CLASS_PROBLEM,
		EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
		UniqueId:       uniqueId(batteryDevice.Id, SENSOR_ID_DATA_STALE),
	})

	return sensors
}

func OperatingModeSelects(batteryDevice Device) []GenericSelect {

	var selects []GenericSelect

	// Operating mode
	selects = append(selects, GenericSelect{
		Device:   batteryDevice,
		Id:       KEY_ES_MODE,
		Name:     "Operating mode",
		UniqueId: uniqueId(batteryDevice.Id, KEY_ES_MODE),
		Icon:     "mdi:cog-transfer",
		Options:  []string{"Auto", "AI", "Manual", "Passive"},
	})

	return selects
}

// PassiveModeInputNumbers lists the writable passive-mode parameters.
// Writing either one issues an ES.SetMode Passive with just that field.
func PassiveModeInputNumbers(batteryDevice Device) []GenericInputNumber {

	var inputNumbers []GenericInputNumber

	// Passive mode output power
	inputNumbers = append(inputNumbers, GenericInputNumber{
		Device:            batteryDevice,
		Id:                NUMBER_ID_PASSIVE_POWER,
		Name:              "Passive power",
		UniqueId:          uniqueId(batteryDevice.Id, NUMBER_ID_PASSIVE_POWER),
		Icon:              "mdi:flash",
		UnitOfMeasurement: "W",
		Min:               0,
		Max:               10000,
		Step:              10,
		Mode:              INPUT_NUMBER_MODE_BOX,
	})

	// Passive mode countdown
	inputNumbers = append(inputNumbers, GenericInputNumber{
		Device:            batteryDevice,
		Id:                NUMBER_ID_PASSIVE_COUNTDOWN,
		Name:              "Passive countdown",
		UniqueId:          uniqueId(batteryDevice.Id, NUMBER_ID_PASSIVE_COUNTDOWN),
		Icon:              "mdi:timer-outline",
		UnitOfMeasurement: "s",
		Min:               0,
		Max:               86400,
		Step:              10,
		Mode:              INPUT_NUMBER_MODE_BOX,
	})

	return inputNumbers
}

func uniqueId(baseId, id string) string {
	return fmt.Sprintf("uid_%s_%s", baseId, id)
}

func md5Hash(text string) string {
	hash := md5.Sum([]byte(text))
	return hex.EncodeToString(hash[:])
}

func md5HashShort(text string) string {
	hash := md5Hash(text)
	return hash[0:8]
}

func optionalBool(value bool) *bool {
	return &value
}
