package marstek

import "encoding/json"

// Operating modes accepted by ES.SetMode.
const (
	MODE_AUTO    = "Auto"
	MODE_AI      = "AI"
	MODE_MANUAL  = "Manual"
	MODE_PASSIVE = "Passive"
)

// Per-mode config keys of the ES.SetMode "config" object.
const (
	CONFIG_KEY_AUTO    = "auto_cfg"
	CONFIG_KEY_AI      = "ai_cfg"
	CONFIG_KEY_MANUAL  = "manual_cfg"
	CONFIG_KEY_PASSIVE = "passive_cfg"
)

// EnergyStatus is the sparse result of ES.GetStatus. Fields the
// firmware omits stay nil and must not be defaulted downstream.
type EnergyStatus struct {
	Id                    int      `json:"id"`
	BatterySoC            *int     `json:"bat_soc"`
	BatteryCapacity       *int     `json:"bat_cap"`
	PVPower               *int     `json:"pv_power"`
	OngridPower           *int     `json:"ongrid_power"`
	OffgridPower          *int     `json:"offgrid_power"`
	BatteryPower          *int     `json:"bat_power"`
	TotalPVEnergy         *float64 `json:"total_pv_energy"`
	TotalGridOutputEnergy *float64 `json:"total_grid_output_energy"`
	TotalGridInputEnergy  *float64 `json:"total_grid_input_energy"`
	TotalLoadEnergy       *float64 `json:"total_load_energy"`
}

// OperatingMode is the sparse result of ES.GetMode. The per-mode config
// echo is kept as raw maps, each mode reports its own shape.
type OperatingMode struct {
	Id           int            `json:"id"`
	Mode         *string        `json:"mode"`
	OngridPower  *int           `json:"ongrid_power"`
	OffgridPower *int           `json:"offgrid_power"`
	BatterySoC   *int           `json:"bat_soc"`
	AutoConfig   map[string]any `json:"auto_cfg"`
	AIConfig     map[string]any `json:"ai_cfg"`
	ManualConfig map[string]any `json:"manual_cfg"`
	PassiveCfg   map[string]any `json:"passive_cfg"`
}

// BatteryStatus is the sparse result of Bat.GetStatus.
type BatteryStatus struct {
	Id            int      `json:"id"`
	SoC           *int     `json:"soc"`
	ChargingFlag  *bool    `json:"charg_flag"`
	DischargeFlag *bool    `json:"dischrg_flag"`
	Temperature   *float64 `json:"bat_temp"`
	Voltage       *float64 `json:"bat_voltage"`
	Current       *float64 `json:"bat_current"`
	Capacity      *int     `json:"bat_capacity"`
	RatedCapacity *int     `json:"rated_capacity"`
	ErrorCode     *string  `json:"error_code"`
}

// request is one wire-level JSON-RPC request datagram.
type request struct {
	Id     int64          `json:"id"`
	Method string         `json:"method"`
	Params map[string]any `json:"params"`
}

// response is the accepted reply for a request: same id, optional
// result payload.
type response struct {
	Id     int64
	Result json.RawMessage
}

func (r *response) hasResult() bool {
	return len(r.Result) > 0 && string(r.Result) != "null"
}
