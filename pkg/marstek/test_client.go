package marstek

import (
	"sync"
)

func CreateTestDeviceClient() *TestDeviceClient {
	return &TestDeviceClient{}
}

// TestDeviceClient is an in-memory DeviceClient with canned data.
// Queries can be forced to fail to exercise degraded poll cycles.
type TestDeviceClient struct {
	mu            sync.Mutex
	failEnergy    bool
	failMode      bool
	failBattery   bool
	lastSetMode   string
	lastSetConfig map[string]any
}

func (c *TestDeviceClient) FailEnergy(fail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failEnergy = fail
}

func (c *TestDeviceClient) FailMode(fail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failMode = fail
}

func (c *TestDeviceClient) FailBattery(fail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failBattery = fail
}

func (c *TestDeviceClient) LastSetMode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSetMode
}

func (c *TestDeviceClient) LastSetConfig() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSetConfig
}

func (c *TestDeviceClient) GetEnergyStatus() (*EnergyStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failEnergy {
		return nil, ErrTimeout
	}
	return &EnergyStatus{
		BatterySoC:            intPtr(55),
		BatteryCapacity:       intPtr(5120),
		PVPower:               intPtr(820),
		OngridPower:           intPtr(-120),
		OffgridPower:          intPtr(0),
		BatteryPower:          intPtr(700),
		TotalPVEnergy:         floatPtr(1250.5),
		TotalGridOutputEnergy: floatPtr(830.2),
		TotalGridInputEnergy:  floatPtr(410.7),
		TotalLoadEnergy:       floatPtr(1960.4),
	}, nil
}

func (c *TestDeviceClient) GetMode() (*OperatingMode, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failMode {
		return nil, ErrTimeout
	}
	return &OperatingMode{
		Mode: strPtr(MODE_AUTO),
	}, nil
}

func (c *TestDeviceClient) GetBatteryStatus() (*BatteryStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failBattery {
		return nil, ErrTimeout
	}
	return &BatteryStatus{
		SoC:           intPtr(56),
		ChargingFlag:  boolPtr(true),
		DischargeFlag: boolPtr(false),
		Temperature:   floatPtr(27.5),
		Voltage:       floatPtr(52.1),
		Current:       floatPtr(13.4),
		Capacity:      intPtr(2870),
		RatedCapacity: intPtr(5120),
		ErrorCode:     strPtr("0"),
	}, nil
}

func (c *TestDeviceClient) SetMode(mode string, config map[string]any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastSetMode = mode
	c.lastSetConfig = config
	return true, nil
}

func intPtr(v int) *int {
	return &v
}

func floatPtr(v float64) *float64 {
	return &v
}

func strPtr(v string) *string {
	return &v
}

func boolPtr(v bool) *bool {
	return &v
}

// ensure interface compliance
var _ DeviceClient = (*TestDeviceClient)(nil)
