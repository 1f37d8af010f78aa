package util

import (
	"marstek2mqtt/internal/config"

	"go.uber.org/zap"
)

func LoadTestConfig() config.Config {
	return config.Config{
		LogLevel: zap.DebugLevel,
		DeviceUDP: config.DeviceUDPConfig{
			Host:          "-.-.-.-",
			Port:          30000,
			DeviceId:      "venus-test",
			Instance:      0,
			TimeoutMillis: 1000,
		},
		MQTT: config.MQTTConfig{
			Host: "localhost",
			Port: 1883,
		},
		MonitorConfig: config.MonitorConfig{
			PollIntervalMillis:   5000,
			InterCallDelayMillis: 10,
			MinPowerDeltaWatt:    0,
		},
		Port: 8080,
	}
}
