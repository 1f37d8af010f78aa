package config

import (
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap/zapcore"
)

type Config struct {
	LogLevel  zapcore.Level
	DeviceUDP DeviceUDPConfig `mapstructure:"device_udp"`
	MQTT      MQTTConfig      `mapstructure:"mqtt"`

	MonitorConfig MonitorConfig `mapstructure:"monitor"`
	Port          uint          `mapstructure:"port"`
	HttpLog       bool          `mapstructure:"http_log"`
}

type DeviceUDPConfig struct {
	Host string
	Port uint
	// DeviceId identifies the device in the host platform (unique ids,
	// discovery topics). Not part of the wire protocol.
	DeviceId string `mapstructure:"device_id"`
	// Instance is the device sub-instance index sent as params.id.
	Instance      uint   `mapstructure:"instance"`
	LocalHost     string `mapstructure:"local_host"`
	LocalPort     uint   `mapstructure:"local_port"`
	TimeoutMillis uint32 `mapstructure:"timeout_millis"`
}

type MonitorConfig struct {
	PollIntervalMillis   uint32 `mapstructure:"poll_interval_millis"`
	InterCallDelayMillis uint32 `mapstructure:"inter_call_delay_millis"`
	MinPowerDeltaWatt    uint32 `mapstructure:"min_power_delta_watt"`
	// MarkStaleUnavailable publishes the bridge as offline while the
	// snapshot is stale so consumers treat entities as unavailable.
	MarkStaleUnavailable bool `mapstructure:"mark_stale_unavailable"`
}

type MQTTConfig struct {
	Host              string
	Port              int
	Username          string
	Password          string
	BaseTopic         string `mapstructure:"base_topic"`
	HADiscoveryEnable bool   `mapstructure:"ha_discovery_enable"`
	HADiscoveryTopic  string `mapstructure:"ha_discovery_topic"`
}

func CheckMQTTTopic(baseTopic string) (string, error) {
	// check and fix base topic
	lowerBaseTopic := strings.ToLower(baseTopic)
	baseTopicRegexp := regexp.MustCompile("^[a-z0-9_]+$")
	matches := baseTopicRegexp.FindAllStringSubmatch(lowerBaseTopic, 1)
	if len(matches) <= 0 {
		return "", errors.New("invalid topic. can only contain letters, numbers and underscores")
	}
	return lowerBaseTopic, nil
}
