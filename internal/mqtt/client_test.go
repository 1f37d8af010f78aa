package mqtt

import (
	"testing"

	"marstek2mqtt/internal/config"
	"marstek2mqtt/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func TestSelectCommandParse(t *testing.T) {

	assert := assert.New(t)

	baseTopic := "loremTopic"
	topic := "loremTopic/select/es_mode/set"
	r := selectCommandExtractor(baseTopic)
	matches := r.FindAllStringSubmatch(topic, 1)

	assert.Equal(matches[0][1], "es_mode", "select_id extract")
}

func TestSelectCommandParseFail(t *testing.T) {

	assert := assert.New(t)

	baseTopic := "loremTopic"
	topic := "loremTopic/select/es_mode/state"
	r := selectCommandExtractor(baseTopic)
	matches := r.FindAllStringSubmatch(topic, 1)

	assert.Equal(len(matches), 0, "no matches")
}

func TestSelectCommandParseOtherEntity(t *testing.T) {

	assert := assert.New(t)

	baseTopic := "loremTopic"
	topic := "loremTopic/sensor/bat_soc/state"
	r := selectCommandExtractor(baseTopic)
	matches := r.FindAllStringSubmatch(topic, 1)

	assert.Equal(len(matches), 0, "no matches")
}

func TestInputNumberCommandParse(t *testing.T) {

	assert := assert.New(t)

	baseTopic := "loremTopic"
	topic := "loremTopic/number/passive_power/set"
	r := inputNumberCommandExtractor(baseTopic)
	matches := r.FindAllStringSubmatch(topic, 1)

	assert.Equal(matches[0][1], "passive_power", "number_id extract")
}

func TestInputNumberCommandParseFail(t *testing.T) {

	assert := assert.New(t)

	baseTopic := "loremTopic"
	topic := "loremTopic/number/passive_power/state"
	r := inputNumberCommandExtractor(baseTopic)
	matches := r.FindAllStringSubmatch(topic, 1)

	assert.Equal(len(matches), 0, "no matches")
}

func TestHADiscoveryTopicsUseConfiguredPrefix(t *testing.T) {

	assert := assert.New(t)

	client := &MQTTClient{cfg: config.MQTTConfig{
		BaseTopic:        "loremTopic",
		HADiscoveryTopic: "custom_ha",
	}}

	sensor := domain.GenericSensor{
		Device:     domain.Device{Id: "dev1"},
		Id:         "bat_soc",
		SensorType: domain.SENSOR_TYPE_SENSOR,
	}
	assert.Equal("custom_ha/sensor/dev1/bat_soc/config", client.HADiscoverySensorTopic(sensor))

	sel := domain.GenericSelect{
		Device: domain.Device{Id: "dev1"},
		Id:     domain.KEY_ES_MODE,
	}
	assert.Equal("custom_ha/select/dev1/es_mode/config", client.HADiscoverySelectTopic(sel))

	number := domain.GenericInputNumber{
		Device: domain.Device{Id: "dev1"},
		Id:     domain.NUMBER_ID_PASSIVE_POWER,
	}
	assert.Equal("custom_ha/number/dev1/passive_power/config", client.HADiscoveryInputNumberTopic(number))
}
