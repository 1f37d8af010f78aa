package actorutil

import (
	"testing"

	"marstek2mqtt/internal/core/domain"
	"marstek2mqtt/internal/mqtt"
	"marstek2mqtt/pkg/marstek"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectCommandCarriesModeDefaults(t *testing.T) {

	cases := []struct {
		mode      string
		configKey string
	}{
		{marstek.MODE_AUTO, marstek.CONFIG_KEY_AUTO},
		{marstek.MODE_AI, marstek.CONFIG_KEY_AI},
		{marstek.MODE_MANUAL, marstek.CONFIG_KEY_MANUAL},
		{marstek.MODE_PASSIVE, marstek.CONFIG_KEY_PASSIVE},
	}

	for _, tc := range cases {
		t.Run(tc.mode, func(t *testing.T) {
			cmd, err := ParsedMQTTCommandToCommand(mqtt.ParsedMQTTCommand{
				DeviceId: domain.KEY_ES_MODE,
				Command:  "select",
				Payload:  tc.mode,
			})
			require.NoError(t, err)
			require.NotNil(t, cmd)

			req, ok := cmd.(domain.SetOperatingModeRequest)
			require.True(t, ok)
			assert.Equal(t, tc.mode, req.Mode)
			require.Contains(t, req.Config, tc.configKey, "mode write carries its config object")
		})
	}

	// enable flag on the modes that carry one
	cmd, err := ParsedMQTTCommandToCommand(mqtt.ParsedMQTTCommand{
		DeviceId: domain.KEY_ES_MODE,
		Command:  "select",
		Payload:  marstek.MODE_AUTO,
	})
	require.NoError(t, err)
	req := cmd.(domain.SetOperatingModeRequest)
	autoCfg := req.Config[marstek.CONFIG_KEY_AUTO].(map[string]any)
	assert.Equal(t, 1, autoCfg["enable"])
}

func TestSelectCommandInvalidPayloadDropped(t *testing.T) {

	cmd, err := ParsedMQTTCommandToCommand(mqtt.ParsedMQTTCommand{
		DeviceId: domain.KEY_ES_MODE,
		Command:  "select",
		Payload:  "Turbo",
	})
	require.NoError(t, err)
	assert.Nil(t, cmd)
}

func TestNumberCommandBuildsPassiveWrite(t *testing.T) {

	cmd, err := ParsedMQTTCommandToCommand(mqtt.ParsedMQTTCommand{
		DeviceId: domain.NUMBER_ID_PASSIVE_POWER,
		Command:  "number",
		Payload:  "2500",
	})
	require.NoError(t, err)
	require.NotNil(t, cmd)

	req, ok := cmd.(domain.SetOperatingModeRequest)
	require.True(t, ok)
	assert.Equal(t, marstek.MODE_PASSIVE, req.Mode)
	passiveCfg := req.Config[marstek.CONFIG_KEY_PASSIVE].(map[string]any)
	assert.Equal(t, 2500, passiveCfg["power"])

	cmd, err = ParsedMQTTCommandToCommand(mqtt.ParsedMQTTCommand{
		DeviceId: domain.NUMBER_ID_PASSIVE_COUNTDOWN,
		Command:  "number",
		Payload:  "600",
	})
	require.NoError(t, err)
	require.NotNil(t, cmd)

	req = cmd.(domain.SetOperatingModeRequest)
	assert.Equal(t, marstek.MODE_PASSIVE, req.Mode)
	passiveCfg = req.Config[marstek.CONFIG_KEY_PASSIVE].(map[string]any)
	assert.Equal(t, 600, passiveCfg["cd_time"])
}

func TestNumberCommandRejectsBadPayload(t *testing.T) {

	// not a number
	cmd, err := ParsedMQTTCommandToCommand(mqtt.ParsedMQTTCommand{
		DeviceId: domain.NUMBER_ID_PASSIVE_POWER,
		Command:  "number",
		Payload:  "lots",
	})
	require.Error(t, err)
	assert.Nil(t, cmd)

	// out of range
	cmd, err = ParsedMQTTCommandToCommand(mqtt.ParsedMQTTCommand{
		DeviceId: domain.NUMBER_ID_PASSIVE_POWER,
		Command:  "number",
		Payload:  "99999",
	})
	require.NoError(t, err)
	assert.Nil(t, cmd)
}
