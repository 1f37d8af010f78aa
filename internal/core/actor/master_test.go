package actor

import (
	"fmt"
	"testing"
	"time"

	adactor "marstek2mqtt/internal/adapter/actor"
	"marstek2mqtt/internal/core/domain"
	"marstek2mqtt/internal/mqtt"
	"marstek2mqtt/internal/util"
	"marstek2mqtt/pkg/marstek"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMasterActor(t *testing.T) {

	as := actor.NewActorSystem()
	context := as.Root

	cfg := util.LoadTestConfig()
	logCfg := zap.NewDevelopmentConfig()
	logCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	logger := zap.Must(logCfg.Build())

	client := marstek.CreateTestDeviceClient()

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewMasterOfPuppetsActor(cfg, func() *adactor.DeviceActor {
			return adactor.NewDeviceActor(client, 5*time.Second, logger)
		}, func() *adactor.MQTTActor {
			return adactor.NewTestMQTTActor(&cfg, logger)
		}, logger)
	})
	pid, err := context.SpawnNamed(props, "master")
	if err != nil {
		t.Error(err)
		return
	}

	time.Sleep(2 * time.Second)

	res, err := context.RequestFuture(pid, domain.ActorHealthRequest{}, 10*time.Second).Result()
	if err != nil {
		t.Error(err)
		//return
	}
	healthResp, ok := res.(domain.ActorHealthResponse)
	assert.True(t, ok)
	fmt.Printf("Health response: %+v\n", healthResp)
	assert.NotNil(t, healthResp)

	assert.True(t, healthResp.Healthy, "healthy is true")

	context.Stop(pid)

	as.Shutdown()
}

func TestMasterActorSnapshotAndSetMode(t *testing.T) {

	assert := assert.New(t)

	as := actor.NewActorSystem()
	context := as.Root

	cfg := util.LoadTestConfig()
	logCfg := zap.NewDevelopmentConfig()
	logCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	logger := zap.Must(logCfg.Build())

	client := marstek.CreateTestDeviceClient()

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewMasterOfPuppetsActor(cfg, func() *adactor.DeviceActor {
			return adactor.NewDeviceActor(client, 5*time.Second, logger)
		}, func() *adactor.MQTTActor {
			return adactor.NewTestMQTTActor(&cfg, logger)
		}, logger)
	})
	pid, err := context.SpawnNamed(props, "master")
	if err != nil {
		t.Error(err)
		return
	}

	// allow the startup poll cycle to complete
	time.Sleep(2 * time.Second)

	res, err := context.RequestFuture(pid, domain.GetSnapshotRequest{}, 10*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	snapResp := res.(domain.GetSnapshotResponse)
	assert.False(snapResp.HasResponseError(), "snapshot available")
	assert.Equal(55, snapResp.Snapshot[domain.KEY_BATTERY_SOC], "snapshot routed through master")

	res, err = context.RequestFuture(pid, domain.SetOperatingModeRequest{Mode: marstek.MODE_PASSIVE}, 10*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	modeResp := res.(domain.SetOperatingModeResponse)
	assert.False(modeResp.HasResponseError(), "set mode ok")
	assert.True(modeResp.Accepted, "mode accepted")
	assert.Equal(marstek.MODE_PASSIVE, client.LastSetMode(), "mode reached the device")

	context.Stop(pid)

	as.Shutdown()
}

func TestMasterActorMQTTCommands(t *testing.T) {

	assert := assert.New(t)

	as := actor.NewActorSystem()
	context := as.Root

	cfg := util.LoadTestConfig()
	logCfg := zap.NewDevelopmentConfig()
	logCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	logger := zap.Must(logCfg.Build())

	client := marstek.CreateTestDeviceClient()

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewMasterOfPuppetsActor(cfg, func() *adactor.DeviceActor {
			return adactor.NewDeviceActor(client, 5*time.Second, logger)
		}, func() *adactor.MQTTActor {
			return adactor.NewTestMQTTActor(&cfg, logger)
		}, logger)
	})
	pid, err := context.SpawnNamed(props, "master")
	if err != nil {
		t.Error(err)
		return
	}

	// allow the startup poll cycle to complete
	time.Sleep(2 * time.Second)

	// mode select command carries the per-mode config
	context.Send(pid, adactor.ParsedCommand{Command: &mqtt.ParsedMQTTCommand{
		DeviceId: domain.KEY_ES_MODE,
		Command:  "select",
		Payload:  marstek.MODE_AI,
	}})
	time.Sleep(time.Second)

	assert.Equal(marstek.MODE_AI, client.LastSetMode(), "select command reached the device")
	aiCfg, ok := client.LastSetConfig()[marstek.CONFIG_KEY_AI].(map[string]any)
	assert.True(ok, "ai_cfg attached")
	assert.Equal(1, aiCfg["enable"], "ai_cfg enable flag")

	// passive power number command writes just that field
	context.Send(pid, adactor.ParsedCommand{Command: &mqtt.ParsedMQTTCommand{
		DeviceId: domain.NUMBER_ID_PASSIVE_POWER,
		Command:  "number",
		Payload:  "1500",
	}})
	time.Sleep(time.Second)

	assert.Equal(marstek.MODE_PASSIVE, client.LastSetMode(), "number command reached the device")
	passiveCfg, ok := client.LastSetConfig()[marstek.CONFIG_KEY_PASSIVE].(map[string]any)
	assert.True(ok, "passive_cfg attached")
	assert.Equal(1500, passiveCfg["power"], "passive power value")

	context.Stop(pid)

	as.Shutdown()
}
