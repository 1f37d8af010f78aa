package actor

import (
	"testing"
	"time"

	"marstek2mqtt/internal/core/domain"
	"marstek2mqtt/internal/util/actorutil"
	"marstek2mqtt/pkg/marstek"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestGetEnergyStatusDeviceActor(t *testing.T) {

	assert := assert.New(t)

	client := marstek.CreateTestDeviceClient()

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	props := actor.PropsFromProducer(func() actor.Actor { return NewDeviceActor(client, 5*time.Second, logger) })
	pid := context.Spawn(props)

	msg := domain.GetEnergyStatusRequest{}
	result, err := context.RequestFuture(pid, msg, 15*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp := result.(domain.GetEnergyStatusResponse)

	assert.False(resp.HasResponseError(), "no error")
	assert.Equal(55, *resp.Status.BatterySoC, "battery SoC")
	assert.Equal(820, *resp.Status.PVPower, "PV power")

	context.Stop(pid)

	as.Shutdown()
}

func TestGetBatteryStatusDeviceActor(t *testing.T) {

	assert := assert.New(t)

	client := marstek.CreateTestDeviceClient()

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	props := actor.PropsFromProducer(func() actor.Actor { return NewDeviceActor(client, 5*time.Second, logger) })
	pid := context.Spawn(props)

	msg := domain.GetBatteryStatusRequest{}
	result, err := context.RequestFuture(pid, msg, 15*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp := result.(domain.GetBatteryStatusResponse)

	assert.False(resp.HasResponseError(), "no error")
	assert.Equal(56, *resp.Status.SoC, "pack SoC")
	assert.Equal(true, *resp.Status.ChargingFlag, "charging flag")

	context.Stop(pid)

	as.Shutdown()
}

func TestGetEnergyStatusErrorDeviceActor(t *testing.T) {

	assert := assert.New(t)

	client := marstek.CreateTestDeviceClient()
	client.FailEnergy(true)

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	props := actor.PropsFromProducer(func() actor.Actor { return NewDeviceActor(client, 5*time.Second, logger) })
	pid := context.Spawn(props)

	msg := domain.GetEnergyStatusRequest{}
	result, err := context.RequestFuture(pid, msg, 15*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp := result.(domain.GetEnergyStatusResponse)

	assert.True(resp.HasResponseError(), "error surfaced")
	assert.Nil(resp.Status, "no status on error")

	context.Stop(pid)

	as.Shutdown()
}

func TestSetOperatingModeDeviceActor(t *testing.T) {

	assert := assert.New(t)

	client := marstek.CreateTestDeviceClient()

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	props := actor.PropsFromProducer(func() actor.Actor { return NewDeviceActor(client, 5*time.Second, logger) })
	pid := context.Spawn(props)

	msg := domain.SetOperatingModeRequest{Mode: marstek.MODE_MANUAL}
	result, err := context.RequestFuture(pid, msg, 15*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp := result.(domain.SetOperatingModeResponse)

	assert.False(resp.HasResponseError(), "no error")
	assert.True(resp.Accepted, "mode accepted")
	assert.Equal(marstek.MODE_MANUAL, client.LastSetMode(), "mode forwarded to device")

	context.Stop(pid)

	as.Shutdown()
}
