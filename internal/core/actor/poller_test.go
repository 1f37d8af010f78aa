package actor

import (
	"testing"
	"time"

	adactor "marstek2mqtt/internal/adapter/actor"
	"marstek2mqtt/internal/core/domain"
	"marstek2mqtt/internal/util"
	"marstek2mqtt/pkg/marstek"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func spawnPollerWithDevice(t *testing.T, context *actor.RootContext, client marstek.DeviceClient, es *eventstream.EventStream, logger *zap.Logger) *actor.PID {
	cfg := util.LoadTestConfig()

	deviceProps := actor.PropsFromProducer(func() actor.Actor {
		return adactor.NewDeviceActor(client, 5*time.Second, logger)
	})
	devicePID := context.Spawn(deviceProps)

	pollerProps := actor.PropsFromProducer(func() actor.Actor {
		return NewPollerActor(&cfg, devicePID, es, logger)
	})
	pollerPID, err := context.SpawnNamed(pollerProps, "poller_test")
	if err != nil {
		t.Fatal(err)
	}
	return pollerPID
}

func TestPollerFreshCycle(t *testing.T) {

	assert := assert.New(t)
	require := require.New(t)

	as := actor.NewActorSystem()
	context := as.Root

	logger := zap.Must(zap.NewDevelopment())
	client := marstek.CreateTestDeviceClient()
	es := &eventstream.EventStream{}

	pid := spawnPollerWithDevice(t, context, client, es, logger)

	// startup cycle: three calls plus inter-call pauses
	time.Sleep(2 * time.Second)

	result, err := context.RequestFuture(pid, domain.GetSnapshotRequest{}, 10*time.Second).Result()
	require.NoError(err)
	resp := result.(domain.GetSnapshotResponse)
	require.False(resp.HasResponseError())

	snapshot := resp.Snapshot
	assert.Equal(55, snapshot[domain.KEY_BATTERY_SOC], "primary bat_soc")
	assert.Equal(56, snapshot[domain.KEY_PACK_SOC], "battery pack soc")
	assert.Equal(marstek.MODE_AUTO, snapshot[domain.KEY_ES_MODE], "operating mode")
	assert.Equal(true, snapshot[domain.KEY_CHARGING_FLAG], "charging flag")
	assert.Equal(false, snapshot[domain.SNAPSHOT_KEY_STALE], "fresh snapshot")
	assert.NotEmpty(snapshot[domain.SNAPSHOT_KEY_LAST_SUCCESS], "success timestamp")

	context.Stop(pid)
	as.Shutdown()
}

func TestPollerStaleFallback(t *testing.T) {

	assert := assert.New(t)
	require := require.New(t)

	as := actor.NewActorSystem()
	context := as.Root

	logger := zap.Must(zap.NewDevelopment())
	client := marstek.CreateTestDeviceClient()
	es := &eventstream.EventStream{}

	pid := spawnPollerWithDevice(t, context, client, es, logger)

	// let the startup cycle commit a baseline
	time.Sleep(2 * time.Second)

	client.FailEnergy(true)

	result, err := context.RequestFuture(pid, domain.RefreshSnapshotRequest{}, 10*time.Second).Result()
	require.NoError(err)
	resp := result.(domain.RefreshSnapshotResponse)
	require.False(resp.HasResponseError())

	snapshot := resp.Snapshot
	assert.Equal(true, snapshot[domain.SNAPSHOT_KEY_STALE], "stale flag set")
	assert.Equal(55, snapshot[domain.KEY_BATTERY_SOC], "previous measurements carried over")
	assert.NotEmpty(snapshot[domain.SNAPSHOT_KEY_LAST_SUCCESS], "timestamp from last success kept")

	context.Stop(pid)
	as.Shutdown()
}

func TestPollerFirstCycleFailure(t *testing.T) {

	assert := assert.New(t)
	require := require.New(t)

	as := actor.NewActorSystem()
	context := as.Root

	logger := zap.Must(zap.NewDevelopment())
	client := marstek.CreateTestDeviceClient()
	client.FailEnergy(true)
	es := &eventstream.EventStream{}

	pid := spawnPollerWithDevice(t, context, client, es, logger)

	time.Sleep(1 * time.Second)

	result, err := context.RequestFuture(pid, domain.RefreshSnapshotRequest{}, 10*time.Second).Result()
	require.NoError(err)
	resp := result.(domain.RefreshSnapshotResponse)

	assert.True(resp.HasResponseError(), "no baseline to fall back to")
	assert.ErrorIs(resp.GetResponseError(), domain.ErrUpdateFailed)

	context.Stop(pid)
	as.Shutdown()
}

func TestPollerSecondaryFailureStillCommits(t *testing.T) {

	assert := assert.New(t)
	require := require.New(t)

	as := actor.NewActorSystem()
	context := as.Root

	logger := zap.Must(zap.NewDevelopment())
	client := marstek.CreateTestDeviceClient()
	client.FailMode(true)
	client.FailBattery(true)
	es := &eventstream.EventStream{}

	pid := spawnPollerWithDevice(t, context, client, es, logger)

	time.Sleep(2 * time.Second)

	result, err := context.RequestFuture(pid, domain.GetSnapshotRequest{}, 10*time.Second).Result()
	require.NoError(err)
	resp := result.(domain.GetSnapshotResponse)
	require.False(resp.HasResponseError())

	snapshot := resp.Snapshot
	assert.Equal(false, snapshot[domain.SNAPSHOT_KEY_STALE], "primary success is a fresh snapshot")
	assert.Equal(55, snapshot[domain.KEY_BATTERY_SOC], "primary data present")
	_, ok := snapshot[domain.KEY_ES_MODE]
	assert.False(ok, "failed mode query omits the key")
	_, ok = snapshot[domain.KEY_PACK_SOC]
	assert.False(ok, "failed battery query omits its keys")

	context.Stop(pid)
	as.Shutdown()
}

func TestPollerPublishesUpdateEvents(t *testing.T) {

	assert := assert.New(t)

	as := actor.NewActorSystem()
	context := as.Root

	logger := zap.Must(zap.NewDevelopment())
	client := marstek.CreateTestDeviceClient()
	es := &eventstream.EventStream{}

	events := make(chan any, 64)
	sub := es.Subscribe(func(evt any) {
		events <- evt
	})

	pid := spawnPollerWithDevice(t, context, client, es, logger)

	time.Sleep(2 * time.Second)

	context.Stop(pid)
	es.Unsubscribe(sub)
	close(events)

	var sawBatterySoC, sawStale bool
	for evt := range events {
		switch ev := evt.(type) {
		case domain.FloatSensorUpdateEvent:
			if ev.Id == domain.KEY_BATTERY_SOC {
				sawBatterySoC = true
				assert.Equal(55.0, ev.Value, "battery soc event value")
			}
		case domain.BinarySensorUpdateEvent:
			if ev.Id == domain.SENSOR_ID_DATA_STALE {
				sawStale = true
				assert.False(ev.Value, "fresh data is not stale")
			}
		}
	}
	assert.True(sawBatterySoC, "battery soc event published")
	assert.True(sawStale, "staleness event published")

	as.Shutdown()
}
