package actor

import (
	"errors"
	"fmt"
	"time"

	"marstek2mqtt/internal/config"
	"marstek2mqtt/internal/core/domain"
	"marstek2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

// HADiscoveryActor publishes the entity discovery configs once the
// device and MQTT actors are confirmed healthy, then goes dormant.
type HADiscoveryActor struct {
	config             *config.Config
	behavior           actor.Behavior
	stash              *actorutil.Stash
	deviceActor        *actor.PID
	mqttActor          *actor.PID
	deviceActorHealthy bool
	mqttActorHealthy   bool
	healthyRecv        int

	logger *zap.Logger
}

func NewHADiscoveryActor(config *config.Config, deviceActor *actor.PID, mqttActor *actor.PID, logger *zap.Logger) *HADiscoveryActor {
	act := &HADiscoveryActor{
		config:      config,
		deviceActor: deviceActor,
		mqttActor:   mqttActor,
		behavior:    actor.NewBehavior(),
		stash:       &actorutil.Stash{},
		logger:      actorutil.ActorLogger(domain.ACTOR_ID_HA_DISCOVERY, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *HADiscoveryActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *HADiscoveryActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("hadiscovery@starting started")

		// Check device and MQTT actor healthy
		state.healthyRecv = 0
		state.deviceActorHealthy = false
		state.mqttActorHealthy = false
		// Device Actor Request
		actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.deviceActor, domain.ActorHealthRequest{}, 2*time.Second), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_DEVICE,
				Healthy: false,
			}
		})
		// MQTT Actor Request
		actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.mqttActor, domain.ActorHealthRequest{}, 2*time.Second), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_MQTT,
				Healthy: false,
			}
		})
		state.behavior.Become(state.WaitingHealthyReceive)
	case *actor.Restarting:
	default:
		state.logger.Debug("hadiscovery@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *HADiscoveryActor) WaitingHealthyReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthResponse:
		state.logger.Debug("hadiscovery@healthcheck ActorHealthResponse", zap.String("sender", msg.Id), zap.Bool("healthy", msg.Healthy))
		state.healthyRecv++
		if msg.Healthy {
			switch msg.Id {
			case domain.ACTOR_ID_DEVICE:
				state.deviceActorHealthy = true
			case domain.ACTOR_ID_MQTT:
				state.mqttActorHealthy = true
			}
		}
		if state.healthyRecv == 2 {

			if state.deviceActorHealthy && state.mqttActorHealthy {
				state.publishDiscovery(ctx)
				state.behavior.Become(state.Done)
				state.stash.UnstashAll(ctx)
			} else {
				panic(errors.New("MQTT Actor or Device Actor are not healthy"))
			}
		}
	default:
		state.logger.Debug("hadiscovery@healthcheck: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *HADiscoveryActor) Done(ctx actor.Context) {

}

func (state *HADiscoveryActor) publishDiscovery(ctx actor.Context) {

	var sensors []domain.GenericSensor
	var selects []domain.GenericSelect
	var inputNumbers []domain.GenericInputNumber

	bridgeDevice := domain.BridgeDevice(state.config.MQTT.BaseTopic)
	bridgeSensors := domain.BridgeSensors(bridgeDevice)
	sensors = append(sensors, bridgeSensors...)

	batteryDevice := domain.BatteryDevice(state.config.DeviceUDP.DeviceId)
	batteryDevice.ViaDevice = bridgeDevice.Id
	batterySensors := domain.BatterySensors(batteryDevice)
	for i := range batterySensors {
		if i > 0 {
			batterySensors[i].Device = domain.IdDevice(batteryDevice)
		}
		sensors = append(sensors, batterySensors[i])
	}

	selects = append(selects, domain.OperatingModeSelects(domain.IdDevice(batteryDevice))...)
	inputNumbers = append(inputNumbers, domain.PassiveModeInputNumbers(domain.IdDevice(batteryDevice))...)

	ctx.Send(state.mqttActor, domain.PublishDiscoveryRequest{
		Sensors:      sensors,
		Selects:      selects,
		InputNumbers: inputNumbers,
	})
}
