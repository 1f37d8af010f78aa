package actor

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	adactor "marstek2mqtt/internal/adapter/actor"
	"marstek2mqtt/internal/config"
	"marstek2mqtt/internal/core/domain"
	"marstek2mqtt/internal/mqtt"
	. "marstek2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"go.uber.org/zap"
)

type MQTTActorProvider func() *adactor.MQTTActor

type DeviceActorProvider func() *adactor.DeviceActor

// MasterOfPuppetsActor spawns and supervises the actor tree and routes
// messages between the device, the poller and the MQTT side.
type MasterOfPuppetsActor struct {
	config   config.Config
	behavior actor.Behavior
	stash    *Stash

	currentHealthCheck  healthCheckResult
	eventStream         *eventstream.EventStream
	deviceActor         *actor.PID
	mqttActor           *actor.PID
	pollerActor         *actor.PID
	deviceActorProvider DeviceActorProvider
	mqttActorProvider   MQTTActorProvider
	setModeQueue        []setModeInflight
	logger              *zap.Logger
}

// setModeInflight tracks one mode write sent to the device actor: who
// to relay the response to, and the entity state to echo back on
// acceptance (number entities have no snapshot key to converge from).
type setModeInflight struct {
	replyTo *actor.PID
	echo    *domain.InputNumberSensorUpdateEvent
}

type healthCheckResult struct {
	deviceActorHealthy bool
	mqttActorHealthy   bool
	pollerActorHealthy bool
	checksReceived     int
	respondTo          *actor.PID
}

func NewMasterOfPuppetsActor(config config.Config, deviceActorProvider DeviceActorProvider, mqttActorProvider MQTTActorProvider, logger *zap.Logger) *MasterOfPuppetsActor {
	act := &MasterOfPuppetsActor{
		config:              config,
		behavior:            actor.NewBehavior(),
		stash:               &Stash{},
		logger:              ActorLogger(domain.ACTOR_ID_MASTER, logger),
		eventStream:         &eventstream.EventStream{},
		deviceActorProvider: deviceActorProvider,
		mqttActorProvider:   mqttActorProvider,
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *MasterOfPuppetsActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *MasterOfPuppetsActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("master@starting started")

		state.currentHealthCheck = healthCheckResult{}
		state.currentHealthCheck.reset()

		// start device child
		deviceActorPID, err := state.startDeviceActor(ctx)
		if err != nil {
			panic(err)
		}
		state.deviceActor = deviceActorPID

		// start MQTT child
		mqttActorPID, err := state.startMQTTActor(ctx)
		if err != nil {
			panic(err)
		}
		state.mqttActor = mqttActorPID

		// start poller child
		pollerActorPID, err := state.startPollerActor(ctx)
		if err != nil {
			panic(err)
		}
		state.pollerActor = pollerActorPID

		// start HA Discovery
		if state.config.MQTT.HADiscoveryEnable {
			_, err := state.startHADiscoveryActor(ctx)
			if err != nil {
				panic(err)
			}
		}

		// route sensor update events to the MQTT child
		root := ctx.ActorSystem().Root
		state.eventStream.Subscribe(func(evt any) {
			if ev, ok := evt.(domain.SensorUpdateEvent); ok {
				root.Send(mqttActorPID, domain.PublishSensorUpdateRequest{Event: ev})
			}
		})

		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("master@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterOfPuppetsActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("master@default ActorHealthRequest")
		state.currentHealthCheck.reset()
		state.currentHealthCheck.respondTo = ctx.Sender()
		// Device Actor Request
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.deviceActor, domain.ActorHealthRequest{}, 500*time.Millisecond), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_DEVICE,
				Healthy: false,
			}
		})
		// MQTT Actor Request
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.mqttActor, domain.ActorHealthRequest{}, 500*time.Millisecond), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_MQTT,
				Healthy: false,
			}
		})
		// Poller Actor Request
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.pollerActor, domain.ActorHealthRequest{}, 500*time.Millisecond), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_POLLER,
				Healthy: false,
			}
		})

		ctx.SetReceiveTimeout(1 * time.Second)

		state.behavior.BecomeStacked(state.HealthCheckReceive)
	case domain.GetSnapshotRequest:
		state.logger.Debug("master@default GetSnapshotRequest")
		ctx.Forward(state.pollerActor)
	case domain.RefreshSnapshotRequest:
		state.logger.Debug("master@default RefreshSnapshotRequest")
		ctx.Forward(state.pollerActor)
	case domain.SetOperatingModeRequest:
		state.logger.Debug("master@default SetOperatingModeRequest", zap.String("mode", msg.Mode))
		state.sendSetMode(ctx, msg, ctx.Sender(), nil)
	case adactor.ParsedCommand:
		// redirect parsedCommand to actor
		state.logger.Debug("master@default parsedCommand", zap.Any("command", msg.Command))
		if msg.Command != nil {
			cmd, err := ParsedMQTTCommandToCommand(*msg.Command)
			if err == nil && cmd != nil {
				switch pcmd := cmd.(type) {
				case domain.SetOperatingModeRequest:
					state.sendSetMode(ctx, pcmd, nil, numberCommandEcho(*msg.Command))
				}
			}
		}
	case domain.SetOperatingModeResponse:
		state.logger.Debug("master@default SetOperatingModeResponse", zap.Bool("accepted", msg.Accepted))
		var inflight setModeInflight
		if len(state.setModeQueue) > 0 {
			inflight = state.setModeQueue[0]
			state.setModeQueue = state.setModeQueue[1:]
		}
		if inflight.replyTo != nil {
			ctx.Send(inflight.replyTo, msg)
		}
		// an accepted mode change shows up on the next snapshot
		if !msg.HasResponseError() && msg.Accepted {
			if inflight.echo != nil {
				state.eventStream.Publish(*inflight.echo)
			}
			ctx.Send(state.pollerActor, domain.RefreshSnapshotRequest{})
		}
	case *actor.Terminated:
		// if some actor fails on boot, terminate
		if msg.Who.Id == fmt.Sprintf("%s/%s", domain.ACTOR_ID_MASTER, domain.ACTOR_ID_DEVICE) {
			state.logger.Error("master@default device error")
			panic(errors.New("device terminated"))
		}
	default:
		state.logger.Debug("master@default stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterOfPuppetsActor) HealthCheckReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.ReceiveTimeout:
		// if some actor does not respond to healthCheck, assume not healthy
		state.currentHealthCheck.respond(ctx)
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case domain.ActorHealthResponse:
		state.logger.Debug("master@healthcheck ActorHealthResponse", zap.String("sender", msg.Id), zap.Bool("healthy", msg.Healthy))
		state.currentHealthCheck.checksReceived++
		if msg.Healthy {
			if msg.Id == domain.ACTOR_ID_DEVICE {
				state.currentHealthCheck.deviceActorHealthy = true
			} else if msg.Id == domain.ACTOR_ID_MQTT {
				state.currentHealthCheck.mqttActorHealthy = true
			} else if msg.Id == domain.ACTOR_ID_POLLER {
				state.currentHealthCheck.pollerActorHealthy = true
			}
		}
		if state.currentHealthCheck.allReceived() {

			state.currentHealthCheck.respond(ctx)

			state.behavior.UnbecomeStacked()
			state.stash.UnstashAll(ctx)
		} else {
			ctx.SetReceiveTimeout(1 * time.Second)
		}
	default:
		state.logger.Debug("master@healthcheck stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

// sendSetMode routes a mode change to the device actor. The response
// comes back to the master so an accepted change can trigger a refresh
// before being relayed to the original requester.
func (state *MasterOfPuppetsActor) sendSetMode(ctx actor.Context, msg domain.SetOperatingModeRequest, replyTo *actor.PID, echo *domain.InputNumberSensorUpdateEvent) {
	state.setModeQueue = append(state.setModeQueue, setModeInflight{replyTo: replyTo, echo: echo})
	msg.ReplyToRef = (*domain.ActorRef)(ctx.Self())
	ctx.Send(state.deviceActor, msg)
}

// numberCommandEcho builds the state update to publish for a number
// entity once the device accepts its write.
func numberCommandEcho(cmd mqtt.ParsedMQTTCommand) *domain.InputNumberSensorUpdateEvent {
	if cmd.Command != "number" {
		return nil
	}
	value, err := strconv.ParseFloat(cmd.Payload, 64)
	if err != nil {
		return nil
	}
	return &domain.InputNumberSensorUpdateEvent{
		SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{
			Id: cmd.DeviceId,
		},
		Value: value,
	}
}

func (state *MasterOfPuppetsActor) startDeviceActor(ctx actor.Context) (*actor.PID, error) {

	supervisor := actor.NewExponentialBackoffStrategy(10*time.Second, 1*time.Second)

	deviceProps := actor.PropsFromProducer(func() actor.Actor {
		return state.deviceActorProvider()
	}, actor.WithSupervisor(supervisor))
	deviceActorPID, err := ctx.SpawnNamed(deviceProps, domain.ACTOR_ID_DEVICE)
	if err != nil {
		return nil, err
	}

	return deviceActorPID, nil
}

func (state *MasterOfPuppetsActor) startPollerActor(ctx actor.Context) (*actor.PID, error) {

	decider := func(reason interface{}) actor.Directive {
		log.Printf("handling failure for child. reason: %v", reason)
		return actor.RestartDirective
	}
	supervisor := actor.NewOneForOneStrategy(1, 10*time.Second, decider)

	pollerProps := actor.PropsFromProducer(func() actor.Actor {
		return NewPollerActor(&state.config, state.deviceActor, state.eventStream, state.logger)
	}, actor.WithSupervisor(supervisor))
	pollerActorPID, err := ctx.SpawnNamed(pollerProps, domain.ACTOR_ID_POLLER)
	if err != nil {
		return nil, err
	}

	return pollerActorPID, nil
}

func (state *MasterOfPuppetsActor) startHADiscoveryActor(ctx actor.Context) (*actor.PID, error) {

	decider := func(reason interface{}) actor.Directive {
		log.Printf("handling failure for child. reason: %v", reason)
		return actor.RestartDirective
	}
	supervisor := actor.NewOneForOneStrategy(1, 10*time.Second, decider)

	haDiscProps := actor.PropsFromProducer(func() actor.Actor {
		return NewHADiscoveryActor(&state.config, state.deviceActor, state.mqttActor, state.logger)
	}, actor.WithSupervisor(supervisor))
	haDiscPID, err := ctx.SpawnNamed(haDiscProps, domain.ACTOR_ID_HA_DISCOVERY)
	if err != nil {
		return nil, err
	}

	return haDiscPID, nil
}

func (state *MasterOfPuppetsActor) startMQTTActor(ctx actor.Context) (*actor.PID, error) {

	supervisor := actor.NewExponentialBackoffStrategy(10*time.Second, 1*time.Second)

	mqttProps := actor.PropsFromProducer(func() actor.Actor {
		return state.mqttActorProvider()
	}, actor.WithSupervisor(supervisor))
	mqttActorPID, err := ctx.SpawnNamed(mqttProps, domain.ACTOR_ID_MQTT)
	if err != nil {
		return nil, err
	}

	return mqttActorPID, nil
}

func (state *healthCheckResult) reset() {
	state.deviceActorHealthy = false
	state.mqttActorHealthy = false
	state.pollerActorHealthy = false
	state.checksReceived = 0
}

func (state *healthCheckResult) allReceived() bool {
	return state.checksReceived == 3
}

func (state *healthCheckResult) allHealthy() bool {
	return state.deviceActorHealthy && state.mqttActorHealthy && state.pollerActorHealthy
}

func (state *healthCheckResult) respond(ctx actor.Context) {
	resp := domain.ActorHealthResponse{
		Id:      domain.ACTOR_ID_MASTER,
		Healthy: state.allHealthy(),
	}
	if state.respondTo != nil {
		ctx.Send(state.respondTo, resp)
	}
}
