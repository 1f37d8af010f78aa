package actor

import (
	"errors"
	"fmt"
	"time"

	"marstek2mqtt/internal/config"
	"marstek2mqtt/internal/core/domain"
	"marstek2mqtt/internal/core/events"
	"marstek2mqtt/internal/core/service"
	. "marstek2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/asynkron/protoactor-go/scheduler"
	"go.uber.org/zap"
)

// PollerActor runs the poll cycle against the device actor: energy
// status first, then operating mode, then battery status, with a
// configurable pause between calls. A cycle is never overlapped;
// refresh requests arriving mid-cycle are stashed and served right
// after.
type PollerActor struct {
	behavior  actor.Behavior
	stash     *Stash
	scheduler *scheduler.TimerScheduler

	deviceActor *actor.PID
	config      *config.Config
	eventStream *eventstream.EventStream

	cache         *service.SnapshotCache
	lastPublished domain.Snapshot
	cycle         *pollCycle
	cancelTick    scheduler.CancelFunc

	logger *zap.Logger
}

type pollTick struct {
}

type modeTick struct {
}

type batteryTick struct {
}

type pollCycle struct {
	snapshot domain.Snapshot
	replyTo  *actor.PID
}

func NewPollerActor(config *config.Config, deviceActor *actor.PID, eventStream *eventstream.EventStream, logger *zap.Logger) *PollerActor {
	act := &PollerActor{
		config:      config,
		deviceActor: deviceActor,
		behavior:    actor.NewBehavior(),
		stash:       &Stash{},
		logger:      ActorLogger(domain.ACTOR_ID_POLLER, logger),
		eventStream: eventStream,
		cache:       &service.SnapshotCache{},
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *PollerActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *PollerActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("poller@starting started")
		state.scheduler = scheduler.NewTimerScheduler(ctx)
		state.behavior.Become(state.DefaultReceive)
		// first cycle runs immediately
		ctx.Send(ctx.Self(), pollTick{})
		state.stash.UnstashAll(ctx)
	case *actor.Restarting:
	default:
		state.logger.Debug("poller@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *PollerActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("poller@default: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_POLLER,
			Healthy: true,
			State:   "idle",
		})
	case domain.GetSnapshotRequest:
		state.logger.Debug("poller@default: GetSnapshotRequest")
		state.respondSnapshot(ctx, msg)
	case pollTick:
		state.logger.Debug("poller@default tick")
		state.startCycle(ctx, nil)
	case domain.RefreshSnapshotRequest:
		state.logger.Debug("poller@default: RefreshSnapshotRequest")
		state.startCycle(ctx, ForRequest(msg).ReplyTo(ctx))
	default:
		state.logger.Debug("poller@default default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

// CycleReceive drives one poll cycle. Health and snapshot queries are
// answered inline; everything else waits for the cycle to finish.
func (state *PollerActor) CycleReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_POLLER,
			Healthy: true,
			State:   "polling",
		})
	case domain.GetSnapshotRequest:
		state.respondSnapshot(ctx, msg)
	case domain.GetEnergyStatusResponse:
		if msg.HasResponseError() || msg.Status == nil {
			state.logger.Warn("poller@cycle primary query failed", zap.Error(msg.GetResponseError()))
			state.failCycle(ctx)
			return
		}
		state.logger.Debug("poller@cycle GetEnergyStatusResponse")
		state.cycle.snapshot = service.SeedSnapshot(msg.Status)
		state.afterCallDelay(ctx, modeTick{})
	case modeTick:
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.deviceActor, domain.GetOperatingModeRequest{}, state.deviceCallTimeout()), func(err error) any {
			return domain.GetOperatingModeResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{
					ResponseError: err,
				},
			}
		})
	case domain.GetOperatingModeResponse:
		if msg.HasResponseError() {
			// secondary query, the key is simply omitted
			state.logger.Warn("poller@cycle mode query failed", zap.Error(msg.GetResponseError()))
		} else {
			state.logger.Debug("poller@cycle GetOperatingModeResponse")
			service.ApplyOperatingMode(state.cycle.snapshot, msg.Mode)
		}
		state.afterCallDelay(ctx, batteryTick{})
	case batteryTick:
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.deviceActor, domain.GetBatteryStatusRequest{}, state.deviceCallTimeout()), func(err error) any {
			return domain.GetBatteryStatusResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{
					ResponseError: err,
				},
			}
		})
	case domain.GetBatteryStatusResponse:
		if msg.HasResponseError() {
			state.logger.Warn("poller@cycle battery query failed", zap.Error(msg.GetResponseError()))
		} else {
			state.logger.Debug("poller@cycle GetBatteryStatusResponse")
			service.MergeBatteryStatus(state.cycle.snapshot, msg.Status)
		}
		state.commitCycle(ctx)
	default:
		state.logger.Debug("poller@cycle: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *PollerActor) startCycle(ctx actor.Context, replyTo *actor.PID) {
	if state.cancelTick != nil {
		state.cancelTick()
		state.cancelTick = nil
	}
	state.cycle = &pollCycle{replyTo: replyTo}
	PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.deviceActor, domain.GetEnergyStatusRequest{}, state.deviceCallTimeout()), func(err error) any {
		return domain.GetEnergyStatusResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{
				ResponseError: err,
			},
		}
	})
	state.behavior.BecomeStacked(state.CycleReceive)
}

// commitCycle finishes a cycle whose primary query succeeded: smooth
// power keys against the previous baseline, commit and publish.
func (state *PollerActor) commitCycle(ctx actor.Context) {
	snapshot := state.cycle.snapshot
	service.SmoothPower(snapshot, state.cache.Baseline(), float64(state.config.MonitorConfig.MinPowerDeltaWatt))
	committed := state.cache.Commit(snapshot, time.Now())
	state.lastPublished = committed

	state.publishUpdateEvents(committed)
	if state.config.MonitorConfig.MarkStaleUnavailable {
		state.eventStream.Publish(domain.BridgeStateUpdateEvent{
			SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: domain.SENSOR_ID_BRIDGE_STATE},
			Value:                  true,
		})
	}

	if state.cycle.replyTo != nil {
		ctx.Send(state.cycle.replyTo, domain.RefreshSnapshotResponse{Snapshot: committed.Clone()})
	}
	state.finishCycle(ctx)
}

// failCycle handles a failed primary query: fall back to the previous
// snapshot marked stale, or report the failure if there is nothing to
// fall back to.
func (state *PollerActor) failCycle(ctx actor.Context) {
	if state.cache.HasBaseline() {
		stale := state.cache.StaleCopy()
		state.lastPublished = stale

		state.publishUpdateEvents(stale)
		if state.config.MonitorConfig.MarkStaleUnavailable {
			state.eventStream.Publish(domain.BridgeStateUpdateEvent{
				SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: domain.SENSOR_ID_BRIDGE_STATE},
				Value:                  false,
			})
		}

		if state.cycle.replyTo != nil {
			ctx.Send(state.cycle.replyTo, domain.RefreshSnapshotResponse{Snapshot: stale.Clone()})
		}
	} else {
		if state.cycle.replyTo != nil {
			ctx.Send(state.cycle.replyTo, domain.RefreshSnapshotResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{
					ResponseError: domain.ErrUpdateFailed,
				},
			})
		}
	}
	state.finishCycle(ctx)
}

func (state *PollerActor) finishCycle(ctx actor.Context) {
	state.cycle = nil
	if state.config.MonitorConfig.PollIntervalMillis > 0 {
		state.cancelTick = state.scheduler.RequestOnce(time.Duration(state.config.MonitorConfig.PollIntervalMillis)*time.Millisecond, ctx.Self(), pollTick{})
	}
	state.behavior.UnbecomeStacked()
	state.stash.UnstashAll(ctx)
}

func (state *PollerActor) publishUpdateEvents(snapshot domain.Snapshot) {
	for _, ev := range events.SnapshotToUpdateEvents(snapshot) {
		state.eventStream.Publish(ev)
	}
}

func (state *PollerActor) respondSnapshot(ctx actor.Context, msg domain.GetSnapshotRequest) {
	if state.lastPublished == nil {
		ForRequest(msg).Respond(ctx, domain.GetSnapshotResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{
				ResponseError: errors.New("no snapshot available yet"),
			},
		})
		return
	}
	ForRequest(msg).Respond(ctx, domain.GetSnapshotResponse{
		Snapshot: state.lastPublished.Clone(),
	})
}

// afterCallDelay schedules the next device call of the cycle after the
// configured inter-call pause.
func (state *PollerActor) afterCallDelay(ctx actor.Context, tick any) {
	delay := time.Duration(state.config.MonitorConfig.InterCallDelayMillis) * time.Millisecond
	if delay <= 0 {
		ctx.Send(ctx.Self(), tick)
		return
	}
	state.scheduler.RequestOnce(delay, ctx.Self(), tick)
}

func (state *PollerActor) deviceCallTimeout() time.Duration {
	return time.Duration(state.config.DeviceUDP.TimeoutMillis)*time.Millisecond + 2*time.Second
}
