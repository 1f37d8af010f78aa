package actor

import (
	"fmt"
	"time"

	"marstek2mqtt/internal/core/domain"
	"marstek2mqtt/internal/util/actorutil"
	"marstek2mqtt/pkg/marstek"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/reugn/go-quartz/logger"
	"go.uber.org/zap"
)

// DeviceActor serializes access to the UDP device client. Requests are
// answered one at a time; anything arriving while a call is in flight
// is stashed until the reply comes back.
type DeviceActor struct {
	behavior    actor.Behavior
	stash       *actorutil.Stash
	client      marstek.DeviceClient
	taskTimeout time.Duration
	logger      *zap.Logger
}

type backgroundTaskResult struct {
	message any
	replyTo *actor.PID
}

func NewDeviceActor(client marstek.DeviceClient, taskTimeout time.Duration, logger *zap.Logger) *DeviceActor {
	act := &DeviceActor{
		client:      client,
		taskTimeout: taskTimeout,
		behavior:    actor.NewBehavior(),
		stash:       &actorutil.Stash{},
		logger:      actorutil.ActorLogger(domain.ACTOR_ID_DEVICE, logger),
	}
	act.behavior.Become(act.DefaultReceive)
	return act
}

func (state *DeviceActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *DeviceActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("device@default: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_DEVICE,
			Healthy: true,
			State:   "idle",
		})
	case domain.GetEnergyStatusRequest:
		state.logger.Debug("device@default: GetEnergyStatusRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, state.getEnergyStatus),
			mapTaskResult[domain.GetEnergyStatusResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.GetEnergyStatusResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				},
				replyTo: sender,
			}
		}).WithTimeout(state.taskTimeout).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingDevice)
	case domain.GetOperatingModeRequest:
		state.logger.Debug("device@default: GetOperatingModeRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, state.getOperatingMode),
			mapTaskResult[domain.GetOperatingModeResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.GetOperatingModeResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				},
				replyTo: sender,
			}
		}).WithTimeout(state.taskTimeout).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingDevice)
	case domain.GetBatteryStatusRequest:
		state.logger.Debug("device@default: GetBatteryStatusRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, state.getBatteryStatus),
			mapTaskResult[domain.GetBatteryStatusResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.GetBatteryStatusResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				},
				replyTo: sender,
			}
		}).WithTimeout(state.taskTimeout).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingDevice)
	case domain.SetOperatingModeRequest:
		state.logger.Debug("device@default: SetOperatingModeRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, func() (*domain.SetOperatingModeResponse, error) {
			return state.setOperatingMode(msg.Mode, msg.Config)
		}),
			mapTaskResult[domain.SetOperatingModeResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.SetOperatingModeResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				},
				replyTo: sender,
			}
		}).WithTimeout(state.taskTimeout).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingDevice)
	default:
		state.logger.Debug("device@default default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *DeviceActor) WaitingDevice(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case backgroundTaskResult:
		state.logger.Debug("device@WaitingDevice backgroundTaskResult", zap.String("type", fmt.Sprintf("%T", msg.message)))
		ctx.Send(msg.replyTo, msg.message)
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("device@WaitingDevice stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (a *DeviceActor) getEnergyStatus() (*domain.GetEnergyStatusResponse, error) {
	status, err := a.client.GetEnergyStatus()
	if err != nil {
		logger.Error(err)
		return nil, err
	}
	return &domain.GetEnergyStatusResponse{
		Status: status,
	}, nil
}

func (a *DeviceActor) getOperatingMode() (*domain.GetOperatingModeResponse, error) {
	mode, err := a.client.GetMode()
	if err != nil {
		logger.Error(err)
		return nil, err
	}
	return &domain.GetOperatingModeResponse{
		Mode: mode,
	}, nil
}

func (a *DeviceActor) getBatteryStatus() (*domain.GetBatteryStatusResponse, error) {
	status, err := a.client.GetBatteryStatus()
	if err != nil {
		logger.Error(err)
		return nil, err
	}
	return &domain.GetBatteryStatusResponse{
		Status: status,
	}, nil
}

func (a *DeviceActor) setOperatingMode(mode string, config map[string]any) (*domain.SetOperatingModeResponse, error) {
	accepted, err := a.client.SetMode(mode, config)
	if err != nil {
		logger.Error(err)
		return nil, err
	}
	return &domain.SetOperatingModeResponse{
		Accepted: accepted,
	}, nil
}

func mapTaskResult[T any](sender *actor.PID) func(t *T) *backgroundTaskResult {
	return func(t *T) *backgroundTaskResult {
		return &backgroundTaskResult{
			message: *t,
			replyTo: sender,
		}
	}
}
