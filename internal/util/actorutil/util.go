package actorutil

import (
	"log/slog"
	"strconv"
	"time"

	"marstek2mqtt/internal/core/domain"
	"marstek2mqtt/internal/mqtt"
	"marstek2mqtt/pkg/marstek"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/lmittmann/tint"
	"go.uber.org/zap"
)

func PipeToSelfWithRecover(ctx actor.Context, future *actor.Future, mapFn func(error) any) {
	ctx.ReenterAfter(future, func(msg any, err error) {
		if err != nil {
			ctx.Send(ctx.Self(), mapFn(err))
			return
		}
		ctx.Send(ctx.Self(), msg)
	})
}

func NewActorSystemWithZapLogger(logger *zap.Logger) *actor.ActorSystem {
	stdOutLogger := zap.NewStdLog(logger)

	var slogLevel slog.Level = slog.LevelInfo

	switch logger.Level() {
	case zap.DebugLevel:
		slogLevel = slog.LevelDebug
	case zap.InfoLevel:
		slogLevel = slog.LevelInfo
	case zap.WarnLevel:
		slogLevel = slog.LevelWarn
	case zap.ErrorLevel:
		slogLevel = slog.LevelError
	case zap.PanicLevel:
		slogLevel = slog.LevelError
	}

	return actor.NewActorSystem(actor.WithLoggerFactory(func(system *actor.ActorSystem) *slog.Logger {

		// create a new logger
		return slog.New(tint.NewHandler(stdOutLogger.Writer(), &tint.Options{
			Level:      slogLevel,
			TimeFormat: time.DateTime,
		}))
	}))
}

func ActorLogger(actorName string, logger *zap.Logger) *zap.Logger {
	return logger.With(zap.String("actor", actorName))
}

func ParsedMQTTCommandToCommand(cmd mqtt.ParsedMQTTCommand) (domain.ActorRequest, error) {
	if cmd.Command == "select" && cmd.DeviceId == domain.KEY_ES_MODE {
		switch cmd.Payload {
		case marstek.MODE_AUTO, marstek.MODE_AI, marstek.MODE_MANUAL, marstek.MODE_PASSIVE:
			return domain.SetOperatingModeRequest{
				Mode:   cmd.Payload,
				Config: DefaultModeConfig(cmd.Payload),
			}, nil
		}
		return nil, nil
	} else if cmd.Command == "number" && cmd.DeviceId == domain.NUMBER_ID_PASSIVE_POWER {
		value, err := strconv.ParseFloat(cmd.Payload, 64)
		if err != nil || value < 0 || value > 10000 {
			return nil, err
		}
		return domain.SetOperatingModeRequest{
			Mode: marstek.MODE_PASSIVE,
			Config: map[string]any{
				marstek.CONFIG_KEY_PASSIVE: map[string]any{"power": int(value)},
			},
		}, nil
	} else if cmd.Command == "number" && cmd.DeviceId == domain.NUMBER_ID_PASSIVE_COUNTDOWN {
		value, err := strconv.ParseFloat(cmd.Payload, 64)
		if err != nil || value < 0 || value > 86400 {
			return nil, err
		}
		return domain.SetOperatingModeRequest{
			Mode: marstek.MODE_PASSIVE,
			Config: map[string]any{
				marstek.CONFIG_KEY_PASSIVE: map[string]any{"cd_time": int(value)},
			},
		}, nil
	}
	return nil, nil
}

// DefaultModeConfig is the per-mode config object the firmware expects
// alongside a bare mode switch.
func DefaultModeConfig(mode string) map[string]any {
	switch mode {
	case marstek.MODE_AUTO:
		return map[string]any{marstek.CONFIG_KEY_AUTO: map[string]any{"enable": 1}}
	case marstek.MODE_AI:
		return map[string]any{marstek.CONFIG_KEY_AI: map[string]any{"enable": 1}}
	case marstek.MODE_MANUAL:
		return map[string]any{marstek.CONFIG_KEY_MANUAL: map[string]any{
			"time_num":   0,
			"start_time": "08:00",
			"end_time":   "20:00",
			"week_set":   127,
			"power":      0,
			"enable":     1,
		}}
	case marstek.MODE_PASSIVE:
		return map[string]any{marstek.CONFIG_KEY_PASSIVE: map[string]any{}}
	}
	return nil
}
