package actor

import (
	"fmt"
	"time"

	"github.com/phildimond/envoylimiter/internal/config"
	"github.com/phildimond/envoylimiter/internal/core/domain"
	"github.com/phildimond/envoylimiter/internal/core/events"
	"github.com/phildimond/envoylimiter/internal/core/service"
	"github.com/phildimond/envoylimiter/internal/metrics"
	. "github.com/phildimond/envoylimiter/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/asynkron/protoactor-go/scheduler"
	"go.uber.org/zap"
)

// ControllerActor owns the decision engine state. Commands, telemetry
// and ticks all arrive through its mailbox, so the state never needs a
// lock.
type ControllerActor struct {
	behavior  actor.Behavior
	stash     *Stash
	scheduler *scheduler.TimerScheduler

	relayActor   *actor.PID
	config       *config.Config
	eventStream  *eventstream.EventStream
	controller   *service.Controller
	sink         metrics.Sink
	tickInterval time.Duration

	logger *zap.Logger
}

type controllerTick struct {
}

func NewControllerActor(config *config.Config, relayActor *actor.PID, eventStream *eventstream.EventStream,
	sink metrics.Sink, logger *zap.Logger) *ControllerActor {
	logic := &service.DefaultCurtailmentLogic{
		MaxChargeKW: config.ControllerConfig.MaxBatteryChargeKW,
		Logger:      logger,
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	act := &ControllerActor{
		config:       config,
		relayActor:   relayActor,
		behavior:     actor.NewBehavior(),
		stash:        &Stash{},
		logger:       ActorLogger(domain.ACTOR_ID_CONTROLLER, logger),
		eventStream:  eventStream,
		controller:   service.NewController(logic, logger),
		sink:         sink,
		tickInterval: time.Duration(config.ControllerConfig.TickIntervalMillis) * time.Millisecond,
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *ControllerActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *ControllerActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("controller@starting started")

		state.scheduler = scheduler.NewTimerScheduler(ctx)
		state.scheduler.RequestOnce(state.tickInterval, ctx.Self(), controllerTick{})

		state.publishSwitchStates()
		state.publishMode()

		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case *actor.Restarting:
	default:
		state.logger.Debug("controller@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *ControllerActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("controller@default: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_CONTROLLER,
			Healthy: true,
			State:   state.controller.Mode(),
		})
	case controllerTick:
		state.onTick(ctx)
	case domain.TelemetryMessage:
		snapshot, err := service.DecodeTelemetry(msg.Payload)
		if err != nil {
			// a bad payload never replaces the snapshot already held
			state.sink.RecordDecodeError()
			state.logger.Debug("controller@default: telemetry rejected", zap.Error(err))
			return
		}
		state.controller.OfferSnapshot(snapshot)
	case domain.ControllerRequest:
		state.onCommand(ctx, msg)
	case domain.SetRelayOutputsResponse:
		if msg.HasResponseError() {
			state.logger.Error("controller@default: relay write failed", zap.Error(msg.GetResponseError()))
		}
	default:
		state.logger.Debug("controller@default: recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *ControllerActor) onTick(ctx actor.Context) {
	result := state.controller.Tick()
	state.sink.RecordTick()
	if result.Changed {
		state.sink.RecordLevel(result.Level)
		state.sink.RecordLevelChange()

		// outputs first, then the retained level republish
		ctx.Request(state.relayActor, domain.SetRelayOutputsRequest{
			Outputs: result.Outputs,
		})
		for _, ev := range events.RelayLevelUpdateEvents(result.Level) {
			state.eventStream.Publish(ev)
		}
	}

	// schedule next tick
	state.scheduler.RequestOnce(state.tickInterval, ctx.Self(), controllerTick{})
}

func (state *ControllerActor) onCommand(ctx actor.Context, msg domain.ControllerRequest) {
	switch cmd := msg.(type) {
	case domain.CurtailmentEnableRequest:
		state.logger.Sugar().Debugf("controller@default: cmd curtailment %t", cmd.Enable)
		state.controller.EnableCurtailment(cmd.Enable)
		state.eventStream.Publish(events.CurtailmentSwitchUpdateEvents(cmd.Enable))
		state.publishMode()
	case domain.ManualOverrideRequest:
		state.logger.Sugar().Debugf("controller@default: cmd manual override %t", cmd.Enable)
		state.controller.SetManualOverride(cmd.Enable)
		state.eventStream.Publish(events.ManualOverrideSwitchUpdateEvents(cmd.Enable))
		state.publishMode()
	case domain.SetRelayLevelRequest:
		state.logger.Sugar().Debugf("controller@default: cmd set level %d", cmd.Level)
		if err := state.controller.CommandLevel(cmd.Level); err != nil {
			state.sink.RecordDroppedCommand()
			state.logger.Warn("controller@default: level command dropped", zap.Error(err))
		}
	case domain.GetControllerStateRequest:
		resp := domain.GetControllerStateResponse{
			CurtailmentEnabled: state.controller.State.CurtailmentEnabled,
			ManualOverride:     state.controller.State.ManualOverride,
			CurrentLevel:       state.controller.State.CurrentLevel,
			CommandedLevel:     state.controller.State.CommandedLevel,
		}
		ForRequest(cmd).Respond(ctx, resp)
	}
}

func (state *ControllerActor) publishSwitchStates() {
	state.eventStream.Publish(events.CurtailmentSwitchUpdateEvents(state.controller.State.CurtailmentEnabled))
	state.eventStream.Publish(events.ManualOverrideSwitchUpdateEvents(state.controller.State.ManualOverride))
}

func (state *ControllerActor) publishMode() {
	state.eventStream.Publish(events.ControllerModeUpdateEvents(state.controller.Mode()))
}
