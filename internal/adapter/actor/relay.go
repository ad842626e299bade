package actor

import (
	"fmt"
	"time"

	"github.com/phildimond/envoylimiter/internal/core/domain"
	"github.com/phildimond/envoylimiter/internal/util/actorutil"
	"github.com/phildimond/envoylimiter/pkg/relayboard"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

type RelayActor struct {
	behavior actor.Behavior
	stash    *actorutil.Stash
	driver   relayboard.Driver
	logger   *zap.Logger
}

type backgroundTaskResult struct {
	message any
	replyTo *actor.PID
}

func NewRelayActor(driver relayboard.Driver, logger *zap.Logger) *RelayActor {
	act := &RelayActor{
		driver:   driver,
		behavior: actor.NewBehavior(),
		stash:    &actorutil.Stash{},
		logger:   actorutil.ActorLogger(domain.ACTOR_ID_RELAY, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *RelayActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *RelayActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("relay@starting started")
		if err := state.driver.Open(); err != nil {
			panic(err)
		}
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case *actor.Restarting:
		state.driver.Close()
	default:
		state.logger.Debug("relay@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *RelayActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("relay@default: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_RELAY,
			Healthy: true,
			State:   "idle",
		})
	case domain.SetRelayOutputsRequest:
		state.logger.Debug("relay@default: SetRelayOutputsRequest", zap.Any("outputs", msg.Outputs))
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		outputs := msg.Outputs
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTaskNoError(ctx, func() *domain.SetRelayOutputsResponse {
			a := state.setOutputs(outputs)
			return &a
		}),
			mapTaskResult[domain.SetRelayOutputsResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.SetRelayOutputsResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				},
				replyTo: sender,
			}
		}).WithTimeout(2 * time.Second).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingDriver)
	case *actor.Stopping:
		state.driver.Close()
	default:
		state.logger.Debug("relay@default default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *RelayActor) WaitingDriver(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case backgroundTaskResult:
		state.logger.Debug("relay@waitingDriver backgroundTaskResult", zap.String("type", fmt.Sprintf("%T", msg.message)))
		if msg.replyTo != nil {
			ctx.Send(msg.replyTo, msg.message)
		}
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case *actor.Stopping:
		state.driver.Close()
	default:
		state.logger.Debug("relay@waitingDriver stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (a *RelayActor) setOutputs(outputs domain.RelayOutputs) domain.SetRelayOutputsResponse {
	for i := 0; i < relayboard.NumOutputs; i++ {
		if err := a.driver.SetOutput(i, outputs[i]); err != nil {
			a.logger.Error("relay write failed", zap.Int("index", i), zap.Error(err))
			return domain.SetRelayOutputsResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{
					ResponseError: err,
				},
			}
		}
	}
	return domain.SetRelayOutputsResponse{}
}

func mapTaskResult[T any](sender *actor.PID) func(t *T) *backgroundTaskResult {
	return func(t *T) *backgroundTaskResult {
		return &backgroundTaskResult{
			message: *t,
			replyTo: sender,
		}
	}
}
