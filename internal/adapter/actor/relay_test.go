package actor

import (
	"errors"
	"testing"
	"time"

	"github.com/phildimond/envoylimiter/internal/core/domain"
	"github.com/phildimond/envoylimiter/pkg/relayboard"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRelayActorWritesOutputs(t *testing.T) {

	logger := zap.Must(zap.NewDevelopment())

	as := actor.NewActorSystem()
	context := as.Root

	driver := relayboard.NewTestDriver()

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewRelayActor(driver, logger)
	})
	pid := context.Spawn(props)

	time.Sleep(200 * time.Millisecond)

	assert.True(t, driver.Opened(), "driver should be open")

	res, err := context.RequestFuture(pid, domain.SetRelayOutputsRequest{
		Outputs: domain.RelayOutputs{true, false, true, true},
	}, 3*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp, ok := res.(domain.SetRelayOutputsResponse)
	assert.True(t, ok)
	assert.False(t, resp.HasResponseError())
	assert.Equal(t, [4]bool{true, false, true, true}, driver.Outputs())

	// all off
	res, err = context.RequestFuture(pid, domain.SetRelayOutputsRequest{
		Outputs: domain.RelayOutputs{},
	}, 3*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp, ok = res.(domain.SetRelayOutputsResponse)
	assert.True(t, ok)
	assert.False(t, resp.HasResponseError())
	assert.Equal(t, [4]bool{}, driver.Outputs())

	context.Stop(pid)
	as.Shutdown()
}

func TestRelayActorReportsDriverError(t *testing.T) {

	logger := zap.Must(zap.NewDevelopment())

	as := actor.NewActorSystem()
	context := as.Root

	driver := relayboard.NewTestDriver()

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewRelayActor(driver, logger)
	})
	pid := context.Spawn(props)

	time.Sleep(200 * time.Millisecond)

	driver.FailNext(errors.New("write failed"))

	res, err := context.RequestFuture(pid, domain.SetRelayOutputsRequest{
		Outputs: domain.RelayOutputs{true, true, true, true},
	}, 3*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp, ok := res.(domain.SetRelayOutputsResponse)
	assert.True(t, ok)
	assert.True(t, resp.HasResponseError())

	context.Stop(pid)
	as.Shutdown()
}
