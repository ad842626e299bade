package actor

import (
	"fmt"
	"testing"
	"time"

	adactor "github.com/phildimond/envoylimiter/internal/adapter/actor"
	"github.com/phildimond/envoylimiter/internal/core/domain"
	"github.com/phildimond/envoylimiter/internal/metrics"
	"github.com/phildimond/envoylimiter/internal/mqtt"
	"github.com/phildimond/envoylimiter/internal/util"
	"github.com/phildimond/envoylimiter/pkg/relayboard"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMasterActor(t *testing.T) {

	as := actor.NewActorSystem()
	context := as.Root

	cfg := util.LoadTestConfig()
	logCfg := zap.NewDevelopmentConfig()
	logCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	logger := zap.Must(logCfg.Build())

	driver := relayboard.NewTestDriver()

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewMasterOfPuppetsActor(cfg, func() *adactor.MQTTActor {
			return adactor.NewTestMQTTActor(&cfg, logger)
		}, func() *adactor.RelayActor {
			return adactor.NewRelayActor(driver, logger)
		}, metrics.NopSink{}, logger)
	})
	pid, err := context.SpawnNamed(props, "master")
	if err != nil {
		t.Error(err)
		return
	}

	time.Sleep(2 * time.Second)

	res, err := context.RequestFuture(pid, domain.ActorHealthRequest{}, 10*time.Second).Result()
	if err != nil {
		t.Error(err)
		//return
	}
	healthResp, ok := res.(domain.ActorHealthResponse)
	assert.True(t, ok)
	fmt.Printf("Health response: %+v\n", healthResp)
	assert.NotNil(t, healthResp)

	assert.True(t, healthResp.Healthy, "healthy is true")
	assert.Equal(t, "off", healthResp.State, "controller starts with curtailment off")

	context.Stop(pid)

	as.Shutdown()
}

func TestMasterActorRoutesCommands(t *testing.T) {

	as := actor.NewActorSystem()
	context := as.Root

	cfg := util.LoadTestConfig()
	logCfg := zap.NewDevelopmentConfig()
	logCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	logger := zap.Must(logCfg.Build())

	driver := relayboard.NewTestDriver()

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewMasterOfPuppetsActor(cfg, func() *adactor.MQTTActor {
			return adactor.NewTestMQTTActor(&cfg, logger)
		}, func() *adactor.RelayActor {
			return adactor.NewRelayActor(driver, logger)
		}, metrics.NopSink{}, logger)
	})
	pid, err := context.SpawnNamed(props, "master")
	if err != nil {
		t.Error(err)
		return
	}

	time.Sleep(2 * time.Second)

	// an MQTT curtailment command should reach the controller
	context.Send(pid, adactor.ParsedCommand{
		Command: &mqtt.ParsedMQTTCommand{
			DeviceId: domain.SWITCH_ID_CURTAILMENT,
			Command:  "switch",
			Payload:  "ON",
		},
	})

	time.Sleep(500 * time.Millisecond)

	res, err := context.RequestFuture(pid, domain.ActorHealthRequest{}, 10*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	healthResp, ok := res.(domain.ActorHealthResponse)
	assert.True(t, ok)
	assert.Equal(t, "auto", healthResp.State, "curtailment command flips the mode")

	context.Stop(pid)

	as.Shutdown()
}
