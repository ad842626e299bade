package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adactor "github.com/phildimond/envoylimiter/internal/adapter/actor"
	"github.com/phildimond/envoylimiter/internal/config"
	"github.com/phildimond/envoylimiter/internal/core/actor"
	"github.com/phildimond/envoylimiter/internal/core/domain"
	"github.com/phildimond/envoylimiter/internal/metrics"
	"github.com/phildimond/envoylimiter/internal/server"
	"github.com/phildimond/envoylimiter/internal/util/actorutil"
	"github.com/phildimond/envoylimiter/pkg/relayboard"

	pactor "github.com/asynkron/protoactor-go/actor"
	"github.com/reugn/go-quartz/job"
	"github.com/reugn/go-quartz/quartz"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const availabilityHeartbeatInterval = 10 * time.Second

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Println("shutting down gracefully, press Ctrl+C again to force")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	log.Println("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {

	// load and print config
	cfg, err := initConfig()
	if err != nil {
		slog.Error("config errors", "error", err)
		return
	}
	safePrintConfig(*cfg)

	// zap logger
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)

	logger := zap.Must(zapCfg.Build())

	// init actor system
	as := actorutil.NewActorSystemWithZapLogger(logger)
	ctx := as.Root

	defer logger.Sync()

	// init Relay actor provider
	relayProv, err := relayActorProvider(cfg, logger)
	if err != nil {
		panic(err)
	}

	// metrics sink
	sink, err := metrics.NewPromSink(nil)
	if err != nil {
		panic(err)
	}

	props := pactor.PropsFromProducer(func() pactor.Actor {
		return actor.NewMasterOfPuppetsActor(*cfg, mqttActorProvider(cfg, logger), relayProv, sink, logger)
	})
	pid, err := ctx.SpawnNamed(props, "master")
	if err != nil {
		return
	}

	// availability heartbeat
	sched, err := startHeartbeat(ctx, pid)
	if err != nil {
		panic(err)
	}
	defer sched.Stop()

	server := server.NewServer(*cfg, ctx, pid)
	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(server, done)

	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("http server error: %s", err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Println("Graceful shutdown complete.")

	ctx.Stop(pid)
	as.Shutdown()
}

// startHeartbeat re-publishes the retained online state every 10s so a
// broker restart cannot leave a stale offline will in place.
func startHeartbeat(ctx *pactor.RootContext, masterActor *pactor.PID) (quartz.Scheduler, error) {
	sched := quartz.NewStdScheduler()
	sched.Start(context.Background())

	heartbeat := job.NewFunctionJob(func(context.Context) (int, error) {
		ctx.Send(masterActor, domain.PublishSensorUpdateRequest{
			Retain: true,
			Event: domain.BridgeStateUpdateEvent{
				Value: true,
			},
		})
		return 0, nil
	})
	detail := quartz.NewJobDetail(heartbeat, quartz.NewJobKey("availability_heartbeat"))
	if err := sched.ScheduleJob(detail, quartz.NewSimpleTrigger(availabilityHeartbeatInterval)); err != nil {
		return nil, err
	}
	return sched, nil
}

func initConfig() (*config.Config, error) {

	// alias PORT => ENVOYLIMITER_PORT
	if port := os.Getenv("PORT"); port != "" {
		os.Setenv("ENVOYLIMITER_PORT", port)
	}

	setConfigDefaults()

	viper.SetEnvPrefix("envoylimiter")
	viper.AutomaticEnv()

	// if defined, try to load config from yaml file
	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		if _, err := os.Stat(cfgFile); err == nil {
			slog.Info("Using config", "file", cfgFile)
			viper.SetConfigFile(cfgFile)

			err = viper.ReadInConfig()
			if err != nil {
				slog.Error("Error reading config file", "error", err)
			}
		}
	}

	var cfg config.Config

	err := viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	// parse log level
	switch viper.GetString("log_level") {
	case "trace":
		cfg.LogLevel = zap.DebugLevel
	case "debug":
		cfg.LogLevel = zap.DebugLevel
	case "info":
		cfg.LogLevel = zap.InfoLevel
	case "error":
		cfg.LogLevel = zap.ErrorLevel
	case "warn":
		cfg.LogLevel = zap.WarnLevel
	case "fatal":
		cfg.LogLevel = zap.FatalLevel
	default:
		cfg.LogLevel = zap.InfoLevel
	}

	// check and fix base topic
	baseTopic, err := config.CheckMQTTTopic(cfg.MQTT.BaseTopic)
	if err != nil {
		return nil, errors.New("invalid base topic. can only contain letters, numbers and underscores")
	}
	cfg.MQTT.BaseTopic = baseTopic

	// check and fix homeassistant discovery topic
	hadBaseTopic, err := config.CheckMQTTTopic(cfg.MQTT.HADiscoveryTopic)
	if err != nil {
		return nil, errors.New("invalid homeassistant discovery topic. can only contain letters, numbers and underscores")
	}
	cfg.MQTT.HADiscoveryTopic = hadBaseTopic

	// check bounds
	if cfg.MQTT.PowerTopic == "" {
		return nil, errors.New("config param mqtt.power_topic must not be empty")
	}
	if cfg.ControllerConfig.TickIntervalMillis < 50 {
		return nil, errors.New("config param controller.tick_interval_millis should be >= 50ms")
	}
	if cfg.ControllerConfig.MaxBatteryChargeKW <= 0 {
		return nil, errors.New("config param controller.max_battery_charge_kw should be > 0")
	}
	switch cfg.RelayConfig.Driver {
	case "gpio":
		if len(cfg.RelayConfig.GPIOPins) != relayboard.NumOutputs {
			return nil, fmt.Errorf("config param relay.gpio_pins should list %d pins", relayboard.NumOutputs)
		}
	case "mock":
	default:
		return nil, errors.New("config param relay.driver should be gpio or mock")
	}

	return &cfg, nil
}

func relayActorProvider(cfg *config.Config, logger *zap.Logger) (actor.RelayActorProvider, error) {

	var driver relayboard.Driver
	if cfg.RelayConfig.Driver == "gpio" {
		gpio, err := relayboard.CreateSysfsDriver(cfg.RelayConfig.GPIOPins, logger)
		if err != nil {
			return nil, err
		}
		driver = gpio
	} else {
		driver = relayboard.NewTestDriver()
	}

	return func() *adactor.RelayActor {
		return adactor.NewRelayActor(driver, logger)
	}, nil
}

func mqttActorProvider(cfg *config.Config, logger *zap.Logger) actor.MQTTActorProvider {
	return func() *adactor.MQTTActor {
		return adactor.NewMQTTActor(cfg, logger)
	}
}

func setConfigDefaults() {
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("mqtt.ha_discovery_enable", false)
	viper.SetDefault("mqtt.base_topic", "envoylimiter")
	viper.SetDefault("mqtt.ha_discovery_topic", "homeassistant")
	viper.SetDefault("mqtt.power_topic", "homeassistant/Power")
	viper.SetDefault("controller.tick_interval_millis", 250)
	viper.SetDefault("controller.max_battery_charge_kw", 5.0)
	viper.SetDefault("relay.driver", "mock")
	viper.SetDefault("port", 8080)
}

func safePrintConfig(cfg config.Config) {
	cfg.MQTT.Username = "*redacted*"
	cfg.MQTT.Password = "*redacted*"
	slog.Info("Using", "config", cfg)
}
