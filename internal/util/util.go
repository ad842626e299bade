package util

import (
	"github.com/phildimond/envoylimiter/internal/config"

	"go.uber.org/zap"
)

func LoadTestConfig() config.Config {
	return config.Config{
		LogLevel: zap.DebugLevel,
		MQTT: config.MQTTConfig{
			Host:       "localhost",
			Port:       1883,
			BaseTopic:  "envoylimiter",
			PowerTopic: "homeassistant/Power",
		},
		ControllerConfig: config.ControllerConfig{
			TickIntervalMillis: 250,
			MaxBatteryChargeKW: 5.0,
		},
		RelayConfig: config.RelayConfig{
			Driver:   "mock",
			GPIOPins: []uint{16, 17, 18, 19},
		},
		Port: 8080,
	}
}
