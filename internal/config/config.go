package config

import (
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap/zapcore"
)

type Config struct {
	LogLevel zapcore.Level
	MQTT     MQTTConfig `mapstructure:"mqtt"`

	ControllerConfig ControllerConfig `mapstructure:"controller"`
	RelayConfig      RelayConfig      `mapstructure:"relay"`
	Port             uint             `mapstructure:"port"`
	HttpLog          bool             `mapstructure:"http_log"`
}

type ControllerConfig struct {
	TickIntervalMillis uint32  `mapstructure:"tick_interval_millis"`
	MaxBatteryChargeKW float64 `mapstructure:"max_battery_charge_kw"`
}

type RelayConfig struct {
	Driver   string `mapstructure:"driver"`
	GPIOPins []uint `mapstructure:"gpio_pins"`
}

type MQTTConfig struct {
	Host              string
	Port              int
	Username          string
	Password          string
	BaseTopic         string `mapstructure:"base_topic"`
	PowerTopic        string `mapstructure:"power_topic"`
	HADiscoveryEnable bool   `mapstructure:"ha_discovery_enable"`
	HADiscoveryTopic  string `mapstructure:"ha_discovery_topic"`
}

func CheckMQTTTopic(baseTopic string) (string, error) {
	// check and fix base topic
	lowerBaseTopic := strings.ToLower(baseTopic)
	baseTopicRegexp := regexp.MustCompile("^[a-z0-9_]+$")
	matches := baseTopicRegexp.FindAllStringSubmatch(lowerBaseTopic, 1)
	if len(matches) <= 0 {
		return "", errors.New("invalid topic. can only contain letters, numbers and underscores")
	}
	return lowerBaseTopic, nil
}
