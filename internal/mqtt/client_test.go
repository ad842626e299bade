package mqtt

import (
	"testing"

	"github.com/phildimond/envoylimiter/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestSwitchCommandParse(t *testing.T) {

	assert := assert.New(t)

	baseTopic := "loremTopic"
	topic := "loremTopic/switch/curtailment/command"
	r := switchCommandExtractor(baseTopic)
	matches := r.FindAllStringSubmatch(topic, 1)

	assert.Equal(matches[0][1], "curtailment", "device extract")
}

func TestSwitchCommandParseFail(t *testing.T) {

	assert := assert.New(t)

	baseTopic := "loremTopic"
	topic := "loremTopic/switch/curtailment/state"
	r := switchCommandExtractor(baseTopic)
	matches := r.FindAllStringSubmatch(topic, 1)

	assert.Equal(len(matches), 0, "no matches")
}

func TestInputNumberCommandParse(t *testing.T) {

	assert := assert.New(t)

	baseTopic := "loremTopic"
	topic := "loremTopic/number/relay_level/set"
	r := inputNumberCommandExtractor(baseTopic)
	matches := r.FindAllStringSubmatch(topic, 1)

	assert.Equal(matches[0][1], "relay_level", "number_id extract")
}

func TestInputNumberCommandParseFail(t *testing.T) {

	assert := assert.New(t)

	baseTopic := "loremTopic"
	topic := "loremTopic/switch/relay_level/command"
	r := inputNumberCommandExtractor(baseTopic)
	matches := r.FindAllStringSubmatch(topic, 1)

	assert.Equal(len(matches), 0, "no matches")
}

func TestTopicBuilders(t *testing.T) {

	assert := assert.New(t)

	cfg := config.Config{
		MQTT: config.MQTTConfig{
			Host:       "localhost",
			Port:       1883,
			BaseTopic:  "envoylimiter",
			PowerTopic: "homeassistant/Power",
		},
	}
	client := CreateMQTTClient(&cfg, OptsFromConfig(&cfg), nil, nil)

	assert.Equal("envoylimiter/bridge/state", client.BridgeStateTopic())
	assert.Equal("homeassistant/Power", client.PowerTopic())
	assert.Equal("envoylimiter/switch/curtailment/command", client.SwitchCommandTopic("curtailment"))
	assert.Equal("envoylimiter/switch/manual_override/state", client.SwitchStateTopic("manual_override"))
	assert.Equal("envoylimiter/number/relay_level/set", client.InputNumberCommandTopic("relay_level"))
	assert.Equal("envoylimiter/number/relay_level/state", client.InputNumberStateTopic("relay_level"))
}
