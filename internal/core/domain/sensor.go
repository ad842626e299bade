package domain

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/carlmjohnson/versioninfo"
)

const (
	SENSOR_ID_BRIDGE_STATE      = "bridge"
	SENSOR_ID_CONTROLLER_MODE   = "controller_mode"
	SWITCH_ID_CURTAILMENT       = "curtailment"
	SWITCH_ID_MANUAL_OVERRIDE   = "manual_override"
	INPUT_NUMBER_ID_RELAY_LEVEL = "relay_level"

	DEVICE_CLASS_CONNECTIVITY = "connectivity"
	ENTITY_CLASS_DIAGNOSTIC   = "diagnostic"
	SENSOR_TYPE_SENSOR        = "sensor"
	SENSOR_TYPE_BINARY        = "binary_sensor"
	INPUT_NUMBER_MODE_BOX     = "box"
	INPUT_NUMBER_MODE_SLIDER  = "slider"
)

func BridgeDevice(baseTopic string) Device {
	return Device{
		Id:           fmt.Sprintf("envoylimiter_%s", md5HashShort(baseTopic)),
		Manufacturer: "phildimond",
		Model:        "EnvoyLimiter",
		Version:      versioninfo.Short(),
		Name:         fmt.Sprintf("EnvoyLimiter %s", md5HashShort(baseTopic)),
	}
}

func IdDevice(device Device) Device {
	return Device{
		Id:   device.Id,
		Name: device.Name,
	}
}

// BridgeSensors are the diagnostic entities of the bridge itself.
func BridgeSensors(device Device) []GenericSensor {
	return []GenericSensor{
		{
			Device:         device,
			Id:             SENSOR_ID_BRIDGE_STATE,
			SensorType:     SENSOR_TYPE_BINARY,
			Name:           "Bridge state",
			DeviceClass:    DEVICE_CLASS_CONNECTIVITY,
			EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
			UniqueId:       uniqueId(device.Id, SENSOR_ID_BRIDGE_STATE),
		},
		{
			Device:         device,
			Id:             SENSOR_ID_CONTROLLER_MODE,
			SensorType:     SENSOR_TYPE_SENSOR,
			Name:           "Controller mode",
			EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
			UniqueId:       uniqueId(device.Id, SENSOR_ID_CONTROLLER_MODE),
			Icon:           "mdi:state-machine",
		},
	}
}

// ControllerSwitches are the two operator switches of the decision engine.
func ControllerSwitches(device Device) []GenericSwitch {
	return []GenericSwitch{
		{
			Device:   device,
			Id:       SWITCH_ID_CURTAILMENT,
			Name:     "Curtailment",
			UniqueId: uniqueId(device.Id, SWITCH_ID_CURTAILMENT),
			Icon:     "mdi:solar-power-variant",
		},
		{
			Device:   device,
			Id:       SWITCH_ID_MANUAL_OVERRIDE,
			Name:     "Manual override",
			UniqueId: uniqueId(device.Id, SWITCH_ID_MANUAL_OVERRIDE),
			Icon:     "mdi:hand-back-left",
		},
	}
}

// ControllerInputNumbers exposes the 4-bit relay level.
func ControllerInputNumbers(device Device) []GenericInputNumber {
	return []GenericInputNumber{
		{
			Device:   device,
			Id:       INPUT_NUMBER_ID_RELAY_LEVEL,
			Name:     "Relay level",
			UniqueId: uniqueId(device.Id, INPUT_NUMBER_ID_RELAY_LEVEL),
			Icon:     "mdi:transmission-tower-export",
			Min:      0,
			Max:      MaxRelayLevel,
			Step:     1,
			Mode:     INPUT_NUMBER_MODE_SLIDER,
		},
	}
}

func uniqueId(deviceId, sensorId string) string {
	return fmt.Sprintf("%s_%s", deviceId, sensorId)
}

func md5HashShort(s string) string {
	hash := md5.Sum([]byte(s))
	return hex.EncodeToString(hash[:])[:8]
}
