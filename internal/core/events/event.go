package events

import (
	. "github.com/phildimond/envoylimiter/internal/core/domain"
)

func CurtailmentSwitchUpdateEvents(enabled bool) any {
	return SwitchSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SWITCH_ID_CURTAILMENT,
		},
		Value: enabled,
	}
}

func ManualOverrideSwitchUpdateEvents(enabled bool) any {
	return SwitchSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SWITCH_ID_MANUAL_OVERRIDE,
		},
		Value: enabled,
	}
}

func RelayLevelUpdateEvents(level uint8) []any {
	var events []any

	events = append(events, InputNumberSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: INPUT_NUMBER_ID_RELAY_LEVEL,
		},
		Value:    float64(level),
		Decimals: 0,
	})

	return events
}

func ControllerModeUpdateEvents(mode string) any {
	return TextSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_CONTROLLER_MODE,
		},
		Value: mode,
	}
}
