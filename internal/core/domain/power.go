package domain

// MaxRelayLevel is the highest curtailment level encodable on the four
// relay lines.
const MaxRelayLevel = 15

// PowerSnapshot is one fully validated set of power and price telemetry.
// Power fields are always kilowatts, whatever units the feed used.
// A snapshot is immutable: each successful decode produces a fresh value
// and absent optional fields stay at zero, they are never carried over
// from a previous message.
type PowerSnapshot struct {
	ImportPrice    float64
	ExportPrice    float64
	BatteryLevel   float64
	GridPowerKW    float64
	HousePowerKW   float64
	SolarPowerKW   float64
	BatteryPowerKW float64
}

// RelayOutputs is the state of the four relay lines. Output i carries
// bit i of the curtailment level.
type RelayOutputs [4]bool

// ControllerTickResult is what one controller tick decided.
type ControllerTickResult struct {
	Level   uint8
	Outputs RelayOutputs
	Changed bool
}

// DecodeError reports a malformed telemetry payload. Decode failures are
// always recoverable: the previous valid snapshot stays authoritative.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return "telemetry decode: " + e.Reason
}

// CommandParseError reports a command payload that could not be applied.
// The command is dropped and prior state is unchanged.
type CommandParseError struct {
	Payload string
	Reason  string
}

func (e *CommandParseError) Error() string {
	return "command parse: " + e.Reason + " (payload " + e.Payload + ")"
}
