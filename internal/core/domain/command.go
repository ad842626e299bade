package domain

import "fmt"

// ControllerRequest

type ControllerRequest interface {
	ActorRequest
	ControllerCommand() string
}

type ControllerRequestMixIn struct {
	ActorRequestMixIn
}

func (r ControllerRequestMixIn) ControllerCommand() string {
	return fmt.Sprintf("%T", r)
}

// Controller commands

// CurtailmentEnableRequest flips the operator curtailment switch. The
// level is only recomputed on the next tick.
type CurtailmentEnableRequest struct {
	ControllerRequestMixIn
	Enable bool
}

// ManualOverrideRequest flips the manual override switch. Turning it on
// applies the latched commanded level at once.
type ManualOverrideRequest struct {
	ControllerRequestMixIn
	Enable bool
}

// SetRelayLevelRequest latches a manually commanded level (0-15).
type SetRelayLevelRequest struct {
	ControllerRequestMixIn
	Level uint8
}

type GetControllerStateRequest struct {
	ControllerRequestMixIn
}

type GetControllerStateResponse struct {
	ActorResponseMixIn
	CurtailmentEnabled bool
	ManualOverride     bool
	CurrentLevel       uint8
	CommandedLevel     uint8
}

// ensure interface compliance
var _ ControllerRequest = (*CurtailmentEnableRequest)(nil)
var _ ControllerRequest = (*SetRelayLevelRequest)(nil)
