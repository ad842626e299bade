package service

import (
	"strconv"

	"github.com/phildimond/envoylimiter/internal/core/domain"
	"github.com/phildimond/envoylimiter/internal/core/port"

	"go.uber.org/zap"
)

// ControllerState is the mutable state of the decision engine. It is
// owned exclusively by the controller loop; commands, snapshots and
// ticks must reach it from a single goroutine.
type ControllerState struct {
	CurtailmentEnabled bool
	ManualOverride     bool
	CommandedLevel     uint8
	CurrentLevel       uint8
	PreviousLevel      uint8

	snapshot domain.PowerSnapshot
	fresh    bool
}

// Controller arbitrates between automatic curtailment, manual override
// and full output.
type Controller struct {
	State  ControllerState
	Logic  port.CurtailmentLogic
	Logger *zap.Logger
}

func NewController(logic port.CurtailmentLogic, logger *zap.Logger) *Controller {
	return &Controller{
		Logic:  logic,
		Logger: logger,
	}
}

// EnableCurtailment flips the operator switch. The level only changes on
// the next tick.
func (c *Controller) EnableCurtailment(on bool) {
	c.State.CurtailmentEnabled = on
}

// SetManualOverride flips the override switch. Turning it on applies the
// latched commanded level at once; turning it off reverts to automatic
// computation on the next tick.
func (c *Controller) SetManualOverride(on bool) {
	c.State.ManualOverride = on
	if on {
		c.State.CurrentLevel = c.State.CommandedLevel
	}
}

// CommandLevel latches a manually commanded level. While in manual mode
// the level is applied immediately. Values above 15 are rejected, not
// clamped: a correctly encoded 4-bit source cannot produce them.
func (c *Controller) CommandLevel(level uint8) error {
	if level > domain.MaxRelayLevel {
		return &domain.CommandParseError{
			Payload: strconv.Itoa(int(level)),
			Reason:  "level out of range",
		}
	}
	c.State.CommandedLevel = level
	if c.State.ManualOverride {
		c.State.CurrentLevel = level
	}
	return nil
}

// OfferSnapshot replaces any not-yet-consumed snapshot. Latest value
// wins; telemetry is never queued.
func (c *Controller) OfferSnapshot(snapshot domain.PowerSnapshot) {
	c.State.snapshot = snapshot
	c.State.fresh = true
}

// Tick runs one pass of the state machine and reports whether the
// applied level changed since the last push to the outputs. Each
// snapshot is acted on at most once.
func (c *Controller) Tick() domain.ControllerTickResult {
	switch {
	case !c.State.CurtailmentEnabled && !c.State.ManualOverride:
		// curtailment off, force full output
		c.State.CurrentLevel = 0
	case !c.State.ManualOverride && c.State.fresh:
		c.State.CurrentLevel = c.Logic.Calculate(c.State.snapshot, c.State.CurrentLevel)
		c.State.fresh = false
	default:
		// manual mode, or curtailing with no fresh snapshot
	}

	changed := c.State.CurrentLevel != c.State.PreviousLevel
	if changed {
		if c.Logger != nil {
			c.Logger.Sugar().Infof("controller: level changed %d => %d",
				c.State.PreviousLevel, c.State.CurrentLevel)
		}
		c.State.PreviousLevel = c.State.CurrentLevel
	}

	return domain.ControllerTickResult{
		Level:   c.State.CurrentLevel,
		Outputs: RelayOutputs(c.State.CurrentLevel),
		Changed: changed,
	}
}

// Mode names the effective operating mode, for diagnostics.
func (c *Controller) Mode() string {
	switch {
	case c.State.ManualOverride:
		return "manual"
	case c.State.CurtailmentEnabled:
		return "auto"
	default:
		return "off"
	}
}
