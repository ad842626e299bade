package metrics

// Sink records controller activity for observability purposes.
type Sink interface {
	RecordTick()
	RecordLevel(level uint8)
	RecordLevelChange()
	RecordDecodeError()
	RecordDroppedCommand()
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordTick()           {}
func (NopSink) RecordLevel(uint8)     {}
func (NopSink) RecordLevelChange()    {}
func (NopSink) RecordDecodeError()    {}
func (NopSink) RecordDroppedCommand() {}
