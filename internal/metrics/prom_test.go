package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/stretchr/testify/assert"
)

func TestPromSinkRecords(t *testing.T) {

	assert := assert.New(t)

	reg := prometheus.NewRegistry()
	sink, err := NewPromSink(reg)
	assert.NoError(err)

	sink.RecordTick()
	sink.RecordTick()
	sink.RecordLevel(13)
	sink.RecordLevelChange()
	sink.RecordDecodeError()
	sink.RecordDroppedCommand()

	assert.Equal(float64(2), testutil.ToFloat64(sink.ticks))
	assert.Equal(float64(13), testutil.ToFloat64(sink.level))
	assert.Equal(float64(1), testutil.ToFloat64(sink.levelChanges))
	assert.Equal(float64(1), testutil.ToFloat64(sink.decodeErrors))
	assert.Equal(float64(1), testutil.ToFloat64(sink.droppedCommands))
}

func TestPromSinkDoubleRegister(t *testing.T) {

	assert := assert.New(t)

	reg := prometheus.NewRegistry()
	first, err := NewPromSink(reg)
	assert.NoError(err)
	second, err := NewPromSink(reg)
	assert.NoError(err)

	first.RecordTick()
	second.RecordTick()

	assert.Equal(float64(2), testutil.ToFloat64(second.ticks))
}
