package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records controller activity in Prometheus metrics.
type PromSink struct {
	ticks           prometheus.Counter
	level           prometheus.Gauge
	levelChanges    prometheus.Counter
	decodeErrors    prometheus.Counter
	droppedCommands prometheus.Counter
}

// NewPromSink registers controller metrics on the provided Prometheus
// registerer. If reg is nil, the default registerer is used. If the
// collectors are already registered, the existing ones are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	ticks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "controller_ticks_total",
		Help: "Total number of controller ticks",
	})
	level := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "relay_level",
		Help: "Current relay curtailment level",
	})
	levelChanges := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "relay_level_changes_total",
		Help: "Total number of relay level changes",
	})
	decodeErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "telemetry_decode_errors_total",
		Help: "Total number of rejected telemetry payloads",
	})
	droppedCommands := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dropped_commands_total",
		Help: "Total number of rejected MQTT commands",
	})

	collectors := []prometheus.Collector{ticks, level, levelChanges, decodeErrors, droppedCommands}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				collectors[i] = are.ExistingCollector
			} else {
				return nil, err
			}
		}
	}

	return &PromSink{
		ticks:           collectors[0].(prometheus.Counter),
		level:           collectors[1].(prometheus.Gauge),
		levelChanges:    collectors[2].(prometheus.Counter),
		decodeErrors:    collectors[3].(prometheus.Counter),
		droppedCommands: collectors[4].(prometheus.Counter),
	}, nil
}

func (s *PromSink) RecordTick() {
	s.ticks.Inc()
}

func (s *PromSink) RecordLevel(level uint8) {
	s.level.Set(float64(level))
}

func (s *PromSink) RecordLevelChange() {
	s.levelChanges.Inc()
}

func (s *PromSink) RecordDecodeError() {
	s.decodeErrors.Inc()
}

func (s *PromSink) RecordDroppedCommand() {
	s.droppedCommands.Inc()
}
