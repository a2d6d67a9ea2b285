package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Synthesizer produces reports whose historical series ends at its clock's
// current year. It holds no other state and is safe for concurrent use.
type Synthesizer struct {
	clock clockwork.Clock
}

// NewSynthesizer anchors synthesis to clock. A nil clock means real time.
func NewSynthesizer(clock clockwork.Clock) *Synthesizer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Synthesizer{clock: clock}
}

// Now returns the synthesizer's current time.
func (s *Synthesizer) Now() time.Time {
	return s.clock.Now()
}

// GetWeatherData validates a query and synthesizes its report. The clock is
// read once per call.
func (s *Synthesizer) GetWeatherData(location string, date time.Time) (WeatherReport, error) {
	return generate(location, date, s.clock.Now().Year())
}

var realTime = NewSynthesizer(nil)
