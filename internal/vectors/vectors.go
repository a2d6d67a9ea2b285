// Package vectors reads and writes reference report fixtures: synthesized
// reports pinned to a fixed clock so they can be checked across builds.
package vectors

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/couchcryptid/astroweather-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

// Query names one location and calendar day.
type Query struct {
	Location string `json:"location"`
	Date     string `json:"date"` // YYYY-MM-DD
}

// Vector is a query with its expected seed and report.
type Vector struct {
	Query
	Seed   int32                `json:"seed"`
	Report domain.WeatherReport `json:"report"`
}

// File is the on-disk fixture. Clock fixes the current year of every report.
type File struct {
	Clock   time.Time `json:"clock"`
	Vectors []Vector  `json:"vectors"`
}

// DefaultClock is the instant fixtures are generated at unless overridden.
var DefaultClock = time.Date(2025, time.July, 4, 12, 0, 0, 0, time.UTC)

// DefaultQueries covers place names, coordinates, non-ASCII input and
// consecutive days.
var DefaultQueries = []Query{
	{Location: "Paris", Date: "2024-03-01"},
	{Location: "Paris", Date: "2024-03-02"},
	{Location: "Tokyo", Date: "2025-01-01"},
	{Location: "40.7128, -74.0060", Date: "2025-06-15"},
	{Location: "São Paulo", Date: "2024-12-25"},
	{Location: "Reykjavík", Date: "2024-06-21"},
	{Location: "-33.8688, 151.2093", Date: "2024-02-29"},
	{Location: "New York", Date: "2023-11-05"},
}

// Time parses the query date.
func (q Query) Time() (time.Time, error) {
	d, err := time.Parse(domain.DateLayout, q.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("vector %q: %w", q.Location, err)
	}
	return d, nil
}

// Generate synthesizes a fixture for queries as of clock.
func Generate(queries []Query, clock time.Time) (File, error) {
	synth := SynthesizerAt(clock)
	f := File{Clock: clock, Vectors: make([]Vector, 0, len(queries))}
	for _, q := range queries {
		date, err := q.Time()
		if err != nil {
			return File{}, err
		}
		report, err := synth.GetWeatherData(q.Location, date)
		if err != nil {
			return File{}, fmt.Errorf("vector %q %s: %w", q.Location, q.Date, err)
		}
		f.Vectors = append(f.Vectors, Vector{
			Query:  q,
			Seed:   domain.DeriveSeed(q.Location, date),
			Report: report,
		})
	}
	return f, nil
}

// SynthesizerAt returns a synthesizer whose clock stands still at t.
func SynthesizerAt(t time.Time) *domain.Synthesizer {
	return domain.NewSynthesizer(clockwork.NewFakeClockAt(t))
}

// Load reads a fixture from path.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read vectors: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("decode vectors %s: %w", path, err)
	}
	return f, nil
}

// Write stores a fixture at path as indented JSON.
func Write(path string, f File) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode vectors: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // fixtures are not secret
		return fmt.Errorf("write vectors: %w", err)
	}
	return nil
}
