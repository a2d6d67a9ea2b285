// Package domain synthesizes reproducible mock weather reports.
//
// # Inputs
//
// A query is a free-text location plus a date. The location is either a
// place name ("Paris", "São Paulo") or a "latitude, longitude" pair such as
// the one produced by the dashboard's current-location button:
//
//	"40.7128, -74.0060"
//
// Only the calendar day of the date matters. Time of day is discarded, and
// the day is read in the date's own location.
//
// # Validation
//
// [Validate] applies its rules in a fixed order:
//
//	1. empty or whitespace-only          → EmptyLocation
//	2. no comma and fewer than 3 runes   → InvalidLocation
//	3. "<number>, <number>"              → InvalidCoordinates unless
//	                                       lat ∈ [-90, 90], lon ∈ [-180, 180]
//	4. "error" or "invalid" (any case)   → InvalidLocation
//	5. anything else                     → accepted place name
//
// The "error" and "invalid" sentinels exist so callers can exercise their
// failure paths without a special build.
//
// # Seed and draws
//
// The seed is a Java-style 31-multiplier string hash over the UTF-16 code
// units of lower(location) + "YYYY-MM-DD", in wrapping int32 arithmetic.
// It drives a 31-bit linear congruential generator:
//
//	state = (state*1103515245 + 12345) & 0x7fffffff
//	draw  = state / (2^31 - 1)
//
// [Synthesize] consumes draws in a fixed order: condition, comfort index,
// base temperature, humidity, wind, rainfall, four forecast slots and eleven
// historical years. Reordering any draw changes every later value, so the
// order is part of the report format and is covered by reference vectors in
// the tests.
//
// Condition and comfort index are independent draws. A stormy report may be
// labelled "Very Hot"; that is the established behaviour of the generator,
// not an inconsistency to correct.
//
// # Rounding
//
// Rounded temperatures use half-up rounding (floor(x + 0.5)), which differs
// from [math.Round] for negative halves such as -2.5.
//
// # Current year
//
// The historical series ends at the current year, which is the only input
// not derived from the query. [GetWeatherData] reads it from real time. A
// [Synthesizer] reads it from an injected clock, which is how tests and
// fixtures pin it.
package domain
