package domain

import (
	"strings"
	"time"
	"unicode/utf16"
)

// DeriveSeed hashes the lower-cased location and the calendar day of date into
// a 32-bit seed. Equal keys always produce equal seeds.
func DeriveSeed(location string, date time.Time) int32 {
	key := strings.ToLower(location) + DayKey(date)

	var hash int32
	for _, unit := range utf16.Encode([]rune(key)) {
		hash = hash*31 + int32(unit)
	}
	return hash
}
