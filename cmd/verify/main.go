// Command verify re-synthesizes a vectors fixture and checks determinism,
// seeds, report invariants, case-insensitivity, day sensitivity and the
// validation scenarios, printing a pass/fail line per phase.
//
// Usage:
//
//	go run ./cmd/verify -vectors testdata/vectors.json
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/astroweather-service/internal/domain"
	"github.com/couchcryptid/astroweather-service/internal/vectors"
	"github.com/google/go-cmp/cmp"
)

// phase tracks pass/fail for a verification phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	path := flag.String("vectors", "", "path to vectors JSON fixture")
	flag.Parse()

	if *path == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*path))
}

func run(path string) int {
	f, err := vectors.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	synth := vectors.SynthesizerAt(f.Clock)

	fmt.Println("=== Weather Synthesis Verification ===")
	fmt.Printf("Fixture: %s (%d vectors, clock %s)\n\n", path, len(f.Vectors), f.Clock.Format(time.RFC3339))

	phases := []*phase{
		verifyDeterminism(synth, f),
		verifySeeds(f),
		verifyInvariants(f),
		verifyCaseInsensitivity(synth, f),
		verifyDaySensitivity(synth, f),
		verifyValidation(synth),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-32s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i >= 20 {
				fmt.Printf("  ... and %d more\n", len(p.errors)-20)
				break
			}
			fmt.Printf("  %s\n", e)
		}
	}

	if !allPassed {
		return 1
	}
	fmt.Println("\nAll phases passed.")
	return 0
}

// synthesize re-runs a vector's query.
func synthesize(synth *domain.Synthesizer, p *phase, v vectors.Vector) (domain.WeatherReport, time.Time, bool) {
	date, err := v.Time()
	if err != nil {
		p.errorf("%v", err)
		return domain.WeatherReport{}, time.Time{}, false
	}
	report, err := synth.GetWeatherData(v.Location, date)
	if err != nil {
		p.errorf("%q %s: %v", v.Location, v.Date, err)
		return domain.WeatherReport{}, time.Time{}, false
	}
	return report, date, true
}

func verifyDeterminism(synth *domain.Synthesizer, f vectors.File) *phase {
	p := &phase{name: "Determinism"}
	for _, v := range f.Vectors {
		got, _, ok := synthesize(synth, p, v)
		if !ok {
			continue
		}
		if diff := cmp.Diff(v.Report, got); diff != "" {
			p.errorf("%q %s (-fixture +now):\n%s", v.Location, v.Date, diff)
		}
		again, _, _ := synthesize(synth, p, v)
		if !cmp.Equal(got, again) {
			p.errorf("%q %s: two calls disagree", v.Location, v.Date)
		}
	}
	return p
}

func verifySeeds(f vectors.File) *phase {
	p := &phase{name: "Seed derivation"}
	for _, v := range f.Vectors {
		date, err := v.Time()
		if err != nil {
			p.errorf("%v", err)
			continue
		}
		if got := domain.DeriveSeed(v.Location, date); got != v.Seed {
			p.errorf("%q %s: seed %d, fixture %d", v.Location, v.Date, got, v.Seed)
		}
	}
	return p
}

func verifyInvariants(f vectors.File) *phase {
	p := &phase{name: "Range and shape invariants"}
	year := f.Clock.Year()
	for _, v := range f.Vectors {
		if err := domain.CheckReport(v.Report, year); err != nil {
			p.errorf("%q %s: %s", v.Location, v.Date, strings.ReplaceAll(err.Error(), "\n", "; "))
		}
	}
	return p
}

func verifyCaseInsensitivity(synth *domain.Synthesizer, f vectors.File) *phase {
	p := &phase{name: "Case-insensitive location"}
	for _, v := range f.Vectors {
		date, err := v.Time()
		if err != nil {
			p.errorf("%v", err)
			continue
		}
		for _, variant := range []string{strings.ToUpper(v.Location), strings.ToLower(v.Location)} {
			got, err := synth.GetWeatherData(variant, date)
			if err != nil {
				p.errorf("%q: %v", variant, err)
				continue
			}
			got.Location = v.Report.Location
			if !cmp.Equal(v.Report, got) {
				p.errorf("%q %s: report differs from %q", variant, v.Date, v.Location)
			}
		}
	}
	return p
}

func verifyDaySensitivity(synth *domain.Synthesizer, f vectors.File) *phase {
	p := &phase{name: "Day sensitivity"}
	for _, v := range f.Vectors {
		date, err := v.Time()
		if err != nil {
			p.errorf("%v", err)
			continue
		}
		next, err := synth.GetWeatherData(v.Location, date.AddDate(0, 0, 1))
		if err != nil {
			p.errorf("%q next day: %v", v.Location, err)
			continue
		}
		if cmp.Equal(v.Report, next) {
			p.errorf("%q: %s and the following day are identical", v.Location, v.Date)
		}
	}
	return p
}

func verifyValidation(synth *domain.Synthesizer) *phase {
	p := &phase{name: "Validation scenarios"}
	date := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	rejections := []struct {
		location string
		want     error
	}{
		{"", domain.ErrEmptyLocation},
		{"ab", domain.ErrInvalidLocation},
		{"95, 10", domain.ErrInvalidCoordinates},
		{"error", domain.ErrInvalidLocation},
	}
	for _, r := range rejections {
		if _, err := synth.GetWeatherData(r.location, date); !errors.Is(err, r.want) {
			p.errorf("%q: got %v, want %v", r.location, err, r.want)
		}
	}

	in, err := domain.Validate("40.7128, -74.0060", date)
	switch {
	case err != nil:
		p.errorf("coordinates rejected: %v", err)
	case in.Coordinates == nil || in.Coordinates.Lat != 40.7128 || in.Coordinates.Lon != -74.0060:
		p.errorf("coordinates parsed as %+v", in.Coordinates)
	}
	return p
}
