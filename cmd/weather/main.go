// Command weather prints the synthetic report for a location and day, with
// offline clothing, activity and eco guidance.
//
// Usage:
//
//	weather [-date YYYY-MM-DD] [-emotion mood] [-guidance] [-json] <location>
//	weather "Paris"
//	weather -date 2025-06-15 "40.7128, -74.0060"
//	weather -guidance -emotion tired "São Paulo"
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/couchcryptid/astroweather-service/internal/adapter/offline"
	"github.com/couchcryptid/astroweather-service/internal/domain"
)

var title = cases.Title(language.English)

func displayReport(w io.Writer, r domain.WeatherReport, date time.Time) {
	header := fmt.Sprintf("Weather Summary for %s on %s:", r.Location, date.Format("Mon 2006-01-02"))
	fmt.Fprintf(w, "%s\n", header)
	fmt.Fprintf(w, "%s\n", strings.Repeat("-", len([]rune(header))))
	fmt.Fprintf(w, "Conditions:  %s\n", title.String(string(r.Condition)))
	fmt.Fprintf(w, "Temperature: %d°C\n", r.Temperature)
	fmt.Fprintf(w, "Comfort:     %s\n", r.ComfortIndex)
	fmt.Fprintf(w, "Humidity:    %d%%\n", r.Humidity)
	fmt.Fprintf(w, "Wind Speed:  %d km/h\n", r.WindSpeed)
	fmt.Fprintf(w, "Rainfall:    %d%%\n", r.RainfallChance)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Today:")
	for _, f := range r.DailyForecast {
		fmt.Fprintf(w, "  %-10s %3d°C  %s\n", f.Time, f.Temp, f.Icon)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Past years:")
	for _, h := range r.HistoricalData {
		fmt.Fprintf(w, "  %d %3d°C\n", h.Year, h.AvgTemp)
	}
}

func displayGuidance(w io.Writer, clothing domain.ClothingAndSafetyOutput, activity *domain.ActivityOutput, eco domain.EcoAwarenessOutput) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "What to wear:")
	for _, item := range clothing.ClothingRecommendations {
		fmt.Fprintf(w, "  - %s\n", item)
	}
	fmt.Fprintln(w, "Stay safe:")
	for _, item := range clothing.SafetyRecommendations {
		fmt.Fprintf(w, "  - %s\n", item)
	}
	if activity != nil {
		fmt.Fprintf(w, "Try this:    %s\n", activity.SuggestedActivity)
		fmt.Fprintf(w, "             %s\n", activity.Reasoning)
	}
	fmt.Fprintf(w, "Flora:       %s\n", eco.Flora)
	fmt.Fprintf(w, "Fauna:       %s\n", eco.Fauna)
	fmt.Fprintf(w, "Eco tip:     %s\n", eco.Tip)
}

func main() {
	if err := run(os.Args[1:], os.Stdout, domain.NewSynthesizer(nil)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer, synth *domain.Synthesizer) error {
	fs := flag.NewFlagSet("weather", flag.ContinueOnError)
	dateFlag := fs.String("date", "", "day to report, YYYY-MM-DD (default today)")
	emotion := fs.String("emotion", "", "your mood, for an activity suggestion")
	guidance := fs.Bool("guidance", false, "include clothing, activity and eco guidance")
	asJSON := fs.Bool("json", false, "print the report as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("expected exactly one location argument")
	}
	location := fs.Arg(0)

	date := synth.Now()
	if *dateFlag != "" {
		d, err := time.Parse(domain.DateLayout, *dateFlag)
		if err != nil {
			return fmt.Errorf("invalid -date %q: use YYYY-MM-DD", *dateFlag)
		}
		date = d
	}

	report, err := synth.GetWeatherData(location, date)
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	displayReport(out, report, date)
	if !*guidance && *emotion == "" {
		return nil
	}

	ctx := context.Background()
	advisor := offline.New()
	clothing, err := advisor.ClothingAndSafety(ctx, report.ClothingInput())
	if err != nil {
		return err
	}
	eco, err := advisor.EcoAwareness(ctx, report.EcoInput())
	if err != nil {
		return err
	}
	var activity *domain.ActivityOutput
	if *emotion != "" {
		a, err := advisor.SuggestActivity(ctx, report.ActivityInput(*emotion))
		if err != nil {
			return err
		}
		activity = &a
	}
	displayGuidance(out, clothing, activity, eco)
	return nil
}
