package domain

import (
	"errors"
	"fmt"
)

// CheckReport verifies the range and shape invariants every synthesized report
// holds. currentYear is the year the historical series must end at.
//
// Upper bounds are inclusive because a draw of exactly 1 reaches them.
func CheckReport(r WeatherReport, currentYear int) error {
	var errs []error

	if r.Humidity < 30 || r.Humidity > 100 {
		errs = append(errs, fmt.Errorf("humidity %d outside [30, 100]", r.Humidity))
	}
	if r.WindSpeed < 0 || r.WindSpeed > 40 {
		errs = append(errs, fmt.Errorf("wind speed %d outside [0, 40]", r.WindSpeed))
	}
	if r.RainfallChance < 0 || r.RainfallChance > 100 {
		errs = append(errs, fmt.Errorf("rainfall chance %d outside [0, 100]", r.RainfallChance))
	}
	if r.Condition.Wet() && r.RainfallChance < 40 {
		errs = append(errs, fmt.Errorf("rainfall chance %d below 40 for %s", r.RainfallChance, r.Condition))
	}

	if len(r.DailyForecast) != len(forecastSlots) {
		errs = append(errs, fmt.Errorf("daily forecast has %d entries, want %d", len(r.DailyForecast), len(forecastSlots)))
	} else {
		for i, slot := range forecastSlots {
			got := r.DailyForecast[i]
			if got.Time != slot.time || got.Icon != slot.icon {
				errs = append(errs, fmt.Errorf("forecast slot %d is %s/%s, want %s/%s", i, got.Time, got.Icon, slot.time, slot.icon))
			}
		}
	}

	if len(r.HistoricalData) != HistoryYears {
		errs = append(errs, fmt.Errorf("historical data has %d entries, want %d", len(r.HistoricalData), HistoryYears))
	} else {
		first := currentYear - (HistoryYears - 1)
		for i, p := range r.HistoricalData {
			if p.Year != first+i {
				errs = append(errs, fmt.Errorf("historical entry %d has year %d, want %d", i, p.Year, first+i))
				break
			}
		}
	}

	return errors.Join(errs...)
}
