package domain

import (
	"math"
	"time"
)

// Synthesize assembles a report from a validated query and a draw source. The
// historical series ends at currentYear. Draws are consumed in a fixed order;
// see the package documentation.
func Synthesize(in ValidatedInput, draw func() float64, currentYear int) WeatherReport {
	condition := Conditions[pick(draw(), len(Conditions))]
	comfort := ComfortLevels[pick(draw(), len(ComfortLevels))]
	baseTemp := 5 + draw()*25
	humidity := int(math.Floor(draw()*70)) + 30
	windSpeed := int(math.Floor(draw() * 40))

	var rainfallChance int
	if condition.Wet() {
		rainfallChance = int(math.Floor(draw()*60)) + 40
	} else {
		rainfallChance = int(math.Floor(draw() * 40))
	}

	forecast := make([]DailyForecast, 0, len(forecastSlots))
	for _, slot := range forecastSlots {
		forecast = append(forecast, DailyForecast{
			Time: slot.time,
			Temp: roundHalfUp(baseTemp + slot.offset + draw()*2),
			Icon: slot.icon,
		})
	}

	history := make([]HistoricalDataPoint, 0, HistoryYears)
	for i := range HistoryYears {
		history = append(history, HistoricalDataPoint{
			Year:    currentYear - (HistoryYears - 1) + i,
			AvgTemp: roundHalfUp(baseTemp - 3 + draw()*6),
		})
	}

	return WeatherReport{
		Location:       in.Location,
		Temperature:    roundHalfUp(baseTemp),
		Humidity:       humidity,
		WindSpeed:      windSpeed,
		RainfallChance: rainfallChance,
		ComfortIndex:   comfort,
		DailyForecast:  forecast,
		HistoricalData: history,
		Condition:      condition,
	}
}

// GetWeatherData validates a query and synthesizes its report against real time.
func GetWeatherData(location string, date time.Time) (WeatherReport, error) {
	return realTime.GetWeatherData(location, date)
}

func generate(location string, date time.Time, currentYear int) (WeatherReport, error) {
	in, err := Validate(location, date)
	if err != nil {
		return WeatherReport{}, err
	}
	gen := NewGenerator(DeriveSeed(in.Location, in.Date))
	return Synthesize(in, gen.Next, currentYear), nil
}

// pick maps a draw onto an index in [0, n). A draw of exactly 1 selects the last index.
func pick(d float64, n int) int {
	return min(int(math.Floor(d*float64(n))), n-1)
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
