package domain

import "time"

// Condition is the sky condition of a report.
type Condition string

const (
	ConditionSunny  Condition = "sunny"
	ConditionRainy  Condition = "rainy"
	ConditionCloudy Condition = "cloudy"
	ConditionStormy Condition = "stormy"
)

// Conditions lists every condition in draw order.
var Conditions = []Condition{ConditionSunny, ConditionRainy, ConditionCloudy, ConditionStormy}

// Wet reports whether the condition carries a high rainfall chance.
func (c Condition) Wet() bool {
	return c == ConditionRainy || c == ConditionStormy
}

// ComfortIndex is a categorical description of perceived comfort. It is drawn
// independently of the numeric readings.
type ComfortIndex string

const (
	ComfortVeryHot  ComfortIndex = "Very Hot"
	ComfortPleasant ComfortIndex = "Pleasant"
	ComfortCold     ComfortIndex = "Cold"
	ComfortVeryWet  ComfortIndex = "Very Wet"
	ComfortWindy    ComfortIndex = "Windy"
)

// ComfortLevels lists every comfort index in draw order.
var ComfortLevels = []ComfortIndex{ComfortVeryHot, ComfortPleasant, ComfortCold, ComfortVeryWet, ComfortWindy}

// ForecastIcon tags a forecast slot for display.
type ForecastIcon string

const (
	IconSunrise ForecastIcon = "Sunrise"
	IconSun     ForecastIcon = "Sun"
	IconSunset  ForecastIcon = "Sunset"
	IconMoon    ForecastIcon = "Moon"
)

// forecastSlot describes one fixed point of the daily forecast.
type forecastSlot struct {
	time   string
	offset float64
	icon   ForecastIcon
}

// forecastSlots is the Morning→Night order of the daily forecast and the offset
// of each slot from the base temperature.
var forecastSlots = [4]forecastSlot{
	{time: "Morning", offset: -5, icon: IconSunrise},
	{time: "Afternoon", offset: 2, icon: IconSun},
	{time: "Evening", offset: -2, icon: IconSunset},
	{time: "Night", offset: -8, icon: IconMoon},
}

// HistoryYears is the number of yearly points in a report, current year included.
const HistoryYears = 11

// DailyForecast is one slot of the intra-day forecast.
type DailyForecast struct {
	Time string       `json:"time"`
	Temp int          `json:"temp"`
	Icon ForecastIcon `json:"icon"`
}

// HistoricalDataPoint pairs a year with a synthetic average temperature.
type HistoricalDataPoint struct {
	Year    int `json:"year"`
	AvgTemp int `json:"avgTemp"`
}

// WeatherReport is the synthetic weather for one location and day.
type WeatherReport struct {
	Location       string                `json:"location"`
	Temperature    int                   `json:"temperature"`    // °C
	Humidity       int                   `json:"humidity"`       // percent
	WindSpeed      int                   `json:"windSpeed"`      // km/h
	RainfallChance int                   `json:"rainfallChance"` // percent
	ComfortIndex   ComfortIndex          `json:"comfortIndex"`
	DailyForecast  []DailyForecast       `json:"dailyForecast"`
	HistoricalData []HistoricalDataPoint `json:"historicalData"`
	Condition      Condition             `json:"condition"`
}

// Geo is a WGS-84 latitude/longitude pair parsed from a coordinate location.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ValidatedInput is a query that passed Validate.
type ValidatedInput struct {
	Location string
	Date     time.Time

	// Coordinates is set when the location was given as "lat, lon".
	Coordinates *Geo
}

// DayKey formats the calendar-day portion of a date the way seeds and message keys use it.
func DayKey(date time.Time) string {
	return date.Format(DateLayout)
}

// DateLayout is the wire format for query dates.
const DateLayout = "2006-01-02"
