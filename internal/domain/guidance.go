package domain

import "context"

// ClothingAndSafetyInput carries the readings used for clothing and safety advice.
type ClothingAndSafetyInput struct {
	Temperature    int `json:"temperature"`
	Humidity       int `json:"humidity"`
	WindSpeed      int `json:"windSpeed"`
	RainfallChance int `json:"rainfallChance"`
}

// ClothingAndSafetyOutput lists recommended clothing items and safety measures.
type ClothingAndSafetyOutput struct {
	ClothingRecommendations []string `json:"clothingRecommendations"`
	SafetyRecommendations   []string `json:"safetyRecommendations"`
}

// ActivityInput pairs the user's mood with the current readings.
type ActivityInput struct {
	Emotion        string       `json:"emotion"`
	Temperature    int          `json:"temperature"`
	Humidity       int          `json:"humidity"`
	WindSpeed      int          `json:"windSpeed"`
	RainfallChance int          `json:"rainfallChance"`
	ComfortIndex   ComfortIndex `json:"comfortIndex"`
}

// ActivityOutput is a single suggested outdoor activity with its reasoning.
type ActivityOutput struct {
	SuggestedActivity string `json:"suggestedActivity"`
	Reasoning         string `json:"reasoning"`
}

// EcoAwarenessInput names the place to describe.
type EcoAwarenessInput struct {
	Location string `json:"location"`
}

// EcoAwarenessOutput holds one sentence each on local flora, fauna and an eco tip.
type EcoAwarenessOutput struct {
	Flora string `json:"flora"`
	Fauna string `json:"fauna"`
	Tip   string `json:"tip"`
}

// Advisor produces natural-language guidance for a report.
type Advisor interface {
	ClothingAndSafety(ctx context.Context, in ClothingAndSafetyInput) (ClothingAndSafetyOutput, error)
	SuggestActivity(ctx context.Context, in ActivityInput) (ActivityOutput, error)
	EcoAwareness(ctx context.Context, in EcoAwarenessInput) (EcoAwarenessOutput, error)
}

// ClothingInput copies the readings clothing advice needs.
func (r WeatherReport) ClothingInput() ClothingAndSafetyInput {
	return ClothingAndSafetyInput{
		Temperature:    r.Temperature,
		Humidity:       r.Humidity,
		WindSpeed:      r.WindSpeed,
		RainfallChance: r.RainfallChance,
	}
}

// ActivityInput copies the readings activity suggestions need.
func (r WeatherReport) ActivityInput(emotion string) ActivityInput {
	return ActivityInput{
		Emotion:        emotion,
		Temperature:    r.Temperature,
		Humidity:       r.Humidity,
		WindSpeed:      r.WindSpeed,
		RainfallChance: r.RainfallChance,
		ComfortIndex:   r.ComfortIndex,
	}
}

// EcoInput returns the eco-awareness query for the report's location.
func (r WeatherReport) EcoInput() EcoAwarenessInput {
	return EcoAwarenessInput{Location: r.Location}
}

// Guidance kinds, used as metric labels and in per-section error reports.
const (
	GuidanceClothing = "clothing"
	GuidanceActivity = "activity"
	GuidanceEco      = "eco"
)
