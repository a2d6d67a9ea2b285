package offline

import (
	"context"
	"testing"

	"github.com/couchcryptid/astroweather-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ domain.Advisor = (*Advisor)(nil)

func TestClothingAndSafety(t *testing.T) {
	tests := []struct {
		name         string
		in           domain.ClothingAndSafetyInput
		wantClothing string
		wantSafety   string
	}{
		{"freezing", domain.ClothingAndSafetyInput{Temperature: -3, Humidity: 40}, "Insulated winter coat", "Watch for ice on paths and roads"},
		{"cold", domain.ClothingAndSafetyInput{Temperature: 7, Humidity: 98, WindSpeed: 29, RainfallChance: 29}, "Warm jacket", "Limit long exposure to the cold"},
		{"hot", domain.ClothingAndSafetyInput{Temperature: 30, Humidity: 40}, "Sunglasses", "Apply sunscreen"},
		{"wet", domain.ClothingAndSafetyInput{Temperature: 18, RainfallChance: 85}, "Waterproof jacket or umbrella", "Allow extra time on wet roads"},
		{"windy", domain.ClothingAndSafetyInput{Temperature: 18, WindSpeed: 37}, "Windproof outer layer", "Secure loose items and avoid exposed ridges"},
		{"humid", domain.ClothingAndSafetyInput{Temperature: 24, Humidity: 90}, "Light layers", "Take breaks in the shade during exertion"},
		{"mild", domain.ClothingAndSafetyInput{Temperature: 18, Humidity: 50}, "Light layers", "No special precautions needed"},
	}

	a := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := a.ClothingAndSafety(context.Background(), tt.in)
			require.NoError(t, err)
			assert.Contains(t, out.ClothingRecommendations, tt.wantClothing)
			assert.Contains(t, out.SafetyRecommendations, tt.wantSafety)
		})
	}
}

func TestSuggestActivity(t *testing.T) {
	tests := []struct {
		name string
		in   domain.ActivityInput
		want string
	}{
		{"happy and mild", domain.ActivityInput{Emotion: "Happy", Temperature: 20}, "Go for a bike ride or a run"},
		{"sad and mild", domain.ActivityInput{Emotion: "sad", Temperature: 20}, "Take a slow walk in a nearby park"},
		{"unknown emotion", domain.ActivityInput{Emotion: "pensive", Temperature: 20}, "Go on a photo walk around the neighbourhood"},
		{"rain wins", domain.ActivityInput{Emotion: "happy", Temperature: 20, RainfallChance: 80}, "Visit a covered market or botanical greenhouse"},
		{"very wet comfort", domain.ActivityInput{Emotion: "calm", ComfortIndex: domain.ComfortVeryWet}, "Visit a covered market or botanical greenhouse"},
		{"windy high energy", domain.ActivityInput{Emotion: "excited", WindSpeed: 35}, "Try a sheltered trail hike"},
		{"windy low energy", domain.ActivityInput{Emotion: "tired", ComfortIndex: domain.ComfortWindy}, "Visit a covered market or botanical greenhouse"},
		{"hot", domain.ActivityInput{Emotion: "calm", Temperature: 31}, "Swim at a local pool or lake"},
	}

	a := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := a.SuggestActivity(context.Background(), tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.SuggestedActivity)
			assert.NotEmpty(t, out.Reasoning)
		})
	}
}

func TestSuggestActivity_ReasoningMentionsReadings(t *testing.T) {
	out, err := New().SuggestActivity(context.Background(), domain.ActivityInput{
		Emotion: "tired", Temperature: 12, RainfallChance: 20,
	})
	require.NoError(t, err)
	assert.Contains(t, out.Reasoning, "tired")
	assert.Contains(t, out.Reasoning, "12°C")
	assert.Contains(t, out.Reasoning, "20%")
}

func TestEcoAwareness_Deterministic(t *testing.T) {
	a := New()
	first, err := a.EcoAwareness(context.Background(), domain.EcoAwarenessInput{Location: "Paris"})
	require.NoError(t, err)
	second, err := a.EcoAwareness(context.Background(), domain.EcoAwarenessInput{Location: "  PARIS "})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEmpty(t, first.Flora)
	assert.NotEmpty(t, first.Fauna)
	assert.NotEmpty(t, first.Tip)
}

func TestEcoAwareness_EmptyLocation(t *testing.T) {
	out, err := New().EcoAwareness(context.Background(), domain.EcoAwarenessInput{})
	require.NoError(t, err)
	assert.Contains(t, floraNotes, out.Flora)
	assert.Contains(t, faunaNotes, out.Fauna)
	assert.Contains(t, ecoTips, out.Tip)
}
