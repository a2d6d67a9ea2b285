// Package offline provides a rule-based guidance advisor that needs no network
// access. It backs the dashboard when no model API key is configured and serves
// as the fallback when the model call fails.
package offline

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/couchcryptid/astroweather-service/internal/domain"
)

// Thresholds shared by the clothing and activity rules.
const (
	coldBelow     = 10
	hotAbove      = 28
	wetAtLeast    = 60
	windyAtLeast  = 30
	humidAtLeast  = 80
	freezingBelow = 2
)

// Advisor implements domain.Advisor with fixed rules and templates.
// Output is a pure function of the input.
type Advisor struct{}

// New returns an offline advisor.
func New() *Advisor {
	return &Advisor{}
}

// ClothingAndSafety picks layers and precautions from the temperature band,
// then adds rain, wind and humidity items.
func (a *Advisor) ClothingAndSafety(_ context.Context, in domain.ClothingAndSafetyInput) (domain.ClothingAndSafetyOutput, error) {
	var clothing, safety []string

	switch {
	case in.Temperature < freezingBelow:
		clothing = append(clothing, "Insulated winter coat", "Thermal base layer", "Gloves and a warm hat")
		safety = append(safety, "Watch for ice on paths and roads")
	case in.Temperature < coldBelow:
		clothing = append(clothing, "Warm jacket", "Long trousers", "Closed shoes")
		safety = append(safety, "Limit long exposure to the cold")
	case in.Temperature > hotAbove:
		clothing = append(clothing, "Light breathable clothing", "Wide-brimmed hat", "Sunglasses")
		safety = append(safety, "Apply sunscreen", "Carry water and stay hydrated")
	default:
		clothing = append(clothing, "Light layers", "Comfortable walking shoes")
	}

	if in.RainfallChance >= wetAtLeast {
		clothing = append(clothing, "Waterproof jacket or umbrella")
		safety = append(safety, "Allow extra time on wet roads")
	}
	if in.WindSpeed >= windyAtLeast {
		clothing = append(clothing, "Windproof outer layer")
		safety = append(safety, "Secure loose items and avoid exposed ridges")
	}
	if in.Humidity >= humidAtLeast && in.Temperature > coldBelow {
		safety = append(safety, "Take breaks in the shade during exertion")
	}
	if len(safety) == 0 {
		safety = append(safety, "No special precautions needed")
	}

	return domain.ClothingAndSafetyOutput{
		ClothingRecommendations: clothing,
		SafetyRecommendations:   safety,
	}, nil
}

// energy buckets an emotion into how active a suggestion should be.
type energy int

const (
	energyLow energy = iota
	energyMedium
	energyHigh
)

var emotionEnergy = map[string]energy{
	"happy":     energyHigh,
	"excited":   energyHigh,
	"energetic": energyHigh,
	"joyful":    energyHigh,
	"angry":     energyHigh,
	"sad":       energyLow,
	"tired":     energyLow,
	"anxious":   energyLow,
	"stressed":  energyLow,
	"lonely":    energyLow,
	"calm":      energyMedium,
	"bored":     energyMedium,
	"curious":   energyMedium,
}

type activity struct {
	name   string
	reason string
}

var (
	indoorFallback = activity{"Visit a covered market or botanical greenhouse", "keeps you moving while staying sheltered"}
	activities     = map[energy]activity{
		energyLow:    {"Take a slow walk in a nearby park", "gentle movement and fresh air tend to lift the mood"},
		energyMedium: {"Go on a photo walk around the neighbourhood", "it gives the mind a light focus without much strain"},
		energyHigh:   {"Go for a bike ride or a run", "it puts the extra energy to good use"},
	}
)

// SuggestActivity matches the emotion's energy level to an activity, stepping
// down to something sheltered when rain or wind make the outdoors unpleasant.
func (a *Advisor) SuggestActivity(_ context.Context, in domain.ActivityInput) (domain.ActivityOutput, error) {
	emotion := strings.ToLower(strings.TrimSpace(in.Emotion))
	level, ok := emotionEnergy[emotion]
	if !ok {
		level = energyMedium
	}

	choice := activities[level]
	switch {
	case in.RainfallChance >= wetAtLeast || in.ComfortIndex == domain.ComfortVeryWet:
		choice = indoorFallback
	case in.WindSpeed >= windyAtLeast || in.ComfortIndex == domain.ComfortWindy:
		if level == energyHigh {
			choice = activity{"Try a sheltered trail hike", "the trees break the wind while you burn off energy"}
		} else {
			choice = indoorFallback
		}
	case in.Temperature > hotAbove || in.ComfortIndex == domain.ComfortVeryHot:
		choice = activity{"Swim at a local pool or lake", "water keeps you cool in the heat"}
	}

	mood := emotion
	if mood == "" {
		mood = "your current mood"
	}
	return domain.ActivityOutput{
		SuggestedActivity: choice.name,
		Reasoning: fmt.Sprintf("With %s, %d°C and a %d%% chance of rain, this %s.",
			mood, in.Temperature, in.RainfallChance, choice.reason),
	}, nil
}

var (
	floraNotes = []string{
		"Hardy wildflowers such as clover and dandelion thrive along paths and verges.",
		"Broad-leaved trees like oak and maple give shade and shelter to many species.",
		"Native grasses hold the soil together and slow erosion after heavy rain.",
		"Mosses and ferns cover damp, shaded corners and help retain moisture.",
	}
	faunaNotes = []string{
		"Sparrows and finches are common visitors to gardens and parks.",
		"Bees and butterflies pollinate flowering plants through the warmer months.",
		"Squirrels cache seeds that later sprout into new trees.",
		"Bats emerge at dusk and keep insect numbers in check.",
	}
	ecoTips = []string{
		"Carry a reusable water bottle instead of buying single-use plastic.",
		"Walk or cycle for short trips to cut local emissions.",
		"Plant native flowers to support local pollinators.",
		"Pick up litter on your outing and leave places better than you found them.",
	}
)

// EcoAwareness selects notes deterministically from the location name so the
// same place always reads the same.
func (a *Advisor) EcoAwareness(_ context.Context, in domain.EcoAwarenessInput) (domain.EcoAwarenessOutput, error) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(in.Location))))
	sum := h.Sum32()

	return domain.EcoAwarenessOutput{
		Flora: floraNotes[sum%uint32(len(floraNotes))],
		Fauna: faunaNotes[(sum>>8)%uint32(len(faunaNotes))],
		Tip:   ecoTips[(sum>>16)%uint32(len(ecoTips))],
	}, nil
}
