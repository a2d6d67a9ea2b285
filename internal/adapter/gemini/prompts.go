package gemini

import (
	"bytes"
	"fmt"
	"sort"
	"text/template"

	"google.golang.org/genai"
)

var (
	clothingPrompt = template.Must(template.New("clothing").Parse(`Based on the following weather conditions, provide clothing and safety recommendations:

Temperature: {{.Temperature}}°C
Humidity: {{.Humidity}}%
Wind Speed: {{.WindSpeed}} km/h
Chance of Rainfall: {{.RainfallChance}}%

Please provide specific recommendations for clothing and safety items.`))

	activityPrompt = template.Must(template.New("activity").Parse(`You are an AI assistant designed to suggest outdoor activities based on a user's current emotion and the current weather conditions. Here are the details:

User Emotion: {{.Emotion}}
Temperature: {{.Temperature}}°C
Humidity: {{.Humidity}}%
Wind Speed: {{.WindSpeed}} km/h
Rainfall Chance: {{.RainfallChance}}%
Comfort Index: {{.ComfortIndex}}

Consider these factors and suggest ONE outdoor activity that would be most suitable for the user. Explain your reasoning for the suggestion.
`))

	ecoPrompt = template.Must(template.New("eco").Parse(`For the location "{{.Location}}", provide the following eco-awareness information. Each item should be a single, concise sentence.

1.  **Local Flora**: Briefly describe a common or interesting plant found in the area.
2.  **Local Fauna**: Briefly describe a common or interesting animal found in the area.
3.  **Eco Tip**: Provide a simple, actionable eco-friendly tip.

Generate a JSON object with the keys "flora", "fauna", and "tip".`))
)

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// Response schemas in the Gemini OpenAPI subset.

var clothingSchema = objectSchema(map[string]*genai.Schema{
	"clothingRecommendations": arrayOfStrings("An array of recommended clothing items."),
	"safetyRecommendations":   arrayOfStrings("An array of safety recommendations."),
})

var activitySchema = objectSchema(map[string]*genai.Schema{
	"suggestedActivity": stringField("A suggested outdoor activity based on the user's emotion and the weather conditions."),
	"reasoning":         stringField("Explanation of why the suggested activity is appropriate for the given emotion and weather conditions."),
})

var ecoSchema = objectSchema(map[string]*genai.Schema{
	"flora": stringField("A brief, one-sentence description of notable local flora."),
	"fauna": stringField("A brief, one-sentence description of notable local fauna."),
	"tip":   stringField("A concise, actionable eco-friendly tip relevant to the location or general outdoor activities."),
})

func stringField(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: description}
}

func arrayOfStrings(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Description: description, Items: &genai.Schema{Type: genai.TypeString}}
}

func objectSchema(props map[string]*genai.Schema) *genai.Schema {
	required := make([]string, 0, len(props))
	for name := range props {
		required = append(required, name)
	}
	sort.Strings(required)
	return &genai.Schema{Type: genai.TypeObject, Properties: props, Required: required, PropertyOrdering: required}
}
