package gemini

import (
	"fmt"

	"google.golang.org/genai"

	"github.com/justestif/go-dinner-vibe/internal/geo"
)

// Temperature is the fixed sampling temperature. It allows varied phrasing across calls.
const Temperature = 0.7

// DefaultPersonaLanguage is the language the food guide answers in.
const DefaultPersonaLanguage = "Traditional Chinese (Taiwan style)"

// FallbackText replaces a missing narrative answer.
const FallbackText = "Sorry, no written recommendation came back this time. Take a look at the places below."

const promptTemplate = `I am at latitude %s, longitude %s.
It is dinner time and I am in the mood for "%s".

Recommend 4-5 specific restaurants nearby that match this mood.
For each one, explain in a sentence or two why it fits.

Requirements:
- Use the Google Maps tool so every place is real.
- Keep the descriptions friendly and appetizing.
- Format the answer clearly.`

const personaTemplate = `You are a helpful local food guide. You speak %s. Be concise, fun, and helpful.`

// BuildPrompt returns the user instruction for a coordinate and mood fragment.
// The output is deterministic and embeds both values verbatim.
func BuildPrompt(c geo.Coordinate, moodFragment string) string {
	return fmt.Sprintf(promptTemplate, geo.FormatDegrees(c.Latitude), geo.FormatDegrees(c.Longitude), moodFragment)
}

// BuildPersona returns the system instruction for the given answer language.
func BuildPersona(language string) string {
	if language == "" {
		language = DefaultPersonaLanguage
	}
	return fmt.Sprintf(personaTemplate, language)
}

// buildRequest assembles a maps-grounded generateContent call.
func buildRequest(c geo.Coordinate, moodFragment, persona string) ([]*genai.Content, *genai.GenerateContentConfig) {
	contents := []*genai.Content{
		genai.NewContentFromText(BuildPrompt(c, moodFragment), genai.RoleUser),
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(persona, genai.RoleUser),
		Temperature:       genai.Ptr(float32(Temperature)),
		Tools: []*genai.Tool{
			{GoogleMaps: &genai.GoogleMaps{}},
		},
		ToolConfig: &genai.ToolConfig{
			RetrievalConfig: &genai.RetrievalConfig{
				LatLng: &genai.LatLng{
					Latitude:  genai.Ptr(c.Latitude),
					Longitude: genai.Ptr(c.Longitude),
				},
			},
		},
	}

	return contents, cfg
}
