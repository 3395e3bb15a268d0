// Package mood defines the dining moods a user can pick from.
package mood

import (
	"errors"
	"fmt"
)

// ErrUnknownMood is returned when a mood id is not in the catalog.
var ErrUnknownMood = errors.New("unknown mood")

// Preset is a dining-style bias that modifies the recommendation prompt.
type Preset struct {
	ID             string `json:"id"`              // Stable identifier used in forms and URLs
	Label          string `json:"label"`           // Display name
	Emoji          string `json:"emoji"`           // Icon shown on the mood card
	PromptFragment string `json:"prompt_fragment"` // Phrase embedded in the AI prompt
	Color          string `json:"color"`           // CSS class for the mood card
}

// presets is the fixed catalog. Adding or removing a mood is a deployment change.
var presets = []Preset{
	{
		ID:             "casual",
		Label:          "Just Something Tasty",
		Emoji:          "🍜",
		PromptFragment: "affordable, quick, casual local food, tasty but simple",
		Color:          "mood-orange",
	},
	{
		ID:             "fancy",
		Label:          "A Little Ceremony",
		Emoji:          "🍷",
		PromptFragment: "upscale, nice ambiance, good for a date or treat, slightly expensive",
		Color:          "mood-purple",
	},
	{
		ID:             "healthy",
		Label:          "Fresh & Light",
		Emoji:          "🥗",
		PromptFragment: "healthy, light, salads, poke bowls, or clean eating",
		Color:          "mood-green",
	},
	{
		ID:             "comfort",
		Label:          "Comfort Food",
		Emoji:          "🍔",
		PromptFragment: "comfort food, fried chicken, burgers, pizza, rich flavors",
		Color:          "mood-yellow",
	},
	{
		ID:             "group",
		Label:          "Dinner With Friends",
		Emoji:          "🍻",
		PromptFragment: "good for groups, izakaya, hot pot, or sharing plates, lively atmosphere",
		Color:          "mood-blue",
	},
	{
		ID:             "cafe",
		Label:          "Quiet Café",
		Emoji:          "☕",
		PromptFragment: "cafe serving dinner, quiet, aesthetic, good for reading or talking",
		Color:          "mood-stone",
	},
}

// List returns the catalog in display order.
// The returned slice is a copy and may be modified by the caller.
func List() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// Lookup returns the preset with the given id.
func Lookup(id string) (Preset, error) {
	for _, p := range presets {
		if p.ID == id {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("%w: %q", ErrUnknownMood, id)
}
