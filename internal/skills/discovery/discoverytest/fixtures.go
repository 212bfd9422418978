// Package discoverytest holds canned model responses for discovery tests.
package discoverytest

import (
	"encoding/json"
	"strings"
)

// PhotographerJSON is a valid discovery_v2 response for a photographer's portfolio.
const PhotographerJSON = `{
  "version": "discovery_v2",
  "intent": "portfolio",
  "theme": "Minimal gallery showcasing landscape and portrait photography",
  "audience": "Prospective clients looking to book a photographer",
  "voice": "warm-personal",
  "persona": "independent photographer with ten years of experience",
  "layout": { "type": "single-page", "flow": ["Navigation", "Hero", "Footer"] },
  "components": [
    {
      "type": "navigation",
      "name": "Navigation",
      "purpose": "Let visitors jump between gallery and contact",
      "required": true,
      "proposal": { "alignment": "left", "density": "comfortable", "background": "transparent" },
      "reasoning": "A light bar keeps attention on the photos",
      "intentHint": null
    },
    {
      "type": "hero",
      "name": "Hero",
      "purpose": "Introduce the photographer with a signature image",
      "required": true,
      "proposal": { "alignment": "left", "layout": "split", "density": "comfortable", "cta": "single", "background": "solid" },
      "reasoning": "Split layout pairs the intro with a strong image",
      "intentHint": "showcase",
      "contentGoal": "showcase-work",
      "ctaIntent": "view-work"
    },
    {
      "type": "footer",
      "name": "Footer",
      "purpose": "Contact details and copyright",
      "required": false,
      "proposal": { "alignment": "center", "layout": "links", "density": "compact", "showCopyright": true },
      "reasoning": null,
      "intentHint": null
    }
  ]
}`

// Mutate decodes PhotographerJSON into a generic map, applies fn and returns the
// re-encoded JSON. Tests use it to break one rule at a time.
func Mutate(fn func(doc map[string]any)) string {
	var doc map[string]any
	if err := json.Unmarshal([]byte(PhotographerJSON), &doc); err != nil {
		panic(err)
	}
	fn(doc)
	b, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// Components returns the components array of doc.
func Components(doc map[string]any) []any {
	return doc["components"].([]any)
}

// Component returns the component of doc with the given type.
func Component(doc map[string]any, typ string) map[string]any {
	for _, c := range Components(doc) {
		m := c.(map[string]any)
		if strings.EqualFold(m["type"].(string), typ) {
			return m
		}
	}
	return nil
}
