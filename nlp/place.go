package nlp

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"cloud.google.com/go/language/apiv2/languagepb"
	"github.com/sashabaranov/go-openai"
)

const extractPlaceSystem = `Extract the most specific geographic place mentioned in this text.
Return ONLY valid JSON.

Examples:
"Flooding hits Bay Ridge, Brooklyn" ->
{"place": "Bay Ridge, Brooklyn, NY", "confidence": 0.95}

"Storm affects lower Manhattan" ->
{"place": "Lower Manhattan, New York, NY", "confidence": 0.92}

If no place found: {"place": null, "confidence": 0}`

// ExtractPlace returns the most specific place named in the text, or "" when
// none is found. Malformed model output is never an error, just a miss; when
// the chat model has nothing, the Cloud Natural Language entity extractor
// gets a try.
func (c *Classifier) ExtractPlace(ctx context.Context, text string) string {
	place := c.extractPlaceChat(ctx, text)
	if place == "" && c.language != nil {
		place = c.extractPlaceEntities(ctx, text)
	}
	return place
}

func (c *Classifier) extractPlaceChat(ctx context.Context, text string) string {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := c.openai.CreateChatCompletion(reqCtx, openai.ChatCompletionRequest{
		Model: openai.GPT4oMini,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractPlaceSystem},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		MaxTokens:   200,
		Temperature: 0,
	})
	if err != nil || len(resp.Choices) == 0 {
		log.Printf("Place extraction failed: %v", err)
		return ""
	}

	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var parsed struct {
		Place *string `json:"place"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		log.Printf("Place extraction returned malformed JSON: %v", err)
		return ""
	}
	if parsed.Place == nil {
		return ""
	}
	return strings.TrimSpace(*parsed.Place)
}

// extractPlaceEntities picks the first ADDRESS entity (most specific), then
// the first LOCATION, from the Natural Language API's entity analysis.
func (c *Classifier) extractPlaceEntities(ctx context.Context, text string) string {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := c.language.AnalyzeEntities(reqCtx, &languagepb.AnalyzeEntitiesRequest{
		Document: &languagepb.Document{
			Source: &languagepb.Document_Content{Content: text},
			Type:   languagepb.Document_PLAIN_TEXT,
		},
		EncodingType: languagepb.EncodingType_UTF8,
	})
	if err != nil {
		log.Printf("Entity extraction failed: %v", err)
		return ""
	}

	var location string
	for _, e := range resp.Entities {
		switch e.Type.String() {
		case "ADDRESS":
			return e.Name
		case "LOCATION":
			if location == "" {
				location = e.Name
			}
		}
	}
	return location
}

// knownCountries is the short list used to spot places that already carry a
// country-level qualifier; appending a city-scale region to those would be
// redundant or misleading.
var knownCountries = []string{
	"united states", "usa", "canada", "mexico", "united kingdom",
	"japan", "philippines", "indonesia", "india", "bangladesh",
	"pakistan", "china", "brazil", "australia",
}

// RefinePlace normalizes an extracted place relative to the target region:
// empty place falls back to the region, a place that already mentions the
// region or names a country is used as-is, and anything else gets the region
// appended as a disambiguating suffix.
func RefinePlace(place, region string) string {
	place = strings.TrimSpace(place)
	region = strings.TrimSpace(region)

	if place == "" {
		return region
	}
	if region == "" {
		return place
	}

	lowerPlace := strings.ToLower(place)
	if strings.Contains(lowerPlace, strings.ToLower(region)) {
		return place
	}
	for _, country := range knownCountries {
		if strings.Contains(lowerPlace, country) {
			return place
		}
	}
	return place + ", " + region
}
