package summarization

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"

	"go-disasterscout/types"
)

const maxPromptLength = 15000 // rough character limit for the prompt

// BuildRollup renders the canonical, rule-based text summary for a brief:
// per-category counts plus fixed guidance sentences keyed on which counts
// are nonzero. Deliberately not a model call, so a brief always has a
// summary even with every language backend down.
func BuildRollup(region, topic string, stats map[string]map[string]int) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("Situation brief for %s on topic '%s':", region, topic))
	lines = append(lines, "")

	categories := make([]string, 0, len(stats))
	for category := range stats {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var sosTotal, shelterTotal, infoTotal, otherTotal int
	for _, category := range categories {
		statuses := stats[category]

		total := 0
		statusNames := make([]string, 0, len(statuses))
		for status := range statuses {
			statusNames = append(statusNames, status)
		}
		sort.Strings(statusNames)

		parts := make([]string, 0, len(statuses))
		for _, status := range statusNames {
			count := statuses[status]
			total += count
			parts = append(parts, fmt.Sprintf("%s=%d", strings.ToLower(status), count))
		}
		lines = append(lines, fmt.Sprintf("- %s: %d incidents (%s)", category, total, strings.Join(parts, ", ")))

		switch types.Category(category) {
		case types.SOS:
			sosTotal += total
		case types.Shelter:
			shelterTotal += total
		case types.Info:
			infoTotal += total
		default:
			otherTotal += total
		}
	}

	lines = append(lines, "")
	switch {
	case sosTotal == 0 && shelterTotal == 0 && infoTotal == 0 && otherTotal == 0:
		lines = append(lines, "No incidents on record for this region yet.")
	default:
		if sosTotal > 0 {
			lines = append(lines, "Active SOS reports are present; prioritize rescue coordination and wellness checks.")
		}
		if shelterTotal > 0 {
			lines = append(lines, "Shelter locations are on record; direct evacuees to the nearest one.")
		}
		if sosTotal == 0 && shelterTotal == 0 {
			lines = append(lines, "Only informational reports so far; continue monitoring the situation.")
		}
	}

	return strings.Join(lines, "\n")
}

// Client renders an LLM narrative on top of a rollup.
type Client struct {
	openai *openai.Client
}

func NewClient(openaiClient *openai.Client) *Client {
	return &Client{openai: openaiClient}
}

// Narrative sends the rollup to OpenAI and requests a concise situation
// report. Callers treat failures as "no narrative", never as a brief
// failure.
func (c *Client) Narrative(ctx context.Context, region, topic, rollup string) (string, error) {
	if len(rollup) > maxPromptLength {
		rollup = rollup[:maxPromptLength]
	}

	prompt := fmt.Sprintf(
		"Write a concise crisis situation report for %s regarding %s, based on these aggregated incident counts. Focus on what responders should do next. 2-3 sentences maximum:\n\n---\n%s\n---\n\nReport:",
		region, topic, rollup)

	resp, err := c.openai.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4oMini,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are a crisis intelligence assistant that writes concise situation reports.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   150,
			N:           1,
			Temperature: 0.5,
		},
	)

	if err != nil {
		return "", fmt.Errorf("openai chat completion error: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai returned empty response or choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
