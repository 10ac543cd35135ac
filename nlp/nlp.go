package nlp

import (
	"context"
	"log"
	"strings"
	"time"

	language "cloud.google.com/go/language/apiv2"
	"github.com/sashabaranov/go-openai"

	"go-disasterscout/types"
)

const requestTimeout = 15 * time.Second

// Classifier makes the pipeline's language judgments: relevance, category
// and place extraction. The primary path is OpenAI chat completions; every
// judgment has a local fallback so a dead backend never stops ingestion.
// The Cloud Natural Language client is optional and only used as the entity
// fallback for place extraction; pass nil to disable it.
type Classifier struct {
	openai   *openai.Client
	language *language.Client
}

func NewClassifier(openaiClient *openai.Client, languageClient *language.Client) *Classifier {
	return &Classifier{openai: openaiClient, language: languageClient}
}

// IsRelevant judges whether the text plausibly describes a hazard, emergency
// or disruption affecting the region. Fails open: any backend error or
// answer outside YES/NO counts as relevant, because a false negative here
// only costs one noisy candidate while a closed failure silences the whole
// feed.
func (c *Classifier) IsRelevant(ctx context.Context, text, region string) bool {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := c.openai.CreateChatCompletion(reqCtx, openai.ChatCompletionRequest{
		Model: openai.GPT4oMini,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You judge crisis reports. Answer with exactly one word: YES or NO.",
			},
			{
				Role: openai.ChatMessageRoleUser,
				Content: "Does the following text describe a hazard, emergency, or disruption affecting " +
					region + "?\n\n" + text,
			},
		},
		MaxTokens:   5,
		Temperature: 0,
	})
	if err != nil || len(resp.Choices) == 0 {
		log.Printf("Relevance check failed, treating as relevant: %v", err)
		return true
	}

	answer := strings.ToUpper(strings.TrimSpace(resp.Choices[0].Message.Content))
	switch {
	case strings.HasPrefix(answer, "NO"):
		return false
	case strings.HasPrefix(answer, "YES"):
		return true
	default:
		log.Printf("Relevance check returned %q, treating as relevant", answer)
		return true
	}
}

// ClassifyCategory assigns one of SOS, SHELTER or INFO. The model must
// return exactly one of the three labels; anything else falls through to the
// keyword rules.
func (c *Classifier) ClassifyCategory(ctx context.Context, description, fullText, region string) types.Category {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	prompt := "Classify this crisis report from " + region + ".\n\n" +
		"Report: " + description + "\n\nDetails: " + fullText

	resp, err := c.openai.CreateChatCompletion(reqCtx, openai.ChatCompletionRequest{
		Model: openai.GPT4oMini,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "You classify crisis reports. Respond with exactly one word: " +
					"SOS (people in immediate danger needing rescue), " +
					"SHELTER (shelter or evacuation center availability), or " +
					"INFO (general situational information).",
			},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   5,
		Temperature: 0,
	})
	if err != nil || len(resp.Choices) == 0 {
		log.Printf("Category classification failed, using keyword rules: %v", err)
		return CategoryByKeywords(description + " " + fullText)
	}

	switch types.Category(strings.ToUpper(strings.TrimSpace(resp.Choices[0].Message.Content))) {
	case types.SOS:
		return types.SOS
	case types.Shelter:
		return types.Shelter
	case types.Info:
		return types.Info
	default:
		return CategoryByKeywords(description + " " + fullText)
	}
}

// shelter vocabulary is checked before distress vocabulary: a post about an
// evacuation center often quotes distress language, and routing people to
// shelter is the more useful label for it.
var (
	shelterKeywords = []string{"shelter", "evacuation center", "evacuation centre", "relief camp"}
	sosKeywords     = []string{"trap", "strand", "missing", "rescue", "sos", "urgent help", "swept away"}
)

// CategoryByKeywords is the rule-based fallback classifier.
func CategoryByKeywords(text string) types.Category {
	lower := strings.ToLower(text)
	for _, kw := range shelterKeywords {
		if strings.Contains(lower, kw) {
			return types.Shelter
		}
	}
	for _, kw := range sosKeywords {
		if strings.Contains(lower, kw) {
			return types.SOS
		}
	}
	return types.Info
}
