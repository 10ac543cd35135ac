package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"go-disasterscout/types"
)

const (
	searchURL  = "https://api.tavily.com/search"
	extractURL = "https://api.tavily.com/extract"
)

// Client is a thin adapter over the Tavily search API. It returns candidate
// snippets for a region and hazard topic and can optionally enrich them with
// extracted full article text.
type Client struct {
	apiKey string
	http   *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Search fetches recent news/web results for a hazard in a region.
func (c *Client) Search(ctx context.Context, region, topic string, days int) ([]types.SearchResult, error) {
	query := fmt.Sprintf("%s %s shelters SOS situation", region, topic)

	payload := map[string]interface{}{
		"query":        query,
		"topic":        "news",
		"days":         days,
		"search_depth": "advanced",
	}

	var response struct {
		Results []types.SearchResult `json:"results"`
	}
	if err := c.post(ctx, searchURL, payload, &response); err != nil {
		return nil, fmt.Errorf("tavily search failed: %w", err)
	}
	return response.Results, nil
}

// Extract fetches full article text for the given URLs, best-effort: any
// failure just means the caller keeps the original snippet content.
func (c *Client) Extract(ctx context.Context, urls []string) map[string]string {
	if len(urls) == 0 {
		return nil
	}

	payload := map[string]interface{}{"urls": urls}

	var response struct {
		Results []struct {
			URL        string `json:"url"`
			RawContent string `json:"raw_content"`
		} `json:"results"`
	}
	if err := c.post(ctx, extractURL, payload, &response); err != nil {
		log.Printf("Tavily extract failed, keeping snippet content: %v", err)
		return nil
	}

	fullTexts := make(map[string]string, len(response.Results))
	for _, r := range response.Results {
		if r.RawContent != "" {
			fullTexts[r.URL] = r.RawContent
		}
	}
	return fullTexts
}

func (c *Client) post(ctx context.Context, url string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.New("tavily returned status: " + resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
