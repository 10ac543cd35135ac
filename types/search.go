package types

// SearchResult is one snippet returned by the web search provider.
type SearchResult struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url"`
}
