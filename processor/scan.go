package processor

import (
	"context"
	"log"

	"go-disasterscout/nlp"
	"go-disasterscout/types"
)

// recencyWindowDays bounds the search provider's lookback per scan.
const recencyWindowDays = 3

// descriptionMaxLen caps the fallback description taken from snippet content
// when a result has no title.
const descriptionMaxLen = 200

// The pipeline's collaborators, injected so every stage can be faked in
// tests and so no component reaches for ambient global clients.

type SearchProvider interface {
	Search(ctx context.Context, region, topic string, days int) ([]types.SearchResult, error)
	Extract(ctx context.Context, urls []string) map[string]string
}

type Classifier interface {
	IsRelevant(ctx context.Context, text, region string) bool
	ClassifyCategory(ctx context.Context, description, fullText, region string) types.Category
	ExtractPlace(ctx context.Context, text string) string
}

type Geocoder interface {
	Geocode(ctx context.Context, place, region string) (*types.GeoPoint, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) []float64
}

type Upserter interface {
	Upsert(ctx context.Context, candidate types.Candidate) (string, bool, error)
}

// Scanner runs one full ingestion pass for a region and topic: search, then
// per candidate relevance -> category -> place -> geocode -> embed -> dedup
// upsert. Candidates are processed strictly sequentially so a later result
// in the same run can merge into an incident inserted moments earlier.
type Scanner struct {
	search     SearchProvider
	classifier Classifier
	geocoder   Geocoder
	embedder   Embedder
	engine     Upserter
}

func NewScanner(search SearchProvider, classifier Classifier, geocoder Geocoder, embedder Embedder, engine Upserter) *Scanner {
	return &Scanner{
		search:     search,
		classifier: classifier,
		geocoder:   geocoder,
		embedder:   embedder,
		engine:     engine,
	}
}

// ScanRegion runs one ingestion pass. Upstream failures degrade individual
// candidates (skip or fallback) and a dead search provider yields an empty
// summary; only a store failure aborts the run, since there is no
// invariant-preserving fallback for "cannot write the result".
func (s *Scanner) ScanRegion(ctx context.Context, region, topic string) (types.ScanSummary, error) {
	region = types.NormalizeRegion(region)
	summary := types.ScanSummary{Region: region, Topic: topic}

	results, err := s.search.Search(ctx, region, topic, recencyWindowDays)
	if err != nil {
		log.Printf("Search for %q/%q failed, nothing to process: %v", region, topic, err)
		return summary, nil
	}
	log.Printf("Scanning %q/%q: %d search results", region, topic, len(results))

	var urls []string
	for _, r := range results {
		if r.URL != "" {
			urls = append(urls, r.URL)
		}
	}
	fullTexts := s.search.Extract(ctx, urls)

	for _, result := range results {
		description := result.Title
		if description == "" {
			description = truncate(result.Content, descriptionMaxLen)
		}
		if description == "" {
			continue
		}

		fullText := fullTexts[result.URL]
		if fullText == "" {
			fullText = result.Content
		}

		if !s.classifier.IsRelevant(ctx, description+"\n"+fullText, region) {
			log.Printf("Skipping irrelevant result: %s", description)
			continue
		}

		category := s.classifier.ClassifyCategory(ctx, description, fullText, region)

		place := s.classifier.ExtractPlace(ctx, description+" "+result.Content)
		refined := nlp.RefinePlace(place, region)

		// refinement already decided whether the region belongs in the query,
		// so the geocoder must not append it again
		point, err := s.geocoder.Geocode(ctx, refined, "")
		if err != nil {
			log.Printf("Geocoding %q failed: %v", refined, err)
		}
		if point == nil {
			// second tier: the bare region string
			point, err = s.geocoder.Geocode(ctx, region, "")
			if err != nil {
				log.Printf("Geocoding region %q failed: %v", region, err)
			}
		}
		if point == nil {
			// no resolvable point, and an incident without one is forbidden
			log.Printf("Dropping candidate with unresolvable location: %s", description)
			continue
		}

		candidate := types.Candidate{
			Description: description,
			Category:    category,
			Region:      region,
			Topic:       topic,
			Point:       *point,
			Embedding:   s.embedder.Embed(ctx, description),
			SourceLink:  result.URL,
		}

		id, inserted, err := s.engine.Upsert(ctx, candidate)
		if err != nil {
			return summary, err
		}

		summary.Processed++
		if inserted {
			summary.Upserts++
			log.Printf("Inserted incident %s (%s): %s", id, category, description)
		} else {
			log.Printf("Merged report into incident %s: %s", id, description)
		}
	}

	log.Printf("Scan of %q/%q done: processed=%d upserts=%d",
		region, topic, summary.Processed, summary.Upserts)
	return summary, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
