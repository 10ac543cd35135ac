package processor

import (
	"context"
	"log"

	"go-disasterscout/summarization"
	"go-disasterscout/types"
)

// Aggregator is the store-side histogram the brief is built from.
type Aggregator interface {
	CategoryStatusCounts(ctx context.Context, region string) (map[string]map[string]int, error)
}

// Narrator renders a situation report from the rollup text. Optional and
// strictly best-effort; the rule-based rollup is the canonical summary.
type Narrator interface {
	Narrative(ctx context.Context, region, topic, rollup string) (string, error)
}

// Briefer composes a situation brief: a fresh scan, the category/status
// histogram, a rule-based rollup, and (when a narrator is wired) an LLM
// narrative on top.
type Briefer struct {
	scanner  *Scanner
	store    Aggregator
	narrator Narrator
}

func NewBriefer(scanner *Scanner, store Aggregator, narrator Narrator) *Briefer {
	return &Briefer{scanner: scanner, store: store, narrator: narrator}
}

func (b *Briefer) Brief(ctx context.Context, region, topic string) (*types.Brief, error) {
	region = types.NormalizeRegion(region)

	summary, err := b.scanner.ScanRegion(ctx, region, topic)
	if err != nil {
		return nil, err
	}

	stats, err := b.store.CategoryStatusCounts(ctx, region)
	if err != nil {
		return nil, err
	}

	brief := &types.Brief{
		Region:      region,
		Topic:       topic,
		ScanSummary: summary,
		Stats:       stats,
		Summary:     summarization.BuildRollup(region, topic, stats),
	}

	if b.narrator != nil {
		narrative, err := b.narrator.Narrative(ctx, region, topic, brief.Summary)
		if err != nil {
			log.Printf("Brief narrative failed, keeping rule-based summary only: %v", err)
		} else {
			brief.Narrative = narrative
		}
	}

	return brief, nil
}
