package processor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAggregator struct {
	stats map[string]map[string]int
	err   error
}

func (f *fakeAggregator) CategoryStatusCounts(_ context.Context, _ string) (map[string]map[string]int, error) {
	return f.stats, f.err
}

type fakeNarrator struct {
	narrative string
	err       error
}

func (f *fakeNarrator) Narrative(_ context.Context, _, _, _ string) (string, error) {
	return f.narrative, f.err
}

func emptyScanner() *Scanner {
	return newTestScanner(&fakeSearch{}, &fakeClassifier{}, &fakeGeocoder{}, &fakeUpserter{})
}

func TestBriefComposesScanStatsAndSummary(t *testing.T) {
	stats := map[string]map[string]int{
		"SOS":  {"unverified": 2},
		"INFO": {"verified": 1},
	}
	briefer := NewBriefer(emptyScanner(), &fakeAggregator{stats: stats}, &fakeNarrator{narrative: "All quiet."})

	brief, err := briefer.Brief(context.Background(), "Brooklyn, NY", "flood")
	require.NoError(t, err)
	assert.Equal(t, "Brooklyn, NY", brief.Region)
	assert.Equal(t, "flood", brief.Topic)
	assert.Equal(t, stats, brief.Stats)
	assert.Contains(t, brief.Summary, "Brooklyn, NY")
	assert.Equal(t, "All quiet.", brief.Narrative)
}

func TestBriefWithoutNarrator(t *testing.T) {
	briefer := NewBriefer(emptyScanner(), &fakeAggregator{stats: map[string]map[string]int{}}, nil)

	brief, err := briefer.Brief(context.Background(), "Brooklyn, NY", "flood")
	require.NoError(t, err)
	assert.Empty(t, brief.Narrative)
	assert.NotEmpty(t, brief.Summary)
}

func TestBriefNarratorFailureIsNotFatal(t *testing.T) {
	briefer := NewBriefer(emptyScanner(), &fakeAggregator{stats: map[string]map[string]int{}},
		&fakeNarrator{err: errors.New("model unavailable")})

	brief, err := briefer.Brief(context.Background(), "Brooklyn, NY", "flood")
	require.NoError(t, err)
	assert.Empty(t, brief.Narrative)
}

func TestBriefStatsFailureIsFatal(t *testing.T) {
	briefer := NewBriefer(emptyScanner(), &fakeAggregator{err: errors.New("aggregation failed")}, nil)

	_, err := briefer.Brief(context.Background(), "Brooklyn, NY", "flood")
	require.Error(t, err)
}
