package dedup

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-disasterscout/types"
)

type fakeStore struct {
	neighbors []types.IncidentMatch
	searchErr error

	inserted    *types.Incident
	insertedID  string
	insertErr   error
	mergedID    string
	mergedLink  string
	mergeCalled bool
}

func (f *fakeStore) VectorSearch(_ context.Context, _ []float64, _ int) ([]types.IncidentMatch, error) {
	return f.neighbors, f.searchErr
}

func (f *fakeStore) InsertIncident(_ context.Context, incident *types.Incident) (string, error) {
	f.inserted = incident
	return f.insertedID, f.insertErr
}

func (f *fakeStore) MergeIncident(_ context.Context, id string, sourceLink string, _ time.Time) error {
	f.mergeCalled = true
	f.mergedID = id
	f.mergedLink = sourceLink
	return nil
}

func neighbor(id primitive.ObjectID, region string, lon, lat, score float64) types.IncidentMatch {
	return types.IncidentMatch{
		Incident: types.Incident{
			ID:       id,
			Region:   region,
			Location: types.NewGeoPoint(lon, lat),
		},
		Score: score,
	}
}

func TestHaversineKM(t *testing.T) {
	// Approximately 3936 km between downtown LA and NYC.
	d := HaversineKM(34.0522, -118.2437, 40.7128, -74.0060)
	assert.InDelta(t, 3936, d, 10)

	assert.Zero(t, HaversineKM(40.0, -73.0, 40.0, -73.0))
}

func TestFindMatchGates(t *testing.T) {
	base := types.NewGeoPoint(-73.99, 40.58)
	id := primitive.NewObjectID()

	tests := []struct {
		name     string
		neighbor types.IncidentMatch
		match    bool
	}{
		{
			name:     "same point high score matches",
			neighbor: neighbor(id, "Brooklyn, NY", -73.99, 40.58, 0.95),
			match:    true,
		},
		{
			name: "within radius matches",
			// 0.0089 degrees of latitude is roughly 0.99 km
			neighbor: neighbor(id, "Brooklyn, NY", -73.99, 40.58+0.0089, 0.95),
			match:    true,
		},
		{
			name: "outside radius skipped",
			// 0.0095 degrees of latitude is roughly 1.06 km
			neighbor: neighbor(id, "Brooklyn, NY", -73.99, 40.58+0.0095, 0.95),
			match:    false,
		},
		{
			name:     "score below threshold skipped",
			neighbor: neighbor(id, "Brooklyn, NY", -73.99, 40.58, 0.69),
			match:    false,
		},
		{
			name:     "score at threshold matches",
			neighbor: neighbor(id, "Brooklyn, NY", -73.99, 40.58, 0.7),
			match:    true,
		},
		{
			name:     "different region skipped",
			neighbor: neighbor(id, "Queens, NY", -73.99, 40.58, 0.95),
			match:    false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeStore{neighbors: []types.IncidentMatch{tc.neighbor}}
			engine := NewEngine(store)

			match, err := engine.FindMatch(context.Background(), []float64{0.1}, "Brooklyn, NY", base)
			require.NoError(t, err)
			if tc.match {
				require.NotNil(t, match)
				assert.Equal(t, id, match.ID)
			} else {
				assert.Nil(t, match)
			}
		})
	}
}

func TestFindMatchDistanceExactlyAtLimit(t *testing.T) {
	base := types.NewGeoPoint(-73.99, 40.58)
	id := primitive.NewObjectID()
	store := &fakeStore{neighbors: []types.IncidentMatch{
		neighbor(id, "Brooklyn, NY", -73.99, 40.59, 0.95),
	}}

	// the radius gate is inclusive: a neighbor sitting exactly at the limit
	// still matches
	d := HaversineKM(base.Lat(), base.Lon(), 40.59, -73.99)
	engine := &Engine{store: store, maxKm: d, minScore: DefaultMinScore, limit: DefaultLimit}

	match, err := engine.FindMatch(context.Background(), []float64{0.1}, "Brooklyn, NY", base)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, id, match.ID)

	// one ulp below the distance and the same neighbor is excluded
	engine.maxKm = math.Nextafter(d, 0)
	match, err = engine.FindMatch(context.Background(), []float64{0.1}, "Brooklyn, NY", base)
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestFindMatchPicksHighestScore(t *testing.T) {
	base := types.NewGeoPoint(-73.99, 40.58)
	closer := primitive.NewObjectID()
	stronger := primitive.NewObjectID()

	store := &fakeStore{neighbors: []types.IncidentMatch{
		// closest neighbor, but a weaker semantic match
		neighbor(closer, "Brooklyn, NY", -73.99, 40.58, 0.75),
		neighbor(stronger, "Brooklyn, NY", -73.99, 40.583, 0.92),
	}}
	engine := NewEngine(store)

	match, err := engine.FindMatch(context.Background(), []float64{0.1}, "Brooklyn, NY", base)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, stronger, match.ID)
}

func TestFindMatchTieKeepsFirst(t *testing.T) {
	base := types.NewGeoPoint(-73.99, 40.58)
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()

	store := &fakeStore{neighbors: []types.IncidentMatch{
		neighbor(first, "Brooklyn, NY", -73.99, 40.58, 0.9),
		neighbor(second, "Brooklyn, NY", -73.99, 40.58, 0.9),
	}}
	engine := NewEngine(store)

	match, err := engine.FindMatch(context.Background(), []float64{0.1}, "Brooklyn, NY", base)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, first, match.ID)
}

func TestUpsertInsertsNewIncident(t *testing.T) {
	store := &fakeStore{insertedID: "abc123"}
	engine := NewEngine(store)

	candidate := types.Candidate{
		Description: "Flooding traps residents near Shore Parkway",
		Category:    types.SOS,
		Region:      "Brooklyn, NY",
		Topic:       "flood",
		Point:       types.NewGeoPoint(-73.99, 40.58),
		Embedding:   []float64{0.1, 0.2},
		SourceLink:  "https://example.com/flood",
	}

	id, inserted, err := engine.Upsert(context.Background(), candidate)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, "abc123", id)

	require.NotNil(t, store.inserted)
	assert.Equal(t, 1, store.inserted.ReportCount)
	assert.Equal(t, types.Unverified, store.inserted.Status)
	assert.Equal(t, []string{"https://example.com/flood"}, store.inserted.SourceLinks)
	assert.Nil(t, store.inserted.LastVerifiedAt)
	assert.False(t, store.inserted.CreatedAt.IsZero())
	assert.False(t, store.mergeCalled)
}

func TestUpsertWithoutSourceLink(t *testing.T) {
	store := &fakeStore{insertedID: "abc123"}
	engine := NewEngine(store)

	_, _, err := engine.Upsert(context.Background(), types.Candidate{
		Description: "Shelter open at PS 288",
		Category:    types.Shelter,
		Region:      "Brooklyn, NY",
		Point:       types.NewGeoPoint(-73.99, 40.58),
	})
	require.NoError(t, err)
	require.NotNil(t, store.inserted)
	assert.Empty(t, store.inserted.SourceLinks)
	assert.NotNil(t, store.inserted.SourceLinks)
}

func TestUpsertMergesIntoMatch(t *testing.T) {
	existing := primitive.NewObjectID()
	store := &fakeStore{neighbors: []types.IncidentMatch{
		neighbor(existing, "Brooklyn, NY", -73.99, 40.58, 0.9),
	}}
	engine := NewEngine(store)

	candidate := types.Candidate{
		Description: "Residents trapped by floodwater near Shore Parkway",
		Region:      "Brooklyn, NY",
		Point:       types.NewGeoPoint(-73.99, 40.58),
		SourceLink:  "https://example.com/followup",
	}

	id, inserted, err := engine.Upsert(context.Background(), candidate)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, existing.Hex(), id)
	assert.True(t, store.mergeCalled)
	assert.Equal(t, existing.Hex(), store.mergedID)
	assert.Equal(t, "https://example.com/followup", store.mergedLink)
	assert.Nil(t, store.inserted)
}

func TestUpsertSearchError(t *testing.T) {
	store := &fakeStore{searchErr: errors.New("atlas down")}
	engine := NewEngine(store)

	_, _, err := engine.Upsert(context.Background(), types.Candidate{
		Region: "Brooklyn, NY",
		Point:  types.NewGeoPoint(-73.99, 40.58),
	})
	require.Error(t, err)
}
