package dedup

import (
	"context"
	"fmt"
	"math"
	"time"

	"go-disasterscout/types"
)

const (
	// DefaultMaxKm is the geographic gate: neighbors farther than this from
	// the candidate's point are never the same incident.
	DefaultMaxKm = 1.0
	// DefaultMinScore is the semantic gate: neighbors scoring below this
	// similarity are never the same incident, however close they sit.
	DefaultMinScore = 0.7
	// DefaultLimit is how many vector neighbors to retrieve; a few more than
	// strictly needed so the region filter still has enough left.
	DefaultLimit = 20

	earthRadiusKM = 6371.0
)

// Store is what the engine needs from the incident store: semantic
// neighbors, and the two mutation paths it decides between.
type Store interface {
	VectorSearch(ctx context.Context, embedding []float64, limit int) ([]types.IncidentMatch, error)
	InsertIncident(ctx context.Context, incident *types.Incident) (string, error)
	MergeIncident(ctx context.Context, id string, sourceLink string, now time.Time) error
}

// Engine decides whether a candidate is a new incident or another report of
// one already on record. Semantic similarity alone over-merges distinct
// nearby events; geography alone over-merges unrelated co-located ones. The
// conjunction of region equality, a tight radius and a high similarity score
// approximates "very likely the same reported event".
type Engine struct {
	store    Store
	maxKm    float64
	minScore float64
	limit    int
}

func NewEngine(store Store) *Engine {
	return &Engine{
		store:    store,
		maxKm:    DefaultMaxKm,
		minScore: DefaultMinScore,
		limit:    DefaultLimit,
	}
}

// FindMatch returns the best existing incident for the candidate, or nil
// when nothing passes all three gates. Among survivors the highest
// similarity score wins (not the shortest distance); equal scores keep the
// first retrieved.
func (e *Engine) FindMatch(ctx context.Context, embedding []float64, region string, point types.GeoPoint) (*types.IncidentMatch, error) {
	neighbors, err := e.store.VectorSearch(ctx, embedding, e.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve dedup candidates: %w", err)
	}

	var best *types.IncidentMatch
	for i := range neighbors {
		n := &neighbors[i]
		if n.Region != region {
			continue
		}

		dist := HaversineKM(point.Lat(), point.Lon(), n.Location.Lat(), n.Location.Lon())
		if dist > e.maxKm {
			continue
		}
		if n.Score < e.minScore {
			continue
		}
		if best == nil || n.Score > best.Score {
			best = n
		}
	}
	return best, nil
}

// Upsert merges the candidate into its best match, or inserts it as a new
// incident when no match exists. Returns the incident id and whether a new
// record was created.
func (e *Engine) Upsert(ctx context.Context, candidate types.Candidate) (string, bool, error) {
	match, err := e.FindMatch(ctx, candidate.Embedding, candidate.Region, candidate.Point)
	if err != nil {
		return "", false, err
	}

	now := time.Now().UTC()

	if match != nil {
		id := match.ID.Hex()
		if err := e.store.MergeIncident(ctx, id, candidate.SourceLink, now); err != nil {
			return "", false, fmt.Errorf("failed to merge into incident %s: %w", id, err)
		}
		return id, false, nil
	}

	sourceLinks := []string{}
	if candidate.SourceLink != "" {
		sourceLinks = append(sourceLinks, candidate.SourceLink)
	}

	incident := &types.Incident{
		Description:    candidate.Description,
		Category:       candidate.Category,
		Status:         types.Unverified,
		Region:         candidate.Region,
		Topic:          candidate.Topic,
		Location:       candidate.Point,
		Embedding:      candidate.Embedding,
		ReportCount:    1,
		SourceLinks:    sourceLinks,
		CreatedAt:      now,
		UpdatedAt:      now,
		LastSeenAt:     now,
		LastVerifiedAt: nil,
	}

	id, err := e.store.InsertIncident(ctx, incident)
	if err != nil {
		return "", false, fmt.Errorf("failed to insert incident: %w", err)
	}
	return id, true, nil
}

// HaversineKM calculates the great-circle distance between two points on the
// earth (specified in decimal degrees).
func HaversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	radLat1 := lat1 * math.Pi / 180
	radLat2 := lat2 * math.Pi / 180

	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(radLat1)*math.Cos(radLat2)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKM * c
}
