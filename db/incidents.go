package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-disasterscout/types"
)

// vectorNumCandidates is how many approximate neighbors $vectorSearch
// considers before returning the top results.
const vectorNumCandidates = 50

// InsertIncident stores a brand new incident and returns its id as hex.
func (s *Store) InsertIncident(ctx context.Context, incident *types.Incident) (string, error) {
	res, err := s.incidents.InsertOne(ctx, incident)
	if err != nil {
		return "", fmt.Errorf("failed to insert incident: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

// MergeIncident folds a duplicate report into an existing incident: bumps
// report_count, adds the source link (no-op when already present) and
// refreshes the seen timestamps. Description, category, location and
// embedding are left untouched.
func (s *Store) MergeIncident(ctx context.Context, id string, sourceLink string, now time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	update := bson.M{
		"$inc": bson.M{"report_count": 1},
		"$set": bson.M{"updated_at": now, "last_seen_at": now},
	}
	if sourceLink != "" {
		update["$addToSet"] = bson.M{"source_links": sourceLink}
	}

	res, err := s.incidents.UpdateByID(ctx, oid, update)
	if err != nil {
		return fmt.Errorf("failed to merge incident %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// VectorSearch returns the nearest neighbors to the given embedding across
// the whole collection, annotated with their similarity score. The index is
// semantic-only; region filtering happens in the dedup engine afterwards.
func (s *Store) VectorSearch(ctx context.Context, embedding []float64, limit int) ([]types.IncidentMatch, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$vectorSearch", Value: bson.D{
			{Key: "index", Value: VectorIndexName},
			{Key: "path", Value: "embedding"},
			{Key: "queryVector", Value: embedding},
			{Key: "numCandidates", Value: vectorNumCandidates},
			{Key: "limit", Value: limit},
		}}},
		bson.D{{Key: "$addFields", Value: bson.D{
			{Key: "score", Value: bson.D{{Key: "$meta", Value: "vectorSearchScore"}}},
		}}},
	}

	cursor, err := s.incidents.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	defer cursor.Close(ctx)

	var matches []types.IncidentMatch
	if err := cursor.All(ctx, &matches); err != nil {
		return nil, fmt.Errorf("failed to decode vector search results: %w", err)
	}
	return matches, nil
}

// ListIncidents returns incidents in a region, optionally filtered by
// category and status, most recently seen first.
func (s *Store) ListIncidents(ctx context.Context, region string, category, status string, limit int64) ([]types.Incident, error) {
	filter := bson.M{"region": region}
	if category != "" {
		filter["category"] = category
	}
	if status != "" {
		filter["status"] = status
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "last_seen_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := s.incidents.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer cursor.Close(ctx)

	var incidents []types.Incident
	if err := cursor.All(ctx, &incidents); err != nil {
		return nil, fmt.Errorf("failed to decode incidents: %w", err)
	}
	return incidents, nil
}

// FindNear returns incidents within maxKm of a point, closest first, each
// annotated with the computed distance in meters.
func (s *Store) FindNear(ctx context.Context, lon, lat, maxKm float64, category string, limit int64) ([]types.IncidentWithDistance, error) {
	geoNear := bson.D{
		{Key: "near", Value: types.NewGeoPoint(lon, lat)},
		{Key: "distanceField", Value: "distance_m"},
		{Key: "maxDistance", Value: maxKm * 1000.0},
		{Key: "spherical", Value: true},
	}
	if category != "" {
		geoNear = append(geoNear, bson.E{Key: "query", Value: bson.M{"category": category}})
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$geoNear", Value: geoNear}},
		bson.D{{Key: "$limit", Value: limit}},
	}

	cursor, err := s.incidents.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("geo near query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var results []types.IncidentWithDistance
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode geo near results: %w", err)
	}
	return results, nil
}

// CategoryStatusCounts groups a region's incidents by (category, status).
func (s *Store) CategoryStatusCounts(ctx context.Context, region string) (map[string]map[string]int, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"region": region}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "category", Value: "$category"},
				{Key: "status", Value: "$status"},
			}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := s.incidents.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("category/status aggregation failed: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID struct {
			Category string `bson:"category"`
			Status   string `bson:"status"`
		} `bson:"_id"`
		Count int `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode aggregation rows: %w", err)
	}

	stats := make(map[string]map[string]int)
	for _, row := range rows {
		category := row.ID.Category
		if category == "" {
			category = "UNKNOWN"
		}
		status := row.ID.Status
		if status == "" {
			status = "UNKNOWN"
		}
		if stats[category] == nil {
			stats[category] = make(map[string]int)
		}
		stats[category][status] = row.Count
	}
	return stats, nil
}

// FindIncidentByID fetches one incident. Returns ErrInvalidID for malformed
// ids and ErrNotFound when the id does not resolve.
func (s *Store) FindIncidentByID(ctx context.Context, id string) (*types.Incident, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	var incident types.Incident
	err = s.incidents.FindOne(ctx, bson.M{"_id": oid}).Decode(&incident)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find incident %s: %w", id, err)
	}
	return &incident, nil
}

// MarkVerified flips an incident to VERIFIED and stamps last_verified_at.
// This is the only write path that ever sets the VERIFIED status.
func (s *Store) MarkVerified(ctx context.Context, id string, now time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	res, err := s.incidents.UpdateByID(ctx, oid, bson.M{
		"$set": bson.M{
			"status":           types.Verified,
			"last_verified_at": now,
			"updated_at":       now,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to mark incident %s verified: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
