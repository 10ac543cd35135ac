package db

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-disasterscout/embeddings"
)

// VectorIndexName is the Atlas Search index used by the dedup engine's
// nearest-neighbor queries.
const VectorIndexName = "incident_embedding_index"

// EnsureIndexes creates the 2dsphere index on location and the vector index
// on embedding. The vector index is Atlas-only; against a plain mongod the
// creation fails and we log and carry on so the API still serves radius and
// list queries, but scans will error at the first $vectorSearch until the
// index exists.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.incidents.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "location", Value: "2dsphere"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create 2dsphere index: %w", err)
	}

	definition := bson.D{
		{Key: "fields", Value: bson.A{
			bson.D{
				{Key: "type", Value: "vector"},
				{Key: "path", Value: "embedding"},
				{Key: "numDimensions", Value: embeddings.Dimensions},
				{Key: "similarity", Value: "cosine"},
			},
		}},
	}

	_, err = s.incidents.SearchIndexes().CreateOne(ctx, mongo.SearchIndexModel{
		Definition: definition,
		Options: options.SearchIndexes().
			SetName(VectorIndexName).
			SetType("vectorSearch"),
	})
	if err != nil {
		log.Printf("Could not create vector search index (Atlas only, skipping): %v", err)
	}

	return nil
}
