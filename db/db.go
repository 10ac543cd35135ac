package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const incidentsCollection = "incidents"

var (
	// ErrNotFound means the id did not resolve to an incident.
	ErrNotFound = errors.New("incident not found")
	// ErrInvalidID means the id is not a valid ObjectID hex string.
	ErrInvalidID = errors.New("invalid incident id")
)

// Store wraps the Mongo collection holding incidents. All pipeline and API
// reads/writes go through it; single-document updates rely on Mongo's atomic
// update semantics, no cross-document transactions are used.
type Store struct {
	client    *mongo.Client
	incidents *mongo.Collection
}

func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo uri is empty")
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return &Store{
		client:    client,
		incidents: client.Database(dbName).Collection(incidentsCollection),
	}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
