package geocode

import (
	"context"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"googlemaps.github.io/maps"

	"go-disasterscout/types"
)

const (
	requestTimeout = 5 * time.Second
	cacheSize      = 256
)

// Client resolves free-text place descriptions to coordinates via the Google
// Maps geocoding API. Results (including misses) are cached, since the same
// refined place string shows up over and over within a scan.
type Client struct {
	maps  *maps.Client
	cache *lru.Cache[string, *types.GeoPoint]
}

func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("maps api key is empty")
	}

	mapsClient, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}

	cache, err := lru.New[string, *types.GeoPoint](cacheSize)
	if err != nil {
		return nil, err
	}

	return &Client{maps: mapsClient, cache: cache}, nil
}

// Geocode resolves a place to a point, biased by the region string unless the
// region is empty or already part of the place. Returns (nil, nil) when the
// provider has no result; callers treat that the same as an error and fall
// back to geocoding the bare region.
func (c *Client) Geocode(ctx context.Context, place, region string) (*types.GeoPoint, error) {
	query := BuildQuery(place, region)
	if query == "" {
		return nil, nil
	}

	if cached, ok := c.cache.Get(query); ok {
		return cached, nil
	}

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	results, err := c.maps.Geocode(reqCtx, &maps.GeocodingRequest{Address: query})
	if err != nil {
		return nil, fmt.Errorf("geocode request for %q failed: %w", query, err)
	}
	if len(results) == 0 {
		c.cache.Add(query, nil)
		return nil, nil
	}

	loc := results[0].Geometry.Location
	point := types.NewGeoPoint(loc.Lng, loc.Lat)
	c.cache.Add(query, &point)
	return &point, nil
}

// BuildQuery appends the region as a disambiguating suffix unless it is empty
// or already contained in the place.
func BuildQuery(place, region string) string {
	place = strings.TrimSpace(place)
	region = strings.TrimSpace(region)

	if place == "" {
		return region
	}
	if region == "" || strings.Contains(strings.ToLower(place), strings.ToLower(region)) {
		return place
	}
	return place + ", " + region
}
