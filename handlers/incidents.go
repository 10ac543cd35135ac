package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"go-disasterscout/db"
	"go-disasterscout/processor"
	"go-disasterscout/types"
)

const (
	defaultListLimit = 200
	maxListLimit     = 2000

	defaultNearKm    = 3.0
	defaultNearLimit = 5
)

// Incidents returns a region's incidents as a GeoJSON FeatureCollection, so
// the map client can render the payload directly.
func Incidents(c *gin.Context, store *db.Store) {
	region := types.NormalizeRegion(c.Query("region"))
	if region == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "region query parameter is required"})
		return
	}

	limit := queryInt64(c, "limit", defaultListLimit)
	if limit < 1 || limit > maxListLimit {
		limit = defaultListLimit
	}

	incidents, err := store.ListIncidents(c.Request.Context(), region, c.Query("category"), c.Query("status"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	features := make([]gin.H, 0, len(incidents))
	for _, incident := range incidents {
		features = append(features, incidentToFeature(incident, nil))
	}

	c.JSON(http.StatusOK, gin.H{
		"type":     "FeatureCollection",
		"features": features,
	})
}

// Near returns incidents within a radius of a point, closest first, each
// annotated with its distance in meters.
func Near(c *gin.Context, store *db.Store) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr != nil || lonErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon query parameters are required"})
		return
	}

	maxKm := defaultNearKm
	if raw := c.Query("max_km"); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil && parsed > 0 {
			maxKm = parsed
		}
	}
	limit := queryInt64(c, "limit", defaultNearLimit)
	if limit < 1 || limit > maxListLimit {
		limit = defaultNearLimit
	}

	results, err := store.FindNear(c.Request.Context(), lon, lat, maxKm, c.Query("category"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	features := make([]gin.H, 0, len(results))
	for _, r := range results {
		distance := r.DistanceM
		features = append(features, incidentToFeature(r.Incident, &distance))
	}

	c.JSON(http.StatusOK, gin.H{
		"type":     "FeatureCollection",
		"features": features,
	})
}

// Verify applies the verification rule to one incident.
func Verify(c *gin.Context, store *db.Store) {
	result, err := processor.Verify(c.Request.Context(), store, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, db.ErrInvalidID):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident id"})
		case errors.Is(err, db.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "incident not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

func incidentToFeature(incident types.Incident, distanceM *float64) gin.H {
	properties := gin.H{
		"id":               incident.ID.Hex(),
		"description":      incident.Description,
		"category":         incident.Category,
		"status":           incident.Status,
		"region":           incident.Region,
		"topic":            incident.Topic,
		"report_count":     incident.ReportCount,
		"source_links":     incident.SourceLinks,
		"last_seen_at":     incident.LastSeenAt,
		"last_verified_at": incident.LastVerifiedAt,
	}
	if distanceM != nil {
		properties["distance_m"] = *distanceM
	}

	return gin.H{
		"type": "Feature",
		"geometry": gin.H{
			"type":        "Point",
			"coordinates": incident.Location.Coordinates,
		},
		"properties": properties,
	}
}

func queryInt64(c *gin.Context, key string, fallback int64) int64 {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
