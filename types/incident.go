package types

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category string

const (
	SOS     Category = "SOS"
	Shelter Category = "SHELTER"
	Info    Category = "INFO"
)

type Status string

const (
	Unverified Status = "UNVERIFIED"
	Verified   Status = "VERIFIED"
)

// GeoPoint is a GeoJSON point. Coordinates are [lon, lat], which is what the
// 2dsphere index expects.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

func NewGeoPoint(lon, lat float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lon, lat}}
}

func (p GeoPoint) Lon() float64 {
	if len(p.Coordinates) != 2 {
		return 0
	}
	return p.Coordinates[0]
}

func (p GeoPoint) Lat() float64 {
	if len(p.Coordinates) != 2 {
		return 0
	}
	return p.Coordinates[1]
}

// Incident is one geolocated, categorized crisis report, possibly backed by
// multiple source articles. Description, category, location and embedding are
// set at creation and never rewritten by merges; merges only bump
// report_count, extend source_links and refresh the seen timestamps.
type Incident struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Description    string             `bson:"description" json:"description"`
	Category       Category           `bson:"category" json:"category"`
	Status         Status             `bson:"status" json:"status"`
	Region         string             `bson:"region" json:"region"`
	Topic          string             `bson:"topic" json:"topic"`
	Location       GeoPoint           `bson:"location" json:"location"`
	Embedding      []float64          `bson:"embedding" json:"-"`
	ReportCount    int                `bson:"report_count" json:"report_count"`
	SourceLinks    []string           `bson:"source_links" json:"source_links"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
	LastSeenAt     time.Time          `bson:"last_seen_at" json:"last_seen_at"`
	LastVerifiedAt *time.Time         `bson:"last_verified_at" json:"last_verified_at"`
}

// IncidentMatch is an incident annotated with its vector search score.
type IncidentMatch struct {
	Incident `bson:",inline"`
	Score    float64 `bson:"score" json:"score"`
}

// IncidentWithDistance is an incident annotated with the distance (in meters)
// computed by a $geoNear query.
type IncidentWithDistance struct {
	Incident  `bson:",inline"`
	DistanceM float64 `bson:"distance_m" json:"distance_m"`
}

// NormalizeRegion trims and collapses internal whitespace so that the same
// region string always compares equal as a dedup and query key. Casing is
// kept as given, since the stored value doubles as display text.
func NormalizeRegion(region string) string {
	return strings.Join(strings.Fields(region), " ")
}
