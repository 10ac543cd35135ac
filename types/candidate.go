package types

// Candidate is a not-yet-stored incident built from one search result,
// pending dedup resolution.
type Candidate struct {
	Description string
	Category    Category
	Region      string
	Topic       string
	Point       GeoPoint
	Embedding   []float64
	SourceLink  string
}

// ScanSummary reports how much one ingestion pass accomplished. Processed
// counts candidates that made it all the way into the store; Upserts counts
// the subset that created a new incident, so Processed-Upserts is the number
// of merges.
type ScanSummary struct {
	Region    string `json:"region"`
	Topic     string `json:"topic"`
	Processed int    `json:"processed"`
	Upserts   int    `json:"upserts"`
}

// VerifyResult is the outcome of a verification request.
type VerifyResult struct {
	IncidentID  string `json:"incident_id"`
	Status      Status `json:"status"`
	ReportCount int    `json:"report_count"`
	Reason      string `json:"reason"`
}
