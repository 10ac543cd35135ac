package types

// Brief is a high-level situation report for a region and topic: the result
// of a fresh scan plus a category/status histogram and a text rollup.
// Narrative is a best-effort LLM rendering of the same data and may be empty.
type Brief struct {
	Region      string                    `json:"region"`
	Topic       string                    `json:"topic"`
	ScanSummary ScanSummary               `json:"scan_summary"`
	Stats       map[string]map[string]int `json:"stats"`
	Summary     string                    `json:"summary"`
	Narrative   string                    `json:"narrative,omitempty"`
}
