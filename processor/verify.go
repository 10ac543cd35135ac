package processor

import (
	"context"
	"time"

	"go-disasterscout/types"
)

// verifyThreshold is the evidence bar: at least this many independent
// reports before an incident may be marked VERIFIED.
const verifyThreshold = 2

// IncidentVerifier is what verification needs from the store.
type IncidentVerifier interface {
	FindIncidentByID(ctx context.Context, id string) (*types.Incident, error)
	MarkVerified(ctx context.Context, id string, now time.Time) error
}

// Verify applies the verification rule: report_count >= 2 flips the incident
// to VERIFIED and stamps last_verified_at, anything less leaves the record
// completely untouched. This is the only path that ever sets VERIFIED.
// Returns db.ErrInvalidID / db.ErrNotFound unwrapped for the caller to map.
func Verify(ctx context.Context, store IncidentVerifier, id string) (*types.VerifyResult, error) {
	incident, err := store.FindIncidentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &types.VerifyResult{
		IncidentID:  id,
		Status:      incident.Status,
		ReportCount: incident.ReportCount,
	}

	if incident.ReportCount < verifyThreshold {
		result.Reason = "not enough evidence (report_count < 2); status unchanged"
		return result, nil
	}

	if err := store.MarkVerified(ctx, id, time.Now().UTC()); err != nil {
		return nil, err
	}

	result.Status = types.Verified
	result.Reason = "auto-verified based on multiple reports (report_count >= 2)"
	return result, nil
}
