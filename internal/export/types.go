// Package export drives a usage export job through its lifecycle:
// submit, poll until terminal, download and unpack the artifacts.
package export

import (
	"encoding/json"
	"time"

	"usage-report/internal/apperrors"
)

// State represents the lifecycle state of a remote export job.
type State string

const (
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
	StateUnknown    State = "unknown"
)

// ParseState maps a remote state string onto the known vocabulary.
// Anything unrecognized is StateUnknown, which callers treat as terminal.
func ParseState(s string) State {
	switch State(s) {
	case StateProcessing, StateCompleted, StateFailed:
		return State(s)
	default:
		return StateUnknown
	}
}

// Terminal reports whether the state ends the poll cycle.
func (s State) Terminal() bool {
	return s != StateProcessing
}

// TimeRange is the half-open report window [Start, End).
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Validate checks that both boundaries are set and ordered.
func (t TimeRange) Validate() error {
	if t.Start.IsZero() {
		return apperrors.Validation("start", "window start is required")
	}
	if t.End.IsZero() {
		return apperrors.Validation("end", "window end is required")
	}
	if !t.Start.Before(t.End) {
		return apperrors.Validation("start", "window start must be before end")
	}
	return nil
}

// DatePart renders the window as YYYY-MM-DD_YYYY-MM-DD for filenames.
func (t TimeRange) DatePart() string {
	return t.Start.Format("2006-01-02") + "_" + t.End.Format("2006-01-02")
}

// Request describes one usage export job submission.
type Request struct {
	OrgID        string    `json:"orgId"`
	Window       TimeRange `json:"window"`
	SharedOrgIDs []string  `json:"sharedOrgIds"`
}

// Normalize drops empty shared-org entries and defaults the list to the
// owning org when the caller supplied none.
func (r *Request) Normalize() {
	ids := make([]string, 0, len(r.SharedOrgIDs))
	for _, id := range r.SharedOrgIDs {
		if id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 && r.OrgID != "" {
		ids = []string{r.OrgID}
	}
	r.SharedOrgIDs = ids
}

// Validate checks the request is submittable. Call Normalize first.
func (r *Request) Validate() error {
	if r.OrgID == "" {
		return apperrors.Validation("orgId", "organization id is required")
	}
	if err := r.Window.Validate(); err != nil {
		return err
	}
	if len(r.SharedOrgIDs) == 0 {
		return apperrors.Validation("sharedOrgIds", "at least one organization id is required")
	}
	return nil
}

// JobStatus is one observation of a remote export job.
type JobStatus struct {
	State        State    `json:"state"`
	DownloadURLs []string `json:"downloadUrls"`

	// Raw is the undecoded status response, kept as a diagnostic payload
	// for terminal failures.
	Raw json.RawMessage `json:"-"`
}

// Org is one organization record from the shared-plan listing.
type Org struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	VCSType string `json:"vcs_type"`
}
