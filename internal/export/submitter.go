package export

import (
	"context"
	"log/slog"
)

// Submitter validates export requests and creates remote jobs.
type Submitter struct {
	api    API
	logger *slog.Logger
}

// NewSubmitter creates a new Submitter.
func NewSubmitter(api API) *Submitter {
	return &Submitter{
		api:    api,
		logger: slog.With("component", "export-submitter"),
	}
}

// Submit normalizes and validates the request, then issues exactly one
// create call. Validation failures never reach the network, and a failed
// submission leaves no state behind.
func (s *Submitter) Submit(ctx context.Context, req *Request) (string, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return "", err
	}

	jobID, err := s.api.CreateUsageExportJob(ctx, req)
	if err != nil {
		return "", err
	}

	s.logger.Info("export job submitted",
		"jobId", jobID,
		"orgId", req.OrgID,
		"window", req.Window.DatePart(),
		"sharedOrgs", len(req.SharedOrgIDs))
	return jobID, nil
}
