package export

import "context"

// API is the remote usage-export surface. The remote system owns job
// state; implementations only transport and decode.
type API interface {
	// CreateUsageExportJob submits a new export job and returns its id.
	CreateUsageExportJob(ctx context.Context, req *Request) (string, error)

	// GetUsageExportJob fetches the current status of a submitted job.
	GetUsageExportJob(ctx context.Context, orgID, jobID string) (*JobStatus, error)
}
