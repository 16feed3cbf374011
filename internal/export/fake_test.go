package export

import (
	"context"
	"time"
)

// statusReply scripts one GetUsageExportJob response.
type statusReply struct {
	status *JobStatus
	err    error
}

// fakeAPI scripts responses for submit and status calls. Status replies
// are consumed in order; the last one repeats.
type fakeAPI struct {
	createJobID string
	createErr   error
	createCalls int
	lastRequest *Request

	statuses    []statusReply
	statusCalls int
}

func (f *fakeAPI) CreateUsageExportJob(ctx context.Context, req *Request) (string, error) {
	f.createCalls++
	f.lastRequest = req
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.createJobID, nil
}

func (f *fakeAPI) GetUsageExportJob(ctx context.Context, orgID, jobID string) (*JobStatus, error) {
	i := f.statusCalls
	f.statusCalls++
	if i >= len(f.statuses) {
		i = len(f.statuses) - 1
	}
	reply := f.statuses[i]
	return reply.status, reply.err
}

func processing() statusReply {
	return statusReply{status: &JobStatus{State: StateProcessing, Raw: []byte(`{"state":"processing"}`)}}
}

func completed(urls ...string) statusReply {
	return statusReply{status: &JobStatus{State: StateCompleted, DownloadURLs: urls, Raw: []byte(`{"state":"completed"}`)}}
}

func terminal(state State, raw string) statusReply {
	return statusReply{status: &JobStatus{State: state, Raw: []byte(raw)}}
}

func statusError(err error) statusReply {
	return statusReply{err: err}
}

// noSleep is an injected sleep that never waits.
func noSleep(ctx context.Context, d time.Duration) error { return nil }

func validWindow() TimeRange {
	return TimeRange{
		Start: time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC),
	}
}
