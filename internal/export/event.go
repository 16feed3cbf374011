package export

import (
	"fmt"
	"slices"
	"time"

	"usage-report/pkg/cloudevent"
)

// Event types for export run callbacks
const (
	EventTypeRunStart     = "export.run.start"
	EventTypeJobSubmitted = "export.job.submitted"
	EventTypePoll         = "export.poll"
	EventTypeJobCompleted = "export.job.completed"
	EventTypeArtifact     = "export.artifact"
	EventTypeRunExit      = "export.run.exit"
)

// EventSource identifies this component as the CloudEvents producer.
const EventSource = "usage-report/export"

// FilteredEvents returns true if the event type should be sent based on the filter.
// If the filter is empty, all events are allowed.
func FilteredEvents(eventType string, filter []string) bool {
	if len(filter) == 0 {
		return true
	}
	return slices.Contains(filter, eventType)
}

// EventBuilder builds CloudEvents for export run lifecycle events.
// The run id is the event subject.
type EventBuilder struct {
	source  string
	subject string
}

// NewEventBuilder creates a new EventBuilder for one run.
func NewEventBuilder(runID string) *EventBuilder {
	return &EventBuilder{
		source:  EventSource,
		subject: runID,
	}
}

// Build creates a new CloudEvent with the given type and data.
func (b *EventBuilder) Build(eventType string, data map[string]any) *cloudevent.CloudEvent {
	eventID := fmt.Sprintf("%s-%d", b.subject, time.Now().UnixNano())
	return cloudevent.New(eventType, b.source, b.subject, eventID, data)
}

// BuildRunStartEvent creates a run start event.
func (b *EventBuilder) BuildRunStartEvent(req *Request) *cloudevent.CloudEvent {
	data := map[string]any{
		"runId":        b.subject,
		"orgId":        req.OrgID,
		"start":        req.Window.Start.Format(time.RFC3339),
		"end":          req.Window.End.Format(time.RFC3339),
		"sharedOrgIds": req.SharedOrgIDs,
	}
	return b.Build(EventTypeRunStart, data)
}

// BuildJobSubmittedEvent creates a job submitted event.
func (b *EventBuilder) BuildJobSubmittedEvent(jobID string) *cloudevent.CloudEvent {
	data := map[string]any{
		"runId": b.subject,
		"jobId": jobID,
	}
	return b.Build(EventTypeJobSubmitted, data)
}

// BuildPollEvent creates a poll attempt event.
func (b *EventBuilder) BuildPollEvent(jobID string, attempt int, state State) *cloudevent.CloudEvent {
	data := map[string]any{
		"runId":   b.subject,
		"jobId":   jobID,
		"attempt": attempt,
		"state":   string(state),
	}
	return b.Build(EventTypePoll, data)
}

// BuildJobCompletedEvent creates a job completed event.
func (b *EventBuilder) BuildJobCompletedEvent(jobID string, urlCount int) *cloudevent.CloudEvent {
	data := map[string]any{
		"runId":    b.subject,
		"jobId":    jobID,
		"urlCount": urlCount,
	}
	return b.Build(EventTypeJobCompleted, data)
}

// BuildArtifactEvent creates an artifact event.
func (b *EventBuilder) BuildArtifactEvent(sourceURL, path, status string, err error) *cloudevent.CloudEvent {
	data := map[string]any{
		"runId":     b.subject,
		"sourceUrl": sourceURL,
		"status":    status,
	}
	if path != "" {
		data["path"] = path
	}
	if err != nil {
		data["error"] = err.Error()
	}
	return b.Build(EventTypeArtifact, data)
}

// BuildRunExitEvent creates a run exit event.
func (b *EventBuilder) BuildRunExitEvent(jobID, outcome string, csvCount int, err error) *cloudevent.CloudEvent {
	data := map[string]any{
		"runId":    b.subject,
		"jobId":    jobID,
		"outcome":  outcome,
		"csvCount": csvCount,
	}
	if err != nil {
		data["error"] = err.Error()
	}
	return b.Build(EventTypeRunExit, data)
}
