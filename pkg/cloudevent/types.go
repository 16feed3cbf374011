// Package cloudevent provides CloudEvents 1.0 types and HTTP delivery.
package cloudevent

import "time"

// CloudEvent is the JSON shape of a CloudEvents 1.0 event.
type CloudEvent struct {
	SpecVersion     string         `json:"specversion"`
	Type            string         `json:"type"`
	Source          string         `json:"source"`
	Subject         string         `json:"subject"`
	ID              string         `json:"id"`
	Time            time.Time      `json:"time"`
	DataContentType string         `json:"datacontenttype"`
	Data            map[string]any `json:"data"`
}

// New creates an event stamped with the current UTC time. The spec
// version and content type are fixed; everything else is the caller's.
func New(eventType, source, subject, id string, data map[string]any) *CloudEvent {
	e := &CloudEvent{
		SpecVersion:     "1.0",
		DataContentType: "application/json",
		Time:            time.Now().UTC(),
	}
	e.Type = eventType
	e.Source = source
	e.Subject = subject
	e.ID = id
	e.Data = data
	return e
}
