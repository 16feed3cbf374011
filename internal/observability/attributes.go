// Package observability provides metrics for the export pipeline.
package observability

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
)

// Run outcomes recorded on run metrics.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
)

// Attribute keys
const (
	attrOperation = "operation"
	attrStatus    = "status"
	attrState     = "state"
	attrOutcome   = "outcome"
)

func operationAttr(operation string) attribute.KeyValue {
	return attribute.String(attrOperation, operation)
}

func statusAttr(code int) attribute.KeyValue {
	// Group status codes to reduce cardinality
	// 200-299 -> 2xx, 400-499 -> 4xx, 500-599 -> 5xx
	// 0 (no response at all) -> transport
	if code == 0 {
		return attribute.String(attrStatus, "transport")
	}
	return attribute.String(attrStatus, fmt.Sprintf("%dxx", code/100))
}

func stateAttr(state string) attribute.KeyValue {
	return attribute.String(attrState, state)
}

func outcomeAttr(outcome string) attribute.KeyValue {
	return attribute.String(attrOutcome, outcome)
}
