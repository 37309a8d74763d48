package io

import (
	"encoding/json"

	"github.com/tracelet/tracelet/pkg/events"
)

// Document is an in-memory representation of the JSON Object Format variant of
// a Trace Event Format file: a single object wrapping the recorded events
type Document struct {
	traceEvents []events.Event
}

// NewDocument wraps an already-recorded log of events in a Document
func NewDocument(evs []events.Event) Document {
	return Document{traceEvents: evs}
}

// Append records the given trace event at the end of the document
func (d *Document) Append(e events.Event) {
	d.traceEvents = append(d.traceEvents, e)
}

// Events retrieves the events stored in the document
func (d Document) Events() []events.Event {
	return d.traceEvents
}

type jsonObjectFile struct {
	TraceEvents []json.RawMessage `json:"traceEvents"`
}

type jsonEventPhase struct {
	Phase string `json:"ph"`
}

// The wire structs below declare their fields in the exact order they must
// appear in the output. Required fields are pointers without omitempty so that
// parsing can tell an absent field from a zero one; only the optional thread
// ID may be omitted.

type jsonArgument struct {
	Name *string `json:"name"`
}

type jsonDurationBeginEvent struct {
	jsonEventPhase
	Name      *string `json:"name"`
	ProcessID *uint32 `json:"pid"`
	Timestamp *uint64 `json:"ts"`
	ThreadID  *uint64 `json:"tid,omitempty"`
}

type jsonDurationEndEvent struct {
	jsonEventPhase
	ProcessID *uint32 `json:"pid"`
	Timestamp *uint64 `json:"ts"`
	ThreadID  *uint64 `json:"tid,omitempty"`
}

type jsonCompleteEvent struct {
	jsonEventPhase
	Name      *string `json:"name"`
	ProcessID *uint32 `json:"pid"`
	Timestamp *uint64 `json:"ts"`
	Duration  *uint64 `json:"dur"`
	ThreadID  *uint64 `json:"tid,omitempty"`
}

type jsonMetadataEvent struct {
	jsonEventPhase
	Name      *string       `json:"name"`
	ProcessID *uint32       `json:"pid"`
	Args      *jsonArgument `json:"args"`
	ThreadID  *uint64       `json:"tid,omitempty"`
}

type jsonFlowEvent struct {
	jsonEventPhase
	Name      *string `json:"name"`
	ProcessID *uint32 `json:"pid"`
	ThreadID  *uint64 `json:"tid"`
	Timestamp *uint64 `json:"ts"`
	Category  *string `json:"cat"`
	ID        *uint64 `json:"id"`
}
