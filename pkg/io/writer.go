package io

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/tracelet/tracelet/pkg/events"
)

// WriteJson writes the document to w in the JSON Object Format
func WriteJson(w io.Writer, d Document) error {
	jsonFile := jsonObjectFile{
		TraceEvents: make([]json.RawMessage, 0, len(d.Events())),
	}

	for _, event := range d.Events() {
		msg, err := marshalJsonEvent(event)
		if err != nil {
			return err
		}
		jsonFile.TraceEvents = append(jsonFile.TraceEvents, msg)
	}

	encoder := json.NewEncoder(w)
	if err := encoder.Encode(&jsonFile); err != nil {
		return fmt.Errorf("failed to write JSON object file: %w", err)
	}

	return nil
}

// WriteJsonArray writes the events to w in the JSON Array Format, which has no
// wrapping object
func WriteJsonArray(w io.Writer, evs []events.Event) error {
	jsonEvents := make([]json.RawMessage, 0, len(evs))
	for _, event := range evs {
		msg, err := marshalJsonEvent(event)
		if err != nil {
			return err
		}
		jsonEvents = append(jsonEvents, msg)
	}

	encoder := json.NewEncoder(w)
	if err := encoder.Encode(jsonEvents); err != nil {
		return fmt.Errorf("failed to write JSON array file: %w", err)
	}

	return nil
}

func marshalJsonEvent(event events.Event) (json.RawMessage, error) {
	jsonEvent, err := writeJsonEvent(event)
	if err != nil {
		return nil, fmt.Errorf("failed while preparing json event: %w", err)
	}

	msg, err := json.Marshal(jsonEvent)
	if err != nil {
		return nil, fmt.Errorf("failed to serialise json event: %w", err)
	}

	return msg, nil
}

func writeJsonEvent(event events.Event) (interface{}, error) {
	phase := jsonEventPhase{Phase: string(event.Phase())}

	switch e := event.(type) {
	case *events.DurationBegin:
		return jsonDurationBeginEvent{
			jsonEventPhase: phase,
			Name:           &e.Name,
			ProcessID:      &e.ProcessID,
			Timestamp:      &e.Timestamp,
			ThreadID:       e.ThreadID,
		}, nil

	case *events.DurationEnd:
		return jsonDurationEndEvent{
			jsonEventPhase: phase,
			ProcessID:      &e.ProcessID,
			Timestamp:      &e.Timestamp,
			ThreadID:       e.ThreadID,
		}, nil

	case *events.Complete:
		return jsonCompleteEvent{
			jsonEventPhase: phase,
			Name:           &e.Name,
			ProcessID:      &e.ProcessID,
			Timestamp:      &e.Timestamp,
			Duration:       &e.Duration,
			ThreadID:       e.ThreadID,
		}, nil

	case *events.Metadata:
		return jsonMetadataEvent{
			jsonEventPhase: phase,
			Name:           &e.Name,
			ProcessID:      &e.ProcessID,
			Args:           &jsonArgument{Name: &e.Args.Name},
			ThreadID:       e.ThreadID,
		}, nil

	case *events.FlowBegin:
		return jsonFlowEvent{
			jsonEventPhase: phase,
			Name:           &e.Name,
			ProcessID:      &e.ProcessID,
			ThreadID:       &e.ThreadID,
			Timestamp:      &e.Timestamp,
			Category:       &e.Category,
			ID:             &e.ID,
		}, nil

	case *events.FlowEnd:
		return jsonFlowEvent{
			jsonEventPhase: phase,
			Name:           &e.Name,
			ProcessID:      &e.ProcessID,
			ThreadID:       &e.ThreadID,
			Timestamp:      &e.Timestamp,
			Category:       &e.Category,
			ID:             &e.ID,
		}, nil

	case *events.Instant, *events.Counter, *events.AsyncBegin, *events.AsyncInstant,
		*events.AsyncEnd, *events.FlowStep, *events.Sample, *events.ObjectCreated,
		*events.ObjectSnapshot, *events.ObjectDeleted, *events.GlobalMemoryDump,
		*events.ProcessMemoryDump, *events.Mark, *events.ClockSync:
		return phase, nil
	}

	return nil, fmt.Errorf("unknown phase encountered: '%v'", event.Phase())
}
