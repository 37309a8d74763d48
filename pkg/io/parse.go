package io

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/tracelet/tracelet/pkg/events"
)

var (
	ErrSyntaxError  = errors.New("file format contained a syntax error")
	ErrUnknownPhase = errors.New("unknown phase code")
)

// ParseJson reads a document in the JSON Object Format from r
func ParseJson(r io.Reader) (*Document, error) {
	var jsonFile jsonObjectFile
	decoder := json.NewDecoder(r)
	err := decoder.Decode(&jsonFile)
	if err != nil {
		return nil, fmt.Errorf("JSON decode error while parsing: %w", err)
	}
	if jsonFile.TraceEvents == nil {
		return nil, fmt.Errorf("expected a traceEvents field: %w", ErrSyntaxError)
	}

	result := &Document{}
	for _, e := range jsonFile.TraceEvents {
		event, err := parseJsonEvent(e)
		if err != nil {
			return nil, fmt.Errorf("error parsing event: %w", err)
		}
		result.traceEvents = append(result.traceEvents, event)
	}

	return result, nil
}

// ParseJsonArray reads events in the JSON Array Format from r
func ParseJsonArray(r io.Reader) (*Document, error) {
	decoder := json.NewDecoder(r)

	t, err := decoder.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to parse first token: %w", err)
	}
	if t != json.Delim('[') {
		return nil, fmt.Errorf("expected '[' at start of json array format: %w", ErrSyntaxError)
	}

	result := &Document{}
	for decoder.More() {
		var e json.RawMessage
		err = decoder.Decode(&e)
		if err != nil && errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error parsing JSON: %w", err)
		}

		event, err := parseJsonEvent(e)
		if err != nil {
			return nil, fmt.Errorf("error parsing event: %w", err)
		}

		result.traceEvents = append(result.traceEvents, event)
	}

	return result, nil
}

func parseJsonEvent(rawEvent json.RawMessage) (events.Event, error) {
	phase, err := decodeEventPhase(rawEvent)
	if err != nil {
		return nil, fmt.Errorf("error decoding json event: %w", err)
	}

	var event events.Event
	switch phase {
	case events.PhaseDurationBegin:
		var j jsonDurationBeginEvent
		if err := json.Unmarshal(rawEvent, &j); err != nil {
			return nil, fmt.Errorf("unable to decode duration begin event: %w", err)
		}
		e, err := stageDurationBegin(j).BuildDurationBegin()
		if err != nil {
			return nil, fmt.Errorf("invalid duration begin event: %w", err)
		}
		event = e

	case events.PhaseDurationEnd:
		var j jsonDurationEndEvent
		if err := json.Unmarshal(rawEvent, &j); err != nil {
			return nil, fmt.Errorf("unable to decode duration end event: %w", err)
		}
		e, err := stageDurationEnd(j).BuildDurationEnd()
		if err != nil {
			return nil, fmt.Errorf("invalid duration end event: %w", err)
		}
		event = e

	case events.PhaseComplete:
		var j jsonCompleteEvent
		if err := json.Unmarshal(rawEvent, &j); err != nil {
			return nil, fmt.Errorf("unable to decode complete event: %w", err)
		}
		e, err := stageComplete(j).BuildComplete()
		if err != nil {
			return nil, fmt.Errorf("invalid complete event: %w", err)
		}
		event = e

	case events.PhaseMetadata:
		var j jsonMetadataEvent
		if err := json.Unmarshal(rawEvent, &j); err != nil {
			return nil, fmt.Errorf("unable to decode metadata event: %w", err)
		}
		e, err := stageMetadata(j).BuildMetadata()
		if err != nil {
			return nil, fmt.Errorf("invalid metadata event: %w", err)
		}
		event = e

	case events.PhaseFlowBegin:
		var j jsonFlowEvent
		if err := json.Unmarshal(rawEvent, &j); err != nil {
			return nil, fmt.Errorf("unable to decode flow begin event: %w", err)
		}
		e, err := stageFlow(j).BuildFlowBegin()
		if err != nil {
			return nil, fmt.Errorf("invalid flow begin event: %w", err)
		}
		event = e

	case events.PhaseFlowEnd:
		var j jsonFlowEvent
		if err := json.Unmarshal(rawEvent, &j); err != nil {
			return nil, fmt.Errorf("unable to decode flow end event: %w", err)
		}
		e, err := stageFlow(j).BuildFlowEnd()
		if err != nil {
			return nil, fmt.Errorf("invalid flow end event: %w", err)
		}
		event = e

	case events.PhaseInstant:
		event = &events.Instant{}
	case events.PhaseCounter:
		event = &events.Counter{}
	case events.PhaseAsyncBegin:
		event = &events.AsyncBegin{}
	case events.PhaseAsyncInstant:
		event = &events.AsyncInstant{}
	case events.PhaseAsyncEnd:
		event = &events.AsyncEnd{}
	case events.PhaseFlowStep:
		event = &events.FlowStep{}
	case events.PhaseSample:
		event = &events.Sample{}
	case events.PhaseObjectCreated:
		event = &events.ObjectCreated{}
	case events.PhaseObjectSnapshot:
		event = &events.ObjectSnapshot{}
	case events.PhaseObjectDeleted:
		event = &events.ObjectDeleted{}
	case events.PhaseGlobalMemoryDump:
		event = &events.GlobalMemoryDump{}
	case events.PhaseProcessMemoryDump:
		event = &events.ProcessMemoryDump{}
	case events.PhaseMark:
		event = &events.Mark{}
	case events.PhaseClockSync:
		event = &events.ClockSync{}

	default:
		return nil, fmt.Errorf("'%v': %w", phase, ErrUnknownPhase)
	}

	return event, nil
}

// The stage helpers move whichever wire fields were present into a Builder, so
// that the builder's required-field rules decide what a malformed event is.

func stageDurationBegin(j jsonDurationBeginEvent) *events.Builder {
	b := events.NewBuilder()
	if j.Name != nil {
		b.Name(*j.Name)
	}
	if j.ProcessID != nil {
		b.ProcessID(*j.ProcessID)
	}
	if j.Timestamp != nil {
		b.Timestamp(*j.Timestamp)
	}
	if j.ThreadID != nil {
		b.ThreadID(*j.ThreadID)
	}
	return b
}

func stageDurationEnd(j jsonDurationEndEvent) *events.Builder {
	b := events.NewBuilder()
	if j.ProcessID != nil {
		b.ProcessID(*j.ProcessID)
	}
	if j.Timestamp != nil {
		b.Timestamp(*j.Timestamp)
	}
	if j.ThreadID != nil {
		b.ThreadID(*j.ThreadID)
	}
	return b
}

func stageComplete(j jsonCompleteEvent) *events.Builder {
	b := events.NewBuilder()
	if j.Name != nil {
		b.Name(*j.Name)
	}
	if j.ProcessID != nil {
		b.ProcessID(*j.ProcessID)
	}
	if j.Timestamp != nil {
		b.Timestamp(*j.Timestamp)
	}
	if j.Duration != nil {
		b.Duration(*j.Duration)
	}
	if j.ThreadID != nil {
		b.ThreadID(*j.ThreadID)
	}
	return b
}

func stageMetadata(j jsonMetadataEvent) *events.Builder {
	b := events.NewBuilder()
	if j.Name != nil {
		b.Name(*j.Name)
	}
	if j.ProcessID != nil {
		b.ProcessID(*j.ProcessID)
	}
	if j.Args != nil && j.Args.Name != nil {
		b.Argument(events.NewArgument(*j.Args.Name))
	}
	if j.ThreadID != nil {
		b.ThreadID(*j.ThreadID)
	}
	return b
}

func stageFlow(j jsonFlowEvent) *events.Builder {
	b := events.NewBuilder()
	if j.Name != nil {
		b.Name(*j.Name)
	}
	if j.ProcessID != nil {
		b.ProcessID(*j.ProcessID)
	}
	if j.ThreadID != nil {
		b.ThreadID(*j.ThreadID)
	}
	if j.Timestamp != nil {
		b.Timestamp(*j.Timestamp)
	}
	if j.Category != nil {
		b.Category(*j.Category)
	}
	if j.ID != nil {
		b.ID(*j.ID)
	}
	return b
}

func decodeEventPhase(j json.RawMessage) (events.Phase, error) {
	var jsonPhase jsonEventPhase
	err := json.Unmarshal(j, &jsonPhase)
	if err != nil {
		return "", fmt.Errorf("unable to decode phase from JSON event: %w", err)
	}
	return events.Phase(jsonPhase.Phase), nil
}
