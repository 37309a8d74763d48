// spool persists per-worker trace logs as compact binary segments, so
// separate processes can capture independently and merge afterwards.
package spool

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/tracelet/tracelet/pkg/events"
	tio "github.com/tracelet/tracelet/pkg/io"
)

// Bump when the record layout changes so stale segments are rejected.
const schemaVersion uint16 = 1

var ErrSchema = errors.New("unsupported segment schema")

// record flattens one event for serialisation. Tid and Arg stay pointers
// so absent and zero survive the trip, same as the JSON codec.
type record struct {
	Phase    string
	Name     string
	Category string
	ID       uint64
	Pid      uint32
	Ts       uint64
	Dur      uint64
	Tid      *uint64
	Arg      *string
}

type payload struct {
	Schema  uint16
	Records []record
}

// WriteSegment writes log to path as a msgpack segment, replacing any
// previous file atomically.
func WriteSegment(path string, log []events.Event) error {
	records := make([]record, 0, len(log))
	for _, e := range log {
		records = append(records, toRecord(e))
	}

	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp segment: %w", err)
	}
	defer os.Remove(f.Name())

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(&payload{Schema: schemaVersion, Records: records}); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode segment: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close temp segment: %w", err)
	}

	return os.Rename(f.Name(), path)
}

// ReadSegment loads a segment written by WriteSegment, rebuilding each
// record through the event builder so malformed segments fail the same
// way malformed JSON documents do.
func ReadSegment(path string) ([]events.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open segment: %w", err)
	}
	defer f.Close()

	var p payload
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode segment: %w", err)
	}
	if p.Schema != schemaVersion {
		return nil, fmt.Errorf("segment schema %d, want %d: %w", p.Schema, schemaVersion, ErrSchema)
	}

	log := make([]events.Event, 0, len(p.Records))
	for i, rec := range p.Records {
		e, err := fromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("error in record %d: %w", i, err)
		}
		log = append(log, e)
	}

	return log, nil
}

func toRecord(e events.Event) record {
	switch ev := e.(type) {
	case *events.DurationBegin:
		return record{Phase: string(ev.Phase()), Name: ev.Name, Pid: ev.ProcessID, Ts: ev.Timestamp, Tid: ev.ThreadID}
	case *events.DurationEnd:
		return record{Phase: string(ev.Phase()), Pid: ev.ProcessID, Ts: ev.Timestamp, Tid: ev.ThreadID}
	case *events.Complete:
		return record{Phase: string(ev.Phase()), Name: ev.Name, Pid: ev.ProcessID, Ts: ev.Timestamp, Dur: ev.Duration, Tid: ev.ThreadID}
	case *events.Metadata:
		arg := ev.Args.Name
		return record{Phase: string(ev.Phase()), Name: ev.Name, Pid: ev.ProcessID, Tid: ev.ThreadID, Arg: &arg}
	case *events.FlowBegin:
		tid := ev.ThreadID
		return record{Phase: string(ev.Phase()), Name: ev.Name, Category: ev.Category, ID: ev.ID, Pid: ev.ProcessID, Ts: ev.Timestamp, Tid: &tid}
	case *events.FlowEnd:
		tid := ev.ThreadID
		return record{Phase: string(ev.Phase()), Name: ev.Name, Category: ev.Category, ID: ev.ID, Pid: ev.ProcessID, Ts: ev.Timestamp, Tid: &tid}
	default:
		return record{Phase: string(e.Phase())}
	}
}

func fromRecord(rec record) (events.Event, error) {
	phase := events.Phase(rec.Phase)
	switch phase {
	case events.PhaseDurationBegin:
		b := events.NewBuilder().
			Name(rec.Name).
			ProcessID(rec.Pid).
			Timestamp(rec.Ts)
		if rec.Tid != nil {
			b.ThreadID(*rec.Tid)
		}
		e, err := b.BuildDurationBegin()
		if err != nil {
			return nil, err
		}
		return e, nil

	case events.PhaseDurationEnd:
		b := events.NewBuilder().
			ProcessID(rec.Pid).
			Timestamp(rec.Ts)
		if rec.Tid != nil {
			b.ThreadID(*rec.Tid)
		}
		e, err := b.BuildDurationEnd()
		if err != nil {
			return nil, err
		}
		return e, nil

	case events.PhaseComplete:
		b := events.NewBuilder().
			Name(rec.Name).
			ProcessID(rec.Pid).
			Timestamp(rec.Ts).
			Duration(rec.Dur)
		if rec.Tid != nil {
			b.ThreadID(*rec.Tid)
		}
		e, err := b.BuildComplete()
		if err != nil {
			return nil, err
		}
		return e, nil

	case events.PhaseMetadata:
		b := events.NewBuilder().
			Name(rec.Name).
			ProcessID(rec.Pid)
		if rec.Tid != nil {
			b.ThreadID(*rec.Tid)
		}
		if rec.Arg != nil {
			b.Argument(events.NewArgument(*rec.Arg))
		}
		e, err := b.BuildMetadata()
		if err != nil {
			return nil, err
		}
		return e, nil

	case events.PhaseFlowBegin, events.PhaseFlowEnd:
		kind := events.KindFlowBegin
		if phase == events.PhaseFlowEnd {
			kind = events.KindFlowEnd
		}
		b := events.NewBuilder().
			Kind(kind).
			Name(rec.Name).
			Category(rec.Category).
			ID(rec.ID).
			ProcessID(rec.Pid).
			Timestamp(rec.Ts)
		if rec.Tid != nil {
			b.ThreadID(*rec.Tid)
		}
		e, err := b.Build()
		if err != nil {
			return nil, err
		}
		return e, nil

	case events.PhaseInstant:
		return &events.Instant{}, nil
	case events.PhaseCounter:
		return &events.Counter{}, nil
	case events.PhaseAsyncBegin:
		return &events.AsyncBegin{}, nil
	case events.PhaseAsyncInstant:
		return &events.AsyncInstant{}, nil
	case events.PhaseAsyncEnd:
		return &events.AsyncEnd{}, nil
	case events.PhaseFlowStep:
		return &events.FlowStep{}, nil
	case events.PhaseSample:
		return &events.Sample{}, nil
	case events.PhaseObjectCreated:
		return &events.ObjectCreated{}, nil
	case events.PhaseObjectSnapshot:
		return &events.ObjectSnapshot{}, nil
	case events.PhaseObjectDeleted:
		return &events.ObjectDeleted{}, nil
	case events.PhaseGlobalMemoryDump:
		return &events.GlobalMemoryDump{}, nil
	case events.PhaseProcessMemoryDump:
		return &events.ProcessMemoryDump{}, nil
	case events.PhaseMark:
		return &events.Mark{}, nil
	case events.PhaseClockSync:
		return &events.ClockSync{}, nil

	default:
		return nil, fmt.Errorf("'%v': %w", phase, tio.ErrUnknownPhase)
	}
}
