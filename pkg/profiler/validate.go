package profiler

import (
	"errors"
	"fmt"

	"github.com/tracelet/tracelet/pkg/events"
)

var ErrUnbalanced = errors.New("unbalanced trace log")

type track struct {
	pid uint32
	tid uint64
}

func durationTrack(pid uint32, tid *uint64) track {
	t := track{pid: pid}
	if tid != nil {
		t.tid = *tid
	}
	return t
}

// Validate applies the stricter pairing rules the recording operations
// deliberately skip: duration begins and ends must balance on each
// process/thread track, and flow arrows must pair up by id. Run it over a
// finished capture when the guarantees matter; the log itself stays
// permissive.
func Validate(log []events.Event) error {
	depths := map[track]int{}
	flowBegins := map[uint64]int{}
	flowEnds := map[uint64]int{}

	for i, e := range log {
		switch ev := e.(type) {
		case *events.DurationBegin:
			depths[durationTrack(ev.ProcessID, ev.ThreadID)]++
		case *events.DurationEnd:
			key := durationTrack(ev.ProcessID, ev.ThreadID)
			if depths[key] == 0 {
				return fmt.Errorf("event %d closes a duration that was never opened: %w", i, ErrUnbalanced)
			}
			depths[key]--
		case *events.FlowBegin:
			flowBegins[ev.ID]++
			if flowBegins[ev.ID] > 1 {
				return fmt.Errorf("event %d reuses flow id %d: %w", i, ev.ID, ErrUnbalanced)
			}
		case *events.FlowEnd:
			flowEnds[ev.ID]++
			if flowEnds[ev.ID] > 1 {
				return fmt.Errorf("event %d ends flow id %d twice: %w", i, ev.ID, ErrUnbalanced)
			}
		}
	}

	for key, depth := range depths {
		if depth != 0 {
			return fmt.Errorf("thread %d of process %d leaves %d durations open: %w", key.tid, key.pid, depth, ErrUnbalanced)
		}
	}
	for id := range flowEnds {
		if flowBegins[id] == 0 {
			return fmt.Errorf("flow id %d ends but never begins: %w", id, ErrUnbalanced)
		}
	}
	for id := range flowBegins {
		if flowEnds[id] == 0 {
			return fmt.Errorf("flow id %d begins but never ends: %w", id, ErrUnbalanced)
		}
	}

	return nil
}
