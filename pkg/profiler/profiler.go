// profiler records trace events against a monotonic capture clock.
package profiler

import (
	"bytes"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"fortio.org/safecast"

	"github.com/tracelet/tracelet/pkg/events"
)

type Option = func(p *Profiler)

// TimestampFn reports elapsed microseconds since the capture began.
type TimestampFn = func() uint64

type ProcessIDFn = func() uint32

type ThreadIDFn = func() uint64

func WithTimestampFn(f TimestampFn) Option {
	return func(p *Profiler) {
		p.timestampFn = f
	}
}

func WithProcessIDFn(f ProcessIDFn) Option {
	return func(p *Profiler) {
		p.processIDFn = f
	}
}

func WithThreadIDFn(f ThreadIDFn) Option {
	return func(p *Profiler) {
		p.threadIDFn = f
	}
}

// Profiler accumulates trace events in an append-only log. It does no
// locking of its own: confine an instance to a single goroutine, hand a
// Fork to each worker, or wrap it in a SyncProfiler.
type Profiler struct {
	log         []events.Event
	flowIDs     *uint64
	timestampFn TimestampFn
	processIDFn ProcessIDFn
	threadIDFn  ThreadIDFn
}

// New creates a Profiler whose clock is anchored at the moment of the
// call, stamping events with the current process id and goroutine id
// unless options replace those sources.
func New(options ...Option) *Profiler {
	p := &Profiler{
		flowIDs:     new(uint64),
		timestampFn: anchoredTimestampFn(time.Now()),
		processIDFn: currentProcessID,
		threadIDFn:  currentThreadID,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Fork returns a Profiler with an empty log that shares this one's clock,
// identity sources and flow id counter, so flow ids minted on either side
// stay distinct. Worker logs are merged back with Extend.
func (p *Profiler) Fork() *Profiler {
	return &Profiler{
		flowIDs:     p.flowIDs,
		timestampFn: p.timestampFn,
		processIDFn: p.processIDFn,
		threadIDFn:  p.threadIDFn,
	}
}

// CurrentTimestamp reports elapsed microseconds on the profiler's clock.
func (p *Profiler) CurrentTimestamp() uint64 {
	return (p.timestampFn)()
}

// BeginDuration opens a duration slice named name at the current moment.
func (p *Profiler) BeginDuration(name string) {
	e, err := events.NewBuilder().
		Name(name).
		ProcessID((p.processIDFn)()).
		Timestamp((p.timestampFn)()).
		ThreadID((p.threadIDFn)()).
		BuildDurationBegin()
	mustBuild(err)
	p.log = append(p.log, e)
}

// EndDuration closes the most recently opened duration slice.
func (p *Profiler) EndDuration() {
	e, err := events.NewBuilder().
		ProcessID((p.processIDFn)()).
		Timestamp((p.timestampFn)()).
		ThreadID((p.threadIDFn)()).
		BuildDurationEnd()
	mustBuild(err)
	p.log = append(p.log, e)
}

// CompleteDuration records one complete event spanning begin to end. A
// reversed pair clamps to zero duration rather than wrapping.
func (p *Profiler) CompleteDuration(name string, begin, end uint64) {
	dur := uint64(0)
	if end > begin {
		dur = end - begin
	}
	e, err := events.NewBuilder().
		Name(name).
		ProcessID((p.processIDFn)()).
		Timestamp(begin).
		Duration(dur).
		ThreadID((p.threadIDFn)()).
		BuildComplete()
	mustBuild(err)
	p.log = append(p.log, e)
}

// CurrentThreadName labels the calling thread in the trace viewer.
func (p *Profiler) CurrentThreadName(name string) {
	p.metadata(events.MetadataKindThreadName, name)
}

// CurrentProcessName labels the process in the trace viewer.
func (p *Profiler) CurrentProcessName(name string) {
	p.metadata(events.MetadataKindProcessName, name)
}

func (p *Profiler) metadata(kind events.MetadataKind, name string) {
	e, err := events.NewBuilder().
		Name(string(kind)).
		ProcessID((p.processIDFn)()).
		ThreadID((p.threadIDFn)()).
		Argument(events.NewArgument(name)).
		BuildMetadata()
	mustBuild(err)
	p.log = append(p.log, e)
}

// BeginFlow opens a flow arrow from this point, bracketed by a tiny
// "Begin" duration slice so viewers have something to pin the arrow to.
// The returned id pairs the arrow with a later EndFlow; ids are minted
// from a counter shared across every Fork of this profiler.
func (p *Profiler) BeginFlow(name, category string) uint64 {
	id := atomic.AddUint64(p.flowIDs, 1) - 1
	pid := (p.processIDFn)()
	tid := (p.threadIDFn)()

	p.log = append(p.log, flowBracketBegin("Begin", pid, tid, (p.timestampFn)()))

	ts := (p.timestampFn)()
	flow, err := events.NewBuilder().
		Name(name).
		Category(category).
		ID(id).
		ProcessID(pid).
		ThreadID(tid).
		Timestamp(ts).
		BuildFlowBegin()
	mustBuild(err)
	p.log = append(p.log, flow, flowBracketEnd(pid, tid, ts))

	return id
}

// EndFlow closes the flow arrow opened by the BeginFlow call that minted
// id, bracketed by an "End" duration slice. Nothing checks that such a
// call happened; unmatched arrows are left for Validate to find.
func (p *Profiler) EndFlow(name, category string, id uint64) {
	pid := (p.processIDFn)()
	tid := (p.threadIDFn)()

	ts := (p.timestampFn)()
	flow, err := events.NewBuilder().
		Name(name).
		Category(category).
		ID(id).
		ProcessID(pid).
		ThreadID(tid).
		Timestamp(ts).
		BuildFlowEnd()
	mustBuild(err)
	p.log = append(p.log, flow, flowBracketBegin("End", pid, tid, ts), flowBracketEnd(pid, tid, (p.timestampFn)()))
}

// Push appends an already built event to the log.
func (p *Profiler) Push(e events.Event) {
	p.log = append(p.log, e)
}

// Extend appends a batch of events, typically a forked profiler's log.
func (p *Profiler) Extend(evs []events.Event) {
	p.log = append(p.log, evs...)
}

// Clear discards every recorded event.
func (p *Profiler) Clear() {
	p.log = nil
}

// Events exposes the log itself, not a copy.
func (p *Profiler) Events() []events.Event {
	return p.log
}

// Recorder is the slice of a profiler that BeginAndEndDuration needs,
// satisfied by both Profiler and SyncProfiler.
type Recorder interface {
	CurrentTimestamp() uint64
	CompleteDuration(name string, begin, end uint64)
}

// BeginAndEndDuration times computation and records it as a single
// complete event, returning whatever the computation returned. If the
// computation panics nothing is recorded.
func BeginAndEndDuration[R any](rec Recorder, name string, computation func() R) R {
	begin := rec.CurrentTimestamp()
	result := computation()
	rec.CompleteDuration(name, begin, rec.CurrentTimestamp())
	return result
}

func mustBuild(err error) {
	if err != nil {
		panic(fmt.Sprintf("profiler constructed an invalid event: %v", err))
	}
}

func flowBracketBegin(name string, pid uint32, tid, ts uint64) events.Event {
	e, err := events.NewBuilder().
		Name(name).
		ProcessID(pid).
		Timestamp(ts).
		ThreadID(tid).
		BuildDurationBegin()
	mustBuild(err)
	return e
}

func flowBracketEnd(pid uint32, tid, ts uint64) events.Event {
	e, err := events.NewBuilder().
		ProcessID(pid).
		Timestamp(ts).
		ThreadID(tid).
		BuildDurationEnd()
	mustBuild(err)
	return e
}

func anchoredTimestampFn(anchor time.Time) TimestampFn {
	return func() uint64 {
		us, err := safecast.Conv[uint64](time.Since(anchor).Microseconds())
		if err != nil {
			return 0
		}
		return us
	}
}

func currentProcessID() uint32 {
	pid, err := safecast.Conv[uint32](os.Getpid())
	if err != nil {
		return 0
	}
	return pid
}

// currentThreadID extracts the goroutine id from runtime.Stack, the
// closest stand-in Go offers for a thread id.
func currentThreadID() uint64 {
	buf := make([]byte, 64)
	n := runtime.Stack(buf, false)
	buf = buf[:n]

	// Stack format: "goroutine 123 [running]:\n..."
	const prefix = "goroutine "
	if !bytes.HasPrefix(buf, []byte(prefix)) {
		return 0
	}

	buf = buf[len(prefix):]
	end := bytes.IndexByte(buf, ' ')
	if end < 0 {
		return 0
	}

	gid, err := strconv.ParseUint(string(buf[:end]), 10, 64)
	if err != nil {
		return 0
	}
	return gid
}
