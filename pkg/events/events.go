// events provides logical representations for trace events
package events

// Phase is the discriminator for identifying the type of an event in a Trace Event Format file
type Phase string

const (
	PhaseDurationBegin     Phase = "B"
	PhaseDurationEnd       Phase = "E"
	PhaseComplete          Phase = "X"
	PhaseInstant           Phase = "I"
	PhaseCounter           Phase = "C"
	PhaseAsyncBegin        Phase = "b"
	PhaseAsyncInstant      Phase = "n"
	PhaseAsyncEnd          Phase = "e"
	PhaseFlowBegin         Phase = "s"
	PhaseFlowStep          Phase = "t"
	PhaseFlowEnd           Phase = "f"
	PhaseSample            Phase = "P"
	PhaseObjectCreated     Phase = "N"
	PhaseObjectSnapshot    Phase = "O"
	PhaseObjectDeleted     Phase = "D"
	PhaseMetadata          Phase = "M"
	PhaseGlobalMemoryDump  Phase = "V"
	PhaseProcessMemoryDump Phase = "v"
	PhaseMark              Phase = "R"
	PhaseClockSync         Phase = "c"
)

// Event is implemented by every value that can appear in a trace log
type Event interface {
	// Phase indicates the discriminator for identifying what kind of event this is, primarily for (un)marshaling
	Phase() Phase
}

// Argument is the single named payload carried by Metadata events
type Argument struct {
	// Name is the value being conveyed, e.g. the human-readable name of a thread
	Name string `json:"name"`
}

// NewArgument builds an Argument carrying the given name
func NewArgument(name string) Argument {
	return Argument{Name: name}
}

// MetadataKind helps identify common well-known metadata values included in traces
type MetadataKind string

const (
	MetadataKindProcessName MetadataKind = "process_name"
	MetadataKindThreadName  MetadataKind = "thread_name"
)

// DurationBegin represents the start of work on a given thread
type DurationBegin struct {
	// Name to associate with this event, often used to convey the current function or task name
	Name string
	// ProcessID identifies the process that output this event
	ProcessID uint32
	// Timestamp is the event time in microseconds
	Timestamp uint64
	// ThreadID is an optional identifier for the thread that output this event
	ThreadID *uint64
}

func (DurationBegin) Phase() Phase { return PhaseDurationBegin }

// DurationEnd closes the most recent unclosed DurationBegin on the same thread,
// which is why it needs no name of its own
type DurationEnd struct {
	ProcessID uint32
	Timestamp uint64
	ThreadID  *uint64
}

func (DurationEnd) Phase() Phase { return PhaseDurationEnd }

// Complete represents the start and end of work on a given thread in a single
// event, primarily used to reduce the size of stored traces
type Complete struct {
	Name      string
	ProcessID uint32
	Timestamp uint64
	// Duration of the event in microseconds
	Duration uint64
	ThreadID *uint64
}

func (Complete) Phase() Phase { return PhaseComplete }

// Metadata associates extra information with the process or thread that output
// a trace, such as its human-readable name
type Metadata struct {
	// Name identifies which kind of metadata this is, see the MetadataKind constants
	Name      string
	ProcessID uint32
	// Args carries the metadata value itself
	Args     Argument
	ThreadID *uint64
}

func (Metadata) Phase() Phase { return PhaseMetadata }

// FlowBegin opens a flow: a link drawn between duration events, potentially
// across threads or processes
type FlowBegin struct {
	Name      string
	ProcessID uint32
	ThreadID  uint64
	Timestamp uint64
	// Category tags the flow for filtering in viewers
	Category string
	// ID correlates this event with the FlowEnd that closes the flow
	ID uint64
}

func (FlowBegin) Phase() Phase { return PhaseFlowBegin }

// FlowEnd closes the flow opened by the FlowBegin carrying the same ID
type FlowEnd struct {
	Name      string
	ProcessID uint32
	ThreadID  uint64
	Timestamp uint64
	Category  string
	ID        uint64
}

func (FlowEnd) Phase() Phase { return PhaseFlowEnd }

// The remaining phases of the format are recognised so that documents
// containing them still round-trip, but none of their fields are modelled yet.

// Instant corresponds to something that happens but has no duration associated with it
type Instant struct{}

func (Instant) Phase() Phase { return PhaseInstant }

// Counter is used to track one or more values as they change over time
type Counter struct{}

func (Counter) Phase() Phase { return PhaseCounter }

// AsyncBegin represents the start of an asynchronous operation
type AsyncBegin struct{}

func (AsyncBegin) Phase() Phase { return PhaseAsyncBegin }

// AsyncInstant represents an event with no duration occurring within an asynchronous operation
type AsyncInstant struct{}

func (AsyncInstant) Phase() Phase { return PhaseAsyncInstant }

// AsyncEnd represents the end of an asynchronous operation
type AsyncEnd struct{}

func (AsyncEnd) Phase() Phase { return PhaseAsyncEnd }

// FlowStep represents an intermediate point on a flow between its begin and end events
type FlowStep struct{}

func (FlowStep) Phase() Phase { return PhaseFlowStep }

// Sample events record sampling-profiler results
type Sample struct{}

func (Sample) Phase() Phase { return PhaseSample }

// ObjectCreated allows for tracking the creation of complex data structures in a trace
type ObjectCreated struct{}

func (ObjectCreated) Phase() Phase { return PhaseObjectCreated }

// ObjectSnapshot allows for tracking the current state of a complex data structure in a trace
type ObjectSnapshot struct{}

func (ObjectSnapshot) Phase() Phase { return PhaseObjectSnapshot }

// ObjectDeleted allows for tracking the deletion of complex data structures in a trace
type ObjectDeleted struct{}

func (ObjectDeleted) Phase() Phase { return PhaseObjectDeleted }

// GlobalMemoryDump events convey system memory information such as the size of RAM
type GlobalMemoryDump struct{}

func (GlobalMemoryDump) Phase() Phase { return PhaseGlobalMemoryDump }

// ProcessMemoryDump events convey information about a single process's memory usage
type ProcessMemoryDump struct{}

func (ProcessMemoryDump) Phase() Phase { return PhaseProcessMemoryDump }

// Mark events are for Chrome's "navigation timing API"
type Mark struct{}

func (Mark) Phase() Phase { return PhaseMark }

// ClockSync events are used to try and synchronise clock domains of multiple trace logs
type ClockSync struct{}

func (ClockSync) Phase() Phase { return PhaseClockSync }
