package events

import (
	"errors"
	"fmt"
)

var (
	// ErrBuilderSpent is returned when finalizing a Builder that has already been finalized once
	ErrBuilderSpent = errors.New("event builder has already been consumed")
)

// Kind identifies which event type a Builder is staging fields for
type Kind uint8

const (
	KindUnknown Kind = iota
	KindDurationBegin
	KindDurationEnd
	KindComplete
	KindMetadata
	KindFlowBegin
	KindFlowEnd
)

func (k Kind) String() string {
	switch k {
	case KindDurationBegin:
		return "DurationBegin"
	case KindDurationEnd:
		return "DurationEnd"
	case KindComplete:
		return "Complete"
	case KindMetadata:
		return "Metadata"
	case KindFlowBegin:
		return "FlowBegin"
	case KindFlowEnd:
		return "FlowEnd"
	default:
		return "Unknown"
	}
}

// MissingFieldError reports the first required field found unset while finalizing a Builder
type MissingFieldError struct {
	// Kind is the event kind that was being finalized, KindUnknown when no kind was staged
	Kind Kind
	// Field is the conventional name of the missing field
	Field string
}

func (e *MissingFieldError) Error() string {
	if e.Kind == KindUnknown {
		return fmt.Sprintf("event builder: required field %q was never set", e.Field)
	}
	return fmt.Sprintf("event builder: %s requires field %q to be set", e.Kind, e.Field)
}

// Builder stages fields for a single event and checks, when finalized, that
// every field the target kind requires was provided. A Builder is consumed by
// its first finalize call whether that call succeeds or fails.
type Builder struct {
	kind      Kind
	name      *string
	category  *string
	id        *uint64
	processID *uint32
	timestamp *uint64
	threadID  *uint64
	duration  *uint64
	argument  *Argument
	spent     bool
}

// NewBuilder returns a Builder with no fields staged
func NewBuilder() *Builder {
	return &Builder{}
}

// Kind stages the event kind that Build will dispatch on
func (b *Builder) Kind(kind Kind) *Builder {
	b.kind = kind
	return b
}

// Name stages the event name
func (b *Builder) Name(name string) *Builder {
	b.name = &name
	return b
}

// Category stages the category tag used by flow events
func (b *Builder) Category(category string) *Builder {
	b.category = &category
	return b
}

// ID stages the correlation ID used by flow events
func (b *Builder) ID(id uint64) *Builder {
	b.id = &id
	return b
}

// ProcessID stages the ID of the process the event is attributed to
func (b *Builder) ProcessID(pid uint32) *Builder {
	b.processID = &pid
	return b
}

// Timestamp stages the event time in microseconds
func (b *Builder) Timestamp(ts uint64) *Builder {
	b.timestamp = &ts
	return b
}

// ThreadID stages the ID of the thread the event is attributed to
func (b *Builder) ThreadID(tid uint64) *Builder {
	b.threadID = &tid
	return b
}

// Duration stages the event duration in microseconds
func (b *Builder) Duration(duration uint64) *Builder {
	b.duration = &duration
	return b
}

// Argument stages the metadata payload
func (b *Builder) Argument(argument Argument) *Builder {
	b.argument = &argument
	return b
}

func (b *Builder) consume() error {
	if b.spent {
		return ErrBuilderSpent
	}
	b.spent = true
	return nil
}

// require unwraps a staged field, reporting which field was missing otherwise
func require[T any](kind Kind, field string, staged *T) (T, error) {
	if staged == nil {
		var zero T
		return zero, &MissingFieldError{Kind: kind, Field: field}
	}
	return *staged, nil
}

// BuildDurationBegin finalizes the builder into a DurationBegin event
func (b *Builder) BuildDurationBegin() (*DurationBegin, error) {
	if err := b.consume(); err != nil {
		return nil, err
	}
	name, err := require(KindDurationBegin, "name", b.name)
	if err != nil {
		return nil, err
	}
	pid, err := require(KindDurationBegin, "process_id", b.processID)
	if err != nil {
		return nil, err
	}
	ts, err := require(KindDurationBegin, "timestamp", b.timestamp)
	if err != nil {
		return nil, err
	}
	return &DurationBegin{
		Name:      name,
		ProcessID: pid,
		Timestamp: ts,
		ThreadID:  b.threadID,
	}, nil
}

// BuildDurationEnd finalizes the builder into a DurationEnd event
func (b *Builder) BuildDurationEnd() (*DurationEnd, error) {
	if err := b.consume(); err != nil {
		return nil, err
	}
	pid, err := require(KindDurationEnd, "process_id", b.processID)
	if err != nil {
		return nil, err
	}
	ts, err := require(KindDurationEnd, "timestamp", b.timestamp)
	if err != nil {
		return nil, err
	}
	return &DurationEnd{
		ProcessID: pid,
		Timestamp: ts,
		ThreadID:  b.threadID,
	}, nil
}

// BuildComplete finalizes the builder into a Complete event
func (b *Builder) BuildComplete() (*Complete, error) {
	if err := b.consume(); err != nil {
		return nil, err
	}
	name, err := require(KindComplete, "name", b.name)
	if err != nil {
		return nil, err
	}
	pid, err := require(KindComplete, "process_id", b.processID)
	if err != nil {
		return nil, err
	}
	ts, err := require(KindComplete, "timestamp", b.timestamp)
	if err != nil {
		return nil, err
	}
	duration, err := require(KindComplete, "duration", b.duration)
	if err != nil {
		return nil, err
	}
	return &Complete{
		Name:      name,
		ProcessID: pid,
		Timestamp: ts,
		Duration:  duration,
		ThreadID:  b.threadID,
	}, nil
}

// BuildMetadata finalizes the builder into a Metadata event
func (b *Builder) BuildMetadata() (*Metadata, error) {
	if err := b.consume(); err != nil {
		return nil, err
	}
	name, err := require(KindMetadata, "name", b.name)
	if err != nil {
		return nil, err
	}
	pid, err := require(KindMetadata, "process_id", b.processID)
	if err != nil {
		return nil, err
	}
	argument, err := require(KindMetadata, "argument", b.argument)
	if err != nil {
		return nil, err
	}
	return &Metadata{
		Name:      name,
		ProcessID: pid,
		Args:      argument,
		ThreadID:  b.threadID,
	}, nil
}

// BuildFlowBegin finalizes the builder into a FlowBegin event
func (b *Builder) BuildFlowBegin() (*FlowBegin, error) {
	if err := b.consume(); err != nil {
		return nil, err
	}
	return b.buildFlow(KindFlowBegin)
}

// BuildFlowEnd finalizes the builder into a FlowEnd event
func (b *Builder) BuildFlowEnd() (*FlowEnd, error) {
	if err := b.consume(); err != nil {
		return nil, err
	}
	flow, err := b.buildFlow(KindFlowEnd)
	if err != nil {
		return nil, err
	}
	return (*FlowEnd)(flow), nil
}

// buildFlow gathers the fields shared by both flow event kinds
func (b *Builder) buildFlow(kind Kind) (*FlowBegin, error) {
	name, err := require(kind, "name", b.name)
	if err != nil {
		return nil, err
	}
	pid, err := require(kind, "process_id", b.processID)
	if err != nil {
		return nil, err
	}
	tid, err := require(kind, "thread_id", b.threadID)
	if err != nil {
		return nil, err
	}
	ts, err := require(kind, "timestamp", b.timestamp)
	if err != nil {
		return nil, err
	}
	category, err := require(kind, "category", b.category)
	if err != nil {
		return nil, err
	}
	id, err := require(kind, "id", b.id)
	if err != nil {
		return nil, err
	}
	return &FlowBegin{
		Name:      name,
		ProcessID: pid,
		ThreadID:  tid,
		Timestamp: ts,
		Category:  category,
		ID:        id,
	}, nil
}

// Build finalizes the builder into whichever event kind was staged with Kind
func (b *Builder) Build() (Event, error) {
	switch b.kind {
	case KindDurationBegin:
		e, err := b.BuildDurationBegin()
		if err != nil {
			return nil, err
		}
		return e, nil
	case KindDurationEnd:
		e, err := b.BuildDurationEnd()
		if err != nil {
			return nil, err
		}
		return e, nil
	case KindComplete:
		e, err := b.BuildComplete()
		if err != nil {
			return nil, err
		}
		return e, nil
	case KindMetadata:
		e, err := b.BuildMetadata()
		if err != nil {
			return nil, err
		}
		return e, nil
	case KindFlowBegin:
		e, err := b.BuildFlowBegin()
		if err != nil {
			return nil, err
		}
		return e, nil
	case KindFlowEnd:
		e, err := b.BuildFlowEnd()
		if err != nil {
			return nil, err
		}
		return e, nil
	default:
		if err := b.consume(); err != nil {
			return nil, err
		}
		return nil, &MissingFieldError{Field: "phase"}
	}
}
