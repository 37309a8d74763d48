package profiler

import (
	"sync"

	"github.com/tracelet/tracelet/pkg/events"
)

// SyncProfiler guards a Profiler with a mutex so goroutines can share one
// log directly. Forking per worker is usually cheaper; this wrapper suits
// callsites that cannot thread a fork through.
type SyncProfiler struct {
	mu    sync.RWMutex
	inner *Profiler
}

func NewSync(options ...Option) *SyncProfiler {
	return &SyncProfiler{
		inner: New(options...),
	}
}

// Fork hands out an unsynchronized Profiler sharing this one's clock,
// identity sources and flow id counter.
func (s *SyncProfiler) Fork() *Profiler {
	return s.inner.Fork()
}

// CurrentTimestamp reports elapsed microseconds on the profiler's clock.
func (s *SyncProfiler) CurrentTimestamp() uint64 {
	return s.inner.CurrentTimestamp()
}

func (s *SyncProfiler) BeginDuration(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inner.BeginDuration(name)
}

func (s *SyncProfiler) EndDuration() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inner.EndDuration()
}

func (s *SyncProfiler) CompleteDuration(name string, begin, end uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inner.CompleteDuration(name, begin, end)
}

func (s *SyncProfiler) CurrentThreadName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inner.CurrentThreadName(name)
}

func (s *SyncProfiler) CurrentProcessName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inner.CurrentProcessName(name)
}

func (s *SyncProfiler) BeginFlow(name, category string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.BeginFlow(name, category)
}

func (s *SyncProfiler) EndFlow(name, category string, id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inner.EndFlow(name, category, id)
}

func (s *SyncProfiler) Push(e events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inner.Push(e)
}

func (s *SyncProfiler) Extend(evs []events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inner.Extend(evs)
}

func (s *SyncProfiler) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inner.Clear()
}

// Events returns a snapshot copy of the log, safe to hold while other
// goroutines keep recording.
func (s *SyncProfiler) Events() []events.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]events.Event, len(s.inner.log))
	copy(snapshot, s.inner.log)
	return snapshot
}
