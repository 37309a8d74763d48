package events_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/tracelet/tracelet/pkg/events"
)

var _ = Describe("Events", func() {
	It("tags each variant with its wire phase", func() {
		Expect(events.DurationBegin{}.Phase()).To(Equal(events.PhaseDurationBegin))
		Expect(events.DurationEnd{}.Phase()).To(Equal(events.PhaseDurationEnd))
		Expect(events.Complete{}.Phase()).To(Equal(events.PhaseComplete))
		Expect(events.Metadata{}.Phase()).To(Equal(events.PhaseMetadata))
		Expect(events.FlowBegin{}.Phase()).To(Equal(events.PhaseFlowBegin))
		Expect(events.FlowEnd{}.Phase()).To(Equal(events.PhaseFlowEnd))
		Expect(events.Instant{}.Phase()).To(Equal(events.PhaseInstant))
		Expect(events.Counter{}.Phase()).To(Equal(events.PhaseCounter))
		Expect(events.AsyncBegin{}.Phase()).To(Equal(events.PhaseAsyncBegin))
		Expect(events.AsyncInstant{}.Phase()).To(Equal(events.PhaseAsyncInstant))
		Expect(events.AsyncEnd{}.Phase()).To(Equal(events.PhaseAsyncEnd))
		Expect(events.FlowStep{}.Phase()).To(Equal(events.PhaseFlowStep))
		Expect(events.Sample{}.Phase()).To(Equal(events.PhaseSample))
		Expect(events.ObjectCreated{}.Phase()).To(Equal(events.PhaseObjectCreated))
		Expect(events.ObjectSnapshot{}.Phase()).To(Equal(events.PhaseObjectSnapshot))
		Expect(events.ObjectDeleted{}.Phase()).To(Equal(events.PhaseObjectDeleted))
		Expect(events.GlobalMemoryDump{}.Phase()).To(Equal(events.PhaseGlobalMemoryDump))
		Expect(events.ProcessMemoryDump{}.Phase()).To(Equal(events.PhaseProcessMemoryDump))
		Expect(events.Mark{}.Phase()).To(Equal(events.PhaseMark))
		Expect(events.ClockSync{}.Phase()).To(Equal(events.PhaseClockSync))
	})

	It("uses the single-character codes of the file format", func() {
		Expect(string(events.PhaseDurationBegin)).To(Equal("B"))
		Expect(string(events.PhaseDurationEnd)).To(Equal("E"))
		Expect(string(events.PhaseComplete)).To(Equal("X"))
		Expect(string(events.PhaseMetadata)).To(Equal("M"))
		Expect(string(events.PhaseFlowBegin)).To(Equal("s"))
		Expect(string(events.PhaseFlowEnd)).To(Equal("f"))
	})

	It("wraps a name into a metadata argument", func() {
		Expect(events.NewArgument("worker pool")).To(Equal(events.Argument{Name: "worker pool"}))
	})
})
