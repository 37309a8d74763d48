package io_test

import (
	"errors"
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/tracelet/tracelet/pkg/events"
	traceio "github.com/tracelet/tracelet/pkg/io"
)

var _ = Describe("ParseJson", func() {
	var testFileContents string
	var data *traceio.Document
	var err error

	JustBeforeEach(func() {
		r := strings.NewReader(testFileContents)
		data, err = traceio.ParseJson(r)
	})

	When("there are no trace events", func() {
		BeforeEach(func() {
			testFileContents = `
				{
					"traceEvents": []
				}
			`
		})

		It("parses an empty document", func() {
			Expect(err).To(Succeed())
			Expect(data.Events()).To(BeEmpty())
		})
	})

	When("the traceEvents field is missing", func() {
		BeforeEach(func() {
			testFileContents = `{}`
		})

		It("reports a syntax error", func() {
			Expect(errors.Is(err, traceio.ErrSyntaxError)).To(BeTrue())
		})
	})

	When("the document is not valid JSON", func() {
		BeforeEach(func() {
			testFileContents = `{`
		})

		It("reports an error", func() {
			Expect(err).To(HaveOccurred())
		})
	})

	When("a duration begin event is present", func() {
		BeforeEach(func() {
			testFileContents = `
				{
					"traceEvents": [
						{"ph": "B", "name": "Task A", "pid": 0, "ts": 10}
					]
				}
			`
		})

		It("parses the event", func() {
			Expect(err).To(Succeed())
			Expect(data.Events()).To(HaveLen(1))
			Expect(data.Events()[0]).To(Equal(&events.DurationBegin{
				Name:      "Task A",
				ProcessID: 0,
				Timestamp: 10,
			}))
		})
	})

	When("a duration begin event carries a thread id", func() {
		BeforeEach(func() {
			testFileContents = `
				{
					"traceEvents": [
						{"ph": "B", "name": "Task A", "pid": 0, "ts": 10, "tid": 3}
					]
				}
			`
		})

		It("retains the thread id", func() {
			Expect(err).To(Succeed())
			Expect(data.Events()).To(HaveLen(1))
			Expect(data.Events()[0]).To(Equal(&events.DurationBegin{
				Name:      "Task A",
				ProcessID: 0,
				Timestamp: 10,
				ThreadID:  threadID(3),
			}))
		})
	})

	When("a complete event is present", func() {
		BeforeEach(func() {
			testFileContents = `
				{
					"traceEvents": [
						{"ph": "X", "name": "task A", "pid": 0, "ts": 10, "dur": 50}
					]
				}
			`
		})

		It("parses the event", func() {
			Expect(err).To(Succeed())
			Expect(data.Events()).To(HaveLen(1))
			Expect(data.Events()[0]).To(Equal(&events.Complete{
				Name:      "task A",
				ProcessID: 0,
				Timestamp: 10,
				Duration:  50,
			}))
		})
	})

	When("a metadata event is present", func() {
		BeforeEach(func() {
			testFileContents = `
				{
					"traceEvents": [
						{"ph": "M", "name": "process_name", "pid": 0, "args": {"name": "demo"}}
					]
				}
			`
		})

		It("parses the event", func() {
			Expect(err).To(Succeed())
			Expect(data.Events()).To(HaveLen(1))
			Expect(data.Events()[0]).To(Equal(&events.Metadata{
				Name:      string(events.MetadataKindProcessName),
				ProcessID: 0,
				Args:      events.NewArgument("demo"),
			}))
		})
	})

	When("a flow begin event is present", func() {
		BeforeEach(func() {
			testFileContents = `
				{
					"traceEvents": [
						{"ph": "s", "name": "Spawn", "pid": 0, "tid": 7, "ts": 12, "cat": "task_flow", "id": 4}
					]
				}
			`
		})

		It("parses the event", func() {
			Expect(err).To(Succeed())
			Expect(data.Events()).To(HaveLen(1))
			Expect(data.Events()[0]).To(Equal(&events.FlowBegin{
				Name:      "Spawn",
				ProcessID: 0,
				ThreadID:  7,
				Timestamp: 12,
				Category:  "task_flow",
				ID:        4,
			}))
		})
	})

	When("an event carries keys this library does not model", func() {
		BeforeEach(func() {
			testFileContents = `
				{
					"traceEvents": [
						{"ph": "B", "name": "Task A", "pid": 0, "ts": 10, "cname": "good"}
					]
				}
			`
		})

		It("ignores the extra keys", func() {
			Expect(err).To(Succeed())
			Expect(data.Events()).To(HaveLen(1))
		})
	})

	When("an event is missing a required field", func() {
		BeforeEach(func() {
			testFileContents = `
				{
					"traceEvents": [
						{"ph": "B", "pid": 0, "ts": 10}
					]
				}
			`
		})

		It("reports which field was missing", func() {
			var missing *events.MissingFieldError
			Expect(errors.As(err, &missing)).To(BeTrue())
			Expect(missing.Kind).To(Equal(events.KindDurationBegin))
			Expect(missing.Field).To(Equal("name"))
		})
	})

	When("a complete event is missing its duration", func() {
		BeforeEach(func() {
			testFileContents = `
				{
					"traceEvents": [
						{"ph": "X", "name": "task A", "pid": 0, "ts": 10}
					]
				}
			`
		})

		It("reports which field was missing", func() {
			var missing *events.MissingFieldError
			Expect(errors.As(err, &missing)).To(BeTrue())
			Expect(missing.Kind).To(Equal(events.KindComplete))
			Expect(missing.Field).To(Equal("duration"))
		})
	})

	When("an event has an unknown phase", func() {
		BeforeEach(func() {
			testFileContents = `
				{
					"traceEvents": [
						{"ph": "?"}
					]
				}
			`
		})

		It("reports the unknown phase", func() {
			Expect(errors.Is(err, traceio.ErrUnknownPhase)).To(BeTrue())
		})
	})

	When("an event has no phase at all", func() {
		BeforeEach(func() {
			testFileContents = `
				{
					"traceEvents": [
						{"name": "Task A"}
					]
				}
			`
		})

		It("reports the unknown phase", func() {
			Expect(errors.Is(err, traceio.ErrUnknownPhase)).To(BeTrue())
		})
	})
})

var _ = Describe("ParseJsonArray", func() {
	var testFileContents string
	var data *traceio.Document
	var err error

	JustBeforeEach(func() {
		r := strings.NewReader(testFileContents)
		data, err = traceio.ParseJsonArray(r)
	})

	When("there is a well formed but empty array", func() {
		BeforeEach(func() {
			testFileContents = `
				[]
			`
		})

		It("parses an empty document", func() {
			Expect(err).To(Succeed())
			Expect(data.Events()).To(BeEmpty())
		})
	})

	When("there is a well formed array with 1 entry", func() {
		BeforeEach(func() {
			testFileContents = `
				[{
					"ph": "B",
					"name": "namesies",
					"pid": 0,
					"ts": 0
				}]
			`
		})

		It("successfully parses an entry", func() {
			Expect(err).To(Succeed())
			Expect(data.Events()).To(HaveLen(1))
			Expect(data.Events()[0].Phase()).To(Equal(events.PhaseDurationBegin))
		})
	})

	When("there is a well formed array with 2 entries", func() {
		BeforeEach(func() {
			testFileContents = `
				[{
					"ph": "B",
					"name": "namesies1",
					"pid": 0,
					"ts": 0
				},{
					"ph": "B",
					"name": "namesies2",
					"pid": 0,
					"ts": 10
				}]
			`
		})

		It("successfully parses two entries", func() {
			Expect(err).To(Succeed())
			Expect(data.Events()).To(HaveLen(2))
			Expect(data.Events()[0]).To(Equal(&events.DurationBegin{Name: "namesies1", ProcessID: 0, Timestamp: 0}))
			Expect(data.Events()[1]).To(Equal(&events.DurationBegin{Name: "namesies2", ProcessID: 0, Timestamp: 10}))
		})
	})

	When("there is an incomplete array with 2 entries and a trailing comma", func() {
		BeforeEach(func() {
			testFileContents = `
				[{
					"ph": "B",
					"name": "namesies1",
					"pid": 0,
					"ts": 0
				},{
					"ph": "B",
					"name": "namesies2",
					"pid": 0,
					"ts": 10
				},
			`
		})

		It("successfully parses two entries", func() {
			Expect(err).To(Succeed())
			Expect(data.Events()).To(HaveLen(2))
		})
	})

	When("there is an incomplete array with 2 entries and no trailing comma", func() {
		BeforeEach(func() {
			testFileContents = `
				[{
					"ph": "B",
					"name": "namesies1",
					"pid": 0,
					"ts": 0
				},{
					"ph": "B",
					"name": "namesies2",
					"pid": 0,
					"ts": 10
				}
			`
		})

		It("successfully parses two entries", func() {
			Expect(err).To(Succeed())
			Expect(data.Events()).To(HaveLen(2))
		})
	})

	When("the input does not begin with an array", func() {
		BeforeEach(func() {
			testFileContents = `
				{
					"traceEvents": []
				}
			`
		})

		It("reports a syntax error", func() {
			Expect(errors.Is(err, traceio.ErrSyntaxError)).To(BeTrue())
		})
	})
})

var _ = Describe("Round trips", func() {
	It("preserves fully populated events", func() {
		evs := []events.Event{
			&events.DurationBegin{Name: "A", ProcessID: 1, Timestamp: 2, ThreadID: threadID(3)},
			&events.DurationEnd{ProcessID: 1, Timestamp: 4, ThreadID: threadID(3)},
			&events.Complete{Name: "B", ProcessID: 1, Timestamp: 5, Duration: 6, ThreadID: threadID(3)},
			&events.Metadata{Name: "process_name", ProcessID: 1, Args: events.NewArgument("demo"), ThreadID: threadID(3)},
			&events.FlowBegin{Name: "C", ProcessID: 1, ThreadID: 3, Timestamp: 7, Category: "flows", ID: 8},
			&events.FlowEnd{Name: "C", ProcessID: 1, ThreadID: 3, Timestamp: 9, Category: "flows", ID: 8},
		}

		var writer strings.Builder
		Expect(traceio.WriteJson(&writer, traceio.NewDocument(evs))).To(Succeed())

		parsed, err := traceio.ParseJson(strings.NewReader(writer.String()))
		Expect(err).To(Succeed())
		Expect(parsed.Events()).To(Equal(evs))
	})

	It("preserves every placeholder phase", func() {
		evs := []events.Event{
			&events.Instant{},
			&events.Counter{},
			&events.AsyncBegin{},
			&events.AsyncInstant{},
			&events.AsyncEnd{},
			&events.FlowStep{},
			&events.Sample{},
			&events.ObjectCreated{},
			&events.ObjectSnapshot{},
			&events.ObjectDeleted{},
			&events.GlobalMemoryDump{},
			&events.ProcessMemoryDump{},
			&events.Mark{},
			&events.ClockSync{},
		}

		var writer strings.Builder
		Expect(traceio.WriteJson(&writer, traceio.NewDocument(evs))).To(Succeed())

		parsed, err := traceio.ParseJson(strings.NewReader(writer.String()))
		Expect(err).To(Succeed())
		Expect(parsed.Events()).To(Equal(evs))
	})

	It("re-encodes a parsed document byte for byte", func() {
		contents := `{"traceEvents":[{"ph":"X","name":"task A","pid":0,"ts":10,"dur":50}]}`

		parsed, err := traceio.ParseJson(strings.NewReader(contents))
		Expect(err).To(Succeed())

		var writer strings.Builder
		Expect(traceio.WriteJson(&writer, *parsed)).To(Succeed())
		Expect(strings.TrimSpace(writer.String())).To(Equal(contents))
	})
})
