package main

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/tracelet/tracelet/pkg/events"
	"github.com/tracelet/tracelet/pkg/spool"
)

var _ = Describe("readCapture", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "tracelet-inspect")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(os.RemoveAll(dir)).To(Succeed())
	})

	writeCapture := func(name, contents string) string {
		path := filepath.Join(dir, name)
		Expect(os.WriteFile(path, []byte(contents), 0o644)).To(Succeed())
		return path
	}

	When("the file holds a JSON object document", func() {
		It("parses it", func() {
			path := writeCapture("trace.json", `{"traceEvents":[{"ph":"B","name":"task A","pid":1,"ts":10}]}`)

			log, err := readCapture(path)

			Expect(err).NotTo(HaveOccurred())
			Expect(log).To(Equal([]events.Event{
				&events.DurationBegin{Name: "task A", ProcessID: 1, Timestamp: 10},
			}))
		})
	})

	When("the file holds a bare JSON array", func() {
		It("parses it, even behind leading whitespace", func() {
			path := writeCapture("trace.json", "\n  [{\"ph\":\"E\",\"pid\":1,\"ts\":20}]")

			log, err := readCapture(path)

			Expect(err).NotTo(HaveOccurred())
			Expect(log).To(Equal([]events.Event{
				&events.DurationEnd{ProcessID: 1, Timestamp: 20},
			}))
		})
	})

	When("the file is a spool segment", func() {
		It("decodes it by extension", func() {
			recorded := []events.Event{
				&events.Complete{Name: "crunch", ProcessID: 1, Timestamp: 10, Duration: 50},
			}
			path := filepath.Join(dir, "worker-0.mp")
			Expect(spool.WriteSegment(path, recorded)).To(Succeed())

			log, err := readCapture(path)

			Expect(err).NotTo(HaveOccurred())
			Expect(log).To(Equal(recorded))
		})
	})

	When("the file does not exist", func() {
		It("returns an error", func() {
			_, err := readCapture(filepath.Join(dir, "missing.json"))

			Expect(err).To(HaveOccurred())
		})
	})

	When("the file is empty", func() {
		It("returns an error", func() {
			path := writeCapture("empty.json", "")

			_, err := readCapture(path)

			Expect(err).To(MatchError(ContainSubstring("failed to read capture")))
		})
	})
})
