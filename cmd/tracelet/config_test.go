package main

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Capture configuration", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "tracelet-config")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(os.RemoveAll(dir)).To(Succeed())
	})

	writeConfig := func(at, contents string) string {
		path := filepath.Join(at, configFileName)
		Expect(os.WriteFile(path, []byte(contents), 0o644)).To(Succeed())
		return path
	}

	Describe("findTraceletToml", func() {
		When("the file sits in the start directory", func() {
			It("finds it", func() {
				expected := writeConfig(dir, "[capture]\n")

				path, found, err := findTraceletToml(dir)

				Expect(err).NotTo(HaveOccurred())
				Expect(found).To(BeTrue())
				Expect(path).To(Equal(expected))
			})
		})

		When("the file sits in an ancestor directory", func() {
			It("walks up to it", func() {
				expected := writeConfig(dir, "[capture]\n")
				nested := filepath.Join(dir, "a", "b")
				Expect(os.MkdirAll(nested, 0o755)).To(Succeed())

				path, found, err := findTraceletToml(nested)

				Expect(err).NotTo(HaveOccurred())
				Expect(found).To(BeTrue())
				Expect(path).To(Equal(expected))
			})
		})

		When("no file exists anywhere on the path", func() {
			It("reports not found without an error", func() {
				_, found, err := findTraceletToml(dir)

				Expect(err).NotTo(HaveOccurred())
				Expect(found).To(BeFalse())
			})
		})
	})

	Describe("loadCaptureConfig", func() {
		When("the file sets every key", func() {
			It("returns the values and marks them defined", func() {
				path := writeConfig(dir, `
[capture]
process_name = "renderer"
workers = 5
output = "captures/frame.json"
`)

				cfg, meta, err := loadCaptureConfig(path)

				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Capture.ProcessName).To(Equal("renderer"))
				Expect(cfg.Capture.Workers).To(Equal(5))
				Expect(cfg.Capture.Output).To(Equal("captures/frame.json"))
				Expect(meta.IsDefined("capture", "workers")).To(BeTrue())
			})
		})

		When("the file sets only some keys", func() {
			It("leaves the rest undefined", func() {
				path := writeConfig(dir, "[capture]\nworkers = 2\n")

				cfg, meta, err := loadCaptureConfig(path)

				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Capture.Workers).To(Equal(2))
				Expect(meta.IsDefined("capture", "workers")).To(BeTrue())
				Expect(meta.IsDefined("capture", "process_name")).To(BeFalse())
				Expect(meta.IsDefined("capture", "output")).To(BeFalse())
			})
		})

		When("the [capture] section is missing", func() {
			It("rejects the file", func() {
				path := writeConfig(dir, "[other]\nworkers = 2\n")

				_, _, err := loadCaptureConfig(path)

				Expect(err).To(MatchError(ContainSubstring("missing [capture] section")))
			})
		})

		When("workers is zero", func() {
			It("rejects the file", func() {
				path := writeConfig(dir, "[capture]\nworkers = 0\n")

				_, _, err := loadCaptureConfig(path)

				Expect(err).To(MatchError(ContainSubstring("workers must be at least 1")))
			})
		})

		When("process_name is blank", func() {
			It("rejects the file", func() {
				path := writeConfig(dir, "[capture]\nprocess_name = \"  \"\n")

				_, _, err := loadCaptureConfig(path)

				Expect(err).To(MatchError(ContainSubstring("process_name must not be blank")))
			})
		})

		When("the file is not valid TOML", func() {
			It("rejects the file", func() {
				path := writeConfig(dir, "[capture\nworkers = 2\n")

				_, _, err := loadCaptureConfig(path)

				Expect(err).To(MatchError(ContainSubstring("failed to parse TOML")))
			})
		})
	})
})
