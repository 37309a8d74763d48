// capture ties a profiler to the destination for its finished log.
package capture

import (
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"

	"github.com/tracelet/tracelet/pkg/events"
	tio "github.com/tracelet/tracelet/pkg/io"
	"github.com/tracelet/tracelet/pkg/profiler"
)

type Option = func(s *Session)

type ErrorHandler = func(err error)

func WithLogger(logger logr.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

func WithErrorHandler(handler ErrorHandler) Option {
	return func(s *Session) {
		s.errHandler = handler
	}
}

// WithProfiler substitutes a preconfigured profiler for the default one.
func WithProfiler(p *profiler.Profiler) Option {
	return func(s *Session) {
		s.profiler = p
	}
}

// Session records through a Profiler and writes the finished log to a
// sink when ended.
type Session struct {
	sink       io.WriteCloser
	profiler   *profiler.Profiler
	logger     logr.Logger
	errHandler ErrorHandler
}

func NewSession(sink io.WriteCloser, options ...Option) *Session {
	s := &Session{
		sink:     sink,
		profiler: profiler.New(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// SessionToFile creates path and records into it; End writes the
// document and closes the file.
func SessionToFile(path string, options ...Option) (*Session, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return NewSession(f, options...), nil
}

func (s *Session) Profiler() *profiler.Profiler {
	return s.profiler
}

// End writes the recorded log to the sink and closes it. Failures run
// through the configured logger and error handler before the wrapped
// error is returned.
func (s *Session) End() error {
	if err := tio.WriteJson(s.sink, tio.NewDocument(s.profiler.Events())); err != nil {
		_ = s.sink.Close()
		return s.handleError("failed to write trace document", err)
	}
	if err := s.sink.Close(); err != nil {
		return s.handleError("error closing trace sink", err)
	}
	return nil
}

func (s *Session) handleError(context string, err error) error {
	if s.logger != nil {
		s.logger.Error(err, context)
	}
	err = fmt.Errorf("%s: %w", context, err)
	if s.errHandler != nil {
		(s.errHandler)(err)
	}
	return err
}

// SaveFile writes log to path as a JSON object document.
func SaveFile(path string, log []events.Event) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := tio.WriteJson(f, tio.NewDocument(log)); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write trace document: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}

	return nil
}
