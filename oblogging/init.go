package oblogging

import (
	"fmt"
	"io"
	"os"

	"github.com/op/go-logging"
)

var Format = logging.MustStringFormatter(`%{time:15:04:05.000} %{shortfunc} ▶ %{level} %{id:03x} %{message}`)
var Instances []Instance

type Oblogging struct {
	DebugCount int
	InfoCount  int
	WarnCount  int
	ErrorCount int
	FatalCount int
	Backends   []Backend
	MemBuffers []MemBuffer
	logger     *logging.Logger
	name       string
}

type Backend struct {
	backend logging.LeveledBackend
	name    string
}

type MemBuffer struct {
	Buff *logging.MemoryBackend
	Name string
}

type Instance struct {
	Name     string
	Instance *Oblogging
}

func New(name string) *Oblogging {
	l := &Oblogging{name: name}

	logger := logging.MustGetLogger(name)
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	backendFormatter := logging.NewBackendFormatter(backend, Format)
	leveledBackend := logging.AddModuleLevel(backendFormatter)
	logger.SetBackend(leveledBackend)

	// Retain the backend so later targets can be layered on top of it
	l.Backends = append(l.Backends, Backend{
		backend: leveledBackend,
		name:    "Standard Error",
	})

	l.logger = logger
	Instances = append(Instances, Instance{
		Name:     name,
		Instance: l,
	})

	return l
}

// NewFileTarget mirrors all log output into the named file.
func (l *Oblogging) NewFileTarget(name string, path string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	l.addBackend(name, logging.NewLogBackend(f, "", 0))
	return nil
}

// NewWriterTarget mirrors all log output into an arbitrary writer.
func (l *Oblogging) NewWriterTarget(name string, w io.Writer) {
	l.addBackend(name, logging.NewLogBackend(w, "", 0))
}

// NewMemoryTarget keeps the last size records in memory. The buffer is
// retrievable by name, which is how the web UI shows per-job output.
func (l *Oblogging) NewMemoryTarget(name string, size int) {
	buff := MemBuffer{
		Name: name,
		Buff: logging.NewMemoryBackend(size),
	}
	l.MemBuffers = append(l.MemBuffers, buff)
	l.addBackend(name, buff.Buff)
}

func (l *Oblogging) addBackend(name string, b logging.Backend) {
	backendFormatter := logging.NewBackendFormatter(b, Format)
	leveledBackend := logging.AddModuleLevel(backendFormatter)

	l.Backends = append(l.Backends, Backend{
		backend: leveledBackend,
		name:    name,
	})

	backends := make([]logging.Backend, 0, len(l.Backends))
	for _, backend := range l.Backends {
		backends = append(backends, backend.backend)
	}
	l.logger.SetBackend(logging.MultiLogger(backends...))
}

func (l *Oblogging) GetMemLogContents(name string) (MemBuffer, error) {
	for _, backend := range l.MemBuffers {
		if backend.Name == name {
			return backend, nil
		}
	}

	return MemBuffer{}, fmt.Errorf("could not find mem log for %s", name)
}

func GetLogger(name string) *Oblogging {
	for _, instance := range Instances {
		if instance.Name == name {
			return instance.Instance
		}
	}

	return nil
}

func (l *Oblogging) GetLoggerName() string {
	return l.name
}

func (l *Oblogging) SetLogLevel(level logging.Level) {
	backends := make([]logging.Backend, 0, len(l.Backends))
	for _, backend := range l.Backends {
		backend.backend.SetLevel(level, "")
		backends = append(backends, backend.backend)
	}

	l.logger.SetBackend(logging.MultiLogger(backends...))
}
