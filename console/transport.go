package console

import (
	"fmt"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// Transport is the duplex byte stream between the engine and the device
// console. Read must honor the timeout set by SetReadTimeout and return
// n == 0 with a nil error once it elapses with no data, which is how
// go.bug.st/serial ports behave.
type Transport interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	SetReadTimeout(d time.Duration) error
}

// SerialTransport drives a physical console cable.
type SerialTransport struct {
	port serial.Port
	name string
}

func OpenSerial(name string, settings *serial.Mode) (*SerialTransport, error) {
	port, err := serial.Open(name, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", name, err)
	}
	return &SerialTransport{port: port, name: name}, nil
}

func (t *SerialTransport) Read(p []byte) (int, error) {
	return t.port.Read(p)
}

func (t *SerialTransport) Write(p []byte) (int, error) {
	return t.port.Write(p)
}

func (t *SerialTransport) SetReadTimeout(d time.Duration) error {
	return t.port.SetReadTimeout(d)
}

func (t *SerialTransport) Close() error {
	return t.port.Close()
}

func (t *SerialTransport) Name() string {
	return t.name
}

// ListPorts enumerates serial ports with USB details where available.
func ListPorts() ([]*enumerator.PortDetails, error) {
	return enumerator.GetDetailedPortsList()
}

// FormatCommand terminates a command the way the console expects it typed.
func FormatCommand(cmd string) []byte {
	return []byte(cmd + "\n")
}
