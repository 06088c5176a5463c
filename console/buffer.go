package console

import "strings"

// DefaultMaxHistory caps retained completed lines. Long sessions keep
// emitting syslog chatter; only the recent output matters for prompt
// matching, so older lines are dropped.
const DefaultMaxHistory = 512

// LineAccumulator buffers raw console reads into completed lines plus a
// tail of bytes not yet terminated by a newline. Prompts like "Router#"
// never get a trailing newline, so the tail is what most matching runs
// against. The tail survives history trimming.
type LineAccumulator struct {
	history    []string
	tail       []byte
	maxHistory int
}

func NewLineAccumulator(maxHistory int) *LineAccumulator {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &LineAccumulator{maxHistory: maxHistory}
}

// Feed appends raw bytes and returns the lines completed by this chunk.
// NUL bytes are stripped; console cables produce them during device
// resets and they otherwise corrupt string matching.
func (a *LineAccumulator) Feed(p []byte) []string {
	completed := make([]string, 0)
	for _, b := range p {
		switch b {
		case 0x00:
			// skip
		case '\n':
			line := strings.TrimRight(string(a.tail), "\r")
			a.tail = a.tail[:0]
			completed = append(completed, line)
			a.history = append(a.history, line)
		default:
			a.tail = append(a.tail, b)
		}
	}
	if len(a.history) > a.maxHistory {
		a.history = a.history[len(a.history)-a.maxHistory:]
	}
	return completed
}

// Tail returns the current unterminated output.
func (a *LineAccumulator) Tail() string {
	return strings.TrimRight(string(a.tail), "\r")
}

// Lines returns the retained completed lines, oldest first.
func (a *LineAccumulator) Lines() []string {
	return a.history
}

// LastLine returns the most recent completed line, or "" if none.
func (a *LineAccumulator) LastLine() string {
	if len(a.history) == 0 {
		return ""
	}
	return a.history[len(a.history)-1]
}
