package sequencer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"main/console"
	"main/oblogging"
	"main/profile"
)

var (
	ErrCancelled = errors.New("session cancelled")
	ErrAborted   = errors.New("session aborted")
	ErrNotIdle   = errors.New("sequencer has already run")
)

const (
	// interrupt is the single keystroke that breaks the PnP discovery
	// loop, same as a human hitting CTRL+C on the console.
	interrupt = "\x03"

	DefaultBreakTimeout = 30 * time.Second
	DefaultBreakRetries = 3
	DefaultPollInterval = 250 * time.Millisecond

	readBufferSize = 4096
)

// Sequencer drives one onboarding session over one console. It owns its
// accumulator and report; nothing here is shared across sessions, so a
// process can run sequential sessions by building a fresh Sequencer per
// device.
type Sequencer struct {
	// BreakTimeout and BreakRetries budget the implicit step 0 that
	// breaks the PnP discovery loop before any templated command.
	BreakTimeout time.Duration
	BreakRetries int
	// PollInterval is how long a single transport read blocks before
	// the wait loop rechecks timeout and cancellation.
	PollInterval time.Duration

	transport  console.Transport
	classifier *console.Classifier
	acc        *console.LineAccumulator
	creds      profile.Credentials
	log        *oblogging.Oblogging

	state    RunState
	report   *SessionReport
	stop     chan struct{}
	stopOnce sync.Once
	readBuf  []byte
	lastErr  error
}

func New(transport console.Transport, classifier *console.Classifier, creds profile.Credentials, log *oblogging.Oblogging) *Sequencer {
	return &Sequencer{
		BreakTimeout: DefaultBreakTimeout,
		BreakRetries: DefaultBreakRetries,
		PollInterval: DefaultPollInterval,
		transport:    transport,
		classifier:   classifier,
		acc:          console.NewLineAccumulator(0),
		creds:        creds,
		log:          log,
		state:        RunIdle,
		report:       &SessionReport{Final: RunIdle},
		stop:         make(chan struct{}),
		readBuf:      make([]byte, readBufferSize),
	}
}

// Cancel requests a cooperative abort. The run loop observes it at the
// top of its wait loop and records a distinct cancelled outcome, so the
// report can tell operator cancellation from device non-response.
func (s *Sequencer) Cancel() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Sequencer) State() RunState {
	return s.state
}

func (s *Sequencer) Report() *SessionReport {
	return s.report
}

// Run plays the rendered steps into the console. A command is never
// sent before the previous step resolved, so the device never sees
// overlapping input. Aborted is terminal; the caller decides whether to
// start over from step 0 with a fresh Sequencer.
func (s *Sequencer) Run(steps []profile.CommandStep) error {
	if s.state != RunIdle {
		return ErrNotIdle
	}
	s.state = RunRunning
	s.report.setFinal(RunRunning)

	if err := s.transport.SetReadTimeout(s.PollInterval); err != nil {
		s.state = RunAborted
		s.report.setFinal(RunAborted)
		return fmt.Errorf("failed to set read timeout: %w", err)
	}

	if !s.breakDiscovery() {
		return s.abort()
	}

	for i, step := range steps {
		ok, fatal := s.runStep(i+1, step)
		if ok {
			continue
		}
		if fatal {
			return s.abort()
		}
		s.log.Warnf("Step %d failed but is not fatal, skipping: %q", i+1, step.Text)
	}

	s.state = RunCompleted
	s.report.setFinal(RunCompleted)
	s.log.Infof("Session completed, %d steps attempted", s.report.size())
	return nil
}

func (s *Sequencer) abort() error {
	s.state = RunAborted
	s.report.setFinal(RunAborted)
	if last, ok := s.report.last(); ok {
		if last.Reason == ReasonCancelled {
			return ErrCancelled
		}
		if last.Reason == ReasonTransport && s.lastErr != nil {
			return fmt.Errorf("transport failure at step %d: %w", last.Index, s.lastErr)
		}
		return fmt.Errorf("%w: step %d failed (%s)", ErrAborted, last.Index, last.Reason)
	}
	return ErrAborted
}

// breakDiscovery is the implicit step 0: wake the console, interrupt
// the PnP discovery loop once, answer the login prompts, and settle on
// a privileged exec prompt.
func (s *Sequencer) breakDiscovery() bool {
	start := time.Now()
	interruptSent := false

	for attempt := 0; attempt <= s.BreakRetries; attempt++ {
		if _, err := s.transport.Write([]byte("\r\n")); err != nil {
			s.recordBreak(start, console.StateUnknown, attempt, false, ReasonTransport)
			s.lastErr = err
			return false
		}

		deadline := time.Now().Add(s.BreakTimeout)
		for time.Now().Before(deadline) {
			select {
			case <-s.stop:
				s.recordBreak(start, console.StateUnknown, attempt, false, ReasonCancelled)
				return false
			default:
			}

			n, err := s.transport.Read(s.readBuf)
			if err != nil {
				s.recordBreak(start, console.StateUnknown, attempt, false, ReasonTransport)
				s.lastErr = err
				return false
			}
			if n == 0 {
				continue
			}

			// Banners arrive as completed lines; prompts sit in the
			// tail. Matching prompts against old completed lines would
			// re-answer a login prompt the device already moved past.
			discovery := false
			for _, line := range s.acc.Feed(s.readBuf[:n]) {
				switch s.classifier.Classify(line, "") {
				case console.StatePnpDiscovery, console.StateBootingNoPrompt:
					discovery = true
				}
			}
			tailState := console.StateUnknown
			if tail := s.acc.Tail(); tail != "" {
				tailState = s.classifier.Classify("", tail)
			}

			switch tailState {
			case console.StatePnpDiscovery, console.StateBootingNoPrompt:
				discovery = true
			case console.StateLoginPrompt:
				s.log.Infof("Login prompt detected, sending username")
				if _, err := s.transport.Write(console.FormatCommand(s.creds.Username)); err != nil {
					s.recordBreak(start, tailState, attempt, false, ReasonTransport)
					s.lastErr = err
					return false
				}
			case console.StatePasswordPrompt:
				s.log.Infof("Password prompt detected, sending password")
				if _, err := s.transport.Write(console.FormatCommand(s.creds.Password)); err != nil {
					s.recordBreak(start, tailState, attempt, false, ReasonTransport)
					s.lastErr = err
					return false
				}
			case console.StatePrivilegedExec:
				s.log.Infof("Console is at a privileged exec prompt")
				s.recordBreak(start, tailState, attempt, true, "")
				return true
			}

			if discovery && !interruptSent {
				s.log.Infof("Discovery loop detected, sending interrupt")
				if _, err := s.transport.Write([]byte(interrupt)); err != nil {
					s.recordBreak(start, console.StatePnpDiscovery, attempt, false, ReasonTransport)
					s.lastErr = err
					return false
				}
				interruptSent = true
			}
		}
		s.log.Warnf("Console did not settle within %v (attempt %d of %d)",
			s.BreakTimeout, attempt+1, s.BreakRetries+1)
	}

	s.recordBreak(start, console.StateUnknown, s.BreakRetries, false, ReasonTimeout)
	return false
}

func (s *Sequencer) recordBreak(start time.Time, state console.DeviceState, retries int, ok bool, reason string) {
	s.report.append(StepOutcome{
		Index:    0,
		Sent:     interrupt,
		State:    state,
		Retries:  retries,
		Duration: time.Since(start),
		Ok:       ok,
		Fatal:    true,
		Reason:   reason,
	})
}

// runStep sends one command and waits for its expected state, retrying
// with byte-identical resends up to the step's budget. The second
// return value reports whether the failure must abort the run.
func (s *Sequencer) runStep(index int, step profile.CommandStep) (bool, bool) {
	start := time.Now()
	lastState := console.StateUnknown
	lastReason := ReasonTimeout

	for attempt := 0; attempt <= step.MaxRetries; attempt++ {
		if attempt > 0 {
			s.log.Warnf("Step %d: resending %q (%s), retry %d of %d",
				index, step.Text, lastReason, attempt, step.MaxRetries)
		}
		if _, err := s.transport.Write(console.FormatCommand(step.Text)); err != nil {
			s.lastErr = err
			s.record(index, step, lastState, attempt, start, false, ReasonTransport)
			return false, true
		}
		s.log.Debugf("Step %d: sent %q, waiting for %v", index, step.Text, step.Expect)

		state, reason := s.waitFor(step.Expect, step.Timeout)
		if state != console.StateUnknown {
			lastState = state
		}
		switch reason {
		case "":
			s.record(index, step, state, attempt, start, true, "")
			return true, false
		case ReasonCancelled:
			s.record(index, step, lastState, attempt, start, false, ReasonCancelled)
			return false, true
		case ReasonTransport:
			s.record(index, step, lastState, attempt, start, false, ReasonTransport)
			return false, true
		default:
			lastReason = reason
		}
	}

	s.record(index, step, lastState, step.MaxRetries, start, false, lastReason)
	return false, step.Fatal
}

func (s *Sequencer) record(index int, step profile.CommandStep, state console.DeviceState, retries int, start time.Time, ok bool, reason string) {
	s.report.append(StepOutcome{
		Index:    index,
		Sent:     step.Text,
		State:    state,
		Retries:  retries,
		Duration: time.Since(start),
		Ok:       ok,
		Fatal:    step.Fatal,
		Reason:   reason,
	})
}

// waitFor blocks until the classifier reports the expected state, an
// error prompt, cancellation, a transport failure, or the timeout.
func (s *Sequencer) waitFor(expect console.DeviceState, timeout time.Duration) (console.DeviceState, string) {
	deadline := time.Now().Add(timeout)
	last := console.StateUnknown

	for time.Now().Before(deadline) {
		select {
		case <-s.stop:
			return last, ReasonCancelled
		default:
		}

		n, err := s.transport.Read(s.readBuf)
		if err != nil {
			s.lastErr = err
			return last, ReasonTransport
		}
		if n == 0 {
			continue
		}

		for _, state := range s.classifyRead(s.readBuf[:n]) {
			if state != console.StateUnknown {
				last = state
			}
			if state == console.StateErrorPrompt {
				return state, ReasonErrorPrompt
			}
			if state == expect {
				return state, ""
			}
		}
	}
	return last, ReasonTimeout
}

// classifyRead feeds one read's bytes through the accumulator and
// returns a classification per newly completed line, then one for the
// current tail. Classification only happens on read events, so a stale
// prompt left in the buffer from the previous step cannot satisfy the
// next one before the device has produced fresh output.
func (s *Sequencer) classifyRead(p []byte) []console.DeviceState {
	newLines := s.acc.Feed(p)
	states := make([]console.DeviceState, 0, len(newLines)+1)
	for _, line := range newLines {
		states = append(states, s.classifier.Classify(line, ""))
	}
	if tail := s.acc.Tail(); tail != "" {
		states = append(states, s.classifier.Classify("", tail))
	}
	return states
}
