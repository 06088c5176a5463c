package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"time"

	"main/console"
)

// TemplateStep is one command tuple as written in a template file.
// Timeout is in seconds; zero picks the default.
type TemplateStep struct {
	Text       string `json:"text"`
	Expect     string `json:"expect"`
	Timeout    int    `json:"timeout,omitempty"`
	MaxRetries int    `json:"max_retries,omitempty"`
	Fatal      bool   `json:"fatal"`
}

// CommandStep is a rendered, ready-to-send unit of interaction.
type CommandStep struct {
	Text       string
	Expect     console.DeviceState
	Timeout    time.Duration
	MaxRetries int
	Fatal      bool
}

const (
	DefaultStepTimeout = 10 * time.Second
	DefaultMaxRetries  = 2
)

// TemplateError reports a template that cannot be rendered against the
// given profile. It is raised before any bytes hit the console.
type TemplateError struct {
	Step int
	Msg  string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template step %d: %s", e.Step, e.Msg)
}

var placeholderRegex = regexp.MustCompile(`\{\{\s*([\w\-]+)\s*\}\}`)

// Render expands the profile into the template's command steps. It is
// pure substitution: identical inputs always produce byte-identical
// steps in the same order, and the step count always equals the
// template's.
func Render(prof *DeviceProfile, steps []TemplateStep) ([]CommandStep, error) {
	vars := prof.Vars()
	rendered := make([]CommandStep, 0, len(steps))
	for i, step := range steps {
		var missing *TemplateError
		text := placeholderRegex.ReplaceAllStringFunc(step.Text, func(match string) string {
			name := placeholderRegex.FindStringSubmatch(match)[1]
			value, ok := vars[name]
			if !ok && missing == nil {
				missing = &TemplateError{Step: i, Msg: fmt.Sprintf("profile has no variable %q", name)}
			}
			return value
		})
		if missing != nil {
			return nil, missing
		}

		expect, err := console.ParseState(step.Expect)
		if err != nil {
			return nil, &TemplateError{Step: i, Msg: err.Error()}
		}

		timeout := DefaultStepTimeout
		if step.Timeout > 0 {
			timeout = time.Duration(step.Timeout) * time.Second
		}
		retries := step.MaxRetries
		if retries == 0 {
			retries = DefaultMaxRetries
		} else if retries < 0 {
			retries = 0
		}

		rendered = append(rendered, CommandStep{
			Text:       text,
			Expect:     expect,
			Timeout:    timeout,
			MaxRetries: retries,
			Fatal:      step.Fatal,
		})
	}
	return rendered, nil
}

func LoadTemplate(filename string) ([]TemplateStep, error) {
	file, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", filename, err)
	}
	return ParseTemplate(file)
}

func ParseTemplate(data []byte) ([]TemplateStep, error) {
	steps := make([]TemplateStep, 0)
	if err := json.Unmarshal(data, &steps); err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return steps, nil
}

// DefaultTemplate is the stock IOS-XE SD-WAN onboarding sequence:
// system identity, WAN addressing, tunnel binding, default route,
// commit. Ordering is significant and never reordered at runtime.
func DefaultTemplate() []TemplateStep {
	return []TemplateStep{
		{Text: "config-transaction", Expect: "ConfigMode", Fatal: true},
		{Text: "system", Expect: "SubConfigMode", Fatal: true},
		{Text: "hostname {{hostname}}", Expect: "SubConfigMode", Fatal: true},
		{Text: "system-ip {{system-ip}}", Expect: "SubConfigMode", Fatal: true},
		{Text: "site-id {{site-id}}", Expect: "SubConfigMode", Fatal: true},
		{Text: "organization-name \"{{organization-name}}\"", Expect: "SubConfigMode", Fatal: true},
		{Text: "vbond {{vbond}}", Expect: "SubConfigMode", Fatal: true},
		{Text: "exit", Expect: "ConfigMode", Fatal: true},
		{Text: "interface {{wan-interface}}", Expect: "SubConfigMode", Fatal: true},
		{Text: "ip address {{wan-ip}} {{wan-mask}}", Expect: "SubConfigMode", Fatal: true},
		{Text: "no shutdown", Expect: "SubConfigMode", Fatal: false},
		{Text: "exit", Expect: "ConfigMode", Fatal: true},
		{Text: "sdwan", Expect: "SubConfigMode", Fatal: true},
		{Text: "interface {{wan-interface}}", Expect: "SubConfigMode", Fatal: true},
		{Text: "tunnel-interface", Expect: "SubConfigMode", Fatal: true},
		{Text: "encapsulation ipsec", Expect: "SubConfigMode", Fatal: true},
		{Text: "color {{tloc-color}}", Expect: "SubConfigMode", Fatal: true},
		{Text: "allow-service all", Expect: "SubConfigMode", Fatal: false},
		{Text: "exit", Expect: "SubConfigMode", Fatal: true},
		{Text: "exit", Expect: "SubConfigMode", Fatal: true},
		{Text: "exit", Expect: "ConfigMode", Fatal: true},
		{Text: "ip route 0.0.0.0 0.0.0.0 {{default-route-next-hop}}", Expect: "ConfigMode", Fatal: true},
		{Text: "commit", Expect: "CommitSucceeded", Timeout: 60, Fatal: true},
		{Text: "end", Expect: "PrivilegedExec", Fatal: true},
	}
}
