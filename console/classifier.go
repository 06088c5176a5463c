package console

import (
	"fmt"
	"regexp"
)

// DeviceState is the classification of the console's latest output.
type DeviceState int

const (
	StateUnknown DeviceState = iota
	StateBootingNoPrompt
	StatePnpDiscovery
	StateLoginPrompt
	StatePasswordPrompt
	StatePrivilegedExec
	StateConfigMode
	StateSubConfigMode
	StateCommitPending
	StateCommitSucceeded
	StateCommitFailed
	StateErrorPrompt
)

var stateNames = map[DeviceState]string{
	StateUnknown:         "Unknown",
	StateBootingNoPrompt: "BootingNoPrompt",
	StatePnpDiscovery:    "PnpDiscoveryActive",
	StateLoginPrompt:     "LoginPrompt",
	StatePasswordPrompt:  "PasswordPrompt",
	StatePrivilegedExec:  "PrivilegedExec",
	StateConfigMode:      "ConfigMode",
	StateSubConfigMode:   "SubConfigMode",
	StateCommitPending:   "CommitPending",
	StateCommitSucceeded: "CommitSucceeded",
	StateCommitFailed:    "CommitFailed",
	StateErrorPrompt:     "ErrorPrompt",
}

func (s DeviceState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("DeviceState(%d)", int(s))
}

// ParseState resolves a state name as written in template files.
func ParseState(name string) (DeviceState, error) {
	for state, stateName := range stateNames {
		if stateName == name {
			return state, nil
		}
	}
	return StateUnknown, fmt.Errorf("unknown device state %q", name)
}

// Rule maps one output pattern to a device state. Rules are evaluated
// in order, most specific first.
type Rule struct {
	Pattern string
	State   DeviceState
	regex   *regexp.Regexp
}

// Classifier turns the latest console output fragment into a
// DeviceState using a prioritized rule table.
type Classifier struct {
	rules []Rule
}

func NewClassifier(rules []Rule) (*Classifier, error) {
	compiled := make([]Rule, 0, len(rules))
	for _, rule := range rules {
		regex, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern %q: %w", rule.Pattern, err)
		}
		rule.regex = regex
		compiled = append(compiled, rule)
	}
	return &Classifier{rules: compiled}, nil
}

// Classify matches the tail first, then the most recent completed line.
// An ErrorPrompt match always wins over a coincident positive match so
// a rejected command is never mistaken for a landed one. No match
// classifies as Unknown.
func (c *Classifier) Classify(lastLine string, tail string) DeviceState {
	for _, rule := range c.rules {
		if rule.State != StateErrorPrompt {
			continue
		}
		if rule.regex.MatchString(tail) || rule.regex.MatchString(lastLine) {
			return StateErrorPrompt
		}
	}
	for _, rule := range c.rules {
		if rule.regex.MatchString(tail) || rule.regex.MatchString(lastLine) {
			return rule.State
		}
	}
	return StateUnknown
}

// DefaultRules carries the IOS-XE SD-WAN console grammar. Order
// matters: sub-config prompts are narrower than the bare config prompt,
// which is narrower than the exec prompt.
func DefaultRules() []Rule {
	return []Rule{
		{Pattern: `% Invalid input`, State: StateErrorPrompt},
		{Pattern: `% Incomplete command`, State: StateErrorPrompt},
		{Pattern: `syntax error:`, State: StateErrorPrompt},
		{Pattern: `% Ambiguous command`, State: StateErrorPrompt},
		{Pattern: `Failed to commit`, State: StateCommitFailed},
		{Pattern: `Aborted: `, State: StateCommitFailed},
		{Pattern: `Commit complete`, State: StateCommitSucceeded},
		{Pattern: `Uncommitted changes found`, State: StateCommitPending},
		{Pattern: `Username:\s*$`, State: StateLoginPrompt},
		{Pattern: `Password:\s*$`, State: StatePasswordPrompt},
		{Pattern: `terminate PnP with the following command`, State: StatePnpDiscovery},
		{Pattern: `pnpa service discovery`, State: StatePnpDiscovery},
		{Pattern: `%PNP-6-PNP_DISCOVERY_`, State: StatePnpDiscovery},
		{Pattern: `Press RETURN to get started`, State: StateBootingNoPrompt},
		{Pattern: `All daemons up`, State: StateBootingNoPrompt},
		{Pattern: `\(config-[\w.\-/]+\)#\s*$`, State: StateSubConfigMode},
		{Pattern: `\(config\)#\s*$`, State: StateConfigMode},
		{Pattern: `[\w.\-]+#\s*$`, State: StatePrivilegedExec},
	}
}
