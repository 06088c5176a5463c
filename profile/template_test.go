package profile

import (
	"reflect"
	"strings"
	"testing"

	"main/console"
)

func TestRenderDefaultTemplate(t *testing.T) {
	prof := testProfile()
	steps, err := Render(prof, DefaultTemplate())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if len(steps) != len(DefaultTemplate()) {
		t.Errorf("Render() produced %d steps, want %d", len(steps), len(DefaultTemplate()))
	}

	wants := []string{
		"hostname ROUTER-1",
		"system-ip 10.1.1.10",
		"site-id 10",
		`organization-name "ORG"`,
		"vbond 10.1.1.4",
		"ip address 192.0.2.10 255.255.255.0",
		"color biz-internet",
		"ip route 0.0.0.0 0.0.0.0 192.0.2.1",
	}
	rendered := make([]string, 0, len(steps))
	for _, step := range steps {
		rendered = append(rendered, step.Text)
	}
	joined := strings.Join(rendered, "\n")
	for _, want := range wants {
		if !strings.Contains(joined, want) {
			t.Errorf("Render() output missing %q", want)
		}
	}
	if strings.Contains(joined, "{{") {
		t.Errorf("Render() left unexpanded placeholders:\n%s", joined)
	}

	if last := steps[len(steps)-1]; last.Expect != console.StatePrivilegedExec {
		t.Errorf("last step expects %v, want PrivilegedExec", last.Expect)
	}
	commit := steps[len(steps)-2]
	if commit.Text != "commit" || commit.Expect != console.StateCommitSucceeded || !commit.Fatal {
		t.Errorf("commit step = %+v", commit)
	}
}

func TestRenderDeterministic(t *testing.T) {
	prof := testProfile()
	first, err := Render(prof, DefaultTemplate())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	second, err := Render(prof, DefaultTemplate())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("Render() is not deterministic for identical inputs")
	}
}

func TestRenderErrors(t *testing.T) {
	type args struct {
		steps []TemplateStep
	}
	tests := []struct {
		name string
		args args
		want string
	}{{
		name: "Unknown variable",
		args: args{
			steps: []TemplateStep{{Text: "hostname {{does-not-exist}}", Expect: "ConfigMode"}},
		},
		want: `profile has no variable "does-not-exist"`,
	}, {
		name: "Unknown expected state",
		args: args{
			steps: []TemplateStep{{Text: "hostname {{hostname}}", Expect: "NoSuchState"}},
		},
		want: `unknown device state "NoSuchState"`,
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Render(testProfile(), tt.args.steps)
			tmplErr, ok := err.(*TemplateError)
			if !ok {
				t.Fatalf("Render() error = %v, want *TemplateError", err)
			}
			if !strings.Contains(tmplErr.Error(), tt.want) {
				t.Errorf("Render() error = %q, want it to contain %q", tmplErr.Error(), tt.want)
			}
		})
	}
}

func TestRenderStepDefaults(t *testing.T) {
	steps, err := Render(testProfile(), []TemplateStep{
		{Text: "show version", Expect: "PrivilegedExec"},
		{Text: "commit", Expect: "CommitSucceeded", Timeout: 60, MaxRetries: -1, Fatal: true},
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if steps[0].Timeout != DefaultStepTimeout || steps[0].MaxRetries != DefaultMaxRetries {
		t.Errorf("defaults not applied: %+v", steps[0])
	}
	if steps[1].Timeout.Seconds() != 60 || steps[1].MaxRetries != 0 {
		t.Errorf("explicit values not honored: %+v", steps[1])
	}
}
