package console

import (
	"reflect"
	"testing"
)

func TestLineAccumulatorFeed(t *testing.T) {
	type args struct {
		chunks [][]byte
	}
	tests := []struct {
		name      string
		args      args
		wantLines []string
		wantTail  string
	}{{
		name: "Complete CRLF lines",
		args: args{
			chunks: [][]byte{[]byte("System Bootstrap\r\nAll daemons up\r\n")},
		},
		wantLines: []string{"System Bootstrap", "All daemons up"},
		wantTail:  "",
	}, {
		name: "Prompt without newline stays in tail",
		args: args{
			chunks: [][]byte{[]byte("banner line\n"), []byte("ROUTER-1#")},
		},
		wantLines: []string{"banner line"},
		wantTail:  "ROUTER-1#",
	}, {
		name: "Line split across reads",
		args: args{
			chunks: [][]byte{[]byte("Press RETURN "), []byte("to get started\r\n")},
		},
		wantLines: []string{"Press RETURN to get started"},
		wantTail:  "",
	}, {
		name: "NUL bytes stripped",
		args: args{
			chunks: [][]byte{{0x00, 'R', 0x00, '1', '#'}},
		},
		wantLines: []string{},
		wantTail:  "R1#",
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := NewLineAccumulator(0)
			got := make([]string, 0)
			for _, chunk := range tt.args.chunks {
				got = append(got, acc.Feed(chunk)...)
			}
			if !reflect.DeepEqual(got, tt.wantLines) {
				t.Errorf("Feed() lines = %v, want %v", got, tt.wantLines)
			}
			if acc.Tail() != tt.wantTail {
				t.Errorf("Tail() = %q, want %q", acc.Tail(), tt.wantTail)
			}
		})
	}
}

func TestLineAccumulatorHistoryCap(t *testing.T) {
	acc := NewLineAccumulator(4)
	for i := 0; i < 10; i++ {
		acc.Feed([]byte("line\n"))
	}
	acc.Feed([]byte("Router#"))

	if len(acc.Lines()) != 4 {
		t.Errorf("Lines() retained %d, want 4", len(acc.Lines()))
	}
	if acc.Tail() != "Router#" {
		t.Errorf("Tail() = %q, trimming must never drop the tail", acc.Tail())
	}
	if acc.LastLine() != "line" {
		t.Errorf("LastLine() = %q, want %q", acc.LastLine(), "line")
	}
}
