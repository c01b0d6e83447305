package timestamp

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "zero", input: "00:00", want: 0},
		{name: "minutes and seconds", input: "02:05", want: 125},
		{name: "single digit minutes", input: "5:30", want: 330},
		{name: "hours", input: "01:02:03", want: 3723},
		{name: "surrounding whitespace", input: " 00:10 ", want: 10},
		{name: "empty", input: "", wantErr: true},
		{name: "no colon", input: "125", wantErr: true},
		{name: "too many parts", input: "1:2:3:4", wantErr: true},
		{name: "non numeric", input: "aa:bb", wantErr: true},
		{name: "negative component", input: "-1:30", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) expected error, got %d", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name    string
		seconds int
		want    string
	}{
		{name: "zero", seconds: 0, want: "00:00"},
		{name: "under a minute", seconds: 59, want: "00:59"},
		{name: "minutes", seconds: 125, want: "02:05"},
		{name: "just under an hour", seconds: 3599, want: "59:59"},
		{name: "exactly an hour", seconds: 3600, want: "01:00:00"},
		{name: "hours", seconds: 3723, want: "01:02:03"},
		{name: "negative clamps to zero", seconds: -5, want: "00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.seconds); got != tt.want {
				t.Errorf("Format(%d) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	// Every well-formed MM:SS under an hour must round-trip unchanged.
	inputs := []string{"00:00", "00:05", "01:30", "10:00", "59:59"}
	for _, input := range inputs {
		secs, err := Parse(input)
		if err != nil {
			t.Fatalf("Parse(%q) unexpected error: %v", input, err)
		}
		if got := Format(secs); got != input {
			t.Errorf("Format(Parse(%q)) = %q, want identity", input, got)
		}
	}
}

func TestRebase(t *testing.T) {
	tests := []struct {
		name   string
		ts     string
		offset int
		want   string
	}{
		{name: "zero offset is identity", ts: "01:30", offset: 0, want: "01:30"},
		{name: "additive", ts: "00:05", offset: 90, want: "01:35"},
		{name: "crosses hour boundary", ts: "59:59", offset: 1, want: "01:00:00"},
		{name: "chunk offset", ts: "02:00", offset: 34200, want: "09:32:00"},
		{name: "malformed input passes through", ts: "not-a-timestamp", offset: 60, want: "not-a-timestamp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Rebase(tt.ts, tt.offset); got != tt.want {
				t.Errorf("Rebase(%q, %d) = %q, want %q", tt.ts, tt.offset, got, tt.want)
			}
		})
	}
}
