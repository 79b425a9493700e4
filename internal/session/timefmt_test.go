package session

import "testing"

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		name    string
		seconds int
		want    string
	}{
		{"two minutes five", 125, "02:05"},
		{"exactly zero", 0, "00:00"},
		{"negative clamps", -5, "00:00"},
		{"very negative clamps", -65, "00:00"},
		{"one second", 1, "00:01"},
		{"one minute", 60, "01:00"},
		{"ten minutes", 600, "10:00"},
		{"over an hour keeps minutes", 3725, "62:05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatSeconds(tt.seconds); got != tt.want {
				t.Errorf("FormatSeconds(%d) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestFormatRemaining_NilProgress(t *testing.T) {
	if got := FormatRemaining(nil); got != "" {
		t.Errorf("FormatRemaining(nil) = %q, want empty", got)
	}
}

func TestFormatRemaining_WithProgress(t *testing.T) {
	p := &Progress{Stage: StageHomework, RemainingSeconds: 125}
	if got := FormatRemaining(p); got != "02:05" {
		t.Errorf("FormatRemaining() = %q, want 02:05", got)
	}
}
