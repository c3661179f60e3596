package security

import "testing"

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain sequence name", input: "office-0", want: "office-0"},
		{name: "mixed case and digits", input: "MH_04_difficult", want: "MH_04_difficult"},
		{name: "spaces collapse", input: "living room 2", want: "living_room_2"},
		{name: "path separators collapse", input: "../../etc/passwd", want: "etc_passwd"},
		{name: "unicode collapses", input: "séquence", want: "s_quence"},
		{name: "consecutive junk squashed", input: "a!!@@b", want: "a_b"},
		{name: "leading and trailing separators trimmed", input: "__name__", want: "name"},
		{name: "dot prefix trimmed", input: ".hidden", want: "hidden"},
		{name: "empty input", input: "", want: "unknown"},
		{name: "only junk", input: "///", want: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.input); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeFilenameLengthCap(t *testing.T) {
	long := ""
	for i := 0; i < 300; i++ {
		long += "a"
	}
	got := SanitizeFilename(long)
	if len(got) != maxFilenameLen {
		t.Errorf("sanitized length = %d, want %d", len(got), maxFilenameLen)
	}
}
