// Package security provides helpers for safely deriving filesystem names
// from untrusted input such as manifest sequence names.
package security

import "strings"

// maxFilenameLen caps sanitized names so nested work directories stay well
// under common path length limits.
const maxFilenameLen = 128

// SanitizeFilename derives a safe filename component from an arbitrary
// string. ASCII letters, digits, dots, underscores and dashes pass through;
// every other run of characters collapses to a single underscore. Leading
// and trailing separators are stripped, and an empty result becomes
// "unknown" so callers always get a usable name.
func SanitizeFilename(s string) string {
	out := make([]rune, 0, len(s))
	squashed := false
	for _, r := range s {
		if len(out) >= maxFilenameLen {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			out = append(out, r)
			squashed = false
		default:
			if !squashed {
				out = append(out, '_')
				squashed = true
			}
		}
	}
	name := strings.Trim(string(out), "._")
	if name == "" {
		return "unknown"
	}
	return name
}
