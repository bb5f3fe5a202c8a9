// Package util provides common utility functions and constants used across
// the sshgo application. This package is intentionally kept dependency-free
// (no imports from other internal/* packages) to serve as a shared foundation
// without introducing circular dependencies.
package util

import "strings"

// DefaultString returns the fallback value if v is empty or consists entirely
// of whitespace; otherwise it returns v unchanged.
func DefaultString(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// EmptyDash returns "-" if s is empty or consists entirely of whitespace;
// otherwise it returns s unchanged. Used by the show command so optional
// fields read as a visible placeholder instead of a blank.
func EmptyDash(s string) string {
	return DefaultString(s, "-")
}

// SplitArgs splits a flag string into words, honoring single and double
// quotes. It is used for the extra-params field of a record, which may carry
// quoted ssh -o values or xfreerdp switches. Quotes group words; there is no
// backslash escaping, matching what the launcher needs and nothing more.
func SplitArgs(s string) []string {
	var out []string
	var cur strings.Builder
	quote := byte(0)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote == 0 {
			switch c {
			case '\'', '"':
				quote = c
			case ' ', '\t':
				if cur.Len() > 0 {
					out = append(out, cur.String())
					cur.Reset()
				}
			default:
				cur.WriteByte(c)
			}
			continue
		}
		if c == quote {
			quote = 0
			continue
		}
		cur.WriteByte(c)
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}
