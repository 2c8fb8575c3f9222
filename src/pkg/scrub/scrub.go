package scrub

import (
	"regexp"
	"strings"
)

const Mask = "***"

// authTokenPattern matches `--auth-token=<value>` and `--auth-token <value>`, optionally quoted.
// Backticks end the value so Markdown code spans survive.
var authTokenPattern = regexp.MustCompile("--auth-token(?:=|\\s+)[\"'`]?([^\\s\"'`]+)")

// Text masks every auth token value found in s. A token captured from one
// command line is masked everywhere it appears, not only next to the flag.
func Text(s string) string {
	matches := authTokenPattern.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return s
	}
	seen := make(map[string]bool)
	for _, m := range matches {
		token := m[1]
		if strings.Trim(token, "*") == "" || seen[token] {
			continue
		}
		seen[token] = true
		s = strings.ReplaceAll(s, token, Mask)
	}
	return s
}

// Token masks a known secret literal in s
func Token(s, token string) string {
	if token == "" {
		return s
	}
	return strings.ReplaceAll(s, token, Mask)
}
