package diff

import "strings"

// CalcLineChangesFromDiffContent counts added and deleted lines of a unified or argocd diff.
// File headers ("+++", "---") are not counted.
func CalcLineChangesFromDiffContent(content string) (added, deleted, total int) {
	if content == "" {
		return 0, 0, 0
	}
	for _, line := range strings.Split(content, "\n") {
		switch {
		case strings.HasPrefix(line, "+++") || strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"), strings.HasPrefix(line, "> "):
			added++
		case strings.HasPrefix(line, "-"), strings.HasPrefix(line, "< "):
			deleted++
		}
	}
	return added, deleted, added + deleted
}
