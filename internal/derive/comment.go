package derive

import "strings"

// CommentSummary returns the first non-empty line of a docblock with the
// comment markers removed.
//
//	/**
//	 * Basic semi-realworld example.   -> "Basic semi-realworld example."
//	 */
func CommentSummary(doc string) (string, bool) {
	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimLeft(line, " \t")
		if strings.HasPrefix(line, "*/") {
			continue
		}
		line = strings.TrimLeft(line, " \t*")
		if strings.HasPrefix(line, "/*") {
			line = strings.TrimLeft(line[2:], " \t*")
		}
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimSuffix(line, "*/"))
		if line != "" {
			return line, true
		}
	}
	return "", false
}
