package synapse

import (
	"regexp"
	"strings"
)

var hashtagPattern = regexp.MustCompile(`#([a-zA-Z0-9]+)`)

// ParseTags pulls inline hashtags out of the input. The tags stay on the
// record; the cleaned text is what goes to the generation client.
func ParseTags(input string) (cleaned string, tags []string) {
	for _, match := range hashtagPattern.FindAllStringSubmatch(input, -1) {
		tags = append(tags, strings.ToLower(match[1]))
	}

	cleaned = strings.TrimSpace(hashtagPattern.ReplaceAllString(input, ""))

	return cleaned, tags
}

func mergeTags(existing []string, extra []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(extra))
	merged := make([]string, 0, len(existing)+len(extra))

	for _, tag := range append(append([]string{}, existing...), extra...) {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if len(tag) == 0 {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		merged = append(merged, tag)
	}

	return merged
}
