package research

import (
	"regexp"
	"strings"
)

const (
	summaryHeader = "## Summary\n\n"
	sourcesHeader = "\n\n### Sources:\n"
)

var (
	thinkSpan     = regexp.MustCompile(`(?s)<think>.*?</think>`)
	excessNewline = regexp.MustCompile(`\n{3,}`)
)

// Finalize renders the artifact of a run: the summary under a header,
// optionally followed by every source record in retrieval order. Reasoning
// spans wrapped in <think> tags are removed and blank-line runs collapsed.
func Finalize(summary string, sources []string, revealSources bool) string {
	var sb strings.Builder
	sb.WriteString(summaryHeader)
	sb.WriteString(summary)
	if revealSources {
		sb.WriteString(sourcesHeader)
		sb.WriteString(strings.Join(sources, "\n"))
	}
	return clean(sb.String())
}

// clean repeats the span removal because removing an inner span can join
// the surrounding text into a new one.
func clean(s string) string {
	for thinkSpan.MatchString(s) {
		s = thinkSpan.ReplaceAllString(s, "")
	}
	return excessNewline.ReplaceAllString(s, "\n\n")
}
