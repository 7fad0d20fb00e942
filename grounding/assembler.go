package grounding

import (
	"fmt"
	"strings"

	"github.com/poiesic/grounder/core"
)

const (
	untitledTitle = "Untitled"
	unknownDate   = "Unknown"

	// ellipsis marks a content snippet truncated at the configured cap.
	ellipsis = "..."

	promptInstructions = "Instructions: Provide a response based on the above sources. " +
		"Cite sources when making specific claims. " +
		"If the sources don't contain relevant information, indicate this clearly."

	noSourcesNotice = "No relevant information was found in your organization's content for this query."
)

// AssemblePrompt builds the grounded prompt from the first maxSources
// surviving candidates, in order, and returns it along with the cited
// sources. Pure function over its inputs; deterministic.
func AssemblePrompt(originalPrompt string, trimmed []*core.Candidate, maxSources, snippetLength int) (string, []*core.Candidate) {
	sources := trimmed
	if len(sources) > maxSources {
		sources = sources[:maxSources]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "User Query: %s\n\n", originalPrompt)
	b.WriteString("Relevant Information from your organization:\n\n")

	if len(sources) == 0 {
		b.WriteString(noSourcesNotice)
		b.WriteString("\n\n")
	}

	for i, source := range sources {
		title := source.Title
		if title == "" {
			title = untitledTitle
		}
		modified := source.ModifiedDate
		if modified == "" {
			modified = unknownDate
		}

		fmt.Fprintf(&b, "Source %d (%s):\n", i+1, source.SourceType)
		fmt.Fprintf(&b, "Title: %s\n", title)
		fmt.Fprintf(&b, "Content: %s\n", truncate(source.Content, snippetLength))
		fmt.Fprintf(&b, "Last Modified: %s\n", modified)
		fmt.Fprintf(&b, "Relevance Score: %.2f\n\n", source.RelevanceScore)
	}

	b.WriteString("\n")
	b.WriteString(promptInstructions)

	return b.String(), sources
}

// truncate caps text at limit characters, marking the cut with an ellipsis.
// Limits are applied per rune so multi-byte text is never split.
func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + ellipsis
}
