package application

import (
	"fmt"
	"strings"

	"github.com/griffinwalsh/hookbill/internal/domain/model"
)

// buildReviewPrompt assembles the per-file review prompt: PR metadata, the
// reviewer persona, the full file snapshot, the raw patch, and the focus
// list. The format section asks for cited line numbers, which anchor
// selection later scans for.
func buildReviewPrompt(ev model.PullRequestEvent, file model.ChangedFile, preamble string, focus []string) string {
	var b strings.Builder

	b.WriteString("# Code Review Request\n\n")

	b.WriteString("## Pull Request Information\n")
	fmt.Fprintf(&b, "- **Title**: %s\n", orNA(ev.Title))
	fmt.Fprintf(&b, "- **Description**: %s\n", orNA(ev.Body))
	fmt.Fprintf(&b, "- **Author**: %s\n", orNA(ev.Author))
	fmt.Fprintf(&b, "- **File**: %s\n\n", file.Path)

	b.WriteString("## Review Task\n")
	b.WriteString(preamble)
	b.WriteString("\n\n")

	b.WriteString("### File Context\n```\n")
	if file.Content != "" {
		b.WriteString(file.Content)
		if !strings.HasSuffix(file.Content, "\n") {
			b.WriteString("\n")
		}
	} else {
		b.WriteString("No content available\n")
	}
	b.WriteString("```\n\n")

	b.WriteString("### Changes Made\n```diff\n")
	b.WriteString(file.Patch)
	if !strings.HasSuffix(file.Patch, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("```\n\n")

	b.WriteString("## Review Guidelines\n")
	b.WriteString("Please focus on the following aspects in your review:\n")
	for _, item := range focus {
		fmt.Fprintf(&b, "- %s\n", item)
	}
	b.WriteString("\n")

	b.WriteString("## Review Format\n")
	b.WriteString("Please provide your review in the following format:\n\n")
	b.WriteString("1. **Summary**: A brief overview of the code quality and main issues\n")
	b.WriteString("2. **Specific Issues**: List specific issues with line numbers and explanations\n")
	b.WriteString("3. **Suggestions**: Concrete suggestions for improvement with code examples where helpful\n")
	b.WriteString("4. **Positive Aspects**: Highlight good practices in the code\n\n")
	b.WriteString("Focus on being constructive and educational in your feedback.\n")

	return b.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
