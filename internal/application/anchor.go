package application

import (
	"regexp"
	"strconv"

	"github.com/griffinwalsh/hookbill/internal/domain/diff"
	"github.com/griffinwalsh/hookbill/internal/domain/model"
)

// anchorSearchRadius bounds how far (in new-file lines) a cited line may
// drift from a commentable line and still be snapped to it.
const anchorSearchRadius = 10

// lineCitationRE matches the ways reviews reference lines: "line 12",
// "Line: 12", "L12", and "file.go:12".
var lineCitationRE = regexp.MustCompile(`\b(?i:lines?)[\s#:]*(\d+)|\bL(\d+)\b|[\w./-]+\.[A-Za-z]\w*:(\d+)`)

// citedLines extracts line numbers referenced in a review narrative, in
// order of appearance, deduplicated.
func citedLines(text string) []int {
	matches := lineCitationRE.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[int]bool, len(matches))
	var lines []int
	for _, m := range matches {
		for _, group := range m[1:] {
			if group == "" {
				continue
			}
			n, err := strconv.Atoi(group)
			if err != nil || n <= 0 || seen[n] {
				continue
			}
			seen[n] = true
			lines = append(lines, n)
		}
	}
	return lines
}

// selectAnchor picks where to attach a review comment. Cited lines are
// tried first for an exact match, then snapped to the nearest commentable
// line within anchorSearchRadius. When the narrative cites nothing usable,
// the comment lands on the file's first commentable line.
func selectAnchor(fp diff.FilePatch, narrative string) (model.CommentAnchor, bool) {
	cited := citedLines(narrative)

	for _, n := range cited {
		if a, ok := fp.AnchorForNewLine(n, 0); ok {
			return a, true
		}
	}
	for _, n := range cited {
		if a, ok := fp.AnchorForNewLine(n, anchorSearchRadius); ok {
			return a, true
		}
	}
	return fp.FirstAnchor()
}
