// Package diff converts unified-diff patch text into the hosting API's
// diff-position coordinates.
//
// A position is NOT a file line number. It is the 1-based offset into a
// file's rendered patch text: the first @@ hunk header marks position 0, and
// every following line of the patch (context, addition, deletion, later @@
// headers, "\ No newline at end of file" markers) takes the next position.
// The counter never resets within one file's patch. Review comments may only
// anchor on context and addition lines.
package diff

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/griffinwalsh/hookbill/internal/domain/model"
)

// LineOrigin classifies a diff line.
type LineOrigin string

const (
	OriginContext  LineOrigin = "context"
	OriginAddition LineOrigin = "addition"
	OriginDeletion LineOrigin = "deletion"
)

// Line is one content line of a hunk with its diff position. OldLine and
// NewLine are 1-based file line numbers; a zero value means the line does not
// exist on that side.
type Line struct {
	Origin   LineOrigin
	Content  string
	OldLine  int
	NewLine  int
	Position int
}

// Hunk is one @@-delimited run of a patch.
type Hunk struct {
	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Header   string
	Lines    []Line
}

// FilePatch is one file's parsed patch.
type FilePatch struct {
	Path  string
	Hunks []Hunk
}

var hunkHeaderRE = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// Parse converts raw patch text into positioned hunks. An empty patch (binary
// file, content-free rename) parses to zero hunks. A non-empty patch must
// begin with a hunk header.
func Parse(path, patch string) (FilePatch, error) {
	fp := FilePatch{Path: path}
	if patch == "" {
		return fp, nil
	}

	lines := strings.Split(patch, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	position := 0
	oldLine, newLine := 0, 0
	var current *Hunk

	for i, raw := range lines {
		if i > 0 {
			position++
		}

		if strings.HasPrefix(raw, "@@") {
			h, err := parseHunkHeader(raw)
			if err != nil {
				return FilePatch{}, fmt.Errorf("patch for %s: %w", path, err)
			}
			fp.Hunks = append(fp.Hunks, h)
			current = &fp.Hunks[len(fp.Hunks)-1]
			oldLine, newLine = h.OldStart, h.NewStart
			continue
		}
		if current == nil {
			return FilePatch{}, fmt.Errorf("patch for %s does not start with a hunk header", path)
		}

		switch {
		case strings.HasPrefix(raw, "+"):
			current.Lines = append(current.Lines, Line{
				Origin:   OriginAddition,
				Content:  raw[1:],
				NewLine:  newLine,
				Position: position,
			})
			newLine++
		case strings.HasPrefix(raw, "-"):
			current.Lines = append(current.Lines, Line{
				Origin:   OriginDeletion,
				Content:  raw[1:],
				OldLine:  oldLine,
				Position: position,
			})
			oldLine++
		case strings.HasPrefix(raw, `\`):
			// "\ No newline at end of file" consumes a position but is not
			// a line of either file.
		default:
			content := raw
			if strings.HasPrefix(raw, " ") {
				content = raw[1:]
			}
			current.Lines = append(current.Lines, Line{
				Origin:   OriginContext,
				Content:  content,
				OldLine:  oldLine,
				NewLine:  newLine,
				Position: position,
			})
			oldLine++
			newLine++
		}
	}

	return fp, nil
}

func parseHunkHeader(raw string) (Hunk, error) {
	m := hunkHeaderRE.FindStringSubmatch(raw)
	if m == nil {
		return Hunk{}, fmt.Errorf("malformed hunk header %q", raw)
	}

	oldStart, _ := strconv.Atoi(m[1])
	oldLines := 1
	if m[2] != "" {
		oldLines, _ = strconv.Atoi(m[2])
	}
	newStart, _ := strconv.Atoi(m[3])
	newLines := 1
	if m[4] != "" {
		newLines, _ = strconv.Atoi(m[4])
	}

	return Hunk{
		OldStart: oldStart,
		OldLines: oldLines,
		NewStart: newStart,
		NewLines: newLines,
		Header:   raw,
	}, nil
}

// Anchors returns the commentable anchors of the patch in position order.
// Deletion lines and hunk headers never anchor.
func (fp FilePatch) Anchors() []model.CommentAnchor {
	var anchors []model.CommentAnchor
	for _, h := range fp.Hunks {
		for _, l := range h.Lines {
			if l.Origin == OriginDeletion {
				continue
			}
			anchors = append(anchors, model.CommentAnchor{
				Path:     fp.Path,
				Position: l.Position,
				Line:     l.NewLine,
			})
		}
	}
	return anchors
}

// FirstAnchor returns the earliest commentable anchor, or false when the
// patch has none.
func (fp FilePatch) FirstAnchor() (model.CommentAnchor, bool) {
	anchors := fp.Anchors()
	if len(anchors) == 0 {
		return model.CommentAnchor{}, false
	}
	return anchors[0], true
}

// AnchorForNewLine returns the anchor on new-file line n, or the anchor on
// the nearest anchorable line within radius when n itself is not anchorable.
// Ties prefer the earlier line.
func (fp FilePatch) AnchorForNewLine(n, radius int) (model.CommentAnchor, bool) {
	byLine := make(map[int]model.CommentAnchor)
	for _, a := range fp.Anchors() {
		if _, ok := byLine[a.Line]; !ok {
			byLine[a.Line] = a
		}
	}

	for d := 0; d <= radius; d++ {
		if a, ok := byLine[n-d]; ok {
			return a, true
		}
		if d > 0 {
			if a, ok := byLine[n+d]; ok {
				return a, true
			}
		}
	}
	return model.CommentAnchor{}, false
}
