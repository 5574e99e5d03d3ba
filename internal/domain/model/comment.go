package model

// CommentAnchor pins a review comment to a spot in a file's diff. Position is
// the hosting API's diff-position coordinate, NOT a file line number: it is
// the 1-based offset into the file's rendered patch text, counted from the
// first hunk header. Line is the new-file line the anchor lands on, kept for
// logging and heuristics.
type CommentAnchor struct {
	Path     string
	Position int
	Line     int
}

// ReviewComment is an outgoing line-anchored review comment.
type ReviewComment struct {
	Anchor CommentAnchor
	Body   string
}

// PostedReviewComment is an existing review comment on a pull request,
// fetched so publishing can skip anchors that already carry a comment.
type PostedReviewComment struct {
	Author   string
	Path     string
	Position int
	Body     string
}

// PostedIssueComment is an existing PR-level general comment, fetched so
// publishing can skip summary and progress comments that already exist.
type PostedIssueComment struct {
	Author string
	Body   string
}
