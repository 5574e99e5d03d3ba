package model

// FileStatus represents how a file changed within a pull request.
type FileStatus string

const (
	FileStatusAdded    FileStatus = "added"
	FileStatusModified FileStatus = "modified"
	FileStatusRemoved  FileStatus = "removed"
	FileStatusRenamed  FileStatus = "renamed"
)

// ChangedFile is one entry of a pull request's file listing. Patch is the raw
// unified-diff text and is empty for binary files and content-free renames.
// Content is the full head-revision snapshot, filled in by the orchestrator
// once fetched; it stays empty for removed files.
type ChangedFile struct {
	Path      string
	Status    FileStatus
	Patch     string
	Additions int
	Deletions int
	Content   string
}
