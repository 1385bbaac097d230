package publish

import (
	"time"

	"github.com/dl-alexandre/nxraw/internal/utils"
)

// FileStatus is the outcome for one file
type FileStatus string

const (
	FileUploaded FileStatus = "uploaded"
	FilePlanned  FileStatus = "planned"
	FileFailed   FileStatus = "failed"
)

// FileResult describes one upload
type FileResult struct {
	Path        string     `json:"path"`
	URL         string     `json:"url"`
	ContentType string     `json:"contentType"`
	Size        int64      `json:"size"`
	Status      FileStatus `json:"status"`
}

// Result summarizes a run. On failure it holds everything done before the
// error.
type Result struct {
	Repository   string        `json:"repository"`
	Folder       string        `json:"folder"`
	DryRun       bool          `json:"dryRun"`
	State        State         `json:"state"`
	Files        []FileResult  `json:"files"`
	TotalBytes   int64         `json:"totalBytes"`
	PollAttempts int           `json:"pollAttempts"`
	Duration     time.Duration `json:"-"`
	DurationMs   int64         `json:"durationMs"`
}

// Uploaded counts files with status uploaded
func (r *Result) Uploaded() int {
	n := 0
	for _, f := range r.Files {
		if f.Status == FileUploaded {
			n++
		}
	}
	return n
}

// Headers implements types.TableRenderer
func (r *Result) Headers() []string {
	return []string{"Path", "Content-Type", "Size", "Status"}
}

// Rows implements types.TableRenderer
func (r *Result) Rows() [][]string {
	rows := make([][]string, 0, len(r.Files))
	for _, f := range r.Files {
		rows = append(rows, []string{f.Path, f.ContentType, utils.FormatSize(f.Size), string(f.Status)})
	}
	return rows
}

// EmptyMessage implements types.TableRenderer
func (r *Result) EmptyMessage() string {
	return "No files to upload"
}
