package domain

import (
	"io"
	"time"
)

// UploadFile is a file received with a multipart request.
type UploadFile struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// StagedUpload is a file written to the staging folder in phase one. It
// is referenced by path from the confirm request.
type StagedUpload struct {
	Path         string // forward-slash path of the staged file
	OriginalName string
	Overwrote    bool // a same-second upload with the same name was replaced
}

// StagedFile describes a file found in the staging folder.
type StagedFile struct {
	Path    string
	ModTime time.Time
}
