package s3

import "time"

// Object describes a stored object.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
	ETag         string
}

// TransferFailure records one file that could not be transferred.
type TransferFailure struct {
	// Key is the object key involved, empty if the failure happened before one was known
	Key string

	// Path is the local file path involved
	Path string

	// Err is the cause
	Err error
}

// TransferReport is the outcome of a folder transfer.
type TransferReport struct {
	// Succeeded lists the keys transferred, in transfer order
	Succeeded []string

	// Failed lists the files that could not be transferred
	Failed []TransferFailure
}

// OK reports whether every file was transferred.
func (r *TransferReport) OK() bool {
	return len(r.Failed) == 0
}

func (r *TransferReport) fail(key, path string, err error) {
	r.Failed = append(r.Failed, TransferFailure{Key: key, Path: path, Err: err})
}

// DeleteError is a key S3 refused to delete.
type DeleteError struct {
	Key     string
	Code    string
	Message string
}

// DeleteResult is the outcome of a batch delete.
type DeleteResult struct {
	Deleted []string
	Errors  []DeleteError
}
