package uploads

import "errors"

var (
	// ErrUnsupportedExtension indicates the original filename carries no
	// allow-listed image extension. Checked before any network call.
	ErrUnsupportedExtension = errors.New("unsupported file extension")
	// ErrUploadFailed indicates the remote store rejected or dropped an upload.
	ErrUploadFailed = errors.New("file upload failed")
	// ErrDeleteFailed indicates the remote store could not delete an object.
	ErrDeleteFailed = errors.New("file delete failed")
)
