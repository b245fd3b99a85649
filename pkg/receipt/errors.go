package receipt

import "errors"

// ErrDependenciesMissing is returned at construction when the tesseract
// runtime is not available.
var ErrDependenciesMissing = errors.New("ocr dependencies missing")

// ErrProcessingFailed is returned when the image cannot be decoded or every
// extraction pass (including the plain-text fallback) failed.
var ErrProcessingFailed = errors.New("receipt processing failed")

// ErrServiceUnavailable is returned by a service whose dependency check
// failed at construction. No work is attempted.
var ErrServiceUnavailable = errors.New("receipt service unavailable")
