package j2k

import "errors"

// Sentinel error kinds, matched against with errors.Is by callers that
// need to distinguish truncation from malformed or unsupported input.
var (
	ErrTruncated   = errors.New("j2k: truncated codestream")
	ErrMalformed   = errors.New("j2k: malformed input")
	ErrUnsupported = errors.New("j2k: unsupported feature")
)
