package process

import "errors"

// Failure classes surfaced to callers. Wrapped errors keep the underlying
// message; classify with errors.Is.
var (
	// ErrMalformedRequest covers undecodable bodies and missing sources.
	ErrMalformedRequest = errors.New("malformed request")
	// ErrAcquisition covers download and file read failures.
	ErrAcquisition = errors.New("acquisition failed")
	// ErrParsing covers corrupt or unsupported PDF streams.
	ErrParsing = errors.New("parsing failed")
)
