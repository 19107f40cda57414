package libec

import "errors"

// Error codes per §6.3: return values are negative numbers starting at -200.
// The numeric codes themselves are not part of the Go API surface (errors.Is
// comparisons are used instead), but they are kept around as documentation of
// the on-the-wire taxonomy a C caller of the original library would see.
const (
	codeBackendNotSupported = -200 - iota
	codeMethodNotImplemented
	codeBackendInitError
	codeBackendInUse
	codeBackendNotAvailable
	codeBadChecksum
	codeInvalidParams
	codeBadHeader
	codeInsufficientFragments
)

// Sentinel errors for the §7 error taxonomy. Wrapped with
// github.com/pkg/errors at call boundaries so that callers retain both
// errors.Is-comparability and a human-readable trace of where a call failed.
var (
	ErrBackendNotSupported    = errors.New("libec: backend not supported")
	ErrMethodNotImplemented   = errors.New("libec: method not implemented by backend")
	ErrBackendInitError       = errors.New("libec: backend init failed")
	ErrBackendInUse           = errors.New("libec: backend instance in use")
	ErrBackendNotAvailable    = errors.New("libec: backend not available")
	ErrBadChecksum            = errors.New("libec: payload checksum mismatch")
	ErrInvalidParams          = errors.New("libec: invalid parameters")
	ErrBadHeader              = errors.New("libec: missing magic or metadata checksum mismatch")
	ErrInsufficientFragments  = errors.New("libec: insufficient fragments to decode")
	ErrUnknownDescriptor      = errors.New("libec: unknown instance descriptor")
)
