package calypso

import "errors"

// Construction and parsing errors. They are reported before or after an
// exchange, never derived from a status word.
var (
	ErrInvalidFragmentSize = errors.New("invalid fragment size")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrUnsupportedProduct  = errors.New("unsupported product type")
	ErrNotFinalized        = errors.New("command not finalized")
	ErrInvalidResponse     = errors.New("invalid response data")
	ErrInvalidATR          = errors.New("invalid SAM ATR")
	ErrInvalidFCI          = errors.New("invalid card FCI")
)

// Status word categories. A *StatusError unwraps to one of these, so callers
// can branch with errors.Is(err, calypso.ErrAccessForbidden).
var (
	ErrIllegalParameter      = errors.New("illegal parameter")
	ErrAccessForbidden       = errors.New("access forbidden")
	ErrIncorrectInputData    = errors.New("incorrect input data")
	ErrDataAccess            = errors.New("data access error")
	ErrSecurityData          = errors.New("security data error")
	ErrSecurityContext       = errors.New("security context error")
	ErrCounterOverflow       = errors.New("counter overflow")
	ErrSessionBufferOverflow = errors.New("session buffer overflow")
	ErrTerminated            = errors.New("card terminated")
	ErrUnknownStatus         = errors.New("unknown status")
)
