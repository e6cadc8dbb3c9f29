package rhythm

import "errors"

// Sentinel errors returned by setters and Start. Renderer dispatch failures are
// not part of this set: they are swallowed per event inside the poll.
var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrPatternNotFound  = errors.New("pattern not found")
	ErrClockUnavailable = errors.New("audio clock unavailable")
)
