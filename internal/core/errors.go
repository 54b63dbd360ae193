package core

import "errors"

// Sentinel errors for the aggregation layer. Callers match with errors.Is;
// the tool layer converts anything that escapes into a {success:false}
// envelope, never a transport-level failure.
var (
	// ErrInvalidArgument covers missing or malformed request fields.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidPeriod covers unparseable dates and start after end.
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrStoreUnavailable wraps I/O failures reaching the relational cache.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInconsistent flags data that breaks an aggregation invariant,
	// e.g. a negative paid ratio. Detected defensively, never expected.
	ErrInconsistent = errors.New("computation inconsistency")
)
