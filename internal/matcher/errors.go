package matcher

import "github.com/rotisserie/eris"

var (
	// ErrInvalidRecord marks input that cannot be aggregated. The run must
	// abort; there is no partial result.
	ErrInvalidRecord = eris.New("invalid review record")

	// ErrInvariant marks a pipeline bug, never a data problem.
	ErrInvariant = eris.New("matcher invariant violated")

	// ErrNotFound is returned when a lookup names an id absent from a result.
	ErrNotFound = eris.New("not found")
)
