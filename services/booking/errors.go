package booking

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstreamTimeout marks an offer or payment gateway call that did
	// not answer in time. The session stays in its pre-call stage and the
	// user is asked to retry.
	ErrUpstreamTimeout = errors.New("booking: upstream call timed out")

	// ErrStaleOffer marks a selection referencing an offer that was not in
	// the most recent result shown to this session.
	ErrStaleOffer = errors.New("booking: stale offer reference")

	// ErrDuplicateEvent marks a replayed payment event for an already
	// terminal intent. It is absorbed, never surfaced to the user.
	ErrDuplicateEvent = errors.New("booking: duplicate payment event")
)

// IssuanceError reports a ticket assembly or delivery failure after a
// successful payment. The payment is never rolled back; the attempt is
// retried by redelivery.
type IssuanceError struct {
	UserID string
	Err    error
}

func (e *IssuanceError) Error() string {
	return fmt.Sprintf("booking: ticket issuance failed for %s: %v", e.UserID, e.Err)
}

func (e *IssuanceError) Unwrap() error {
	return e.Err
}
