package notification

import "context"

// Sender delivers one outbound chat message to a user. Failures are returned
// to the caller, which owns any retry policy.
type Sender interface {
	Send(ctx context.Context, userID, text string) error
}
