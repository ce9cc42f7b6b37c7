package dispatch

import "errors"

var (
	// ErrTransport wraps every failure reported by the messaging gateway.
	ErrTransport = errors.New("transport error")
	// ErrNoValidTargets indicates URL filtering left nothing to send as a group.
	ErrNoValidTargets = errors.New("no valid remote targets")
	// ErrInvalidTarget indicates a chat identifier that is neither @channel nor a numeric id.
	ErrInvalidTarget = errors.New("invalid chat target")
	// ErrMissingSource indicates a send that needs a media source got none.
	ErrMissingSource = errors.New("media source is required")
)
