package github

import (
	"context"

	"github.com/google/uuid"
)

// session scopes cancellation. Every request a Client issues derives
// its context from the session's, so cancelling the session aborts all
// in-flight requests at once. A fresh session is minted right after a
// cancellation so the client stays usable; requests started afterwards
// are unaffected.
type session struct {
	id     uuid.UUID
	ctx    context.Context
	cancel context.CancelCauseFunc
}

func newSession() *session {
	ctx, cancel := context.WithCancelCause(context.Background())
	return &session{
		id:     uuid.New(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// cancelCause carries the caller-supplied reason through context
// cancellation so it can surface in the mapped error.
type cancelCause struct {
	reason string
}

func (c *cancelCause) Error() string {
	if c.reason == "" {
		return "request cancelled"
	}
	return "request cancelled: " + c.reason
}

// requestContext derives a context that is cancelled when either the
// caller's context or the session is cancelled. The returned stop
// function must be called once the request settles.
func (s *session) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	child, cancel := context.WithCancelCause(ctx)
	stop := context.AfterFunc(s.ctx, func() {
		cancel(context.Cause(s.ctx))
	})
	return child, func() {
		stop()
		cancel(nil)
	}
}
