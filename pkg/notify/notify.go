// Package notify holds the outbound side channels of the agent: transactional
// email and callback scheduling. Both are external services; callers treat
// failures as degraded service, not fatal errors.
package notify

import (
	"context"
	"time"
)

// Mailer sends a transactional email to a single recipient.
type Mailer interface {
	Send(ctx context.Context, toName, toEmail, subject, body string) error
}

// Callback is a scheduled advisor callback slot.
type Callback struct {
	ClientName  string
	ClientEmail string
	Phone       string
	Reason      string
	At          time.Time
	Duration    time.Duration
}

// Scheduler books a callback on the advisors' shared calendar and returns an
// opaque booking reference.
type Scheduler interface {
	Schedule(ctx context.Context, cb Callback) (string, error)
}
