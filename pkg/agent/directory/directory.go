// Package directory is the read/write data-access layer over the extranet
// customer store. The agent core depends on the Directory interface only, so
// tests run against an in-memory fake and production runs against Postgres.
package directory

import (
	"context"
	"time"
)

// Directory exposes the customer store to the agent. Lookups that can match
// several people return slices; single-record lookups return (nil, nil) when
// nothing matches so callers can distinguish "not found" from a store failure.
type Directory interface {
	ClientByID(ctx context.Context, id int64) (*Client, error)
	ClientByEmail(ctx context.Context, email string) (*Client, error)
	ClientsByPhone(ctx context.Context, phone string) ([]Client, error)
	ClientsByFullName(ctx context.Context, lastName, firstName string) ([]Client, error)
	// UpdateClientContact applies the non-nil fields of upd to the client and
	// reports whether a row actually changed.
	UpdateClientContact(ctx context.Context, clientID int64, upd ContactUpdate) (bool, error)

	ContractsByClient(ctx context.Context, clientID int64) ([]Contract, error)
	ContractByReference(ctx context.Context, reference string) (*Contract, error)
	CompanyByID(ctx context.Context, id int64) (*Company, error)
	FormulaByID(ctx context.Context, id int64) (*Formula, error)

	ClientHistory(ctx context.Context, clientID int64, limit int) ([]ClientEvent, error)
	// UpcomingAppointments returns the client's not-yet-completed events
	// strictly after from, ascending by date.
	UpcomingAppointments(ctx context.Context, clientID int64, from time.Time) ([]ClientEvent, error)

	ActiveEmployees(ctx context.Context, name, function string) ([]Employee, error)
	AdvisoryDutyByClient(ctx context.Context, clientID int64) (*AdvisoryDuty, error)
}
