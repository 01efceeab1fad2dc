package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres implements Directory over a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const clientColumns = `id, first_name, last_name, email, phone, mobile, address, postal_code, city, is_archived, created_at`

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Mobile,
		&c.Address, &c.PostalCode, &c.City, &c.IsArchived, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (p *Postgres) ClientByID(ctx context.Context, id int64) (*Client, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
	c, err := scanClient(row)
	if err != nil {
		return nil, fmt.Errorf("client by id %d: %w", id, err)
	}
	return c, nil
}

func (p *Postgres) ClientByEmail(ctx context.Context, email string) (*Client, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE lower(email) = lower($1) AND NOT is_archived`, email)
	c, err := scanClient(row)
	if err != nil {
		return nil, fmt.Errorf("client by email: %w", err)
	}
	return c, nil
}

func (p *Postgres) ClientsByPhone(ctx context.Context, phone string) ([]Client, error) {
	// Suffix match: callers rarely dictate the international prefix the CRM
	// stored, so "0612345678" must match "+33612345678".
	rows, err := p.pool.Query(ctx,
		`SELECT `+clientColumns+` FROM clients
		 WHERE (phone LIKE '%' || $1 OR mobile LIKE '%' || $1) AND NOT is_archived
		 ORDER BY id`, phone)
	if err != nil {
		return nil, fmt.Errorf("clients by phone: %w", err)
	}
	return collectClients(rows)
}

func (p *Postgres) ClientsByFullName(ctx context.Context, lastName, firstName string) ([]Client, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+clientColumns+` FROM clients
		 WHERE lower(last_name) = lower($1) AND lower(first_name) = lower($2) AND NOT is_archived
		 ORDER BY id`, lastName, firstName)
	if err != nil {
		return nil, fmt.Errorf("clients by name: %w", err)
	}
	return collectClients(rows)
}

func collectClients(rows pgx.Rows) ([]Client, error) {
	defer rows.Close()
	var out []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Mobile,
			&c.Address, &c.PostalCode, &c.City, &c.IsArchived, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (p *Postgres) UpdateClientContact(ctx context.Context, clientID int64, upd ContactUpdate) (bool, error) {
	set := make([]string, 0, 5)
	args := make([]any, 0, 6)
	add := func(col string, v *string) {
		if v == nil {
			return
		}
		args = append(args, *v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	add("address", upd.Address)
	add("postal_code", upd.PostalCode)
	add("city", upd.City)
	add("phone", upd.Phone)
	add("email", upd.Email)
	if len(set) == 0 {
		return false, nil
	}
	args = append(args, clientID)
	query := fmt.Sprintf(`UPDATE clients SET %s, updated_at = now() WHERE id = $%d`,
		strings.Join(set, ", "), len(args))
	tag, err := p.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update client %d contact: %w", clientID, err)
	}
	return tag.RowsAffected() > 0, nil
}

const contractColumns = `id, client_id, reference, status, company_id, formula_id, start_date, end_date`

func (p *Postgres) ContractsByClient(ctx context.Context, clientID int64) ([]Contract, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE client_id = $1 ORDER BY start_date DESC`, clientID)
	if err != nil {
		return nil, fmt.Errorf("contracts by client %d: %w", clientID, err)
	}
	defer rows.Close()
	var out []Contract
	for rows.Next() {
		var c Contract
		if err := rows.Scan(&c.ID, &c.ClientID, &c.Reference, &c.Status,
			&c.CompanyID, &c.FormulaID, &c.StartDate, &c.EndDate); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (p *Postgres) ContractByReference(ctx context.Context, reference string) (*Contract, error) {
	var c Contract
	err := p.pool.QueryRow(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE reference = $1`, reference).
		Scan(&c.ID, &c.ClientID, &c.Reference, &c.Status,
			&c.CompanyID, &c.FormulaID, &c.StartDate, &c.EndDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("contract by reference: %w", err)
	}
	return &c, nil
}

func (p *Postgres) CompanyByID(ctx context.Context, id int64) (*Company, error) {
	var c Company
	err := p.pool.QueryRow(ctx,
		`SELECT id, name, phone_number FROM companies WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.PhoneNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("company by id %d: %w", id, err)
	}
	return &c, nil
}

func (p *Postgres) FormulaByID(ctx context.Context, id int64) (*Formula, error) {
	var f Formula
	err := p.pool.QueryRow(ctx,
		`SELECT id, name, description, (price * 100)::bigint FROM formulas WHERE id = $1`, id).
		Scan(&f.ID, &f.Name, &f.Description, &f.PriceCents)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("formula by id %d: %w", id, err)
	}
	return &f, nil
}

func (p *Postgres) ClientHistory(ctx context.Context, clientID int64, limit int) ([]ClientEvent, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := p.pool.Query(ctx,
		`SELECT id, client_id, comment, for_date, is_completed FROM client_events
		 WHERE client_id = $1 ORDER BY for_date DESC LIMIT $2`, clientID, limit)
	if err != nil {
		return nil, fmt.Errorf("history for client %d: %w", clientID, err)
	}
	return collectEvents(rows)
}

func (p *Postgres) UpcomingAppointments(ctx context.Context, clientID int64, from time.Time) ([]ClientEvent, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, client_id, comment, for_date, is_completed FROM client_events
		 WHERE client_id = $1 AND NOT is_completed AND for_date > $2
		 ORDER BY for_date ASC`, clientID, from)
	if err != nil {
		return nil, fmt.Errorf("upcoming appointments for client %d: %w", clientID, err)
	}
	return collectEvents(rows)
}

func collectEvents(rows pgx.Rows) ([]ClientEvent, error) {
	defer rows.Close()
	var out []ClientEvent
	for rows.Next() {
		var e ClientEvent
		if err := rows.Scan(&e.ID, &e.ClientID, &e.Comment, &e.ForDate, &e.IsCompleted); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (p *Postgres) ActiveEmployees(ctx context.Context, name, function string) ([]Employee, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, first_name, last_name, function, email, is_active FROM employees
		 WHERE is_active
		   AND ($1 = '' OR lower(first_name || ' ' || last_name) LIKE '%' || lower($1) || '%')
		   AND ($2 = '' OR lower(function) LIKE '%' || lower($2) || '%')
		 ORDER BY last_name, first_name`, name, function)
	if err != nil {
		return nil, fmt.Errorf("active employees: %w", err)
	}
	defer rows.Close()
	var out []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Function, &e.Email, &e.IsActive); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (p *Postgres) AdvisoryDutyByClient(ctx context.Context, clientID int64) (*AdvisoryDuty, error) {
	var d AdvisoryDuty
	err := p.pool.QueryRow(ctx,
		`SELECT id, client_id, client_situation, budget, need_1, need_2, need_3
		 FROM advisory_duties WHERE client_id = $1 ORDER BY id DESC LIMIT 1`, clientID).
		Scan(&d.ID, &d.ClientID, &d.ClientSituation, &d.Budget, &d.Need1, &d.Need2, &d.Need3)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("advisory duty for client %d: %w", clientID, err)
	}
	return &d, nil
}
