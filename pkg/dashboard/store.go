// Package dashboard serves the supervision API over the call journal: call
// list, per-call detail with the action log, and aggregate feedback metrics.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CallSummary struct {
	ID           int64      `json:"id"`
	RoomID       string     `json:"room_id"`
	CallerNumber string     `json:"caller_number,omitempty"`
	ClientID     *int64     `json:"client_id,omitempty"`
	ClientName   string     `json:"client_name,omitempty"`
	Status       string     `json:"status"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
	Summary      string     `json:"summary,omitempty"`
}

type ActionRow struct {
	ID         int64           `json:"id"`
	ActionType string          `json:"action_type"`
	ToolName   string          `json:"tool_name,omitempty"`
	Params     json.RawMessage `json:"params,omitempty"`
	Result     string          `json:"result,omitempty"`
	Message    string          `json:"message,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

type CallDetail struct {
	CallSummary
	Transcript     string      `json:"transcript,omitempty"`
	Rating         *int        `json:"rating,omitempty"`
	Comment        string      `json:"feedback_comment,omitempty"`
	EvalSummary    string      `json:"eval_summary,omitempty"`
	EvalCompliance string      `json:"eval_compliance,omitempty"`
	EvalResolution string      `json:"eval_resolution,omitempty"`
	Actions        []ActionRow `json:"actions"`
}

type FeedbackSummary struct {
	TotalCalls    int64   `json:"total_calls"`
	RatedCalls    int64   `json:"rated_calls"`
	AverageRating float64 `json:"average_rating"`
	// Counts indexed by rating 1..5.
	Counts [5]int64 `json:"counts"`
}

// ErrNotFound is returned by CallDetail for an unknown call id.
var ErrNotFound = errors.New("dashboard: call not found")

type Store interface {
	ListCalls(ctx context.Context, limit int) ([]CallSummary, error)
	CallDetail(ctx context.Context, id int64) (CallDetail, error)
	FeedbackSummary(ctx context.Context) (FeedbackSummary, error)
	Ping(ctx context.Context) error
}

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

var _ Store = (*PostgresStore)(nil)

const callColumns = `cj.id, cj.room_id, coalesce(cj.caller_number, ''), cj.client_id,
	coalesce(c.first_name || ' ' || c.last_name, ''), cj.status, cj.started_at, cj.ended_at,
	coalesce(cj.summary, '')`

func (s *PostgresStore) ListCalls(ctx context.Context, limit int) ([]CallSummary, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, fmt.Sprintf(
		`SELECT %s FROM call_journal cj
		 LEFT JOIN clients c ON c.id = cj.client_id
		 ORDER BY cj.started_at DESC LIMIT $1`, callColumns), limit)
	if err != nil {
		return nil, fmt.Errorf("list calls: %w", err)
	}
	defer rows.Close()

	var out []CallSummary
	for rows.Next() {
		var cs CallSummary
		if err := scanCallSummary(rows, &cs); err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

func scanCallSummary(row pgx.Row, cs *CallSummary) error {
	return row.Scan(&cs.ID, &cs.RoomID, &cs.CallerNumber, &cs.ClientID,
		&cs.ClientName, &cs.Status, &cs.StartedAt, &cs.EndedAt, &cs.Summary)
}

func (s *PostgresStore) CallDetail(ctx context.Context, id int64) (CallDetail, error) {
	var d CallDetail
	row := s.pool.QueryRow(ctx, fmt.Sprintf(
		`SELECT %s, coalesce(cj.transcript, ''), f.rating, coalesce(f.comment, ''),
		        coalesce(cj.eval_summary, ''), coalesce(cj.eval_compliance, ''), coalesce(cj.eval_resolution, '')
		 FROM call_journal cj
		 LEFT JOIN clients c ON c.id = cj.client_id
		 LEFT JOIN call_feedback f ON f.call_id = cj.id
		 WHERE cj.id = $1`, callColumns), id)
	err := row.Scan(&d.ID, &d.RoomID, &d.CallerNumber, &d.ClientID,
		&d.ClientName, &d.Status, &d.StartedAt, &d.EndedAt, &d.Summary,
		&d.Transcript, &d.Rating, &d.Comment,
		&d.EvalSummary, &d.EvalCompliance, &d.EvalResolution)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CallDetail{}, ErrNotFound
		}
		return CallDetail{}, fmt.Errorf("call %d: %w", id, err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, action_type, coalesce(tool_name, ''), params,
		        coalesce(result, ''), coalesce(message, ''), created_at
		 FROM agent_actions WHERE call_id = $1 ORDER BY id`, id)
	if err != nil {
		return CallDetail{}, fmt.Errorf("actions for call %d: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var a ActionRow
		if err := rows.Scan(&a.ID, &a.ActionType, &a.ToolName, &a.Params, &a.Result, &a.Message, &a.CreatedAt); err != nil {
			return CallDetail{}, err
		}
		d.Actions = append(d.Actions, a)
	}
	return d, rows.Err()
}

func (s *PostgresStore) FeedbackSummary(ctx context.Context) (FeedbackSummary, error) {
	var fs FeedbackSummary
	err := s.pool.QueryRow(ctx,
		`SELECT count(*), count(f.call_id), coalesce(avg(f.rating), 0),
		        count(*) FILTER (WHERE f.rating = 1),
		        count(*) FILTER (WHERE f.rating = 2),
		        count(*) FILTER (WHERE f.rating = 3),
		        count(*) FILTER (WHERE f.rating = 4),
		        count(*) FILTER (WHERE f.rating = 5)
		 FROM call_journal cj
		 LEFT JOIN call_feedback f ON f.call_id = cj.id`).
		Scan(&fs.TotalCalls, &fs.RatedCalls, &fs.AverageRating,
			&fs.Counts[0], &fs.Counts[1], &fs.Counts[2], &fs.Counts[3], &fs.Counts[4])
	if err != nil {
		return FeedbackSummary{}, fmt.Errorf("feedback summary: %w", err)
	}
	return fs, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
