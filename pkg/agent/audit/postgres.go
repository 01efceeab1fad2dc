package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres writes the journal to the same database the dashboard reads.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

var _ Recorder = (*Postgres)(nil)

func (p *Postgres) StartCall(ctx context.Context, roomID, callerNumber string) (int64, error) {
	var id int64
	err := p.pool.QueryRow(ctx,
		`INSERT INTO call_journal (room_id, caller_number, status, started_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		roomID, callerNumber, StatusInProgress, now().UTC(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("start call journal: %w", err)
	}
	return id, nil
}

func (p *Postgres) SetClientContext(ctx context.Context, callID, clientID int64) error {
	_, err := p.pool.Exec(ctx,
		`UPDATE call_journal SET client_id = $1 WHERE id = $2`,
		clientID, callID,
	)
	if err != nil {
		return fmt.Errorf("set call client: %w", err)
	}
	return nil
}

func (p *Postgres) RecordAction(ctx context.Context, callID int64, action Action) error {
	var params []byte
	if action.Params != nil {
		var err error
		params, err = json.Marshal(action.Params)
		if err != nil {
			return fmt.Errorf("encode action params: %w", err)
		}
	}
	_, err := p.pool.Exec(ctx,
		`INSERT INTO agent_actions (call_id, action_type, tool_name, params, result, message, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		callID, action.Type, nullIfEmpty(action.ToolName), params,
		nullIfEmpty(action.Result), nullIfEmpty(action.Message), now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("record action: %w", err)
	}
	return nil
}

func (p *Postgres) RecordFeedback(ctx context.Context, callID int64, rating int, comment string) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO call_feedback (call_id, rating, comment, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (call_id) DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment`,
		callID, rating, nullIfEmpty(comment), now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("record feedback: %w", err)
	}
	return nil
}

func (p *Postgres) RecordEvaluation(ctx context.Context, callID int64, eval Evaluation) error {
	_, err := p.pool.Exec(ctx,
		`UPDATE call_journal
		 SET eval_summary = $1, eval_compliance = $2, eval_resolution = $3
		 WHERE id = $4`,
		eval.Summary, eval.Compliance, eval.Resolution, callID,
	)
	if err != nil {
		return fmt.Errorf("record evaluation: %w", err)
	}
	return nil
}

func (p *Postgres) EndCall(ctx context.Context, callID int64, end CallEnd) error {
	status := end.Status
	if status == "" {
		status = StatusCompleted
	}
	_, err := p.pool.Exec(ctx,
		`UPDATE call_journal
		 SET ended_at = $1, status = $2, summary = $3, transcript = $4
		 WHERE id = $5`,
		now().UTC(), status, nullIfEmpty(end.Summary), nullIfEmpty(end.Transcript), callID,
	)
	if err != nil {
		return fmt.Errorf("end call journal: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
