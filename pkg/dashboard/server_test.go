package dashboard

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/artex-assurances/aria/pkg/agent/config"
)

type fakeStore struct {
	calls   []CallSummary
	details map[int64]CallDetail
	pingErr error
}

func (f *fakeStore) ListCalls(_ context.Context, limit int) ([]CallSummary, error) {
	if limit > 0 && limit < len(f.calls) {
		return f.calls[:limit], nil
	}
	return f.calls, nil
}

func (f *fakeStore) CallDetail(_ context.Context, id int64) (CallDetail, error) {
	d, ok := f.details[id]
	if !ok {
		return CallDetail{}, ErrNotFound
	}
	return d, nil
}

func (f *fakeStore) FeedbackSummary(context.Context) (FeedbackSummary, error) {
	return FeedbackSummary{TotalCalls: 10, RatedCalls: 4, AverageRating: 4.5}, nil
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func newTestServer(t *testing.T, cfg config.Config, store Store) *httptest.Server {
	t.Helper()
	if cfg.LimitBurst == 0 {
		cfg.LimitRPS = 0 // disabled unless the test opts in
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(New(cfg, store, logger).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func seededStore() *fakeStore {
	started := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	summary := CallSummary{ID: 1, RoomID: "room-1", Status: "Terminé", StartedAt: started, ClientName: "Jean Dupont"}
	return &fakeStore{
		calls: []CallSummary{summary},
		details: map[int64]CallDetail{
			1: {
				CallSummary:    summary,
				Transcript:     "ARIA : Bonjour\nAppelant : Bonjour",
				EvalSummary:    "L'appelant a vérifié son contrat.",
				EvalCompliance: "Conforme",
				EvalResolution: "Résolu",
				Actions: []ActionRow{
					{ID: 1, ActionType: "TOOL_CALL", ToolName: "lookup_client_by_email", CreatedAt: started},
				},
			},
		},
	}
}

func get(t *testing.T, url string, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, body
}

func TestListCalls(t *testing.T) {
	srv := newTestServer(t, config.Config{}, seededStore())

	resp, body := get(t, srv.URL+"/v1/calls", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var payload struct {
		Calls []CallSummary `json:"calls"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Calls) != 1 || payload.Calls[0].ClientName != "Jean Dupont" {
		t.Fatalf("calls = %+v", payload.Calls)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatalf("missing request id header")
	}
}

func TestListCallsRejectsBadLimit(t *testing.T) {
	srv := newTestServer(t, config.Config{}, seededStore())
	resp, _ := get(t, srv.URL+"/v1/calls?limit=zero", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestCallDetail(t *testing.T) {
	srv := newTestServer(t, config.Config{}, seededStore())

	resp, body := get(t, srv.URL+"/v1/calls/1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var detail CallDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if detail.ID != 1 || len(detail.Actions) != 1 {
		t.Fatalf("detail = %+v", detail)
	}
	if detail.EvalCompliance != "Conforme" || detail.EvalResolution != "Résolu" {
		t.Fatalf("evaluation fields = %q / %q", detail.EvalCompliance, detail.EvalResolution)
	}

	resp, _ = get(t, srv.URL+"/v1/calls/999", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing call status = %d", resp.StatusCode)
	}
}

func TestFeedbackSummary(t *testing.T) {
	srv := newTestServer(t, config.Config{}, seededStore())

	resp, body := get(t, srv.URL+"/v1/metrics/feedback", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var fs FeedbackSummary
	if err := json.Unmarshal(body, &fs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if fs.TotalCalls != 10 || fs.AverageRating != 4.5 {
		t.Fatalf("summary = %+v", fs)
	}
}

func TestAuthRequiredWhenKeysConfigured(t *testing.T) {
	cfg := config.Config{DashboardAPIKeys: map[string]struct{}{"secret": {}}}
	srv := newTestServer(t, cfg, seededStore())

	resp, _ := get(t, srv.URL+"/v1/calls", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status without token = %d", resp.StatusCode)
	}

	resp, _ = get(t, srv.URL+"/v1/calls", map[string]string{"Authorization": "Bearer wrong"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status with bad token = %d", resp.StatusCode)
	}

	resp, _ = get(t, srv.URL+"/v1/calls", map[string]string{"Authorization": "Bearer secret"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status with good token = %d", resp.StatusCode)
	}

	// Probes stay open.
	resp, _ = get(t, srv.URL+"/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", resp.StatusCode)
	}
}

func TestReadyzReportsDatabaseOutage(t *testing.T) {
	store := seededStore()
	store.pingErr = context.DeadlineExceeded
	srv := newTestServer(t, config.Config{}, store)

	resp, _ := get(t, srv.URL+"/readyz", nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestRateLimiter(t *testing.T) {
	l := newRateLimiter(1, 2)
	now := time.Now()
	if !l.allow("a", now) || !l.allow("a", now) {
		t.Fatalf("burst should allow 2")
	}
	if l.allow("a", now) {
		t.Fatalf("third immediate request should be limited")
	}
	if !l.allow("b", now) {
		t.Fatalf("other client must not be affected")
	}
	if !l.allow("a", now.Add(time.Second)) {
		t.Fatalf("bucket should refill after a second")
	}
}
