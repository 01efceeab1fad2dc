package tools

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/artex-assurances/aria/pkg/agent/audit"
	"github.com/artex-assurances/aria/pkg/agent/directory"
	"github.com/artex-assurances/aria/pkg/agent/identity"
	"github.com/artex-assurances/aria/pkg/notify"
)

// fakeDirectory is a seedable in-memory directory that counts every query, so
// tests can assert a gated tool never reached the data layer.
type fakeDirectory struct {
	clients     map[int64]directory.Client
	contracts   []directory.Contract
	companies   map[int64]directory.Company
	formulas    map[int64]directory.Formula
	events      map[int64][]directory.ClientEvent
	employees   []directory.Employee
	duties      map[int64]directory.AdvisoryDuty
	queries     int
	upcomingErr error
}

func newFakeDirectory() *fakeDirectory {
	endB := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	return &fakeDirectory{
		clients: map[int64]directory.Client{
			1: {ID: 1, FirstName: "Jean", LastName: "Dupont", Email: "jean.dupont@email.com", Phone: "0601020304", Address: "12 rue de la Paix", PostalCode: "75002", City: "Paris"},
			2: {ID: 2, FirstName: "Marie", LastName: "Durand", Email: "marie.durand@email.com", Phone: "0605060708"},
		},
		contracts: []directory.Contract{
			{ID: 101, ClientID: 1, Reference: "CONTRAT-A", Status: "Actif", CompanyID: 1, FormulaID: 1, StartDate: time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC)},
			{ID: 102, ClientID: 2, Reference: "CONTRAT-B", Status: "Actif", CompanyID: 2, FormulaID: 2, EndDate: &endB},
		},
		companies: map[int64]directory.Company{
			1: {ID: 1, Name: "Assurance Alpha", PhoneNumber: "111-222-3333"},
			2: {ID: 2, Name: "Garantie Gamma", PhoneNumber: "444-555-6666"},
		},
		formulas: map[int64]directory.Formula{
			1: {ID: 1, Name: "Formule Essentielle", Description: "Couverture de base.", PriceCents: 2999},
			2: {ID: 2, Name: "Formule Pro", Description: "Couverture complète pour les professionnels.", PriceCents: 7999},
		},
		events: map[int64][]directory.ClientEvent{
			1: {{ID: 1001, ClientID: 1, Comment: "Premier contact", ForDate: time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), IsCompleted: true}},
		},
		employees: []directory.Employee{
			{ID: "1", FirstName: "Alice", LastName: "Martin", Function: "Support", IsActive: true},
		},
		duties: map[int64]directory.AdvisoryDuty{
			1: {ID: 1, ClientID: 1, ClientSituation: "Recherche une assurance santé.", Budget: "50€/mois", Need1: "Soins dentaires"},
		},
	}
}

func (f *fakeDirectory) ClientByID(_ context.Context, id int64) (*directory.Client, error) {
	f.queries++
	if c, ok := f.clients[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (f *fakeDirectory) ClientByEmail(_ context.Context, email string) (*directory.Client, error) {
	f.queries++
	for _, c := range f.clients {
		if c.Email == email {
			cc := c
			return &cc, nil
		}
	}
	return nil, nil
}

func (f *fakeDirectory) ClientsByPhone(_ context.Context, phone string) ([]directory.Client, error) {
	f.queries++
	var out []directory.Client
	for _, c := range f.clients {
		if c.Phone == phone || c.Mobile == phone {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeDirectory) ClientsByFullName(_ context.Context, lastName, firstName string) ([]directory.Client, error) {
	f.queries++
	var out []directory.Client
	for _, c := range f.clients {
		if c.LastName == lastName && c.FirstName == firstName {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeDirectory) UpdateClientContact(_ context.Context, clientID int64, upd directory.ContactUpdate) (bool, error) {
	f.queries++
	c, ok := f.clients[clientID]
	if !ok || upd.IsEmpty() {
		return false, nil
	}
	if upd.Address != nil {
		c.Address = *upd.Address
	}
	if upd.PostalCode != nil {
		c.PostalCode = *upd.PostalCode
	}
	if upd.City != nil {
		c.City = *upd.City
	}
	if upd.Phone != nil {
		c.Phone = *upd.Phone
	}
	if upd.Email != nil {
		c.Email = *upd.Email
	}
	f.clients[clientID] = c
	return true, nil
}

func (f *fakeDirectory) ContractsByClient(_ context.Context, clientID int64) ([]directory.Contract, error) {
	f.queries++
	var out []directory.Contract
	for _, c := range f.contracts {
		if c.ClientID == clientID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeDirectory) ContractByReference(_ context.Context, reference string) (*directory.Contract, error) {
	f.queries++
	for _, c := range f.contracts {
		if c.Reference == reference {
			cc := c
			return &cc, nil
		}
	}
	return nil, nil
}

func (f *fakeDirectory) CompanyByID(_ context.Context, id int64) (*directory.Company, error) {
	f.queries++
	if c, ok := f.companies[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (f *fakeDirectory) FormulaByID(_ context.Context, id int64) (*directory.Formula, error) {
	f.queries++
	if fo, ok := f.formulas[id]; ok {
		return &fo, nil
	}
	return nil, nil
}

func (f *fakeDirectory) ClientHistory(_ context.Context, clientID int64, _ int) ([]directory.ClientEvent, error) {
	f.queries++
	return f.events[clientID], nil
}

func (f *fakeDirectory) UpcomingAppointments(_ context.Context, clientID int64, from time.Time) ([]directory.ClientEvent, error) {
	f.queries++
	if f.upcomingErr != nil {
		return nil, f.upcomingErr
	}
	var out []directory.ClientEvent
	for _, ev := range f.events[clientID] {
		if !ev.IsCompleted && ev.ForDate.After(from) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeDirectory) ActiveEmployees(_ context.Context, name, function string) ([]directory.Employee, error) {
	f.queries++
	var out []directory.Employee
	for _, e := range f.employees {
		if !e.IsActive {
			continue
		}
		if function != "" && !strings.EqualFold(e.Function, function) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeDirectory) AdvisoryDutyByClient(_ context.Context, clientID int64) (*directory.AdvisoryDuty, error) {
	f.queries++
	if d, ok := f.duties[clientID]; ok {
		return &d, nil
	}
	return nil, nil
}

type fakeMailer struct {
	err  error
	sent int
	to   string
}

func (m *fakeMailer) Send(_ context.Context, _, toEmail, _, _ string) error {
	if m.err != nil {
		return m.err
	}
	m.sent++
	m.to = toEmail
	return nil
}

type fakeScheduler struct {
	booked []notify.Callback
	err    error
}

func (s *fakeScheduler) Schedule(_ context.Context, cb notify.Callback) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.booked = append(s.booked, cb)
	return "evt-1", nil
}

type fixture struct {
	dir       *fakeDirectory
	mailer    *fakeMailer
	scheduler *fakeScheduler
	recorder  *audit.Memory
	registry  *Registry
	call      *CallContext
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		dir:       newFakeDirectory(),
		mailer:    &fakeMailer{},
		scheduler: &fakeScheduler{},
		recorder:  audit.NewMemory(),
	}
	callID, err := f.recorder.StartCall(context.Background(), "room-1", "0601020304")
	if err != nil {
		t.Fatalf("start call: %v", err)
	}
	ts := NewToolset(f.dir, f.recorder, nil,
		WithMailer(f.mailer),
		WithScheduler(f.scheduler),
		WithClock(func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) }),
	)
	f.registry = ts.Registry()
	f.call = &CallContext{CallID: callID, RoomID: "room-1", Session: identity.NewSession("room-1", nil, nil)}
	return f
}

func (f *fixture) confirmJean(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	f.registry.Dispatch(ctx, f.call, "lookup_client_by_email", map[string]any{"email": "jean.dupont@email.com"})
	f.registry.Dispatch(ctx, f.call, "confirm_identity", map[string]any{"confirmation": true})
	if _, ok := f.call.Session.Confirmed(); !ok {
		t.Fatalf("fixture: identity not confirmed")
	}
}

func TestLookupByEmailFound(t *testing.T) {
	f := newFixture(t)
	got := f.registry.Dispatch(context.Background(), f.call, "lookup_client_by_email",
		map[string]any{"email": "jean.dupont@email.com"})

	if !strings.Contains(got, "J'ai trouvé un dossier pour Jean Dupont") {
		t.Fatalf("unexpected reply: %q", got)
	}
	pending, ok := f.call.Session.Pending()
	if !ok || pending.ID != 1 {
		t.Fatalf("pending = %+v ok=%v, want Jean", pending, ok)
	}
	if _, ok := f.call.Session.Confirmed(); ok {
		t.Fatalf("lookup must not confirm")
	}
}

func TestLookupByEmailNotFound(t *testing.T) {
	f := newFixture(t)
	got := f.registry.Dispatch(context.Background(), f.call, "lookup_client_by_email",
		map[string]any{"email": "nobody@email.com"})

	if !strings.Contains(got, "aucun client correspondant") {
		t.Fatalf("unexpected reply: %q", got)
	}
	if _, ok := f.call.Session.Pending(); ok {
		t.Fatalf("pending should be cleared on a miss")
	}
}

func TestLookupByPhoneMultipleMatches(t *testing.T) {
	f := newFixture(t)
	shared := f.dir.clients[2]
	shared.Phone = "0601020304"
	f.dir.clients[2] = shared

	got := f.registry.Dispatch(context.Background(), f.call, "lookup_client_by_phone",
		map[string]any{"phone": "0601020304"})

	if !strings.Contains(got, "plusieurs clients") {
		t.Fatalf("unexpected reply: %q", got)
	}
	if _, ok := f.call.Session.Pending(); ok {
		t.Fatalf("ambiguous lookup must not pick a candidate")
	}
}

func TestConfirmIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registry.Dispatch(ctx, f.call, "lookup_client_by_email", map[string]any{"email": "jean.dupont@email.com"})

	got := f.registry.Dispatch(ctx, f.call, "confirm_identity", map[string]any{"confirmation": true})

	if !strings.Contains(got, "Identité confirmée") {
		t.Fatalf("unexpected reply: %q", got)
	}
	if strings.Contains(got, "rendez-vous à venir") {
		t.Fatalf("no future events seeded, reply should carry no enrichment: %q", got)
	}
	confirmed, ok := f.call.Session.Confirmed()
	if !ok || confirmed.ID != 1 {
		t.Fatalf("confirmed = %+v ok=%v", confirmed, ok)
	}
	if _, ok := f.call.Session.Pending(); ok {
		t.Fatalf("pending should be cleared after confirmation")
	}
	if call, _ := f.recorder.Call(f.call.CallID); call.ClientID != 1 {
		t.Fatalf("journal client id = %d, want 1", call.ClientID)
	}
}

func TestConfirmIdentityProactiveEnrichment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.dir.events[1] = append(f.dir.events[1], directory.ClientEvent{
		ID: 1002, ClientID: 1, Comment: "Point annuel mutuelle",
		ForDate: time.Date(2024, 6, 10, 14, 30, 0, 0, time.UTC),
	})
	f.registry.Dispatch(ctx, f.call, "lookup_client_by_email", map[string]any{"email": "jean.dupont@email.com"})

	got := f.registry.Dispatch(ctx, f.call, "confirm_identity", map[string]any{"confirmation": true})

	if !strings.Contains(got, "Identité confirmée") {
		t.Fatalf("unexpected reply: %q", got)
	}
	if !strings.Contains(got, "je vois que vous avez des rendez-vous à venir") {
		t.Fatalf("missing enrichment: %q", got)
	}
	if !strings.Contains(got, "10/06/2024 à 14:30 : Point annuel mutuelle") {
		t.Fatalf("missing event line: %q", got)
	}
}

func TestConfirmIdentityEnrichmentFailureKeepsConfirmation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.dir.upcomingErr = errors.New("events table unavailable")
	f.registry.Dispatch(ctx, f.call, "lookup_client_by_email", map[string]any{"email": "jean.dupont@email.com"})

	got := f.registry.Dispatch(ctx, f.call, "confirm_identity", map[string]any{"confirmation": true})

	if !strings.Contains(got, "Identité confirmée") {
		t.Fatalf("enrichment failure must not fail confirmation: %q", got)
	}
	if _, ok := f.call.Session.Confirmed(); !ok {
		t.Fatalf("confirmation rolled back by enrichment failure")
	}
}

func TestConfirmIdentityDenied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registry.Dispatch(ctx, f.call, "lookup_client_by_email", map[string]any{"email": "jean.dupont@email.com"})

	got := f.registry.Dispatch(ctx, f.call, "confirm_identity", map[string]any{"confirmation": false})

	if !strings.Contains(got, "n'accéderai pas à ce dossier") {
		t.Fatalf("unexpected reply: %q", got)
	}
	if _, ok := f.call.Session.Pending(); ok {
		t.Fatalf("pending should be cleared on denial")
	}
	if _, ok := f.call.Session.Confirmed(); ok {
		t.Fatalf("denial must not confirm anyone")
	}
}

func TestConfirmIdentityWithoutLookup(t *testing.T) {
	f := newFixture(t)
	got := f.registry.Dispatch(context.Background(), f.call, "confirm_identity", map[string]any{"confirmation": true})
	if !strings.Contains(got, "rechercher un client avant") {
		t.Fatalf("unexpected reply: %q", got)
	}
}

func TestGatedToolRefusedWithoutConfirmation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	gated := []string{
		"get_client_details",
		"update_contact_information",
		"list_client_contracts",
		"get_contract_details",
		"get_contract_company_info",
		"get_contract_formula_details",
		"get_client_interaction_history",
		"check_upcoming_appointments",
		"summarize_advisory_duty",
		"send_confirmation_email",
		"schedule_callback",
	}
	for _, name := range gated {
		before := f.dir.queries
		got := f.registry.Dispatch(ctx, f.call, name, map[string]any{})
		if !strings.Contains(got, "Aucun client n'est actuellement sélectionné") {
			t.Fatalf("%s: unexpected reply: %q", name, got)
		}
		if f.dir.queries != before {
			t.Fatalf("%s: refused tool still reached the directory", name)
		}
	}
	if f.mailer.sent != 0 {
		t.Fatalf("refused tool sent mail")
	}
}

func TestGatedToolRefusedWithOnlyPendingCandidate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registry.Dispatch(ctx, f.call, "lookup_client_by_email", map[string]any{"email": "jean.dupont@email.com"})

	before := f.dir.queries
	got := f.registry.Dispatch(ctx, f.call, "get_client_details", map[string]any{})
	if !strings.Contains(got, "Aucun client n'est actuellement sélectionné") {
		t.Fatalf("pending candidate must not unlock gated tools: %q", got)
	}
	if f.dir.queries != before {
		t.Fatalf("refused tool reached the directory")
	}
}

func TestGetClientDetails(t *testing.T) {
	f := newFixture(t)
	f.confirmJean(t)

	got := f.registry.Dispatch(context.Background(), f.call, "get_client_details", map[string]any{})
	if !strings.Contains(got, "Détails pour Jean Dupont") || !strings.Contains(got, "jean.dupont@email.com") {
		t.Fatalf("unexpected reply: %q", got)
	}
}

func TestClearContext(t *testing.T) {
	f := newFixture(t)
	f.confirmJean(t)

	got := f.registry.Dispatch(context.Background(), f.call, "clear_context", map[string]any{})
	if !strings.Contains(got, "contexte a été réinitialisé") {
		t.Fatalf("unexpected reply: %q", got)
	}
	if f.call.Session.State() != identity.StateNoCandidate {
		t.Fatalf("state = %v after clear", f.call.Session.State())
	}
}

func TestUpdateContactInformationRefreshesContext(t *testing.T) {
	f := newFixture(t)
	f.confirmJean(t)

	got := f.registry.Dispatch(context.Background(), f.call, "update_contact_information",
		map[string]any{"city": "Lyon", "postal_code": "69001"})
	if !strings.Contains(got, "mises à jour avec succès") {
		t.Fatalf("unexpected reply: %q", got)
	}
	confirmed, _ := f.call.Session.Confirmed()
	if confirmed.City != "Lyon" || confirmed.PostalCode != "69001" {
		t.Fatalf("context not refreshed: %+v", confirmed)
	}
}

func TestUpdateContactInformationNothingToChange(t *testing.T) {
	f := newFixture(t)
	f.confirmJean(t)

	got := f.registry.Dispatch(context.Background(), f.call, "update_contact_information", map[string]any{})
	if !strings.Contains(got, "Aucune information à modifier") {
		t.Fatalf("unexpected reply: %q", got)
	}
}

func TestListClientContracts(t *testing.T) {
	f := newFixture(t)
	f.confirmJean(t)

	got := f.registry.Dispatch(context.Background(), f.call, "list_client_contracts", map[string]any{})
	if !strings.Contains(got, "Voici les contrats pour Jean Dupont") || !strings.Contains(got, "CONTRAT-A") {
		t.Fatalf("unexpected reply: %q", got)
	}
}

func TestGetContractDetails(t *testing.T) {
	f := newFixture(t)
	f.confirmJean(t)

	got := f.registry.Dispatch(context.Background(), f.call, "get_contract_details",
		map[string]any{"reference": "CONTRAT-A"})
	if !strings.Contains(got, "Détails du contrat CONTRAT-A") || !strings.Contains(got, "Actif") {
		t.Fatalf("unexpected reply: %q", got)
	}
}

func TestGetContractDetailsRefusesForeignContract(t *testing.T) {
	f := newFixture(t)
	f.confirmJean(t)

	got := f.registry.Dispatch(context.Background(), f.call, "get_contract_details",
		map[string]any{"reference": "CONTRAT-B"})
	if !strings.Contains(got, "n'est pas rattaché à votre dossier") {
		t.Fatalf("foreign contract must be refused: %q", got)
	}
}

func TestGetContractCompanyInfo(t *testing.T) {
	f := newFixture(t)
	f.confirmJean(t)

	got := f.registry.Dispatch(context.Background(), f.call, "get_contract_company_info",
		map[string]any{"reference": "CONTRAT-A"})
	if !strings.Contains(got, "géré par Assurance Alpha") {
		t.Fatalf("unexpected reply: %q", got)
	}
}

func TestGetContractFormulaDetails(t *testing.T) {
	f := newFixture(t)
	f.confirmJean(t)

	got := f.registry.Dispatch(context.Background(), f.call, "get_contract_formula_details",
		map[string]any{"reference": "CONTRAT-A"})
	if !strings.Contains(got, "basé sur la formule 'Formule Essentielle'") {
		t.Fatalf("unexpected reply: %q", got)
	}
	if !strings.Contains(got, "29,99 €") {
		t.Fatalf("missing price: %q", got)
	}
}

func TestGetClientInteractionHistory(t *testing.T) {
	f := newFixture(t)
	f.confirmJean(t)

	got := f.registry.Dispatch(context.Background(), f.call, "get_client_interaction_history", map[string]any{})
	if !strings.Contains(got, "Voici un résumé des dernières interactions") || !strings.Contains(got, "Premier contact") {
		t.Fatalf("unexpected reply: %q", got)
	}
}

func TestCheckUpcomingAppointmentsNone(t *testing.T) {
	f := newFixture(t)
	f.confirmJean(t)

	got := f.registry.Dispatch(context.Background(), f.call, "check_upcoming_appointments", map[string]any{})
	if !strings.Contains(got, "aucun rendez-vous à venir") {
		t.Fatalf("unexpected reply: %q", got)
	}
}

func TestSummarizeAdvisoryDuty(t *testing.T) {
	f := newFixture(t)
	f.confirmJean(t)

	got := f.registry.Dispatch(context.Background(), f.call, "summarize_advisory_duty", map[string]any{})
	if !strings.Contains(got, "Pour vous rassurer sur le choix de votre contrat") {
		t.Fatalf("unexpected reply: %q", got)
	}
	if !strings.Contains(got, "Soins dentaires") {
		t.Fatalf("missing needs: %q", got)
	}
}

func TestFindEmployeeForEscalationIsUngated(t *testing.T) {
	f := newFixture(t)
	got := f.registry.Dispatch(context.Background(), f.call, "find_employee_for_escalation",
		map[string]any{"function": "Support"})
	if !strings.Contains(got, "J'ai trouvé Alice Martin (Support)") {
		t.Fatalf("unexpected reply: %q", got)
	}
}

func TestSendConfirmationEmail(t *testing.T) {
	f := newFixture(t)
	f.confirmJean(t)

	got := f.registry.Dispatch(context.Background(), f.call, "send_confirmation_email",
		map[string]any{"subject": "Confirmation", "body": "Vos coordonnées ont été mises à jour."})
	if !strings.Contains(got, "a été envoyé à jean.dupont@email.com") {
		t.Fatalf("unexpected reply: %q", got)
	}
	if f.mailer.sent != 1 || f.mailer.to != "jean.dupont@email.com" {
		t.Fatalf("mailer = %+v", f.mailer)
	}
}

func TestSendConfirmationEmailFailureSchedulesFallback(t *testing.T) {
	f := newFixture(t)
	f.confirmJean(t)
	f.mailer.err = errors.New("sendgrid: 503")

	got := f.registry.Dispatch(context.Background(), f.call, "send_confirmation_email",
		map[string]any{"subject": "Confirmation", "body": "corps"})
	if !strings.Contains(got, "erreur technique majeure") || !strings.Contains(got, "planifie un rappel") {
		t.Fatalf("unexpected reply: %q", got)
	}
	if len(f.scheduler.booked) != 1 {
		t.Fatalf("fallback callback not booked: %+v", f.scheduler.booked)
	}
	if f.scheduler.booked[0].At.Hour() != 10 {
		t.Fatalf("fallback slot = %v, want next morning 10:00", f.scheduler.booked[0].At)
	}
}

func TestScheduleCallback(t *testing.T) {
	f := newFixture(t)
	f.confirmJean(t)

	got := f.registry.Dispatch(context.Background(), f.call, "schedule_callback",
		map[string]any{"reason": "Question sur les garanties", "datetime": "2024-12-25T14:30:00"})
	if !strings.Contains(got, "25/12/2024 à 14:30") {
		t.Fatalf("unexpected reply: %q", got)
	}
	if len(f.scheduler.booked) != 1 || f.scheduler.booked[0].Reason != "Question sur les garanties" {
		t.Fatalf("booked = %+v", f.scheduler.booked)
	}
}

func TestScheduleCallbackBadDatetime(t *testing.T) {
	f := newFixture(t)
	f.confirmJean(t)

	got := f.registry.Dispatch(context.Background(), f.call, "schedule_callback",
		map[string]any{"reason": "suivi", "datetime": "demain à 14h"})
	if !strings.Contains(got, "format de date et d'heure est invalide") {
		t.Fatalf("unexpected reply: %q", got)
	}
	if len(f.scheduler.booked) != 0 {
		t.Fatalf("invalid datetime still booked a slot")
	}
}

func TestRecordCallFeedback(t *testing.T) {
	f := newFixture(t)
	got := f.registry.Dispatch(context.Background(), f.call, "record_call_feedback",
		map[string]any{"rating": float64(5), "comment": "Très efficace"})
	if !strings.Contains(got, "Merci") {
		t.Fatalf("unexpected reply: %q", got)
	}
	call, ok := f.recorder.Call(f.call.CallID)
	if !ok || call.Feedback == nil || call.Feedback.Rating != 5 {
		t.Fatalf("feedback = %+v", call.Feedback)
	}
}

func TestDispatchJournalsCallAndResult(t *testing.T) {
	f := newFixture(t)
	f.registry.Dispatch(context.Background(), f.call, "lookup_client_by_email",
		map[string]any{"email": "jean.dupont@email.com"})

	actions := f.recorder.Actions(f.call.CallID)
	if len(actions) != 2 {
		t.Fatalf("actions = %d, want TOOL_CALL + TOOL_RESULT", len(actions))
	}
	if actions[0].Type != audit.ActionToolCall || actions[0].ToolName != "lookup_client_by_email" {
		t.Fatalf("first action = %+v", actions[0])
	}
	if actions[1].Type != audit.ActionToolResult || actions[1].Result == "" {
		t.Fatalf("second action = %+v", actions[1])
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	f := newFixture(t)
	got := f.registry.Dispatch(context.Background(), f.call, "open_the_vault", map[string]any{})
	if !strings.Contains(got, "n'est pas disponible") {
		t.Fatalf("unexpected reply: %q", got)
	}
}

func TestDeclarationsCoverAllTools(t *testing.T) {
	f := newFixture(t)
	decls := f.registry.Declarations()
	if len(decls) != len(f.registry.Names()) {
		t.Fatalf("declarations = %d, names = %d", len(decls), len(f.registry.Names()))
	}
	for _, d := range decls {
		if d.Name == "" || d.Description == "" {
			t.Fatalf("incomplete declaration: %+v", d)
		}
	}
}
