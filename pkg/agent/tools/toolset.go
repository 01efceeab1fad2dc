package tools

import (
	"log/slog"
	"time"

	"github.com/artex-assurances/aria/pkg/agent/audit"
	"github.com/artex-assurances/aria/pkg/agent/directory"
	"github.com/artex-assurances/aria/pkg/notify"
)

// Toolset bundles the collaborators the tools work against and builds the
// registry. Mailer and scheduler may be nil; the corresponding tools then
// degrade to their "service not configured" responses.
type Toolset struct {
	dir       directory.Directory
	mailer    notify.Mailer
	scheduler notify.Scheduler
	recorder  audit.Recorder
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*Toolset)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(t *Toolset) { t.now = now }
}

func WithMailer(m notify.Mailer) Option {
	return func(t *Toolset) { t.mailer = m }
}

func WithScheduler(s notify.Scheduler) Option {
	return func(t *Toolset) { t.scheduler = s }
}

func NewToolset(dir directory.Directory, recorder audit.Recorder, logger *slog.Logger, opts ...Option) *Toolset {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	t := &Toolset{
		dir:      dir,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Registry builds the full tool registry in the order the system prompt
// introduces the tools.
func (t *Toolset) Registry() *Registry {
	return NewRegistry(t.recorder, t.logger,
		t.lookupByEmail(),
		t.lookupByPhone(),
		t.lookupByFullname(),
		t.confirmIdentity(),
		t.clearContext(),
		t.getClientDetails(),
		t.updateContactInformation(),
		t.listClientContracts(),
		t.getContractDetails(),
		t.getContractCompanyInfo(),
		t.getContractFormulaDetails(),
		t.getClientInteractionHistory(),
		t.checkUpcomingAppointments(),
		t.summarizeAdvisoryDuty(),
		t.sendConfirmationEmail(),
		t.scheduleCallback(),
		t.findEmployeeForEscalation(),
		t.transferCall(),
		t.requestQuote(),
		t.logIssue(),
		t.recordCallFeedback(),
	)
}
