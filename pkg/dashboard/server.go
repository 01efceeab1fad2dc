package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/artex-assurances/aria/pkg/agent/config"
)

type Server struct {
	cfg     config.Config
	store   Store
	logger  *slog.Logger
	mux     *http.ServeMux
	limiter *rateLimiter
}

func New(cfg config.Config, store Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:     cfg,
		store:   store,
		logger:  logger,
		mux:     http.NewServeMux(),
		limiter: newRateLimiter(cfg.LimitRPS, cfg.LimitBurst),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.HandleFunc("GET /readyz", s.handleReadyz)
	s.mux.HandleFunc("GET /v1/calls", s.handleListCalls)
	s.mux.HandleFunc("GET /v1/calls/{id}", s.handleCallDetail)
	s.mux.HandleFunc("GET /v1/metrics/feedback", s.handleFeedbackSummary)
}

// Handler wraps the mux in the middleware chain, outermost first: request id,
// access log, panic recovery, CORS, auth, rate limit.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = rateLimit(s.limiter, h)
	h = apiAuth(s.cfg, h)
	h = cors(s.cfg, h)
	h = recoverPanics(s.logger, h)
	h = accessLog(s.logger, h)
	h = requestID(h)
	return h
}
