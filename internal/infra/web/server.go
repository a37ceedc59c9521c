package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"score-report-relay/internal/config"
	"score-report-relay/internal/infra/api"
	"score-report-relay/internal/infra/metrics"
	"score-report-relay/internal/usecase"
)

type Server struct {
	cfg     *config.Config
	cors    *CORSPolicy
	reports usecase.ReportUseCase
	log     *zerolog.Logger
}

func NewServer(cfg *config.Config, reports usecase.ReportUseCase, logger *zerolog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		cors:    NewCORSPolicy(cfg.CORS),
		reports: reports,
		log:     logger,
	}
}

// Router builds the public handler. The report path accepts every method so
// the gate can answer preflight and 405 with CORS headers attached.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(api.TraceID(), api.RequestLog(s.log), api.Recover(s.log))

	r.Handle(s.cfg.Server.Path, &reportHandler{
		cors:         s.cors,
		reports:      s.reports,
		maxBodyBytes: s.cfg.Server.MaxBodyBytes,
		exposeDetail: s.cfg.Relay.ExposeUpstreamError,
		log:          s.log,
	})
	r.Get("/health", healthHandler)
	if s.cfg.Admin.Port == 0 {
		r.Handle("/metrics", metrics.Handler())
	}
	return r
}

// AdminRouter serves metrics and health on the admin listener.
func (s *Server) AdminRouter() http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", metrics.Handler())
	r.Get("/health", healthHandler)
	return api.Chain(r, api.Recover(s.log))
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
