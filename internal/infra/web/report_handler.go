package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"score-report-relay/internal/domain"
	"score-report-relay/internal/domain/model"
	"score-report-relay/internal/infra/logging"
	"score-report-relay/internal/infra/metrics"
	"score-report-relay/internal/usecase"
)

type relayResponse struct {
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// reportHandler is the request gate in front of ReportUseCase. Checks run in a
// fixed order and every response carries the CORS headers.
type reportHandler struct {
	cors         *CORSPolicy
	reports      usecase.ReportUseCase
	maxBodyBytes int64
	exposeDetail bool
	log          *zerolog.Logger
}

func (h *reportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	decision := h.cors.Evaluate(RequestOrigin(r))
	decision.Apply(w)

	if r.Method == http.MethodOptions {
		metrics.IncReportOutcome(metrics.OutcomePreflight)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if !decision.Allowed {
		metrics.IncReportOutcome(metrics.OutcomeForbiddenOrigin)
		http.Error(w, "Forbidden (origin)", http.StatusForbidden)
		return
	}
	if r.Method != http.MethodPost {
		metrics.IncReportOutcome(metrics.OutcomeMethodNotAllowed)
		w.Header().Set("Allow", allowMethods)
		http.Error(w, "Only POST", http.StatusMethodNotAllowed)
		return
	}

	l := logging.With(r.Context(), h.log)

	report, err := h.decode(w, r)
	if err != nil {
		l.Debug().Err(err).Msg("rejecting report")
		metrics.IncReportOutcome(metrics.OutcomeBadRequest)
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	// The single relay attempt runs to completion even if the caller goes away.
	err = h.reports.Relay(context.WithoutCancel(r.Context()), report)
	switch {
	case err == nil:
		metrics.IncReportOutcome(metrics.OutcomeOK)
		writeJSON(w, http.StatusOK, relayResponse{OK: true})
	case errors.Is(err, domain.ErrNotConfigured):
		metrics.IncReportOutcome(metrics.OutcomeNotConfigured)
		http.Error(w, "Server not configured", http.StatusInternalServerError)
	default:
		metrics.IncReportOutcome(metrics.OutcomeRelayFailed)
		resp := relayResponse{OK: false, Error: "telegram failed"}
		if h.exposeDetail {
			var relayErr *usecase.RelayError
			if errors.As(err, &relayErr) {
				resp.Detail = relayErr.Detail()
			} else {
				resp.Detail = err.Error()
			}
		}
		writeJSON(w, http.StatusBadGateway, resp)
	}
}

func (h *reportHandler) decode(w http.ResponseWriter, r *http.Request) (*model.Report, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		return nil, &model.ValidationError{Reason: err.Error()}
	}
	return model.DecodeReport(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
