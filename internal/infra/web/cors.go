package web

import (
	"net/http"

	"score-report-relay/internal/config"
)

// NullOrigin is the origin value browsers send from file:// pages and sandboxed
// frames; it is also used when the request carries no Origin header.
const NullOrigin = "null"

const (
	allowMethods = "POST, OPTIONS"
	allowHeaders = "Content-Type"
)

// CORSPolicy decides whether a caller origin may read responses.
type CORSPolicy struct {
	allowedOrigin   string
	allowNullOrigin bool
	deniedOrigin    string
}

func NewCORSPolicy(cfg config.CORSConfig) *CORSPolicy {
	denied := cfg.DeniedOrigin
	if denied == "" {
		denied = "https://example.com"
	}
	return &CORSPolicy{
		allowedOrigin:   cfg.AllowedOrigin,
		allowNullOrigin: cfg.AllowNullOrigin,
		deniedOrigin:    denied,
	}
}

// Unlocked reports whether every origin is allowed.
func (p *CORSPolicy) Unlocked() bool { return p.allowedOrigin == "" }

// CORSDecision is the outcome for one request.
type CORSDecision struct {
	Allowed bool
	Header  http.Header
}

// RequestOrigin returns the Origin header, or NullOrigin when absent.
func RequestOrigin(r *http.Request) string {
	if o := r.Header.Get("Origin"); o != "" {
		return o
	}
	return NullOrigin
}

// Evaluate computes the decision and the headers to send with every response.
// A denied caller never has its origin echoed back.
func (p *CORSPolicy) Evaluate(origin string) CORSDecision {
	var allowed bool
	allowOrigin := p.deniedOrigin

	if p.Unlocked() {
		allowed = true
		allowOrigin = origin
		if origin == NullOrigin {
			allowOrigin = "*"
		}
	} else if origin == p.allowedOrigin || (origin == NullOrigin && p.allowNullOrigin) {
		allowed = true
		allowOrigin = origin
	}

	h := http.Header{}
	h.Set("Access-Control-Allow-Origin", allowOrigin)
	h.Set("Vary", "Origin")
	h.Set("Access-Control-Allow-Methods", allowMethods)
	h.Set("Access-Control-Allow-Headers", allowHeaders)
	return CORSDecision{Allowed: allowed, Header: h}
}

// Apply copies the decision headers onto w.
func (d CORSDecision) Apply(w http.ResponseWriter) {
	for k, vs := range d.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
}
