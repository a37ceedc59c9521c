package model

import (
	"encoding/json"
	"errors"
	"fmt"

	"score-report-relay/internal/domain"
)

// Report is a score-report submission. Empty text fields mean "absent".
type Report struct {
	TestID      string
	StudentName string
	Score       float64
	MaxScore    float64
	DurationSec *float64
	StartedAt   string
	FinishedAt  string
	DetailsURL  string
}

// HasDuration reports whether the submission carried a numeric durationSec.
func (r *Report) HasDuration() bool { return r.DurationSec != nil }

// Notification is the outbound message derived from a Report.
type Notification struct {
	ChatID    string
	Text      string
	ParseMode string
}

// ValidationError names the report field that failed decoding.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid report: %s", e.Reason)
	}
	return fmt.Sprintf("invalid report: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return domain.ErrInvalidReport }

type reportWire struct {
	TestID      *string  `json:"testId"`
	StudentName *string  `json:"studentName"`
	Score       *float64 `json:"score"`
	MaxScore    *float64 `json:"maxScore"`
	DurationSec *float64 `json:"durationSec"`
	StartedAt   *string  `json:"startedAt"`
	FinishedAt  *string  `json:"finishedAt"`
	DetailsURL  *string  `json:"detailsUrl"`
}

// DecodeReport parses a JSON object into a Report. score and maxScore must be
// JSON numbers; every other field is optional but must have its declared type
// when present. Unknown fields are ignored.
func DecodeReport(body []byte) (*Report, error) {
	if len(body) == 0 {
		return nil, &ValidationError{Reason: "empty body"}
	}
	var w reportWire
	if err := json.Unmarshal(body, &w); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			if typeErr.Field == "" {
				return nil, &ValidationError{Reason: "expected a json object"}
			}
			return nil, &ValidationError{Field: typeErr.Field, Reason: "unexpected " + typeErr.Value}
		}
		return nil, &ValidationError{Reason: "malformed json"}
	}
	if w.Score == nil {
		return nil, &ValidationError{Field: "score", Reason: "required number"}
	}
	if w.MaxScore == nil {
		return nil, &ValidationError{Field: "maxScore", Reason: "required number"}
	}

	return &Report{
		TestID:      deref(w.TestID),
		StudentName: deref(w.StudentName),
		Score:       *w.Score,
		MaxScore:    *w.MaxScore,
		DurationSec: w.DurationSec,
		StartedAt:   deref(w.StartedAt),
		FinishedAt:  deref(w.FinishedAt),
		DetailsURL:  deref(w.DetailsURL),
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
