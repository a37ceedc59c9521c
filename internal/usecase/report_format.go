package usecase

import (
	"math"
	"strconv"
	"strings"

	"score-report-relay/internal/domain/model"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeHTML escapes the characters Telegram's HTML parse mode treats as markup.
func EscapeHTML(s string) string { return htmlEscaper.Replace(s) }

// formatNumber renders a JSON number the way JavaScript's Number#toString
// does: shortest decimal form (8, 8.5, 0.1), switching to exponent form
// (1e+21, 1.5e-7) outside [1e-6, 1e21).
func formatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	if a := math.Abs(v); a >= 1e-6 && a < 1e21 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	s := strconv.FormatFloat(v, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	return mant + "e" + sign + digits
}

// MessageFormatter renders reports into Telegram HTML text.
type MessageFormatter struct {
	defaultTestID      string
	defaultStudentName string
}

func NewMessageFormatter(defaultTestID, defaultStudentName string) *MessageFormatter {
	return &MessageFormatter{defaultTestID: defaultTestID, defaultStudentName: defaultStudentName}
}

type messageLine struct {
	present func(r *model.Report) bool
	render  func(r *model.Report) string
}

func always(*model.Report) bool { return true }

// lines is the fixed rendering order. A line whose predicate fails is dropped
// entirely.
func (f *MessageFormatter) lines() []messageLine {
	return []messageLine{
		{always, func(r *model.Report) string {
			return "🧪 <b>" + EscapeHTML(orDefault(r.TestID, f.defaultTestID)) + "</b>"
		}},
		{always, func(r *model.Report) string {
			return "👤 " + EscapeHTML(orDefault(r.StudentName, f.defaultStudentName))
		}},
		{always, func(r *model.Report) string {
			return "✅ Score: <b>" + formatNumber(r.Score) + "</b> / " + formatNumber(r.MaxScore)
		}},
		{(*model.Report).HasDuration, func(r *model.Report) string {
			return "⏱️ Time: " + formatNumber(*r.DurationSec) + "s"
		}},
		{func(r *model.Report) bool { return r.StartedAt != "" }, func(r *model.Report) string {
			return "🟢 Start: " + EscapeHTML(r.StartedAt)
		}},
		{func(r *model.Report) bool { return r.FinishedAt != "" }, func(r *model.Report) string {
			return "🔵 End: " + EscapeHTML(r.FinishedAt)
		}},
		{func(r *model.Report) bool { return r.DetailsURL != "" }, func(r *model.Report) string {
			return "🔗 " + EscapeHTML(r.DetailsURL)
		}},
	}
}

// Format renders r as newline-separated lines.
func (f *MessageFormatter) Format(r *model.Report) string {
	out := make([]string, 0, 7)
	for _, l := range f.lines() {
		if l.present(r) {
			out = append(out, l.render(r))
		}
	}
	return strings.Join(out, "\n")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
