// Package narrative renders score results into structured,
// human-readable report sections. Pure presentation: no decision logic
// beyond the independent red-flag detector.
package narrative

import (
	"fmt"
	"strings"

	"github.com/nugraha/bandarscope/internal/domain"
)

// Section is one titled block of bullet points. Reports are built as
// structured records and only rendered to text at the boundary, so
// tests assert on structure instead of string matching.
type Section struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
}

// RedFlag is one detected adverse pattern.
type RedFlag struct {
	Code     string          `json:"code"`
	Severity domain.Severity `json:"severity"`
	Detail   string          `json:"detail"`
}

// RedFlagReport aggregates detected flags; RiskLevel is the maximum
// severity found.
type RedFlagReport struct {
	Flags     []RedFlag       `json:"flags"`
	RiskLevel domain.Severity `json:"risk_level"`
}

// Report is the full narrative output for one symbol.
type Report struct {
	Summary  string        `json:"summary"`
	Sections []Section     `json:"sections"`
	RedFlags RedFlagReport `json:"red_flags"`
}

// sectionBuilder accumulates bullets for one section.
type sectionBuilder struct {
	title   string
	bullets []string
}

func newSection(title string) *sectionBuilder {
	return &sectionBuilder{title: title, bullets: []string{}}
}

func (s *sectionBuilder) addf(format string, args ...interface{}) *sectionBuilder {
	s.bullets = append(s.bullets, fmt.Sprintf(format, args...))
	return s
}

func (s *sectionBuilder) build() Section {
	return Section{Title: s.title, Bullets: s.bullets}
}

// RenderText flattens a report into plain text. Kept at the boundary;
// everything upstream works on the structured form.
func RenderText(r Report) string {
	var sb strings.Builder
	sb.WriteString(r.Summary)
	sb.WriteString("\n")
	for _, section := range r.Sections {
		sb.WriteString("\n")
		sb.WriteString(section.Title)
		sb.WriteString("\n")
		for _, bullet := range section.Bullets {
			sb.WriteString("  - ")
			sb.WriteString(bullet)
			sb.WriteString("\n")
		}
	}
	if len(r.RedFlags.Flags) > 0 {
		sb.WriteString("\nRed Flags (")
		sb.WriteString(string(r.RedFlags.RiskLevel))
		sb.WriteString(")\n")
		for _, flag := range r.RedFlags.Flags {
			sb.WriteString(fmt.Sprintf("  - [%s] %s\n", flag.Severity, flag.Detail))
		}
	}
	return sb.String()
}
