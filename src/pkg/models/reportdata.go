package models

import "time"

// ReportData represents the complete report data structure
type ReportData struct {
	Repository string    `json:"repository"`
	PRNumber   int       `json:"prNumber,omitempty"`
	Commit     string    `json:"commit"`
	Timestamp  time.Time `json:"timestamp"`

	// ArgocdURL is the base URL of the Argo CD UI, used for application links
	ArgocdURL string `json:"argocdURL"`

	// Outcomes sorted by application name
	Outcomes []DiffOutcome `json:"outcomes"`

	Summary ReportSummary `json:"summary"`
}

type ReportSummary struct {
	TotalCount   int `json:"totalCount"`
	CleanCount   int `json:"cleanCount"`
	DiffCount    int `json:"diffCount"`
	FailureCount int `json:"failureCount"`
}

// HasContent is true when at least one application has a diff or a failure to show
func (r *ReportData) HasContent() bool {
	return r.Summary.DiffCount > 0 || r.Summary.FailureCount > 0
}

// Reportable returns the outcomes that get a section in the report
func (r *ReportData) Reportable() []DiffOutcome {
	out := make([]DiffOutcome, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if o.Kind() != OutcomeClean {
			out = append(out, o)
		}
	}
	return out
}

func Summarize(outcomes []DiffOutcome) ReportSummary {
	s := ReportSummary{TotalCount: len(outcomes)}
	for _, o := range outcomes {
		switch o.Kind() {
		case OutcomeClean:
			s.CleanCount++
		case OutcomeHasDiff:
			s.DiffCount++
		case OutcomeFault:
			s.FailureCount++
		}
	}
	return s
}
