package models

// OutcomeKind tags the three ways a diff attempt can end
type OutcomeKind int

const (
	OutcomeClean OutcomeKind = iota
	OutcomeHasDiff
	OutcomeFault
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeClean:
		return "clean"
	case OutcomeHasDiff:
		return "diff"
	case OutcomeFault:
		return "fault"
	default:
		return "unknown"
	}
}

// DiffFailure holds what was captured when every attempt failed without producing a diff
type DiffFailure struct {
	Stderr  string `json:"stderr"`
	Err     string `json:"error"`
	Command string `json:"command"` // auth token already masked
}

// DiffOutcome is the single result recorded for one selected application
type DiffOutcome struct {
	App      Application  `json:"app"`
	Diff     string       `json:"diff"`
	Failure  *DiffFailure `json:"failure,omitempty"`
	Attempts int          `json:"attempts"`

	// Set when the diff is too long for a comment and was exported to a file instead
	DiffFilePath string `json:"diffFilePath,omitempty"`
	DiffURL      string `json:"diffURL,omitempty"`
}

func (o DiffOutcome) Kind() OutcomeKind {
	switch {
	case o.Failure != nil:
		return OutcomeFault
	case o.Diff != "":
		return OutcomeHasDiff
	default:
		return OutcomeClean
	}
}

func (o DiffOutcome) Failed() bool {
	return o.Failure != nil
}
