package publish

// Status reports how a best-effort publish attempt ended. Publishing is
// never part of the success criterion for a produced video: a missing
// credential means Skipped, not an error.
type Status int

const (
	StatusOK Status = iota
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}
