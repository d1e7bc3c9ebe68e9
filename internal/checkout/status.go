package checkout

type Status string

const (
	StatusEditing    Status = "EDITING"
	StatusValidating Status = "VALIDATING"
	StatusSubmitting Status = "SUBMITTING"
	StatusSucceeded  Status = "SUCCEEDED"
	StatusFailed     Status = "FAILED"
)

func (s Status) IsTerminal() bool {
	return s == StatusSucceeded
}

// String representation (for logging)
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo reports whether the checkout flow may move from one
// status to another. Failed flows return to editing, never straight to
// submitting.
func CanTransitionTo(from, to Status) bool {
	switch from {
	case StatusEditing:
		return to == StatusValidating
	case StatusValidating:
		return to == StatusSubmitting || to == StatusFailed
	case StatusSubmitting:
		return to == StatusSucceeded || to == StatusFailed
	case StatusFailed:
		return to == StatusEditing
	default:
		return false
	}
}
