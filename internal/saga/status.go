package saga

// Status is the saga-level status carried on the event envelope.
//
// PENDING, SUCCESS and FAIL are reported by the order intake and the
// participants; ROLLBACK_PENDING is the signal a participant raises when its
// forward step could not be completed. The orchestrator never invents a
// participant status, it only routes on them (and forces FAIL when it starts
// the backward traversal).
type Status string

const (
	StatusPending         Status = "PENDING"
	StatusSuccess         Status = "SUCCESS"
	StatusRollbackPending Status = "ROLLBACK_PENDING"
	StatusFail            Status = "FAIL"
)

// Valid reports whether s is one of the four known saga statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusSuccess, StatusRollbackPending, StatusFail:
		return true
	}
	return false
}
