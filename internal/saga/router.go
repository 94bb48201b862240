package saga

import "fmt"

// DecisionKind labels what a routing decision does, mostly for logs and
// metrics.
type DecisionKind string

const (
	DecisionStart         DecisionKind = "start"
	DecisionForward       DecisionKind = "forward"
	DecisionCompensate    DecisionKind = "compensate"
	DecisionFinishSuccess DecisionKind = "finish_success"
	DecisionFinishFail    DecisionKind = "finish_fail"
)

// Decision is the outcome of routing one envelope: where it goes next, which
// status it must carry, and whether the saga is over.
type Decision struct {
	Kind     DecisionKind
	Topic    string
	Status   Status
	Terminal bool
	Message  string
}

// UnroutableError marks an envelope the router cannot place: unknown source or
// a status outside the protocol. Such a message must go to the dead-letter
// path, never be retried blindly.
type UnroutableError struct {
	Source string
	Status Status
	Reason string
}

func (e *UnroutableError) Error() string {
	return fmt.Sprintf("unroutable event (source=%q, status=%q): %s", e.Source, e.Status, e.Reason)
}

// Route decides the next hop for an envelope.
//
//   - PENDING starts the saga at step 0.
//   - SUCCESS advances to the next step's forward topic, or finishes the saga
//     when the reporting participant was the last one.
//   - ROLLBACK_PENDING and FAIL unwind: the previously completed step receives
//     the envelope on its compensation topic with status forced to FAIL, so it
//     compensates instead of retrying forward. When the failure happened at
//     step 0 there is nothing left to unwind and the saga finishes failed.
//
// notifyTopic is where terminal envelopes are published for persistence.
func Route(def *Definition, ev *Event, notifyTopic string) (Decision, error) {
	if ev.Status == StatusPending {
		first := def.First()
		return Decision{
			Kind:    DecisionStart,
			Topic:   first.ForwardTopic,
			Status:  StatusPending,
			Message: fmt.Sprintf("Saga started for order %s", ev.OrderID),
		}, nil
	}

	step, ok := def.StepByName(ev.Source)
	if !ok {
		return Decision{}, &UnroutableError{Source: ev.Source, Status: ev.Status, Reason: "source is not a saga participant"}
	}

	switch ev.Status {
	case StatusSuccess:
		next, ok := def.StepAt(step.Index + 1)
		if !ok {
			return Decision{
				Kind:     DecisionFinishSuccess,
				Topic:    notifyTopic,
				Status:   StatusSuccess,
				Terminal: true,
				Message:  fmt.Sprintf("Saga finished successfully for order %s", ev.OrderID),
			}, nil
		}
		return Decision{
			Kind:    DecisionForward,
			Topic:   next.ForwardTopic,
			Status:  StatusSuccess,
			Message: fmt.Sprintf("Advancing saga to %s", next.Name),
		}, nil

	case StatusRollbackPending, StatusFail:
		prev, ok := def.StepAt(step.Index - 1)
		if !ok {
			return Decision{
				Kind:     DecisionFinishFail,
				Topic:    notifyTopic,
				Status:   StatusFail,
				Terminal: true,
				Message:  fmt.Sprintf("Saga finished with errors for order %s", ev.OrderID),
			}, nil
		}
		return Decision{
			Kind:    DecisionCompensate,
			Topic:   prev.CompensationTopic,
			Status:  StatusFail,
			Message: fmt.Sprintf("Unwinding saga, compensating %s", prev.Name),
		}, nil

	default:
		return Decision{}, &UnroutableError{Source: ev.Source, Status: ev.Status, Reason: "status outside the saga protocol"}
	}
}
