package fsm

import (
	"context"
	"errors"

	loopfsm "github.com/looplab/fsm"

	"github.com/neomorfeo/co2ledger/internal/domain"
)

var _ domain.TransitionValidator = (*Validator)(nil)

// events is the cylinder transition table in looplab/fsm form. Rows sharing
// an event and destination become one EventDesc with several sources, so
// send_to_maintenance is a single entry reachable from four states.
var events = foldTransitions(domain.Transitions)

func foldTransitions(table []domain.Transition) []loopfsm.EventDesc {
	var out []loopfsm.EventDesc
	index := make(map[[2]string]int)
	for _, t := range table {
		k := [2]string{string(t.Event), string(t.Dst)}
		if i, ok := index[k]; ok {
			out[i].Src = append(out[i].Src, string(t.Src))
			continue
		}
		index[k] = len(out)
		out = append(out, loopfsm.EventDesc{Name: k[0], Src: []string{string(t.Src)}, Dst: k[1]})
	}
	return out
}

// Validator checks cylinder events with a throwaway looplab/fsm machine
// seeded from the stored state; the library keeps state in the machine.
type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// Apply checks event against the cylinder's current state and returns the
// destination state. Events the table does not know are validation errors;
// known events fired from the wrong state are a domain.TransitionError.
func (v *Validator) Apply(ctx context.Context, current domain.CylinderState, event domain.Event) (domain.CylinderState, error) {
	machine := loopfsm.NewFSM(string(current), events, nil)

	if err := machine.Event(ctx, string(event)); err != nil {
		var unknown loopfsm.UnknownEventError
		if errors.As(err, &unknown) {
			return "", &domain.ValidationError{Field: "event", Reason: "unknown event " + string(event)}
		}
		var invalidEvent loopfsm.InvalidEventError
		var noTransition loopfsm.NoTransitionError
		if errors.As(err, &invalidEvent) || errors.As(err, &noTransition) {
			return "", &domain.TransitionError{
				Event:   event,
				Current: current,
			}
		}
		return "", err
	}

	return domain.CylinderState(machine.Current()), nil
}
