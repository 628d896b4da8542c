package domain

import "fmt"

// PairingPolicy decides what happens when a cylinder's state and location
// diverge from the conventional pairing.
type PairingPolicy string

const (
	PairingWarn   PairingPolicy = "warn"
	PairingReject PairingPolicy = "reject"
)

// Valid reports whether p is a known policy.
func (p PairingPolicy) Valid() bool {
	return p == PairingWarn || p == PairingReject
}

// CheckPairing compares a state/location pair with the conventional table:
//
//	maintenance    <-> maintenance
//	out_of_service <-> out_of_service
//	filling         -> filling_station
//
// It returns nil when the pair is conventional.
func CheckPairing(state CylinderState, loc Location) *PairingError {
	diverge := func(reason string) *PairingError {
		return &PairingError{State: state, Location: loc, Reason: reason}
	}

	switch state {
	case StateMaintenance:
		if loc != LocationMaintenance {
			return diverge("cylinders under maintenance belong at the maintenance location")
		}
	case StateOutOfService:
		if loc != LocationOutOfService {
			return diverge("out of service cylinders belong at the out_of_service location")
		}
	case StateFilling:
		if loc != LocationFillingStation {
			return diverge("cylinders being filled belong at the filling station")
		}
	}

	switch loc {
	case LocationMaintenance:
		if state != StateMaintenance {
			return diverge("the maintenance location holds cylinders in maintenance state")
		}
	case LocationOutOfService:
		if state != StateOutOfService {
			return diverge("the out_of_service location holds out of service cylinders")
		}
	}
	return nil
}

// CheckFillable reports whether c sits at the filling station. The state side
// of fillability is governed by the transition table.
func CheckFillable(c Cylinder) *PairingError {
	if c.Location != LocationFillingStation {
		return &PairingError{
			State:    c.State,
			Location: c.Location,
			Reason:   fmt.Sprintf("cylinder %s must be at the filling station to be filled", c.SerialNumber),
		}
	}
	return nil
}
