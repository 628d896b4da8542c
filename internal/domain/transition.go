package domain

// Event represents an action that triggers a cylinder state transition.
type Event string

const (
	EventStartFilling      Event = "start_filling"
	EventApproveFilling    Event = "approve_filling"
	EventDischarge         Event = "discharge"
	EventSendToMaintenance Event = "send_to_maintenance"
	EventRelease           Event = "release"
	EventRetire            Event = "retire"
	EventReinstate         Event = "reinstate"
)

// Transition defines a valid state change: an event moves a cylinder from Src to Dst.
type Transition struct {
	Event Event
	Src   CylinderState
	Dst   CylinderState
}

// Transitions defines the named state changes of a cylinder.
// Direct edits bypass this table; it governs ledger-driven changes only.
var Transitions = []Transition{
	{Event: EventStartFilling, Src: StateEmpty, Dst: StateFilling},
	{Event: EventApproveFilling, Src: StateEmpty, Dst: StateFull},
	{Event: EventApproveFilling, Src: StateFilling, Dst: StateFull},
	{Event: EventDischarge, Src: StateFull, Dst: StateEmpty},
	{Event: EventSendToMaintenance, Src: StateEmpty, Dst: StateMaintenance},
	{Event: EventSendToMaintenance, Src: StateFull, Dst: StateMaintenance},
	{Event: EventSendToMaintenance, Src: StateFilling, Dst: StateMaintenance},
	{Event: EventSendToMaintenance, Src: StateOutOfService, Dst: StateMaintenance},
	{Event: EventRelease, Src: StateMaintenance, Dst: StateEmpty},
	{Event: EventRetire, Src: StateEmpty, Dst: StateOutOfService},
	{Event: EventRetire, Src: StateFull, Dst: StateOutOfService},
	{Event: EventRetire, Src: StateFilling, Dst: StateOutOfService},
	{Event: EventRetire, Src: StateMaintenance, Dst: StateOutOfService},
	{Event: EventReinstate, Src: StateOutOfService, Dst: StateEmpty},
}

// EventLocation returns the location an event moves the cylinder to, if any.
// Events that change the service status carry the cylinder with them so the
// state/location pairing stays conventional.
func EventLocation(e Event) (Location, bool) {
	switch e {
	case EventSendToMaintenance:
		return LocationMaintenance, true
	case EventRetire:
		return LocationOutOfService, true
	case EventRelease, EventReinstate:
		return LocationDispatch, true
	}
	return "", false
}
