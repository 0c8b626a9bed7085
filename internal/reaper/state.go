package reaper

// State is a step in the termination state machine.
type State string

const (
	StateRunning       State = "running"
	StateSignaled      State = "signaled"
	StateEscalating    State = "escalating"
	StateConfirmedDead State = "confirmed_dead"
	StateFailed        State = "failed"
)

// Terminal reports whether no further transition can leave s.
func (s State) Terminal() bool {
	return s == StateConfirmedDead || s == StateFailed
}

// Event drives a transition.
type Event string

const (
	EventNotFound          Event = "not_found"
	EventSignalFailed      Event = "signal_failed"
	EventTermDelivered     Event = "term_delivered"
	EventKillDelivered     Event = "kill_delivered"
	EventObservedDead      Event = "observed_dead"
	EventAttemptsExhausted Event = "attempts_exhausted"
	EventStillAlive        Event = "still_alive"
)

type transition struct {
	from  State
	event Event
}

// transitions is the complete table; anything absent is illegal.
var transitions = map[transition]State{
	{StateRunning, EventNotFound}:      StateFailed,
	{StateRunning, EventSignalFailed}:  StateFailed,
	{StateRunning, EventTermDelivered}: StateSignaled,
	// Forced mode trusts SIGKILL without re-checking.
	{StateRunning, EventKillDelivered}: StateConfirmedDead,

	{StateSignaled, EventObservedDead}:      StateConfirmedDead,
	{StateSignaled, EventAttemptsExhausted}: StateEscalating,

	{StateEscalating, EventKillDelivered}: StateEscalating,
	{StateEscalating, EventSignalFailed}:  StateFailed,
	{StateEscalating, EventObservedDead}:  StateConfirmedDead,
	{StateEscalating, EventStillAlive}:    StateFailed,
}

// Next returns the state reached from s on e, and whether the move is legal.
func Next(s State, e Event) (State, bool) {
	to, ok := transitions[transition{s, e}]
	return to, ok
}
