package nation

// EventKind is a closed set of notable per-tick occurrences returned by
// Advance. The scheduler hands them to its OnEvents callback; their
// contents are neither logged nor sent to clients.
type EventKind string

const (
	EventNationFounded  EventKind = "nation_founded"
	EventNationDefeated EventKind = "nation_defeated"
	EventNationVictory  EventKind = "nation_victory"
	EventCellCaptured   EventKind = "cell_captured"
)

// Event is one notable occurrence produced during Advance.
type Event struct {
	Kind  EventKind
	Owner string
	X, Y  int32
}
