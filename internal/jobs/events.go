package jobs

// EventType names what changed
type EventType int

const (
	// EventLoading fires when a fetch starts
	EventLoading EventType = iota + 1
	// EventResults fires when a fetch finishes, successfully or not
	EventResults
	// EventSelection fires when the selected job changes
	EventSelection
	// EventSaved fires when the saved set changes
	EventSaved
)

func (t EventType) String() string {
	switch t {
	case EventLoading:
		return "loading"
	case EventResults:
		return "results"
	case EventSelection:
		return "selection"
	case EventSaved:
		return "saved"
	default:
		return "unknown"
	}
}

// Event carries the state as it was when the change was committed
type Event struct {
	Type  EventType
	State State
}

// Listener receives events outside the aggregator lock. It may call back
// into the aggregator.
type Listener func(Event)
