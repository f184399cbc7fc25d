package events

// EventType represents the type of an event in the system.
type EventType string

// Event type constants
const (
	// Operation events
	EventTypeAdd         EventType = "add"
	EventTypeGet         EventType = "get"
	EventTypeWithdraw    EventType = "withdraw"
	EventTypeSend        EventType = "send"
	EventTypeChangeLimit EventType = "changeLimit"

	// EventTypeError carries validation and lookup failures to error subscribers.
	EventTypeError EventType = "error"
)

// Operations lists the operation event types in the order they are documented.
var Operations = []EventType{
	EventTypeAdd,
	EventTypeGet,
	EventTypeWithdraw,
	EventTypeSend,
	EventTypeChangeLimit,
}

func (et EventType) String() string {
	return string(et)
}

// IsOperation reports whether et names one of the ledger operations.
func (et EventType) IsOperation() bool {
	for _, op := range Operations {
		if op == et {
			return true
		}
	}
	return false
}
