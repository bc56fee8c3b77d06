package escrow

import "sync"

// EventKind discriminates ledger notifications.
type EventKind uint8

// Ledger notification kinds.
const (
	EventPoolAdded EventKind = iota + 1
	EventPoolStatusChanged
	EventContributionAdded
	EventPaidout
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventPoolAdded:
		return "pool-added"
	case EventPoolStatusChanged:
		return "pool-status-changed"
	case EventContributionAdded:
		return "contribution-added"
	case EventPaidout:
		return "paidout"
	default:
		return "unknown"
	}
}

// Event is a single ledger notification. Fields beyond Kind and Pool are
// populated per kind: Contribution/Owner/Amount for contribution and payout
// events, OldStatus/NewStatus for status changes.
type Event struct {
	Kind         EventKind
	Pool         PoolID
	Contribution ContributionID
	Owner        AccountID
	Amount       uint64
	OldStatus    Status
	NewStatus    Status
}

// EventSink receives ledger notifications. Emit is called after the
// originating operation has committed, while the ledger lock is still held;
// implementations must not call back into the ledger.
type EventSink interface {
	Emit(Event)
}

// NopSink discards all events.
type NopSink struct{}

// Emit discards the event.
func (NopSink) Emit(Event) {}

// MemSink records emitted events in order, for tests and audit trails.
type MemSink struct {
	mu     sync.Mutex
	events []Event
}

// NewMemSink creates a new empty recording sink.
func NewMemSink() *MemSink {
	return &MemSink{}
}

// Emit records the event.
func (s *MemSink) Emit(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// Events returns a copy of all recorded events in emission order.
func (s *MemSink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}
