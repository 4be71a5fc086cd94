package db

import "sync"

// Table names used with the change broker.
const (
	TableStudents     = "students"
	TableTeachers     = "teachers"
	TableAttendance   = "attendance"
	TableSchoolPeriod = "school_period"
	TableSchoolEvents = "school_events"
)

// Broker fans out table-change signals so callers can keep live lists
// current. Each mutation publishes the table name; subscribers re-query and
// re-emit the full snapshot. Signals are collapsed: a slow subscriber sees
// at least one signal for any burst of mutations, not one per mutation.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan struct{}]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[chan struct{}]struct{})}
}

// Subscribe registers for change signals on one table. The returned cancel
// func removes the subscription; after cancel no further signals arrive.
func (b *Broker) Subscribe(table string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	b.mu.Lock()
	if b.subs[table] == nil {
		b.subs[table] = make(map[chan struct{}]struct{})
	}
	b.subs[table][ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		delete(b.subs[table], ch)
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish signals every subscriber of the table. Non-blocking: a pending
// signal is enough, subscribers re-query the current state anyway.
func (b *Broker) Publish(table string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[table] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
