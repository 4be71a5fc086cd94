package db

import "testing"

func TestBrokerCollapsesSignals(t *testing.T) {
	b := NewBroker()
	ch, cancel := b.Subscribe(TableStudents)
	defer cancel()

	b.Publish(TableStudents)
	b.Publish(TableStudents)
	b.Publish(TableStudents)

	select {
	case <-ch:
	default:
		t.Fatal("expected a pending signal")
	}
	// The burst collapsed into exactly one.
	select {
	case <-ch:
		t.Fatal("burst should collapse into a single signal")
	default:
	}
}

func TestBrokerScopesByTable(t *testing.T) {
	b := NewBroker()
	ch, cancel := b.Subscribe(TableTeachers)
	defer cancel()

	b.Publish(TableStudents)
	select {
	case <-ch:
		t.Fatal("signal leaked across tables")
	default:
	}
}

func TestBrokerCancelStopsSignals(t *testing.T) {
	b := NewBroker()
	ch, cancel := b.Subscribe(TableAttendance)
	cancel()

	b.Publish(TableAttendance)
	select {
	case <-ch:
		t.Fatal("signal after cancel")
	default:
	}
}
