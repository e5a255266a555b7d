package lifecycle

import "testing"

func TestQueuePushDrainFIFO(t *testing.T) {
	var q Queue
	q.Push(NewEvent("sensor-01", Registered))
	q.Push(NewEvent("sensor-02", Registered))
	q.Push(NewEvent("sensor-01", Deregistered))

	drained := q.Drain()
	if len(drained) != 3 {
		t.Fatalf("got %d events, want 3", len(drained))
	}
	if drained[0].DeviceName != "sensor-01" || drained[0].Kind != Registered {
		t.Errorf("first event = %+v", drained[0])
	}
	if drained[2].DeviceName != "sensor-01" || drained[2].Kind != Deregistered {
		t.Errorf("third event = %+v", drained[2])
	}

	if q.Len() != 0 {
		t.Error("queue should be empty after Drain")
	}
}

func TestQueueDrainEmpty(t *testing.T) {
	var q Queue
	if drained := q.Drain(); drained != nil {
		t.Errorf("Drain on empty queue = %+v, want nil", drained)
	}
}

func TestEventNameBound(t *testing.T) {
	long := make([]byte, MaxNameLength+10)
	for i := range long {
		long[i] = 'x'
	}
	e := NewEvent(string(long), Registered)
	if len(e.DeviceName) != MaxNameLength {
		t.Errorf("DeviceName length = %d, want %d", len(e.DeviceName), MaxNameLength)
	}
}

func TestEventKindString(t *testing.T) {
	cases := map[EventKind]string{
		Registered:   "registered",
		Deregistered: "deregistered",
		Updated:      "updated",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("%v.String() = %q, want %q", kind, got, want)
		}
	}
}
