package coaptest

import (
	"testing"
	"time"

	"github.com/niki4/lwm2m-server/coap"
)

func TestEngineRegisterInvokesMonitor(t *testing.T) {
	e := New()

	var gotName string
	var gotStatus coap.Status
	e.SetMonitoringCallback(func(client coap.ClientID, name string, status coap.Status, lifetime time.Duration) {
		gotName = name
		gotStatus = status
	})

	id := e.Register("sensor-01", 5*time.Minute)
	if id == 0 {
		t.Fatal("expected nonzero client id")
	}
	if gotName != "sensor-01" {
		t.Errorf("name = %q, want sensor-01", gotName)
	}
	if gotStatus != coap.StatusCreated {
		t.Errorf("status = %v, want StatusCreated", gotStatus)
	}
}

func TestEngineReadRoundTrip(t *testing.T) {
	e := New()
	id := e.Register("sensor-01", time.Minute)

	uri := coap.ResourceURI(3, 0, 0)

	var gotData []byte
	var gotStatus coap.Status
	done := make(chan struct{})
	err := e.Read(id, uri, func(client coap.ClientID, u coap.URI, status coap.Status, format coap.Format, data []byte, ud any) {
		gotStatus = status
		gotData = data
		close(done)
	}, nil)
	if err != nil {
		t.Fatalf("Read submission failed: %v", err)
	}

	if err := e.RespondRead(id, uri, coap.StatusContent, coap.FormatText, []byte("OK")); err != nil {
		t.Fatalf("RespondRead failed: %v", err)
	}
	<-done

	if gotStatus != coap.StatusContent {
		t.Errorf("status = %v, want StatusContent", gotStatus)
	}
	if string(gotData) != "OK" {
		t.Errorf("data = %q, want OK", gotData)
	}
}

func TestEngineObserveThenNotify(t *testing.T) {
	e := New()
	id := e.Register("sensor-01", time.Minute)
	uri := coap.ResourceURI(3, 0, 0)

	var obsStatus coap.Status
	if err := e.Observe(id, uri, func(client coap.ClientID, u coap.URI, status coap.Status, format coap.Format, data []byte, ud any) {
		obsStatus = status
	}, nil); err != nil {
		t.Fatalf("Observe submission failed: %v", err)
	}
	if err := e.RespondObserve(id, uri, coap.StatusContent); err != nil {
		t.Fatalf("RespondObserve failed: %v", err)
	}
	if obsStatus != coap.StatusContent {
		t.Fatalf("observe status = %v, want StatusContent", obsStatus)
	}

	var notifyCount int
	var notifyData []byte
	// Re-register the callback via a second Observe-like path is not how
	// notify works: notify reuses the fn captured at RespondObserve time,
	// so we verify through a fresh engine/callback pairing instead.
	e2 := New()
	id2 := e2.Register("sensor-02", time.Minute)
	uri2 := coap.ResourceURI(3, 0, 0)
	// The first invocation is the observe ack from RespondObserve, which also
	// carries StatusContent and format 0 (== FormatText); only later
	// invocations are notifications.
	acked := false
	e2.Observe(id2, uri2, func(client coap.ClientID, u coap.URI, status coap.Status, format coap.Format, data []byte, ud any) {
		if !acked {
			acked = true
			return
		}
		if status == coap.StatusContent && format == coap.FormatText {
			notifyCount++
			notifyData = data
		}
	}, nil)
	e2.RespondObserve(id2, uri2, coap.StatusContent)

	if err := e2.NotifyResource(id2, uri2, []byte("42")); err != nil {
		t.Fatalf("NotifyResource failed: %v", err)
	}
	if notifyCount != 1 {
		t.Fatalf("notifyCount = %d, want 1", notifyCount)
	}
	if string(notifyData) != "42" {
		t.Errorf("notifyData = %q, want 42", notifyData)
	}
}

func TestEngineObjectPayloadRoundTrip(t *testing.T) {
	values := []coap.Value{
		{ResourceID: 0, Data: []byte("a")},
		{ResourceID: 1, Data: []byte("b")},
		{ResourceID: 7, Data: []byte("c")},
	}
	encoded := EncodeObjectPayload(values...)

	decoded, err := DecodeObjectPayload(encoded)
	if err != nil {
		t.Fatalf("DecodeObjectPayload failed: %v", err)
	}
	if len(decoded) != 3 {
		t.Fatalf("got %d values, want 3", len(decoded))
	}
	for i, v := range values {
		if decoded[i].ResourceID != v.ResourceID || string(decoded[i].Data) != string(v.Data) {
			t.Errorf("value %d: got %+v, want %+v", i, decoded[i], v)
		}
	}
}

func TestEngineRejectSubmission(t *testing.T) {
	e := New()
	e.RejectSubmission = errClosedForTest
	id := e.Register("sensor-01", time.Minute)
	uri := coap.ResourceURI(3, 0, 0)

	err := e.Write(id, uri, coap.FormatText, []byte("X"), func(coap.ClientID, coap.URI, coap.Status, coap.Format, []byte, any) {}, nil)
	if err == nil {
		t.Fatal("expected submission error")
	}
}

var errClosedForTest = &testError{"engine closed"}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }
