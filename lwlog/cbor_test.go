package lwlog

import (
	"testing"
	"time"
)

func TestEventCBORRoundTrip(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 15, 32, 123456789, time.UTC)
	original := Event{
		Timestamp:  ts,
		ConnID:     "abc12345-def6-7890-abcd-ef1234567890",
		Direction:  DirectionOut,
		Category:   CategoryLifecycle,
		DeviceName: "urn:imei:123456789012345",
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if !decoded.Timestamp.Equal(original.Timestamp) {
		t.Errorf("Timestamp: got %v, want %v", decoded.Timestamp, original.Timestamp)
	}
	if decoded.ConnID != original.ConnID {
		t.Errorf("ConnID: got %q, want %q", decoded.ConnID, original.ConnID)
	}
	if decoded.Direction != original.Direction {
		t.Errorf("Direction: got %v, want %v", decoded.Direction, original.Direction)
	}
	if decoded.Category != original.Category {
		t.Errorf("Category: got %v, want %v", decoded.Category, original.Category)
	}
	if decoded.DeviceName != original.DeviceName {
		t.Errorf("DeviceName: got %q, want %q", decoded.DeviceName, original.DeviceName)
	}
}

func TestLifecycleEventCBORRoundTrip(t *testing.T) {
	original := Event{
		Timestamp:  time.Now(),
		ConnID:     "conn-123",
		Direction:  DirectionIn,
		Category:   CategoryLifecycle,
		DeviceName: "device-001",
		Lifecycle: &LifecycleEventData{
			Kind:     "registered",
			Lifetime: 5 * time.Minute,
		},
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.Lifecycle == nil {
		t.Fatal("Lifecycle is nil")
	}
	if decoded.Lifecycle.Kind != original.Lifecycle.Kind {
		t.Errorf("Lifecycle.Kind: got %q, want %q", decoded.Lifecycle.Kind, original.Lifecycle.Kind)
	}
	if decoded.Lifecycle.Lifetime != original.Lifecycle.Lifetime {
		t.Errorf("Lifecycle.Lifetime: got %v, want %v", decoded.Lifecycle.Lifetime, original.Lifecycle.Lifetime)
	}
}

func TestTransactionEventCBORRoundTrip(t *testing.T) {
	resID := uint16(1)

	original := Event{
		Timestamp:  time.Now(),
		ConnID:     "conn-456",
		Direction:  DirectionOut,
		Category:   CategoryTransaction,
		DeviceName: "device-002",
		Transaction: &TransactionEventData{
			Op:             "write",
			ObjectID:       3,
			InstanceID:     0,
			ResourceID:     &resID,
			Status:         0x44, // COAP_204_CHANGED
			ProcessingTime: 12 * time.Millisecond,
		},
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.Transaction == nil {
		t.Fatal("Transaction is nil")
	}
	if decoded.Transaction.Op != original.Transaction.Op {
		t.Errorf("Transaction.Op: got %q, want %q", decoded.Transaction.Op, original.Transaction.Op)
	}
	if decoded.Transaction.ObjectID != original.Transaction.ObjectID {
		t.Errorf("Transaction.ObjectID: got %d, want %d", decoded.Transaction.ObjectID, original.Transaction.ObjectID)
	}
	if decoded.Transaction.ResourceID == nil || *decoded.Transaction.ResourceID != *original.Transaction.ResourceID {
		t.Errorf("Transaction.ResourceID: got %v, want %v", decoded.Transaction.ResourceID, original.Transaction.ResourceID)
	}
	if decoded.Transaction.Status != original.Transaction.Status {
		t.Errorf("Transaction.Status: got %d, want %d", decoded.Transaction.Status, original.Transaction.Status)
	}
}

func TestNotifyEventCBORRoundTrip(t *testing.T) {
	original := Event{
		Timestamp:  time.Now(),
		ConnID:     "conn-789",
		Direction:  DirectionOut,
		Category:   CategoryNotify,
		DeviceName: "device-003",
		Notify: &NotifyEventData{
			Scope:      "object",
			ObjectID:   3303,
			InstanceID: 0,
			DataLen:    48,
		},
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.Notify == nil {
		t.Fatal("Notify is nil")
	}
	if decoded.Notify.Scope != original.Notify.Scope {
		t.Errorf("Notify.Scope: got %q, want %q", decoded.Notify.Scope, original.Notify.Scope)
	}
	if decoded.Notify.DataLen != original.Notify.DataLen {
		t.Errorf("Notify.DataLen: got %d, want %d", decoded.Notify.DataLen, original.Notify.DataLen)
	}
}

func TestErrorEventCBORRoundTrip(t *testing.T) {
	original := Event{
		Timestamp: time.Now(),
		ConnID:    "conn-999",
		Direction: DirectionIn,
		Category:  CategoryError,
		Error: &ErrorEventData{
			Context: "monitor_callback",
			Message: "unknown client id",
		},
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.Error == nil {
		t.Fatal("Error is nil")
	}
	if decoded.Error.Context != original.Error.Context {
		t.Errorf("Error.Context: got %q, want %q", decoded.Error.Context, original.Error.Context)
	}
	if decoded.Error.Message != original.Error.Message {
		t.Errorf("Error.Message: got %q, want %q", decoded.Error.Message, original.Error.Message)
	}
}

func TestEventCBORUsesIntegerKeys(t *testing.T) {
	event := Event{
		Timestamp: time.Now(),
		ConnID:    "conn-123",
		Direction: DirectionIn,
		Category:  CategoryLifecycle,
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	var rawMap map[uint64]any
	if err := logDecMode.Unmarshal(data, &rawMap); err != nil {
		t.Fatalf("failed to decode as map: %v", err)
	}

	expectedKeys := []uint64{1, 2, 3, 4}
	for _, key := range expectedKeys {
		if _, ok := rawMap[key]; !ok {
			t.Errorf("expected integer key %d not found in encoded data", key)
		}
	}

	var stringMap map[string]any
	if err := logDecMode.Unmarshal(data, &stringMap); err == nil && len(stringMap) > 0 {
		t.Error("encoded data contains string keys, expected integer keys only")
	}
}
