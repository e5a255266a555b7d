package transaction

import (
	"testing"

	"github.com/niki4/lwm2m-server/coap"
)

func TestNewSlotSentinel(t *testing.T) {
	s := NewSlot(1, coap.ResourceURI(3, 0, 0))
	if !s.Pending() {
		t.Fatal("new slot should be pending")
	}
	if s.DataLen != -1 {
		t.Errorf("DataLen = %d, want -1", s.DataLen)
	}
}

func TestSlotComplete(t *testing.T) {
	s := NewSlot(1, coap.ResourceURI(3, 0, 0))
	s.Complete(coap.StatusContent, coap.FormatText, []byte("OK"))

	if s.Pending() {
		t.Error("slot should not be pending after Complete")
	}
	if s.Status != coap.StatusContent {
		t.Errorf("Status = %v, want StatusContent", s.Status)
	}
	if string(s.Data) != "OK" {
		t.Errorf("Data = %q, want OK", s.Data)
	}
}
