package coaptest

import (
	"encoding/binary"
	"fmt"

	"github.com/niki4/lwm2m-server/coap"
)

// EncodeObjectPayload builds a minimal multi-Resource payload for tests
// driving an Object-scoped notify or read: each Value becomes a
// (resourceID uint16, length uint16, data) record, concatenated. This is
// not a real LWM2M TLV encoding -- the real codec lives in the external
// engine -- it only needs to round-trip through DecodeObjectPayload so
// tests can express "the client's payload covered Resources {0, 1, 7}"
// without depending on a real TLV library.
func EncodeObjectPayload(values ...coap.Value) []byte {
	var buf []byte
	for _, v := range values {
		header := make([]byte, 4)
		binary.BigEndian.PutUint16(header[0:2], v.ResourceID)
		binary.BigEndian.PutUint16(header[2:4], uint16(len(v.Data)))
		buf = append(buf, header...)
		buf = append(buf, v.Data...)
	}
	return buf
}

// DecodeObjectPayload reverses EncodeObjectPayload.
func DecodeObjectPayload(data []byte) ([]coap.Value, error) {
	var values []coap.Value
	for len(data) > 0 {
		if len(data) < 4 {
			return nil, fmt.Errorf("coaptest: truncated object payload header")
		}
		resID := binary.BigEndian.Uint16(data[0:2])
		length := binary.BigEndian.Uint16(data[2:4])
		data = data[4:]
		if len(data) < int(length) {
			return nil, fmt.Errorf("coaptest: truncated object payload body")
		}
		values = append(values, coap.Value{ResourceID: resID, Data: append([]byte(nil), data[:length]...)})
		data = data[length:]
	}
	return values, nil
}
