package h264

import (
	"errors"
	"testing"

	"github.com/zsiec/avcparse/nalu"
)

// TestParseSEIExtendedTypeAndLength verifies that an SEI message whose
// type and length bytes are FF FF 05 FF 0A (two 0xff extension bytes
// plus a terminating 5 for the type, one 0xff extension byte plus a
// terminating 10 for the length) yields Type==515 and Length==265.
func TestParseSEIExtendedTypeAndLength(t *testing.T) {
	t.Parallel()
	payload := make([]byte, 265)
	for i := range payload {
		payload[i] = byte(i)
	}
	data := append([]byte{0x06, 0xff, 0xff, 0x05, 0xff, 0x0a}, payload...)

	msg, err := ParseSEI(nalu.Unit{Data: data})
	if err != nil {
		t.Fatalf("ParseSEI: %v", err)
	}
	if msg.Type != 515 {
		t.Errorf("Type = %d, want 515", msg.Type)
	}
	if msg.Length != 265 {
		t.Errorf("Length = %d, want 265", msg.Length)
	}
	if len(msg.Payload) != len(payload) {
		t.Errorf("Payload len = %d, want %d", len(msg.Payload), len(payload))
	}
}

func TestParseSEISingleByteTypeAndLength(t *testing.T) {
	t.Parallel()
	data := []byte{0x06, SEITypeUserDataRegisteredITUTT35, 0x03, 0xaa, 0xbb, 0xcc}

	msg, err := ParseSEI(nalu.Unit{Data: data})
	if err != nil {
		t.Fatalf("ParseSEI: %v", err)
	}
	if msg.Type != SEITypeUserDataRegisteredITUTT35 {
		t.Errorf("Type = %d, want %d", msg.Type, SEITypeUserDataRegisteredITUTT35)
	}
	if msg.Length != 3 {
		t.Errorf("Length = %d, want 3", msg.Length)
	}
	if len(msg.Payload) != 3 || msg.Payload[0] != 0xaa {
		t.Errorf("Payload = %v, want [0xaa 0xbb 0xcc ...]", msg.Payload)
	}
}

func TestParseSEIWrongNALType(t *testing.T) {
	t.Parallel()
	u := nalu.Unit{Data: []byte{0x67, 0x00, 0x00}} // SPS, not SEI
	_, err := ParseSEI(u)
	if !errors.Is(err, ErrWrongNALType) {
		t.Fatalf("got %v, want ErrWrongNALType", err)
	}
}

func TestParseSEITruncated(t *testing.T) {
	t.Parallel()
	u := nalu.Unit{Data: []byte{0x06, 0xff, 0xff}} // type extension never terminates
	_, err := ParseSEI(u)
	if err == nil {
		t.Fatal("expected an error for a truncated SEI message")
	}
}
