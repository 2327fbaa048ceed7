package wire

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/simbridge/simbridge-go/pkg/native"
)

func TestFloat64Layout(t *testing.T) {
	payload := EncodeFloat64(42.037)
	if len(payload) != 8 {
		t.Fatalf("len = %d, want 8", len(payload))
	}

	v, err := DecodeFloat64(payload)
	if err != nil {
		t.Fatalf("DecodeFloat64: %v", err)
	}
	if v != 42.037 {
		t.Errorf("value = %v, want 42.037", v)
	}

	// 1.0 little-endian: 00 00 00 00 00 00 f0 3f
	one := EncodeFloat64(1.0)
	if one[7] != 0x3f || one[6] != 0xf0 {
		t.Errorf("layout = % x, want little-endian IEEE-754", one)
	}
}

func TestFloat64Special(t *testing.T) {
	v, err := DecodeFloat64(EncodeFloat64(math.Inf(-1)))
	if err != nil {
		t.Fatalf("DecodeFloat64: %v", err)
	}
	if !math.IsInf(v, -1) {
		t.Errorf("value = %v, want -Inf", v)
	}
}

func TestBool(t *testing.T) {
	tests := []struct {
		payload []byte
		want    bool
	}{
		{EncodeBool(true), true},
		{EncodeBool(false), false},
		{EncodeInt32(-1), true},
		{EncodeInt32(7), true},
	}

	for _, tt := range tests {
		got, err := DecodeBool(tt.payload)
		if err != nil {
			t.Fatalf("DecodeBool(% x): %v", tt.payload, err)
		}
		if got != tt.want {
			t.Errorf("DecodeBool(% x) = %v, want %v", tt.payload, got, tt.want)
		}
	}
}

func TestInt64(t *testing.T) {
	v, err := DecodeInt64(EncodeInt64(-1234567890123))
	if err != nil {
		t.Fatalf("DecodeInt64: %v", err)
	}
	if v != -1234567890123 {
		t.Errorf("value = %d", v)
	}
}

func TestString256(t *testing.T) {
	payload, err := EncodeString256("Cessna Skyhawk 172SP")
	if err != nil {
		t.Fatalf("EncodeString256: %v", err)
	}
	if len(payload) != String256Size {
		t.Fatalf("len = %d, want %d", len(payload), String256Size)
	}

	s, err := DecodeString256(payload)
	if err != nil {
		t.Fatalf("DecodeString256: %v", err)
	}
	if s != "Cessna Skyhawk 172SP" {
		t.Errorf("value = %q", s)
	}

	t.Run("TooLong", func(t *testing.T) {
		_, err := EncodeString256(strings.Repeat("x", String256Size))
		if !errors.Is(err, ErrStringTooLong) {
			t.Errorf("err = %v, want ErrStringTooLong", err)
		}
	})

	t.Run("NoTerminator", func(t *testing.T) {
		raw := []byte(strings.Repeat("y", String256Size))
		s, err := DecodeString256(raw)
		if err != nil {
			t.Fatalf("DecodeString256: %v", err)
		}
		if len(s) != String256Size {
			t.Errorf("len = %d, want %d", len(s), String256Size)
		}
	})
}

func TestShortPayload(t *testing.T) {
	if _, err := DecodeFloat64([]byte{1, 2, 3}); !errors.Is(err, ErrShortPayload) {
		t.Errorf("DecodeFloat64 err = %v, want ErrShortPayload", err)
	}
	if _, err := DecodeInt32(nil); !errors.Is(err, ErrShortPayload) {
		t.Errorf("DecodeInt32 err = %v, want ErrShortPayload", err)
	}
	if _, err := DecodeString256(make([]byte, 10)); !errors.Is(err, ErrShortPayload) {
		t.Errorf("DecodeString256 err = %v, want ErrShortPayload", err)
	}
}

func TestPaddedPayload(t *testing.T) {
	padded := append(EncodeFloat64(3.5), 0xde, 0xad)
	v, err := DecodeFloat64(padded)
	if err != nil {
		t.Fatalf("DecodeFloat64: %v", err)
	}
	if v != 3.5 {
		t.Errorf("value = %v, want 3.5", v)
	}
}

func TestValidateInvalidType(t *testing.T) {
	if err := Validate(native.DataTypeInvalid, []byte{0}); !errors.Is(err, ErrInvalidDataType) {
		t.Errorf("err = %v, want ErrInvalidDataType", err)
	}
	if Size(native.DataTypeString256) != 256 {
		t.Errorf("Size(STRING256) = %d", Size(native.DataTypeString256))
	}
}
