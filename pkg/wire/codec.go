package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/simbridge/simbridge-go/pkg/native"
)

// Codec errors.
var (
	ErrShortPayload    = errors.New("payload shorter than field layout")
	ErrStringTooLong   = errors.New("string exceeds fixed field size")
	ErrInvalidDataType = errors.New("invalid data type")
)

// String256Size is the fixed size of a STRING256 field.
const String256Size = 256

// Size returns the payload size for a data type, or 0 if it is invalid.
func Size(t native.DataType) int {
	switch t {
	case native.DataTypeInt32:
		return 4
	case native.DataTypeInt64, native.DataTypeFloat64:
		return 8
	case native.DataTypeString256:
		return String256Size
	default:
		return 0
	}
}

// Validate checks that payload is large enough for t.
func Validate(t native.DataType, payload []byte) error {
	n := Size(t)
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDataType, t)
	}
	if len(payload) < n {
		return fmt.Errorf("%w: %s needs %d bytes, got %d", ErrShortPayload, t, n, len(payload))
	}
	return nil
}

// EncodeFloat64 encodes a FLOAT64 payload.
func EncodeFloat64(v float64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
	return buf
}

// DecodeFloat64 decodes a FLOAT64 payload.
func DecodeFloat64(payload []byte) (float64, error) {
	if err := Validate(native.DataTypeFloat64, payload); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(payload)), nil
}

// EncodeInt32 encodes an INT32 payload.
func EncodeInt32(v int32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(v))
	return buf
}

// DecodeInt32 decodes an INT32 payload.
func DecodeInt32(payload []byte) (int32, error) {
	if err := Validate(native.DataTypeInt32, payload); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(payload)), nil
}

// EncodeBool encodes a boolean as INT32 0 or 1.
func EncodeBool(v bool) []byte {
	if v {
		return EncodeInt32(1)
	}
	return EncodeInt32(0)
}

// DecodeBool decodes an INT32 payload as a boolean.
func DecodeBool(payload []byte) (bool, error) {
	v, err := DecodeInt32(payload)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// EncodeInt64 encodes an INT64 payload.
func EncodeInt64(v int64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(v))
	return buf
}

// DecodeInt64 decodes an INT64 payload.
func DecodeInt64(payload []byte) (int64, error) {
	if err := Validate(native.DataTypeInt64, payload); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(payload)), nil
}

// EncodeString256 encodes a STRING256 payload. The last byte is always NUL.
func EncodeString256(s string) ([]byte, error) {
	if len(s) >= String256Size {
		return nil, fmt.Errorf("%w: %d bytes", ErrStringTooLong, len(s))
	}
	buf := make([]byte, String256Size)
	copy(buf, s)
	return buf, nil
}

// DecodeString256 decodes a STRING256 payload.
func DecodeString256(payload []byte) (string, error) {
	if err := Validate(native.DataTypeString256, payload); err != nil {
		return "", err
	}
	field := payload[:String256Size]
	if i := bytes.IndexByte(field, 0); i >= 0 {
		field = field[:i]
	}
	return string(field), nil
}
