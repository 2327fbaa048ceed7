package log

import (
	"io"

	"github.com/fxamacker/cbor/v2"
)

// Trace events are encoded deterministically with RFC 3339 nanosecond
// timestamps so two captures of the same session compare byte for byte.
var (
	traceEnc = mustEncMode(cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	})
	traceDec = mustDecMode(cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	})
)

func mustEncMode(opts cbor.EncOptions) cbor.EncMode {
	em, err := opts.EncMode()
	if err != nil {
		panic("log: CBOR encoder options: " + err.Error())
	}
	return em
}

func mustDecMode(opts cbor.DecOptions) cbor.DecMode {
	dm, err := opts.DecMode()
	if err != nil {
		panic("log: CBOR decoder options: " + err.Error())
	}
	return dm
}

// EncodeEvent encodes an Event to CBOR.
func EncodeEvent(event Event) ([]byte, error) {
	return traceEnc.Marshal(event)
}

// DecodeEvent decodes one CBOR-encoded Event.
func DecodeEvent(data []byte) (Event, error) {
	var event Event
	if err := traceDec.Unmarshal(data, &event); err != nil {
		return Event{}, err
	}
	return event, nil
}

// NewEncoder creates a trace event encoder writing to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return traceEnc.NewEncoder(w)
}

// NewDecoder creates a trace event decoder reading from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return traceDec.NewDecoder(r)
}
