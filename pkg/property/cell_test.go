package property

import (
	"errors"
	"math"
	"testing"

	"github.com/simbridge/simbridge-go/pkg/native"
	"github.com/simbridge/simbridge-go/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubWriter struct{ mock.Mock }

func (w *stubWriter) WriteValue(d Descriptor, payload []byte) error {
	return w.Called(d.Field, payload).Error(0)
}

func (w *stubWriter) RequestValue(d Descriptor) error {
	return w.Called(d.Field).Error(0)
}

func fuelTotalQuantity() Descriptor {
	return Descriptor{
		Key:      "FuelTotalQuantity",
		Field:    native.FieldID(11),
		Request:  native.RequestID(3),
		Group:    native.GroupID(3),
		Name:     "FUEL TOTAL QUANTITY",
		Unit:     "gallons",
		Type:     native.DataTypeFloat64,
		Decimals: 1,
	}
}

func masterBattery() Descriptor {
	return Descriptor{
		Key:      "ElectricalMasterBattery",
		Field:    native.FieldID(3),
		Group:    native.GroupID(2),
		Name:     "ELECTRICAL MASTER BATTERY",
		Unit:     "bool",
		Type:     native.DataTypeInt32,
		Decimals: NoRounding,
		Writable: true,
		Event:    &EventBinding{ID: 1, Name: "TOGGLE_MASTER_BATTERY"},
	}
}

func recordChanges(p Property) *[]Change {
	var changes []Change
	p.OnChange(func(c Change) { changes = append(changes, c) })
	return &changes
}

func TestDecodeRoundsAndNotifies(t *testing.T) {
	cell := NewFloat(fuelTotalQuantity(), 0, nil)
	changes := recordChanges(cell)

	changed, err := cell.Decode(wire.EncodeFloat64(42.037))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 42.0, cell.Get())
	require.Len(t, *changes, 1)
	assert.Equal(t, Change{Key: "FuelTotalQuantity", Field: 11, Old: 0.0, New: 42.0}, (*changes)[0])
}

func TestDecodeIdempotent(t *testing.T) {
	cell := NewFloat(fuelTotalQuantity(), 0, nil)
	changes := recordChanges(cell)

	payload := wire.EncodeFloat64(42.037)
	_, err := cell.Decode(payload)
	require.NoError(t, err)
	changed, err := cell.Decode(payload)
	require.NoError(t, err)

	assert.False(t, changed)
	assert.Len(t, *changes, 1)

	// Jitter below the precision is not a change either.
	changed, err = cell.Decode(wire.EncodeFloat64(42.04))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Len(t, *changes, 1)
}

func TestDecodeNaNIdempotent(t *testing.T) {
	cell := NewFloat(fuelTotalQuantity(), 0, nil)
	changes := recordChanges(cell)

	nan := wire.EncodeFloat64(math.NaN())
	_, _ = cell.Decode(nan)
	_, _ = cell.Decode(nan)

	assert.Len(t, *changes, 1)
}

func TestDecodeShortPayload(t *testing.T) {
	cell := NewFloat(fuelTotalQuantity(), 0, nil)
	changes := recordChanges(cell)

	_, err := cell.Decode([]byte{1})
	assert.ErrorIs(t, err, wire.ErrShortPayload)
	assert.Empty(t, *changes)
	assert.Equal(t, 0.0, cell.Get())
}

func TestResetToDefault(t *testing.T) {
	cell := NewFloat(fuelTotalQuantity(), 0, nil)
	changes := recordChanges(cell)

	t.Run("AlreadyDefault", func(t *testing.T) {
		assert.False(t, cell.Reset())
		assert.Empty(t, *changes)
	})

	t.Run("AfterValue", func(t *testing.T) {
		_, err := cell.Decode(wire.EncodeFloat64(42.037))
		require.NoError(t, err)

		assert.True(t, cell.Reset())
		assert.Equal(t, 0.0, cell.Get())
		require.Len(t, *changes, 2)
		assert.Equal(t, 0.0, (*changes)[1].New)
		assert.Equal(t, 42.0, (*changes)[1].Old)
	})
}

func TestSetWritesAndResyncs(t *testing.T) {
	w := &stubWriter{}
	cell := NewBool(masterBattery(), false, w)
	changes := recordChanges(cell)

	w.On("WriteValue", native.FieldID(3), wire.EncodeBool(true)).Return(nil).Once()
	w.On("RequestValue", native.FieldID(3)).Return(nil).Once()

	require.NoError(t, cell.Set(true))

	w.AssertExpectations(t)
	// The write is not assumed to succeed.
	assert.False(t, cell.Get())
	assert.Empty(t, *changes)
}

func TestSetUnchangedIsNoop(t *testing.T) {
	w := &stubWriter{}
	cell := NewBool(masterBattery(), false, w)

	require.NoError(t, cell.Set(false))

	w.AssertNotCalled(t, "WriteValue", mock.Anything, mock.Anything)
	w.AssertNotCalled(t, "RequestValue", mock.Anything)
}

func TestSetReadOnly(t *testing.T) {
	w := &stubWriter{}
	cell := NewFloat(fuelTotalQuantity(), 0, w)

	err := cell.Set(12)
	assert.ErrorIs(t, err, ErrReadOnly)
	w.AssertNotCalled(t, "WriteValue", mock.Anything, mock.Anything)
}

func TestSetWriteFailureSkipsResync(t *testing.T) {
	w := &stubWriter{}
	cell := NewBool(masterBattery(), false, w)
	boom := errors.New("boom")

	w.On("WriteValue", native.FieldID(3), mock.Anything).Return(boom).Once()

	err := cell.Set(true)
	assert.ErrorIs(t, err, boom)
	w.AssertNotCalled(t, "RequestValue", mock.Anything)
}

func TestSetText(t *testing.T) {
	w := &stubWriter{}
	desc := fuelTotalQuantity()
	desc.Writable = true
	cell := NewFloat(desc, 0, w)

	w.On("WriteValue", native.FieldID(11), wire.EncodeFloat64(12.5)).Return(nil).Once()
	w.On("RequestValue", native.FieldID(11)).Return(nil).Once()

	require.NoError(t, cell.SetText("12.5"))
	w.AssertExpectations(t)

	assert.Error(t, cell.SetText("twelve"))
}

func TestStringCell(t *testing.T) {
	cell := NewString(Descriptor{Key: "AircraftTitle", Type: native.DataTypeString256}, "", nil)

	payload, err := wire.EncodeString256("Beechcraft Baron 58")
	require.NoError(t, err)

	changed, err := cell.Decode(payload)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "Beechcraft Baron 58", cell.Get())
}

func TestOnChangeCancel(t *testing.T) {
	cell := NewInt(Descriptor{Key: "Counter", Type: native.DataTypeInt64}, 0, nil)

	calls := 0
	cancel := cell.OnChange(func(Change) { calls++ })

	_, _ = cell.Decode(wire.EncodeInt64(1))
	cancel()
	_, _ = cell.Decode(wire.EncodeInt64(2))

	assert.Equal(t, 1, calls)
	assert.Equal(t, int64(2), cell.Get())
}

func TestRound(t *testing.T) {
	tests := []struct {
		v        float64
		decimals int
		want     float64
	}{
		{42.037, 1, 42.0},
		{1234.6, 0, 1235},
		{0.6981317008, 4, 0.6981},
		{0.25, 1, 0.2},
		{7.123456789012, 10, 7.123456789},
		{3.14159, NoRounding, 3.14159},
	}

	for _, tt := range tests {
		if got := Round(tt.v, tt.decimals); got != tt.want {
			t.Errorf("Round(%v, %d) = %v, want %v", tt.v, tt.decimals, got, tt.want)
		}
	}
}
