package demux

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simbridge/simbridge-go/pkg/native"
)

func TestRouteValue(t *testing.T) {
	r := NewRouter(nil)

	var got []byte
	r.SetValueRoute(7, ValueSinkFunc(func(field native.FieldID, payload []byte) error {
		assert.Equal(t, native.FieldID(7), field)
		got = payload
		return nil
	}))

	assert.True(t, r.RouteValue(7, []byte{1, 2}))
	assert.Equal(t, []byte{1, 2}, got)

	t.Run("UnknownFieldDropped", func(t *testing.T) {
		assert.False(t, r.RouteValue(8, []byte{3}))
	})

	t.Run("RemovedRouteDropped", func(t *testing.T) {
		r.RemoveValueRoute(7)
		assert.False(t, r.HasValueRoute(7))
		assert.False(t, r.RouteValue(7, []byte{4}))
		assert.Equal(t, []byte{1, 2}, got)
	})
}

func TestRouteEvent(t *testing.T) {
	r := NewRouter(nil)

	calls := 0
	r.SetEventRoute(3, EventSinkFunc(func(event native.EventID, data uint32) error {
		calls++
		assert.Equal(t, native.EventID(11), event)
		assert.Equal(t, uint32(1), data)
		return nil
	}))

	require.True(t, r.RouteEvent(3, 11, 1))
	assert.False(t, r.RouteEvent(4, 11, 1))
	assert.Equal(t, 1, calls)
}

func TestOwnerErrorIsSwallowed(t *testing.T) {
	r := NewRouter(nil)
	r.SetValueRoute(1, ValueSinkFunc(func(native.FieldID, []byte) error {
		return errors.New("short payload")
	}))

	assert.True(t, r.RouteValue(1, nil))
}

func TestClear(t *testing.T) {
	r := NewRouter(nil)
	r.SetValueRoute(1, ValueSinkFunc(func(native.FieldID, []byte) error { return nil }))
	r.SetEventRoute(2, EventSinkFunc(func(native.EventID, uint32) error { return nil }))

	r.Clear()

	assert.False(t, r.HasValueRoute(1))
	assert.False(t, r.HasEventRoute(2))
}

func TestOwnerMayMutateRoutes(t *testing.T) {
	r := NewRouter(nil)
	r.SetValueRoute(1, ValueSinkFunc(func(field native.FieldID, _ []byte) error {
		r.RemoveValueRoute(field)
		return nil
	}))

	assert.True(t, r.RouteValue(1, nil))
	assert.False(t, r.HasValueRoute(1))
}
