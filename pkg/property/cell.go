package property

import (
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/simbridge/simbridge-go/pkg/wire"
)

// Cell is a typed property cell.
type Cell[T comparable] struct {
	desc   Descriptor
	def    T
	writer Writer

	decode    func([]byte) (T, error)
	encode    func(T) ([]byte, error)
	parse     func(string) (T, error)
	normalize func(T) T
	equal     func(a, b T) bool

	mu        sync.RWMutex
	value     T
	listeners map[uint64]func(Change)
	nextID    uint64
}

func newCell[T comparable](desc Descriptor, def T, w Writer) *Cell[T] {
	return &Cell[T]{
		desc:      desc,
		def:       def,
		writer:    w,
		value:     def,
		normalize: func(v T) T { return v },
		equal:     func(a, b T) bool { return a == b },
		listeners: make(map[uint64]func(Change)),
	}
}

// NewFloat creates a FLOAT64 cell rounded to desc.Decimals.
func NewFloat(desc Descriptor, def float64, w Writer) *Cell[float64] {
	c := newCell(desc, def, w)
	c.decode = wire.DecodeFloat64
	c.encode = func(v float64) ([]byte, error) { return wire.EncodeFloat64(v), nil }
	c.parse = func(s string) (float64, error) { return strconv.ParseFloat(s, 64) }
	c.normalize = func(v float64) float64 { return Round(v, desc.Decimals) }
	c.equal = func(a, b float64) bool {
		return a == b || (math.IsNaN(a) && math.IsNaN(b))
	}
	return c
}

// NewBool creates an INT32 cell exposed as a boolean.
func NewBool(desc Descriptor, def bool, w Writer) *Cell[bool] {
	c := newCell(desc, def, w)
	c.decode = wire.DecodeBool
	c.encode = func(v bool) ([]byte, error) { return wire.EncodeBool(v), nil }
	c.parse = strconv.ParseBool
	return c
}

// NewInt creates an INT64 cell.
func NewInt(desc Descriptor, def int64, w Writer) *Cell[int64] {
	c := newCell(desc, def, w)
	c.decode = wire.DecodeInt64
	c.encode = func(v int64) ([]byte, error) { return wire.EncodeInt64(v), nil }
	c.parse = func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) }
	return c
}

// NewString creates a STRING256 cell.
func NewString(desc Descriptor, def string, w Writer) *Cell[string] {
	c := newCell(desc, def, w)
	c.decode = wire.DecodeString256
	c.encode = wire.EncodeString256
	c.parse = func(s string) (string, error) { return s, nil }
	return c
}

// Descriptor returns the cell metadata.
func (c *Cell[T]) Descriptor() Descriptor {
	return c.desc
}

// Get returns the last decoded value.
func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Value returns the last decoded value as any.
func (c *Cell[T]) Value() any {
	return c.Get()
}

// Default returns the declared default value.
func (c *Cell[T]) Default() T {
	return c.def
}

// Set writes v to the peer if it differs from the cached value, then
// requests the authoritative value. The cache is left untouched.
func (c *Cell[T]) Set(v T) error {
	if !c.desc.Writable {
		return fmt.Errorf("%s: %w", c.desc.Key, ErrReadOnly)
	}
	if c.writer == nil {
		return fmt.Errorf("%s: %w", c.desc.Key, ErrNoWriter)
	}

	if c.equal(c.Get(), v) {
		return nil
	}

	payload, err := c.encode(v)
	if err != nil {
		return fmt.Errorf("%s: encode: %w", c.desc.Key, err)
	}
	if err := c.writer.WriteValue(c.desc, payload); err != nil {
		return fmt.Errorf("%s: write: %w", c.desc.Key, err)
	}
	if err := c.writer.RequestValue(c.desc); err != nil {
		return fmt.Errorf("%s: resync: %w", c.desc.Key, err)
	}
	return nil
}

// SetText parses s according to the cell type and calls Set.
func (c *Cell[T]) SetText(s string) error {
	v, err := c.parse(s)
	if err != nil {
		return fmt.Errorf("%s: parse %q: %w", c.desc.Key, s, err)
	}
	return c.Set(v)
}

// Decode applies a raw payload. It returns true if the value changed.
func (c *Cell[T]) Decode(payload []byte) (bool, error) {
	v, err := c.decode(payload)
	if err != nil {
		return false, fmt.Errorf("%s: %w", c.desc.Key, err)
	}
	return c.update(c.normalize(v)), nil
}

// Reset restores the default value. It returns true if the value changed.
func (c *Cell[T]) Reset() bool {
	return c.update(c.def)
}

// OnChange registers fn to be called after every real change.
// Listeners run on the goroutine that produced the change.
func (c *Cell[T]) OnChange(fn func(Change)) (cancel func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Cell[T]) update(v T) bool {
	c.mu.Lock()
	old := c.value
	if c.equal(old, v) {
		c.mu.Unlock()
		return false
	}
	c.value = v
	listeners := make([]func(Change), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	change := Change{Key: c.desc.Key, Field: c.desc.Field, Old: old, New: v}
	for _, fn := range listeners {
		fn(change)
	}
	return true
}

// Round rounds v to the given number of decimals, half to even.
// Negative decimals leave v unchanged.
func Round(v float64, decimals int) float64 {
	if decimals < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	scale := math.Pow10(decimals)
	scaled := v * scale
	if math.IsInf(scaled, 0) {
		return v
	}
	return math.RoundToEven(scaled) / scale
}

// Compile-time interface satisfaction checks.
var (
	_ Property = (*Cell[float64])(nil)
	_ Property = (*Cell[bool])(nil)
	_ Property = (*Cell[int64])(nil)
	_ Property = (*Cell[string])(nil)
)
