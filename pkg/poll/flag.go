package poll

import "sync"

// Flag is a boolean that reports changes.
type Flag struct {
	mu       sync.Mutex
	value    bool
	onChange func(bool)
}

// Get returns the current value.
func (f *Flag) Get() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

// Set stores v and fires the change callback if the value flipped.
// It returns true on a flip.
func (f *Flag) Set(v bool) bool {
	f.mu.Lock()
	if f.value == v {
		f.mu.Unlock()
		return false
	}
	f.value = v
	fn := f.onChange
	f.mu.Unlock()

	if fn != nil {
		fn(v)
	}
	return true
}

// OnChange sets the change callback.
func (f *Flag) OnChange(fn func(bool)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onChange = fn
}
