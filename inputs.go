package narrativex

import "sync"

// Inputs holds live domain flags set by the host (a protection toggle, a safety switch).
// Chain steps read them at fire time, so Inputs is safe to mutate from any goroutine
// while the engine goroutine is reading.
type Inputs struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewInputs creates an input set seeded with a copy of defaults.
func NewInputs(defaults map[string]any) *Inputs {
	in := &Inputs{data: make(map[string]any, len(defaults))}
	for k, v := range defaults {
		in.data[k] = v
	}
	return in
}

// Get retrieves a value by key. Returns nil if the key does not exist.
func (in *Inputs) Get(key string) any {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.data[key]
}

// Lookup is Get with an existence flag.
func (in *Inputs) Lookup(key string) (any, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	v, ok := in.data[key]
	return v, ok
}

// Bool returns the value as a bool; missing or non-bool values are false.
func (in *Inputs) Bool(key string) bool {
	b, _ := in.Get(key).(bool)
	return b
}

// Set stores a value by key.
func (in *Inputs) Set(key string, value any) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.data[key] = value
}

// Toggle flips a bool input and returns the new value.
func (in *Inputs) Toggle(key string) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	b, _ := in.data[key].(bool)
	in.data[key] = !b
	return !b
}

// Delete removes a key.
func (in *Inputs) Delete(key string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	delete(in.data, key)
}

// GetAll returns a copy of all inputs.
func (in *Inputs) GetAll() map[string]any {
	in.mu.RLock()
	defer in.mu.RUnlock()
	out := make(map[string]any, len(in.data))
	for k, v := range in.data {
		out[k] = v
	}
	return out
}

// LoadAll replaces every input with a copy of data.
func (in *Inputs) LoadAll(data map[string]any) {
	fresh := make(map[string]any, len(data))
	for k, v := range data {
		fresh[k] = v
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	in.data = fresh
}
