package forecast

// Window is a bounded sliding buffer of series values, most-recent-last.
// Appending at capacity evicts the oldest entry. This is what makes the
// forecast loop autoregressive: each step's prediction is pushed in and
// becomes visible to the next step's lag and rolling features.
type Window struct {
	capacity int
	vals     []float64
}

// NewWindow creates an empty window with the given capacity.
func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}
	return &Window{capacity: capacity, vals: make([]float64, 0, capacity)}
}

// NewWindowFrom seeds a window with a series, keeping only the most recent
// `capacity` values when the seed is longer.
func NewWindowFrom(capacity int, seed []float64) *Window {
	w := NewWindow(capacity)
	start := 0
	if len(seed) > w.capacity {
		start = len(seed) - w.capacity
	}
	w.vals = append(w.vals, seed[start:]...)
	return w
}

// Push appends a value, evicting the oldest entry at capacity.
func (w *Window) Push(v float64) {
	if len(w.vals) == w.capacity {
		copy(w.vals, w.vals[1:])
		w.vals[len(w.vals)-1] = v
		return
	}
	w.vals = append(w.vals, v)
}

// Len returns the number of stored values.
func (w *Window) Len() int { return len(w.vals) }

// Last returns the most recent value, or 0 for an empty window.
func (w *Window) Last() float64 {
	if len(w.vals) == 0 {
		return 0
	}
	return w.vals[len(w.vals)-1]
}

// Lag returns the value `offset` steps back (1 = most recent). When the
// window is shorter than the offset it returns the oldest available value.
// That lossy fallback is deliberate: stored models were trained against
// exactly this behavior for short histories, so it must not be "fixed"
// to an error without retraining everything.
func (w *Window) Lag(offset int) float64 {
	if len(w.vals) == 0 {
		return 0
	}
	idx := len(w.vals) - offset
	if idx < 0 {
		idx = 0
	}
	return w.vals[idx]
}

// Tail returns a copy of the most recent n values (fewer if the window is
// shorter). The copy keeps feature construction free of aliasing.
func (w *Window) Tail(n int) []float64 {
	if n > len(w.vals) {
		n = len(w.vals)
	}
	out := make([]float64, n)
	copy(out, w.vals[len(w.vals)-n:])
	return out
}

// Values returns a copy of the full buffer, oldest-first.
func (w *Window) Values() []float64 {
	out := make([]float64, len(w.vals))
	copy(out, w.vals)
	return out
}
