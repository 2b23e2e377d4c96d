// Package ringbuf provides a fixed-capacity FIFO with a configurable
// full-buffer policy and overflow notification.
package ringbuf

// Buffer is a fixed-capacity ring of T.
// Not safe for concurrent use; caller must synchronize.
type Buffer[T any] struct {
	buf        []T
	head       int // next write position
	count      int
	overwrite  bool
	overflow   bool // set on a dropped write, cleared by a read or DidOverflow
	onOverflow func()
}

// Option configures a Buffer.
type Option func(*options)

type options struct {
	overwrite  bool
	onOverflow func()
}

// WithOverwrite makes a full buffer drop its oldest element to make room.
// Without it, a write to a full buffer is dropped.
func WithOverwrite(overwrite bool) Option {
	return func(o *options) { o.overwrite = overwrite }
}

// WithOverflowFunc sets a callback invoked synchronously from Write every
// time a write overflows the buffer.
func WithOverflowFunc(fn func()) Option {
	return func(o *options) { o.onOverflow = fn }
}

// New creates a Buffer holding up to capacity elements. A capacity below one
// is treated as one.
func New[T any](capacity int, opts ...Option) *Buffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Buffer[T]{
		buf:        make([]T, capacity),
		overwrite:  o.overwrite,
		onOverflow: o.onOverflow,
	}
}

// Write appends v. On a full buffer it either replaces the oldest element
// (overwrite enabled) or discards v, and in both cases records an overflow.
func (r *Buffer[T]) Write(v T) {
	if r.count < len(r.buf) {
		r.buf[r.head] = v
		r.head = (r.head + 1) % len(r.buf)
		r.count++
		return
	}

	if r.overwrite {
		// head already points at the oldest element
		r.buf[r.head] = v
		r.head = (r.head + 1) % len(r.buf)
	}
	r.overflow = true
	if r.onOverflow != nil {
		r.onOverflow()
	}
}

// Read removes and returns the oldest element. ok is false when the buffer is
// empty.
func (r *Buffer[T]) Read() (v T, ok bool) {
	if r.count == 0 {
		return v, false
	}
	tail := r.tail()
	v = r.buf[tail]
	var zero T
	r.buf[tail] = zero
	r.count--
	r.overflow = false
	return v, true
}

// Drain removes and returns all elements, oldest first. It returns nil for an
// empty buffer.
func (r *Buffer[T]) Drain() []T {
	if r.count == 0 {
		return nil
	}

	result := make([]T, r.count)
	start := r.tail()
	var zero T
	for i := range result {
		idx := (start + i) % len(r.buf)
		result[i] = r.buf[idx]
		r.buf[idx] = zero
	}

	r.count = 0
	r.head = 0
	r.overflow = false
	return result
}

// tail is the index of the oldest element.
func (r *Buffer[T]) tail() int {
	return (r.head - r.count + len(r.buf)) % len(r.buf)
}

func (r *Buffer[T]) Len() int { return r.count }

func (r *Buffer[T]) Cap() int { return len(r.buf) }

func (r *Buffer[T]) IsFull() bool { return r.count == len(r.buf) }

func (r *Buffer[T]) IsEmpty() bool { return r.count == 0 }

func (r *Buffer[T]) NotEmpty() bool { return r.count != 0 }

// DidOverflow reports whether a write overflowed since the last read, drain
// or DidOverflow call, and clears the flag.
func (r *Buffer[T]) DidOverflow() bool {
	o := r.overflow
	r.overflow = false
	return o
}
