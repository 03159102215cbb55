package ringbuf

// Ring is a fixed-capacity buffer. Head points to the newest element,
// older elements follow it modulo capacity.
type Ring[T any] struct {
	Data  []T
	Head  int
	Count int
}

func New[T any](size int) *Ring[T] {
	return &Ring[T]{
		Data: make([]T, size),
		Head: 0,
	}
}

// Push appends v as the newest element, evicting the oldest one when full.
func (r *Ring[T]) Push(v T) *Ring[T] {
	return r.PushFront(v)
}

func (r *Ring[T]) PushFront(v T) *Ring[T] {
	if len(r.Data) == 0 {
		return r
	}

	r.Head = r.Head - 1
	if r.Head < 0 {
		r.Head = len(r.Data) - 1
	}
	r.Data[r.Head] = v
	if r.Count < len(r.Data) {
		r.Count++
	}
	return r
}

// WalkFirstN walks count elements from the newest one, wrapping around.
func (r *Ring[T]) WalkFirstN(count int, fn func(T)) {
	for i := 0; i < count; i++ {
		fn(r.Data[(r.Head+i)%len(r.Data)])
	}
}

// GetN returns the i-th newest element. Negative i counts from the oldest slot.
func (r *Ring[T]) GetN(i int) T {
	return r.Data[r.index(i)]
}

func (r *Ring[T]) SetN(i int, val T) {
	r.Data[r.index(i)] = val
}

func (r *Ring[T]) index(i int) int {
	idx := r.Head + i
	if idx < 0 {
		idx = len(r.Data) + idx
	}
	return idx % len(r.Data)
}

// Len is the number of pushed elements, capped by Cap.
func (r *Ring[T]) Len() int {
	return r.Count
}

func (r *Ring[T]) Cap() int {
	return len(r.Data)
}

func (r *Ring[T]) Full() bool {
	return r.Count == len(r.Data)
}

// Slice copies the stored elements ordered oldest to newest.
func (r *Ring[T]) Slice() []T {
	out := make([]T, r.Count)
	for i := 0; i < r.Count; i++ {
		out[r.Count-1-i] = r.GetN(i)
	}
	return out
}

func (r *Ring[T]) Clone() *Ring[T] {
	data := make([]T, len(r.Data))
	copy(data, r.Data)
	return &Ring[T]{
		Data:  data,
		Head:  r.Head,
		Count: r.Count,
	}
}
