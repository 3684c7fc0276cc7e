package cluster

import "sync/atomic"

// Holder publishes the current model to concurrent readers. A re-fit builds
// the new model fully and then swaps it in one step, so an in-flight assign
// or match never observes a partially-updated centroid set.
type Holder struct {
	current atomic.Pointer[Model]
}

func NewHolder(m *Model) *Holder {
	h := &Holder{}
	if m != nil {
		h.current.Store(m)
	}
	return h
}

// Current returns a stable snapshot of the published model, or nil when
// nothing has been published yet.
func (h *Holder) Current() *Model {
	return h.current.Load()
}

// Swap atomically publishes the new model and returns the previous one.
func (h *Holder) Swap(m *Model) *Model {
	return h.current.Swap(m)
}
