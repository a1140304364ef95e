package heap

import "go.spiff.io/tinylisp/lisp/value"

// Mark runs the mark phase described in spec.md §4.4: each root is
// enqueued and marked Queued, then the queue drains breadth-first,
// marking each popped value Marked and enqueueing any Unmarked child.
// The tri-state mark (Unmarked/Queued/Marked) is what keeps a cyclic
// graph from being enqueued twice. The queue is an ordinary Go slice
// used FIFO -- "a bounded buffer that grows as needed" needs nothing
// fancier than append/reslice.
func (h *Heap) Mark(roots ...value.Value) {
	queue := make([]value.Value, 0, len(roots))
	enqueue := func(v value.Value) {
		if v == nil {
			return
		}
		hdr := v.Header()
		if hdr.Mark() == value.Unmarked {
			hdr.SetMark(value.Queued)
			queue = append(queue, v)
		}
	}

	for _, r := range roots {
		enqueue(r)
	}

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		v.Header().SetMark(value.Marked)
		for _, child := range v.Children() {
			enqueue(child)
		}
	}
}

// Sweep walks the all-objects list, freeing (unlinking and Destroy-ing)
// every value whose mark is not Marked, and resetting every survivor's
// mark back to Unmarked. The nil singleton is never freed, matching
// spec.md §4.4 point 4.
func (h *Heap) Sweep() (freed int) {
	var (
		newHead value.Value
		tailSet bool
		tail    value.Value
	)

	appendSurvivor := func(v value.Value) {
		v.Header().SetMark(value.Unmarked)
		v.Header().SetNext(nil)
		if !tailSet {
			newHead, tail, tailSet = v, v, true
			return
		}
		tail.Header().SetNext(v)
		tail = v
	}

	for v := h.head; v != nil; {
		next := v.Header().Next()
		if v == value.Value(h.nilCons) {
			appendSurvivor(v)
		} else if v.Header().Mark() == value.Marked {
			appendSurvivor(v)
		} else {
			v.Destroy()
			h.count--
			freed++
		}
		v = next
	}

	h.head = newHead
	return freed
}
