package xlist

// Iter is a cursor over a List. A cursor belongs to one goroutine, but
// every operation still takes the owning list's lock: cursor positions
// are part of the list's protected state and get rebased together with
// structural changes made by other goroutines.
type Iter[T any] struct {
	list  *List[T]
	pos   int // next slot to yield
	prev  int // last yielded slot; prev == pos means nothing yielded
	valid bool
}

// Iterator attaches a new cursor at the head position. A cursor taken
// from a closed list is born invalid and yields nothing.
func (l *List[T]) Iterator() *Iter[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	it := &Iter[T]{list: l, valid: !l.closed}
	if it.valid {
		l.iters = append(l.iters, it)
	}
	return it
}

func (it *Iter[T]) nextLocked() (T, bool) {
	it.list.mu.AssertHeld()
	// The yielded element becomes the last-yielded one only after it
	// was returned, so prev catches up by a single step here.
	if it.prev != it.pos {
		it.prev++
	}
	if it.pos < it.list.size {
		v := it.list.arr[it.pos]
		it.pos++
		return v, true
	}
	var zero T
	return zero, false
}

// Next yields the element at the cursor and advances. Exhausted or
// invalidated cursors keep yielding the empty result.
func (it *Iter[T]) Next() (T, bool) {
	l := it.list
	l.mu.Lock()
	defer l.mu.Unlock()
	if !it.valid {
		var zero T
		return zero, false
	}
	return it.nextLocked()
}

// Peek returns the element Next would yield, without advancing.
func (it *Iter[T]) Peek() (T, bool) {
	l := it.list
	l.mu.Lock()
	defer l.mu.Unlock()
	var zero T
	if !it.valid || it.pos >= l.size {
		return zero, false
	}
	return l.arr[it.pos], true
}

// Find advances the cursor until the predicate matches or the list is
// exhausted. Positions are consumed either way.
func (it *Iter[T]) Find(match func(T) bool) (T, bool) {
	if match == nil {
		panic("xlist: nil predicate")
	}
	l := it.list
	l.mu.Lock()
	defer l.mu.Unlock()
	var zero T
	if !it.valid {
		return zero, false
	}
	for {
		v, ok := it.nextLocked()
		if !ok {
			return zero, false
		}
		if match(v) {
			return v, true
		}
	}
}

// Remove deletes the element the cursor yielded last and returns it.
// Returns false if nothing was yielded since creation, reset, or the
// previous removal. This is the only structurally sound way to delete
// the just-visited element mid-iteration.
func (it *Iter[T]) Remove() (T, bool) {
	l := it.list
	l.mu.Lock()
	defer l.mu.Unlock()
	var zero T
	if !it.valid || it.prev == it.pos {
		return zero, false
	}
	return l.removeAtLocked(it.prev)
}

// DeleteItem is Remove plus the drop capability, when the list owns
// its elements. Reports whether a removal happened.
func (it *Iter[T]) DeleteItem() bool {
	v, ok := it.Remove()
	if !ok {
		return false
	}
	if it.list.drop != nil {
		it.list.drop(v)
	}
	return true
}

// Insert stores x at the cursor's last-yielded position, or at the
// head if nothing was yielded yet.
func (it *Iter[T]) Insert(x T) bool {
	l := it.list
	l.mu.Lock()
	defer l.mu.Unlock()
	if !it.valid {
		return false
	}
	l.insertAtLocked(it.prev, x)
	return true
}

// Reset rewinds the cursor to the head position.
func (it *Iter[T]) Reset() {
	l := it.list
	l.mu.Lock()
	defer l.mu.Unlock()
	it.pos = 0
	it.prev = 0
}

// Close detaches the cursor from the list's chain. Idempotent; safe on
// cursors already invalidated by List.Close.
func (it *Iter[T]) Close() {
	l := it.list
	l.mu.Lock()
	defer l.mu.Unlock()
	if !it.valid {
		return
	}
	it.valid = false
	for i, x := range l.iters {
		if x == it {
			l.iters = append(l.iters[:i], l.iters[i+1:]...)
			break
		}
	}
}
