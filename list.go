// Package xlist is a thread-safe, array-backed ordered container with
// live cursor support. Cursors attached to a list stay correct while
// other goroutines append, insert, remove, sort or reverse the same
// list: every structural change rebases cursor positions under the
// same lock, atomically with the change itself.
package xlist

import (
	"errors"
	"slices"

	"golang.org/x/exp/constraints"

	"github.com/manuelalexan/xlist/utils"
)

var ErrClosed = errors.New("xlist: list is closed")

// Stats is a point-in-time snapshot of a list's bookkeeping, exposed
// for the registry and the metrics collector.
type Stats struct {
	Size     int
	Capacity int
	Cursors  int
	Version  uint64
}

type Option[T any] func(*List[T])

// WithDrop installs the element release capability. A list created
// with a drop function owns its elements: it releases every element it
// destructively removes, exactly once each.
func WithDrop[T any](drop func(T)) Option[T] {
	return func(l *List[T]) { l.drop = drop }
}

func WithLogger[T any](log utils.Logger) Option[T] {
	return func(l *List[T]) { l.log = log }
}

// WithName registers the list in DefaultRegistry until it is closed.
func WithName[T any](name string) Option[T] {
	return func(l *List[T]) { l.name = name }
}

// List is the container. One mutex guards the element array and the
// cursor chain; every exported operation is a single critical section.
type List[T any] struct {
	mu    utils.Mutex
	arr   []T // len(arr) is the capacity, the first size slots are live
	size  int
	drop  func(T)
	iters []*Iter[T]

	version uint64 // bumped on every structural change
	closed  bool

	name string
	log  utils.Logger
}

func New[T any](opts ...Option[T]) *List[T] {
	l := &List[T]{}
	for _, o := range opts {
		o(l)
	}
	if l.name != "" {
		DefaultRegistry.add(l.name, l)
	}
	return l
}

// Close invalidates every attached cursor, releases owned elements in
// index order and detaches the list from the registry. Closed lists
// answer every operation with the empty result; stale cursors do the
// same instead of touching freed state. Close is idempotent.
func (l *List[T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	if n := len(l.iters); n > 0 && l.log != nil {
		l.log.Warn("closing list with live cursors", "list", l.name, "cursors", n)
	}
	for _, it := range l.iters {
		it.valid = false
	}
	l.iters = nil
	if l.drop != nil {
		for i := 0; i < l.size; i++ {
			l.drop(l.arr[i])
		}
	}
	l.arr = nil
	l.size = 0
	l.version++
	l.closed = true
	if l.name != "" {
		DefaultRegistry.remove(l.name)
	}
}

// Len returns the element count. A nil list counts as empty.
func (l *List[T]) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}

func (l *List[T]) IsEmpty() bool {
	return l.Len() == 0
}

// Version returns the structural change counter. Consumers such as
// indexes.KeyIndex use it to detect that cached positions went stale.
func (l *List[T]) Version() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.version
}

func (l *List[T]) Name() string { return l.name }

func (l *List[T]) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Stats{
		Size:     l.size,
		Capacity: len(l.arr),
		Cursors:  len(l.iters),
		Version:  l.version,
	}
}

// Append stores x at the tail. Returns false once the list is closed.
func (l *List[T]) Append(x T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	l.insertAtLocked(l.size, x)
	return true
}

// Prepend stores x at the head.
func (l *List[T]) Prepend(x T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	l.insertAtLocked(0, x)
	return true
}

// Enqueue is Append under a queue-shaped name.
func (l *List[T]) Enqueue(x T) bool { return l.Append(x) }

// Push is Prepend under a stack-shaped name.
func (l *List[T]) Push(x T) bool { return l.Prepend(x) }

// Pop removes and returns the head element.
func (l *List[T]) Pop() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var zero T
	if l.closed {
		return zero, false
	}
	return l.removeAtLocked(0)
}

// Dequeue is Pop under a queue-shaped name.
func (l *List[T]) Dequeue() (T, bool) { return l.Pop() }

// Peek returns the head element without removing it.
func (l *List[T]) Peek() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var zero T
	if l.size == 0 {
		return zero, false
	}
	return l.arr[0], true
}

// PeekLast returns the tail element without removing it.
func (l *List[T]) PeekLast() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var zero T
	if l.size == 0 {
		return zero, false
	}
	return l.arr[l.size-1], true
}

// FindFirst returns the first element matching the predicate. The
// element stays in the list.
func (l *List[T]) FindFirst(match func(T) bool) (T, bool) {
	if match == nil {
		panic("xlist: nil predicate")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	var zero T
	for i := 0; i < l.size; i++ {
		if match(l.arr[i]) {
			return l.arr[i], true
		}
	}
	return zero, false
}

// RemoveFirst removes and returns the first element matching the
// predicate. The drop capability is not invoked: the caller takes the
// element over.
func (l *List[T]) RemoveFirst(match func(T) bool) (T, bool) {
	if match == nil {
		panic("xlist: nil predicate")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	var zero T
	for i := 0; i < l.size; i++ {
		if match(l.arr[i]) {
			return l.removeAtLocked(i)
		}
	}
	return zero, false
}

// DeleteAll removes every element matching the predicate, dropping
// each one if the list owns its elements. Returns the removal count.
func (l *List[T]) DeleteAll(match func(T) bool) int {
	if match == nil {
		panic("xlist: nil predicate")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	i := 0
	for i < l.size {
		if !match(l.arr[i]) {
			i++
			continue
		}
		v, _ := l.removeAtLocked(i)
		if l.drop != nil {
			l.drop(v)
		}
		n++
	}
	return n
}

// DeleteByRef removes the first element equal to key, dropping it if
// the list owns its elements. Returns 0 or 1.
func DeleteByRef[T comparable](l *List[T], key T) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := 0; i < l.size; i++ {
		if l.arr[i] != key {
			continue
		}
		v, _ := l.removeAtLocked(i)
		if l.drop != nil {
			l.drop(v)
		}
		return 1
	}
	return 0
}

// ForEach visits every element in index order and stops at the first
// callback error.
func (l *List[T]) ForEach(fn func(T) error) (int, error) {
	return l.ForEachMax(0, true, fn)
}

// ForEachNoBreak visits every element regardless of callback errors
// and reports the first one.
func (l *List[T]) ForEachNoBreak(fn func(T) error) (int, error) {
	return l.ForEachMax(0, false, fn)
}

// ForEachMax visits up to limit elements (0 means all) while holding
// the list lock for the whole traversal. Returns the visit count and
// the first callback error. The callback must not touch the same list:
// the lock is not reentrant.
func (l *List[T]) ForEachMax(limit int, breakOnFail bool, fn func(T) error) (int, error) {
	if fn == nil {
		panic("xlist: nil callback")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	var first error
	n := 0
	for i := 0; i < l.size && (limit == 0 || n < limit); i++ {
		n++
		if err := fn(l.arr[i]); err != nil {
			if first == nil {
				first = err
			}
			if breakOnFail {
				break
			}
		}
	}
	return n, first
}

// Flush removes every element, dropping each one if the list owns its
// elements, and resets all cursors to the head. Capacity is retained.
func (l *List[T]) Flush() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0
	}
	n := l.size
	if l.drop != nil {
		for i := 0; i < l.size; i++ {
			l.drop(l.arr[i])
		}
	}
	clear(l.arr[:l.size])
	l.size = 0
	l.version++
	l.resetItersLocked()
	return n
}

// Sort orders elements with the three-way comparator and resets every
// cursor to the head: pre-sort positions are meaningless afterwards.
// The sort is not stable.
func (l *List[T]) Sort(cmp func(a, b T) int) {
	if cmp == nil {
		panic("xlist: nil comparator")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.size <= 1 {
		return
	}
	slices.SortFunc(l.arr[:l.size], cmp)
	l.version++
	l.resetItersLocked()
}

// SortOrdered sorts a list of naturally ordered elements ascending.
func SortOrdered[T constraints.Ordered](l *List[T]) {
	l.Sort(func(a, b T) int {
		switch {
		case a < b:
			return -1
		case b < a:
			return 1
		}
		return 0
	})
}

// Flip reverses the element order in place and resets every cursor to
// the head, same as Sort.
func (l *List[T]) Flip() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.size <= 1 {
		return
	}
	slices.Reverse(l.arr[:l.size])
	l.version++
	l.resetItersLocked()
}

// ShallowCopy duplicates the element references into a fresh list in
// one reallocation. The copy never carries a drop capability: at most
// one owner may release any shared element.
func (l *List[T]) ShallowCopy() *List[T] {
	m := New[T]()
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return m
	}
	m.mu.Lock()
	m.reserveLocked(l.size)
	m.size = l.size
	copy(m.arr, l.arr[:l.size])
	m.mu.Unlock()
	return m
}

// AppendList copies every element of src to the tail of l, stopping at
// the first failed append. l must not own element lifetime: two lists
// releasing the same references would double-drop, so a destination
// with a drop capability is a contract violation.
func (l *List[T]) AppendList(src *List[T]) int {
	if l.drop != nil {
		panic("xlist: append-list destination owns its elements")
	}
	it := src.Iterator()
	defer it.Close()
	n := 0
	for v, ok := it.Next(); ok; v, ok = it.Next() {
		if !l.Append(v) {
			break
		}
		n++
	}
	return n
}

// Transfer moves every element of src to the tail of l.
func (l *List[T]) Transfer(src *List[T]) int {
	return l.TransferMax(src, 0)
}

// TransferMax pops from src and appends to l until src is empty or max
// elements moved (0 means unbounded). Ownership must be fungible: both
// lists own their elements or neither does. Each element moves in its
// own pair of critical sections, so a third party locking both lists
// may observe a partially completed transfer.
func (l *List[T]) TransferMax(src *List[T], max int) int {
	if (l.drop == nil) != (src.drop == nil) {
		panic("xlist: transfer between incompatible owners")
	}
	n := 0
	for max == 0 || n < max {
		v, ok := src.Pop()
		if !ok {
			break
		}
		if !l.Append(v) {
			// The destination closed mid-move. Put the element back
			// where it came from; release it only if src closed too.
			if !src.Push(v) && src.drop != nil {
				src.drop(v)
			}
			break
		}
		n++
	}
	return n
}

// Reserve pre-grows capacity to at least n slots, so a known-size bulk
// build reallocates once.
func (l *List[T]) Reserve(n int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	l.reserveLocked(n)
	return true
}

func (l *List[T]) reserveLocked(n int) {
	l.mu.AssertHeld()
	if n <= len(l.arr) {
		return
	}
	next := make([]T, n)
	copy(next, l.arr[:l.size])
	l.arr = next
}

// growLocked makes room for one more element. Capacity doubles, which
// keeps appends amortized O(1).
func (l *List[T]) growLocked() {
	l.mu.AssertHeld()
	if l.size < len(l.arr) {
		return
	}
	next := make([]T, len(l.arr)+max(len(l.arr), 1))
	copy(next, l.arr[:l.size])
	l.arr = next
}

// insertAtLocked stores x at position p and rebases every attached
// cursor by the same shift the array got: a cursor index equal to p
// moves to p+1, so the fresh slot counts as not yet passed.
func (l *List[T]) insertAtLocked(p int, x T) {
	l.mu.AssertHeld()
	if p < 0 || p > l.size {
		panic("xlist: insert position out of range")
	}
	l.growLocked()
	copy(l.arr[p+1:l.size+1], l.arr[p:l.size])
	l.arr[p] = x
	l.size++
	l.version++
	for _, it := range l.iters {
		if it.prev == p {
			it.prev = p + 1
		}
		if it.pos == p {
			it.pos = p + 1
		}
	}
}

// removeAtLocked captures the element at p, shifts the tail left and
// rebases cursors: a cursor about to yield p+1 re-yields what now sits
// at p, a cursor whose last yield was p+1 now points at p.
func (l *List[T]) removeAtLocked(p int) (T, bool) {
	l.mu.AssertHeld()
	var zero T
	if p < 0 || p >= l.size {
		return zero, false
	}
	v := l.arr[p]
	copy(l.arr[p:l.size-1], l.arr[p+1:l.size])
	l.arr[l.size-1] = zero
	l.size--
	l.version++
	for _, it := range l.iters {
		if it.pos == p+1 {
			it.pos = p
			it.prev = p
		} else if it.prev == p+1 {
			it.prev = p
		}
	}
	return v, true
}

func (l *List[T]) resetItersLocked() {
	l.mu.AssertHeld()
	for _, it := range l.iters {
		it.pos = 0
		it.prev = 0
	}
}
