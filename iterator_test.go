package xlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func buildList(vals ...string) *List[string] {
	l := New[string]()
	for _, v := range vals {
		l.Append(v)
	}
	return l
}

func TestIterYieldsInOrder(t *testing.T) {
	l := buildList("a", "b", "c")
	defer l.Close()
	it := l.Iterator()
	defer it.Close()

	for _, want := range []string{"a", "b", "c"} {
		v, ok := it.Next()
		assert.True(t, ok)
		assert.Equal(t, want, v)
	}
	// Exhausted cursors keep yielding nothing, they do not fail.
	for i := 0; i < 3; i++ {
		_, ok := it.Next()
		assert.False(t, ok)
	}

	it.Reset()
	v, ok := it.Next()
	assert.True(t, ok)
	assert.Equal(t, "a", v)
}

func TestIterPeekDoesNotAdvance(t *testing.T) {
	l := buildList("a", "b")
	defer l.Close()
	it := l.Iterator()
	defer it.Close()

	v, ok := it.Peek()
	assert.True(t, ok)
	assert.Equal(t, "a", v)
	v, ok = it.Next()
	assert.True(t, ok)
	assert.Equal(t, "a", v)

	it.Next()
	_, ok = it.Peek()
	assert.False(t, ok)
}

func TestIterRemoveTakesLastYielded(t *testing.T) {
	l := buildList("a", "b", "c")
	defer l.Close()
	it := l.Iterator()
	defer it.Close()

	it.Next() // a
	it.Next() // b
	v, ok := it.Remove()
	assert.True(t, ok)
	assert.Equal(t, "b", v)

	// The cursor continues with the element that followed the removed
	// one.
	v, ok = it.Next()
	assert.True(t, ok)
	assert.Equal(t, "c", v)
	assert.Equal(t, 2, l.Len())
}

func TestIterRemoveNeedsAYield(t *testing.T) {
	l := buildList("a", "b")
	defer l.Close()
	it := l.Iterator()
	defer it.Close()

	// Nothing yielded yet.
	_, ok := it.Remove()
	assert.False(t, ok)

	it.Next()
	_, ok = it.Remove()
	assert.True(t, ok)

	// A removal consumes the yield: a second Remove has no target.
	_, ok = it.Remove()
	assert.False(t, ok)
}

func TestIterDeleteItemDrops(t *testing.T) {
	dropped := []string{}
	l := New[string](WithDrop[string](func(s string) { dropped = append(dropped, s) }))
	defer l.Close()
	l.Append("a")
	l.Append("b")

	it := l.Iterator()
	defer it.Close()
	assert.False(t, it.DeleteItem())
	it.Next()
	assert.True(t, it.DeleteItem())
	assert.Equal(t, []string{"a"}, dropped)
	assert.Equal(t, 1, l.Len())
}

func TestIterInsertAtCursor(t *testing.T) {
	l := buildList("a", "b")
	defer l.Close()
	it := l.Iterator()
	defer it.Close()

	// Nothing yielded yet: insert goes to the front.
	assert.True(t, it.Insert("x"))
	v, _ := l.Peek()
	assert.Equal(t, "x", v)

	// The inserting cursor is rebased past its own insertion and
	// resumes at the old head.
	v, ok := it.Next()
	assert.True(t, ok)
	assert.Equal(t, "a", v)
	v, _ = it.Next()
	assert.Equal(t, "b", v)
}

func TestIterFindConsumesPositions(t *testing.T) {
	l := buildList("a", "b", "c", "d")
	defer l.Close()
	it := l.Iterator()
	defer it.Close()

	v, ok := it.Find(func(s string) bool { return s == "c" })
	assert.True(t, ok)
	assert.Equal(t, "c", v)

	v, ok = it.Next()
	assert.True(t, ok)
	assert.Equal(t, "d", v)

	_, ok = it.Find(func(s string) bool { return s == "a" })
	assert.False(t, ok)
}

func TestIterFoundElementRemovable(t *testing.T) {
	l := buildList("a", "b", "c")
	defer l.Close()
	it := l.Iterator()
	defer it.Close()

	it.Find(func(s string) bool { return s == "b" })
	v, ok := it.Remove()
	assert.True(t, ok)
	assert.Equal(t, "b", v)
}

func TestSortRewindsCursors(t *testing.T) {
	l := New[int]()
	defer l.Close()
	for _, v := range []int{3, 1, 2} {
		l.Append(v)
	}
	it := l.Iterator()
	defer it.Close()

	v, _ := it.Next()
	assert.Equal(t, 3, v)

	SortOrdered(l)

	// Post-sort positions are meaningless, the cursor restarts at the
	// new head.
	v, ok := it.Next()
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestFlipRewindsCursors(t *testing.T) {
	l := buildList("a", "b", "c")
	defer l.Close()
	it := l.Iterator()
	defer it.Close()
	it.Next()

	l.Flip()
	v, ok := it.Next()
	assert.True(t, ok)
	assert.Equal(t, "c", v)
}

func TestConcurrentRemovalRebasesOtherCursors(t *testing.T) {
	l := buildList("a", "b", "c", "d")
	defer l.Close()

	walker := l.Iterator()
	defer walker.Close()
	walker.Next() // a, pos=1

	// Another path removes the head; the walker must not skip "b".
	v, ok := l.Pop()
	assert.True(t, ok)
	assert.Equal(t, "a", v)

	v, ok = walker.Next()
	assert.True(t, ok)
	assert.Equal(t, "b", v)
}

func TestPrependUnderCursorRewalksShiftedSlot(t *testing.T) {
	l := buildList("a", "c")
	defer l.Close()

	// Only cursor indices equal to the insert point advance past the
	// fresh slot. A cursor sitting further right keeps its index, so
	// the shifted element under it counts as not yet passed and gets
	// yielded again.
	it := l.Iterator()
	defer it.Close()
	it.Next() // a, pos=1

	l.Push("z") // [z a c]
	v, ok := it.Next()
	assert.True(t, ok)
	assert.Equal(t, "a", v)
	v, ok = it.Next()
	assert.True(t, ok)
	assert.Equal(t, "c", v)
}

func TestStaleCursorAfterListClose(t *testing.T) {
	l := buildList("a")
	it := l.Iterator()
	l.Close()

	_, ok := it.Next()
	assert.False(t, ok)
	_, ok = it.Peek()
	assert.False(t, ok)
	_, ok = it.Remove()
	assert.False(t, ok)
	assert.False(t, it.Insert("x"))
	assert.False(t, it.DeleteItem())

	// Closing a stale cursor is harmless.
	it.Close()
}

func TestIteratorOnClosedListIsInvalid(t *testing.T) {
	l := buildList("a")
	l.Close()
	it := l.Iterator()
	_, ok := it.Next()
	assert.False(t, ok)
}

func TestIterCloseDetaches(t *testing.T) {
	l := buildList("a", "b")
	defer l.Close()

	it := l.Iterator()
	assert.Equal(t, 1, l.Stats().Cursors)
	it.Close()
	assert.Equal(t, 0, l.Stats().Cursors)
	it.Close() // idempotent
	assert.Equal(t, 0, l.Stats().Cursors)
}
