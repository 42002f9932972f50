// Package linkedlist implements a generic singly linked list with
// 1-indexed positional access.
//
// Positions run from 1 (head) to Len() (tail), which keeps insertion and
// removal arithmetic aligned with how ranked collections are usually
// described ("the 3rd best candidate"). The zero value of List is an
// empty list ready for use. List is not safe for concurrent use.
package linkedlist

import "errors"

var (
	// ErrEmptyList is returned when removing from a list with no elements.
	ErrEmptyList = errors.New("linkedlist: remove from empty list")

	// ErrIndexOutOfRange is returned when a 1-indexed position falls
	// outside the valid range for the operation.
	ErrIndexOutOfRange = errors.New("linkedlist: index out of range")
)

// node is a single element in the chain.
type node[T any] struct {
	value T
	next  *node[T]
}

// List is a singly linked list. The list owns its head pointer; nodes are
// never shared between lists.
type List[T any] struct {
	head *node[T]
	size int
}

// New returns an empty list.
func New[T any]() *List[T] {
	return &List[T]{}
}

// Len returns the number of elements in the list.
func (l *List[T]) Len() int {
	return l.size
}

// PushBack appends v after the current tail.
func (l *List[T]) PushBack(v T) {
	n := &node[T]{value: v}
	if l.head == nil {
		l.head = n
		l.size++

		return
	}

	cur := l.head
	for cur.next != nil {
		cur = cur.next
	}
	cur.next = n
	l.size++
}

// InsertAt inserts v so that it becomes the pos-th element (1-indexed).
// pos may be Len()+1, which appends. Any other pos outside [1, Len()+1]
// returns ErrIndexOutOfRange.
func (l *List[T]) InsertAt(pos int, v T) error {
	if pos < 1 || pos > l.size+1 {
		return ErrIndexOutOfRange
	}

	n := &node[T]{value: v}
	if pos == 1 {
		n.next = l.head
		l.head = n
		l.size++

		return nil
	}

	// walk to the (pos-1)-th node and splice in after it
	prev := l.head
	for i := 1; i < pos-1; i++ {
		prev = prev.next
	}
	n.next = prev.next
	prev.next = n
	l.size++

	return nil
}

// RemoveAt deletes the pos-th element (1-indexed) and returns its value.
// Removing from an empty list returns ErrEmptyList; pos outside
// [1, Len()] returns ErrIndexOutOfRange. All other elements keep their
// relative order.
func (l *List[T]) RemoveAt(pos int) (T, error) {
	var zero T
	if l.size == 0 {
		return zero, ErrEmptyList
	}
	if pos < 1 || pos > l.size {
		return zero, ErrIndexOutOfRange
	}

	if pos == 1 {
		removed := l.head
		l.head = removed.next
		l.size--

		return removed.value, nil
	}

	prev := l.head
	for i := 1; i < pos-1; i++ {
		prev = prev.next
	}
	removed := prev.next
	prev.next = removed.next
	l.size--

	return removed.value, nil
}

// At returns the pos-th element (1-indexed) without removing it.
func (l *List[T]) At(pos int) (T, error) {
	var zero T
	if pos < 1 || pos > l.size {
		return zero, ErrIndexOutOfRange
	}

	cur := l.head
	for i := 1; i < pos; i++ {
		cur = cur.next
	}

	return cur.value, nil
}

// Each calls fn for every element in order, passing its 1-indexed
// position. Traversal stops early when fn returns false.
func (l *List[T]) Each(fn func(pos int, v T) bool) {
	pos := 1
	for cur := l.head; cur != nil; cur = cur.next {
		if !fn(pos, cur.value) {
			return
		}
		pos++
	}
}

// Slice returns the list contents as a new slice in list order. An empty
// list yields an empty, non-nil slice.
func (l *List[T]) Slice() []T {
	out := make([]T, 0, l.size)
	for cur := l.head; cur != nil; cur = cur.next {
		out = append(out, cur.value)
	}

	return out
}
