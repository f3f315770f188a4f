// Package lazy provides a list whose elements are taken from a producer
// only when they are accessed.
//
// Elements taken out are kept in a buffer for random access. Accessing
// the list from the end (negative indices, Len, Append) drains the
// producer completely.
package lazy

import (
	"errors"
	"iter"
	"slices"
)

var (
	// Done is returned by a Producer when it has no more elements.
	Done = errors.New("no more elements")

	ErrIndexRange = errors.New("list index out of range")
	ErrNotFound   = errors.New("value not in list")
)

// Producer returns the next element, or Done when exhausted.
type Producer[T any] func() (T, error)

// FromSlice produces the elements of s in order.
func FromSlice[T any](s []T) Producer[T] {
	i := 0
	return func() (v T, err error) {
		if i >= len(s) {
			return v, Done
		}
		v = s[i]
		i++
		return v, nil
	}
}

// List is not safe for concurrent use.
type List[T comparable] struct {
	elements  []T
	producers []Producer[T]
	pulled    int
	err       error
}

func New[T comparable](p Producer[T]) *List[T] {
	l := &List[T]{}
	if p != nil {
		l.producers = []Producer[T]{p}
	}
	return l
}

// Of returns a fully materialized list.
func Of[T comparable](elems ...T) *List[T] {
	return &List[T]{elements: slices.Clone(elems)}
}

// pull takes the next element out of the producers. It returns false
// when all producers are exhausted or failed.
func (l *List[T]) pull() (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	for len(l.producers) > 0 {
		v, err := l.producers[0]()
		if errors.Is(err, Done) {
			l.producers = l.producers[1:]
			continue
		}
		if err != nil {
			l.err = err
			return false, err
		}
		l.elements = append(l.elements, v)
		l.pulled++
		return true, nil
	}
	return false, nil
}

// fill materializes until the buffer holds n elements, or completely if
// n is negative.
func (l *List[T]) fill(n int) error {
	for n < 0 || len(l.elements) < n {
		ok, err := l.pull()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	return nil
}

// resolve maps i to a buffer position, materializing as needed.
func (l *List[T]) resolve(i int) (int, error) {
	if i < 0 {
		if err := l.fill(-1); err != nil {
			return 0, err
		}
		i += len(l.elements)
	} else if err := l.fill(i + 1); err != nil {
		return 0, err
	}
	if i < 0 || i >= len(l.elements) {
		return 0, ErrIndexRange
	}
	return i, nil
}

func (l *List[T]) Get(i int) (v T, err error) {
	if i, err = l.resolve(i); err != nil {
		return v, err
	}
	return l.elements[i], nil
}

func (l *List[T]) Set(i int, v T) error {
	i, err := l.resolve(i)
	if err != nil {
		return err
	}
	l.elements[i] = v
	return nil
}

func (l *List[T]) Delete(i int) error {
	i, err := l.resolve(i)
	if err != nil {
		return err
	}
	l.elements = slices.Delete(l.elements, i, i+1)
	return nil
}

// Insert puts v before position i. Like a list insert, positions beyond
// either end are clamped.
func (l *List[T]) Insert(i int, v T) error {
	if i < 0 {
		if err := l.fill(-1); err != nil {
			return err
		}
		i = max(i+len(l.elements), 0)
	} else {
		if err := l.fill(i + 1); err != nil {
			return err
		}
		i = min(i, len(l.elements))
	}
	l.elements = slices.Insert(l.elements, i, v)
	return nil
}

func (l *List[T]) Append(v T) error {
	if err := l.fill(-1); err != nil {
		return err
	}
	l.elements = append(l.elements, v)
	return nil
}

// Extend chains p after the current producer without materializing.
func (l *List[T]) Extend(p Producer[T]) {
	l.producers = append(l.producers, p)
}

func (l *List[T]) Len() (int, error) {
	if err := l.fill(-1); err != nil {
		return 0, err
	}
	return len(l.elements), nil
}

// Index returns the position of the first v at or after start and
// before end. A negative end means no upper bound. Elements are only
// pulled as far as needed.
func (l *List[T]) Index(v T, start, end int) (int, error) {
	if start < 0 {
		if err := l.fill(-1); err != nil {
			return 0, err
		}
		start = max(start+len(l.elements), 0)
	} else if err := l.fill(start + 1); err != nil {
		return 0, err
	}
	for i := start; end < 0 || i < end; i++ {
		if i >= len(l.elements) {
			ok, err := l.pull()
			if err != nil {
				return 0, err
			}
			if !ok {
				break
			}
		}
		if l.elements[i] == v {
			return i, nil
		}
	}
	return 0, ErrNotFound
}

// Slice returns a copy of the elements in [start, end), clamped like a
// slice expression on a list. Non-negative bounds only pull through end.
func (l *List[T]) Slice(start, end int) ([]T, error) {
	if start < 0 || end < 0 {
		if err := l.fill(-1); err != nil {
			return nil, err
		}
	} else if err := l.fill(end); err != nil {
		return nil, err
	}
	n := len(l.elements)
	clamp := func(i int) int {
		if i < 0 {
			i += n
		}
		return min(max(i, 0), n)
	}
	start, end = clamp(start), clamp(end)
	if start >= end {
		return []T{}, nil
	}
	return slices.Clone(l.elements[start:end]), nil
}

// NonEmpty reports whether the list has at least one element, pulling
// at most one.
func (l *List[T]) NonEmpty() (bool, error) {
	if err := l.fill(1); err != nil {
		return false, err
	}
	return len(l.elements) > 0, nil
}

// Pulled returns the number of elements taken from the producers.
func (l *List[T]) Pulled() int {
	return l.pulled
}

// All walks the list, pulling elements as the iteration proceeds. A
// producer error ends the iteration and is reported by Err.
func (l *List[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; ; i++ {
			if i >= len(l.elements) {
				ok, err := l.pull()
				if err != nil || !ok {
					return
				}
			}
			if !yield(i, l.elements[i]) {
				return
			}
		}
	}
}

// Err returns the producer error that stopped materialization, if any.
func (l *List[T]) Err() error {
	return l.err
}
