package tree

import "fmt"

type position uint8

const (
	atNode position = iota
	pastEnd
)

type cursor[K, V any] struct {
	m   *Map[K, V]
	n   *treeNode[K, V]
	pos position
}

func (c cursor[K, V]) ref() cursor[K, V] {
	return c
}

func (c cursor[K, V]) IsEnd() bool {
	return c.pos == pastEnd
}

func (c cursor[K, V]) deref() (*treeNode[K, V], error) {
	switch {
	case c.m == nil:
		return nil, fmt.Errorf("%w, it does not belong to any map", ErrInvalidIterator)
	case c.pos == pastEnd:
		return nil, fmt.Errorf("%w, dereference the past the end", ErrInvalidIterator)
	case c.n == nil || !c.n.hasKV:
		return nil, fmt.Errorf("%w, its entry has been erased", ErrInvalidIterator)
	default:
	}
	return c.n, nil
}

func (c cursor[K, V]) Key() (K, error) {
	x, err := c.deref()
	if err != nil {
		var k K
		return k, err
	}
	return x.key, nil
}

func (c cursor[K, V]) Value() (V, error) {
	x, err := c.deref()
	if err != nil {
		var v V
		return v, err
	}
	return x.val, nil
}

// Equal reports whether both reference the same position of the same map.
// The iterators of different maps are never equal.
func (c cursor[K, V]) Equal(other Cursor[K, V]) bool {
	if other == nil {
		return false
	}
	o := other.ref()
	return c.m == o.m && c.pos == o.pos && c.n == o.n
}

func (c *cursor[K, V]) next() error {
	if c.m != nil && c.pos == pastEnd {
		return fmt.Errorf("%w, increment the past the end", ErrInvalidIterator)
	}
	x, err := c.deref()
	if err != nil {
		return err
	}
	if succ := x.succ(); succ != nil {
		c.n = succ
		return nil
	}
	c.n, c.pos = nil, pastEnd
	return nil
}

func (c *cursor[K, V]) prev() error {
	if c.m != nil && c.pos == pastEnd {
		last := c.m.root.maximum()
		if last == nil {
			return fmt.Errorf("%w, decrement the past the end of an empty map", ErrInvalidIterator)
		}
		c.n, c.pos = last, atNode
		return nil
	}
	x, err := c.deref()
	if err != nil {
		return err
	}
	pred := x.pred()
	if pred == nil {
		return fmt.Errorf("%w, decrement the first", ErrInvalidIterator)
	}
	c.n = pred
	return nil
}

// Iterator is a bidirectional cursor of a map entry or the past the end.
// It stays valid until its entry is erased or the map is cleared.
type Iterator[K, V any] struct {
	cursor[K, V]
}

// Next moves to the next entry in key order, the last entry moves to
// the past the end. An error leaves the iterator unchanged.
func (it *Iterator[K, V]) Next() error {
	return it.next()
}

// Prev moves to the previous entry in key order, the past the end
// moves to the last entry. An error leaves the iterator unchanged.
func (it *Iterator[K, V]) Prev() error {
	return it.prev()
}

// ValueRef returns the value reference to update it in place.
func (it Iterator[K, V]) ValueRef() (*V, error) {
	x, err := it.deref()
	if err != nil {
		return nil, err
	}
	return &x.val, nil
}

func (it Iterator[K, V]) SetValue(val V) error {
	x, err := it.deref()
	if err != nil {
		return err
	}
	x.val = val
	return nil
}

func (it Iterator[K, V]) Const() ConstIterator[K, V] {
	return ConstIterator[K, V]{it.cursor}
}

// ConstIterator is the read only Iterator.
type ConstIterator[K, V any] struct {
	cursor[K, V]
}

func (it *ConstIterator[K, V]) Next() error {
	return it.next()
}

func (it *ConstIterator[K, V]) Prev() error {
	return it.prev()
}
