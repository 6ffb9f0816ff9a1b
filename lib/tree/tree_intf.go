package tree

import "iter"

// go install golang.org/x/tools/cmd/stringer@latest

//go:generate stringer -type=Color
type Color uint8

const (
	Black Color = iota
	Red
)

//go:generate stringer -type=Direction
type Direction int8

const (
	Left Direction = -1 + iota
	Root
	Right
)

// Policy selects the rebalancing rules of a map.
// Both policies keep the same ordered map contract.
//
//go:generate stringer -type=Policy
type Policy uint8

const (
	RedBlack Policy = iota // color-balanced
	AVL                    // height-balanced
)

type OrderedMap[K, V any] interface {
	Len() int64
	IsEmpty() bool
	Policy() Policy
	Height() int
	At(key K) (*V, error)
	Load(key K) (V, error)
	Index(key K) *V
	Insert(key K, val V) (Iterator[K, V], bool)
	Erase(it Iterator[K, V]) error
	Remove(key K) (V, error)
	RemoveMin() (K, V, error)
	RemoveMax() (K, V, error)
	Find(key K) Iterator[K, V]
	FindConst(key K) ConstIterator[K, V]
	Count(key K) int
	Contains(key K) bool
	LowerBound(key K) Iterator[K, V]
	UpperBound(key K) Iterator[K, V]
	Begin() Iterator[K, V]
	End() Iterator[K, V]
	Last() Iterator[K, V]
	CBegin() ConstIterator[K, V]
	CEnd() ConstIterator[K, V]
	Foreach(action func(idx int64, key K, val V) bool)
	All() iter.Seq2[K, V]
	Backward() iter.Seq2[K, V]
	Keys() iter.Seq[K]
	Values() iter.Seq[V]
	Clone() *Map[K, V]
	Assign(other *Map[K, V])
	Clear()
	Validate() error
}

// Cursor is the read view shared by Iterator and ConstIterator.
type Cursor[K, V any] interface {
	Key() (K, error)
	Value() (V, error)
	IsEnd() bool
	Equal(other Cursor[K, V]) bool
	ref() cursor[K, V]
}
