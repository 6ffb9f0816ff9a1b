package tree

import (
	"slices"
	"strings"
	"testing"

	randv2 "math/rand/v2"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var policyTestcases = []struct {
	name   string
	policy Policy
}{
	{name: "rbtree", policy: RedBlack},
	{name: "avl", policy: AVL},
}

func runPolicies(t *testing.T, fn func(t *testing.T, policy Policy)) {
	for _, tc := range policyTestcases {
		t.Run(tc.name, func(tt *testing.T) {
			fn(tt, tc.policy)
		})
	}
}

func collectKeys[K, V any](m *Map[K, V]) []K {
	keys := make([]K, 0, m.Len())
	for k := range m.Keys() {
		keys = append(keys, k)
	}
	return keys
}

func TestMap_AscendingInsertIsBalanced(t *testing.T) {
	runPolicies(t, func(t *testing.T, policy Policy) {
		m := New[int, string](WithPolicy(policy))
		for i, v := range []string{"a", "b", "c", "d", "e"} {
			_, ok := m.Insert(i+1, v)
			require.True(t, ok)
		}
		require.Equal(t, policy, m.Policy())
		require.Equal(t, int64(5), m.Len())
		require.LessOrEqual(t, m.Height(), 3)
		require.Equal(t, []int{1, 2, 3, 4, 5}, collectKeys(m))
		require.NoError(t, m.Validate())
	})
}

func TestMap_EraseTwoChildrenKeepsOtherIterators(t *testing.T) {
	runPolicies(t, func(t *testing.T, policy Policy) {
		m := New[int, int](WithPolicy(policy))
		for _, key := range []int{5, 3, 8, 1, 4, 7, 9} {
			m.Insert(key, key*10)
		}
		it7 := m.Find(7)
		it5 := m.Find(5)
		require.NotNil(t, it5.n.left)
		require.NotNil(t, it5.n.right)

		require.NoError(t, m.Erase(it5))
		require.Equal(t, []int{1, 3, 4, 7, 8, 9}, collectKeys(m))
		require.NoError(t, m.Validate())
		require.False(t, m.Contains(5))

		key, err := it7.Key()
		require.NoError(t, err)
		require.Equal(t, 7, key)
		val, err := it7.Value()
		require.NoError(t, err)
		require.Equal(t, 70, val)
		require.True(t, it7.Equal(m.Find(7)))

		_, err = it5.Key()
		require.ErrorIs(t, err, ErrInvalidIterator)
		require.ErrorIs(t, m.Erase(it5), ErrInvalidIterator)
		require.Equal(t, int64(6), m.Len())
	})
}

func TestMap_RemoveBorrowPred(t *testing.T) {
	runPolicies(t, func(t *testing.T, policy Policy) {
		m := New[int, int](WithPolicy(policy), WithRemoveBorrowPred())
		for _, key := range []int{5, 3, 8, 1, 4, 7, 9} {
			m.Insert(key, key)
		}
		it4 := m.Find(4)
		val, err := m.Remove(5)
		require.NoError(t, err)
		require.Equal(t, 5, val)
		// 4 takes the position of 5.
		require.Same(t, it4.n, m.root)
		require.NoError(t, m.Validate())
		require.Equal(t, []int{1, 3, 4, 7, 8, 9}, collectKeys(m))
	})
}

func TestMap_AtAndLoad(t *testing.T) {
	runPolicies(t, func(t *testing.T, policy Policy) {
		m := New[int, string](WithPolicy(policy))
		_, err := m.At(42)
		require.ErrorIs(t, err, ErrNotFound)
		_, err = m.Load(42)
		require.ErrorIs(t, err, ErrNotFound)
		require.True(t, m.IsEmpty())

		m.Insert(42, "x")
		ref, err := m.At(42)
		require.NoError(t, err)
		*ref = "y"
		val, err := m.Load(42)
		require.NoError(t, err)
		require.Equal(t, "y", val)
		require.Equal(t, 1, m.Count(42))
		require.Equal(t, 0, m.Count(43))
	})
}

func TestMap_Index(t *testing.T) {
	runPolicies(t, func(t *testing.T, policy Policy) {
		m := New[int, int](WithPolicy(policy))
		m.Insert(1, 1)
		ref := m.Index(7)
		require.NotNil(t, ref)
		require.Equal(t, 0, *ref)
		require.Equal(t, int64(2), m.Len())

		*ref += 3
		*m.Index(7) += 4
		require.Equal(t, int64(2), m.Len())
		val, err := m.Load(7)
		require.NoError(t, err)
		require.Equal(t, 7, val)
		require.NoError(t, m.Validate())
	})
}

func TestMap_InsertDuplicate(t *testing.T) {
	runPolicies(t, func(t *testing.T, policy Policy) {
		m := New[string, int](WithPolicy(policy))
		it1, ok := m.Insert("k", 1)
		require.True(t, ok)
		it2, ok := m.Insert("k", 2)
		require.False(t, ok)
		require.True(t, it1.Equal(it2))
		require.True(t, it2.Equal(m.Find("k")))
		val, err := it2.Value()
		require.NoError(t, err)
		require.Equal(t, 1, val)
		require.Equal(t, int64(1), m.Len())
	})
}

func TestMap_EraseInvalidIterator(t *testing.T) {
	runPolicies(t, func(t *testing.T, policy Policy) {
		core, logs := observer.New(zapcore.DebugLevel)
		m := New[int, int](WithPolicy(policy), WithLogger(zap.New(core)))
		other := New[int, int](WithPolicy(policy))
		for i := 0; i < 4; i++ {
			m.Insert(i, i)
			other.Insert(i, i)
		}

		require.ErrorIs(t, m.Erase(m.End()), ErrInvalidIterator)
		require.ErrorIs(t, m.Erase(other.Find(1)), ErrInvalidIterator)
		require.ErrorIs(t, m.Erase(Iterator[int, int]{}), ErrInvalidIterator)
		require.Equal(t, int64(4), m.Len())
		require.Equal(t, int64(4), other.Len())
		require.Equal(t, []int{0, 1, 2, 3}, collectKeys(m))
		require.Equal(t, 3, logs.FilterMessage("[xtree] erase rejected").Len())

		it := m.Begin()
		require.NoError(t, m.Erase(it))
		require.ErrorIs(t, m.Erase(it), ErrInvalidIterator)
		require.Equal(t, int64(3), m.Len())
		require.NoError(t, m.Validate())
	})
}

func TestMap_RemoveMinMax(t *testing.T) {
	runPolicies(t, func(t *testing.T, policy Policy) {
		m := New[int, int](WithPolicy(policy))
		_, _, err := m.RemoveMax()
		require.ErrorIs(t, err, ErrEmpty)
		for i := 0; i < 16; i++ {
			m.Insert(i, -i)
		}
		for lo, hi := 0, 15; lo < hi; lo, hi = lo+1, hi-1 {
			key, val, err := m.RemoveMin()
			require.NoError(t, err)
			require.Equal(t, lo, key)
			require.Equal(t, -lo, val)
			key, _, err = m.RemoveMax()
			require.NoError(t, err)
			require.Equal(t, hi, key)
			require.NoError(t, m.Validate())
		}
		require.True(t, m.IsEmpty())
		_, err = m.Remove(3)
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMap_Bounds(t *testing.T) {
	runPolicies(t, func(t *testing.T, policy Policy) {
		m := New[int, int](WithPolicy(policy))
		for i := 10; i <= 50; i += 10 {
			m.Insert(i, i)
		}
		type testcase struct {
			key        int
			lowerBound int
			upperBound int
			lowerEnd   bool
			upperEnd   bool
		}
		testcases := []testcase{
			{key: 5, lowerBound: 10, upperBound: 10},
			{key: 10, lowerBound: 10, upperBound: 20},
			{key: 25, lowerBound: 30, upperBound: 30},
			{key: 50, lowerBound: 50, upperEnd: true},
			{key: 51, lowerEnd: true, upperEnd: true},
		}
		for _, tc := range testcases {
			lb := m.LowerBound(tc.key)
			require.Equal(t, tc.lowerEnd, lb.IsEnd(), "lower bound of %d", tc.key)
			if !tc.lowerEnd {
				key, err := lb.Key()
				require.NoError(t, err)
				require.Equal(t, tc.lowerBound, key)
			}
			ub := m.UpperBound(tc.key)
			require.Equal(t, tc.upperEnd, ub.IsEnd(), "upper bound of %d", tc.key)
			if !tc.upperEnd {
				key, err := ub.Key()
				require.NoError(t, err)
				require.Equal(t, tc.upperBound, key)
			}
		}
	})
}

func TestMap_CloneIsIndependent(t *testing.T) {
	runPolicies(t, func(t *testing.T, policy Policy) {
		m := New[int, int](WithPolicy(policy))
		for i := 0; i < 32; i++ {
			m.Insert(i, i)
		}
		c := m.Clone()
		require.Equal(t, m.Len(), c.Len())
		require.Equal(t, m.Height(), c.Height())
		require.Equal(t, policy, c.Policy())
		require.NoError(t, c.Validate())
		require.NotSame(t, m.root, c.root)

		_, err := c.Remove(0)
		require.NoError(t, err)
		*c.Index(100) = 100
		ref, err := c.At(1)
		require.NoError(t, err)
		*ref = -1

		require.Equal(t, int64(32), m.Len())
		require.True(t, m.Contains(0))
		require.False(t, m.Contains(100))
		val, err := m.Load(1)
		require.NoError(t, err)
		require.Equal(t, 1, val)
		require.NoError(t, m.Validate())
		require.NoError(t, c.Validate())

		// The iterators of the source do not belong to the clone.
		require.ErrorIs(t, c.Erase(m.Find(5)), ErrInvalidIterator)
	})
}

func TestMap_Assign(t *testing.T) {
	src := New[int, int](WithPolicy(AVL), WithDesc())
	for i := 0; i < 8; i++ {
		src.Insert(i, i)
	}
	dst := New[int, int]()
	dst.Insert(100, 100)
	stale := dst.Find(100)

	dst.Assign(src)
	require.Equal(t, AVL, dst.Policy())
	require.Equal(t, int64(8), dst.Len())
	require.Equal(t, []int{7, 6, 5, 4, 3, 2, 1, 0}, collectKeys(dst))
	require.NoError(t, dst.Validate())
	_, err := stale.Key()
	require.ErrorIs(t, err, ErrInvalidIterator)

	dst.Insert(8, 8)
	require.False(t, src.Contains(8))

	dst.Assign(dst)
	dst.Assign(nil)
	require.Equal(t, int64(9), dst.Len())
}

func TestMap_Clear(t *testing.T) {
	runPolicies(t, func(t *testing.T, policy Policy) {
		m := New[int, int](WithPolicy(policy))
		for i := 0; i < 100; i++ {
			m.Insert(i, i)
		}
		it := m.Find(50)
		m.Clear()
		require.True(t, m.IsEmpty())
		require.Equal(t, int64(0), m.Len())
		require.Equal(t, 0, m.Height())
		require.True(t, m.Begin().Equal(m.End()))
		_, err := it.Value()
		require.ErrorIs(t, err, ErrInvalidIterator)
		require.ErrorIs(t, m.Erase(it), ErrInvalidIterator)
		require.NoError(t, m.Validate())

		m.Clear()
		m.Insert(1, 1)
		require.Equal(t, int64(1), m.Len())
	})
}

func TestMap_CustomLess(t *testing.T) {
	runPolicies(t, func(t *testing.T, policy Policy) {
		m := NewFunc[string, int](func(i, j string) bool {
			return strings.ToLower(i) < strings.ToLower(j)
		}, WithPolicy(policy))
		m.Insert("Banana", 1)
		m.Insert("apple", 2)
		_, ok := m.Insert("APPLE", 3)
		require.False(t, ok)
		m.Insert("cherry", 4)
		require.Equal(t, []string{"apple", "Banana", "cherry"}, collectKeys(m))
		val, err := m.Load("BANANA")
		require.NoError(t, err)
		require.Equal(t, 1, val)
	})
	require.Panics(t, func() {
		NewFunc[int, int](nil)
	})
}

func TestMap_DescOrder(t *testing.T) {
	runPolicies(t, func(t *testing.T, policy Policy) {
		m := New[float64, int](WithPolicy(policy), WithDesc())
		for _, key := range []float64{0.5, -1, 3.25, 2} {
			m.Insert(key, 0)
		}
		require.Equal(t, []float64{3.25, 2, 0.5, -1}, collectKeys(m))
		lb := m.LowerBound(1)
		key, err := lb.Key()
		require.NoError(t, err)
		require.Equal(t, 0.5, key)
		require.NoError(t, m.Validate())
	})
}

func TestMap_RangeFuncs(t *testing.T) {
	runPolicies(t, func(t *testing.T, policy Policy) {
		m := New[int, string](WithPolicy(policy))
		for i, v := range []string{"a", "b", "c", "d"} {
			m.Insert(i, v)
		}

		values := make([]string, 0, 4)
		for v := range m.Values() {
			values = append(values, v)
		}
		require.Equal(t, []string{"a", "b", "c", "d"}, values)

		backward := make([]int, 0, 4)
		for k := range m.Backward() {
			backward = append(backward, k)
		}
		require.Equal(t, []int{3, 2, 1, 0}, backward)

		first := make([]int, 0, 2)
		for k := range m.All() {
			if len(first) == 2 {
				break
			}
			first = append(first, k)
		}
		require.Equal(t, []int{0, 1}, first)

		// Erasing the current entry in the loop body.
		for k := range m.All() {
			if k%2 == 0 {
				_, err := m.Remove(k)
				require.NoError(t, err)
			}
		}
		require.Equal(t, []int{1, 3}, collectKeys(m))
		require.NoError(t, m.Validate())
	})
}

func TestMap_ForeachEarlyStop(t *testing.T) {
	m := New[int, int]()
	for i := 0; i < 10; i++ {
		m.Insert(i, i*i)
	}
	visited := make([]int64, 0, 4)
	m.Foreach(func(idx int64, key int, val int) bool {
		require.Equal(t, int64(key), idx)
		require.Equal(t, key*key, val)
		visited = append(visited, idx)
		return idx < 3
	})
	require.Equal(t, []int64{0, 1, 2, 3}, visited)

	empty := New[int, int]()
	empty.Foreach(func(int64, int, int) bool {
		require.FailNow(t, "foreach an empty map")
		return true
	})
}

func mapRandomOperationsRunCore(t *testing.T, policy Policy, rmByPred bool) {
	opts := []MapOption{WithPolicy(policy)}
	if rmByPred {
		opts = append(opts, WithRemoveBorrowPred())
	}
	m := New[int, int](opts...)
	model := make(map[int]int, 512)
	rng := randv2.New(randv2.NewPCG(1, uint64(policy)))

	for i := 0; i < 4000; i++ {
		key := rng.IntN(512)
		switch rng.IntN(4) {
		case 0, 1:
			_, ok := m.Insert(key, i)
			_, exists := model[key]
			require.Equal(t, !exists, ok)
			if !exists {
				model[key] = i
			}
		case 2:
			val, err := m.Remove(key)
			if expected, exists := model[key]; exists {
				require.NoError(t, err)
				require.Equal(t, expected, val)
				delete(model, key)
			} else {
				require.ErrorIs(t, err, ErrNotFound)
			}
		case 3:
			it := m.LowerBound(key)
			if it.IsEnd() {
				continue
			}
			k, err := it.Key()
			require.NoError(t, err)
			require.NoError(t, m.Erase(it))
			delete(model, k)
		}
		if i%50 == 0 {
			require.NoError(t, m.Validate())
		}
		require.Equal(t, int64(len(model)), m.Len())
	}
	require.NoError(t, m.Validate())

	keys := make([]int, 0, len(model))
	for k := range model {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	require.Equal(t, keys, collectKeys(m))
	for k, v := range m.All() {
		require.Equal(t, model[k], v)
	}
}

func TestMap_RandomOperations(t *testing.T) {
	runPolicies(t, func(t *testing.T, policy Policy) {
		t.Run("rm by succ", func(tt *testing.T) {
			mapRandomOperationsRunCore(tt, policy, false)
		})
		t.Run("rm by pred", func(tt *testing.T) {
			mapRandomOperationsRunCore(tt, policy, true)
		})
	})
}

func BenchmarkMap_AVLRandom(b *testing.B) {
	b.StopTimer()
	m := New[int, int](WithPolicy(AVL))
	rngArr := make([]int, 0, b.N)
	for i := 0; i < b.N; i++ {
		rngArr = append(rngArr, randv2.Int())
	}

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		m.Insert(rngArr[i], i)
	}
}
