package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRegistry_RegisterGet verifies basic registration and lookup.
func TestRegistry_RegisterGet(t *testing.T) {
	r := New[string, int]()

	r.Register("one", 1)
	r.Register("two", 2)
	r.Register("one", 11)

	v, ok := r.Get("one")
	require.True(t, ok)
	assert.Equal(t, 11, v)

	_, ok = r.Get("missing")
	assert.False(t, ok)
	assert.True(t, r.Has("two"))
	assert.Equal(t, 2, r.Len())
}

// TestRegistry_Add verifies duplicate keys are rejected with ErrDuplicate.
func TestRegistry_Add(t *testing.T) {
	r := New[string, int]()

	require.NoError(t, r.Add("a", 1))
	err := r.Add("a", 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Contains(t, err.Error(), "a")

	v, _ := r.Get("a")
	assert.Equal(t, 1, v, "failed Add must not replace")
}

// TestRegistry_RegisterManyAndDelete verifies bulk registration and removal.
func TestRegistry_RegisterManyAndDelete(t *testing.T) {
	r := New[string, string]()
	r.RegisterMany(map[string]string{"x": "1", "y": "2", "z": "3"})
	assert.Equal(t, 3, r.Len())

	r.Delete("y")
	r.Delete("never-registered")
	assert.False(t, r.Has("y"))
	assert.Equal(t, []string{"x", "z"}, r.Keys())
}

// TestRegistry_KeysSorted verifies keys come back in sorted order.
func TestRegistry_KeysSorted(t *testing.T) {
	r := New[string, bool]()
	for _, k := range []string{"upper", "concat", "len", "by"} {
		r.Register(k, true)
	}
	assert.Equal(t, []string{"by", "concat", "len", "upper"}, r.Keys())

	assert.Empty(t, New[int, bool]().Keys())
}

// TestRegistry_Range verifies iteration order and early stop.
func TestRegistry_Range(t *testing.T) {
	r := New[int, string]()
	r.RegisterMany(map[int]string{3: "c", 1: "a", 2: "b"})

	t.Run("visits in key order", func(t *testing.T) {
		var got []string
		r.Range(func(_ int, v string) bool {
			got = append(got, v)
			return true
		})
		assert.Equal(t, []string{"a", "b", "c"}, got)
	})

	t.Run("stops early", func(t *testing.T) {
		var n int
		r.Range(func(int, string) bool {
			n++
			return false
		})
		assert.Equal(t, 1, n)
	})

	t.Run("mutation during range", func(t *testing.T) {
		c := r.Clone()
		var n int
		c.Range(func(k int, _ string) bool {
			c.Delete(k)
			c.Register(k+10, "new")
			n++
			return true
		})
		assert.Equal(t, 3, n)
		assert.Equal(t, []int{11, 12, 13}, c.Keys())
	})
}

// TestRegistry_CloneIsIndependent verifies a clone does not share entries.
func TestRegistry_CloneIsIndependent(t *testing.T) {
	r := New[string, int]()
	r.Register("a", 1)

	c := r.Clone()
	c.Register("b", 2)
	r.Delete("a")

	assert.Empty(t, r.Keys())
	assert.Equal(t, []string{"a", "b"}, c.Keys())
	assert.Equal(t, 0, r.Len())
}

// TestRegistry_Concurrent verifies concurrent readers and writers.
func TestRegistry_Concurrent(t *testing.T) {
	r := New[string, int]()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			r.Register(fmt.Sprintf("k%02d", i), i)
		}(i)
		go func() {
			defer wg.Done()
			_ = r.Keys()
			r.Range(func(string, int) bool { return true })
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, r.Len())
}
