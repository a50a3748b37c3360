package sidetable

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_SetGet(t *testing.T) {
	table := New()
	owner := table.NewHandle()

	assert.False(t, table.Has(owner, "root_and_path"))

	_, err := table.Get(owner, "root_and_path")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingKey)
	assert.Contains(t, err.Error(), "root_and_path")

	assert.Equal(t, "fallback", table.GetOrDefault(owner, "root_and_path", "fallback"))

	table.Set(owner, "root_and_path", "value")
	assert.True(t, table.Has(owner, "root_and_path"))

	value, err := table.Get(owner, "root_and_path")
	require.NoError(t, err)
	assert.Equal(t, "value", value)
}

func TestTable_NilValueIsPresent(t *testing.T) {
	table := New()
	owner := table.NewHandle()

	table.Set(owner, "embedded_one.source", nil)

	assert.True(t, table.Has(owner, "embedded_one.source"))
	assert.Nil(t, table.GetOrDefault(owner, "embedded_one.source", "fallback"))
}

func TestTable_KeyedByIdentity(t *testing.T) {
	table := New()
	a := table.NewHandle()
	b := table.NewHandle()
	require.NotEqual(t, a, b)

	table.Set(a, "key", 1)

	assert.True(t, table.Has(a, "key"))
	assert.False(t, table.Has(b, "key"))
}

func TestTable_Remove(t *testing.T) {
	table := New()
	owner := table.NewHandle()

	table.Set(owner, "a", 1)
	table.Set(owner, "b", 2)
	table.Remove(owner, "a")

	assert.False(t, table.Has(owner, "a"))
	assert.True(t, table.Has(owner, "b"))
	assert.Equal(t, 1, table.Len())

	table.Remove(owner, "b")
	assert.Equal(t, 0, table.Len())

	// Removing from an unknown owner is a no-op
	table.Remove(Handle(999), "a")
}

func TestTable_RemovePrefix(t *testing.T) {
	table := New()
	owner := table.NewHandle()

	table.Set(owner, "embedded_one.source", nil)
	table.Set(owner, "embedded_one.author", "x")
	table.Set(owner, "root_and_path", "y")

	table.RemovePrefix(owner, "embedded_one.")

	assert.Equal(t, []string{"root_and_path"}, table.Keys(owner))
}

func TestTable_RemoveAllIsIdempotent(t *testing.T) {
	table := New()
	owner := table.NewHandle()
	other := table.NewHandle()

	table.Set(owner, "a", 1)
	table.Set(owner, "b", 2)
	table.Set(other, "a", 3)

	table.RemoveAll(owner)
	table.RemoveAll(owner)

	assert.Empty(t, table.Keys(owner))
	assert.Equal(t, 1, table.Len())
	assert.True(t, table.Has(other, "a"))
}

type tracked struct {
	payload [64]byte
}

func TestTrack_ReleasesEntriesWhenUnreachable(t *testing.T) {
	table := New()

	func() {
		obj := &tracked{}
		h, _ := Track(table, obj)
		table.Set(h, "key", "value")
		require.Equal(t, 1, table.Len())
		runtime.KeepAlive(obj)
	}()

	assert.Eventually(t, func() bool {
		runtime.GC()
		return table.Len() == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestTrack_StopKeepsEntries(t *testing.T) {
	table := New()
	obj := &tracked{}

	h, cleanup := Track(table, obj)
	table.Set(h, "key", "value")
	cleanup.Stop()

	table.RemoveAll(h)
	assert.Equal(t, 0, table.Len())
	runtime.KeepAlive(obj)
}
