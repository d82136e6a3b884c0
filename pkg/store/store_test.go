package store_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"ragdesk/pkg/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRoundTrip(t *testing.T) {
	s := openTestStore(t)

	saved := map[string]interface{}{"answer": "42", "nested": []interface{}{"a", "b"}}
	s.Save("blob", saved)

	var loaded map[string]interface{}
	assert.True(t, s.Load("blob", &loaded))
	assert.Equal(t, saved, loaded)
}

func TestLoadMissingKeyLeavesDefault(t *testing.T) {
	s := openTestStore(t)

	loaded := []string{"default"}
	assert.False(t, s.Load("never-saved", &loaded))
	assert.Equal(t, []string{"default"}, loaded)
}

func TestLastWriteWins(t *testing.T) {
	s := openTestStore(t)

	for i := 1; i <= 5; i++ {
		s.Save("counter", i)
	}

	var got int
	require.True(t, s.Load("counter", &got))
	assert.Equal(t, 5, got)
}

func TestReopenSeesLastValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := store.Open(path)
	require.NoError(t, err)
	s.Save("theme", "dark")
	require.NoError(t, s.Close())

	s2, err := store.Open(path)
	require.NoError(t, err)
	defer s2.Close()

	var theme string
	require.True(t, s2.Load("theme", &theme))
	assert.Equal(t, "dark", theme)
}

func TestSaveUnserializableIsDropped(t *testing.T) {
	s := openTestStore(t)

	s.Save("bad", make(chan int))

	var got interface{}
	assert.False(t, s.Load("bad", &got))
}

func TestKeysAreIndependent(t *testing.T) {
	s := openTestStore(t)

	s.Save("a", 1)
	s.Save("b", 2)
	s.Save("a", 3)

	var a, b int
	require.True(t, s.Load("a", &a))
	require.True(t, s.Load("b", &b))
	assert.Equal(t, 3, a)
	assert.Equal(t, 2, b)
}
