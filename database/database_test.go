package database

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStorage_GetMissing(t *testing.T) {
	s, err := Open(":memory:", 0, nil)
	require.NoError(t, err)
	defer s.Close()

	v, ok, err := s.Get("tweets")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestSQLiteStorage_SetOverwrites(t *testing.T) {
	s, err := Open(":memory:", 0, nil)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set("tweets", "[1]"))
	require.NoError(t, s.Set("tweets", "[2]"))

	v, ok, err := s.Get("tweets")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[2]", v)
}

func TestSQLiteStorage_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "tweets.db")

	s, err := Open(path, 0, nil)
	require.NoError(t, err)
	require.NoError(t, s.Set("tweets", `[{"id":1}]`))
	require.NoError(t, s.Close())

	s, err = Open(path, 0, nil)
	require.NoError(t, err)
	defer s.Close()

	v, ok, err := s.Get("tweets")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":1}]`, v)
}

func TestSQLiteStorage_Quota(t *testing.T) {
	s, err := Open(":memory:", 8, nil)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set("k", "12345678"))

	err = s.Set("k", strings.Repeat("x", 9))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuotaExceeded))

	v, _, err := s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "12345678", v, "rejected write must leave the old value")
}

func TestSQLiteStorage_Closed(t *testing.T) {
	s, err := Open(":memory:", 0, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, _, err = s.Get("k")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, s.Set("k", "v"), ErrUnavailable)
}

func TestMemoryStorage(t *testing.T) {
	m := NewMemoryStorage(4)

	_, ok, err := m.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set("k", "abcd"))
	assert.ErrorIs(t, m.Set("k", "abcde"), ErrQuotaExceeded)
	assert.Equal(t, 1, m.Writes())

	m.SetFailing(true)
	_, _, err = m.Get("k")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, m.Set("k", "a"), ErrUnavailable)

	m.SetFailing(false)
	v, ok, err := m.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abcd", v)
}
