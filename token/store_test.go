package token

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "tokens.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveLoadClear(t *testing.T) {
	s := openTestStore(t)

	assert.Equal(t, "", s.Load())

	require.NoError(t, s.Save("abc.def.ghi"))
	assert.Equal(t, "abc.def.ghi", s.Load())

	require.NoError(t, s.Clear())
	assert.Equal(t, "", s.Load())

	// clearing an empty store is fine
	require.NoError(t, s.Clear())
}

func TestIdentity(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Identity()
	assert.ErrorIs(t, err, ErrNoToken)

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
		"exp": exp.Unix(),
	})
	signed, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	require.NoError(t, s.Save(signed))

	id, err := s.Identity()
	require.NoError(t, err)
	assert.Equal(t, "alice", id.Username)
	assert.Equal(t, exp.Unix(), id.ExpiresAt.Unix())
	assert.False(t, id.Expired())
}

func TestIdentityMalformedToken(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Save("not-a-jwt"))

	_, err := s.Identity()
	assert.Error(t, err)
}
