package metadata

import (
	"bytes"
	"context"
	"testing"

	"github.com/dmitrijs2005/iamclient/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSealed(t *testing.T, pass string) (*SealedRepository, *SQLiteRepository) {
	t.Helper()
	inner := NewSQLiteRepository(setupDB(t))
	r, err := NewSealedRepository(context.Background(), inner, []byte(pass))
	require.NoError(t, err)
	return r, inner
}

func TestSealed_RoundTripAndAtRest(t *testing.T) {
	r, inner := newSealed(t, "pw")
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "access_token", []byte("T1")))

	v, err := r.Get(ctx, "access_token")
	require.NoError(t, err)
	assert.Equal(t, []byte("T1"), v)

	raw, err := inner.Get(ctx, "access_token")
	require.NoError(t, err)
	assert.False(t, bytes.Contains(raw, []byte("T1")), "value must be encrypted at rest")

	salt, err := inner.Get(ctx, common.MetadataKeyStateSalt)
	require.NoError(t, err)
	assert.NotEmpty(t, salt)
}

func TestSealed_MissingKey(t *testing.T) {
	r, _ := newSealed(t, "pw")
	v, err := r.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSealed_ReopenWithSamePassphrase(t *testing.T) {
	ctx := context.Background()
	inner := NewSQLiteRepository(setupDB(t))

	r1, err := NewSealedRepository(ctx, inner, []byte("pw"))
	require.NoError(t, err)
	require.NoError(t, r1.SetMany(ctx, map[string][]byte{"a": []byte("1"), "b": []byte("2")}))

	r2, err := NewSealedRepository(ctx, inner, []byte("pw"))
	require.NoError(t, err)
	m, err := r2.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"a": []byte("1"), "b": []byte("2")}, m)

	wrong, err := NewSealedRepository(ctx, inner, []byte("other"))
	require.NoError(t, err)
	_, err = wrong.Get(ctx, "a")
	assert.ErrorContains(t, err, "failed to open metadata[a]")
}

func TestSealed_ClearKeepsSalt(t *testing.T) {
	r, inner := newSealed(t, "pw")
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte("1")))
	require.NoError(t, r.Clear(ctx))

	m, err := inner.List(ctx)
	require.NoError(t, err)
	assert.Len(t, m, 1)
	assert.Contains(t, m, common.MetadataKeyStateSalt)

	require.NoError(t, r.Set(ctx, "a", []byte("2")))
	v, err := r.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), v)
}

func TestSealed_ReservedKey(t *testing.T) {
	r, _ := newSealed(t, "pw")
	ctx := context.Background()
	salt := common.MetadataKeyStateSalt

	_, err := r.Get(ctx, salt)
	assert.ErrorIs(t, err, ErrReservedKey)
	assert.ErrorIs(t, r.Set(ctx, salt, []byte("x")), ErrReservedKey)
	assert.ErrorIs(t, r.SetMany(ctx, map[string][]byte{salt: nil}), ErrReservedKey)
	assert.ErrorIs(t, r.Delete(ctx, salt), ErrReservedKey)
	assert.ErrorIs(t, r.DeleteMany(ctx, "a", salt), ErrReservedKey)
}

func TestSealed_DeleteAndDeleteMany(t *testing.T) {
	r, _ := newSealed(t, "pw")
	ctx := context.Background()

	require.NoError(t, r.SetMany(ctx, map[string][]byte{"a": []byte("1"), "b": []byte("2"), "c": []byte("3")}))
	require.NoError(t, r.Delete(ctx, "a"))
	require.NoError(t, r.DeleteMany(ctx, "b"))

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"c": []byte("3")}, m)
}
