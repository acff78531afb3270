package checkpoint

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"github.com/xoelrdgz/tickerwatch/internal/ports"
)

var (
	_ ports.OffsetStore = (*MemoryStore)(nil)
	_ ports.OffsetStore = (*BoltStore)(nil)
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()

	offset, err := s.Load("ticker.dat")
	require.NoError(t, err)
	assert.Equal(t, int64(0), offset)

	require.NoError(t, s.Save("ticker.dat", 128))
	offset, err = s.Load("ticker.dat")
	require.NoError(t, err)
	assert.Equal(t, int64(128), offset)
	assert.NoError(t, s.Close())
}

func TestBoltStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "offsets.db")

	s, err := NewBoltStore(path)
	require.NoError(t, err)

	offset, err := s.Load("ticker.dat")
	require.NoError(t, err)
	assert.Equal(t, int64(0), offset)

	require.NoError(t, s.Save("ticker.dat", 4096))
	require.NoError(t, s.Save("other.dat", 7))
	require.NoError(t, s.Close())

	s, err = NewBoltStore(path)
	require.NoError(t, err)
	defer s.Close()

	offset, err = s.Load("ticker.dat")
	require.NoError(t, err)
	assert.Equal(t, int64(4096), offset)

	offset, err = s.Load("other.dat")
	require.NoError(t, err)
	assert.Equal(t, int64(7), offset)
	assert.Equal(t, path, s.Path())
}

func TestBoltStoreCorruptValue(t *testing.T) {
	s, err := NewBoltStore(filepath.Join(t.TempDir(), "offsets.db"))
	require.NoError(t, err)
	defer s.Close()

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(OffsetBucket).Put([]byte("bad"), []byte{1, 2})
	})
	require.NoError(t, err)

	_, err = s.Load("bad")
	assert.ErrorIs(t, err, ErrCorruptOffset)
}
