package checkpoint

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	bolt "go.etcd.io/bbolt"
)

var OffsetBucket = []byte("offsets")

var ErrCorruptOffset = errors.New("corrupt stored offset")

// BoltStore keeps one big-endian int64 per source name in a bbolt bucket.
type BoltStore struct {
	db     *bolt.DB
	dbPath string
}

func NewBoltStore(path string) (*BoltStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{
		Timeout:    time.Second,
		NoGrowSync: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(OffsetBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	log.Debug().Str("path", path).Msg("Checkpoint store opened")
	return &BoltStore{db: db, dbPath: path}, nil
}

func (s *BoltStore) Load(source string) (int64, error) {
	var offset int64
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(OffsetBucket).Get([]byte(source))
		if v == nil {
			return nil
		}
		if len(v) != 8 {
			return fmt.Errorf("%w: %s has %d bytes", ErrCorruptOffset, source, len(v))
		}
		offset = int64(binary.BigEndian.Uint64(v))
		return nil
	})
	return offset, err
}

func (s *BoltStore) Save(source string, offset int64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(offset))
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(OffsetBucket).Put([]byte(source), buf[:])
	})
}

func (s *BoltStore) Path() string {
	return s.dbPath
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
