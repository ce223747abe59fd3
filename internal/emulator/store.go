// Package emulator is a small S3-compatible server for local development.
// It understands the path-style bucket and object calls the uploader makes
// and does not verify request signatures.
package emulator

import (
	"crypto/md5"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
)

var (
	// ErrNotFound indicates the object does not exist.
	ErrNotFound = errors.New("emulator: object not found")
	// ErrNoSuchBucket indicates the bucket was never created.
	ErrNoSuchBucket = errors.New("emulator: bucket not found")
	errCorrupt      = errors.New("emulator: stored object is truncated")
)

// Object is a stored payload.
type Object struct {
	Data         []byte
	ETag         string
	LastModified time.Time
}

// Stored values are an 8-byte big-endian unix-nano write time followed by the payload.
const stampLen = 8

func encodeObject(data []byte, at time.Time) []byte {
	v := make([]byte, stampLen+len(data))
	binary.BigEndian.PutUint64(v, uint64(at.UnixNano()))
	copy(v[stampLen:], data)
	return v
}

func decodeObject(v []byte) (Object, error) {
	if len(v) < stampLen {
		return Object{}, errCorrupt
	}
	data := v[stampLen:]
	return Object{
		Data:         data,
		ETag:         etag(data),
		LastModified: time.Unix(0, int64(binary.BigEndian.Uint64(v))).UTC(),
	}, nil
}

// Store keeps buckets and objects in badger.
type Store struct {
	db *badger.DB
}

// OpenStore opens a store under dir; an empty dir keeps everything in memory.
func OpenStore(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func bucketKey(bucket string) []byte { return []byte("b/" + bucket) }

func objectKey(bucket, key string) []byte { return []byte("o/" + bucket + "/" + key) }

// CreateBucket is idempotent.
func (s *Store) CreateBucket(bucket string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(bucketKey(bucket), []byte{1})
	})
}

// Put stores data and returns its ETag (quoted hex md5, as S3 does for single-part uploads).
func (s *Store) Put(bucket, key string, data []byte) (string, error) {
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(bucketKey(bucket)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNoSuchBucket
			}
			return err
		}
		return txn.Set(objectKey(bucket, key), encodeObject(data, time.Now().UTC()))
	})
	if err != nil {
		return "", err
	}
	return etag(data), nil
}

// Get returns the object stored under bucket and key, with the time it was written.
func (s *Store) Get(bucket, key string) (Object, error) {
	var obj Object
	err := s.db.View(func(txn *badger.Txn) error {
		if _, err := txn.Get(bucketKey(bucket)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNoSuchBucket
			}
			return err
		}
		item, err := txn.Get(objectKey(bucket, key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		v, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		obj, err = decodeObject(v)
		return err
	})
	if err != nil {
		return Object{}, err
	}
	return obj, nil
}

func etag(data []byte) string {
	sum := md5.Sum(data)
	return `"` + hex.EncodeToString(sum[:]) + `"`
}
