// Package data keeps a snapshot of Internet Settings values in a bbolt
// file so they can be resolved away from the machine they came from.
package data

import (
	"encoding/binary"
	"os"
	"strings"
	"time"

	"github.com/metacubex/bbolt"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"sysproxy-service/store"
)

var ErrCorrupt = errors.New("corrupt snapshot record")

type Snapshot struct {
	DB *bbolt.DB
}

var (
	_ store.Store  = (*Snapshot)(nil)
	_ store.Writer = (*Snapshot)(nil)
)

func open(path string, readOnly bool) (*bbolt.DB, error) {
	return bbolt.Open(path, 0o666, &bbolt.Options{Timeout: time.Second, ReadOnly: readOnly})
}

// Create opens path for writing. A file that is not a valid database is
// replaced.
func Create(path string) (*Snapshot, error) {
	db, err := open(path, false)
	if err != nil {
		if err == bbolt.ErrInvalid || err == bbolt.ErrChecksum || err == bbolt.ErrVersionMismatch {
			if os.Remove(path) == nil {
				klog.Warningf("Removed invalid snapshot file: %s", path)
			}
			db, err = open(path, false)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "open snapshot %s", path)
		}
	}
	return &Snapshot{DB: db}, nil
}

// Open opens an existing snapshot read-only.
func Open(path string) (*Snapshot, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrap(err, "stat snapshot")
	}
	db, err := open(path, true)
	if err != nil {
		return nil, errors.Wrapf(err, "open snapshot %s", path)
	}
	return &Snapshot{DB: db}, nil
}

func (s *Snapshot) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

func (s *Snapshot) Put(path, name string, v store.Value) error {
	record, err := encode(v)
	if err != nil {
		return err
	}
	return s.DB.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(store.CanonicalPath(path)))
		if err != nil {
			return err
		}
		return bucket.Put([]byte(strings.ToLower(name)), record)
	})
}

func (s *Snapshot) Lookup(path, name string) (v store.Value, err error) {
	err = s.DB.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(store.CanonicalPath(path)))
		if bucket == nil {
			return store.ErrNotFound
		}
		record := bucket.Get([]byte(strings.ToLower(name)))
		if record == nil {
			return store.ErrNotFound
		}
		v, err = decode(record)
		return err
	})
	return v, err
}

// Keys lists the stored keys in bucket order.
func (s *Snapshot) Keys() ([]store.Key, error) {
	var keys []store.Key
	err := s.DB.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(path []byte, b *bbolt.Bucket) error {
			return b.ForEach(func(name, _ []byte) error {
				keys = append(keys, store.Key{Path: string(path), Name: string(name)})
				return nil
			})
		})
	})
	return keys, err
}

// A record is the kind byte followed by the payload; DWord payloads are
// four little-endian bytes.
func encode(v store.Value) ([]byte, error) {
	switch v.Kind {
	case store.Binary, store.String, store.ExpandString:
		return append([]byte{byte(v.Kind)}, v.Data...), nil
	case store.DWord:
		record := make([]byte, 5)
		record[0] = byte(v.Kind)
		binary.LittleEndian.PutUint32(record[1:], v.Integer)
		return record, nil
	default:
		return nil, errors.Errorf("cannot store value of kind %s", v.Kind)
	}
}

func decode(record []byte) (store.Value, error) {
	if len(record) == 0 {
		return store.Value{}, ErrCorrupt
	}
	kind := store.Kind(record[0])
	switch kind {
	case store.Binary, store.String, store.ExpandString:
		return store.Value{Kind: kind, Data: append([]byte(nil), record[1:]...)}, nil
	case store.DWord:
		if len(record) != 5 {
			return store.Value{}, ErrCorrupt
		}
		return store.DWordValue(binary.LittleEndian.Uint32(record[1:])), nil
	default:
		return store.Value{}, errors.Wrapf(ErrCorrupt, "kind %d", kind)
	}
}
