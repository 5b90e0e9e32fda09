// Package refs gives human-readable names to pool root keys, the way a
// version control system's refs/heads lets a person avoid retyping a
// hash. It is a thin bbolt-backed table entirely outside the pool
// directory: nothing here participates in pool reads or writes.
package refs

import (
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/basinfs/hfs/internal/hfserr"
)

var bucketRoots = []byte("roots")

// Store owns one bbolt database file mapping ref name to root key.
// Unlike the singleton it is grounded on, a Store is an ordinary value:
// nothing package-level tracks open instances or reference counts.
type Store struct {
	db *bbolt.DB
}

// Open opens (creating if necessary) the bbolt database at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o644, nil)
	if err != nil {
		return nil, hfserr.Wrap(hfserr.IO, "open refs database", err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRoots)
		return err
	}); err != nil {
		db.Close()
		return nil, hfserr.Wrap(hfserr.IO, "create refs bucket", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Set records name -> rootKey, overwriting any previous value.
func (s *Store) Set(name, rootKey string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRoots).Put([]byte(name), []byte(rootKey))
	})
	if err != nil {
		return hfserr.Wrap(hfserr.IO, "set ref", err)
	}
	return nil
}

// Get returns the root key named by name.
func (s *Store) Get(name string) (string, error) {
	var rootKey string
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketRoots).Get([]byte(name))
		if v == nil {
			return hfserr.New(hfserr.NotFound, fmt.Sprintf("ref %q", name))
		}
		rootKey = string(v)
		return nil
	})
	if err != nil {
		return "", err
	}
	return rootKey, nil
}

// Delete removes a ref; deleting an absent ref is a no-op.
func (s *Store) Delete(name string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRoots).Delete([]byte(name))
	})
	if err != nil {
		return hfserr.Wrap(hfserr.IO, "delete ref", err)
	}
	return nil
}

// List returns every name currently bound to a root key, as a map from
// name to root key; the map carries no ordering.
func (s *Store) List() (map[string]string, error) {
	out := make(map[string]string)
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRoots).ForEach(func(k, v []byte) error {
			out[string(k)] = string(v)
			return nil
		})
	})
	if err != nil {
		return nil, hfserr.Wrap(hfserr.IO, "list refs", err)
	}
	return out, nil
}
