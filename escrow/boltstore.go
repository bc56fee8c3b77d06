package escrow

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

var (
	bucketPools   = []byte("pools")
	bucketWallets = []byte("wallets")
)

// BoltPoolStore is a bbolt-backed implementation of PoolStore. Pool records
// are gob-encoded under their identifier; wallet index entries use composite
// owner||sequence keys so a prefix scan yields acceptance order.
type BoltPoolStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ PoolStore = (*BoltPoolStore)(nil)

// OpenBoltPoolStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltPoolStore(dbPath string) (*BoltPoolStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("escrow: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("escrow: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketPools, bucketWallets} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("boltstore: create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("escrow: create buckets: %w", err)
	}

	return &BoltPoolStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltPoolStore) Close() error { return s.db.Close() }

// encodeGob serializes a value using gob encoding.
func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGob deserializes gob-encoded data into a value.
func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// putPool writes the pool record inside an open transaction.
func putPool(tx *bbolt.Tx, p *Pool) error {
	data, err := encodeGob(p)
	if err != nil {
		return fmt.Errorf("boltstore: encode pool: %w", err)
	}
	if err := tx.Bucket(bucketPools).Put(p.ID[:], data); err != nil {
		return fmt.Errorf("boltstore: put pool: %w", err)
	}
	return nil
}

// PutPool stores or replaces a pool record.
func (s *BoltPoolStore) PutPool(p *Pool) error {
	if p == nil {
		return fmt.Errorf("%w: nil pool", ErrPoolNotFound)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return putPool(tx, p)
	})
}

// PutPoolWithRef stores the pool record and appends a wallet index entry in
// one transaction.
func (s *BoltPoolStore) PutPoolWithRef(p *Pool, owner AccountID, ref ContributionRef) error {
	if p == nil {
		return fmt.Errorf("%w: nil pool", ErrPoolNotFound)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := putPool(tx, p); err != nil {
			return err
		}

		wb := tx.Bucket(bucketWallets)
		seq, err := wb.NextSequence()
		if err != nil {
			return fmt.Errorf("boltstore: wallet sequence: %w", err)
		}

		// Composite key: owner || sequence for ordered prefix scanning.
		key := make([]byte, len(owner)+8)
		copy(key, owner[:])
		binary.BigEndian.PutUint64(key[len(owner):], seq)

		data, err := encodeGob(&ref)
		if err != nil {
			return fmt.Errorf("boltstore: encode wallet ref: %w", err)
		}
		if err := wb.Put(key, data); err != nil {
			return fmt.Errorf("boltstore: put wallet ref: %w", err)
		}
		return nil
	})
}

// GetPool retrieves a pool by identifier.
func (s *BoltPoolStore) GetPool(id PoolID) (*Pool, error) {
	var pool Pool
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketPools).Get(id[:])
		if data == nil {
			return ErrPoolNotFound
		}
		if err := decodeGob(data, &pool); err != nil {
			return fmt.Errorf("boltstore: decode pool: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if pool.Contributions == nil {
		pool.Contributions = make(map[ContributionID]*Contribution)
	}
	return &pool, nil
}

// ListPools returns all stored pools.
func (s *BoltPoolStore) ListPools() ([]*Pool, error) {
	var pools []*Pool
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPools).ForEach(func(k, v []byte) error {
			var pool Pool
			if err := decodeGob(v, &pool); err != nil {
				return fmt.Errorf("boltstore: decode pool in list: %w", err)
			}
			if pool.Contributions == nil {
				pool.Contributions = make(map[ContributionID]*Contribution)
			}
			pools = append(pools, &pool)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("boltstore: list pools: %w", err)
	}
	return pools, nil
}

// WalletRefs returns the owner's contribution references in acceptance order.
func (s *BoltPoolStore) WalletRefs(owner AccountID) ([]ContributionRef, error) {
	var refs []ContributionRef
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketWallets).Cursor()
		for k, v := c.Seek(owner[:]); k != nil && bytes.HasPrefix(k, owner[:]); k, v = c.Next() {
			var ref ContributionRef
			if err := decodeGob(v, &ref); err != nil {
				return fmt.Errorf("boltstore: decode wallet ref: %w", err)
			}
			refs = append(refs, ref)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return refs, nil
}
