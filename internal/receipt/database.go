package receipt

import (
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const (
	bucketName = "receipts"
	slotKey    = "receiptTracker.receipts.v1"
)

// Slot is the durable key-value slot holding the serialized collection.
// The whole collection is written as one record; there is no per-receipt
// row.
type Slot interface {
	// Load reads the slot. A missing slot returns (nil, nil).
	Load() ([]byte, error)

	// Store overwrites the slot with the serialized collection
	Store(data []byte) error

	// Close releases the underlying resource
	Close() error
}

// BoltSlot implements the Slot interface using BoltDB. Bolt holds an
// exclusive file lock, so this backend serves a single running instance;
// use FileSlot when several instances share the same data.
type BoltSlot struct {
	db *bbolt.DB
}

// NewBoltSlot creates a new BoltSlot instance
func NewBoltSlot(path string) (*BoltSlot, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &BoltSlot{db: db}, nil
}

// Load reads the serialized collection from the database
func (b *BoltSlot) Load() ([]byte, error) {
	var data []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if v := bucket.Get([]byte(slotKey)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading slot: %w", err)
	}
	return data, nil
}

// Store writes the serialized collection to the database
func (b *BoltSlot) Store(data []byte) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		return bucket.Put([]byte(slotKey), data)
	})
}

// Close closes the database connection
func (b *BoltSlot) Close() error {
	return b.db.Close()
}
