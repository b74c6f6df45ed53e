package session

import (
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketSessions = []byte("sessions")

// BoltStore a bbolt backed store; slots survive process restarts, so a
// scheduled secondary validation is not lost on redeploy.
type BoltStore struct {
	locks *locks
	db    *bolt.DB
}

// NewBoltStore opens (or creates) the store file
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSessions)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltStore{locks: newLocks(), db: db}, nil
}

func (s *BoltStore) Lock(id string) func() {
	return s.locks.lock(id)
}

func (s *BoltStore) Load(id string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		stored := tx.Bucket(bucketSessions).Get([]byte(id))
		if stored != nil {
			data = make([]byte, len(stored))
			copy(data, stored)
		}
		return nil
	})
	return data, err
}

func (s *BoltStore) Save(id string, data []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSessions).Put([]byte(id), data)
	})
}

func (s *BoltStore) Delete(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSessions).Delete([]byte(id))
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
