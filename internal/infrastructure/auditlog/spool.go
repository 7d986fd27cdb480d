package auditlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/tasklight/backend/domain"
)

// Spool wraps BoltDB to persist audit events locally until the background
// processor drains them into the relational store. Request handling never
// waits on the relational audit write.
type Spool struct {
	db     *bolt.DB
	bucket []byte
}

// Open initializes the BoltDB file and ensures the bucket exists.
func Open(path string, bucket string) (*Spool, error) {
	if bucket == "" {
		bucket = "audit"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Spool{
		db:     db,
		bucket: []byte(bucket),
	}, nil
}

// Append stores an event. Missing id and timestamp are filled in so callers
// can pass bare events.
func (s *Spool) Append(event domain.Event) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	// Keys sort by time so GetBatch drains oldest-first.
	key := fmt.Sprintf("%020d_%s", event.CreatedAt.UnixNano(), event.ID)
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), payload)
	})
}

// GetBatch returns up to limit events, oldest first, without removing them.
func (s *Spool) GetBatch(limit int) ([]domain.Event, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 50
	}

	var events []domain.Event
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.First(); k != nil && len(events) < limit; k, v = c.Next() {
			var event domain.Event
			if err := json.Unmarshal(v, &event); err != nil {
				continue
			}
			events = append(events, event)
		}
		return nil
	})
	return events, err
}

// Remove deletes the given events from the spool.
func (s *Spool) Remove(events []domain.Event) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if len(events) == 0 {
		return nil
	}
	ids := make(map[string]struct{}, len(events))
	for _, ev := range events {
		ids[ev.ID] = struct{}{}
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var event domain.Event
			if err := json.Unmarshal(v, &event); err != nil {
				continue
			}
			if _, ok := ids[event.ID]; ok {
				if err := c.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Size returns the number of spooled events.
func (s *Spool) Size() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Close closes the Bolt database.
func (s *Spool) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
