// Package prefs persists per-user page preferences: theme choice, hidden
// threads and posts, and reply drafts. It is the client-side analogue of the
// browser's origin-scoped local storage: string keys, JSON values, no expiry,
// last write wins.
package prefs

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/boltdb/bolt"

	"github.com/sameanonim/imageboard/internal/domain"
	"github.com/sameanonim/imageboard/internal/logger"
)

const (
	keyTheme         = "theme"
	keyHiddenThreads = "hiddenThreads"
	keyHiddenPosts   = "hiddenPosts"
	draftKeyFormat   = "draft_%d"
)

var bucketName = []byte("prefs")

// Store is a bolt-backed key/value store. A corrupt or missing value never
// surfaces as an error to callers; typed accessors fall back to documented
// defaults instead.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the preference database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{
		Timeout: time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("open preference store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create preference bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// get decodes the value stored under key into out. Returns false when the key
// is absent or the stored value does not parse; the caller keeps its default.
func (s *Store) get(key string, out interface{}) bool {
	var raw []byte
	s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketName).Get([]byte(key)); v != nil {
			raw = append(raw, v...)
		}
		return nil
	})
	if raw == nil {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		logger.Log.Warn("discarding corrupt preference value", "key", key, "error", err)
		return false
	}
	return true
}

func (s *Store) set(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode preference %q: %w", key, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), raw)
	})
}

// Theme returns the stored theme, defaulting to light.
func (s *Store) Theme() domain.Theme {
	var t domain.Theme
	if !s.get(keyTheme, &t) || !t.Valid() {
		return domain.ThemeLight
	}
	return t
}

// SetTheme stores the theme choice.
func (s *Store) SetTheme(t domain.Theme) error {
	return s.set(keyTheme, t)
}

// HiddenThreads returns the set of thread ids the user has hidden.
func (s *Store) HiddenThreads() []int64 {
	return s.hiddenSet(keyHiddenThreads)
}

// HiddenPosts returns the set of post ids the user has hidden.
func (s *Store) HiddenPosts() []int64 {
	return s.hiddenSet(keyHiddenPosts)
}

func (s *Store) hiddenSet(key string) []int64 {
	ids := []int64{}
	s.get(key, &ids)
	return ids
}

// HideThread adds a thread to the hidden set. Hiding twice is a no-op; there
// is no unhide.
func (s *Store) HideThread(id int64) error {
	return s.hide(keyHiddenThreads, id)
}

// HidePost adds a post to the hidden set.
func (s *Store) HidePost(id int64) error {
	return s.hide(keyHiddenPosts, id)
}

func (s *Store) hide(key string, id int64) error {
	ids := s.hiddenSet(key)
	if slices.Contains(ids, id) {
		return nil
	}
	return s.set(key, append(ids, id))
}

// Draft returns the saved draft for a thread, or nil when none exists.
func (s *Store) Draft(threadID int64) *domain.Draft {
	var d domain.Draft
	if !s.get(fmt.Sprintf(draftKeyFormat, threadID), &d) {
		return nil
	}
	return &d
}

// SaveDraft overwrites the draft for a thread. Drafts are never merged.
func (s *Store) SaveDraft(threadID int64, d domain.Draft) error {
	return s.set(fmt.Sprintf(draftKeyFormat, threadID), d)
}
