// Package storage keeps the version history of trained classifier models in
// BoltDB. Every trained artifact is stored with its training report so an
// earlier model can be reactivated without retraining.
package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"ai-detector/internal/ml"
)

const (
	versionsBucket  = "model_versions"  // version metadata keyed by insertion sequence
	artifactsBucket = "model_artifacts" // raw artifact JSON keyed by version id

	dbFile = "models.db"
)

var (
	ErrVersionNotFound   = errors.New("model version not found")
	ErrNoActiveVersion   = errors.New("no active model version")
	ErrNoPreviousVersion = errors.New("no previous model version available for rollback")
)

// ModelVersion describes one trained model.
type ModelVersion struct {
	Version   string     `json:"version"`
	Path      string     `json:"path"`
	CreatedAt time.Time  `json:"created_at"`
	Report    *ml.Report `json:"report,omitempty"`
	IsActive  bool       `json:"is_active"`
}

// Store is the BoltDB-backed model registry.
type Store struct {
	db *bbolt.DB
}

// New opens (or creates) the registry database under dataPath.
func New(dataPath string) (*Store, error) {
	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	dbPath := filepath.Join(dataPath, dbFile)

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(versionsBucket)); err != nil {
			return fmt.Errorf("create versions bucket: %w", err)
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(artifactsBucket)); err != nil {
			return fmt.Errorf("create artifacts bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database. Closing twice is a no-op.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// AddVersion records a new, inactive model version together with its
// artifact. A version id that is already taken gets a numeric suffix.
func (s *Store) AddVersion(v ModelVersion, artifact []byte) (ModelVersion, error) {
	if v.Version == "" {
		return ModelVersion{}, fmt.Errorf("version id is required")
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	v.IsActive = false

	err := s.db.Update(func(tx *bbolt.Tx) error {
		vb := tx.Bucket([]byte(versionsBucket))
		ab := tx.Bucket([]byte(artifactsBucket))

		v.Version = uniqueVersion(ab, v.Version)

		seq, err := vb.NextSequence()
		if err != nil {
			return fmt.Errorf("next sequence: %w", err)
		}
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal version: %w", err)
		}
		if err := vb.Put(seqKey(seq), data); err != nil {
			return err
		}
		return ab.Put([]byte(v.Version), artifact)
	})
	if err != nil {
		return ModelVersion{}, err
	}
	return v, nil
}

// UniqueVersion returns base, or base with the first free numeric suffix
// when base is already taken.
func (s *Store) UniqueVersion(base string) (string, error) {
	var out string
	err := s.db.View(func(tx *bbolt.Tx) error {
		out = uniqueVersion(tx.Bucket([]byte(artifactsBucket)), base)
		return nil
	})
	return out, err
}

func uniqueVersion(ab *bbolt.Bucket, base string) string {
	v := base
	for n := 2; ab.Get([]byte(v)) != nil; n++ {
		v = fmt.Sprintf("%s-%d", base, n)
	}
	return v
}

// ActivateVersion marks version active and every other version inactive.
func (s *Store) ActivateVersion(version string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		vb := tx.Bucket([]byte(versionsBucket))

		found := false
		updates := map[string][]byte{}
		err := vb.ForEach(func(k, data []byte) error {
			var v ModelVersion
			if err := json.Unmarshal(data, &v); err != nil {
				return fmt.Errorf("unmarshal version: %w", err)
			}
			active := v.Version == version
			if active {
				found = true
			}
			if v.IsActive != active {
				v.IsActive = active
				out, err := json.Marshal(v)
				if err != nil {
					return err
				}
				updates[string(k)] = out
			}
			return nil
		})
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: %s", ErrVersionNotFound, version)
		}
		for k, data := range updates {
			if err := vb.Put([]byte(k), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListVersions returns all versions, newest first.
func (s *Store) ListVersions() ([]ModelVersion, error) {
	var versions []ModelVersion
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(versionsBucket)).Cursor()
		for k, data := c.Last(); k != nil; k, data = c.Prev() {
			var v ModelVersion
			if err := json.Unmarshal(data, &v); err != nil {
				return fmt.Errorf("unmarshal version: %w", err)
			}
			versions = append(versions, v)
		}
		return nil
	})
	return versions, err
}

// ActiveVersion returns the active version, or ErrNoActiveVersion.
func (s *Store) ActiveVersion() (*ModelVersion, error) {
	versions, err := s.ListVersions()
	if err != nil {
		return nil, err
	}
	for i := range versions {
		if versions[i].IsActive {
			return &versions[i], nil
		}
	}
	return nil, ErrNoActiveVersion
}

// Artifact returns the stored artifact bytes of version.
func (s *Store) Artifact(version string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(artifactsBucket)).Get([]byte(version))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrVersionNotFound, version)
		}
		out = append([]byte(nil), data...)
		return nil
	})
	return out, err
}

// Rollback activates the version recorded just before the active one and
// returns it.
func (s *Store) Rollback() (*ModelVersion, error) {
	versions, err := s.ListVersions()
	if err != nil {
		return nil, err
	}
	if len(versions) < 2 {
		return nil, ErrNoPreviousVersion
	}

	currentIdx := -1
	for i, v := range versions {
		if v.IsActive {
			currentIdx = i
			break
		}
	}
	if currentIdx == -1 {
		return nil, ErrNoActiveVersion
	}
	if currentIdx+1 >= len(versions) {
		return nil, ErrNoPreviousVersion
	}

	prev := versions[currentIdx+1]
	if err := s.ActivateVersion(prev.Version); err != nil {
		return nil, err
	}
	prev.IsActive = true
	return &prev, nil
}

func seqKey(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}
