package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"go.etcd.io/bbolt"

	"github.com/DwDestiny/StudyAbroadMatcher/internal/profile"
)

var (
	bucketProfiles = []byte("profiles")
	bucketMeta     = []byte("meta")

	metaKey = []byte("build")
)

// ErrNoSnapshot is returned by Load when the artifact does not exist or
// holds no completed build.
var ErrNoSnapshot = errors.New("no snapshot stored")

// buildMeta is the artifact's build metadata record.
type buildMeta struct {
	BuildID  string            `json:"build_id"`
	BuiltAt  time.Time         `json:"built_at"`
	Programs int               `json:"programs"`
	Skipped  map[string]string `json:"skipped,omitempty"`
}

// Save writes the snapshot to the artifact at path, replacing any previous
// generation in a single transaction.
func Save(path string, snap *Snapshot) error {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return fmt.Errorf("opening artifact %q: %w", path, err)
	}
	defer db.Close()

	return db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{bucketProfiles, bucketMeta} {
			if tx.Bucket(bucket) != nil {
				if err := tx.DeleteBucket(bucket); err != nil {
					return err
				}
			}
			if _, err := tx.CreateBucket(bucket); err != nil {
				return err
			}
		}

		profiles := tx.Bucket(bucketProfiles)
		for _, id := range snap.Programs() {
			p, err := snap.Lookup(id)
			if err != nil {
				return err
			}
			data, err := json.Marshal(p)
			if err != nil {
				return fmt.Errorf("encoding profile %q: %w", id, err)
			}
			if err := profiles.Put([]byte(id), data); err != nil {
				return err
			}
		}

		meta, err := json.Marshal(buildMeta{
			BuildID:  snap.BuildID,
			BuiltAt:  snap.BuiltAt,
			Programs: snap.Len(),
			Skipped:  snap.Skipped(),
		})
		if err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Put(metaKey, meta)
	})
}

// Load reads a snapshot back from the artifact at path. A missing file or
// an artifact without a completed build returns ErrNoSnapshot.
func Load(path string) (*Snapshot, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("checking artifact %q: %w", path, err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("opening artifact %q: %w", path, err)
	}
	defer db.Close()

	var meta buildMeta
	profiles := make(map[string]*profile.ProgramProfile)

	err = db.View(func(tx *bbolt.Tx) error {
		mb := tx.Bucket(bucketMeta)
		pb := tx.Bucket(bucketProfiles)
		if mb == nil || pb == nil {
			return ErrNoSnapshot
		}

		raw := mb.Get(metaKey)
		if raw == nil {
			return ErrNoSnapshot
		}
		if err := json.Unmarshal(raw, &meta); err != nil {
			return fmt.Errorf("decoding build metadata: %w", err)
		}

		return pb.ForEach(func(k, v []byte) error {
			var p profile.ProgramProfile
			if err := json.Unmarshal(v, &p); err != nil {
				return fmt.Errorf("decoding profile %q: %w", string(k), err)
			}
			profiles[string(k)] = &p
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	snap := NewSnapshot(profiles, meta.Skipped)
	snap.BuildID = meta.BuildID
	snap.BuiltAt = meta.BuiltAt
	return snap, nil
}
