package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/barmatch/barmatch/core"
	"github.com/barmatch/barmatch/storage"
)

// ProfileRepository implements storage.ProfileRepository for BadgerDB.
type ProfileRepository struct {
	backend *Backend
}

var _ storage.ProfileRepository = (*ProfileRepository)(nil)

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(backend *Backend) (*ProfileRepository, error) {
	return &ProfileRepository{
		backend: backend,
	}, nil
}

// Close releases resources. ProfileRepository has no resources to release.
func (r *ProfileRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ProfileRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddProfiles adds one or more profiles to storage.
func (r *ProfileRepository) AddProfiles(ctx context.Context, profiles ...*core.Profile) ([]*core.Profile, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, profile := range profiles {
			if err := core.ValidateProfile(profile); err != nil {
				return err
			}

			// Use content-based ID if not set
			if profile.Id == 0 {
				profile.Id = core.IDFromContent(profile.ContentKey())
			}

			// Set timestamps
			if profile.InsertedAt.IsZero() {
				profile.InsertedAt = time.Now().UTC()
			}
			profile.UpdatedAt = profile.InsertedAt

			key := makeProfileKey(profile.Id)
			value := storage.MarshalProfile(profile)
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return profiles, err
}

// UpdateProfiles updates existing profiles.
func (r *ProfileRepository) UpdateProfiles(ctx context.Context, profiles ...*core.Profile) ([]*core.Profile, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, profile := range profiles {
			key := makeProfileKey(profile.Id)

			old, err := readProfile(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			profile.InsertedAt = old.InsertedAt
			profile.UpdatedAt = time.Now().UTC()

			value := storage.MarshalProfile(profile)
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return profiles, err
}

// DeleteProfiles removes profiles by their IDs.
func (r *ProfileRepository) DeleteProfiles(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeProfileKey(id)

			profile, err := readProfile(tx, key)
			if err != nil {
				return err
			}
			if profile == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetProfile retrieves a single profile by ID.
func (r *ProfileRepository) GetProfile(ctx context.Context, id core.ID) (*core.Profile, error) {
	var result *core.Profile
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeProfileKey(id)
		var err error
		result, err = readProfile(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetProfiles retrieves multiple profiles by their IDs.
func (r *ProfileRepository) GetProfiles(ctx context.Context, ids ...core.ID) ([]*core.Profile, error) {
	var result []*core.Profile
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeProfileKey(id)
			profile, err := readProfile(tx, key)
			if err != nil {
				return err
			}
			if profile != nil {
				result = append(result, profile)
			}
		}
		return nil
	}, false)
	return result, err
}

// ListProfiles retrieves all profiles, ordered by ID.
func (r *ProfileRepository) ListProfiles(ctx context.Context) ([]*core.Profile, error) {
	var results []*core.Profile
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := []byte(profileRecordPrefix + ":")
		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			item := iter.Item()
			key := item.Key()

			if !hasPrefix(key, prefix) {
				break
			}

			var profile *core.Profile
			err := item.Value(func(val []byte) error {
				var err error
				profile, err = storage.UnmarshalProfile(val)
				return err
			})
			if err != nil {
				return err
			}

			if profile != nil {
				results = append(results, profile)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Keys are textual, so the iteration order is not numeric.
	slices.SortFunc(results, func(a, b *core.Profile) int {
		if a.Id < b.Id {
			return -1
		}
		if a.Id > b.Id {
			return 1
		}
		return 0
	})

	return results, nil
}

// Helper methods

// hasPrefix checks if a byte slice has a given prefix
func hasPrefix(s, prefix []byte) bool {
	return len(s) >= len(prefix) && string(s[:len(prefix)]) == string(prefix)
}

// readProfile reads a profile from the transaction.
func readProfile(tx *badger.Txn, key []byte) (*core.Profile, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var profile *core.Profile
	err = item.Value(func(val []byte) error {
		var err error
		profile, err = storage.UnmarshalProfile(val)
		return err
	})
	return profile, err
}
