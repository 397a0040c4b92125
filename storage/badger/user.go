package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"

	"github.com/barmatch/barmatch/core"
	"github.com/barmatch/barmatch/storage"
)

// UserRepository implements storage.UserRepository for BadgerDB.
type UserRepository struct {
	backend *Backend
}

var _ storage.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates a new UserRepository.
func NewUserRepository(backend *Backend) (*UserRepository, error) {
	return &UserRepository{
		backend: backend,
	}, nil
}

// Close releases resources. UserRepository has no resources to release.
func (r *UserRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *UserRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// PutFactSnapshot stores a user's accumulated facts and turn counter.
func (r *UserRepository) PutFactSnapshot(ctx context.Context, userID string, facts []core.Fact, turn int) error {
	if userID == "" {
		return storage.ErrUserIDRequired
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeUserFactKey(userID)
		if err := tx.Set(key, storage.MarshalFactSnapshot(facts, turn)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetFactSnapshot retrieves a user's stored facts and turn counter.
func (r *UserRepository) GetFactSnapshot(ctx context.Context, userID string) ([]core.Fact, int, error) {
	if userID == "" {
		return nil, 0, storage.ErrUserIDRequired
	}

	var (
		facts []core.Fact
		turn  int
	)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeUserFactKey(userID))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			facts, turn, err = storage.UnmarshalFactSnapshot(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, 0, err
	}
	return facts, turn, nil
}

// DeleteFactSnapshot removes a user's snapshot.
func (r *UserRepository) DeleteFactSnapshot(ctx context.Context, userID string) error {
	if userID == "" {
		return storage.ErrUserIDRequired
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeUserFactKey(userID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// PutSavedCandidates stores the profile IDs a user chose to keep.
func (r *UserRepository) PutSavedCandidates(ctx context.Context, userID string, ids []core.ID) error {
	if userID == "" {
		return storage.ErrUserIDRequired
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeUserSavedKey(userID)
		if err := tx.Set(key, storage.MarshalIDList(ids)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetSavedCandidates retrieves a user's saved profile IDs.
func (r *UserRepository) GetSavedCandidates(ctx context.Context, userID string) ([]core.ID, error) {
	if userID == "" {
		return nil, storage.ErrUserIDRequired
	}

	var ids []core.ID
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeUserSavedKey(userID))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			ids, err = storage.UnmarshalIDList(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return ids, nil
}
