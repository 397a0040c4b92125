package storage

import (
	"context"

	"github.com/barmatch/barmatch/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// ProfileRepository provides operations for managing professional profiles.
type ProfileRepository interface {
	Repository
	// AddProfiles adds one or more profiles to storage.
	// Uses content-based IDs (IDFromContent of the profile's content key).
	// Sets InsertedAt timestamp if not already set.
	// Returns the profiles with IDs and timestamps populated.
	AddProfiles(ctx context.Context, profiles ...*core.Profile) ([]*core.Profile, error)

	// UpdateProfiles updates existing profiles.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any profile doesn't exist.
	UpdateProfiles(ctx context.Context, profiles ...*core.Profile) ([]*core.Profile, error)

	// DeleteProfiles removes profiles by their IDs.
	// Returns ErrNotFound if any profile doesn't exist.
	DeleteProfiles(ctx context.Context, ids ...core.ID) error

	// GetProfile retrieves a single profile by ID.
	// Returns ErrNotFound if the profile doesn't exist.
	GetProfile(ctx context.Context, id core.ID) (*core.Profile, error)

	// GetProfiles retrieves multiple profiles by their IDs.
	// Returns only the profiles that exist (no error for missing profiles).
	GetProfiles(ctx context.Context, ids ...core.ID) ([]*core.Profile, error)

	// ListProfiles retrieves all profiles, ordered by ID.
	ListProfiles(ctx context.Context) ([]*core.Profile, error)
}

// UserRepository persists per-user conversational state: the fact snapshot a
// session resumes from, and candidate lists the user has saved.
type UserRepository interface {
	Repository
	// PutFactSnapshot stores a user's accumulated facts and the turn counter.
	// Overwrites any previous snapshot.
	PutFactSnapshot(ctx context.Context, userID string, facts []core.Fact, turn int) error

	// GetFactSnapshot retrieves a user's stored facts and turn counter.
	// Returns ErrNotFound if the user has no snapshot.
	GetFactSnapshot(ctx context.Context, userID string) ([]core.Fact, int, error)

	// DeleteFactSnapshot removes a user's snapshot.
	// Deleting a missing snapshot is not an error.
	DeleteFactSnapshot(ctx context.Context, userID string) error

	// PutSavedCandidates stores the profile IDs a user chose to keep.
	// Overwrites any previous list for that user.
	PutSavedCandidates(ctx context.Context, userID string, ids []core.ID) error

	// GetSavedCandidates retrieves a user's saved profile IDs.
	// Returns ErrNotFound if the user has never saved candidates.
	GetSavedCandidates(ctx context.Context, userID string) ([]core.ID, error)
}
