package badger

import (
	"context"
	"testing"

	"github.com/barmatch/barmatch/core"
	"github.com/barmatch/barmatch/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepos(t *testing.T) (storage.ProfileRepository, storage.UserRepository) {
	t.Helper()
	profiles, users, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		profiles.Close()
		users.Close()
		backend.Close()
	})
	return profiles, users
}

func sampleProfile(name string) *core.Profile {
	return &core.Profile{
		Name:          name,
		PracticeAreas: []string{"custody"},
		Languages:     []string{"english"},
		Neighborhood:  "Tarzana",
		City:          "Los Angeles",
		Rating:        4.5,
	}
}

func TestAddProfiles(t *testing.T) {
	profiles, _ := newTestRepos(t)
	ctx := context.Background()

	t.Run("assigns content ids and timestamps", func(t *testing.T) {
		added, err := profiles.AddProfiles(ctx, sampleProfile("Maria Alvarez"))
		require.NoError(t, err)
		require.Len(t, added, 1)

		assert.Equal(t, core.IDFromContent(added[0].ContentKey()), added[0].Id)
		assert.False(t, added[0].InsertedAt.IsZero())
		assert.Equal(t, added[0].InsertedAt, added[0].UpdatedAt)
	})

	t.Run("rejects invalid profiles", func(t *testing.T) {
		_, err := profiles.AddProfiles(ctx, &core.Profile{Rating: 4.0})
		assert.ErrorIs(t, err, core.ErrEmptyProfileName)
	})
}

func TestGetProfile(t *testing.T) {
	profiles, _ := newTestRepos(t)
	ctx := context.Background()

	added, err := profiles.AddProfiles(ctx, sampleProfile("Maria Alvarez"))
	require.NoError(t, err)

	t.Run("round trips", func(t *testing.T) {
		got, err := profiles.GetProfile(ctx, added[0].Id)
		require.NoError(t, err)
		assert.Equal(t, "Maria Alvarez", got.Name)
		assert.Equal(t, []string{"custody"}, got.PracticeAreas)
	})

	t.Run("missing id returns ErrNotFound", func(t *testing.T) {
		_, err := profiles.GetProfile(ctx, core.ID(12345))
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("batch get skips missing", func(t *testing.T) {
		got, err := profiles.GetProfiles(ctx, added[0].Id, core.ID(12345))
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})
}

func TestUpdateProfiles(t *testing.T) {
	profiles, _ := newTestRepos(t)
	ctx := context.Background()

	added, err := profiles.AddProfiles(ctx, sampleProfile("Maria Alvarez"))
	require.NoError(t, err)

	t.Run("updates in place", func(t *testing.T) {
		updated := *added[0]
		updated.Rating = 4.9
		_, err := profiles.UpdateProfiles(ctx, &updated)
		require.NoError(t, err)

		got, err := profiles.GetProfile(ctx, added[0].Id)
		require.NoError(t, err)
		assert.Equal(t, 4.9, got.Rating)
		assert.False(t, got.UpdatedAt.Before(got.InsertedAt))
	})

	t.Run("missing profile returns ErrNotFound", func(t *testing.T) {
		ghost := sampleProfile("Nobody")
		ghost.Id = core.ID(999)
		_, err := profiles.UpdateProfiles(ctx, ghost)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestDeleteProfiles(t *testing.T) {
	profiles, _ := newTestRepos(t)
	ctx := context.Background()

	added, err := profiles.AddProfiles(ctx, sampleProfile("Maria Alvarez"))
	require.NoError(t, err)

	require.NoError(t, profiles.DeleteProfiles(ctx, added[0].Id))

	_, err = profiles.GetProfile(ctx, added[0].Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.ErrorIs(t, profiles.DeleteProfiles(ctx, added[0].Id), storage.ErrNotFound)
}

func TestListProfiles(t *testing.T) {
	profiles, _ := newTestRepos(t)
	ctx := context.Background()

	_, err := profiles.AddProfiles(ctx,
		sampleProfile("Maria Alvarez"),
		sampleProfile("David Chen"),
		sampleProfile("Angela Brooks"))
	require.NoError(t, err)

	listed, err := profiles.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 3)

	for i := 1; i < len(listed); i++ {
		assert.Less(t, listed[i-1].Id, listed[i].Id, "list must be ordered by id")
	}
}
