package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"santara.dev/chirpnet/internal/model"
	"santara.dev/chirpnet/internal/testutil"
)

// Duplicate edge inserts model two requests racing past the same IsLiked
// check: the conflict clause must swallow the second insert, not error.
func TestAddLikeDuplicateInsertKeepsOneRow(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := testutil.NewUser(t, db, "alice", "secret")
	bob := testutil.NewUser(t, db, "bob", "secret")
	post := &model.Post{UserID: alice.ID, Text: "race me"}
	require.NoError(t, repo.Create(ctx, post))

	require.NoError(t, repo.AddLike(ctx, bob.ID, post.ID))
	require.NoError(t, repo.AddLike(ctx, bob.ID, post.ID))

	var count int64
	require.NoError(t, db.Model(&model.PostLike{}).
		Where("user_id = ? AND post_id = ?", bob.ID, post.ID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)

	likers, err := repo.ListLikerIDs(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, likers, 1)
}

func TestAddSaveDuplicateInsertKeepsOneRow(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := testutil.NewUser(t, db, "alice", "secret")
	bob := testutil.NewUser(t, db, "bob", "secret")
	post := &model.Post{UserID: alice.ID, Text: "keep me"}
	require.NoError(t, repo.Create(ctx, post))

	require.NoError(t, repo.AddSave(ctx, bob.ID, post.ID))
	require.NoError(t, repo.AddSave(ctx, bob.ID, post.ID))

	saved, err := repo.ListSavedPostIDs(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, saved, 1)

	// One toggle-off clears the pair completely.
	require.NoError(t, repo.RemoveSave(ctx, bob.ID, post.ID))
	saved, err = repo.ListSavedPostIDs(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, saved)
}
