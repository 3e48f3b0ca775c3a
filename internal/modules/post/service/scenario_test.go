package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"santara.dev/chirpnet/internal/model"
	notifRepo "santara.dev/chirpnet/internal/modules/notification/repository"
	notifService "santara.dev/chirpnet/internal/modules/notification/service"
	"santara.dev/chirpnet/internal/testutil"
)

// TestInteractionScenario walks two users through the core interaction loop
// end to end: follow, post, like, comment, inbox view, cleanup.
func TestInteractionScenario(t *testing.T) {
	f := newPostServiceFixture(t)
	notifications := notifService.NewNotificationService(notifRepo.NewNotificationRepository(f.db), nil)
	ctx := context.Background()

	alice := testutil.NewUser(t, f.db, "alice", "secret1")
	bob := testutil.NewUser(t, f.db, "bob", "secret2")

	// Bob follows alice.
	followResp, err := f.users.ToggleFollow(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	require.True(t, followResp.Following)

	// Alice posts; the post lands in bob's following feed.
	post := f.createPost(t, alice.ID, "hello world")
	feed, err := f.posts.GetFollowingFeed(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	require.Equal(t, post.ID, feed[0].ID)

	// Bob likes and comments on it.
	likes, err := f.posts.ToggleLike(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	require.Len(t, likes, 1)
	time.Sleep(10 * time.Millisecond)

	commented, err := f.posts.AddComment(ctx, bob.ID, post.ID, "great post")
	require.NoError(t, err)
	require.Len(t, commented.Comments, 1)
	assert.Equal(t, "bob", commented.Comments[0].Author.Username)

	// Alice's inbox holds the follow, like and comment, newest first, all
	// unread until viewed.
	inbox, err := notifications.ListForRecipient(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, inbox, 3)
	assert.Equal(t, model.NotificationTypeComment, inbox[0].Type)
	assert.Equal(t, model.NotificationTypeLike, inbox[1].Type)
	assert.Equal(t, model.NotificationTypeFollow, inbox[2].Type)
	for _, n := range inbox {
		assert.False(t, n.Read)
		assert.Equal(t, "bob", n.From.Username)
	}

	inbox, err = notifications.ListForRecipient(ctx, alice.ID)
	require.NoError(t, err)
	for _, n := range inbox {
		assert.True(t, n.Read)
	}

	// Bob unlikes and unfollows; the records he caused stay behind.
	likes, err = f.posts.ToggleLike(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.Empty(t, likes)

	followResp, err = f.users.ToggleFollow(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, followResp.Following)

	inbox, err = notifications.ListForRecipient(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, inbox, 3)

	// Alice deletes the post; bob's feeds empty out.
	require.NoError(t, f.posts.DeletePost(ctx, alice.ID, post.ID))

	feed, err = f.posts.GetFollowingFeed(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, feed)

	feed, err = f.posts.GetLikedFeed(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, feed)
}
