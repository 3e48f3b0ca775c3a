package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"santara.dev/chirpnet/internal/model"
	notifRepo "santara.dev/chirpnet/internal/modules/notification/repository"
	notifService "santara.dev/chirpnet/internal/modules/notification/service"
	userDto "santara.dev/chirpnet/internal/modules/user/dto"
	userRepo "santara.dev/chirpnet/internal/modules/user/repository"
	"santara.dev/chirpnet/internal/testutil"
	"santara.dev/chirpnet/pkg/apperror"
)

func newTestUserService(t *testing.T) (UserService, userRepo.UserRepository, *gorm.DB) {
	db := testutil.NewTestDB(t)
	users := userRepo.NewUserRepository(db)
	notifications := notifService.NewNotificationService(notifRepo.NewNotificationRepository(db), nil)
	return NewUserService(users, notifications, nil), users, db
}

func TestToggleFollowPairsBothSides(t *testing.T) {
	svc, users, db := newTestUserService(t)
	ctx := context.Background()

	alice := testutil.NewUser(t, db, "alice", "secret1")
	bob := testutil.NewUser(t, db, "bob", "secret2")

	resp, err := svc.ToggleFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, resp.Following)

	followers, err := users.ListFollowerIDs(ctx, bob.ID)
	require.NoError(t, err)
	following, err := users.ListFollowingIDs(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{alice.ID}, followers)
	assert.Equal(t, []uuid.UUID{bob.ID}, following)

	var notifications []model.Notification
	require.NoError(t, db.Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, alice.ID, notifications[0].FromID)
	assert.Equal(t, bob.ID, notifications[0].ToID)
	assert.Equal(t, model.NotificationTypeFollow, notifications[0].Type)
	assert.False(t, notifications[0].Read)

	// Second toggle restores the original state on both sides.
	resp, err = svc.ToggleFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, resp.Following)

	followers, err = users.ListFollowerIDs(ctx, bob.ID)
	require.NoError(t, err)
	following, err = users.ListFollowingIDs(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, followers)
	assert.Empty(t, following)

	// Unfollow is silent: still just the one notification.
	require.NoError(t, db.Find(&notifications).Error)
	assert.Len(t, notifications, 1)
}

func TestToggleFollowRefollowEmitsAgain(t *testing.T) {
	svc, _, db := newTestUserService(t)
	ctx := context.Background()

	alice := testutil.NewUser(t, db, "alice", "secret1")
	bob := testutil.NewUser(t, db, "bob", "secret2")

	for i := 0; i < 3; i++ {
		_, err := svc.ToggleFollow(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
	}

	// follow, unfollow, follow: two add-transitions, two notifications.
	var count int64
	require.NoError(t, db.Model(&model.Notification{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestToggleFollowRejectsSelf(t *testing.T) {
	svc, users, db := newTestUserService(t)
	ctx := context.Background()

	alice := testutil.NewUser(t, db, "alice", "secret1")

	_, err := svc.ToggleFollow(ctx, alice.ID, alice.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrSelfAction)

	followers, err := users.ListFollowerIDs(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, followers)
}

func TestToggleFollowUnknownTarget(t *testing.T) {
	svc, _, db := newTestUserService(t)
	ctx := context.Background()

	alice := testutil.NewUser(t, db, "alice", "secret1")

	_, err := svc.ToggleFollow(ctx, alice.ID, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestSuggestedUsersExcludesViewerAndFollowed(t *testing.T) {
	svc, _, db := newTestUserService(t)
	ctx := context.Background()

	viewer := testutil.NewUser(t, db, "viewer", "secret")
	others := make([]*model.User, 0, 6)
	for _, name := range []string{"ana", "ben", "cleo", "dita", "eko", "fajar"} {
		others = append(others, testutil.NewUser(t, db, name, "secret"))
	}

	for _, u := range others[:2] {
		_, err := svc.ToggleFollow(ctx, viewer.ID, u.ID)
		require.NoError(t, err)
	}

	suggestions, err := svc.SuggestedUsers(ctx, viewer.ID)
	require.NoError(t, err)
	assert.Len(t, suggestions, 4)

	followed := map[uuid.UUID]bool{others[0].ID: true, others[1].ID: true}
	for _, s := range suggestions {
		assert.NotEqual(t, viewer.ID, s.ID)
		assert.False(t, followed[s.ID], "suggested an already followed user")
	}
}

func TestSuggestedUsersBoundedToFour(t *testing.T) {
	svc, _, db := newTestUserService(t)
	ctx := context.Background()

	viewer := testutil.NewUser(t, db, "viewer", "secret")
	for _, name := range []string{"u1", "u2", "u3", "u4", "u5", "u6", "u7", "u8"} {
		testutil.NewUser(t, db, name, "secret")
	}

	suggestions, err := svc.SuggestedUsers(ctx, viewer.ID)
	require.NoError(t, err)
	assert.Len(t, suggestions, 4)
}

func TestGetProfileStripsCredentials(t *testing.T) {
	svc, _, db := newTestUserService(t)
	ctx := context.Background()

	testutil.NewUser(t, db, "alice", "supersecret")

	profile, err := svc.GetProfile(ctx, "alice")
	require.NoError(t, err)

	raw, err := json.Marshal(profile)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), "supersecret")
}

func TestGetProfileUnknownUser(t *testing.T) {
	svc, _, _ := newTestUserService(t)

	_, err := svc.GetProfile(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdateProfilePasswordChange(t *testing.T) {
	svc, users, db := newTestUserService(t)
	ctx := context.Background()

	alice := testutil.NewUser(t, db, "alice", "oldpassword")

	cur := "oldpassword"
	next := "newpassword"

	t.Run("current without new is rejected", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, alice.ID, userDto.UpdateProfileRequest{CurrentPassword: &cur})
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	})

	t.Run("wrong current password is rejected", func(t *testing.T) {
		wrong := "nope"
		_, err := svc.UpdateProfile(ctx, alice.ID, userDto.UpdateProfileRequest{CurrentPassword: &wrong, NewPassword: &next})
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	})

	t.Run("short new password is rejected", func(t *testing.T) {
		short := "abc"
		_, err := svc.UpdateProfile(ctx, alice.ID, userDto.UpdateProfileRequest{CurrentPassword: &cur, NewPassword: &short})
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	})

	t.Run("valid pair rotates the hash", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, alice.ID, userDto.UpdateProfileRequest{CurrentPassword: &cur, NewPassword: &next})
		require.NoError(t, err)

		updated, err := users.FindByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte(next)))
	})
}

func TestUpdateProfileUsernameTaken(t *testing.T) {
	svc, _, db := newTestUserService(t)
	ctx := context.Background()

	alice := testutil.NewUser(t, db, "alice", "secret")
	testutil.NewUser(t, db, "bob", "secret")

	taken := "bob"
	_, err := svc.UpdateProfile(ctx, alice.ID, userDto.UpdateProfileRequest{Username: &taken})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestUpdateProfileFields(t *testing.T) {
	svc, _, db := newTestUserService(t)
	ctx := context.Background()

	alice := testutil.NewUser(t, db, "alice", "secret")

	bio := "hello there"
	link := "https://alice.example.com"
	profile, err := svc.UpdateProfile(ctx, alice.ID, userDto.UpdateProfileRequest{Bio: &bio, Link: &link})
	require.NoError(t, err)
	assert.Equal(t, bio, profile.Bio)
	assert.Equal(t, link, profile.Link)
	assert.Equal(t, "alice", profile.Username)
}
