package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"santara.dev/chirpnet/internal/model"
	notifRepo "santara.dev/chirpnet/internal/modules/notification/repository"
	"santara.dev/chirpnet/internal/testutil"
	"santara.dev/chirpnet/pkg/apperror"
)

func newTestNotificationService(t *testing.T) (NotificationService, *gorm.DB) {
	db := testutil.NewTestDB(t)
	return NewNotificationService(notifRepo.NewNotificationRepository(db), nil), db
}

func TestListForRecipientMarksInboxRead(t *testing.T) {
	svc, db := newTestNotificationService(t)
	ctx := context.Background()

	alice := testutil.NewUser(t, db, "alice", "secret")
	bob := testutil.NewUser(t, db, "bob", "secret")

	_, err := svc.Emit(ctx, alice.ID, bob.ID, model.NotificationTypeFollow)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = svc.Emit(ctx, alice.ID, bob.ID, model.NotificationTypeLike)
	require.NoError(t, err)

	inbox, err := svc.ListForRecipient(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, inbox, 2)

	// Newest first, and the flags show the pre-view state.
	assert.Equal(t, model.NotificationTypeLike, inbox[0].Type)
	assert.Equal(t, model.NotificationTypeFollow, inbox[1].Type)
	assert.False(t, inbox[0].Read)
	assert.False(t, inbox[1].Read)

	inbox, err = svc.ListForRecipient(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, inbox, 2)
	assert.True(t, inbox[0].Read)
	assert.True(t, inbox[1].Read)
}

func TestListForRecipientScopedToRecipient(t *testing.T) {
	svc, db := newTestNotificationService(t)
	ctx := context.Background()

	alice := testutil.NewUser(t, db, "alice", "secret")
	bob := testutil.NewUser(t, db, "bob", "secret")
	carol := testutil.NewUser(t, db, "carol", "secret")

	_, err := svc.Emit(ctx, alice.ID, bob.ID, model.NotificationTypeFollow)
	require.NoError(t, err)
	_, err = svc.Emit(ctx, alice.ID, carol.ID, model.NotificationTypeFollow)
	require.NoError(t, err)

	inbox, err := svc.ListForRecipient(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, alice.ID, inbox[0].From.ID)
	assert.Equal(t, "alice", inbox[0].From.Username)

	// Viewing bob's inbox must not touch carol's unread flag.
	var carols model.Notification
	require.NoError(t, db.Where("to_id = ?", carol.ID).First(&carols).Error)
	assert.False(t, carols.Read)
}

func TestEmitNeverDeduplicates(t *testing.T) {
	svc, db := newTestNotificationService(t)
	ctx := context.Background()

	alice := testutil.NewUser(t, db, "alice", "secret")
	bob := testutil.NewUser(t, db, "bob", "secret")

	for i := 0; i < 3; i++ {
		_, err := svc.Emit(ctx, alice.ID, bob.ID, model.NotificationTypeLike)
		require.NoError(t, err)
	}

	var count int64
	require.NoError(t, db.Model(&model.Notification{}).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}

func TestDeleteOne(t *testing.T) {
	svc, db := newTestNotificationService(t)
	ctx := context.Background()

	alice := testutil.NewUser(t, db, "alice", "secret")
	bob := testutil.NewUser(t, db, "bob", "secret")

	id, err := svc.Emit(ctx, alice.ID, bob.ID, model.NotificationTypeFollow)
	require.NoError(t, err)

	t.Run("unknown id", func(t *testing.T) {
		err := svc.DeleteOne(ctx, bob.ID, uuid.New())
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("non-recipient is forbidden", func(t *testing.T) {
		err := svc.DeleteOne(ctx, alice.ID, id)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("recipient deletes", func(t *testing.T) {
		require.NoError(t, svc.DeleteOne(ctx, bob.ID, id))

		inbox, err := svc.ListForRecipient(ctx, bob.ID)
		require.NoError(t, err)
		assert.Empty(t, inbox)
	})
}

func TestDeleteAllReportsCount(t *testing.T) {
	svc, db := newTestNotificationService(t)
	ctx := context.Background()

	alice := testutil.NewUser(t, db, "alice", "secret")
	bob := testutil.NewUser(t, db, "bob", "secret")

	for i := 0; i < 4; i++ {
		_, err := svc.Emit(ctx, alice.ID, bob.ID, model.NotificationTypeLike)
		require.NoError(t, err)
	}

	count, err := svc.DeleteAll(ctx, bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, count)

	count, err = svc.DeleteAll(ctx, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}
