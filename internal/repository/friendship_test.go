package repository_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/steadyhabits/backend/internal/entity"
	"github.com/steadyhabits/backend/internal/repository"
	"github.com/steadyhabits/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func Test_friendshipRepository_PairKeyUniqueness(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.InsertFixtures(ctx)

	friendshipRepo := repository.NewFriendshipRepository()

	err := friendshipRepo.Create(ctx, &entity.Friendship{
		Base:        entity.Base{ID: uuid.NewString()},
		RequesterID: testutil.User1,
		AddresseeID: testutil.User2,
		Status:      entity.FriendshipPending,
	})
	require.NoError(t, err)

	// The reversed direction canonicalizes to the same pair key and is
	// rejected by the unique index.
	err = friendshipRepo.Create(ctx, &entity.Friendship{
		Base:        entity.Base{ID: uuid.NewString()},
		RequesterID: testutil.User2,
		AddresseeID: testutil.User1,
		Status:      entity.FriendshipPending,
	})
	require.Error(t, err)

	// Lookup works from either direction.
	f1, err := friendshipRepo.GetByPair(ctx, testutil.User1, testutil.User2)
	require.NoError(t, err)
	f2, err := friendshipRepo.GetByPair(ctx, testutil.User2, testutil.User1)
	require.NoError(t, err)
	require.Equal(t, f1.ID, f2.ID)
}

func Test_friendshipRepository_SelfReferenceRejected(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.InsertFixtures(ctx)

	friendshipRepo := repository.NewFriendshipRepository()

	err := friendshipRepo.Create(ctx, &entity.Friendship{
		Base:        entity.Base{ID: uuid.NewString()},
		RequesterID: testutil.User1,
		AddresseeID: testutil.User1,
		Status:      entity.FriendshipPending,
	})
	require.Error(t, err)
}

func Test_friendshipRepository_UpdateStatusGuard(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.InsertFixtures(ctx)

	friendshipRepo := repository.NewFriendshipRepository()

	friendship := &entity.Friendship{
		Base:        entity.Base{ID: uuid.NewString()},
		RequesterID: testutil.User1,
		AddresseeID: testutil.User2,
		Status:      entity.FriendshipPending,
	}
	require.NoError(t, friendshipRepo.Create(ctx, friendship))

	err := friendshipRepo.UpdateStatus(ctx, friendship.ID, entity.FriendshipPending, entity.FriendshipAccepted)
	require.NoError(t, err)

	// The row left the pending status; a conflicting transition loses.
	err = friendshipRepo.UpdateStatus(ctx, friendship.ID, entity.FriendshipPending, entity.FriendshipDeclined)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// A block from the accepted status still wins.
	err = friendshipRepo.UpdateStatus(ctx, friendship.ID, entity.FriendshipAccepted, entity.FriendshipBlocked)
	require.NoError(t, err)
}

func Test_friendshipRepository_CountAccepted(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.InsertFixtures(ctx)

	friendshipRepo := repository.NewFriendshipRepository()

	require.NoError(t, friendshipRepo.Create(ctx, &entity.Friendship{
		Base:        entity.Base{ID: uuid.NewString()},
		RequesterID: testutil.User1,
		AddresseeID: testutil.User2,
		Status:      entity.FriendshipAccepted,
	}))
	require.NoError(t, friendshipRepo.Create(ctx, &entity.Friendship{
		Base:        entity.Base{ID: uuid.NewString()},
		RequesterID: testutil.User3,
		AddresseeID: testutil.User1,
		Status:      entity.FriendshipAccepted,
	}))
	require.NoError(t, friendshipRepo.Create(ctx, &entity.Friendship{
		Base:        entity.Base{ID: uuid.NewString()},
		RequesterID: testutil.User1,
		AddresseeID: testutil.User4,
		Status:      entity.FriendshipPending,
	}))

	count, err := friendshipRepo.CountAcceptedByUserID(ctx, testutil.User1)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	count, err = friendshipRepo.CountAcceptedByUserID(ctx, testutil.User4)
	require.NoError(t, err)
	require.EqualValues(t, 0, count)
}
