package repository_test

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/steadyhabits/backend/internal/entity"
	"github.com/steadyhabits/backend/internal/repository"
	"github.com/steadyhabits/backend/pkg/testutil"
	"github.com/steadyhabits/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func Test_bestFriendRepository_CreateIfBelowCap(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1)
	testutil.InsertFixtures(ctx)

	bestFriendRepo := repository.NewBestFriendRepository()

	for _, friendID := range []string{testutil.User2, testutil.User3, testutil.User4} {
		created, err := bestFriendRepo.CreateIfBelowCap(ctx, testutil.User1, friendID, 3)
		require.NoError(t, err)
		require.True(t, created)
	}

	// Over the cap.
	created, err := bestFriendRepo.CreateIfBelowCap(ctx, testutil.User1, testutil.User5, 3)
	require.NoError(t, err)
	require.False(t, created)

	// Duplicate, below or at cap, also refuses.
	created, err = bestFriendRepo.CreateIfBelowCap(ctx, testutil.User1, testutil.User2, 3)
	require.NoError(t, err)
	require.False(t, created)

	count, err := bestFriendRepo.Count(ctx, testutil.User1)
	require.NoError(t, err)
	require.EqualValues(t, 3, count)

	// The cap is per user, not global.
	created, err = bestFriendRepo.CreateIfBelowCap(ctx, testutil.User2, testutil.User1, 3)
	require.NoError(t, err)
	require.True(t, created)
}

func Test_bestFriendRepository_CreateIfBelowCap_Concurrent(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.InsertFixtures(ctx)

	// The in-memory sqlite gives every pooled connection its own database;
	// pin the pool to one connection so all goroutines hit the same one.
	db, err := xcontext.DB(ctx).DB()
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	userRepo := repository.NewUserRepository()
	bestFriendRepo := repository.NewBestFriendRepository()

	for i := 0; i < 10; i++ {
		require.NoError(t, userRepo.Create(ctx, &entity.User{
			Base: entity.Base{ID: fmt.Sprintf("concurrent_friend_%d", i)},
			Name: fmt.Sprintf("concurrent_friend_%d", i),
		}))
	}

	var createdCount int64
	eg := errgroup.Group{}
	for i := 0; i < 10; i++ {
		friendID := fmt.Sprintf("concurrent_friend_%d", i)
		eg.Go(func() error {
			created, err := bestFriendRepo.CreateIfBelowCap(ctx, testutil.User1, friendID, 3)
			if err != nil {
				return err
			}

			if created {
				atomic.AddInt64(&createdCount, 1)
			}

			return nil
		})
	}

	require.NoError(t, eg.Wait())

	// Exactly three of the racing inserts won, no matter the interleaving.
	require.EqualValues(t, 3, createdCount)

	count, err := bestFriendRepo.Count(ctx, testutil.User1)
	require.NoError(t, err)
	require.EqualValues(t, 3, count)
}

func Test_bestFriendRepository_Delete(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.InsertFixtures(ctx)

	bestFriendRepo := repository.NewBestFriendRepository()

	created, err := bestFriendRepo.CreateIfBelowCap(ctx, testutil.User1, testutil.User2, 3)
	require.NoError(t, err)
	require.True(t, created)

	require.NoError(t, bestFriendRepo.Delete(ctx, testutil.User1, testutil.User2))

	// Deleting a missing row reports not found.
	require.Error(t, bestFriendRepo.Delete(ctx, testutil.User1, testutil.User2))
}
