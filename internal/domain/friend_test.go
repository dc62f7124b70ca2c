package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/steadyhabits/backend/internal/entity"
	"github.com/steadyhabits/backend/internal/model"
	"github.com/steadyhabits/backend/internal/repository"
	"github.com/steadyhabits/backend/pkg/errorx"
	"github.com/steadyhabits/backend/pkg/testutil"
	"github.com/steadyhabits/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func newTestFriendDomain(publisher *testutil.MockPublisher) FriendDomain {
	return NewFriendDomain(
		repository.NewFriendshipRepository(),
		repository.NewBestFriendRepository(),
		repository.NewUserRepository(),
		newTestEngine(publisher),
	)
}

// befriend creates an accepted friendship between the two users directly in
// the database.
func befriend(ctx context.Context, t *testing.T, a, b string) {
	t.Helper()

	friendshipRepo := repository.NewFriendshipRepository()
	require.NoError(t, friendshipRepo.Create(ctx, &entity.Friendship{
		Base:        entity.Base{ID: fmt.Sprintf("%s_%s", a, b)},
		RequesterID: a,
		AddresseeID: b,
		Status:      entity.FriendshipAccepted,
	}))
}

func Test_friendDomain_RequestFriendship_PairUniqueness(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1)
	testutil.InsertFixtures(ctx)

	friendDomain := newTestFriendDomain(&testutil.MockPublisher{})

	_, err := friendDomain.RequestFriendship(ctx, &model.RequestFriendshipRequest{UserID: testutil.User2})
	require.NoError(t, err)

	// The same direction conflicts.
	_, err = friendDomain.RequestFriendship(ctx, &model.RequestFriendshipRequest{UserID: testutil.User2})
	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.AlreadyExists, errx.Code)

	// The reversed direction is the same unordered pair and conflicts too.
	reversedCtx := xcontext.WithRequestUserID(ctx, testutil.User2)
	_, err = friendDomain.RequestFriendship(reversedCtx, &model.RequestFriendshipRequest{UserID: testutil.User1})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.AlreadyExists, errx.Code)
}

func Test_friendDomain_RequestFriendship_SelfAndUnknown(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1)
	testutil.InsertFixtures(ctx)

	friendDomain := newTestFriendDomain(&testutil.MockPublisher{})

	var errx errorx.Error
	_, err := friendDomain.RequestFriendship(ctx, &model.RequestFriendshipRequest{UserID: testutil.User1})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.SelfReference, errx.Code)

	_, err = friendDomain.RequestFriendship(ctx, &model.RequestFriendshipRequest{UserID: "nobody"})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.NotFound, errx.Code)
}

func Test_friendDomain_RespondFriendship(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1)
	testutil.InsertFixtures(ctx)

	publisher := &testutil.MockPublisher{}
	friendDomain := newTestFriendDomain(publisher)

	reqResp, err := friendDomain.RequestFriendship(ctx, &model.RequestFriendshipRequest{UserID: testutil.User2})
	require.NoError(t, err)

	// Only the addressee may respond.
	var errx errorx.Error
	_, err = friendDomain.RespondFriendship(ctx, &model.RespondFriendshipRequest{
		FriendshipID: reqResp.Friendship.ID,
		Accept:       true,
	})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.PermissionDenied, errx.Code)

	// Accepting unlocks First Friend for the addressee (and the requester).
	addresseeCtx := xcontext.WithRequestUserID(ctx, testutil.User2)
	resp, err := friendDomain.RespondFriendship(addresseeCtx, &model.RespondFriendshipRequest{
		FriendshipID: reqResp.Friendship.ID,
		Accept:       true,
	})
	require.NoError(t, err)
	require.Equal(t, string(entity.FriendshipAccepted), resp.Friendship.Status)
	require.Len(t, resp.Achievements, 1)
	require.Equal(t, testutil.AchievementFirstFriend, resp.Achievements[0].AchievementID)

	// One unlock event went out per party, each keyed and addressed to its
	// own user.
	require.Len(t, publisher.Published, 2)
	recipients := map[string]bool{}
	for _, pack := range publisher.Published {
		recipients[string(pack.Key)] = true

		var ev struct {
			Op   string `json:"o"`
			Data struct {
				UserID string `json:"user_id"`
			} `json:"d"`
			Metadata struct {
				To string `json:"to"`
			} `json:"m"`
		}
		require.NoError(t, json.Unmarshal(pack.Msg, &ev))
		require.Equal(t, "achievement_unlocked", ev.Op)
		require.Equal(t, string(pack.Key), ev.Data.UserID)
		require.Equal(t, string(pack.Key), ev.Metadata.To)
	}
	require.True(t, recipients[testutil.User1])
	require.True(t, recipients[testutil.User2])

	for _, id := range []string{testutil.User1, testutil.User2} {
		unlocks, err := repository.NewAchievementRepository().GetByUserID(ctx, id)
		require.NoError(t, err)
		require.Len(t, unlocks, 1)
		require.True(t, unlocks[0].WasNotified)
	}

	// A decided friendship cannot be responded to again.
	_, err = friendDomain.RespondFriendship(addresseeCtx, &model.RespondFriendshipRequest{
		FriendshipID: reqResp.Friendship.ID,
		Accept:       false,
	})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.BadRequest, errx.Code)
}

func Test_friendDomain_DeclinedRerequest(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1)
	testutil.InsertFixtures(ctx)

	friendDomain := newTestFriendDomain(&testutil.MockPublisher{})

	reqResp, err := friendDomain.RequestFriendship(ctx, &model.RequestFriendshipRequest{UserID: testutil.User2})
	require.NoError(t, err)

	addresseeCtx := xcontext.WithRequestUserID(ctx, testutil.User2)
	_, err = friendDomain.RespondFriendship(addresseeCtx, &model.RespondFriendshipRequest{
		FriendshipID: reqResp.Friendship.ID,
		Accept:       false,
	})
	require.NoError(t, err)

	// After a decline, the other party can reopen the pair; the row flips
	// its direction instead of growing a duplicate.
	resp, err := friendDomain.RequestFriendship(addresseeCtx, &model.RequestFriendshipRequest{UserID: testutil.User1})
	require.NoError(t, err)
	require.Equal(t, reqResp.Friendship.ID, resp.Friendship.ID)
	require.Equal(t, testutil.User2, resp.Friendship.RequesterID)
	require.Equal(t, string(entity.FriendshipPending), resp.Friendship.Status)
}

func Test_friendDomain_BlockIsSticky(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1)
	testutil.InsertFixtures(ctx)

	friendDomain := newTestFriendDomain(&testutil.MockPublisher{})

	reqResp, err := friendDomain.RequestFriendship(ctx, &model.RequestFriendshipRequest{UserID: testutil.User2})
	require.NoError(t, err)

	_, err = friendDomain.BlockFriendship(ctx, &model.BlockFriendshipRequest{UserID: testutil.User2})
	require.NoError(t, err)

	// No re-request from either side ever succeeds again.
	var errx errorx.Error
	_, err = friendDomain.RequestFriendship(ctx, &model.RequestFriendshipRequest{UserID: testutil.User2})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.Blocked, errx.Code)

	addresseeCtx := xcontext.WithRequestUserID(ctx, testutil.User2)
	_, err = friendDomain.RequestFriendship(addresseeCtx, &model.RequestFriendshipRequest{UserID: testutil.User1})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.Blocked, errx.Code)

	// Responding to the blocked row is impossible: it is no longer pending.
	_, err = friendDomain.RespondFriendship(addresseeCtx, &model.RespondFriendshipRequest{
		FriendshipID: reqResp.Friendship.ID,
		Accept:       true,
	})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.BadRequest, errx.Code)

	// Blocking again is a no-op, not an error.
	_, err = friendDomain.BlockFriendship(ctx, &model.BlockFriendshipRequest{UserID: testutil.User2})
	require.NoError(t, err)
}

func Test_friendDomain_BestFriendCap(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1)
	testutil.InsertFixtures(ctx)

	friendDomain := newTestFriendDomain(&testutil.MockPublisher{})

	for _, friendID := range []string{testutil.User2, testutil.User3, testutil.User4, testutil.User5} {
		befriend(ctx, t, testutil.User1, friendID)
	}

	for _, friendID := range []string{testutil.User2, testutil.User3, testutil.User4} {
		_, err := friendDomain.AddBestFriend(ctx, &model.AddBestFriendRequest{FriendID: friendID})
		require.NoError(t, err)
	}

	// The fourth hits the cap.
	var errx errorx.Error
	_, err := friendDomain.AddBestFriend(ctx, &model.AddBestFriendRequest{FriendID: testutil.User5})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.MaximumReached, errx.Code)

	// Re-adding an existing best friend reports a duplicate, not the cap.
	_, err = friendDomain.AddBestFriend(ctx, &model.AddBestFriendRequest{FriendID: testutil.User2})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.AlreadyExists, errx.Code)

	// Removing one frees a slot; the retry then succeeds.
	_, err = friendDomain.RemoveBestFriend(ctx, &model.RemoveBestFriendRequest{FriendID: testutil.User2})
	require.NoError(t, err)

	_, err = friendDomain.AddBestFriend(ctx, &model.AddBestFriendRequest{FriendID: testutil.User5})
	require.NoError(t, err)

	resp, err := friendDomain.GetMyBestFriends(ctx, &model.GetMyBestFriendsRequest{})
	require.NoError(t, err)
	require.Len(t, resp.BestFriends, 3)
}

func Test_friendDomain_AddBestFriend_RequiresAcceptedFriendship(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1)
	testutil.InsertFixtures(ctx)

	friendDomain := newTestFriendDomain(&testutil.MockPublisher{})

	var errx errorx.Error

	// A stranger cannot be a best friend.
	_, err := friendDomain.AddBestFriend(ctx, &model.AddBestFriendRequest{FriendID: testutil.User2})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.BadRequest, errx.Code)

	// Neither can a merely pending one.
	_, err = friendDomain.RequestFriendship(ctx, &model.RequestFriendshipRequest{UserID: testutil.User2})
	require.NoError(t, err)

	_, err = friendDomain.AddBestFriend(ctx, &model.AddBestFriendRequest{FriendID: testutil.User2})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.BadRequest, errx.Code)

	_, err = friendDomain.AddBestFriend(ctx, &model.AddBestFriendRequest{FriendID: testutil.User1})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.SelfReference, errx.Code)
}

func Test_friendDomain_GetMyFriends(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1)
	testutil.InsertFixtures(ctx)

	friendDomain := newTestFriendDomain(&testutil.MockPublisher{})

	befriend(ctx, t, testutil.User1, testutil.User2)
	befriend(ctx, t, testutil.User3, testutil.User1)

	resp, err := friendDomain.GetMyFriends(ctx, &model.GetMyFriendsRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Friends, 2)
}
