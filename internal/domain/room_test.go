package domain

import (
	"testing"

	"github.com/steadyhabits/backend/internal/model"
	"github.com/steadyhabits/backend/internal/repository"
	"github.com/steadyhabits/backend/pkg/errorx"
	"github.com/steadyhabits/backend/pkg/testutil"
	"github.com/steadyhabits/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func Test_roomDomain_CreateRoom_UnlocksDecorator(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1)
	testutil.InsertFixtures(ctx)

	roomDomain := NewRoomDomain(repository.NewRoomRepository(), newTestEngine(&testutil.MockPublisher{}))

	resp, err := roomDomain.CreateRoom(ctx, &model.CreateRoomRequest{Name: "Serenity", Theme: "forest"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.ID)
	require.Len(t, resp.Achievements, 1)
	require.Equal(t, testutil.AchievementDecorator, resp.Achievements[0].AchievementID)

	// A second room unlocks nothing new.
	resp, err = roomDomain.CreateRoom(ctx, &model.CreateRoomRequest{Name: "Haven"})
	require.NoError(t, err)
	require.Empty(t, resp.Achievements)

	rooms, err := roomDomain.GetMyRooms(ctx, &model.GetMyRoomsRequest{})
	require.NoError(t, err)
	require.Len(t, rooms.Rooms, 2)
}

func Test_supportDomain_GiveSupport(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1)
	testutil.InsertFixtures(ctx)

	supportDomain := NewSupportDomain(
		repository.NewSupportActionRepository(),
		repository.NewFriendshipRepository(),
		repository.NewUserRepository(),
		newTestEngine(&testutil.MockPublisher{}),
	)

	// The Supporter achievement needs three actions.
	for i := 0; i < 2; i++ {
		resp, err := supportDomain.GiveSupport(ctx, &model.GiveSupportRequest{
			RecipientID: testutil.User2,
			Kind:        "cheer",
		})
		require.NoError(t, err)
		require.Empty(t, resp.Achievements)
	}

	resp, err := supportDomain.GiveSupport(ctx, &model.GiveSupportRequest{
		RecipientID: testutil.User3,
		Kind:        "comment",
	})
	require.NoError(t, err)
	require.Len(t, resp.Achievements, 1)
	require.Equal(t, testutil.AchievementSupporter, resp.Achievements[0].AchievementID)

	var errx errorx.Error
	_, err = supportDomain.GiveSupport(ctx, &model.GiveSupportRequest{RecipientID: testutil.User1})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.SelfReference, errx.Code)

	_, err = supportDomain.GiveSupport(ctx, &model.GiveSupportRequest{RecipientID: "nobody"})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.NotFound, errx.Code)
}

func Test_supportDomain_GiveSupport_BlockedPair(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1)
	testutil.InsertFixtures(ctx)

	friendDomain := newTestFriendDomain(&testutil.MockPublisher{})
	supportDomain := NewSupportDomain(
		repository.NewSupportActionRepository(),
		repository.NewFriendshipRepository(),
		repository.NewUserRepository(),
		newTestEngine(&testutil.MockPublisher{}),
	)

	_, err := friendDomain.RequestFriendship(ctx, &model.RequestFriendshipRequest{UserID: testutil.User2})
	require.NoError(t, err)
	_, err = friendDomain.BlockFriendship(ctx, &model.BlockFriendshipRequest{UserID: testutil.User2})
	require.NoError(t, err)

	// The block cuts off support in both directions.
	var errx errorx.Error
	_, err = supportDomain.GiveSupport(ctx, &model.GiveSupportRequest{RecipientID: testutil.User2})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.Blocked, errx.Code)

	blockedCtx := xcontext.WithRequestUserID(ctx, testutil.User2)
	_, err = supportDomain.GiveSupport(blockedCtx, &model.GiveSupportRequest{RecipientID: testutil.User1})
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.Blocked, errx.Code)
}
