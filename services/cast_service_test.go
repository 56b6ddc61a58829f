package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splatseries/bracket-system/brackets"
	"github.com/splatseries/bracket-system/models"
)

type castFixture struct {
	store     *fakeStore
	publisher *fakePublisher
	svc       CastService
}

func newCastFixture(t *testing.T) *castFixture {
	t.Helper()

	store := newFakeStore()
	store.tournaments[testTournamentID] = &models.Tournament{
		ID:                 testTournamentID,
		OrganizerID:        testOrganizerID,
		Status:             models.StatusActive,
		CastTwitchAccounts: []string{"splatcast", "inkzone_tv"},
	}
	// Both opponents still unknown, the lockable state.
	store.matches[testMatchID] = &models.Match{
		ID:           testMatchID,
		TournamentID: testTournamentID,
		RoundID:      testRoundID,
	}

	publisher := &fakePublisher{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewCastService(fakeTx{}, fakeTournamentRepo{s: store}, fakeMatchRepo{s: store}, publisher, logger)

	return &castFixture{store: store, publisher: publisher, svc: svc}
}

func strp(s string) *string { return &s }

func TestCastActionsAreOrganizerOnly(t *testing.T) {
	f := newCastFixture(t)

	_, err := f.svc.HandleAction(context.Background(), player(1), testTournamentID, testMatchID, MatchAction{Type: ActionLock})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLockAndUnlockMatch(t *testing.T) {
	f := newCastFixture(t)
	ctx := context.Background()

	res, err := f.svc.HandleAction(ctx, organizer(), testTournamentID, testMatchID, MatchAction{Type: ActionLock})
	require.NoError(t, err)
	require.NotNil(t, res.Match)
	assert.True(t, f.store.tournaments[testTournamentID].CastInfo.IsLocked(testMatchID))

	// Locking twice stays a single entry.
	_, err = f.svc.HandleAction(ctx, organizer(), testTournamentID, testMatchID, MatchAction{Type: ActionLock})
	require.NoError(t, err)
	assert.Len(t, f.store.tournaments[testTournamentID].CastInfo.LockedMatches, 1)

	_, err = f.svc.HandleAction(ctx, organizer(), testTournamentID, testMatchID, MatchAction{Type: ActionUnlock})
	require.NoError(t, err)
	assert.False(t, f.store.tournaments[testTournamentID].CastInfo.IsLocked(testMatchID))

	require.Len(t, f.publisher.published, 3)
	assert.Equal(t, brackets.MatchTopic(testMatchID), f.publisher.published[0].Topic)
	assert.Equal(t, "MATCH_UPDATED", f.publisher.published[0].Type)
}

func TestLockRequiresUnknownOpponents(t *testing.T) {
	f := newCastFixture(t)
	alpha := testTeamAlpha
	f.store.matches[testMatchID].Opponent1.TeamID = &alpha

	_, err := f.svc.HandleAction(context.Background(), organizer(), testTournamentID, testMatchID, MatchAction{Type: ActionLock})
	assert.ErrorIs(t, err, ErrMatchNotLockable)
}

func TestSetAsCastedReassignsChannelAndMatch(t *testing.T) {
	f := newCastFixture(t)
	otherMatchID := 51
	f.store.matches[otherMatchID] = &models.Match{ID: otherMatchID, TournamentID: testTournamentID, RoundID: testRoundID}
	ctx := context.Background()

	_, err := f.svc.HandleAction(ctx, organizer(), testTournamentID, testMatchID, MatchAction{
		Type:          ActionSetAsCasted,
		TwitchAccount: strp("splatcast"),
	})
	require.NoError(t, err)
	assert.Equal(t, "splatcast", f.store.tournaments[testTournamentID].CastInfo.CastOf(testMatchID))

	// Moving the channel to another match drops the old assignment.
	_, err = f.svc.HandleAction(ctx, organizer(), testTournamentID, otherMatchID, MatchAction{
		Type:          ActionSetAsCasted,
		TwitchAccount: strp("splatcast"),
	})
	require.NoError(t, err)
	info := f.store.tournaments[testTournamentID].CastInfo
	assert.Equal(t, "", info.CastOf(testMatchID))
	assert.Equal(t, "splatcast", info.CastOf(otherMatchID))

	// A match switching channels keeps a single assignment.
	_, err = f.svc.HandleAction(ctx, organizer(), testTournamentID, otherMatchID, MatchAction{
		Type:          ActionSetAsCasted,
		TwitchAccount: strp("inkzone_tv"),
	})
	require.NoError(t, err)
	info = f.store.tournaments[testTournamentID].CastInfo
	assert.Equal(t, "inkzone_tv", info.CastOf(otherMatchID))
	assert.Len(t, info.CastedMatches, 1)

	// Nil clears.
	_, err = f.svc.HandleAction(ctx, organizer(), testTournamentID, otherMatchID, MatchAction{Type: ActionSetAsCasted})
	require.NoError(t, err)
	assert.Empty(t, f.store.tournaments[testTournamentID].CastInfo.CastedMatches)
}

func TestSetAsCastedRejectsUnknownChannel(t *testing.T) {
	f := newCastFixture(t)

	_, err := f.svc.HandleAction(context.Background(), organizer(), testTournamentID, testMatchID, MatchAction{
		Type:          ActionSetAsCasted,
		TwitchAccount: strp("randochannel"),
	})
	assert.ErrorIs(t, err, ErrUnknownCastAccount)
	assert.Empty(t, f.publisher.published, "rejected actions broadcast nothing")
}
