package lifecycle

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gamematch/internal/dependencies/mocks"
	"github.com/mcoot/gamematch/internal/model"
	"github.com/mcoot/gamematch/internal/storage/memory"
	"github.com/mcoot/gamematch/internal/testutil"
)

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.controller = NewController(s.storage, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ControllerSuite) createPlayer(id string) model.PlayerID {
	player := &model.Player{
		ID:        model.PlayerID(id),
		Name:      "Player",
		Nickname:  "nick-" + id,
		Email:     id + "@example.com",
		CreatedAt: s.clock.Now(),
	}
	s.Require().NoError(s.storage.CreatePlayer(s.ctx, player))
	return player.ID
}

func (s *ControllerSuite) createMatch(id, name string) model.MatchID {
	match := &model.Match{
		ID:        model.MatchID(id),
		Name:      name,
		State:     model.MatchStateWaiting,
		CreatedAt: s.clock.Now(),
	}
	s.Require().NoError(s.storage.CreateMatch(s.ctx, match))
	return match.ID
}

// startedMatch creates a match, joins the given players and starts it
func (s *ControllerSuite) startedMatch(playerIDs ...model.PlayerID) model.MatchID {
	matchID := s.createMatch("match-1", "Alpha")
	for _, id := range playerIDs {
		_, err := s.controller.JoinMatch(s.ctx, matchID, id)
		s.Require().NoError(err)
	}
	_, err := s.controller.StartMatch(s.ctx, matchID)
	s.Require().NoError(err)
	return matchID
}

// assertMembership checks that the player's match reference agrees with every roster
func (s *ControllerSuite) assertMembership(playerID model.PlayerID) {
	player, err := s.storage.GetPlayer(s.ctx, playerID)
	s.Require().NoError(err)

	matches, err := s.storage.ListMatches(s.ctx)
	s.Require().NoError(err)

	for _, m := range matches {
		onRoster := m.HasPlayer(playerID)
		references := player.MatchID != nil && *player.MatchID == m.ID
		s.Equal(references, onRoster, "player %s and match %s disagree", playerID, m.ID)
	}
}

// JoinMatch tests

func (s *ControllerSuite) TestJoinMatch() {
	matchID := s.createMatch("match-1", "Alpha")
	playerID := s.createPlayer("p1")

	match, err := s.controller.JoinMatch(s.ctx, matchID, playerID)
	s.Require().NoError(err)
	s.Require().Len(match.Players, 1)
	s.Equal(playerID, match.Players[0].ID)
	s.Require().NotNil(match.Players[0].MatchID)
	s.Equal(matchID, *match.Players[0].MatchID)

	s.assertMembership(playerID)
}

func (s *ControllerSuite) TestJoinMatchNotFound() {
	playerID := s.createPlayer("p1")
	matchID := s.createMatch("match-1", "Alpha")

	_, err := s.controller.JoinMatch(s.ctx, "missing", playerID)
	s.ErrorIs(err, model.ErrMatchNotFound)

	_, err = s.controller.JoinMatch(s.ctx, matchID, "missing")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *ControllerSuite) TestJoinMatchReportsMatchBeforePlayer() {
	_, err := s.controller.JoinMatch(s.ctx, "missing", "also-missing")
	s.ErrorIs(err, model.ErrMatchNotFound)
}

func (s *ControllerSuite) TestJoinMatchAlreadyInThisMatch() {
	matchID := s.createMatch("match-1", "Alpha")
	playerID := s.createPlayer("p1")

	_, err := s.controller.JoinMatch(s.ctx, matchID, playerID)
	s.Require().NoError(err)

	_, err = s.controller.JoinMatch(s.ctx, matchID, playerID)
	s.ErrorIs(err, model.ErrAlreadyInMatch)
}

func (s *ControllerSuite) TestJoinMatchAlreadyInOtherMatch() {
	alpha := s.createMatch("match-1", "Alpha")
	beta := s.createMatch("match-2", "Beta")
	playerID := s.createPlayer("p1")

	_, err := s.controller.JoinMatch(s.ctx, alpha, playerID)
	s.Require().NoError(err)

	_, err = s.controller.JoinMatch(s.ctx, beta, playerID)
	s.ErrorIs(err, model.ErrAlreadyInMatch)
	s.True(model.IsKind(err, model.KindConflict))
}

func (s *ControllerSuite) TestJoinMatchNotOpen() {
	first := s.createPlayer("p1")
	matchID := s.startedMatch(first)
	late := s.createPlayer("p2")

	_, err := s.controller.JoinMatch(s.ctx, matchID, late)
	s.ErrorIs(err, model.ErrMatchNotOpen)
}

func (s *ControllerSuite) TestJoinMatchFull() {
	matchID := s.createMatch("match-1", "Alpha")
	for i := 1; i <= model.MaxPlayers; i++ {
		_, err := s.controller.JoinMatch(s.ctx, matchID, s.createPlayer(fmt.Sprintf("p%d", i)))
		s.Require().NoError(err)
	}

	fifth := s.createPlayer("p5")
	_, err := s.controller.JoinMatch(s.ctx, matchID, fifth)
	s.ErrorIs(err, model.ErrMatchFull)
	s.Equal("match is full (max 4 players)", err.Error())

	match, err := s.storage.GetMatch(s.ctx, matchID)
	s.Require().NoError(err)
	s.Len(match.Players, model.MaxPlayers)
	s.assertMembership(fifth)
}

// LeaveMatch tests

func (s *ControllerSuite) TestLeaveMatch() {
	matchID := s.createMatch("match-1", "Alpha")
	playerID := s.createPlayer("p1")

	_, err := s.controller.JoinMatch(s.ctx, matchID, playerID)
	s.Require().NoError(err)

	match, err := s.controller.LeaveMatch(s.ctx, matchID, playerID)
	s.Require().NoError(err)
	s.False(match.HasPlayer(playerID))

	player, err := s.storage.GetPlayer(s.ctx, playerID)
	s.Require().NoError(err)
	s.Nil(player.MatchID)
	s.assertMembership(playerID)
}

func (s *ControllerSuite) TestLeaveMatchNotMember() {
	alpha := s.createMatch("match-1", "Alpha")
	beta := s.createMatch("match-2", "Beta")
	playerID := s.createPlayer("p1")

	_, err := s.controller.LeaveMatch(s.ctx, alpha, playerID)
	s.ErrorIs(err, model.ErrNotInMatch)

	_, err = s.controller.JoinMatch(s.ctx, beta, playerID)
	s.Require().NoError(err)

	_, err = s.controller.LeaveMatch(s.ctx, alpha, playerID)
	s.ErrorIs(err, model.ErrNotInMatch)
}

func (s *ControllerSuite) TestLeaveMatchNotFound() {
	matchID := s.createMatch("match-1", "Alpha")

	_, err := s.controller.LeaveMatch(s.ctx, matchID, "missing")
	s.ErrorIs(err, model.ErrPlayerNotFound)

	_, err = s.controller.LeaveMatch(s.ctx, "missing", "missing")
	s.ErrorIs(err, model.ErrMatchNotFound)
}

func (s *ControllerSuite) TestLeaveMatchInProgress() {
	a := s.createPlayer("a")
	b := s.createPlayer("b")
	matchID := s.startedMatch(a, b)

	match, err := s.controller.LeaveMatch(s.ctx, matchID, a)
	s.Require().NoError(err)
	s.Equal(model.MatchStateInProgress, match.State)
	s.Equal([]model.PlayerID{b}, match.PlayerIDs())
	s.assertMembership(a)
}

// StartMatch tests

func (s *ControllerSuite) TestStartMatch() {
	matchID := s.createMatch("match-1", "Alpha")
	_, err := s.controller.JoinMatch(s.ctx, matchID, s.createPlayer("p1"))
	s.Require().NoError(err)

	s.clock.Advance(time.Minute)
	match, err := s.controller.StartMatch(s.ctx, matchID)
	s.Require().NoError(err)
	s.Equal(model.MatchStateInProgress, match.State)
	s.Require().NotNil(match.StartDate)
	s.Equal(s.clock.Now(), *match.StartDate)
}

func (s *ControllerSuite) TestStartMatchTwice() {
	matchID := s.startedMatch(s.createPlayer("p1"))

	_, err := s.controller.StartMatch(s.ctx, matchID)
	s.ErrorIs(err, model.ErrMatchInProgress)
}

func (s *ControllerSuite) TestStartMatchWithoutPlayers() {
	matchID := s.createMatch("match-1", "Alpha")

	_, err := s.controller.StartMatch(s.ctx, matchID)
	s.ErrorIs(err, model.ErrNoPlayersToStart)
	s.True(model.IsKind(err, model.KindValidation))

	match, err := s.storage.GetMatch(s.ctx, matchID)
	s.Require().NoError(err)
	s.Equal(model.MatchStateWaiting, match.State)
	s.Nil(match.StartDate)
}

func (s *ControllerSuite) TestStartMatchFinished() {
	a := s.createPlayer("a")
	matchID := s.startedMatch(a)
	_, err := s.controller.FinishMatch(s.ctx, matchID, model.Scores{a: 1})
	s.Require().NoError(err)

	_, err = s.controller.StartMatch(s.ctx, matchID)
	s.ErrorIs(err, model.ErrMatchRestart)
}

func (s *ControllerSuite) TestStartMatchNotFound() {
	_, err := s.controller.StartMatch(s.ctx, "missing")
	s.ErrorIs(err, model.ErrMatchNotFound)
}

// FinishMatch tests

func (s *ControllerSuite) TestFinishMatch() {
	a := s.createPlayer("a")
	b := s.createPlayer("b")
	matchID := s.startedMatch(a, b)

	match, err := s.controller.FinishMatch(s.ctx, matchID, model.Scores{a: 10, b: 20})
	s.Require().NoError(err)
	s.Equal(model.MatchStateFinished, match.State)
	s.Equal(model.Scores{a: 10, b: 20}, match.Scores)
	s.Empty(match.Players)

	for _, id := range []model.PlayerID{a, b} {
		player, err := s.storage.GetPlayer(s.ctx, id)
		s.Require().NoError(err)
		s.Nil(player.MatchID)
		s.assertMembership(id)
	}
}

func (s *ControllerSuite) TestFinishMatchMissingScores() {
	a := s.createPlayer("a")
	b := s.createPlayer("b")
	matchID := s.startedMatch(a, b)

	_, err := s.controller.FinishMatch(s.ctx, matchID, model.Scores{a: 10})
	s.Require().Error(err)
	s.True(model.IsKind(err, model.KindValidation))
	s.Equal("missing scores for players: b", err.Error())
}

func (s *ControllerSuite) TestFinishMatchUnknownPlayers() {
	a := s.createPlayer("a")
	matchID := s.startedMatch(a)

	_, err := s.controller.FinishMatch(s.ctx, matchID, model.Scores{a: 10, "x": 5, "c": 1})
	s.Require().Error(err)
	s.True(model.IsKind(err, model.KindValidation))
	s.Equal("players not part of match: c, x", err.Error())
}

func (s *ControllerSuite) TestFinishMatchUnknownReportedBeforeMissing() {
	a := s.createPlayer("a")
	b := s.createPlayer("b")
	matchID := s.startedMatch(a, b)

	_, err := s.controller.FinishMatch(s.ctx, matchID, model.Scores{a: 10, "x": 5})
	s.Require().Error(err)
	s.True(model.IsKind(err, model.KindValidation))
	s.Equal("players not part of match: x", err.Error())
}

func (s *ControllerSuite) TestFinishMatchRejectedLeavesMatchUntouched() {
	a := s.createPlayer("a")
	matchID := s.startedMatch(a)

	_, err := s.controller.FinishMatch(s.ctx, matchID, model.Scores{"x": 5})
	s.Require().Error(err)

	match, err := s.storage.GetMatch(s.ctx, matchID)
	s.Require().NoError(err)
	s.Equal(model.MatchStateInProgress, match.State)
	s.Nil(match.Scores)
	s.True(match.HasPlayer(a))
}

func (s *ControllerSuite) TestFinishMatchNotStarted() {
	matchID := s.createMatch("match-1", "Alpha")

	_, err := s.controller.FinishMatch(s.ctx, matchID, model.Scores{"a": 1})
	s.ErrorIs(err, model.ErrMatchNotStarted)
}

func (s *ControllerSuite) TestFinishMatchTwice() {
	a := s.createPlayer("a")
	matchID := s.startedMatch(a)

	_, err := s.controller.FinishMatch(s.ctx, matchID, model.Scores{a: 1})
	s.Require().NoError(err)

	_, err = s.controller.FinishMatch(s.ctx, matchID, model.Scores{a: 1})
	s.ErrorIs(err, model.ErrMatchFinished)
}

func (s *ControllerSuite) TestFinishMatchNotFound() {
	_, err := s.controller.FinishMatch(s.ctx, "missing", model.Scores{"a": 1})
	s.ErrorIs(err, model.ErrMatchNotFound)
}

func (s *ControllerSuite) TestFinishedPlayersCanJoinAgain() {
	a := s.createPlayer("a")
	s.startedMatch(a)
	_, err := s.controller.FinishMatch(s.ctx, "match-1", model.Scores{a: 3})
	s.Require().NoError(err)

	next := s.createMatch("match-2", "Beta")
	match, err := s.controller.JoinMatch(s.ctx, next, a)
	s.Require().NoError(err)
	s.True(match.HasPlayer(a))
}

// Helper tests

func (s *ControllerSuite) TestUnknownAndMissingScorers() {
	roster := []model.PlayerID{"c", "a", "b"}
	scores := model.Scores{"z": 1, "a": 1, "y": 2}

	s.Equal([]model.PlayerID{"y", "z"}, unknownScorers(scores, roster))
	s.Equal([]model.PlayerID{"c", "b"}, missingScorers(scores, roster))
	s.Equal("c, b", joinIDs(missingScorers(scores, roster)))
}
