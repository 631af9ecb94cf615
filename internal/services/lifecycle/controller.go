package lifecycle

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mcoot/gamematch/internal/dependencies/clock"
	"github.com/mcoot/gamematch/internal/model"
	"github.com/mcoot/gamematch/internal/storage"
)

// Controller manages the match state machine and roster membership.
//
// A match moves WAITING -> IN_PROGRESS -> FINISHED and never back. Every
// check of an operation runs before its first write, and writes that touch
// both a player and a roster share one store transaction.
type Controller struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// NewController creates a new lifecycle Controller
func NewController(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Controller {
	return &Controller{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// JoinMatch adds a player who is not in any match to a waiting match
func (c *Controller) JoinMatch(ctx context.Context, matchID model.MatchID, playerID model.PlayerID) (*model.Match, error) {
	match, player, err := c.loadMatchAndPlayer(ctx, matchID, playerID)
	if err != nil {
		return nil, err
	}

	if player.InMatch() {
		return nil, model.ErrAlreadyInMatch
	}
	if match.State != model.MatchStateWaiting {
		return nil, model.ErrMatchNotOpen
	}
	if match.IsFull() {
		return nil, model.ErrMatchFull
	}

	err = c.storage.InTx(ctx, func(tx storage.Storage) error {
		if _, err := tx.UpdatePlayer(ctx, playerID, model.AssignMatch(matchID)); err != nil {
			return err
		}
		return tx.AddMember(ctx, matchID, playerID)
	})
	if err != nil {
		c.logger.Error("failed to join match",
			slog.String("match_id", string(matchID)),
			slog.String("player_id", string(playerID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("player joined match",
		slog.String("match_id", string(matchID)),
		slog.String("player_id", string(playerID)),
		slog.Int("player_count", len(match.Players)+1),
	)

	return c.storage.GetMatch(ctx, matchID)
}

// LeaveMatch removes a player from the match they belong to, in any state
func (c *Controller) LeaveMatch(ctx context.Context, matchID model.MatchID, playerID model.PlayerID) (*model.Match, error) {
	_, player, err := c.loadMatchAndPlayer(ctx, matchID, playerID)
	if err != nil {
		return nil, err
	}

	if player.MatchID == nil || *player.MatchID != matchID {
		return nil, model.ErrNotInMatch
	}

	err = c.storage.InTx(ctx, func(tx storage.Storage) error {
		if _, err := tx.UpdatePlayer(ctx, playerID, model.ClearMatch()); err != nil {
			return err
		}
		return tx.RemoveMember(ctx, matchID, playerID)
	})
	if err != nil {
		c.logger.Error("failed to leave match",
			slog.String("match_id", string(matchID)),
			slog.String("player_id", string(playerID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("player left match",
		slog.String("match_id", string(matchID)),
		slog.String("player_id", string(playerID)),
	)

	return c.storage.GetMatch(ctx, matchID)
}

// StartMatch moves a waiting match with at least one player into progress
func (c *Controller) StartMatch(ctx context.Context, matchID model.MatchID) (*model.Match, error) {
	match, err := c.storage.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	switch match.State {
	case model.MatchStateInProgress:
		return nil, model.ErrMatchInProgress
	case model.MatchStateFinished:
		return nil, model.ErrMatchRestart
	}
	if len(match.Players) == 0 {
		return nil, model.ErrNoPlayersToStart
	}

	state := model.MatchStateInProgress
	now := c.clock.Now()
	if err := c.storage.UpdateMatch(ctx, matchID, model.MatchUpdate{State: &state, StartDate: &now}); err != nil {
		return nil, err
	}

	c.logger.Info("match started",
		slog.String("match_id", string(matchID)),
		slog.Int("player_count", len(match.Players)),
	)

	return c.storage.GetMatch(ctx, matchID)
}

// FinishMatch records a score for every roster member, then releases them.
// The score keys must be exactly the current roster.
func (c *Controller) FinishMatch(ctx context.Context, matchID model.MatchID, scores model.Scores) (*model.Match, error) {
	match, err := c.storage.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	switch match.State {
	case model.MatchStateWaiting:
		return nil, model.ErrMatchNotStarted
	case model.MatchStateFinished:
		return nil, model.ErrMatchFinished
	}

	roster := match.PlayerIDs()
	if unknown := unknownScorers(scores, roster); len(unknown) > 0 {
		return nil, model.Validationf("players not part of match: %s", joinIDs(unknown))
	}
	if missing := missingScorers(scores, roster); len(missing) > 0 {
		return nil, model.Validationf("missing scores for players: %s", joinIDs(missing))
	}

	state := model.MatchStateFinished
	err = c.storage.InTx(ctx, func(tx storage.Storage) error {
		if err := tx.UpdateMatch(ctx, matchID, model.MatchUpdate{State: &state, Scores: scores}); err != nil {
			return err
		}
		for _, playerID := range roster {
			if err := tx.RemoveMember(ctx, matchID, playerID); err != nil {
				return err
			}
			if _, err := tx.UpdatePlayer(ctx, playerID, model.ClearMatch()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.logger.Error("failed to finish match",
			slog.String("match_id", string(matchID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("match finished",
		slog.String("match_id", string(matchID)),
		slog.Int("player_count", len(roster)),
	)

	return c.storage.GetMatch(ctx, matchID)
}

// loadMatchAndPlayer reads both records concurrently. A missing match is
// reported ahead of a missing player.
func (c *Controller) loadMatchAndPlayer(ctx context.Context, matchID model.MatchID, playerID model.PlayerID) (*model.Match, *model.Player, error) {
	var (
		match               *model.Match
		player              *model.Player
		matchErr, playerErr error
		g                   errgroup.Group
	)

	g.Go(func() error {
		match, matchErr = c.storage.GetMatch(ctx, matchID)
		return matchErr
	})
	g.Go(func() error {
		player, playerErr = c.storage.GetPlayer(ctx, playerID)
		return playerErr
	})

	if err := g.Wait(); err != nil {
		if matchErr != nil {
			return nil, nil, matchErr
		}
		return nil, nil, playerErr
	}
	return match, player, nil
}

// unknownScorers returns the sorted score keys that are not on the roster
func unknownScorers(scores model.Scores, roster []model.PlayerID) []model.PlayerID {
	var unknown []model.PlayerID
	for id := range scores {
		if !slices.Contains(roster, id) {
			unknown = append(unknown, id)
		}
	}
	slices.Sort(unknown)
	return unknown
}

// missingScorers returns, in roster order, the members without a score
func missingScorers(scores model.Scores, roster []model.PlayerID) []model.PlayerID {
	var missing []model.PlayerID
	for _, id := range roster {
		if _, ok := scores[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func joinIDs(ids []model.PlayerID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}
