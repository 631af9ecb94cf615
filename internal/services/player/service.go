package player

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/gamematch/internal/dependencies/clock"
	"github.com/mcoot/gamematch/internal/dependencies/ids"
	"github.com/mcoot/gamematch/internal/model"
	"github.com/mcoot/gamematch/internal/storage"
)

// Service manages player registration and profiles
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	ids     ids.Generator
	logger  *slog.Logger
}

// New creates a new player Service
func New(storage storage.Storage, clock clock.Clock, ids ids.Generator, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		ids:     ids,
		logger:  logger,
	}
}

// ListPlayers returns every registered player
func (s *Service) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	players, err := s.storage.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	if len(players) == 0 {
		return nil, model.ErrNoPlayers
	}
	return players, nil
}

// RegisterPlayer creates a player that is not in any match.
// Input format is checked by the caller; uniqueness is enforced by the store.
func (s *Service) RegisterPlayer(ctx context.Context, name, nickname, email string) (*model.Player, error) {
	player := &model.Player{
		ID:        model.PlayerID(s.ids.NewID()),
		Name:      name,
		Nickname:  nickname,
		Email:     email,
		CreatedAt: s.clock.Now(),
	}

	if err := s.storage.CreatePlayer(ctx, player); err != nil {
		return nil, uniqueConflict(err)
	}

	s.logger.Info("player registered",
		slog.String("player_id", string(player.ID)),
		slog.String("nickname", player.Nickname),
	)

	return player, nil
}

// GetPlayer retrieves a player by ID
func (s *Service) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return s.storage.GetPlayer(ctx, id)
}

// UpdatePlayer applies a partial update. A player in a match is locked except
// for clearing the match reference, which also takes them off the roster.
func (s *Service) UpdatePlayer(ctx context.Context, id model.PlayerID, update model.PlayerUpdate) (*model.Player, error) {
	player, err := s.storage.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}

	if player.InMatch() && !update.OnlyClearsMatch() {
		return nil, model.ErrPlayerLocked
	}
	if update.SetMatch && update.MatchID != nil {
		return nil, model.ErrMembershipImmutable
	}

	if !update.SetMatch || !player.InMatch() {
		updated, err := s.storage.UpdatePlayer(ctx, id, update)
		if err != nil {
			return nil, uniqueConflict(err)
		}
		return updated, nil
	}

	matchID := *player.MatchID
	var updated *model.Player
	err = s.storage.InTx(ctx, func(tx storage.Storage) error {
		var err error
		if updated, err = tx.UpdatePlayer(ctx, id, update); err != nil {
			return err
		}
		err = tx.RemoveMember(ctx, matchID, id)
		if errors.Is(err, model.ErrMatchNotFound) {
			return nil // Dangling reference, nothing to remove from
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("player match reference cleared",
		slog.String("player_id", string(id)),
		slog.String("match_id", string(matchID)),
	)

	return updated, nil
}

// DeletePlayer removes a player that is not in a match
func (s *Service) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	player, err := s.storage.GetPlayer(ctx, id)
	if err != nil {
		return err
	}
	if player.InMatch() {
		return model.ErrPlayerUndeletable
	}

	if err := s.storage.DeletePlayer(ctx, id); err != nil {
		return err
	}

	s.logger.Info("player deleted", slog.String("player_id", string(id)))
	return nil
}

// uniqueConflict maps a store uniqueness violation to the matching conflict
func uniqueConflict(err error) error {
	var dup *storage.DuplicateError
	if !errors.As(err, &dup) {
		return err
	}

	switch dup.Field {
	case storage.FieldEmail:
		return model.ErrEmailInUse
	case storage.FieldNickname:
		return model.ErrNicknameInUse
	default:
		return model.ErrDuplicateField
	}
}
