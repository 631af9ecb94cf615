package match

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/gamematch/internal/dependencies/clock"
	"github.com/mcoot/gamematch/internal/dependencies/ids"
	"github.com/mcoot/gamematch/internal/model"
	"github.com/mcoot/gamematch/internal/storage"
)

// Service is the registry of matches: creation, lookup and deletion.
// State transitions belong to the lifecycle controller.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	ids     ids.Generator
	logger  *slog.Logger
}

// New creates a new match Service
func New(storage storage.Storage, clock clock.Clock, ids ids.Generator, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		ids:     ids,
		logger:  logger,
	}
}

// ListMatches returns every match with its roster
func (s *Service) ListMatches(ctx context.Context) ([]*model.Match, error) {
	matches, err := s.storage.ListMatches(ctx)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, model.ErrNoMatches
	}
	return matches, nil
}

// ListOpenMatches returns the matches still waiting for players
func (s *Service) ListOpenMatches(ctx context.Context) ([]*model.Match, error) {
	matches, err := s.storage.ListMatchesByState(ctx, model.MatchStateWaiting)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, model.ErrNoOpenMatches
	}
	return matches, nil
}

// GetMatch retrieves a match by ID
func (s *Service) GetMatch(ctx context.Context, id model.MatchID) (*model.Match, error) {
	return s.storage.GetMatch(ctx, id)
}

// FindByName reports whether a match with the given name exists
func (s *Service) FindByName(ctx context.Context, name string) (*model.Match, bool, error) {
	match, err := s.storage.GetMatchByName(ctx, name)
	if errors.Is(err, model.ErrMatchNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return match, true, nil
}

// CreateMatch opens a new match with an empty roster
func (s *Service) CreateMatch(ctx context.Context, name string) (*model.Match, error) {
	_, exists, err := s.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, model.ErrMatchNameTaken
	}

	match := &model.Match{
		ID:        model.MatchID(s.ids.NewID()),
		Name:      name,
		State:     model.MatchStateWaiting,
		Players:   []model.Player{},
		CreatedAt: s.clock.Now(),
	}

	if err := s.storage.CreateMatch(ctx, match); err != nil {
		var dup *storage.DuplicateError
		if errors.As(err, &dup) {
			// Lost a race with a concurrent create
			return nil, model.ErrMatchNameTaken
		}
		return nil, err
	}

	s.logger.Info("match created",
		slog.String("match_id", string(match.ID)),
		slog.String("name", name),
	)

	return match, nil
}

// DeleteMatch removes a match that has nobody on its roster
func (s *Service) DeleteMatch(ctx context.Context, id model.MatchID) error {
	match, err := s.storage.GetMatch(ctx, id)
	if err != nil {
		return err
	}
	if len(match.Players) > 0 {
		return model.ErrMatchHasPlayers
	}

	if err := s.storage.DeleteMatch(ctx, id); err != nil {
		return err
	}

	s.logger.Info("match deleted", slog.String("match_id", string(id)))
	return nil
}
