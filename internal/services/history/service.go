package history

import (
	"context"

	"github.com/mcoot/gamematch/internal/model"
	"github.com/mcoot/gamematch/internal/storage"
)

// Service projects a player's match history from the finished matches
type Service struct {
	storage storage.Storage
}

// New creates a new history Service
func New(storage storage.Storage) *Service {
	return &Service{storage: storage}
}

// PlayerHistory returns, in store order, every finished match that recorded
// a score for the player. The result may be empty; the player is not
// required to still exist.
func (s *Service) PlayerHistory(ctx context.Context, playerID model.PlayerID) ([]*model.Match, error) {
	finished, err := s.storage.ListMatchesByState(ctx, model.MatchStateFinished)
	if err != nil {
		return nil, err
	}

	history := make([]*model.Match, 0, len(finished))
	for _, match := range finished {
		if match.HasScoreFor(playerID) {
			history = append(history, match)
		}
	}
	return history, nil
}
