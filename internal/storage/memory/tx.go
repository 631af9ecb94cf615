package memory

import (
	"context"

	"github.com/mcoot/gamematch/internal/model"
	"github.com/mcoot/gamematch/internal/storage"
)

// txStorage is the view handed to InTx callbacks. It works directly on the
// cloned state; the owning Storage already holds the write lock.
type txStorage struct {
	st *state
}

var _ storage.Storage = (*txStorage)(nil)

func (t *txStorage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	return t.st.listPlayers(), nil
}

func (t *txStorage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return t.st.getPlayer(id)
}

func (t *txStorage) CreatePlayer(ctx context.Context, player *model.Player) error {
	return t.st.createPlayer(player)
}

func (t *txStorage) UpdatePlayer(ctx context.Context, id model.PlayerID, update model.PlayerUpdate) (*model.Player, error) {
	return t.st.updatePlayer(id, update)
}

func (t *txStorage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	return t.st.deletePlayer(id)
}

func (t *txStorage) ListMatches(ctx context.Context) ([]*model.Match, error) {
	return t.st.listMatches(nil), nil
}

func (t *txStorage) ListMatchesByState(ctx context.Context, matchState model.MatchState) ([]*model.Match, error) {
	return t.st.listMatches(&matchState), nil
}

func (t *txStorage) GetMatch(ctx context.Context, id model.MatchID) (*model.Match, error) {
	return t.st.getMatch(id)
}

func (t *txStorage) GetMatchByName(ctx context.Context, name string) (*model.Match, error) {
	id, ok := t.st.matchNameIndex[name]
	if !ok {
		return nil, model.ErrMatchNotFound
	}
	return t.st.getMatch(id)
}

func (t *txStorage) CreateMatch(ctx context.Context, match *model.Match) error {
	return t.st.createMatch(match)
}

func (t *txStorage) UpdateMatch(ctx context.Context, id model.MatchID, update model.MatchUpdate) error {
	return t.st.updateMatch(id, update)
}

func (t *txStorage) DeleteMatch(ctx context.Context, id model.MatchID) error {
	return t.st.deleteMatch(id)
}

func (t *txStorage) AddMember(ctx context.Context, matchID model.MatchID, playerID model.PlayerID) error {
	return t.st.addMember(matchID, playerID)
}

func (t *txStorage) RemoveMember(ctx context.Context, matchID model.MatchID, playerID model.PlayerID) error {
	return t.st.removeMember(matchID, playerID)
}

// InTx on an open transaction joins it
func (t *txStorage) InTx(ctx context.Context, fn func(tx storage.Storage) error) error {
	return fn(t)
}
