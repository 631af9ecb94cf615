package storage

import (
	"context"
	"fmt"

	"github.com/mcoot/gamematch/internal/model"
)

// Storage defines the interface for data persistence.
//
// Lookups of missing entities return model.ErrPlayerNotFound or
// model.ErrMatchNotFound. Writes that collide with a unique field return a
// *DuplicateError.
type Storage interface {
	// Player operations
	ListPlayers(ctx context.Context) ([]*model.Player, error)
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	CreatePlayer(ctx context.Context, player *model.Player) error
	UpdatePlayer(ctx context.Context, id model.PlayerID, update model.PlayerUpdate) (*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error

	// Match operations. Returned matches always carry their roster.
	ListMatches(ctx context.Context) ([]*model.Match, error)
	ListMatchesByState(ctx context.Context, state model.MatchState) ([]*model.Match, error)
	GetMatch(ctx context.Context, id model.MatchID) (*model.Match, error)
	GetMatchByName(ctx context.Context, name string) (*model.Match, error)
	CreateMatch(ctx context.Context, match *model.Match) error
	UpdateMatch(ctx context.Context, id model.MatchID, update model.MatchUpdate) error
	DeleteMatch(ctx context.Context, id model.MatchID) error

	// Roster operations
	AddMember(ctx context.Context, matchID model.MatchID, playerID model.PlayerID) error
	RemoveMember(ctx context.Context, matchID model.MatchID, playerID model.PlayerID) error

	// InTx runs fn against a transactional view of the store. Writes made
	// through tx are committed together when fn returns nil and discarded
	// otherwise.
	InTx(ctx context.Context, fn func(tx Storage) error) error
}

// Unique fields reported by DuplicateError
const (
	FieldEmail     = "email"
	FieldNickname  = "nickname"
	FieldMatchName = "name"
)

// DuplicateError reports a uniqueness violation on a stored field
type DuplicateError struct {
	Field string
}

// Error implements error interface
func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate value for unique field %q", e.Field)
}
