package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/mcoot/gamematch/internal/model"
	"github.com/mcoot/gamematch/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex
	st *state
}

// state holds all records. Entities are returned to callers as copies so
// that a transaction can work on a cloned state without aliasing.
type state struct {
	players     map[model.PlayerID]*model.Player
	playerOrder []model.PlayerID

	matches    map[model.MatchID]*matchRecord
	matchOrder []model.MatchID

	nicknameIndex  map[string]model.PlayerID
	emailIndex     map[string]model.PlayerID
	matchNameIndex map[string]model.MatchID
}

type matchRecord struct {
	match  model.Match // Players is always empty here, see roster
	roster []model.PlayerID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{st: newState()}
}

func newState() *state {
	return &state{
		players:        make(map[model.PlayerID]*model.Player),
		matches:        make(map[model.MatchID]*matchRecord),
		nicknameIndex:  make(map[string]model.PlayerID),
		emailIndex:     make(map[string]model.PlayerID),
		matchNameIndex: make(map[string]model.MatchID),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.listPlayers(), nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.getPlayer(id)
}

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.createPlayer(player)
}

func (s *Storage) UpdatePlayer(ctx context.Context, id model.PlayerID, update model.PlayerUpdate) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.updatePlayer(id, update)
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.deletePlayer(id)
}

// Match operations

func (s *Storage) ListMatches(ctx context.Context) ([]*model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.listMatches(nil), nil
}

func (s *Storage) ListMatchesByState(ctx context.Context, matchState model.MatchState) ([]*model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.listMatches(&matchState), nil
}

func (s *Storage) GetMatch(ctx context.Context, id model.MatchID) (*model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.getMatch(id)
}

func (s *Storage) GetMatchByName(ctx context.Context, name string) (*model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.st.matchNameIndex[name]
	if !ok {
		return nil, model.ErrMatchNotFound
	}
	return s.st.getMatch(id)
}

func (s *Storage) CreateMatch(ctx context.Context, match *model.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.createMatch(match)
}

func (s *Storage) UpdateMatch(ctx context.Context, id model.MatchID, update model.MatchUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.updateMatch(id, update)
}

func (s *Storage) DeleteMatch(ctx context.Context, id model.MatchID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.deleteMatch(id)
}

// Roster operations

func (s *Storage) AddMember(ctx context.Context, matchID model.MatchID, playerID model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.addMember(matchID, playerID)
}

func (s *Storage) RemoveMember(ctx context.Context, matchID model.MatchID, playerID model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.removeMember(matchID, playerID)
}

// InTx runs fn on a clone of the current state while holding the write lock.
// The clone replaces the live state only if fn succeeds.
func (s *Storage) InTx(ctx context.Context, fn func(tx storage.Storage) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.st.clone()
	if err := fn(&txStorage{st: working}); err != nil {
		return err
	}
	s.st = working
	return nil
}

// state operations, callers hold the lock

func (st *state) listPlayers() []*model.Player {
	players := make([]*model.Player, 0, len(st.playerOrder))
	for _, id := range st.playerOrder {
		players = append(players, copyPlayer(st.players[id]))
	}
	return players
}

func (st *state) getPlayer(id model.PlayerID) (*model.Player, error) {
	p, ok := st.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return copyPlayer(p), nil
}

func (st *state) createPlayer(player *model.Player) error {
	if _, taken := st.emailIndex[player.Email]; taken {
		return &storage.DuplicateError{Field: storage.FieldEmail}
	}
	if _, taken := st.nicknameIndex[player.Nickname]; taken {
		return &storage.DuplicateError{Field: storage.FieldNickname}
	}
	st.players[player.ID] = copyPlayer(player)
	st.playerOrder = append(st.playerOrder, player.ID)
	st.emailIndex[player.Email] = player.ID
	st.nicknameIndex[player.Nickname] = player.ID
	return nil
}

func (st *state) updatePlayer(id model.PlayerID, update model.PlayerUpdate) (*model.Player, error) {
	p, ok := st.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	if update.Email != nil && *update.Email != p.Email {
		if _, taken := st.emailIndex[*update.Email]; taken {
			return nil, &storage.DuplicateError{Field: storage.FieldEmail}
		}
	}
	if update.Nickname != nil && *update.Nickname != p.Nickname {
		if _, taken := st.nicknameIndex[*update.Nickname]; taken {
			return nil, &storage.DuplicateError{Field: storage.FieldNickname}
		}
	}

	delete(st.emailIndex, p.Email)
	delete(st.nicknameIndex, p.Nickname)
	update.Apply(p)
	st.emailIndex[p.Email] = p.ID
	st.nicknameIndex[p.Nickname] = p.ID

	return copyPlayer(p), nil
}

func (st *state) deletePlayer(id model.PlayerID) error {
	p, ok := st.players[id]
	if !ok {
		return model.ErrPlayerNotFound
	}
	if p.MatchID != nil {
		if rec, ok := st.matches[*p.MatchID]; ok {
			rec.roster = slices.DeleteFunc(rec.roster, func(pid model.PlayerID) bool { return pid == id })
		}
	}
	delete(st.players, id)
	delete(st.emailIndex, p.Email)
	delete(st.nicknameIndex, p.Nickname)
	st.playerOrder = slices.DeleteFunc(st.playerOrder, func(pid model.PlayerID) bool { return pid == id })
	return nil
}

func (st *state) listMatches(filter *model.MatchState) []*model.Match {
	matches := make([]*model.Match, 0, len(st.matchOrder))
	for _, id := range st.matchOrder {
		rec := st.matches[id]
		if filter != nil && rec.match.State != *filter {
			continue
		}
		matches = append(matches, st.hydrate(rec))
	}
	return matches
}

func (st *state) getMatch(id model.MatchID) (*model.Match, error) {
	rec, ok := st.matches[id]
	if !ok {
		return nil, model.ErrMatchNotFound
	}
	return st.hydrate(rec), nil
}

func (st *state) createMatch(match *model.Match) error {
	if _, taken := st.matchNameIndex[match.Name]; taken {
		return &storage.DuplicateError{Field: storage.FieldMatchName}
	}
	rec := &matchRecord{match: *match}
	rec.match.Players = nil
	rec.match.Scores = match.Scores.Clone()
	for _, p := range match.Players {
		rec.roster = append(rec.roster, p.ID)
	}
	st.matches[match.ID] = rec
	st.matchOrder = append(st.matchOrder, match.ID)
	st.matchNameIndex[match.Name] = match.ID
	return nil
}

func (st *state) updateMatch(id model.MatchID, update model.MatchUpdate) error {
	rec, ok := st.matches[id]
	if !ok {
		return model.ErrMatchNotFound
	}
	update.Apply(&rec.match)
	return nil
}

func (st *state) deleteMatch(id model.MatchID) error {
	rec, ok := st.matches[id]
	if !ok {
		return model.ErrMatchNotFound
	}
	delete(st.matches, id)
	delete(st.matchNameIndex, rec.match.Name)
	st.matchOrder = slices.DeleteFunc(st.matchOrder, func(mid model.MatchID) bool { return mid == id })
	return nil
}

func (st *state) addMember(matchID model.MatchID, playerID model.PlayerID) error {
	rec, ok := st.matches[matchID]
	if !ok {
		return model.ErrMatchNotFound
	}
	if _, ok := st.players[playerID]; !ok {
		return model.ErrPlayerNotFound
	}
	if !slices.Contains(rec.roster, playerID) {
		rec.roster = append(rec.roster, playerID)
	}
	return nil
}

func (st *state) removeMember(matchID model.MatchID, playerID model.PlayerID) error {
	rec, ok := st.matches[matchID]
	if !ok {
		return model.ErrMatchNotFound
	}
	rec.roster = slices.DeleteFunc(rec.roster, func(pid model.PlayerID) bool { return pid == playerID })
	return nil
}

// hydrate builds a match copy with its roster resolved to players
func (st *state) hydrate(rec *matchRecord) *model.Match {
	m := rec.match
	m.Scores = rec.match.Scores.Clone()
	if rec.match.StartDate != nil {
		t := *rec.match.StartDate
		m.StartDate = &t
	}
	m.Players = make([]model.Player, 0, len(rec.roster))
	for _, pid := range rec.roster {
		if p, ok := st.players[pid]; ok {
			m.Players = append(m.Players, *copyPlayer(p))
		}
	}
	return &m
}

func (st *state) clone() *state {
	c := newState()
	for id, p := range st.players {
		c.players[id] = copyPlayer(p)
	}
	c.playerOrder = slices.Clone(st.playerOrder)
	for id, rec := range st.matches {
		r := &matchRecord{match: rec.match, roster: slices.Clone(rec.roster)}
		r.match.Scores = rec.match.Scores.Clone()
		c.matches[id] = r
	}
	c.matchOrder = slices.Clone(st.matchOrder)
	for k, v := range st.nicknameIndex {
		c.nicknameIndex[k] = v
	}
	for k, v := range st.emailIndex {
		c.emailIndex[k] = v
	}
	for k, v := range st.matchNameIndex {
		c.matchNameIndex[k] = v
	}
	return c
}

func copyPlayer(p *model.Player) *model.Player {
	c := *p
	if p.MatchID != nil {
		id := *p.MatchID
		c.MatchID = &id
	}
	return &c
}
