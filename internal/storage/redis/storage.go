package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/gamematch/internal/model"
	"github.com/mcoot/gamematch/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
//
// Players and matches are JSON documents. Rosters and listing order live in
// sorted sets scored by a global sequence; unique fields are claimed through
// index keys. Every multi-key write goes through a MULTI/EXEC pipeline.
type Storage struct {
	client *redis.Client
	cfg    Config

	// tx is the open MULTI/EXEC pipeline when this value is a transactional
	// view handed out by InTx. Reads inside a transaction see committed data.
	tx redis.Pipeliner
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	ids, err := s.client.ZRange(ctx, playersIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	players, err := s.loadPlayers(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]*model.Player, len(players))
	for i := range players {
		result[i] = &players[i]
	}
	return result, nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) (err error) {
	owner := string(player.ID)
	var claimed []string
	defer func() {
		if err != nil {
			s.releaseClaims(ctx, claimed...)
		}
	}()

	if err := s.claimUnique(ctx, emailIndexKey(player.Email), owner, storage.FieldEmail); err != nil {
		return err
	}
	claimed = append(claimed, emailIndexKey(player.Email))
	if err := s.claimUnique(ctx, nicknameIndexKey(player.Nickname), owner, storage.FieldNickname); err != nil {
		return err
	}
	claimed = append(claimed, nicknameIndexKey(player.Nickname))

	data, err := json.Marshal(player)
	if err != nil {
		return err
	}
	seq, err := s.nextSeq(ctx)
	if err != nil {
		return err
	}

	return s.write(ctx, func(w redis.Cmdable) {
		w.Set(ctx, playerKey(player.ID), data, 0)
		w.ZAdd(ctx, playersIndexKey(), redis.Z{Score: seq, Member: owner})
	})
}

func (s *Storage) UpdatePlayer(ctx context.Context, id model.PlayerID, update model.PlayerUpdate) (_ *model.Player, err error) {
	player, err := s.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}

	oldEmail, oldNickname := player.Email, player.Nickname
	update.Apply(player)
	emailChanged := player.Email != oldEmail
	nicknameChanged := player.Nickname != oldNickname

	owner := string(player.ID)
	var claimed []string
	defer func() {
		if err != nil {
			s.releaseClaims(ctx, claimed...)
		}
	}()

	if emailChanged {
		if err := s.claimUnique(ctx, emailIndexKey(player.Email), owner, storage.FieldEmail); err != nil {
			return nil, err
		}
		claimed = append(claimed, emailIndexKey(player.Email))
	}
	if nicknameChanged {
		if err := s.claimUnique(ctx, nicknameIndexKey(player.Nickname), owner, storage.FieldNickname); err != nil {
			return nil, err
		}
		claimed = append(claimed, nicknameIndexKey(player.Nickname))
	}

	data, err := json.Marshal(player)
	if err != nil {
		return nil, err
	}

	err = s.write(ctx, func(w redis.Cmdable) {
		w.Set(ctx, playerKey(player.ID), data, 0)
		if emailChanged {
			w.Del(ctx, emailIndexKey(oldEmail))
		}
		if nicknameChanged {
			w.Del(ctx, nicknameIndexKey(oldNickname))
		}
	})
	if err != nil {
		return nil, err
	}
	return player, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	player, err := s.GetPlayer(ctx, id)
	if err != nil {
		return err
	}

	return s.write(ctx, func(w redis.Cmdable) {
		w.Del(ctx, playerKey(id), emailIndexKey(player.Email), nicknameIndexKey(player.Nickname))
		w.ZRem(ctx, playersIndexKey(), string(id))
		if player.MatchID != nil {
			w.ZRem(ctx, rosterKey(*player.MatchID), string(id))
		}
	})
}

// Match operations

func (s *Storage) ListMatches(ctx context.Context) ([]*model.Match, error) {
	return s.listMatches(ctx, func(*model.Match) bool { return true })
}

func (s *Storage) ListMatchesByState(ctx context.Context, state model.MatchState) ([]*model.Match, error) {
	return s.listMatches(ctx, func(m *model.Match) bool { return m.State == state })
}

func (s *Storage) GetMatch(ctx context.Context, id model.MatchID) (*model.Match, error) {
	match, err := s.getMatchDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	playerIDs, err := s.client.ZRange(ctx, rosterKey(id), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	match.Players, err = s.loadPlayers(ctx, playerIDs)
	if err != nil {
		return nil, err
	}
	return match, nil
}

func (s *Storage) GetMatchByName(ctx context.Context, name string) (*model.Match, error) {
	id, err := s.client.Get(ctx, matchNameIndexKey(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrMatchNotFound
		}
		return nil, err
	}
	return s.GetMatch(ctx, model.MatchID(id))
}

func (s *Storage) CreateMatch(ctx context.Context, match *model.Match) (err error) {
	owner := string(match.ID)
	if err := s.claimUnique(ctx, matchNameIndexKey(match.Name), owner, storage.FieldMatchName); err != nil {
		return err
	}
	defer func() {
		if err != nil {
			s.releaseClaims(ctx, matchNameIndexKey(match.Name))
		}
	}()

	doc := *match
	doc.Players = nil
	data, err := json.Marshal(&doc)
	if err != nil {
		return err
	}
	seq, err := s.nextSeq(ctx)
	if err != nil {
		return err
	}

	return s.write(ctx, func(w redis.Cmdable) {
		w.Set(ctx, matchKey(match.ID), data, 0)
		w.ZAdd(ctx, matchesIndexKey(), redis.Z{Score: seq, Member: owner})
		for i, p := range match.Players {
			w.ZAdd(ctx, rosterKey(match.ID), redis.Z{Score: float64(i), Member: string(p.ID)})
		}
	})
}

func (s *Storage) UpdateMatch(ctx context.Context, id model.MatchID, update model.MatchUpdate) error {
	match, err := s.getMatchDocument(ctx, id)
	if err != nil {
		return err
	}
	update.Apply(match)

	data, err := json.Marshal(match)
	if err != nil {
		return err
	}
	return s.write(ctx, func(w redis.Cmdable) {
		w.Set(ctx, matchKey(id), data, 0)
	})
}

func (s *Storage) DeleteMatch(ctx context.Context, id model.MatchID) error {
	match, err := s.getMatchDocument(ctx, id)
	if err != nil {
		return err
	}

	return s.write(ctx, func(w redis.Cmdable) {
		w.Del(ctx, matchKey(id), rosterKey(id), matchNameIndexKey(match.Name))
		w.ZRem(ctx, matchesIndexKey(), string(id))
	})
}

// Roster operations

func (s *Storage) AddMember(ctx context.Context, matchID model.MatchID, playerID model.PlayerID) error {
	if err := s.requireExists(ctx, matchKey(matchID), model.ErrMatchNotFound); err != nil {
		return err
	}
	if err := s.requireExists(ctx, playerKey(playerID), model.ErrPlayerNotFound); err != nil {
		return err
	}
	seq, err := s.nextSeq(ctx)
	if err != nil {
		return err
	}

	return s.write(ctx, func(w redis.Cmdable) {
		w.ZAddNX(ctx, rosterKey(matchID), redis.Z{Score: seq, Member: string(playerID)})
	})
}

func (s *Storage) RemoveMember(ctx context.Context, matchID model.MatchID, playerID model.PlayerID) error {
	if err := s.requireExists(ctx, matchKey(matchID), model.ErrMatchNotFound); err != nil {
		return err
	}

	return s.write(ctx, func(w redis.Cmdable) {
		w.ZRem(ctx, rosterKey(matchID), string(playerID))
	})
}

// InTx queues every write made through tx in a single MULTI/EXEC block
func (s *Storage) InTx(ctx context.Context, fn func(tx storage.Storage) error) error {
	if s.tx != nil {
		return fn(s)
	}

	pipe := s.client.TxPipeline()
	txStore := &Storage{client: s.client, cfg: s.cfg, tx: pipe}
	if err := fn(txStore); err != nil {
		pipe.Discard()
		return err
	}

	_, err := pipe.Exec(ctx)
	return err
}

// helpers

// write applies fn to the open transaction, or to a fresh MULTI/EXEC
// pipeline that is executed immediately
func (s *Storage) write(ctx context.Context, fn func(w redis.Cmdable)) error {
	if s.tx != nil {
		fn(s.tx)
		return nil
	}

	pipe := s.client.TxPipeline()
	fn(pipe)
	_, err := pipe.Exec(ctx)
	return err
}

// claimUnique takes ownership of a unique index key, failing with a
// DuplicateError if another entity already owns it
func (s *Storage) claimUnique(ctx context.Context, key, owner, field string) error {
	if s.tx != nil {
		current, err := s.client.Get(ctx, key).Result()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		case current != owner:
			return &storage.DuplicateError{Field: field}
		}
		s.tx.Set(ctx, key, owner, 0)
		return nil
	}

	claimed, err := s.client.SetNX(ctx, key, owner, 0).Result()
	if err != nil {
		return err
	}
	if claimed {
		return nil
	}

	current, err := s.client.Get(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	if current != owner {
		return &storage.DuplicateError{Field: field}
	}
	return nil
}

// releaseClaims undoes claims made outside a transaction. Claims queued on
// an open transaction are dropped with it.
func (s *Storage) releaseClaims(ctx context.Context, keys ...string) {
	if s.tx != nil || len(keys) == 0 {
		return
	}
	_ = s.client.Del(context.WithoutCancel(ctx), keys...).Err()
}

// nextSeq returns the next value of the global ordering sequence. It runs
// outside any open transaction; gaps left by rolled back writes are harmless.
func (s *Storage) nextSeq(ctx context.Context) (float64, error) {
	n, err := s.client.Incr(ctx, seqKey()).Result()
	if err != nil {
		return 0, err
	}
	return float64(n), nil
}

func (s *Storage) requireExists(ctx context.Context, key string, notFound error) error {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func (s *Storage) getMatchDocument(ctx context.Context, id model.MatchID) (*model.Match, error) {
	data, err := s.client.Get(ctx, matchKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrMatchNotFound
		}
		return nil, err
	}

	var match model.Match
	if err := json.Unmarshal(data, &match); err != nil {
		return nil, err
	}
	return &match, nil
}

func (s *Storage) listMatches(ctx context.Context, keep func(*model.Match) bool) ([]*model.Match, error) {
	ids, err := s.client.ZRange(ctx, matchesIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	matches := make([]*model.Match, 0, len(ids))
	for _, id := range ids {
		match, err := s.GetMatch(ctx, model.MatchID(id))
		if errors.Is(err, model.ErrMatchNotFound) {
			continue // Deleted since the index was read
		}
		if err != nil {
			return nil, err
		}
		if keep(match) {
			matches = append(matches, match)
		}
	}
	return matches, nil
}

// loadPlayers fetches player documents in the given order using MGET
func (s *Storage) loadPlayers(ctx context.Context, ids []string) ([]model.Player, error) {
	if len(ids) == 0 {
		return []model.Player{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = playerKey(model.PlayerID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	players := make([]model.Player, 0, len(values))
	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue // Player deleted since the index was read
		}
		var player model.Player
		if err := json.Unmarshal([]byte(str), &player); err != nil {
			return nil, err
		}
		players = append(players, player)
	}
	return players, nil
}
