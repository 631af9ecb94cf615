package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/mcoot/gamematch/internal/model"
	"github.com/mcoot/gamematch/internal/storage"
)

// Config holds Postgres connection configuration
type Config struct {
	DSN           string
	RunMigrations bool
}

// Storage is a Postgres-backed implementation of the storage interface.
// The roster of a match is the set of players whose match_id points at it.
type Storage struct {
	db *gorm.DB
}

// New connects to Postgres and optionally brings the schema up to date
func New(cfg Config) (*Storage, error) {
	if cfg.RunMigrations {
		if err := RunMigrations(cfg.DSN); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return &Storage{db: db}, nil
}

// Close closes the underlying connection pool
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	var recs []playerRecord
	if err := s.db.WithContext(ctx).Order("seq").Find(&recs).Error; err != nil {
		return nil, err
	}

	players := make([]*model.Player, len(recs))
	for i, rec := range recs {
		p := rec.toModel()
		players[i] = &p
	}
	return players, nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	rec, err := s.getPlayerRecord(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	p := rec.toModel()
	return &p, nil
}

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) error {
	rec := newPlayerRecord(player)
	if rec.MatchID != nil {
		now := time.Now().UTC()
		rec.JoinedAt = &now
	}
	return translateError(s.db.WithContext(ctx).Create(&rec).Error)
}

func (s *Storage) UpdatePlayer(ctx context.Context, id model.PlayerID, update model.PlayerUpdate) (*model.Player, error) {
	db := s.db.WithContext(ctx)
	rec, err := s.getPlayerRecord(db, id)
	if err != nil {
		return nil, err
	}

	player := rec.toModel()
	update.Apply(&player)
	updated := newPlayerRecord(&player)

	changes := map[string]any{
		"name":     updated.Name,
		"nickname": updated.Nickname,
		"email":    updated.Email,
	}
	if update.SetMatch {
		changes["match_id"] = updated.MatchID
		if updated.MatchID == nil {
			changes["joined_at"] = nil
		} else if rec.MatchID == nil || *rec.MatchID != *updated.MatchID {
			changes["joined_at"] = gorm.Expr("clock_timestamp()")
		}
	}

	err = db.Model(&playerRecord{}).Where("id = ?", string(id)).Updates(changes).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &player, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	res := s.db.WithContext(ctx).Delete(&playerRecord{}, "id = ?", string(id))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrPlayerNotFound
	}
	return nil
}

// Match operations

func (s *Storage) ListMatches(ctx context.Context) ([]*model.Match, error) {
	return s.findMatches(s.withRoster(ctx))
}

func (s *Storage) ListMatchesByState(ctx context.Context, state model.MatchState) ([]*model.Match, error) {
	return s.findMatches(s.withRoster(ctx).Where("state = ?", string(state)))
}

func (s *Storage) GetMatch(ctx context.Context, id model.MatchID) (*model.Match, error) {
	return s.firstMatch(s.withRoster(ctx).Where("id = ?", string(id)))
}

func (s *Storage) GetMatchByName(ctx context.Context, name string) (*model.Match, error) {
	return s.firstMatch(s.withRoster(ctx).Where("name = ?", name))
}

func (s *Storage) CreateMatch(ctx context.Context, match *model.Match) error {
	rec, err := newMatchRecord(match)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&rec).Error; err != nil {
			return translateError(err)
		}
		for _, p := range match.Players {
			if err := addMember(tx, match.ID, p.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Storage) UpdateMatch(ctx context.Context, id model.MatchID, update model.MatchUpdate) error {
	db := s.db.WithContext(ctx)

	var rec matchRecord
	if err := db.First(&rec, "id = ?", string(id)).Error; err != nil {
		return notFoundAs(err, model.ErrMatchNotFound)
	}

	match, err := rec.toModel()
	if err != nil {
		return err
	}
	update.Apply(match)

	updated, err := newMatchRecord(match)
	if err != nil {
		return err
	}
	return db.Model(&matchRecord{}).Where("id = ?", string(id)).Updates(map[string]any{
		"state":      updated.State,
		"start_date": updated.StartDate,
		"scores":     updated.Scores,
	}).Error
}

func (s *Storage) DeleteMatch(ctx context.Context, id model.MatchID) error {
	res := s.db.WithContext(ctx).Delete(&matchRecord{}, "id = ?", string(id))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrMatchNotFound
	}
	return nil
}

// Roster operations

func (s *Storage) AddMember(ctx context.Context, matchID model.MatchID, playerID model.PlayerID) error {
	return addMember(s.db.WithContext(ctx), matchID, playerID)
}

func (s *Storage) RemoveMember(ctx context.Context, matchID model.MatchID, playerID model.PlayerID) error {
	db := s.db.WithContext(ctx)
	if err := requireMatch(db, matchID); err != nil {
		return err
	}

	return db.Model(&playerRecord{}).
		Where("id = ? AND match_id = ?", string(playerID), string(matchID)).
		Updates(map[string]any{"match_id": nil, "joined_at": nil}).Error
}

// InTx runs fn inside a database transaction; nested calls become savepoints
func (s *Storage) InTx(ctx context.Context, fn func(tx storage.Storage) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Storage{db: tx})
	})
}

// helpers

func (s *Storage) withRoster(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Players", func(db *gorm.DB) *gorm.DB {
			return db.Order("joined_at").Order("seq")
		}).
		Order("seq")
}

func (s *Storage) getPlayerRecord(db *gorm.DB, id model.PlayerID) (*playerRecord, error) {
	var rec playerRecord
	if err := db.First(&rec, "id = ?", string(id)).Error; err != nil {
		return nil, notFoundAs(err, model.ErrPlayerNotFound)
	}
	return &rec, nil
}

func (s *Storage) findMatches(query *gorm.DB) ([]*model.Match, error) {
	var recs []matchRecord
	if err := query.Find(&recs).Error; err != nil {
		return nil, err
	}

	matches := make([]*model.Match, 0, len(recs))
	for _, rec := range recs {
		m, err := rec.toModel()
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func (s *Storage) firstMatch(query *gorm.DB) (*model.Match, error) {
	var rec matchRecord
	if err := query.First(&rec).Error; err != nil {
		return nil, notFoundAs(err, model.ErrMatchNotFound)
	}
	return rec.toModel()
}

func addMember(db *gorm.DB, matchID model.MatchID, playerID model.PlayerID) error {
	if err := requireMatch(db, matchID); err != nil {
		return err
	}

	res := db.Model(&playerRecord{}).
		Where("id = ?", string(playerID)).
		Where("match_id IS DISTINCT FROM ?", string(matchID)).
		Updates(map[string]any{
			"match_id":  string(matchID),
			"joined_at": gorm.Expr("clock_timestamp()"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// Either already a member or no such player
	var count int64
	if err := db.Model(&playerRecord{}).Where("id = ?", string(playerID)).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return model.ErrPlayerNotFound
	}
	return nil
}

func requireMatch(db *gorm.DB, id model.MatchID) error {
	var count int64
	if err := db.Model(&matchRecord{}).Where("id = ?", string(id)).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return model.ErrMatchNotFound
	}
	return nil
}

func notFoundAs(err, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}

// uniqueViolation is the Postgres SQLSTATE for unique_violation
const uniqueViolation = "23505"

// constraintFields maps unique constraints from the schema to the field they guard
var constraintFields = map[string]string{
	"players_email_key":    storage.FieldEmail,
	"players_nickname_key": storage.FieldNickname,
	"matches_name_key":     storage.FieldMatchName,
}

// translateError turns unique violations into a *storage.DuplicateError.
// An unrecognised constraint yields a DuplicateError with an empty field.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return &storage.DuplicateError{Field: constraintFields[pgErr.ConstraintName]}
	}
	return err
}
