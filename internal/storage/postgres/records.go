package postgres

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/mcoot/gamematch/internal/model"
)

// playerRecord maps to the players table. A non-null MatchID is the
// player's roster membership.
type playerRecord struct {
	ID        string `gorm:"primaryKey"`
	Name      string
	Nickname  string
	Email     string
	MatchID   *string
	JoinedAt  *time.Time
	CreatedAt time.Time
}

func (playerRecord) TableName() string { return "players" }

// matchRecord maps to the matches table
type matchRecord struct {
	ID        string `gorm:"primaryKey"`
	Name      string
	State     string
	StartDate *time.Time
	Scores    datatypes.JSON
	CreatedAt time.Time

	Players []playerRecord `gorm:"foreignKey:MatchID"`
}

func (matchRecord) TableName() string { return "matches" }

func newPlayerRecord(p *model.Player) playerRecord {
	rec := playerRecord{
		ID:        string(p.ID),
		Name:      p.Name,
		Nickname:  p.Nickname,
		Email:     p.Email,
		CreatedAt: p.CreatedAt,
	}
	if p.MatchID != nil {
		id := string(*p.MatchID)
		rec.MatchID = &id
	}
	return rec
}

func (r playerRecord) toModel() model.Player {
	p := model.Player{
		ID:        model.PlayerID(r.ID),
		Name:      r.Name,
		Nickname:  r.Nickname,
		Email:     r.Email,
		CreatedAt: r.CreatedAt,
	}
	if r.MatchID != nil {
		id := model.MatchID(*r.MatchID)
		p.MatchID = &id
	}
	return p
}

func newMatchRecord(m *model.Match) (matchRecord, error) {
	rec := matchRecord{
		ID:        string(m.ID),
		Name:      m.Name,
		State:     string(m.State),
		StartDate: m.StartDate,
		CreatedAt: m.CreatedAt,
	}
	if m.Scores != nil {
		data, err := json.Marshal(m.Scores)
		if err != nil {
			return matchRecord{}, err
		}
		rec.Scores = datatypes.JSON(data)
	}
	return rec, nil
}

func (r matchRecord) toModel() (*model.Match, error) {
	m := &model.Match{
		ID:        model.MatchID(r.ID),
		Name:      r.Name,
		State:     model.MatchState(r.State),
		StartDate: r.StartDate,
		CreatedAt: r.CreatedAt,
		Players:   make([]model.Player, len(r.Players)),
	}
	if len(r.Scores) > 0 && string(r.Scores) != "null" {
		if err := json.Unmarshal(r.Scores, &m.Scores); err != nil {
			return nil, err
		}
	}
	for i, p := range r.Players {
		m.Players[i] = p.toModel()
	}
	return m, nil
}
