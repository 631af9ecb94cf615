package response

import (
	"time"

	"github.com/mcoot/gamematch/internal/model"
)

// Player represents a player in API responses
type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Nickname  string    `json:"nickname"`
	Email     string    `json:"email"`
	MatchID   *string   `json:"match_id"`
	CreatedAt time.Time `json:"created_at"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	resp := Player{
		ID:        string(p.ID),
		Name:      p.Name,
		Nickname:  p.Nickname,
		Email:     p.Email,
		CreatedAt: p.CreatedAt,
	}
	if p.MatchID != nil {
		id := string(*p.MatchID)
		resp.MatchID = &id
	}
	return resp
}

// PlayersFromModel converts a slice of players
func PlayersFromModel(players []*model.Player) []Player {
	result := make([]Player, len(players))
	for i, p := range players {
		result[i] = PlayerFromModel(p)
	}
	return result
}

// Match represents a match with its roster in API responses
type Match struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	State     string             `json:"state"`
	StartDate *time.Time         `json:"start_date"`
	Scores    map[string]float64 `json:"scores"`
	Players   []Player           `json:"players"`
	CreatedAt time.Time          `json:"created_at"`
}

// MatchFromModel converts a model.Match to a response Match
func MatchFromModel(m *model.Match) Match {
	resp := Match{
		ID:        string(m.ID),
		Name:      m.Name,
		State:     string(m.State),
		StartDate: m.StartDate,
		Players:   make([]Player, len(m.Players)),
		CreatedAt: m.CreatedAt,
	}
	if m.Scores != nil {
		resp.Scores = make(map[string]float64, len(m.Scores))
		for id, score := range m.Scores {
			resp.Scores[string(id)] = score
		}
	}
	for i := range m.Players {
		resp.Players[i] = PlayerFromModel(&m.Players[i])
	}
	return resp
}

// MatchesFromModel converts a slice of matches
func MatchesFromModel(matches []*model.Match) []Match {
	result := make([]Match, len(matches))
	for i, m := range matches {
		result[i] = MatchFromModel(m)
	}
	return result
}

// Message is a plain confirmation response
type Message struct {
	Message string `json:"message"`
}

// Health is the response for the health check
type Health struct {
	Status string `json:"status"`
}
