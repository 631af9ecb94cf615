package model

import "time"

// MaxPlayers is the roster capacity of a match
const MaxPlayers = 4

// MatchID uniquely identifies a match
type MatchID string

// MatchState represents where a match is in its lifecycle
type MatchState string

const (
	MatchStateWaiting    MatchState = "WAITING"     // Open for joining
	MatchStateInProgress MatchState = "IN_PROGRESS" // Started, roster may only shrink
	MatchStateFinished   MatchState = "FINISHED"    // Scores recorded, roster cleared
)

// Scores maps each participant to their final result
type Scores map[PlayerID]float64

// Match is a multiplayer session with a roster of up to MaxPlayers players
type Match struct {
	ID        MatchID
	Name      string // unique
	State     MatchState
	StartDate *time.Time // set once the match leaves WAITING
	Scores    Scores     // nil until the match is FINISHED
	Players   []Player   // roster, order irrelevant
	CreatedAt time.Time
}

// HasPlayer reports whether the player is on the roster
func (m *Match) HasPlayer(id PlayerID) bool {
	for _, p := range m.Players {
		if p.ID == id {
			return true
		}
	}
	return false
}

// PlayerIDs returns the roster ids in roster order
func (m *Match) PlayerIDs() []PlayerID {
	ids := make([]PlayerID, len(m.Players))
	for i, p := range m.Players {
		ids[i] = p.ID
	}
	return ids
}

// IsFull reports whether the roster has reached MaxPlayers
func (m *Match) IsFull() bool {
	return len(m.Players) >= MaxPlayers
}

// HasScoreFor reports whether a finished match recorded a score for the player
func (m *Match) HasScoreFor(id PlayerID) bool {
	if m.State != MatchStateFinished || m.Scores == nil {
		return false
	}
	_, ok := m.Scores[id]
	return ok
}

// MatchUpdate is a partial update of a match's lifecycle fields
type MatchUpdate struct {
	State     *MatchState
	StartDate *time.Time
	Scores    Scores
}

// Apply writes the update onto m
func (u MatchUpdate) Apply(m *Match) {
	if u.State != nil {
		m.State = *u.State
	}
	if u.StartDate != nil {
		t := *u.StartDate
		m.StartDate = &t
	}
	if u.Scores != nil {
		m.Scores = u.Scores.Clone()
	}
}

// Clone returns a copy of the scores
func (s Scores) Clone() Scores {
	if s == nil {
		return nil
	}
	out := make(Scores, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
