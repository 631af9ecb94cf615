package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player is a registered participant
type Player struct {
	ID        PlayerID
	Name      string
	Nickname  string   // unique
	Email     string   // unique
	MatchID   *MatchID // nil when the player is not in any match
	CreatedAt time.Time
}

// InMatch reports whether the player currently belongs to a match
func (p *Player) InMatch() bool {
	return p.MatchID != nil
}

// PlayerUpdate is a partial update of a player. Nil fields are left untouched.
type PlayerUpdate struct {
	Name     *string
	Nickname *string
	Email    *string

	// SetMatch marks MatchID as part of the update; a nil MatchID then clears
	// the player's match reference.
	SetMatch bool
	MatchID  *MatchID
}

// ClearMatch returns an update that only clears the match reference
func ClearMatch() PlayerUpdate {
	return PlayerUpdate{SetMatch: true}
}

// AssignMatch returns an update that only sets the match reference
func AssignMatch(id MatchID) PlayerUpdate {
	return PlayerUpdate{SetMatch: true, MatchID: &id}
}

// HasProfileChanges reports whether any profile field is set
func (u PlayerUpdate) HasProfileChanges() bool {
	return u.Name != nil || u.Nickname != nil || u.Email != nil
}

// OnlyClearsMatch reports whether the update does nothing but clear the match reference
func (u PlayerUpdate) OnlyClearsMatch() bool {
	return u.SetMatch && u.MatchID == nil && !u.HasProfileChanges()
}

// Apply writes the update onto p
func (u PlayerUpdate) Apply(p *Player) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Nickname != nil {
		p.Nickname = *u.Nickname
	}
	if u.Email != nil {
		p.Email = *u.Email
	}
	if u.SetMatch {
		if u.MatchID == nil {
			p.MatchID = nil
		} else {
			id := *u.MatchID
			p.MatchID = &id
		}
	}
}
