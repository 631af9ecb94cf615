package redis

import (
	"fmt"

	"github.com/mcoot/gamematch/internal/model"
)

// Key prefix for all gamematch data
const keyPrefix = "gamematch"

// playerKey returns the Redis key for a Player document
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// playersIndexKey returns the Redis key for the sorted set of all player ids,
// scored by creation order
func playersIndexKey() string {
	return fmt.Sprintf("%s:idx:players", keyPrefix)
}

// emailIndexKey returns the Redis key for the email -> player_id index
func emailIndexKey(email string) string {
	return fmt.Sprintf("%s:idx:email:%s", keyPrefix, email)
}

// nicknameIndexKey returns the Redis key for the nickname -> player_id index
func nicknameIndexKey(nickname string) string {
	return fmt.Sprintf("%s:idx:nickname:%s", keyPrefix, nickname)
}

// matchKey returns the Redis key for a Match document (without roster)
func matchKey(id model.MatchID) string {
	return fmt.Sprintf("%s:match:%s", keyPrefix, id)
}

// rosterKey returns the Redis key for the sorted set of a match's players,
// scored by join order
func rosterKey(id model.MatchID) string {
	return fmt.Sprintf("%s:match:%s:roster", keyPrefix, id)
}

// matchesIndexKey returns the Redis key for the sorted set of all match ids
func matchesIndexKey() string {
	return fmt.Sprintf("%s:idx:matches", keyPrefix)
}

// matchNameIndexKey returns the Redis key for the match name -> match_id index
func matchNameIndexKey(name string) string {
	return fmt.Sprintf("%s:idx:match_name:%s", keyPrefix, name)
}

// seqKey returns the Redis key for the counter that orders index entries
func seqKey() string {
	return fmt.Sprintf("%s:seq", keyPrefix)
}
