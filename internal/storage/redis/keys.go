package redis

import "github.com/nlemma/numberguessr/internal/model"

const keyPrefix = "ngr:"

// entryKey is the hash holding one identity's record
// (fields: name, wins, losses).
func entryKey(identity model.Identity) string {
	return keyPrefix + "leaderboard:entry:" + string(identity)
}

// identityIndexKey is the set of all identities with a record.
func identityIndexKey() string {
	return keyPrefix + "leaderboard:identities"
}
