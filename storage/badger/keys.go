package badger

import (
	"fmt"

	"github.com/barmatch/barmatch/core"
)

// Key prefixes for different data types
const (
	profileRecordPrefix = "prorec"
	userFactPrefix      = "usrfact"
	userSavedPrefix     = "usrsav"
)

// makeProfileKey generates a key for a profile record by ID.
func makeProfileKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", profileRecordPrefix, id))
}

// makeUserFactKey generates a key for a user's fact snapshot.
func makeUserFactKey(userID string) []byte {
	return []byte(userFactPrefix + ":" + userID)
}

// makeUserSavedKey generates a key for a user's saved candidate list.
func makeUserSavedKey(userID string) []byte {
	return []byte(userSavedPrefix + ":" + userID)
}
