package badger

import "fmt"

// Key prefixes for different data types
const (
	sessionPrefix     = "sesrec"
	sessionUserPrefix = "sesusr"
)

// makeSessionKey generates a key for a session by ID.
func makeSessionKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", sessionPrefix, id))
}

// makeSessionUserKey generates a composite key for the user index.
// Format: prefix:userId:sessionId
func makeSessionUserKey(userId, sessionId string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", sessionUserPrefix, userId, sessionId))
}

// makePartialSessionUserKey generates a partial key for user queries.
func makePartialSessionUserKey(userId string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", sessionUserPrefix, userId))
}
