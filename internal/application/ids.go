package application

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// EventID derives the content-addressed id for a user's event. The digest is
// stable per (username, numericalID) pair so ids survive restarts and are
// never re-derived on edit.
func EventID(username string, numericalID int) string {
	return digest(username + strconv.Itoa(numericalID))
}

// GroupID derives the content-addressed id for a group. Name+school pairs are
// unique by construction; the digest is a lookup key, not a security boundary.
func GroupID(name, school string) string {
	return digest(name + school)
}

func digest(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
