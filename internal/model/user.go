package model

// User mirrors the 'users' table. The ID is the identity provider's id for
// the user. Loaded records whether the liked-artist set has been imported at
// least once; a fresh user is imported on first authenticated access.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Loaded bool   `json:"loaded"`
}
