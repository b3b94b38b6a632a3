package models

// Editor is an admin back-office account. Editors are the only principals
// allowed to mutate content through the API.
type Editor struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}
