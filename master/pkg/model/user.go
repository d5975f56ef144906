package model

// UserID is the type for user IDs.
type UserID int

// User is the requesting principal. Authentication and role checks happen upstream; the
// resolver only needs the identity to ask the authorization oracle about group membership.
type User struct {
	ID       UserID `json:"id"`
	Username string `json:"username"`
}
