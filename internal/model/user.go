package model

// User is the profile of the signed-in account.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt int64  `json:"createdAt"`
}

// DisplayName prefers the email address and falls back to the username.
func (u User) DisplayName() string {
	if u.Email != "" {
		return u.Email
	}
	return u.Username
}

// Session is the persisted client credential: a bearer token plus the
// profile it belongs to.
type Session struct {
	Token string
	User  *User
}
