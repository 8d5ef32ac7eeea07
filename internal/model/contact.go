package model

// Contact is an address book entry pointing at another user account.
type Contact struct {
	ID            int64  `json:"id"`
	Alias         string `json:"alias"`
	ContactUserID int64  `json:"contactUserId"`
	GroupName     string `json:"groupName"`
	CreatedAt     int64  `json:"createdAt"`
}
