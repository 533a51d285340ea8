package domain

import "time"

// Session identifies the acting user for one request. Orchestrators receive
// it explicitly; there is no ambient global user state.
type Session struct {
	UserID string
}

// User is an account record. Password holds the bcrypt hash and never
// serializes.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
