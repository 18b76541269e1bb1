package domain

import "time"

// Claims is the signed payload carried inside a bearer token.
type Claims struct {
	Subject   string
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
