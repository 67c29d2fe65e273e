package model

import "time"

// KeyValue is durable key-value state, used for the session token and its
// expiry. Values are stored as text.
type KeyValue struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

// Session is the locally persisted access token and its expiry instant.
type Session struct {
	Token      string    `json:"token"`
	ExpiryTime time.Time `json:"expiryTime"`
}

// IsValid reports whether the session can authorize a remote call at the
// given instant. A session with no token is never valid and expiry is
// exclusive, a token expiring exactly now is already invalid.
func (s Session) IsValid(now time.Time) bool {
	return s.Token != "" && now.Before(s.ExpiryTime)
}
