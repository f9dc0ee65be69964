package model

import (
	"strings"
	"time"
)

// SessionPrefix starts every session token.
const SessionPrefix = "uz_"

type Session struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
	IP         string    `json:"ip"`
	UserAgent  string    `json:"user_agent"`
	Country    string    `json:"country"`
	ExpireAt   time.Time `json:"expire_at"`
}

// SessionMeta describes the client a session was issued to.
type SessionMeta struct {
	IP        string
	UserAgent string
	Country   string
}

// SessionSummary is the redacted view of a session shown to its owner.
type SessionSummary struct {
	ID         string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
	UserAgent  string    `json:"user_agent"`
}

// SessionUserID extracts the user id embedded in a session token. ok is
// false when the token does not have the "uz_{userId}.{secret}" shape.
func SessionUserID(token string) (userID string, ok bool) {
	rest, found := strings.CutPrefix(token, SessionPrefix)
	if !found {
		return "", false
	}
	userID, secret, found := strings.Cut(rest, ".")
	if !found || userID == "" || secret == "" {
		return "", false
	}
	return userID, true
}
