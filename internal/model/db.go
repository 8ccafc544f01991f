package model

import "time"

type SessionKind string

const (
	SessionBuyer    SessionKind = "buyer"
	SessionMerchant SessionKind = "merchant"
)

// Session is the server-side copy of what the browser app used to keep in
// localStorage: the API bearer token and the cached principal.
type Session struct {
	ID         string      `gorm:"primaryKey;size:64;not null"`
	Kind       SessionKind `gorm:"size:16;index;not null"`
	Token      string      `gorm:"size:4096;not null"`
	Profile    string      `gorm:"type:text"` // JSON-encoded User or Merchant
	ExpiresAt  *time.Time  `gorm:"index"`
	VerifiedAt time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}
