package domain

import "time"

// Token represents issued authentication token metadata.
type Token struct {
	SubjectID string
	Username  string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}
